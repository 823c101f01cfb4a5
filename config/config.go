// Package config loads the application manifest. The manifest is optional;
// a missing file yields the defaults.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level manifest.
type Config struct {
	App    AppConfig    `yaml:"app"`
	Window WindowConfig `yaml:"window"`
}

// AppConfig names the application and its entry script.
type AppConfig struct {
	Name     string `yaml:"name"`
	Entry    string `yaml:"entry"`
	Headless bool   `yaml:"headless"`
}

// WindowConfig describes the initial window.
type WindowConfig struct {
	Title  string  `yaml:"title"`
	Width  float32 `yaml:"width"`
	Height float32 `yaml:"height"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		App: AppConfig{
			Name:  "halcyon",
			Entry: "main.js",
		},
		Window: WindowConfig{
			Title:  "halcyon",
			Width:  800,
			Height: 600,
		},
	}
}

// Load reads the manifest at path, overlaying it on the defaults. A missing
// file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("config: parse %s: %w", path, err)
	}
	if cfg.App.Entry == "" {
		cfg.App.Entry = Default().App.Entry
	}
	return cfg, nil
}
