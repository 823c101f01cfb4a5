package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/halcyon-ui/halcyon/config"
	"github.com/halcyon-ui/halcyon/element"
	"github.com/halcyon-ui/halcyon/js"
	"github.com/halcyon-ui/halcyon/native"
	"github.com/halcyon-ui/halcyon/ui"
)

func main() {
	configPath := flag.String("config", "halcyon.yaml", "path to the application manifest")
	headless := flag.Bool("headless", false, "run without a display, for scripted checks")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("halcyon: %v", err)
	}

	entry := cfg.App.Entry
	if flag.NArg() > 0 {
		entry = flag.Arg(0)
	}
	source, err := os.ReadFile(entry)
	if err != nil {
		log.Fatalf("halcyon: read entry script: %v", err)
	}

	if *headless || cfg.App.Headless {
		runHeadless(cfg, entry, string(source))
		return
	}
	runFyne(cfg, entry, string(source))
}

// runHeadless executes the entry script against the in-memory backend and
// drains the event loop, then exits.
func runHeadless(cfg config.Config, entry, source string) {
	backend := native.NewHeadless()
	app := ui.NewApp(element.NewRegistry(backend))
	runtime := newRuntime(app)

	if err := runtime.ExecuteScript(source, entry); err != nil {
		log.Fatalf("halcyon: %v", err)
	}
	runtime.Drain(10000)
	fmt.Printf("%s: ok\n", cfg.App.Name)
}

// runFyne executes the entry script against the fyne backend and hands the
// main goroutine to the toolkit.
func runFyne(cfg config.Config, entry, source string) {
	backend := ui.NewFyneBackend()
	app := ui.NewApp(element.NewRegistry(backend))
	runtime := newRuntime(app)

	if err := runtime.ExecuteScript(source, entry); err != nil {
		log.Printf("halcyon: %v", err)
	}
	runtime.Drain(10000)

	// The entry script may have opened its own windows; open the configured
	// one only when it did not.
	if len(app.Windows()) == 0 {
		if _, err := app.NewWindow(ui.Options{
			Title:  cfg.Window.Title,
			Width:  cfg.Window.Width,
			Height: cfg.Window.Height,
		}); err != nil {
			log.Fatalf("halcyon: %v", err)
		}
	}
	backend.Run()
}

func newRuntime(app *ui.App) *js.Runtime {
	runtime := js.NewRuntime()
	runtime.SetOnError(func(err error) {
		log.Printf("halcyon: script error: %v", err)
	})
	js.NewElementBinder(runtime, app)
	return runtime
}
