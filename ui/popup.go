package ui

import (
	"fmt"

	"github.com/halcyon-ui/halcyon/element"
	"github.com/halcyon-ui/halcyon/native"
)

// Popup is a transient container mounted over a window's content. It closes
// on demand or when a click lands outside of it.
type Popup struct {
	owner   *Window
	content *element.Element
	closed  bool
	onClose func()
}

// NewPopup mounts a popup container in the owner window at the given window
// coordinates.
func NewPopup(owner *Window, x, y float32) (*Popup, error) {
	if !owner.Alive() {
		return nil, fmt.Errorf("popup: window is closed")
	}
	content, err := element.New(owner.app.registry, native.KindContainer)
	if err != nil {
		return nil, fmt.Errorf("popup: %w", err)
	}
	content.SetStyle(native.Style{
		"position": "absolute",
		"left":     fmt.Sprintf("%g", x),
		"top":      fmt.Sprintf("%g", y),
	})
	if err := owner.Body().AppendChild(content); err != nil {
		content.Close()
		return nil, fmt.Errorf("popup: %w", err)
	}
	p := &Popup{owner: owner, content: content}
	return p, nil
}

// Content returns the popup's container.
func (p *Popup) Content() *element.Element { return p.content }

// Alive reports whether the popup is still mounted.
func (p *Popup) Alive() bool { return !p.closed && p.owner.Alive() }

// OnClose registers a callback invoked once when the popup closes.
func (p *Popup) OnClose(fn func()) { p.onClose = fn }

// Close unmounts and destroys the popup content.
func (p *Popup) Close() {
	if p.closed {
		return
	}
	p.closed = true
	if p.owner.Alive() {
		p.owner.Body().RemoveChild(p.content)
	}
	p.content.Close()
	if p.onClose != nil {
		p.onClose()
	}
}
