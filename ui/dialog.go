package ui

import (
	"fmt"

	"github.com/halcyon-ui/halcyon/element"
	"github.com/halcyon-ui/halcyon/native"
)

// Dialog is a modal message surface. On platforms with multi-window support
// it gets its own modal window; on single-window platforms it is mounted as
// an overlay inside the owner window.
type Dialog struct {
	app     *App
	owner   *Window
	window  *Window
	overlay *element.Element
	closed  bool
}

// dialogSpec carries the pieces common to Alert and Confirm.
type dialogSpec struct {
	title   string
	message string
	buttons []dialogButton
}

type dialogButton struct {
	label   string
	onClick func(d *Dialog)
}

// Alert shows a message with a single OK button. onClose may be nil.
func (a *App) Alert(owner *Window, title, message string, onClose func()) (*Dialog, error) {
	return a.showDialog(owner, dialogSpec{
		title:   title,
		message: message,
		buttons: []dialogButton{
			{label: "OK", onClick: func(d *Dialog) {
				d.Close()
				if onClose != nil {
					onClose()
				}
			}},
		},
	})
}

// Confirm shows a message with OK and Cancel buttons and reports the choice.
func (a *App) Confirm(owner *Window, title, message string, onResult func(ok bool)) (*Dialog, error) {
	result := func(ok bool) func(d *Dialog) {
		return func(d *Dialog) {
			d.Close()
			if onResult != nil {
				onResult(ok)
			}
		}
	}
	return a.showDialog(owner, dialogSpec{
		title:   title,
		message: message,
		buttons: []dialogButton{
			{label: "OK", onClick: result(true)},
			{label: "Cancel", onClick: result(false)},
		},
	})
}

func (a *App) showDialog(owner *Window, spec dialogSpec) (*Dialog, error) {
	d := &Dialog{app: a, owner: owner}

	var mount *element.Element
	if a.registry.Backend().SupportsMultipleWindows() {
		w, err := a.NewWindow(Options{Title: spec.title, Modal: true})
		if err != nil {
			return nil, fmt.Errorf("dialog: %w", err)
		}
		d.window = w
		mount = w.Body()
	} else {
		if owner == nil || !owner.Alive() {
			return nil, fmt.Errorf("dialog: no owner window for overlay")
		}
		overlay, err := element.New(a.registry, native.KindContainer)
		if err != nil {
			return nil, fmt.Errorf("dialog: %w", err)
		}
		overlay.SetStyle(native.Style{"position": "absolute", "left": "0", "top": "0"})
		if err := owner.Body().AppendChild(overlay); err != nil {
			overlay.Close()
			return nil, fmt.Errorf("dialog: %w", err)
		}
		d.overlay = overlay
		mount = overlay
	}

	if err := d.build(mount, spec); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

func (d *Dialog) build(mount *element.Element, spec dialogSpec) error {
	label, err := element.New(d.app.registry, native.KindLabel)
	if err != nil {
		return fmt.Errorf("dialog: %w", err)
	}
	label.SetStyle(native.Style{"text": spec.message})
	if err := mount.AppendChild(label); err != nil {
		label.Close()
		return fmt.Errorf("dialog: %w", err)
	}

	row, err := element.New(d.app.registry, native.KindContainer)
	if err != nil {
		return fmt.Errorf("dialog: %w", err)
	}
	if err := mount.AppendChild(row); err != nil {
		row.Close()
		return fmt.Errorf("dialog: %w", err)
	}

	for _, b := range spec.buttons {
		btn, err := element.New(d.app.registry, native.KindButton)
		if err != nil {
			return fmt.Errorf("dialog: %w", err)
		}
		btn.SetStyle(native.Style{"text": b.label})
		onClick := b.onClick
		if err := btn.Events().BindEvent(native.EventClick, func(*element.Event) {
			onClick(d)
		}); err != nil {
			btn.Close()
			return fmt.Errorf("dialog: %w", err)
		}
		if err := row.AppendChild(btn); err != nil {
			btn.Close()
			return fmt.Errorf("dialog: %w", err)
		}
	}
	return nil
}

// Alive reports whether the dialog is still showing.
func (d *Dialog) Alive() bool { return !d.closed }

// Content returns the element the dialog's widgets are mounted in, for
// callers that add extra content before the dialog is dismissed.
func (d *Dialog) Content() *element.Element {
	if d.window != nil {
		return d.window.Body()
	}
	return d.overlay
}

// Close dismisses the dialog, tearing down its window or overlay.
func (d *Dialog) Close() {
	if d.closed {
		return
	}
	d.closed = true
	if d.window != nil {
		d.window.Close()
		return
	}
	if d.overlay != nil {
		if d.owner != nil && d.owner.Alive() {
			d.owner.Body().RemoveChild(d.overlay)
		}
		d.overlay.Close()
	}
}
