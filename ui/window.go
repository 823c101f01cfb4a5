// Package ui composes top-level surfaces out of the element object model:
// windows, page stacks, popups, and dialogs. It also provides the fyne-backed
// native.Backend used for on-screen runs.
package ui

import (
	"errors"
	"fmt"
	"sync"

	"github.com/halcyon-ui/halcyon/element"
	"github.com/halcyon-ui/halcyon/native"
)

var (
	// ErrWindowCreation is wrapped by errors from failed window creation.
	ErrWindowCreation = errors.New("window creation failed")
	// ErrSingleWindow is returned when a second window is requested on a
	// platform without multi-window support.
	ErrSingleWindow = errors.New("platform supports a single window")
)

// Options configures a new window.
type Options struct {
	Title  string
	Width  float32
	Height float32
	Modal  bool
}

// App owns the windows of one running instance and the capability decisions
// that depend on the platform, like whether dialogs get their own window.
type App struct {
	registry *element.Registry

	mu      sync.Mutex
	windows []*Window
}

// NewApp creates an App over the given registry.
func NewApp(registry *element.Registry) *App {
	return &App{registry: registry}
}

// Registry returns the handle registry the app's surfaces are built over.
func (a *App) Registry() *element.Registry { return a.registry }

// NewWindow creates a native window with a container body installed as its
// root. On single-window platforms a second live window is refused.
func (a *App) NewWindow(opts Options) (*Window, error) {
	backend := a.registry.Backend()

	a.mu.Lock()
	if !backend.SupportsMultipleWindows() && len(a.live()) > 0 {
		a.mu.Unlock()
		return nil, ErrSingleWindow
	}
	a.mu.Unlock()

	h := backend.CreateWindow(native.WindowAttributes{
		Title:   opts.Title,
		Width:   opts.Width,
		Height:  opts.Height,
		Visible: true,
		Modal:   opts.Modal,
	})
	if h == native.NilHandle {
		return nil, fmt.Errorf("%w: native layer returned no handle", ErrWindowCreation)
	}

	body, err := element.New(a.registry, native.KindContainer)
	if err != nil {
		backend.CloseWindow(h)
		return nil, fmt.Errorf("%w: %v", ErrWindowCreation, err)
	}
	backend.SetWindowBody(h, body.NativeHandle())

	w := &Window{
		app:     a,
		backend: backend,
		handle:  h,
		title:   opts.Title,
		body:    body,
	}
	w.events = element.NewWindowEvents(w, a.registry)
	if err := a.registry.RegisterWindow(h, w); err != nil {
		body.Close()
		backend.CloseWindow(h)
		return nil, fmt.Errorf("%w: %v", ErrWindowCreation, err)
	}

	a.mu.Lock()
	a.windows = append(a.windows, w)
	a.mu.Unlock()
	return w, nil
}

// Windows returns the app's live windows.
func (a *App) Windows() []*Window {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.live()
}

func (a *App) live() []*Window {
	out := a.windows[:0]
	for _, w := range a.windows {
		if w.Alive() {
			out = append(out, w)
		}
	}
	a.windows = out
	return append([]*Window(nil), out...)
}

// Window wraps one native top-level window. Its body is a container element
// that roots the window's content tree; pages, popups, and dialog overlays
// all mount into it.
type Window struct {
	app     *App
	backend native.Backend
	handle  native.Handle
	title   string
	body    *element.Element
	events  *element.EventRegistration

	pages  []*Page
	closed bool
}

// NativeHandle returns the window's native handle.
func (w *Window) NativeHandle() native.Handle { return w.handle }

// Alive reports whether the window is still open.
func (w *Window) Alive() bool { return !w.closed }

// Body returns the window's root container.
func (w *Window) Body() *element.Element { return w.body }

// Events returns the window's event registration, carrying resize and close
// listeners bound through the window flavor of the native contract.
func (w *Window) Events() *element.EventRegistration { return w.events }

// Title returns the last-assigned title.
func (w *Window) Title() string { return w.title }

// SetTitle updates the native window title.
func (w *Window) SetTitle(title string) {
	w.title = title
	w.backend.SetWindowTitle(w.handle, title)
}

// Show makes the window visible.
func (w *Window) Show() { w.backend.SetWindowVisible(w.handle, true) }

// Hide removes the window from screen without destroying it.
func (w *Window) Hide() { w.backend.SetWindowVisible(w.handle, false) }

// Close destroys the native window and its content tree. The wrapper and the
// body element are dead afterwards.
func (w *Window) Close() {
	if w.closed {
		return
	}
	w.closed = true
	for i := len(w.pages) - 1; i >= 0; i-- {
		w.pages[i].close()
	}
	w.pages = nil
	w.events.UnbindAll()
	w.app.registry.ReleaseWindow(w.handle)
	w.body.Close()
	w.backend.CloseWindow(w.handle)
}
