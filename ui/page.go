package ui

import (
	"fmt"

	"github.com/halcyon-ui/halcyon/element"
	"github.com/halcyon-ui/halcyon/native"
)

// Page is one entry in a window's navigation stack. Each page roots its own
// container; only the top page's container is mounted in the window body.
type Page struct {
	window *Window
	name   string
	root   *element.Element
	closed bool
}

// Name returns the page's name.
func (p *Page) Name() string { return p.name }

// Root returns the page's content container.
func (p *Page) Root() *element.Element { return p.root }

func (p *Page) close() {
	if p.closed {
		return
	}
	p.closed = true
	p.root.Close()
}

// PushPage creates a page, mounts it, and unmounts the previously visible
// page. The old page keeps its subtree and reappears when the new page is
// popped.
func (w *Window) PushPage(name string) (*Page, error) {
	if w.closed {
		return nil, fmt.Errorf("push page %q: window is closed", name)
	}
	root, err := element.New(w.app.registry, native.KindContainer)
	if err != nil {
		return nil, fmt.Errorf("push page %q: %w", name, err)
	}
	if top := w.topPage(); top != nil {
		w.body.RemoveChild(top.root)
	}
	if err := w.body.AppendChild(root); err != nil {
		root.Close()
		return nil, fmt.Errorf("push page %q: %w", name, err)
	}
	p := &Page{window: w, name: name, root: root}
	w.pages = append(w.pages, p)
	return p, nil
}

// PopPage destroys the top page and remounts the one below it. Popping an
// empty stack returns nil.
func (w *Window) PopPage() *Page {
	top := w.topPage()
	if top == nil {
		return nil
	}
	w.pages = w.pages[:len(w.pages)-1]
	w.body.RemoveChild(top.root)
	top.close()
	if next := w.topPage(); next != nil {
		if err := w.body.AppendChild(next.root); err != nil {
			// The uncovered page's subtree is intact; only the remount
			// failed. Leave it unmounted rather than half-attached.
			return top
		}
	}
	return top
}

// CurrentPage returns the top of the page stack, or nil.
func (w *Window) CurrentPage() *Page { return w.topPage() }

func (w *Window) topPage() *Page {
	if len(w.pages) == 0 {
		return nil
	}
	return w.pages[len(w.pages)-1]
}
