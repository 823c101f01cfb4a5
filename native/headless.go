package native

import (
	"fmt"
	"sync"
)

// headlessElement is the authoritative native record for one element.
type headlessElement struct {
	kind       Kind
	parent     Handle
	children   []Handle
	style      Style
	hoverStyle Style
	jsContext  any
	// window is set on elements installed as a window body; other elements
	// resolve their window through the parent chain.
	window Handle
}

// headlessWindow is the native record for one top-level window.
type headlessWindow struct {
	attrs WindowAttributes
	body  Handle
}

// Headless is a complete in-memory Backend. It owns the authoritative
// element tree and style state, tracks hover and focus, and synthesizes
// event dispatch with bubbling. It backs tests and --headless runs.
type Headless struct {
	mu         sync.Mutex
	nextHandle Handle
	elements   map[Handle]*headlessElement
	windows    map[Handle]*headlessWindow

	listeners       *ListenerTable
	windowListeners *ListenerTable

	hovered Handle
	focused Handle

	multiWindow bool

	// FailCreation forces CreateElement/CreateWindow to return NilHandle,
	// for exercising creation-failure paths in tests.
	FailCreation bool
}

// NewHeadless creates a headless backend that reports multi-window support.
func NewHeadless() *Headless {
	return &Headless{
		elements:        make(map[Handle]*headlessElement),
		windows:         make(map[Handle]*headlessWindow),
		listeners:       NewListenerTable(),
		windowListeners: NewListenerTable(),
		multiWindow:     true,
	}
}

// NewHeadlessSingleWindow creates a headless backend that reports no
// multi-window capability, for exercising the single-window composition
// branch.
func NewHeadlessSingleWindow() *Headless {
	h := NewHeadless()
	h.multiWindow = false
	return h
}

func (b *Headless) mint() Handle {
	b.nextHandle++
	return b.nextHandle
}

// CreateElement allocates an element record.
func (b *Headless) CreateElement(kind Kind) Handle {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.FailCreation {
		return NilHandle
	}
	if _, ok := kindNames[kind]; !ok {
		return NilHandle
	}
	h := b.mint()
	b.elements[h] = &headlessElement{kind: kind}
	return h
}

// DestroyElement detaches the element and releases its whole subtree.
func (b *Headless) DestroyElement(h Handle) {
	b.mu.Lock()
	el, ok := b.elements[h]
	if !ok {
		b.mu.Unlock()
		return
	}
	if el.parent != NilHandle {
		if p, ok := b.elements[el.parent]; ok {
			p.children = removeHandle(p.children, h)
		}
	}
	doomed := b.collectSubtree(h)
	for _, d := range doomed {
		delete(b.elements, d)
	}
	if b.hovered == h {
		b.hovered = NilHandle
	}
	if b.focused == h {
		b.focused = NilHandle
	}
	b.mu.Unlock()

	for _, d := range doomed {
		b.listeners.Drop(d)
	}
}

func (b *Headless) collectSubtree(h Handle) []Handle {
	out := []Handle{h}
	if el, ok := b.elements[h]; ok {
		for _, c := range el.children {
			out = append(out, b.collectSubtree(c)...)
		}
	}
	return out
}

// ElementKind reports the kind behind a live element handle.
func (b *Headless) ElementKind(h Handle) (Kind, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	el, ok := b.elements[h]
	if !ok {
		return 0, false
	}
	return el.kind, true
}

// SetJsContext stores the script-side association for a handle.
func (b *Headless) SetJsContext(h Handle, ctx any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if el, ok := b.elements[h]; ok {
		el.jsContext = ctx
	}
}

// JsContext returns the script-side association for a handle, or nil.
func (b *Headless) JsContext(h Handle) any {
	b.mu.Lock()
	defer b.mu.Unlock()
	if el, ok := b.elements[h]; ok {
		return el.jsContext
	}
	return nil
}

// AddChild inserts child into parent's list at index, appending when index
// is out of bounds. A child already attached elsewhere is detached first;
// the authoritative tree never holds a node in two places.
func (b *Headless) AddChild(parent, child Handle, index int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.elements[parent]
	if !ok {
		return fmt.Errorf("native: add child: unknown parent handle %d", parent)
	}
	c, ok := b.elements[child]
	if !ok {
		return fmt.Errorf("native: add child: unknown child handle %d", child)
	}
	if !p.kind.ContainerCapable() {
		return fmt.Errorf("native: add child: %s element cannot hold children", p.kind)
	}
	for h := parent; h != NilHandle; {
		if h == child {
			return fmt.Errorf("native: add child: handle %d is an ancestor of %d", child, parent)
		}
		h = b.elements[h].parent
	}
	if c.parent != NilHandle {
		if old, ok := b.elements[c.parent]; ok {
			old.children = removeHandle(old.children, child)
		}
	}
	if index < 0 || index > len(p.children) {
		index = len(p.children)
	}
	p.children = append(p.children, NilHandle)
	copy(p.children[index+1:], p.children[index:])
	p.children[index] = child
	c.parent = parent
	return nil
}

// RemoveChild detaches the child at index from parent.
func (b *Headless) RemoveChild(parent Handle, index int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.elements[parent]
	if !ok {
		return fmt.Errorf("native: remove child: unknown parent handle %d", parent)
	}
	if index < 0 || index >= len(p.children) {
		return fmt.Errorf("native: remove child: index %d out of range", index)
	}
	child := p.children[index]
	p.children = append(p.children[:index], p.children[index+1:]...)
	if c, ok := b.elements[child]; ok {
		c.parent = NilHandle
	}
	return nil
}

// Parent returns the native-authoritative parent handle.
func (b *Headless) Parent(h Handle) Handle {
	b.mu.Lock()
	defer b.mu.Unlock()
	if el, ok := b.elements[h]; ok {
		return el.parent
	}
	return NilHandle
}

// Children returns a snapshot of the native child order, for assertions
// against the script-side shadow sequence.
func (b *Headless) Children(h Handle) []Handle {
	b.mu.Lock()
	defer b.mu.Unlock()
	el, ok := b.elements[h]
	if !ok {
		return nil
	}
	return append([]Handle(nil), el.children...)
}

// SetStyle replaces the element's base style.
func (b *Headless) SetStyle(h Handle, style Style) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if el, ok := b.elements[h]; ok {
		el.style = style.Clone()
	}
}

// SetHoverStyle replaces the element's hover overlay.
func (b *Headless) SetHoverStyle(h Handle, style Style) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if el, ok := b.elements[h]; ok {
		el.hoverStyle = style.Clone()
	}
}

// EffectiveStyle returns the style the renderer would apply right now: the
// base style, overlaid with the hover style while the element is hovered.
func (b *Headless) EffectiveStyle(h Handle) Style {
	b.mu.Lock()
	defer b.mu.Unlock()
	el, ok := b.elements[h]
	if !ok {
		return nil
	}
	out := el.style.Clone()
	if b.hovered == h && el.hoverStyle != nil {
		if out == nil {
			out = Style{}
		}
		for k, v := range el.hoverStyle {
			out[k] = v
		}
	}
	return out
}

// BindEventListener registers a dispatch thunk for an element.
func (b *Headless) BindEventListener(h Handle, eventType string, thunk Thunk) RegistrationID {
	return b.listeners.Bind(h, eventType, thunk)
}

// UnbindEventListener removes an element registration.
func (b *Headless) UnbindEventListener(h Handle, id RegistrationID) {
	b.listeners.Unbind(h, id)
}

// Focus moves input focus, emitting blur on the old element and focus on
// the new one.
func (b *Headless) Focus(h Handle) {
	b.mu.Lock()
	prev := b.focused
	if _, ok := b.elements[h]; !ok {
		b.mu.Unlock()
		return
	}
	b.focused = h
	b.mu.Unlock()

	if prev != NilHandle && prev != h {
		b.listeners.Invoke(prev, EventBlur, nil, prev)
	}
	if prev != h {
		b.listeners.Invoke(h, EventFocus, nil, h)
	}
}

// Focused returns the currently focused element handle.
func (b *Headless) Focused() Handle {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.focused
}

// Hovered returns the currently hovered element handle.
func (b *Headless) Hovered() Handle {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hovered
}

// CreateWindow allocates a window record.
func (b *Headless) CreateWindow(attrs WindowAttributes) Handle {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.FailCreation {
		return NilHandle
	}
	h := b.mint()
	b.windows[h] = &headlessWindow{attrs: attrs}
	return h
}

// CloseWindow destroys the window and its content tree.
func (b *Headless) CloseWindow(h Handle) {
	b.mu.Lock()
	w, ok := b.windows[h]
	if !ok {
		b.mu.Unlock()
		return
	}
	body := w.body
	delete(b.windows, h)
	b.mu.Unlock()

	b.windowListeners.Drop(h)
	if body != NilHandle {
		b.DestroyElement(body)
	}
}

// SetWindowBody installs an element as the window's root container.
func (b *Headless) SetWindowBody(window, body Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, ok := b.windows[window]
	if !ok {
		return
	}
	if el, ok := b.elements[body]; ok {
		w.body = body
		el.window = window
	}
}

// SetWindowTitle updates the window title.
func (b *Headless) SetWindowTitle(h Handle, title string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if w, ok := b.windows[h]; ok {
		w.attrs.Title = title
	}
}

// SetWindowVisible shows or hides the window.
func (b *Headless) SetWindowVisible(h Handle, visible bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if w, ok := b.windows[h]; ok {
		w.attrs.Visible = visible
	}
}

// WindowAttrs returns a copy of the window's current attributes.
func (b *Headless) WindowAttrs(h Handle) (WindowAttributes, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if w, ok := b.windows[h]; ok {
		return w.attrs, true
	}
	return WindowAttributes{}, false
}

// WindowOf walks the parent chain to the root element and returns the
// window it is installed in, or NilHandle for detached subtrees.
func (b *Headless) WindowOf(h Handle) Handle {
	b.mu.Lock()
	defer b.mu.Unlock()
	for {
		el, ok := b.elements[h]
		if !ok {
			return NilHandle
		}
		if el.parent == NilHandle {
			return el.window
		}
		h = el.parent
	}
}

// BindWindowEventListener registers a dispatch thunk for a window.
func (b *Headless) BindWindowEventListener(h Handle, eventType string, thunk Thunk) RegistrationID {
	return b.windowListeners.Bind(h, eventType, thunk)
}

// UnbindWindowEventListener removes a window registration.
func (b *Headless) UnbindWindowEventListener(h Handle, id RegistrationID) {
	b.windowListeners.Unbind(h, id)
}

// SupportsMultipleWindows reports the configured capability.
func (b *Headless) SupportsMultipleWindows() bool {
	return b.multiWindow
}

// FireEvent synthesizes a native event on an element: it delivers to the
// target's listeners and bubbles along the parent chain for bubbling event
// types. Mouseenter/mouseleave additionally maintain the hover state the
// renderer would track.
func (b *Headless) FireEvent(target Handle, eventType string, detail any) DispatchResult {
	switch eventType {
	case EventMouseEnter:
		b.mu.Lock()
		b.hovered = target
		b.mu.Unlock()
	case EventMouseLeave:
		b.mu.Lock()
		if b.hovered == target {
			b.hovered = NilHandle
		}
		b.mu.Unlock()
	}
	return FireBubbling(b, b.listeners, target, eventType, detail)
}

// FireWindowEvent synthesizes a window-level event. Window events do not
// bubble; there is nothing above a top-level surface.
func (b *Headless) FireWindowEvent(window Handle, eventType string, detail any) DispatchResult {
	return b.windowListeners.Invoke(window, eventType, detail, window)
}

func removeHandle(list []Handle, h Handle) []Handle {
	for i, c := range list {
		if c == h {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
