package ui

import (
	"strconv"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"github.com/halcyon-ui/halcyon/native"
)

// fyneElement is the backend record behind one element handle.
type fyneElement struct {
	kind native.Kind
	// obj is the canvas object mounted into parents; for interactive leaf
	// kinds it is the widget itself, otherwise an eventBox wrapping it.
	obj fyne.CanvasObject
	// box holds children for container-capable kinds.
	box *fyne.Container

	parent   native.Handle
	children []native.Handle
	window   native.Handle

	style      native.Style
	hoverStyle native.Style
	jsContext  any
}

type fyneWindow struct {
	win  fyne.Window
	body native.Handle
}

// FyneBackend implements native.Backend over the fyne toolkit. All calls are
// expected on the fyne event goroutine, matching the contract's UI-thread
// model.
type FyneBackend struct {
	app fyne.App

	mu         sync.Mutex
	nextHandle native.Handle
	elements   map[native.Handle]*fyneElement
	windows    map[native.Handle]*fyneWindow

	listeners       *native.ListenerTable
	windowListeners *native.ListenerTable

	hovered native.Handle
}

// NewFyneBackend creates a backend over a fresh fyne application.
func NewFyneBackend() *FyneBackend {
	return &FyneBackend{
		app:             app.New(),
		elements:        make(map[native.Handle]*fyneElement),
		windows:         make(map[native.Handle]*fyneWindow),
		listeners:       native.NewListenerTable(),
		windowListeners: native.NewListenerTable(),
	}
}

// Run hands control to the fyne main loop until the last window closes.
func (b *FyneBackend) Run() { b.app.Run() }

func (b *FyneBackend) mint() native.Handle {
	b.nextHandle++
	return b.nextHandle
}

// CreateElement allocates the fyne widget for the requested kind.
func (b *FyneBackend) CreateElement(kind native.Kind) native.Handle {
	b.mu.Lock()
	h := b.mint()
	b.mu.Unlock()

	el := &fyneElement{kind: kind}
	switch kind {
	case native.KindContainer:
		el.box = container.NewVBox()
		el.obj = newEventBox(b, h, el.box)
	case native.KindScroll:
		el.box = container.NewVBox()
		el.obj = container.NewScroll(newEventBox(b, h, el.box))
	case native.KindLabel:
		el.obj = newEventBox(b, h, widget.NewLabel(""))
	case native.KindEntry:
		entry := widget.NewEntry()
		entry.OnChanged = func(text string) {
			b.FireEvent(h, native.EventTextChange, native.TextDetail{Value: text})
		}
		el.obj = entry
	case native.KindButton:
		btn := widget.NewButton("", func() {
			b.FireEvent(h, native.EventClick, native.MouseDetail{})
		})
		el.obj = btn
	case native.KindTextEdit:
		edit := widget.NewMultiLineEntry()
		edit.OnChanged = func(text string) {
			b.FireEvent(h, native.EventTextChange, native.TextDetail{Value: text})
		}
		el.obj = edit
	case native.KindImage:
		img := canvas.NewImageFromResource(nil)
		img.FillMode = canvas.ImageFillContain
		el.obj = newEventBox(b, h, img)
	default:
		return native.NilHandle
	}

	b.mu.Lock()
	b.elements[h] = el
	b.mu.Unlock()
	return h
}

// DestroyElement detaches the element and releases its subtree.
func (b *FyneBackend) DestroyElement(h native.Handle) {
	b.mu.Lock()
	el, ok := b.elements[h]
	if !ok {
		b.mu.Unlock()
		return
	}
	if p, ok := b.elements[el.parent]; ok {
		p.children = dropHandle(p.children, h)
		if p.box != nil {
			p.box.Remove(el.obj)
		}
	}
	doomed := b.subtree(h)
	for _, d := range doomed {
		delete(b.elements, d)
	}
	if b.hovered == h {
		b.hovered = native.NilHandle
	}
	b.mu.Unlock()

	for _, d := range doomed {
		b.listeners.Drop(d)
	}
}

func (b *FyneBackend) subtree(h native.Handle) []native.Handle {
	out := []native.Handle{h}
	if el, ok := b.elements[h]; ok {
		for _, c := range el.children {
			out = append(out, b.subtree(c)...)
		}
	}
	return out
}

// ElementKind reports the kind behind a live handle.
func (b *FyneBackend) ElementKind(h native.Handle) (native.Kind, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	el, ok := b.elements[h]
	if !ok {
		return 0, false
	}
	return el.kind, true
}

// SetJsContext stores the script-side association for a handle.
func (b *FyneBackend) SetJsContext(h native.Handle, ctx any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if el, ok := b.elements[h]; ok {
		el.jsContext = ctx
	}
}

// JsContext returns the script-side association for a handle, or nil.
func (b *FyneBackend) JsContext(h native.Handle) any {
	b.mu.Lock()
	defer b.mu.Unlock()
	if el, ok := b.elements[h]; ok {
		return el.jsContext
	}
	return nil
}

// AddChild inserts child at index, appending on out-of-range indexes and
// detaching the child from any prior parent first.
func (b *FyneBackend) AddChild(parent, child native.Handle, index int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.elements[parent]
	if !ok {
		return errUnknownHandle("add child", parent)
	}
	c, ok := b.elements[child]
	if !ok {
		return errUnknownHandle("add child", child)
	}
	if !p.kind.ContainerCapable() || p.box == nil {
		return errNotAContainer(p.kind)
	}
	for h := parent; h != native.NilHandle; {
		if h == child {
			return errWouldCycle(child, parent)
		}
		h = b.elements[h].parent
	}
	if old, ok := b.elements[c.parent]; ok {
		old.children = dropHandle(old.children, child)
		if old.box != nil {
			old.box.Remove(c.obj)
		}
	}
	if index < 0 || index > len(p.children) {
		index = len(p.children)
	}
	p.children = append(p.children, native.NilHandle)
	copy(p.children[index+1:], p.children[index:])
	p.children[index] = child
	c.parent = parent

	p.box.Objects = append(p.box.Objects, nil)
	copy(p.box.Objects[index+1:], p.box.Objects[index:])
	p.box.Objects[index] = c.obj
	p.box.Refresh()
	return nil
}

// RemoveChild detaches the child at index from parent.
func (b *FyneBackend) RemoveChild(parent native.Handle, index int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.elements[parent]
	if !ok {
		return errUnknownHandle("remove child", parent)
	}
	if index < 0 || index >= len(p.children) {
		return errIndexOutOfRange(index, len(p.children))
	}
	child := p.children[index]
	p.children = append(p.children[:index], p.children[index+1:]...)
	if c, ok := b.elements[child]; ok {
		c.parent = native.NilHandle
		if p.box != nil {
			p.box.Remove(c.obj)
			p.box.Refresh()
		}
	}
	return nil
}

// Parent returns the element's parent handle.
func (b *FyneBackend) Parent(h native.Handle) native.Handle {
	b.mu.Lock()
	defer b.mu.Unlock()
	if el, ok := b.elements[h]; ok {
		return el.parent
	}
	return native.NilHandle
}

// SetStyle replaces the element's style and applies the subset fyne can
// express directly: text content, visibility, and fixed sizing.
func (b *FyneBackend) SetStyle(h native.Handle, style native.Style) {
	b.mu.Lock()
	el, ok := b.elements[h]
	if !ok {
		b.mu.Unlock()
		return
	}
	el.style = style.Clone()
	b.mu.Unlock()
	b.applyStyle(el, style)
}

// SetHoverStyle stores the hover overlay; it is applied over the base style
// while the pointer is inside the element.
func (b *FyneBackend) SetHoverStyle(h native.Handle, style native.Style) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if el, ok := b.elements[h]; ok {
		el.hoverStyle = style.Clone()
	}
}

func (b *FyneBackend) applyStyle(el *fyneElement, style native.Style) {
	if text, ok := style["text"]; ok {
		switch w := unwrapEventBox(el.obj).(type) {
		case *widget.Label:
			w.SetText(text)
		case *widget.Button:
			w.SetText(text)
		case *widget.Entry:
			w.SetText(text)
		}
	}
	if display, ok := style["display"]; ok {
		if display == "none" {
			el.obj.Hide()
		} else {
			el.obj.Show()
		}
	}
	width, hasWidth := style["width"]
	height, hasHeight := style["height"]
	if hasWidth || hasHeight {
		size := el.obj.MinSize()
		if hasWidth {
			if v, err := strconv.ParseFloat(width, 32); err == nil {
				size.Width = float32(v)
			}
		}
		if hasHeight {
			if v, err := strconv.ParseFloat(height, 32); err == nil {
				size.Height = float32(v)
			}
		}
		el.obj.Resize(size)
	}
	el.obj.Refresh()
}

// restyle reapplies the effective style after a hover transition.
func (b *FyneBackend) restyle(h native.Handle) {
	b.mu.Lock()
	el, ok := b.elements[h]
	if !ok {
		b.mu.Unlock()
		return
	}
	effective := el.style.Clone()
	if b.hovered == h && el.hoverStyle != nil {
		if effective == nil {
			effective = native.Style{}
		}
		for k, v := range el.hoverStyle {
			effective[k] = v
		}
	}
	b.mu.Unlock()
	if effective != nil {
		b.applyStyle(el, effective)
	}
}

// BindEventListener registers a dispatch thunk for an element.
func (b *FyneBackend) BindEventListener(h native.Handle, eventType string, thunk native.Thunk) native.RegistrationID {
	return b.listeners.Bind(h, eventType, thunk)
}

// UnbindEventListener removes an element registration.
func (b *FyneBackend) UnbindEventListener(h native.Handle, id native.RegistrationID) {
	b.listeners.Unbind(h, id)
}

// Focus moves keyboard focus to the element's widget.
func (b *FyneBackend) Focus(h native.Handle) {
	b.mu.Lock()
	el, elOK := b.elements[h]
	var win fyne.Window
	if elOK {
		if w, ok := b.windows[b.windowOfLocked(h)]; ok {
			win = w.win
		}
	}
	b.mu.Unlock()
	if !elOK || win == nil {
		return
	}
	if f, ok := el.obj.(fyne.Focusable); ok {
		win.Canvas().Focus(f)
	}
	b.listeners.Invoke(h, native.EventFocus, nil, h)
}

// CreateWindow allocates a fyne window.
func (b *FyneBackend) CreateWindow(attrs native.WindowAttributes) native.Handle {
	win := b.app.NewWindow(attrs.Title)
	if attrs.Width > 0 && attrs.Height > 0 {
		win.Resize(fyne.NewSize(attrs.Width, attrs.Height))
	}

	b.mu.Lock()
	h := b.mint()
	b.windows[h] = &fyneWindow{win: win}
	b.mu.Unlock()

	win.SetCloseIntercept(func() {
		res := b.windowListeners.Invoke(h, native.EventCloseRequest, nil, h)
		if !res.PreventDefault {
			b.CloseWindow(h)
		}
	})
	if attrs.Visible {
		win.Show()
	}
	return h
}

// CloseWindow destroys the window and its content tree.
func (b *FyneBackend) CloseWindow(h native.Handle) {
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
	if body != native.NilHandle {
		b.DestroyElement(body)
	}
	w.win.Close()
}

// SetWindowBody installs an element as the window's root content.
func (b *FyneBackend) SetWindowBody(window, body native.Handle) {
	b.mu.Lock()
	w, wok := b.windows[window]
	el, eok := b.elements[body]
	if wok && eok {
		w.body = body
		el.window = window
	}
	b.mu.Unlock()
	if wok && eok {
		w.win.SetContent(el.obj)
	}
}

// SetWindowTitle updates the window title.
func (b *FyneBackend) SetWindowTitle(h native.Handle, title string) {
	b.mu.Lock()
	w, ok := b.windows[h]
	b.mu.Unlock()
	if ok {
		w.win.SetTitle(title)
	}
}

// SetWindowVisible shows or hides the window.
func (b *FyneBackend) SetWindowVisible(h native.Handle, visible bool) {
	b.mu.Lock()
	w, ok := b.windows[h]
	b.mu.Unlock()
	if !ok {
		return
	}
	if visible {
		w.win.Show()
	} else {
		w.win.Hide()
	}
}

// WindowOf resolves the window owning an element through the parent chain.
func (b *FyneBackend) WindowOf(h native.Handle) native.Handle {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.windowOfLocked(h)
}

func (b *FyneBackend) windowOfLocked(h native.Handle) native.Handle {
	for {
		el, ok := b.elements[h]
		if !ok {
			return native.NilHandle
		}
		if el.parent == native.NilHandle {
			return el.window
		}
		h = el.parent
	}
}

// BindWindowEventListener registers a dispatch thunk for a window.
func (b *FyneBackend) BindWindowEventListener(h native.Handle, eventType string, thunk native.Thunk) native.RegistrationID {
	return b.windowListeners.Bind(h, eventType, thunk)
}

// UnbindWindowEventListener removes a window registration.
func (b *FyneBackend) UnbindWindowEventListener(h native.Handle, id native.RegistrationID) {
	b.windowListeners.Unbind(h, id)
}

// SupportsMultipleWindows reports true; fyne desktop drivers open as many
// windows as asked.
func (b *FyneBackend) SupportsMultipleWindows() bool { return true }

// FireEvent delivers an element event through the shared bubbling dispatch,
// maintaining hover state for enter/leave.
func (b *FyneBackend) FireEvent(target native.Handle, eventType string, detail any) native.DispatchResult {
	switch eventType {
	case native.EventMouseEnter:
		b.mu.Lock()
		b.hovered = target
		b.mu.Unlock()
		b.restyle(target)
	case native.EventMouseLeave:
		b.mu.Lock()
		if b.hovered == target {
			b.hovered = native.NilHandle
		}
		b.mu.Unlock()
		b.restyle(target)
	}
	return native.FireBubbling(b, b.listeners, target, eventType, detail)
}

func dropHandle(list []native.Handle, h native.Handle) []native.Handle {
	for i, c := range list {
		if c == h {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

// eventBox wraps a canvas object to translate fyne input into the dispatch
// contract for kinds whose widgets expose no callbacks of their own.
type eventBox struct {
	widget.BaseWidget
	backend *FyneBackend
	handle  native.Handle
	content fyne.CanvasObject
}

var (
	_ fyne.Tappable          = (*eventBox)(nil)
	_ fyne.SecondaryTappable = (*eventBox)(nil)
	_ fyne.Scrollable        = (*eventBox)(nil)
	_ desktop.Hoverable      = (*eventBox)(nil)
)

func newEventBox(b *FyneBackend, h native.Handle, content fyne.CanvasObject) *eventBox {
	box := &eventBox{backend: b, handle: h, content: content}
	box.ExtendBaseWidget(box)
	return box
}

func (e *eventBox) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(e.content)
}

func (e *eventBox) Tapped(ev *fyne.PointEvent) {
	e.backend.FireEvent(e.handle, native.EventClick, mouseDetail(ev))
}

func (e *eventBox) TappedSecondary(ev *fyne.PointEvent) {
	e.backend.FireEvent(e.handle, native.EventContextMenu, mouseDetail(ev))
}

func (e *eventBox) Scrolled(ev *fyne.ScrollEvent) {
	e.backend.FireEvent(e.handle, native.EventMouseWheel, native.WheelDetail{
		X:      ev.Position.X,
		Y:      ev.Position.Y,
		DeltaX: ev.Scrolled.DX,
		DeltaY: ev.Scrolled.DY,
	})
}

func (e *eventBox) MouseIn(ev *desktop.MouseEvent) {
	e.backend.FireEvent(e.handle, native.EventMouseEnter, mouseDetail(&ev.PointEvent))
}

func (e *eventBox) MouseMoved(ev *desktop.MouseEvent) {
	e.backend.FireEvent(e.handle, native.EventMouseMove, mouseDetail(&ev.PointEvent))
}

func (e *eventBox) MouseOut() {
	e.backend.FireEvent(e.handle, native.EventMouseLeave, native.MouseDetail{})
}

func mouseDetail(ev *fyne.PointEvent) native.MouseDetail {
	return native.MouseDetail{
		X:       ev.Position.X,
		Y:       ev.Position.Y,
		WindowX: ev.AbsolutePosition.X,
		WindowY: ev.AbsolutePosition.Y,
	}
}

// unwrapEventBox returns the widget behind an eventBox, or the object itself.
func unwrapEventBox(obj fyne.CanvasObject) fyne.CanvasObject {
	if box, ok := obj.(*eventBox); ok {
		return box.content
	}
	if scroll, ok := obj.(*container.Scroll); ok {
		return unwrapEventBox(scroll.Content)
	}
	return obj
}
