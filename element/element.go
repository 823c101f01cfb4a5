// Package element is the script-facing object model over native UI handles:
// wrappers, the handle registry, the container mutation protocol, style
// application, and event binding/dispatch. It keeps a script-side shadow of
// the native tree and guarantees the two never diverge across any completed
// mutation, including reorders and reparenting.
package element

import (
	"log"

	"github.com/halcyon-ui/halcyon/native"
)

// Element wraps one native element handle. The parent field is a lookup
// aid kept in sync by the mutation protocol; ownership of the tree lives in
// the native layer. The children slice is the shadow sequence mirroring the
// native child order.
type Element struct {
	backend  native.Backend
	registry *Registry
	handle   native.Handle
	kind     native.Kind

	style      native.Style
	hoverStyle native.Style

	parent   *Element
	children []*Element

	events *EventRegistration
	closed bool
}

// New creates a native element of the given kind, wraps it, and registers
// the wrapper. It fails with an ElementCreationError when the native layer
// returns no handle.
func New(registry *Registry, kind native.Kind) (*Element, error) {
	backend := registry.Backend()
	h := backend.CreateElement(kind)
	if h == native.NilHandle {
		return nil, errElementCreation("native layer refused to create %s element", kind)
	}
	e := &Element{backend: backend, registry: registry, handle: h, kind: kind}
	e.events = newElementEvents(e)
	if err := registry.Register(h, e); err != nil {
		backend.DestroyElement(h)
		return nil, err
	}
	return e, nil
}

// Adopt returns the wrapper for an existing native handle, constructing and
// registering one on demand when the handle has never been wrapped. This is
// how handles surfacing from native code (event targets, parent queries,
// body accessors) enter the object model.
func Adopt(registry *Registry, h native.Handle) (*Element, error) {
	if w := registry.Resolve(h); w != nil {
		if e, ok := w.(*Element); ok {
			return e, nil
		}
		return nil, errDuplicateHandle("handle %d is wrapped by a non-element", h)
	}
	backend := registry.Backend()
	kind, ok := backend.ElementKind(h)
	if !ok {
		return nil, errElementCreation("cannot adopt handle %d: not a live element", h)
	}
	e := &Element{backend: backend, registry: registry, handle: h, kind: kind}
	e.events = newElementEvents(e)
	if err := registry.Register(h, e); err != nil {
		return nil, err
	}
	return e, nil
}

// NativeHandle returns the wrapped handle.
func (e *Element) NativeHandle() native.Handle { return e.handle }

// Kind returns the element's native kind.
func (e *Element) Kind() native.Kind { return e.kind }

// Alive reports whether the wrapper still represents its handle.
func (e *Element) Alive() bool { return !e.closed }

// ContainerCapable reports whether this element may hold children.
func (e *Element) ContainerCapable() bool { return e.kind.ContainerCapable() }

// Events returns the element's event registration.
func (e *Element) Events() *EventRegistration { return e.events }

// Close releases the underlying native resource immediately, regardless of
// remaining script references, and invalidates the wrapper.
func (e *Element) Close() {
	if e.closed {
		return
	}
	if e.parent != nil {
		e.parent.RemoveChild(e)
	}
	e.events.unbindAll()
	e.registry.Release(e.handle)
	e.backend.DestroyElement(e.handle)
	e.closed = true
}

// SetStyle pushes a full style state to the native layer. Replace, not
// merge: the prior style state is gone after this call.
func (e *Element) SetStyle(style native.Style) {
	e.style = style.Clone()
	e.backend.SetStyle(e.handle, style)
}

// Style returns the last-assigned style as a cache fallback; the native
// layer holds the computed truth.
func (e *Element) Style() native.Style { return e.style.Clone() }

// SetHoverStyle pushes the style overlay applied while the element is in
// the native-determined hovered state.
func (e *Element) SetHoverStyle(style native.Style) {
	e.hoverStyle = style.Clone()
	e.backend.SetHoverStyle(e.handle, style)
}

// HoverStyle returns the last-assigned hover style.
func (e *Element) HoverStyle() native.Style { return e.hoverStyle.Clone() }

// Parent resolves the element's parent through the native-authoritative
// query and the registry, adopting an unwrapped parent on demand. The
// script-side back-reference alone is only trustworthy for mutations made
// through this framework, so cross-subtree queries go to the source.
func (e *Element) Parent() *Element {
	h := e.backend.Parent(e.handle)
	if h == native.NilHandle {
		return nil
	}
	if e.parent != nil && e.parent.handle == h {
		return e.parent
	}
	p, err := Adopt(e.registry, h)
	if err != nil {
		log.Printf("halcyon: cannot adopt parent handle %d: %v", h, err)
		return nil
	}
	return p
}

// OwnerWindow resolves the top-level surface owning this element, or nil
// for detached subtrees.
func (e *Element) OwnerWindow() Wrapper {
	h := e.backend.WindowOf(e.handle)
	if h == native.NilHandle {
		return nil
	}
	return e.registry.ResolveWindow(h)
}

// Focus moves input focus to this element.
func (e *Element) Focus() {
	e.backend.Focus(e.handle)
}

// indexOf returns the shadow-sequence index of child, or -1.
func (e *Element) indexOf(child *Element) int {
	for i, c := range e.children {
		if c == child {
			return i
		}
	}
	return -1
}

// AddChild inserts child at index, appending when index is negative or past
// the end. A child of another container is detached first (reparent); a
// child already here is reordered, with the target index adjusted for the
// removal shift so the result matches a true single-step move. After the
// call returns, the native and shadow orders are identical and
// child.Parent() == e.
func (e *Element) AddChild(child *Element, index int) error {
	if child == nil || !child.Alive() {
		return errElementCreation("cannot add a nil or closed child")
	}
	if !e.ContainerCapable() {
		return errNotContainer("%s element cannot hold children", e.kind)
	}
	if child == e {
		return errTreeCycle("cannot add an element to itself")
	}
	for p := e.parent; p != nil; p = p.parent {
		if p == child {
			return errTreeCycle("cannot add an ancestor as a child")
		}
	}

	if child.parent == e {
		return e.reorderChild(child, index)
	}
	if child.parent != nil {
		child.parent.RemoveChild(child)
	}

	if index < 0 || index > len(e.children) {
		index = len(e.children)
	}
	if err := e.backend.AddChild(e.handle, child.handle, index); err != nil {
		return err
	}
	e.children = append(e.children, nil)
	copy(e.children[index+1:], e.children[index:])
	e.children[index] = child
	child.parent = e
	return nil
}

// AppendChild adds child at the end.
func (e *Element) AppendChild(child *Element) error {
	return e.AddChild(child, len(e.children))
}

// reorderChild moves an existing child so it ends up at index, via
// remove-then-insert. The requested index names the child's final slot;
// because the removal already shifted later siblings left, inserting at
// that same position lands the child exactly where a single-step move
// would have put it.
func (e *Element) reorderChild(child *Element, index int) error {
	oldIndex := e.indexOf(child)
	if oldIndex < 0 {
		// Back-reference said this is our child but the shadow disagrees;
		// the invariant is broken upstream. Repair by plain insert.
		child.parent = nil
		return e.AddChild(child, index)
	}
	if index < 0 || index >= len(e.children) {
		index = len(e.children) - 1
	}
	if index == oldIndex {
		return nil
	}
	if err := e.backend.RemoveChild(e.handle, oldIndex); err != nil {
		return err
	}
	e.children = append(e.children[:oldIndex], e.children[oldIndex+1:]...)
	if err := e.backend.AddChild(e.handle, child.handle, index); err != nil {
		// The remove already took effect, so the child is in neither list;
		// the back-reference must agree.
		child.parent = nil
		return err
	}
	e.children = append(e.children, nil)
	copy(e.children[index+1:], e.children[index:])
	e.children[index] = child
	child.parent = e
	return nil
}

// AddChildBefore inserts newNode before referenceNode. When referenceNode
// is not currently a child the new node is appended, the same fallback
// AddChildAfter uses.
func (e *Element) AddChildBefore(newNode, referenceNode *Element) error {
	i := e.indexOf(referenceNode)
	if i < 0 {
		return e.AddChild(newNode, len(e.children))
	}
	return e.AddChild(newNode, i)
}

// AddChildAfter inserts newNode after referenceNode, appending when
// referenceNode is not currently a child.
func (e *Element) AddChildAfter(newNode, referenceNode *Element) error {
	i := e.indexOf(referenceNode)
	if i < 0 {
		return e.AddChild(newNode, len(e.children))
	}
	return e.AddChild(newNode, i+1)
}

// RemoveChild detaches child. Removing nil or a non-child is a logged
// no-op.
func (e *Element) RemoveChild(child *Element) {
	if child == nil {
		log.Printf("halcyon: remove child: nil child on element %d", e.handle)
		return
	}
	i := e.indexOf(child)
	if i < 0 {
		log.Printf("halcyon: remove child: element %d is not a child of %d", child.handle, e.handle)
		return
	}
	if err := e.backend.RemoveChild(e.handle, i); err != nil {
		log.Printf("halcyon: remove child: %v", err)
		return
	}
	e.children = append(e.children[:i], e.children[i+1:]...)
	child.parent = nil
}

// RemoveAllChildren detaches every child, front to back. It stops when a
// removal makes no progress, so a failing backend cannot wedge the loop.
func (e *Element) RemoveAllChildren() {
	for len(e.children) > 0 {
		n := len(e.children)
		e.RemoveChild(e.children[0])
		if len(e.children) == n {
			return
		}
	}
}

// Children returns a snapshot of the shadow sequence. Mutating the returned
// slice does not touch the live tree.
func (e *Element) Children() []*Element {
	return append([]*Element(nil), e.children...)
}

// ChildCount returns the number of children.
func (e *Element) ChildCount() int { return len(e.children) }
