// Package native defines the call contract between the script-facing object
// model and the native layer that owns windows, elements, layout, and input.
// The object model never touches a concrete toolkit directly; it speaks to a
// Backend, and everything a Backend hands out is an opaque Handle.
package native

import "strings"

// Handle is an opaque identifier for a native UI primitive (element or
// window). Handles are minted by the Backend; callers never synthesize them.
type Handle int64

// NilHandle is the zero handle, returned when creation fails or a lookup
// finds nothing.
const NilHandle Handle = 0

// Kind identifies the native element variety behind a handle.
type Kind int

const (
	KindContainer Kind = iota + 1
	KindScroll
	KindLabel
	KindEntry
	KindButton
	KindTextEdit
	KindImage
)

var kindNames = map[Kind]string{
	KindContainer: "container",
	KindScroll:    "scroll",
	KindLabel:     "label",
	KindEntry:     "entry",
	KindButton:    "button",
	KindTextEdit:  "text-edit",
	KindImage:     "image",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ContainerCapable reports whether elements of this kind may hold children.
// Leaf kinds (label, entry, button, text-edit, image) reject child mutation.
func (k Kind) ContainerCapable() bool {
	return k == KindContainer || k == KindScroll
}

// KindByName resolves a kind from its script-visible name.
func KindByName(name string) (Kind, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

// Style is a full style state for an element. Assigning a style replaces the
// prior state; merging partial updates is the caller's job.
type Style map[string]string

// Clone returns an independent copy of the style.
func (s Style) Clone() Style {
	if s == nil {
		return nil
	}
	out := make(Style, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Event types understood by the dispatch contract. Types are matched
// case-insensitively; the canonical form is lower-case.
const (
	EventClick        = "click"
	EventContextMenu  = "contextmenu"
	EventMouseDown    = "mousedown"
	EventMouseUp      = "mouseup"
	EventMouseMove    = "mousemove"
	EventMouseEnter   = "mouseenter"
	EventMouseLeave   = "mouseleave"
	EventMouseWheel   = "mousewheel"
	EventKeyDown      = "keydown"
	EventKeyUp        = "keyup"
	EventFocus        = "focus"
	EventBlur         = "blur"
	EventTextChange   = "textchange"
	EventScroll       = "scroll"
	EventBoundsChange = "boundschange"
	EventResize       = "resize"
	EventCloseRequest = "close"
)

// MouseDetail is the payload for click/mouse events.
type MouseDetail struct {
	X, Y             float32
	WindowX, WindowY float32
	Button           int
}

// WheelDetail is the payload for mousewheel events.
type WheelDetail struct {
	X, Y           float32
	DeltaX, DeltaY float32
}

// KeyDetail is the payload for keydown/keyup events.
type KeyDetail struct {
	Key    string
	Code   string
	Ctrl   bool
	Shift  bool
	Alt    bool
	Meta   bool
	Repeat bool
}

// TextDetail is the payload for textchange events.
type TextDetail struct {
	Value string
}

// ScrollDetail is the payload for scroll events.
type ScrollDetail struct {
	Left, Top float32
}

// BoundsDetail is the payload for boundschange/resize events.
type BoundsDetail struct {
	X, Y          float32
	Width, Height float32
}

// DispatchResult is what the script side reports back after a listener ran.
// The native dispatcher uses it for bubbling and default-action decisions.
type DispatchResult struct {
	PropagationCancelled bool
	PreventDefault       bool
}

// merge folds another listener's result into this one. Once a listener
// cancels or prevents, the flag sticks for the remaining dispatch.
func (r DispatchResult) merge(other DispatchResult) DispatchResult {
	return DispatchResult{
		PropagationCancelled: r.PropagationCancelled || other.PropagationCancelled,
		PreventDefault:       r.PreventDefault || other.PreventDefault,
	}
}

// Thunk is the native-to-script dispatch entry point for one registration.
// The native layer invokes it synchronously on the UI thread with the event
// detail and the handle the event originated on.
type Thunk func(detail any, target Handle) DispatchResult

// RegistrationID identifies one bound event listener at the native layer.
type RegistrationID uint32

// WindowAttributes configures window creation.
type WindowAttributes struct {
	Title   string
	Width   float32
	Height  float32
	Visible bool
	Modal   bool
}

// Backend is the native collaborator consumed by the object model. All calls
// happen on the UI thread; implementations do not need to be goroutine-safe
// beyond tolerating re-entrant registration during dispatch.
type Backend interface {
	// CreateElement allocates a native element of the given kind.
	// NilHandle signals creation failure.
	CreateElement(kind Kind) Handle
	// DestroyElement releases the native element and its subtree immediately.
	DestroyElement(h Handle)
	// ElementKind reports the kind behind a handle, if it is a live element.
	ElementKind(h Handle) (Kind, bool)

	// SetJsContext and JsContext are the native-side slot used as the
	// handle registry's storage for the handle-to-wrapper association.
	SetJsContext(h Handle, ctx any)
	JsContext(h Handle) any

	// AddChild inserts child into parent's child list at index. The native
	// child list is the authoritative order.
	AddChild(parent, child Handle, index int) error
	// RemoveChild detaches the child at index from parent.
	RemoveChild(parent Handle, index int) error
	// Parent returns the native-authoritative parent, or NilHandle.
	Parent(h Handle) Handle

	// SetStyle replaces the element's style state and triggers recompute.
	SetStyle(h Handle, style Style)
	// SetHoverStyle replaces the style overlay applied while hovered.
	SetHoverStyle(h Handle, style Style)

	// BindEventListener registers a dispatch thunk for (h, eventType) and
	// returns an identifier for targeted removal. Multiple registrations
	// per pair are allowed and fire in registration order.
	BindEventListener(h Handle, eventType string, thunk Thunk) RegistrationID
	// UnbindEventListener removes a registration. Unknown ids are ignored.
	UnbindEventListener(h Handle, id RegistrationID)

	// Focus moves input focus to the element.
	Focus(h Handle)

	// CreateWindow allocates a native top-level window.
	// NilHandle signals creation failure.
	CreateWindow(attrs WindowAttributes) Handle
	// CloseWindow destroys the window and its content tree.
	CloseWindow(h Handle)
	// SetWindowBody installs an element as the window's root container.
	SetWindowBody(window, body Handle)
	SetWindowTitle(h Handle, title string)
	SetWindowVisible(h Handle, visible bool)
	// WindowOf resolves the top-level window owning an element, or NilHandle
	// for detached subtrees.
	WindowOf(h Handle) Handle

	// BindWindowEventListener and UnbindWindowEventListener mirror the
	// element flavor for window-level events (resize, close, focus).
	BindWindowEventListener(h Handle, eventType string, thunk Thunk) RegistrationID
	UnbindWindowEventListener(h Handle, id RegistrationID)

	// SupportsMultipleWindows reports a platform capability. It is queried
	// per call by surface composition; it never changes at runtime.
	SupportsMultipleWindows() bool
}

// bubbles reports whether an event type propagates to ancestors. Focus,
// bounds, text, and scroll events are delivered to their target only,
// matching the input model of the windowing collaborator.
func bubbles(eventType string) bool {
	switch eventType {
	case EventClick, EventContextMenu, EventMouseDown, EventMouseUp,
		EventMouseMove, EventMouseWheel, EventKeyDown, EventKeyUp:
		return true
	}
	return false
}
