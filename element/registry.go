package element

import (
	"sync"

	"github.com/halcyon-ui/halcyon/native"
)

// Wrapper is the script-side object that exclusively represents one native
// handle. Elements and windows both satisfy it; each handle has at most one
// live wrapper at a time.
type Wrapper interface {
	NativeHandle() native.Handle
	// Alive reports whether the wrapper still represents its handle. A
	// closed or released wrapper is dead and may be transparently replaced
	// in the registry.
	Alive() bool
}

// RawHandle is the fallback wrapper used when dispatch reports a target
// handle that cannot be resolved or adopted. It carries the handle and
// nothing else.
type RawHandle native.Handle

// NativeHandle returns the wrapped handle.
func (h RawHandle) NativeHandle() native.Handle { return native.Handle(h) }

// Alive always reports true; a raw handle has no lifecycle of its own.
func (h RawHandle) Alive() bool { return true }

// Registry maps native handles to their script-side wrappers. Element
// associations live in the backend's js-context slot, so they share the
// native record's lifetime and vanish with it. Window wrappers live in a
// separate namespace, keyed in the registry itself.
//
// The registry does not own native resources: resolving never extends a
// handle's native lifetime, and releasing an entry never destroys the
// native object.
type Registry struct {
	backend native.Backend

	mu      sync.Mutex
	windows map[native.Handle]Wrapper
}

// NewRegistry creates a registry over the given backend.
func NewRegistry(backend native.Backend) *Registry {
	return &Registry{
		backend: backend,
		windows: make(map[native.Handle]Wrapper),
	}
}

// Backend returns the backend this registry stores element wrappers in.
func (r *Registry) Backend() native.Backend { return r.backend }

// Register associates an element handle with its wrapper. It fails with a
// DuplicateHandleError if the handle already has a live wrapper; a dead
// wrapper (closed, released) is transparently replaced.
func (r *Registry) Register(h native.Handle, w Wrapper) error {
	if existing, ok := r.backend.JsContext(h).(Wrapper); ok && existing.Alive() && existing != w {
		return errDuplicateHandle("handle %d already has a live wrapper", h)
	}
	r.backend.SetJsContext(h, w)
	return nil
}

// Resolve returns the wrapper for an element handle, or nil when the handle
// is unknown, its native counterpart was destroyed, or the wrapper is dead.
func (r *Registry) Resolve(h native.Handle) Wrapper {
	w, ok := r.backend.JsContext(h).(Wrapper)
	if !ok || !w.Alive() {
		return nil
	}
	return w
}

// Release drops the association for an element handle. Afterward Resolve
// returns nil. The native resource is untouched; callers that want
// immediate native destruction use Element.Close.
func (r *Registry) Release(h native.Handle) {
	r.backend.SetJsContext(h, nil)
}

// RegisterWindow associates a window handle with its wrapper, in a
// namespace distinct from element handles.
func (r *Registry) RegisterWindow(h native.Handle, w Wrapper) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.windows[h]; ok && existing.Alive() && existing != w {
		return errDuplicateHandle("window handle %d already has a live wrapper", h)
	}
	r.windows[h] = w
	return nil
}

// ResolveWindow returns the wrapper for a window handle, or nil.
func (r *Registry) ResolveWindow(h native.Handle) Wrapper {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.windows[h]
	if !ok || !w.Alive() {
		return nil
	}
	return w
}

// ReleaseWindow drops the association for a window handle.
func (r *Registry) ReleaseWindow(h native.Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.windows, h)
}
