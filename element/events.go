package element

import (
	"log"
	"strings"
	"sync"

	"github.com/halcyon-ui/halcyon/native"
)

// Callback is a script-side event listener. It receives the ephemeral Event
// for one dispatch and may flag it via StopPropagation/PreventDefault.
type Callback func(*Event)

// Event is created per dispatch and destroyed when dispatch completes.
// Holding one past the callback return is a use-after-logical-life mistake
// the framework never relies on.
type Event struct {
	Type          string
	Detail        any
	Target        Wrapper
	CurrentTarget Wrapper

	propagationCancelled bool
	defaultPrevented     bool
}

// StopPropagation asks the native dispatcher not to bubble further.
func (ev *Event) StopPropagation() { ev.propagationCancelled = true }

// PreventDefault asks the native dispatcher to skip the default action.
func (ev *Event) PreventDefault() { ev.defaultPrevented = true }

// PropagationCancelled reports whether StopPropagation was called.
func (ev *Event) PropagationCancelled() bool { return ev.propagationCancelled }

// DefaultPrevented reports whether PreventDefault was called.
func (ev *Event) DefaultPrevented() bool { return ev.defaultPrevented }

// bindFunc and unbindFunc abstract over the element and window flavors of
// the native listener contract.
type (
	bindFunc   func(h native.Handle, eventType string, thunk native.Thunk) native.RegistrationID
	unbindFunc func(h native.Handle, id native.RegistrationID)
)

// EventRegistration binds script callbacks to one native event source. It
// supports both lifecycle policies of the contract: single-slot (bindEvent
// replaces the active callback per type) and multi-slot (addEventListener
// issues independently removable registrations).
type EventRegistration struct {
	owner    Wrapper
	handle   native.Handle
	registry *Registry
	bind     bindFunc
	unbind   unbindFunc

	mu     sync.Mutex
	single map[string]native.RegistrationID
	multi  map[string]map[native.RegistrationID]struct{}
}

func newElementEvents(e *Element) *EventRegistration {
	return &EventRegistration{
		owner:    e,
		handle:   e.handle,
		registry: e.registry,
		bind:     e.backend.BindEventListener,
		unbind:   e.backend.UnbindEventListener,
		single:   make(map[string]native.RegistrationID),
		multi:    make(map[string]map[native.RegistrationID]struct{}),
	}
}

// NewWindowEvents creates an event registration over the window flavor of
// the native listener contract.
func NewWindowEvents(owner Wrapper, registry *Registry) *EventRegistration {
	backend := registry.Backend()
	return &EventRegistration{
		owner:    owner,
		handle:   owner.NativeHandle(),
		registry: registry,
		bind:     backend.BindWindowEventListener,
		unbind:   backend.UnbindWindowEventListener,
		single:   make(map[string]native.RegistrationID),
		multi:    make(map[string]map[native.RegistrationID]struct{}),
	}
}

// BindEvent installs callback as the single active listener for eventType,
// silently unregistering any prior single-slot binding for that type first.
// Types match case-insensitively. A nil callback fails with an
// InvalidCallbackError; no partial registration occurs.
func (r *EventRegistration) BindEvent(eventType string, callback Callback) error {
	if callback == nil {
		return errInvalidCallback("bindEvent %q: callback is not callable", eventType)
	}
	eventType = strings.ToLower(eventType)

	r.mu.Lock()
	prev, had := r.single[eventType]
	r.mu.Unlock()
	if had {
		r.unbind(r.handle, prev)
	}

	id := r.bind(r.handle, eventType, r.thunk(eventType, callback))
	r.mu.Lock()
	r.single[eventType] = id
	r.mu.Unlock()
	return nil
}

// UnbindEvent removes the single-slot binding for eventType. Unbinding an
// unset slot is a logged no-op.
func (r *EventRegistration) UnbindEvent(eventType string) {
	eventType = strings.ToLower(eventType)
	r.mu.Lock()
	id, ok := r.single[eventType]
	delete(r.single, eventType)
	r.mu.Unlock()
	if !ok {
		log.Printf("halcyon: unbind %q: no active binding", eventType)
		return
	}
	r.unbind(r.handle, id)
}

// AddEventListener installs an independently removable listener for
// eventType and returns its registration id. Multiple listeners per type
// coexist and fire in registration order.
func (r *EventRegistration) AddEventListener(eventType string, callback Callback) (native.RegistrationID, error) {
	if callback == nil {
		return 0, errInvalidCallback("addEventListener %q: callback is not callable", eventType)
	}
	eventType = strings.ToLower(eventType)
	id := r.bind(r.handle, eventType, r.thunk(eventType, callback))
	r.mu.Lock()
	if r.multi[eventType] == nil {
		r.multi[eventType] = make(map[native.RegistrationID]struct{})
	}
	r.multi[eventType][id] = struct{}{}
	r.mu.Unlock()
	return id, nil
}

// RemoveEventListener removes one multi-slot registration. Removing an id
// that is not registered under eventType is a no-op, not an error.
func (r *EventRegistration) RemoveEventListener(eventType string, id native.RegistrationID) {
	eventType = strings.ToLower(eventType)
	r.mu.Lock()
	ids, ok := r.multi[eventType]
	if ok {
		_, ok = ids[id]
		delete(ids, id)
	}
	r.mu.Unlock()
	if !ok {
		return
	}
	r.unbind(r.handle, id)
}

// UnbindAll tears down every native registration, used when the owner is
// closed.
func (r *EventRegistration) UnbindAll() { r.unbindAll() }

func (r *EventRegistration) unbindAll() {
	r.mu.Lock()
	single := r.single
	multi := r.multi
	r.single = make(map[string]native.RegistrationID)
	r.multi = make(map[string]map[native.RegistrationID]struct{})
	r.mu.Unlock()

	for _, id := range single {
		r.unbind(r.handle, id)
	}
	for _, ids := range multi {
		for id := range ids {
			r.unbind(r.handle, id)
		}
	}
}

// thunk adapts a script callback to the native dispatch contract. It
// resolves the target handle to a wrapper (adopting on demand, falling back
// to the raw handle), builds the ephemeral event, and contains any panic
// the callback raises: a faulty listener is logged, never allowed to abort
// the native dispatch loop. A callback that panicked reports the default
// result, not whatever flags it set before dying.
func (r *EventRegistration) thunk(eventType string, callback Callback) native.Thunk {
	return func(detail any, target native.Handle) (result native.DispatchResult) {
		ev := &Event{
			Type:          eventType,
			Detail:        detail,
			Target:        r.resolveTarget(target),
			CurrentTarget: r.owner,
		}
		defer func() {
			if p := recover(); p != nil {
				log.Printf("halcyon: %q listener panic: %v", eventType, p)
				result = native.DispatchResult{}
			}
		}()
		callback(ev)
		return native.DispatchResult{
			PropagationCancelled: ev.propagationCancelled,
			PreventDefault:       ev.defaultPrevented,
		}
	}
}

// resolveTarget maps the handle the native layer reported back to a
// wrapper. Resolution never extends the handle's native lifetime.
func (r *EventRegistration) resolveTarget(h native.Handle) Wrapper {
	if h == r.handle {
		return r.owner
	}
	if w := r.registry.Resolve(h); w != nil {
		return w
	}
	if w := r.registry.ResolveWindow(h); w != nil {
		return w
	}
	if e, err := Adopt(r.registry, h); err == nil {
		return e
	}
	return RawHandle(h)
}
