package native

import "sync"

// registration is one bound (handle, event type, thunk) triple.
type registration struct {
	id    RegistrationID
	typ   string
	thunk Thunk
}

// ListenerTable is the bookkeeping every Backend needs for event dispatch:
// registration ids, per-handle per-type thunk lists in registration order,
// and invocation with result merging. Both the headless and the fyne
// backends delegate to it.
type ListenerTable struct {
	mu       sync.Mutex
	nextID   RegistrationID
	byHandle map[Handle][]registration
	owners   map[RegistrationID]Handle
}

// NewListenerTable creates an empty table.
func NewListenerTable() *ListenerTable {
	return &ListenerTable{
		byHandle: make(map[Handle][]registration),
		owners:   make(map[RegistrationID]Handle),
	}
}

// Bind registers a thunk for (h, eventType) and returns its id.
func (t *ListenerTable) Bind(h Handle, eventType string, thunk Thunk) RegistrationID {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextID++
	id := t.nextID
	t.byHandle[h] = append(t.byHandle[h], registration{id: id, typ: eventType, thunk: thunk})
	t.owners[id] = h
	return id
}

// Unbind removes a registration from h. Unknown ids are ignored.
func (t *ListenerTable) Unbind(h Handle, id RegistrationID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if owner, ok := t.owners[id]; !ok || owner != h {
		return
	}
	delete(t.owners, id)
	regs := t.byHandle[h]
	for i, reg := range regs {
		if reg.id == id {
			t.byHandle[h] = append(regs[:i], regs[i+1:]...)
			break
		}
	}
}

// Drop discards all registrations for a handle, used on native destruction.
func (t *ListenerTable) Drop(h Handle) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, reg := range t.byHandle[h] {
		delete(t.owners, reg.id)
	}
	delete(t.byHandle, h)
}

// Has reports whether any listener is bound for (h, eventType).
func (t *ListenerTable) Has(h Handle, eventType string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, reg := range t.byHandle[h] {
		if reg.typ == eventType {
			return true
		}
	}
	return false
}

// Invoke calls every thunk bound for (h, eventType) in registration order,
// passing target as the originating handle, and merges their results. The
// registration list is snapshotted first so listeners may bind or unbind
// during dispatch without corrupting iteration.
func (t *ListenerTable) Invoke(h Handle, eventType string, detail any, target Handle) DispatchResult {
	t.mu.Lock()
	var snapshot []registration
	for _, reg := range t.byHandle[h] {
		if reg.typ == eventType {
			snapshot = append(snapshot, reg)
		}
	}
	t.mu.Unlock()

	var result DispatchResult
	for _, reg := range snapshot {
		result = result.merge(reg.thunk(detail, target))
	}
	return result
}

// FireBubbling delivers an event to target and, for bubbling event types,
// walks the parent chain until propagation is cancelled or the root is
// reached. Dispatch is synchronous on the calling (UI) thread.
func FireBubbling(b Backend, t *ListenerTable, target Handle, eventType string, detail any) DispatchResult {
	result := t.Invoke(target, eventType, detail, target)
	if !bubbles(eventType) {
		return result
	}
	for h := b.Parent(target); h != NilHandle && !result.PropagationCancelled; h = b.Parent(h) {
		result = result.merge(t.Invoke(h, eventType, detail, target))
	}
	return result
}
