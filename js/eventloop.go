package js

import (
	"sync"

	"github.com/dop251/goja"
)

// task is one queued callback.
type task struct {
	callback goja.Callable
	args     []goja.Value
}

// eventLoop is the cooperative micro/macrotask queue. The host drives it
// explicitly between native event deliveries; nothing runs on its own
// goroutine.
type eventLoop struct {
	mu         sync.Mutex
	microtasks []task
	macrotasks []task
}

func newEventLoop() *eventLoop {
	return &eventLoop{}
}

func (el *eventLoop) queueMicrotask(callback goja.Callable, args []goja.Value) {
	el.mu.Lock()
	defer el.mu.Unlock()
	el.microtasks = append(el.microtasks, task{callback: callback, args: args})
}

func (el *eventLoop) queueMacrotask(callback goja.Callable, args []goja.Value) {
	el.mu.Lock()
	defer el.mu.Unlock()
	el.macrotasks = append(el.macrotasks, task{callback: callback, args: args})
}

// runOnce drains all microtasks, runs due timers, then one macrotask.
// Returns true while work remains.
func (el *eventLoop) runOnce(r *Runtime) bool {
	for {
		el.mu.Lock()
		if len(el.microtasks) == 0 {
			el.mu.Unlock()
			break
		}
		t := el.microtasks[0]
		el.microtasks = el.microtasks[1:]
		el.mu.Unlock()

		_, _ = t.callback(goja.Undefined(), t.args...)
	}

	r.timers.process()

	el.mu.Lock()
	if len(el.macrotasks) > 0 {
		t := el.macrotasks[0]
		el.macrotasks = el.macrotasks[1:]
		el.mu.Unlock()
		_, _ = t.callback(goja.Undefined(), t.args...)
		return true
	}
	el.mu.Unlock()

	return el.hasPending() || r.timers.hasPending()
}

func (el *eventLoop) hasPending() bool {
	el.mu.Lock()
	defer el.mu.Unlock()
	return len(el.microtasks) > 0 || len(el.macrotasks) > 0
}
