// Package js hosts the scripting layer: a goja runtime with timers and a
// cooperative event loop, plus the bindings that expose the element object
// model and window surfaces to scripts.
package js

import (
	"fmt"
	"sync"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/console"
	"github.com/dop251/goja_nodejs/require"
)

// Runtime wraps a goja runtime with the ambient globals scripts expect:
// console, require, timers, and microtask queueing. All script execution is
// synchronous on the calling (UI) thread.
type Runtime struct {
	vm      *goja.Runtime
	timers  *timerManager
	loop    *eventLoop
	mu      sync.Mutex
	errors  []error
	onError func(error)
}

// NewRuntime creates a runtime with globals installed.
func NewRuntime() *Runtime {
	vm := goja.New()

	r := &Runtime{
		vm:     vm,
		timers: newTimerManager(),
		loop:   newEventLoop(),
	}

	registry := require.NewRegistry()
	registry.Enable(vm)
	console.Enable(vm)

	r.setupTimers()
	r.setupGlobals()
	return r
}

// VM returns the underlying goja runtime.
func (r *Runtime) VM() *goja.Runtime { return r.vm }

// SetOnError sets a callback invoked for every script error.
func (r *Runtime) SetOnError(handler func(error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onError = handler
}

// Execute runs a snippet of JavaScript and returns its completion value.
func (r *Runtime) Execute(code string) (result goja.Value, err error) {
	// Recover from panics in the goja parser/runtime
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("script execution panic: %v", p)
			r.recordError(err)
		}
	}()

	result, err = r.vm.RunString(code)
	if err != nil {
		r.recordError(err)
	}
	return result, err
}

// ExecuteScript compiles and runs a named script. Errors are recorded and
// returned; they never abort the host.
func (r *Runtime) ExecuteScript(code, src string) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("script compilation panic in %s: %v", src, p)
			r.recordError(err)
		}
	}()

	program, err := goja.Compile(src, code, false)
	if err != nil {
		r.recordError(err)
		return err
	}
	_, err = r.vm.RunProgram(program)
	if err != nil {
		r.recordError(err)
	}
	return err
}

func (r *Runtime) recordError(err error) {
	r.mu.Lock()
	r.errors = append(r.errors, err)
	handler := r.onError
	r.mu.Unlock()
	if handler != nil {
		handler(err)
	}
}

// Errors returns the errors recorded so far.
func (r *Runtime) Errors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error{}, r.errors...)
}

// ClearErrors discards the recorded errors.
func (r *Runtime) ClearErrors() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = r.errors[:0]
}

// RunEventLoop processes one iteration of the cooperative loop: all
// microtasks, due timers, then one macrotask. It reports whether work
// remains.
func (r *Runtime) RunEventLoop() bool {
	return r.loop.runOnce(r)
}

// Drain runs the loop until no work remains or maxIterations is hit.
func (r *Runtime) Drain(maxIterations int) {
	for i := 0; i < maxIterations && r.RunEventLoop(); i++ {
	}
}

// HasPendingWork reports whether timers or queued tasks are waiting.
func (r *Runtime) HasPendingWork() bool {
	return r.timers.hasPending() || r.loop.hasPending()
}

// QueueMicrotask schedules a callable ahead of the next macrotask.
func (r *Runtime) QueueMicrotask(fn goja.Callable) {
	r.loop.queueMicrotask(fn, nil)
}

// setupTimers installs setTimeout, setInterval, and their clear functions.
func (r *Runtime) setupTimers() {
	r.vm.Set("setTimeout", func(call goja.FunctionCall) goja.Value {
		return r.scheduleTimer(call, false)
	})
	r.vm.Set("setInterval", func(call goja.FunctionCall) goja.Value {
		return r.scheduleTimer(call, true)
	})
	clear := func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) > 0 {
			r.timers.clearTimer(int(call.Arguments[0].ToInteger()))
		}
		return goja.Undefined()
	}
	r.vm.Set("clearTimeout", clear)
	r.vm.Set("clearInterval", clear)
}

func (r *Runtime) scheduleTimer(call goja.FunctionCall, repeating bool) goja.Value {
	if len(call.Arguments) < 1 {
		return goja.Undefined()
	}
	callback, ok := goja.AssertFunction(call.Arguments[0])
	if !ok {
		return goja.Undefined()
	}
	delay := int64(0)
	if len(call.Arguments) > 1 {
		delay = call.Arguments[1].ToInteger()
	}
	if delay < 0 {
		delay = 0
	}
	var args []goja.Value
	if len(call.Arguments) > 2 {
		args = call.Arguments[2:]
	}
	var id int
	if repeating {
		// Minimum interval of 4ms, matching browser timer clamping.
		if delay < 4 {
			delay = 4
		}
		id = r.timers.setInterval(callback, msDuration(delay), args)
	} else {
		id = r.timers.setTimeout(callback, msDuration(delay), args)
	}
	return r.vm.ToValue(id)
}

// setupGlobals installs the minimal global surface scripts rely on.
func (r *Runtime) setupGlobals() {
	global := r.vm.GlobalObject()
	r.vm.Set("globalThis", global)
	r.vm.Set("self", global)

	r.vm.Set("queueMicrotask", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			return goja.Undefined()
		}
		if callback, ok := goja.AssertFunction(call.Arguments[0]); ok {
			r.loop.queueMicrotask(callback, nil)
		}
		return goja.Undefined()
	})
}
