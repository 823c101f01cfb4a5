package js

import (
	"github.com/dop251/goja"

	"github.com/halcyon-ui/halcyon/element"
	"github.com/halcyon-ui/halcyon/native"
	"github.com/halcyon-ui/halcyon/ui"
)

// windowBinders maps window-level convenience binders to event types.
var windowBinders = map[string]string{
	"bindResize": native.EventResize,
	"bindClose":  native.EventCloseRequest,
}

// setupWindowPrototype installs the Window constructor. Scripts create
// windows with new Window({title, width, height, modal}).
func (b *ElementBinder) setupWindowPrototype() {
	vm := b.runtime.vm

	b.windowProto = vm.NewObject()
	ctor := vm.ToValue(func(call goja.ConstructorCall) *goja.Object {
		opts := ui.Options{}
		if len(call.Arguments) > 0 {
			if arg, ok := call.Arguments[0].(*goja.Object); ok {
				if v := arg.Get("title"); v != nil && !goja.IsUndefined(v) {
					opts.Title = v.String()
				}
				if v := arg.Get("width"); v != nil && !goja.IsUndefined(v) {
					opts.Width = float32(v.ToFloat())
				}
				if v := arg.Get("height"); v != nil && !goja.IsUndefined(v) {
					opts.Height = float32(v.ToFloat())
				}
				if v := arg.Get("modal"); v != nil && !goja.IsUndefined(v) {
					opts.Modal = v.ToBoolean()
				}
			}
		}
		w, err := b.app.NewWindow(opts)
		if err != nil {
			b.throw(err)
		}
		obj := call.This
		b.populateWindow(obj, w)
		b.winObjects[w.NativeHandle()] = obj
		return obj
	}).ToObject(vm)
	ctor.Set("prototype", b.windowProto)
	b.windowProto.Set("constructor", ctor)
	vm.Set("Window", ctor)
}

// BindWindow returns the JS object for a window wrapper.
func (b *ElementBinder) BindWindow(w *ui.Window) *goja.Object {
	h := w.NativeHandle()
	if obj, ok := b.winObjects[h]; ok {
		if v := obj.Get("_goWindow"); v != nil {
			if cur, ok := v.Export().(*ui.Window); ok && cur == w {
				return obj
			}
		}
		delete(b.listeners, obj)
	}
	obj := b.runtime.vm.NewObject()
	obj.SetPrototype(b.windowProto)
	b.populateWindow(obj, w)
	b.winObjects[h] = obj
	return obj
}

func (b *ElementBinder) populateWindow(obj *goja.Object, w *ui.Window) {
	vm := b.runtime.vm

	obj.Set("_goWindow", w)

	obj.DefineAccessorProperty("title",
		vm.ToValue(func(call goja.FunctionCall) goja.Value {
			return vm.ToValue(w.Title())
		}),
		vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) > 0 {
				w.SetTitle(call.Arguments[0].String())
			}
			return goja.Undefined()
		}),
		goja.FLAG_FALSE, goja.FLAG_TRUE)

	obj.DefineAccessorProperty("body", vm.ToValue(func(call goja.FunctionCall) goja.Value {
		return b.BindElement(w.Body())
	}), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)

	obj.DefineAccessorProperty("alive", vm.ToValue(func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(w.Alive())
	}), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)

	obj.Set("show", func(call goja.FunctionCall) goja.Value {
		w.Show()
		return goja.Undefined()
	})
	obj.Set("hide", func(call goja.FunctionCall) goja.Value {
		w.Hide()
		return goja.Undefined()
	})
	obj.Set("close", func(call goja.FunctionCall) goja.Value {
		h := w.NativeHandle()
		w.Close()
		delete(b.winObjects, h)
		delete(b.listeners, obj)
		return goja.Undefined()
	})

	obj.Set("pushPage", func(call goja.FunctionCall) goja.Value {
		name := ""
		if len(call.Arguments) > 0 {
			name = call.Arguments[0].String()
		}
		p, err := w.PushPage(name)
		if err != nil {
			b.throw(err)
		}
		page := vm.NewObject()
		page.Set("name", p.Name())
		page.Set("root", b.BindElement(p.Root()))
		return page
	})
	obj.Set("popPage", func(call goja.FunctionCall) goja.Value {
		if p := w.PopPage(); p != nil {
			return vm.ToValue(p.Name())
		}
		return goja.Null()
	})

	obj.Set("alert", func(call goja.FunctionCall) goja.Value {
		title, message := dialogArgs(call)
		var onClose func()
		if fn, _, ok := b.argCallback(call, 2); ok {
			onClose = func() {
				if _, err := fn(goja.Undefined()); err != nil {
					b.runtime.recordError(err)
				}
			}
		}
		if _, err := b.app.Alert(w, title, message, onClose); err != nil {
			b.throw(err)
		}
		return goja.Undefined()
	})

	obj.Set("confirm", func(call goja.FunctionCall) goja.Value {
		title, message := dialogArgs(call)
		var onResult func(bool)
		if fn, _, ok := b.argCallback(call, 2); ok {
			onResult = func(ok bool) {
				if _, err := fn(goja.Undefined(), vm.ToValue(ok)); err != nil {
					b.runtime.recordError(err)
				}
			}
		}
		if _, err := b.app.Confirm(w, title, message, onResult); err != nil {
			b.throw(err)
		}
		return goja.Undefined()
	})

	b.bindEventAPI(obj, w.Events())
	for method, eventType := range windowBinders {
		eventType := eventType
		obj.Set(method, func(call goja.FunctionCall) goja.Value {
			fn, _, ok := b.argCallback(call, 0)
			if !ok {
				b.throw(element.ErrInvalidCallback)
			}
			if err := w.Events().BindEvent(eventType, b.wrapCallback(fn)); err != nil {
				b.throw(err)
			}
			return goja.Undefined()
		})
	}
}

func dialogArgs(call goja.FunctionCall) (title, message string) {
	if len(call.Arguments) > 0 {
		title = call.Arguments[0].String()
	}
	if len(call.Arguments) > 1 {
		message = call.Arguments[1].String()
	}
	return title, message
}
