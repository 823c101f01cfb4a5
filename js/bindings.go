package js

import (
	"strings"

	"github.com/dop251/goja"

	"github.com/halcyon-ui/halcyon/element"
	"github.com/halcyon-ui/halcyon/native"
	"github.com/halcyon-ui/halcyon/ui"
)

// kindConstructors maps script-visible constructor names to element kinds.
var kindConstructors = map[string]native.Kind{
	"Container": native.KindContainer,
	"Scroll":    native.KindScroll,
	"Label":     native.KindLabel,
	"Entry":     native.KindEntry,
	"Button":    native.KindButton,
	"TextEdit":  native.KindTextEdit,
	"Image":     native.KindImage,
}

// convenienceBinders maps per-event binder method names to event types.
var convenienceBinders = map[string]string{
	"bindClick":        native.EventClick,
	"bindContextMenu":  native.EventContextMenu,
	"bindMouseDown":    native.EventMouseDown,
	"bindMouseUp":      native.EventMouseUp,
	"bindMouseMove":    native.EventMouseMove,
	"bindMouseEnter":   native.EventMouseEnter,
	"bindMouseLeave":   native.EventMouseLeave,
	"bindMouseWheel":   native.EventMouseWheel,
	"bindKeyDown":      native.EventKeyDown,
	"bindKeyUp":        native.EventKeyUp,
	"bindFocus":        native.EventFocus,
	"bindBlur":         native.EventBlur,
	"bindTextChange":   native.EventTextChange,
	"bindScroll":       native.EventScroll,
	"bindBoundsChange": native.EventBoundsChange,
}

// jsListener pairs a native registration id with the original script value,
// so removeEventListener can match by callback identity.
type jsListener struct {
	id    native.RegistrationID
	value goja.Value
}

// ElementBinder exposes the element object model and window surfaces to
// scripts. It keeps one JS object per live handle so identity checks
// (a === b) hold across lookups.
type ElementBinder struct {
	runtime *Runtime
	app     *ui.App

	objects    map[native.Handle]*goja.Object
	winObjects map[native.Handle]*goja.Object
	listeners  map[*goja.Object]map[string][]jsListener

	elementProto *goja.Object
	kindProtos   map[native.Kind]*goja.Object
	windowProto  *goja.Object
}

// NewElementBinder creates a binder over an app and installs the global
// constructors.
func NewElementBinder(runtime *Runtime, app *ui.App) *ElementBinder {
	b := &ElementBinder{
		runtime:    runtime,
		app:        app,
		objects:    make(map[native.Handle]*goja.Object),
		winObjects: make(map[native.Handle]*goja.Object),
		listeners:  make(map[*goja.Object]map[string][]jsListener),
		kindProtos: make(map[native.Kind]*goja.Object),
	}
	b.setupPrototypes()
	return b
}

func (b *ElementBinder) registry() *element.Registry { return b.app.Registry() }

func (b *ElementBinder) throw(err error) {
	panic(b.runtime.vm.NewGoError(err))
}

// setupPrototypes creates the Element prototype chain and the per-kind
// constructors, so instanceof checks work from script.
func (b *ElementBinder) setupPrototypes() {
	vm := b.runtime.vm

	b.elementProto = vm.NewObject()
	elementCtor := vm.ToValue(func(call goja.ConstructorCall) *goja.Object {
		panic(vm.NewTypeError("Illegal constructor"))
	}).ToObject(vm)
	elementCtor.Set("prototype", b.elementProto)
	b.elementProto.Set("constructor", elementCtor)
	vm.Set("Element", elementCtor)

	for name, kind := range kindConstructors {
		kind := kind
		proto := vm.NewObject()
		proto.SetPrototype(b.elementProto)
		b.kindProtos[kind] = proto

		ctor := vm.ToValue(func(call goja.ConstructorCall) *goja.Object {
			e, err := element.New(b.registry(), kind)
			if err != nil {
				b.throw(err)
			}
			obj := call.This
			b.populateElement(obj, e)
			b.objects[e.NativeHandle()] = obj
			return obj
		}).ToObject(vm)
		ctor.Set("prototype", proto)
		proto.Set("constructor", ctor)
		vm.Set(name, ctor)
	}

	b.setupWindowPrototype()
}

// BindElement returns the JS object for an element wrapper, building and
// caching it on first sight.
func (b *ElementBinder) BindElement(e *element.Element) *goja.Object {
	h := e.NativeHandle()
	if obj, ok := b.objects[h]; ok {
		if cur := b.getGoElement(obj); cur == e {
			return obj
		}
		// The handle was reused by a new wrapper; the stale object must not
		// shadow it.
		delete(b.listeners, obj)
	}
	obj := b.runtime.vm.NewObject()
	if proto, ok := b.kindProtos[e.Kind()]; ok {
		obj.SetPrototype(proto)
	} else {
		obj.SetPrototype(b.elementProto)
	}
	b.populateElement(obj, e)
	b.objects[h] = obj
	return obj
}

// populateElement wires the script surface of one element onto obj.
func (b *ElementBinder) populateElement(obj *goja.Object, e *element.Element) {
	vm := b.runtime.vm

	obj.Set("_goElement", e)
	obj.Set("kind", e.Kind().String())

	obj.DefineAccessorProperty("alive", vm.ToValue(func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(e.Alive())
	}), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)

	obj.DefineAccessorProperty("parent", vm.ToValue(func(call goja.FunctionCall) goja.Value {
		p := e.Parent()
		if p == nil {
			return goja.Null()
		}
		return b.BindElement(p)
	}), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)

	obj.DefineAccessorProperty("children", vm.ToValue(func(call goja.FunctionCall) goja.Value {
		children := e.Children()
		out := make([]interface{}, len(children))
		for i, c := range children {
			out[i] = b.BindElement(c)
		}
		return vm.ToValue(out)
	}), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)

	obj.DefineAccessorProperty("window", vm.ToValue(func(call goja.FunctionCall) goja.Value {
		return b.bindWrapper(e.OwnerWindow())
	}), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)

	obj.DefineAccessorProperty("style",
		vm.ToValue(func(call goja.FunctionCall) goja.Value {
			return b.styleToJS(e.Style())
		}),
		vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) > 0 {
				e.SetStyle(b.jsToStyle(call.Arguments[0]))
			}
			return goja.Undefined()
		}),
		goja.FLAG_FALSE, goja.FLAG_TRUE)

	obj.DefineAccessorProperty("hoverStyle",
		vm.ToValue(func(call goja.FunctionCall) goja.Value {
			return b.styleToJS(e.HoverStyle())
		}),
		vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) > 0 {
				e.SetHoverStyle(b.jsToStyle(call.Arguments[0]))
			}
			return goja.Undefined()
		}),
		goja.FLAG_FALSE, goja.FLAG_TRUE)

	obj.Set("addChild", func(call goja.FunctionCall) goja.Value {
		child := b.argElement(call, 0, "addChild")
		index := -1
		if len(call.Arguments) > 1 && !goja.IsUndefined(call.Arguments[1]) {
			index = int(call.Arguments[1].ToInteger())
		}
		if err := e.AddChild(child, index); err != nil {
			b.throw(err)
		}
		return goja.Undefined()
	})

	obj.Set("addChildBefore", func(call goja.FunctionCall) goja.Value {
		newNode := b.argElement(call, 0, "addChildBefore")
		ref := b.argElement(call, 1, "addChildBefore")
		if err := e.AddChildBefore(newNode, ref); err != nil {
			b.throw(err)
		}
		return goja.Undefined()
	})

	obj.Set("addChildAfter", func(call goja.FunctionCall) goja.Value {
		newNode := b.argElement(call, 0, "addChildAfter")
		ref := b.argElement(call, 1, "addChildAfter")
		if err := e.AddChildAfter(newNode, ref); err != nil {
			b.throw(err)
		}
		return goja.Undefined()
	})

	obj.Set("appendChild", func(call goja.FunctionCall) goja.Value {
		child := b.argElement(call, 0, "appendChild")
		if err := e.AppendChild(child); err != nil {
			b.throw(err)
		}
		return goja.Undefined()
	})

	obj.Set("removeChild", func(call goja.FunctionCall) goja.Value {
		child := b.argElement(call, 0, "removeChild")
		e.RemoveChild(child)
		return goja.Undefined()
	})

	obj.Set("removeAllChildren", func(call goja.FunctionCall) goja.Value {
		e.RemoveAllChildren()
		return goja.Undefined()
	})

	obj.Set("focus", func(call goja.FunctionCall) goja.Value {
		e.Focus()
		return goja.Undefined()
	})

	obj.Set("close", func(call goja.FunctionCall) goja.Value {
		h := e.NativeHandle()
		e.Close()
		delete(b.objects, h)
		delete(b.listeners, obj)
		return goja.Undefined()
	})

	b.bindEventAPI(obj, e.Events())
	for method, eventType := range convenienceBinders {
		eventType := eventType
		obj.Set(method, func(call goja.FunctionCall) goja.Value {
			fn, _, ok := b.argCallback(call, 0)
			if !ok {
				b.throw(element.ErrInvalidCallback)
			}
			if err := e.Events().BindEvent(eventType, b.wrapCallback(fn)); err != nil {
				b.throw(err)
			}
			return goja.Undefined()
		})
	}
}

// bindEventAPI installs bindEvent/unbindEvent/addEventListener/
// removeEventListener over an event registration.
func (b *ElementBinder) bindEventAPI(obj *goja.Object, events *element.EventRegistration) {
	obj.Set("bindEvent", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 2 {
			b.throw(element.ErrInvalidCallback)
		}
		eventType := call.Arguments[0].String()
		fn, _, ok := b.argCallback(call, 1)
		if !ok {
			b.throw(element.ErrInvalidCallback)
		}
		if err := events.BindEvent(eventType, b.wrapCallback(fn)); err != nil {
			b.throw(err)
		}
		return goja.Undefined()
	})

	obj.Set("unbindEvent", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) > 0 {
			events.UnbindEvent(call.Arguments[0].String())
		}
		return goja.Undefined()
	})

	obj.Set("addEventListener", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 2 {
			b.throw(element.ErrInvalidCallback)
		}
		// The identity map must use the same canonical form the native
		// registration is filed under.
		eventType := strings.ToLower(call.Arguments[0].String())
		fn, value, ok := b.argCallback(call, 1)
		if !ok {
			b.throw(element.ErrInvalidCallback)
		}

		// Registering the same callback twice for a type is a no-op,
		// matching the web EventTarget contract.
		for _, l := range b.listeners[obj][eventType] {
			if l.value.SameAs(value) {
				return goja.Undefined()
			}
		}

		id, err := events.AddEventListener(eventType, b.wrapCallback(fn))
		if err != nil {
			b.throw(err)
		}
		if b.listeners[obj] == nil {
			b.listeners[obj] = make(map[string][]jsListener)
		}
		b.listeners[obj][eventType] = append(b.listeners[obj][eventType], jsListener{id: id, value: value})
		return goja.Undefined()
	})

	obj.Set("removeEventListener", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 2 {
			return goja.Undefined()
		}
		eventType := strings.ToLower(call.Arguments[0].String())
		value := call.Arguments[1]
		list := b.listeners[obj][eventType]
		for i, l := range list {
			if l.value.SameAs(value) {
				b.listeners[obj][eventType] = append(list[:i], list[i+1:]...)
				events.RemoveEventListener(eventType, l.id)
				break
			}
		}
		return goja.Undefined()
	})
}

// wrapCallback adapts a script function to the object model's callback
// contract. A thrown exception is recorded and re-raised so the dispatch
// boundary discards the event's flags.
func (b *ElementBinder) wrapCallback(fn goja.Callable) element.Callback {
	return func(ev *element.Event) {
		jsEv := b.buildEvent(ev)
		if _, err := fn(goja.Undefined(), jsEv); err != nil {
			b.runtime.recordError(err)
			panic(err)
		}
	}
}

// buildEvent creates the script-visible event object for one dispatch.
func (b *ElementBinder) buildEvent(ev *element.Event) *goja.Object {
	vm := b.runtime.vm
	obj := vm.NewObject()

	obj.Set("type", ev.Type)
	obj.Set("target", b.bindWrapper(ev.Target))
	obj.Set("currentTarget", b.bindWrapper(ev.CurrentTarget))
	obj.Set("detail", b.bindDetail(ev.Detail))

	obj.Set("stopPropagation", func(call goja.FunctionCall) goja.Value {
		ev.StopPropagation()
		return goja.Undefined()
	})
	obj.Set("preventDefault", func(call goja.FunctionCall) goja.Value {
		ev.PreventDefault()
		return goja.Undefined()
	})
	return obj
}

// bindDetail flattens a native detail payload into a script object.
func (b *ElementBinder) bindDetail(detail any) goja.Value {
	vm := b.runtime.vm
	switch d := detail.(type) {
	case nil:
		return goja.Null()
	case native.MouseDetail:
		obj := vm.NewObject()
		obj.Set("x", d.X)
		obj.Set("y", d.Y)
		obj.Set("windowX", d.WindowX)
		obj.Set("windowY", d.WindowY)
		obj.Set("button", d.Button)
		return obj
	case native.WheelDetail:
		obj := vm.NewObject()
		obj.Set("x", d.X)
		obj.Set("y", d.Y)
		obj.Set("deltaX", d.DeltaX)
		obj.Set("deltaY", d.DeltaY)
		return obj
	case native.KeyDetail:
		obj := vm.NewObject()
		obj.Set("key", d.Key)
		obj.Set("code", d.Code)
		obj.Set("ctrlKey", d.Ctrl)
		obj.Set("shiftKey", d.Shift)
		obj.Set("altKey", d.Alt)
		obj.Set("metaKey", d.Meta)
		obj.Set("repeat", d.Repeat)
		return obj
	case native.TextDetail:
		obj := vm.NewObject()
		obj.Set("value", d.Value)
		return obj
	case native.ScrollDetail:
		obj := vm.NewObject()
		obj.Set("scrollLeft", d.Left)
		obj.Set("scrollTop", d.Top)
		return obj
	case native.BoundsDetail:
		obj := vm.NewObject()
		obj.Set("x", d.X)
		obj.Set("y", d.Y)
		obj.Set("width", d.Width)
		obj.Set("height", d.Height)
		return obj
	default:
		return vm.ToValue(d)
	}
}

// bindWrapper maps an object-model wrapper to its script counterpart.
func (b *ElementBinder) bindWrapper(w element.Wrapper) goja.Value {
	switch t := w.(type) {
	case nil:
		return goja.Null()
	case *element.Element:
		return b.BindElement(t)
	case *ui.Window:
		return b.BindWindow(t)
	default:
		// Raw handles surface as plain numbers; there is nothing else to
		// show for them.
		return b.runtime.vm.ToValue(int64(w.NativeHandle()))
	}
}

// getGoElement extracts the element wrapper behind a script object.
func (b *ElementBinder) getGoElement(obj *goja.Object) *element.Element {
	if obj == nil {
		return nil
	}
	if v := obj.Get("_goElement"); v != nil && !goja.IsUndefined(v) && !goja.IsNull(v) {
		if e, ok := v.Export().(*element.Element); ok {
			return e
		}
	}
	return nil
}

// argElement resolves a call argument to an element wrapper or throws.
func (b *ElementBinder) argElement(call goja.FunctionCall, i int, op string) *element.Element {
	vm := b.runtime.vm
	if len(call.Arguments) <= i {
		panic(vm.NewTypeError("%s: missing element argument", op))
	}
	obj, ok := call.Arguments[i].(*goja.Object)
	if !ok {
		panic(vm.NewTypeError("%s: argument %d is not an element", op, i))
	}
	e := b.getGoElement(obj)
	if e == nil {
		panic(vm.NewTypeError("%s: argument %d is not an element", op, i))
	}
	return e
}

// argCallback extracts a callable argument plus its raw value.
func (b *ElementBinder) argCallback(call goja.FunctionCall, i int) (goja.Callable, goja.Value, bool) {
	if len(call.Arguments) <= i {
		return nil, nil, false
	}
	fn, ok := goja.AssertFunction(call.Arguments[i])
	if !ok {
		return nil, nil, false
	}
	return fn, call.Arguments[i], true
}

// styleToJS converts a style map to a plain script object.
func (b *ElementBinder) styleToJS(style native.Style) goja.Value {
	vm := b.runtime.vm
	obj := vm.NewObject()
	for k, v := range style {
		obj.Set(k, v)
	}
	return obj
}

// jsToStyle converts a script object to a style map. Non-object values
// produce an empty style, which clears the element's style state.
func (b *ElementBinder) jsToStyle(v goja.Value) native.Style {
	style := native.Style{}
	obj, ok := v.(*goja.Object)
	if !ok {
		return style
	}
	for _, key := range obj.Keys() {
		style[key] = obj.Get(key).String()
	}
	return style
}
