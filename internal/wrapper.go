package internal

import (
	"sync"
	"sync/atomic"
)

// Callback completes a loader invocation that went asynchronous
type Callback func(err error, content []byte)

// LoaderContext is what the host hands a loader on every invocation.
type LoaderContext interface {
	// ResourcePath is the resource being transformed
	ResourcePath() string
	// Loaders are the paths of the loaders applied to the resource
	Loaders() []string
	// Async tells the host the loader will finish later. The host waits for the returned
	// callback instead of the loader's return value. Returns nil if the host doesn't support it.
	Async() Callback
}

// LoaderFunc is a loader transforming content synchronously, unless it calls ctx.Async()
type LoaderFunc func(ctx LoaderContext, content []byte) ([]byte, error)

// DeferredLoaderFunc is a loader that always completes by calling done
type DeferredLoaderFunc func(ctx LoaderContext, content []byte, done Callback)

// HookObject is a loader exposing several named entry points (e.g. "normal" and "pitch").
// Fields holds anything that isn't a hook, such as a "raw" flag, and is passed through as is.
type HookObject struct {
	Hooks        map[string]LoaderFunc
	Fields       map[string]any
	instrumented bool
}

// Module is whatever the host's module resolution returns for a loader
type Module any

// Shape is the kind of module being wrapped, decided once at wrap time
type Shape int

const (
	ShapeUnknown Shape = iota
	ShapeFunction
	ShapeHookObject
	ShapeDeferred
)

func (s Shape) String() string {
	switch s {
	case ShapeFunction:
		return "function"
	case ShapeHookObject:
		return "hook object"
	case ShapeDeferred:
		return "deferred"
	default:
		return "unknown"
	}
}

// Classify returns the shape of a module
func Classify(m Module) Shape {
	switch v := m.(type) {
	case LoaderFunc, func(LoaderContext, []byte) ([]byte, error):
		return ShapeFunction
	case DeferredLoaderFunc, func(LoaderContext, []byte, Callback):
		return ShapeDeferred
	case *HookObject:
		if v != nil {
			return ShapeHookObject
		}
	}
	return ShapeUnknown
}

// IsInstrumented reports whether the module is known to be the output of a Wrapper.
// Only hook objects carry the mark, functions can't.
func IsInstrumented(m Module) bool {
	obj, ok := m.(*HookObject)
	return ok && obj != nil && obj.instrumented
}

// Wrapper turns loaders into loaders that report a start and an end event for every invocation.
type Wrapper struct {
	ids  *IDSource
	emit EmitFunc
}

func NewWrapper(ids *IDSource, emit EmitFunc) *Wrapper {
	if ids == nil {
		ids = &IDSource{}
	}
	return &Wrapper{ids: ids, emit: emit}
}

// Instrument wraps a resolved loader module, naming its group after the loader package found in path
// (or the path itself for project local loaders).
// It can be handed to an InterceptionRegistry as its InstrumentFunc.
func (w *Wrapper) Instrument(m Module, path string) Module {
	return w.Wrap(m, LoaderDisplayName(path))
}

// Wrap wraps a module according to its shape. Modules of unknown shape are returned unchanged.
func (w *Wrapper) Wrap(m Module, groupKey string) Module {
	switch Classify(m) {
	case ShapeFunction:
		return w.wrapFunc(asLoaderFunc(m), groupKey)
	case ShapeDeferred:
		return w.wrapDeferred(asDeferredLoaderFunc(m), groupKey)
	case ShapeHookObject:
		return w.wrapHooks(m.(*HookObject), groupKey)
	default:
		return m
	}
}

func asLoaderFunc(m Module) LoaderFunc {
	if fn, ok := m.(LoaderFunc); ok {
		return fn
	}
	return LoaderFunc(m.(func(LoaderContext, []byte) ([]byte, error)))
}

func asDeferredLoaderFunc(m Module) DeferredLoaderFunc {
	if fn, ok := m.(DeferredLoaderFunc); ok {
		return fn
	}
	return DeferredLoaderFunc(m.(func(LoaderContext, []byte, Callback)))
}

// invocation tracks one call of a wrapped loader
type invocation struct {
	id       InvocationID
	emit     EmitFunc
	endOnce  sync.Once
	deferred atomic.Bool // set when the loader acquired its completion callback
}

func (w *Wrapper) begin(groupKey string, ctx LoaderContext) *invocation {
	inv := &invocation{id: w.ids.Next(), emit: w.emit}

	var resource string
	if ctx != nil {
		resource = ctx.ResourcePath()
	}
	w.send(Event{ID: inv.id, GroupKey: groupKey, Resource: resource, Type: EventStart})

	return inv
}

func (w *Wrapper) send(ev Event) {
	if w.emit != nil {
		w.emit(ev)
	}
}

// end emits the end event. Only the first call has an effect.
func (inv *invocation) end() {
	inv.endOnce.Do(func() {
		if inv.emit != nil {
			inv.emit(Event{ID: inv.id, Type: EventEnd})
		}
	})
}

// context returns the context handed to the original loader
func (inv *invocation) context(ctx LoaderContext) LoaderContext {
	if ctx == nil {
		return nil
	}
	return &instrumentedContext{inner: ctx, invocation: inv}
}

// wrapDone returns a completion callback that ends the invocation before completing it
func (inv *invocation) wrapDone(done Callback) Callback {
	return func(err error, content []byte) {
		inv.end()
		if done != nil {
			done(err, content)
		}
	}
}

func (w *Wrapper) wrapFunc(fn LoaderFunc, groupKey string) LoaderFunc {
	return func(ctx LoaderContext, content []byte) ([]byte, error) {
		inv := w.begin(groupKey, ctx)

		returned := false
		defer func() {
			// Panicking loaders still get their end event, the panic carries on
			if !returned {
				inv.end()
			}
		}()

		out, err := fn(inv.context(ctx), content)
		returned = true

		if !inv.deferred.Load() {
			inv.end()
		}
		return out, err
	}
}

func (w *Wrapper) wrapDeferred(fn DeferredLoaderFunc, groupKey string) DeferredLoaderFunc {
	return func(ctx LoaderContext, content []byte, done Callback) {
		inv := w.begin(groupKey, ctx)

		returned := false
		defer func() {
			if !returned {
				inv.end()
			}
		}()

		fn(inv.context(ctx), content, inv.wrapDone(done))
		returned = true
	}
}

func (w *Wrapper) wrapHooks(obj *HookObject, groupKey string) *HookObject {
	if obj.instrumented {
		return obj
	}

	res := &HookObject{
		Hooks:        make(map[string]LoaderFunc, len(obj.Hooks)),
		Fields:       obj.Fields,
		instrumented: true,
	}
	// Every hook gets its own invocations
	for name, hook := range obj.Hooks {
		if hook == nil {
			res.Hooks[name] = nil
			continue
		}
		res.Hooks[name] = w.wrapFunc(hook, groupKey)
	}

	return res
}

// instrumentedContext is the context a wrapped loader sees. It forwards to the host's context,
// except for Async whose callback also ends the invocation.
type instrumentedContext struct {
	inner      LoaderContext
	invocation *invocation
}

func (c *instrumentedContext) ResourcePath() string {
	return c.inner.ResourcePath()
}

func (c *instrumentedContext) Loaders() []string {
	return c.inner.Loaders()
}

func (c *instrumentedContext) Async() Callback {
	return deferCompletion(c.inner.Async, c.invocation)()
}

// deferCompletion decorates the acquisition of a completion callback. Once acquired, the invocation
// no longer ends when the loader returns but when the callback is called.
func deferCompletion(acquire func() Callback, inv *invocation) func() Callback {
	return func() Callback {
		done := acquire()
		if done == nil {
			// Host doesn't support asynchronous loaders
			return nil
		}
		inv.deferred.Store(true)
		return inv.wrapDone(done)
	}
}
