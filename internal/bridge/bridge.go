package bridge

import (
	"errors"
	"fmt"

	"github.com/dshills/widgetry/internal/errs"
	"github.com/dshills/widgetry/internal/event"
	"github.com/dshills/widgetry/internal/native"
)

// ErrNilChannel is returned when a bridge is requested for a nil channel.
var ErrNilChannel = errors.New("bridge: nil channel")

// EventSource is the source raised for object events.
type EventSource struct {
	Canvas *native.Canvas
	Object *native.Object
}

// SignalInfo is the payload raised for theme signals.
type SignalInfo struct {
	Emission string
	Source   string
}

// Smart bridges a named smart event on obj to ch.
func Smart(tk native.Toolkit, obj *native.Object, name string, ch *event.Channel[*native.Object, any], opts ...Option) (*Context, error) {
	return SmartAs(tk, obj, name, ch, opts...)
}

// SmartAs bridges a named smart event whose info is converted to P. Info
// that is not a P is reported and not raised; nil info raises the zero P.
func SmartAs[P any](tk native.Toolkit, obj *native.Object, name string, ch *event.Channel[*native.Object, P], opts ...Option) (*Context, error) {
	const op = "bridge.Smart"
	if ch == nil {
		return nil, ErrNilChannel
	}
	c := newContext(ch, opts)
	reg := c.reg

	cb := func(data native.Data, o *native.Object, info any) {
		ctx, ch, ok := resolve[*event.Channel[*native.Object, P]](reg, data, op)
		if !ok {
			return
		}
		payload, ok := convert[P](info)
		if !ok {
			var want P
			errs.Report(&errs.Error{
				Op:    op,
				Kind:  errs.KindBridge,
				Label: ctx.label,
				Err:   fmt.Errorf("%w: %q info is %T, want %T", ErrInfoType, name, info, want),
			})
			return
		}
		ctx.deliver(op, func() error { return ch.Raise(o, payload) })
	}

	err := register(tk, obj, c, true,
		func() error { return tk.AddSmartCallback(obj, name, cb, c.key) },
		func() { tk.DelSmartCallback(obj, name, c.key) },
	)
	if err != nil {
		return nil, fmt.Errorf("bridge smart %q on %v: %w", name, obj, err)
	}
	return c, nil
}

// ObjectEvent bridges a low-level object event on obj to ch. A bridge for
// native.ObjectDel raises and then releases itself.
func ObjectEvent(tk native.Toolkit, obj *native.Object, typ native.ObjectEventType, ch *event.Channel[*EventSource, any], opts ...Option) (*Context, error) {
	const op = "bridge.ObjectEvent"
	if ch == nil {
		return nil, ErrNilChannel
	}
	c := newContext(ch, opts)
	reg := c.reg

	cb := func(data native.Data, canvas *native.Canvas, o *native.Object, info any) {
		ctx, ch, ok := resolve[*event.Channel[*EventSource, any]](reg, data, op)
		if !ok {
			return
		}
		ctx.deliver(op, func() error {
			return ch.Raise(&EventSource{Canvas: canvas, Object: o}, info)
		})
		if typ == native.ObjectDel {
			ctx.Release()
		}
	}

	err := register(tk, obj, c, typ != native.ObjectDel,
		func() error { return tk.AddObjectEventCallback(obj, typ, cb, c.key) },
		func() { tk.DelObjectEventCallback(obj, typ, c.key) },
	)
	if err != nil {
		return nil, fmt.Errorf("bridge object event %v on %v: %w", typ, obj, err)
	}
	return c, nil
}

// Signal bridges theme signals on obj matching the emission and source
// patterns to ch.
func Signal(tk native.Toolkit, obj *native.Object, emission, source string, ch *event.Channel[*native.Object, SignalInfo], opts ...Option) (*Context, error) {
	const op = "bridge.Signal"
	if ch == nil {
		return nil, ErrNilChannel
	}
	c := newContext(ch, opts)
	reg := c.reg

	cb := func(data native.Data, o *native.Object, em, src string) {
		ctx, ch, ok := resolve[*event.Channel[*native.Object, SignalInfo]](reg, data, op)
		if !ok {
			return
		}
		ctx.deliver(op, func() error {
			return ch.Raise(o, SignalInfo{Emission: em, Source: src})
		})
	}

	err := register(tk, obj, c, true,
		func() error { return tk.AddSignalCallback(obj, emission, source, cb, c.key) },
		func() { tk.DelSignalCallback(obj, emission, source, c.key) },
	)
	if err != nil {
		return nil, fmt.Errorf("bridge signal %q/%q on %v: %w", emission, source, obj, err)
	}
	return c, nil
}

// ItemSignal bridges theme signals on item to ch. The context is released
// when the item's parent object is deleted.
func ItemSignal(tk native.Toolkit, item *native.Item, emission, source string, ch *event.Channel[*native.Item, SignalInfo], opts ...Option) (*Context, error) {
	const op = "bridge.ItemSignal"
	if ch == nil {
		return nil, ErrNilChannel
	}
	if item == nil {
		return nil, native.ErrUnknownObject
	}
	c := newContext(ch, opts)
	reg := c.reg

	cb := func(data native.Data, it *native.Item, em, src string) {
		ctx, ch, ok := resolve[*event.Channel[*native.Item, SignalInfo]](reg, data, op)
		if !ok {
			return
		}
		ctx.deliver(op, func() error {
			return ch.Raise(it, SignalInfo{Emission: em, Source: src})
		})
	}

	err := register(tk, item.Parent(), c, true,
		func() error { return tk.AddItemSignalCallback(item, emission, source, cb, c.key) },
		func() { tk.DelItemSignalCallback(item, emission, source, c.key) },
	)
	if err != nil {
		return nil, fmt.Errorf("bridge item signal %q/%q on item %d: %w", emission, source, item.ID(), err)
	}
	return c, nil
}

// register adds the native callback and, when watchDel is set, an ObjectDel
// hook on obj that releases c. On failure c is dropped from the registry.
func register(tk native.Toolkit, obj *native.Object, c *Context, watchDel bool, add func() error, del func()) error {
	if err := add(); err != nil {
		c.abandon()
		return err
	}
	if !watchDel {
		c.unregister = del
		return nil
	}

	reg := c.reg
	onDel := func(data native.Data, _ *native.Canvas, _ *native.Object, _ any) {
		if ctx, ok := reg.Lookup(data); ok {
			ctx.Release()
		}
	}
	if err := tk.AddObjectEventCallback(obj, native.ObjectDel, onDel, c.key); err != nil {
		del()
		c.abandon()
		return err
	}
	c.unregister = func() {
		del()
		tk.DelObjectEventCallback(obj, native.ObjectDel, c.key)
	}
	return nil
}

func (c *Context) abandon() {
	c.released.Store(true)
	c.reg.remove(c.key)
}

func convert[P any](info any) (P, bool) {
	if info == nil {
		var zero P
		return zero, true
	}
	p, ok := info.(P)
	return p, ok
}
