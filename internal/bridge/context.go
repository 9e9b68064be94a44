package bridge

import (
	"errors"
	"sync/atomic"

	"github.com/dshills/widgetry/internal/errs"
	"github.com/dshills/widgetry/internal/event"
	"github.com/dshills/widgetry/internal/native"
)

var (
	// ErrUnknownKey is reported when a native callback carries a key with
	// no live context.
	ErrUnknownKey = errors.New("bridge: no context for key")
	// ErrChannelType is reported when a key resolves to a channel of the
	// wrong type.
	ErrChannelType = errors.New("bridge: channel type mismatch")
	// ErrInfoType is reported when native event info cannot be converted
	// to the channel's payload type.
	ErrInfoType = errors.New("bridge: event info type mismatch")
)

// Context is one live bridge between a native callback and a channel.
type Context struct {
	reg     *Registry
	key     native.Data
	label   string
	tracer  event.Tracer
	channel any

	unregister func()
	released   atomic.Bool
}

// Key returns the opaque key registered with the toolkit.
func (c *Context) Key() native.Data { return c.key }

// Label returns the debug label.
func (c *Context) Label() string { return c.label }

// Released reports whether Release has run.
func (c *Context) Released() bool { return c.released.Load() }

// Release unregisters the native callback and then frees the registry
// entry. Later calls do nothing.
func (c *Context) Release() {
	if !c.released.CompareAndSwap(false, true) {
		return
	}
	if c.unregister != nil {
		c.unregister()
	}
	c.reg.remove(c.key)
}

// deliver traces the label and runs raise, reporting any failure.
func (c *Context) deliver(op string, raise func() error) {
	if c.label != "" && c.tracer != nil && c.tracer.Enabled() {
		c.tracer.Trace(c.label)
	}
	if err := raise(); err != nil {
		errs.Report(&errs.Error{Op: op, Kind: errs.KindBridge, Label: c.label, Err: err})
	}
}

// Option configures a bridge.
type Option func(*options)

type options struct {
	registry *Registry
	label    string
	tracer   event.Tracer
}

// WithLabel sets the debug label traced before every delivery.
func WithLabel(label string) Option {
	return func(o *options) {
		o.label = label
	}
}

// WithTracer sets the trace sink. It defaults to the registry's.
func WithTracer(t event.Tracer) Option {
	return func(o *options) {
		o.tracer = t
	}
}

// WithRegistry places the context in r instead of the default registry.
func WithRegistry(r *Registry) Option {
	return func(o *options) {
		o.registry = r
	}
}

func newContext(channel any, opts []Option) *Context {
	o := options{registry: defaultRegistry}
	for _, opt := range opts {
		opt(&o)
	}
	if o.tracer == nil {
		o.tracer = o.registry.defaultTracer()
	}
	c := &Context{
		reg:     o.registry,
		label:   o.label,
		tracer:  o.tracer,
		channel: channel,
	}
	o.registry.add(c)
	return c
}
