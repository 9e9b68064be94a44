// Package component provides the lifecycle owner components build on.
//
// A Base creates its native object once, owns every bridge context attached
// to it and raises Destroyed when the object goes away, whether through
// Destroy or because the toolkit deleted it. Contexts are released only
// after the native object is gone.
package component

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dshills/widgetry/internal/bridge"
	"github.com/dshills/widgetry/internal/errs"
	"github.com/dshills/widgetry/internal/event"
	"github.com/dshills/widgetry/internal/native"
)

var (
	// ErrNotCreated is returned when a bridge is requested before Create.
	ErrNotCreated = errors.New("component: native object not created")
	// ErrDestroyed is returned for operations on a destroyed component.
	ErrDestroyed = errors.New("component: destroyed")
)

// Labeler is implemented by toolkits that can draw text in an object.
type Labeler interface {
	SetLabel(obj *native.Object, text string) error
}

// Base is embedded by components.
type Base struct {
	tk       native.Toolkit
	kind     string
	name     string
	registry *bridge.Registry
	tracer   event.Tracer

	mu        sync.Mutex
	obj       *native.Object
	contexts  []*bridge.Context
	destroyed atomic.Bool

	// Destroyed is raised once after the native object is gone.
	Destroyed event.Channel[*Base, struct{}]
}

// Option configures a Base.
type Option func(*Base)

// WithName sets the name used to build debug labels, "<name>.<event>".
func WithName(name string) Option {
	return func(b *Base) {
		b.name = name
	}
}

// WithRegistry sets the bridge registry.
func WithRegistry(r *bridge.Registry) Option {
	return func(b *Base) {
		b.registry = r
	}
}

// WithTracer sets the trace sink for bridged events.
func WithTracer(t event.Tracer) Option {
	return func(b *Base) {
		b.tracer = t
	}
}

// NewBase creates a Base for a native object of the given kind.
func NewBase(tk native.Toolkit, kind string, opts ...Option) *Base {
	b := &Base{tk: tk, kind: kind, name: kind, registry: bridge.Default()}
	for _, opt := range opts {
		opt(b)
	}
	b.Destroyed.Configure(event.WithLabel(b.name + ".destroyed"))
	return b
}

// Toolkit returns the toolkit the component lives on.
func (b *Base) Toolkit() native.Toolkit { return b.tk }

// Name returns the component name.
func (b *Base) Name() string { return b.name }

// Object returns the native object, or nil before Create.
func (b *Base) Object() *native.Object {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.obj
}

// IsDestroyed reports whether the native object is gone.
func (b *Base) IsDestroyed() bool { return b.destroyed.Load() }

// Create creates the native object on first call and returns it on every
// later call.
func (b *Base) Create() (*native.Object, error) {
	if b.IsDestroyed() {
		return nil, ErrDestroyed
	}
	b.mu.Lock()
	if b.obj != nil {
		obj := b.obj
		b.mu.Unlock()
		return obj, nil
	}
	obj, err := b.tk.NewObject(b.kind)
	if err != nil {
		b.mu.Unlock()
		return nil, fmt.Errorf("create %s: %w", b.kind, err)
	}
	b.obj = obj
	b.mu.Unlock()

	var del event.Channel[*bridge.EventSource, any]
	del.Listen(func(*bridge.EventSource, any) { b.teardown() })
	if _, err := b.track(bridge.ObjectEvent(b.tk, obj, native.ObjectDel, &del, b.bridgeOptions("del")...)); err != nil {
		return nil, err
	}
	return obj, nil
}

// Destroy deletes the native object and then releases every owned context.
func (b *Base) Destroy() error {
	obj := b.Object()
	if obj == nil {
		return ErrNotCreated
	}
	if b.IsDestroyed() {
		return ErrDestroyed
	}
	if err := b.tk.DestroyObject(obj); err != nil && !errors.Is(err, native.ErrUnknownObject) {
		return fmt.Errorf("destroy %v: %w", obj, err)
	}
	b.teardown()
	return nil
}

// teardown runs once, after the native object has been deleted.
func (b *Base) teardown() {
	if !b.destroyed.CompareAndSwap(false, true) {
		return
	}
	b.mu.Lock()
	contexts := b.contexts
	b.contexts = nil
	b.mu.Unlock()

	for _, c := range contexts {
		c.Release()
	}
	if err := b.Destroyed.Raise(b, struct{}{}); err != nil {
		errs.Report(&errs.Error{Op: "component.Destroy", Kind: errs.KindLifetime, Label: b.Destroyed.Label(), Err: err})
	}
}

// Own hands c to the component; it is released after the native object.
func (b *Base) Own(c *bridge.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.contexts = append(b.contexts, c)
}

// Contexts returns the number of owned contexts.
func (b *Base) Contexts() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.contexts)
}

func (b *Base) track(c *bridge.Context, err error) (*bridge.Context, error) {
	if err != nil {
		return nil, err
	}
	b.Own(c)
	return c, nil
}

func (b *Base) live() (*native.Object, error) {
	if b.IsDestroyed() {
		return nil, ErrDestroyed
	}
	obj := b.Object()
	if obj == nil {
		return nil, ErrNotCreated
	}
	return obj, nil
}

func (b *Base) bridgeOptions(event string) []bridge.Option {
	opts := []bridge.Option{bridge.WithRegistry(b.registry), bridge.WithLabel(b.name + "." + event)}
	if b.tracer != nil {
		opts = append(opts, bridge.WithTracer(b.tracer))
	}
	return opts
}

// Smart bridges the named smart event to ch.
func (b *Base) Smart(name string, ch *event.Channel[*native.Object, any]) (*bridge.Context, error) {
	return SmartAs(b, name, ch)
}

// SmartAs bridges the named smart event to ch, converting its info to P.
func SmartAs[P any](b *Base, name string, ch *event.Channel[*native.Object, P]) (*bridge.Context, error) {
	obj, err := b.live()
	if err != nil {
		return nil, err
	}
	return b.track(bridge.SmartAs(b.tk, obj, name, ch, b.bridgeOptions(name)...))
}

// ObjectEvent bridges a low-level object event to ch.
func (b *Base) ObjectEvent(typ native.ObjectEventType, ch *event.Channel[*bridge.EventSource, any]) (*bridge.Context, error) {
	obj, err := b.live()
	if err != nil {
		return nil, err
	}
	return b.track(bridge.ObjectEvent(b.tk, obj, typ, ch, b.bridgeOptions(typ.String())...))
}

// Signal bridges theme signals matching emission and source to ch.
func (b *Base) Signal(emission, source string, ch *event.Channel[*native.Object, bridge.SignalInfo]) (*bridge.Context, error) {
	obj, err := b.live()
	if err != nil {
		return nil, err
	}
	return b.track(bridge.Signal(b.tk, obj, emission, source, ch, b.bridgeOptions(emission)...))
}

// ItemSignal bridges theme signals on one of the component's items to ch.
func (b *Base) ItemSignal(item *native.Item, emission, source string, ch *event.Channel[*native.Item, bridge.SignalInfo]) (*bridge.Context, error) {
	if _, err := b.live(); err != nil {
		return nil, err
	}
	return b.track(bridge.ItemSignal(b.tk, item, emission, source, ch, b.bridgeOptions(item.Label()+"."+emission)...))
}
