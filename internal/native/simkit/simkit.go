// Package simkit is an in-memory native toolkit. It runs a real UI loop on
// whichever goroutine calls Loop and lets callers inject input, which makes
// it the toolkit for tests and headless runs.
package simkit

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/dshills/widgetry/internal/errs"
	"github.com/dshills/widgetry/internal/logging"
	"github.com/dshills/widgetry/internal/native"
)

// Toolkit is the simulated toolkit.
type Toolkit struct {
	canvas *native.Canvas
	cb     *native.Callbacks
	logger *logging.Logger

	mu      sync.Mutex
	nextID  uint64
	objects map[uint64]*native.Object
	items   map[uint64]*native.Item
	labels  map[uint64]string
	queue   []func()
	stopped bool

	wake     chan struct{}
	quit     chan struct{}
	quitOnce sync.Once
	loopID   atomic.Uint64
}

// Option configures a Toolkit.
type Option func(*Toolkit)

// WithLogger sets the toolkit logger.
func WithLogger(l *logging.Logger) Option {
	return func(t *Toolkit) {
		t.logger = l
	}
}

// New creates a simulated toolkit.
func New(opts ...Option) *Toolkit {
	t := &Toolkit{
		canvas:  native.NewCanvasHandle(1, "sim"),
		cb:      native.NewCallbacks(),
		logger:  logging.Get(),
		objects: make(map[uint64]*native.Object),
		items:   make(map[uint64]*native.Item),
		labels:  make(map[uint64]string),
		wake:    make(chan struct{}, 1),
		quit:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = t.logger.WithComponent("simkit")
	return t
}

// Name implements native.Toolkit.
func (t *Toolkit) Name() string { return "sim" }

// Canvas implements native.Toolkit.
func (t *Toolkit) Canvas() *native.Canvas { return t.canvas }

// NewObject implements native.Toolkit.
func (t *Toolkit) NewObject(kind string) (*native.Object, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextID++
	obj := native.NewObjectHandle(t.nextID, kind)
	t.objects[obj.ID()] = obj
	return obj, nil
}

// NewItem implements native.Toolkit.
func (t *Toolkit) NewItem(parent *native.Object, label string) (*native.Item, error) {
	if !t.alive(parent) {
		return nil, native.ErrUnknownObject
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextID++
	item := native.NewItemHandle(t.nextID, parent, label)
	t.items[item.ID()] = item
	return item, nil
}

// DestroyObject implements native.Toolkit.
func (t *Toolkit) DestroyObject(obj *native.Object) error {
	if !t.alive(obj) {
		return native.ErrUnknownObject
	}
	t.mu.Lock()
	delete(t.objects, obj.ID())
	delete(t.labels, obj.ID())
	for id, item := range t.items {
		if item.Parent() == obj {
			delete(t.items, id)
		}
	}
	t.mu.Unlock()

	t.cb.DispatchObjectEvent(t.canvas, obj, native.ObjectDel, nil)
	t.cb.Forget(obj)
	t.logger.Debug("destroyed %v", obj)
	return nil
}

// SetLabel records the text shown by obj.
func (t *Toolkit) SetLabel(obj *native.Object, text string) error {
	if !t.alive(obj) {
		return native.ErrUnknownObject
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.labels[obj.ID()] = text
	return nil
}

// Label returns the text last set on obj.
func (t *Toolkit) Label(obj *native.Object) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.labels[obj.ID()]
}

// Alive reports whether obj has been created and not destroyed.
func (t *Toolkit) Alive(obj *native.Object) bool {
	return t.alive(obj)
}

func (t *Toolkit) alive(obj *native.Object) bool {
	if obj == nil {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.objects[obj.ID()] == obj
}

func (t *Toolkit) itemAlive(item *native.Item) bool {
	if item == nil {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.items[item.ID()] == item
}

// AddSmartCallback implements native.Toolkit.
func (t *Toolkit) AddSmartCallback(obj *native.Object, event string, cb native.SmartCallback, data native.Data) error {
	if !t.alive(obj) {
		return native.ErrUnknownObject
	}
	return t.cb.AddSmart(obj, event, cb, data)
}

// DelSmartCallback implements native.Toolkit.
func (t *Toolkit) DelSmartCallback(obj *native.Object, event string, data native.Data) bool {
	return t.cb.DelSmart(obj, event, data)
}

// AddObjectEventCallback implements native.Toolkit.
func (t *Toolkit) AddObjectEventCallback(obj *native.Object, typ native.ObjectEventType, cb native.ObjectEventCallback, data native.Data) error {
	if !t.alive(obj) {
		return native.ErrUnknownObject
	}
	return t.cb.AddObjectEvent(obj, typ, cb, data)
}

// DelObjectEventCallback implements native.Toolkit.
func (t *Toolkit) DelObjectEventCallback(obj *native.Object, typ native.ObjectEventType, data native.Data) bool {
	return t.cb.DelObjectEvent(obj, typ, data)
}

// AddSignalCallback implements native.Toolkit.
func (t *Toolkit) AddSignalCallback(obj *native.Object, emission, source string, cb native.SignalCallback, data native.Data) error {
	if !t.alive(obj) {
		return native.ErrUnknownObject
	}
	return t.cb.AddSignal(obj, emission, source, cb, data)
}

// DelSignalCallback implements native.Toolkit.
func (t *Toolkit) DelSignalCallback(obj *native.Object, emission, source string, data native.Data) bool {
	return t.cb.DelSignal(obj, emission, source, data)
}

// AddItemSignalCallback implements native.Toolkit.
func (t *Toolkit) AddItemSignalCallback(item *native.Item, emission, source string, cb native.ItemSignalCallback, data native.Data) error {
	if !t.itemAlive(item) {
		return native.ErrUnknownObject
	}
	return t.cb.AddItemSignal(item, emission, source, cb, data)
}

// DelItemSignalCallback implements native.Toolkit.
func (t *Toolkit) DelItemSignalCallback(item *native.Item, emission, source string, data native.Data) bool {
	return t.cb.DelItemSignal(item, emission, source, data)
}

// CallbackCount returns the callbacks registered on obj and its items.
func (t *Toolkit) CallbackCount(obj *native.Object) int {
	return t.cb.Count(obj)
}

// Post implements native.Toolkit. Functions posted before Loop starts run
// once it does.
func (t *Toolkit) Post(fn func()) error {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return native.ErrLoopStopped
	}
	t.queue = append(t.queue, fn)
	t.mu.Unlock()

	select {
	case t.wake <- struct{}{}:
	default:
	}
	return nil
}

// Go implements native.Toolkit.
func (t *Toolkit) Go(fn func()) {
	go func() {
		defer errs.Recover("simkit.Go")
		fn()
	}()
}

// Loop implements native.Toolkit.
func (t *Toolkit) Loop(ctx context.Context) error {
	t.loopID.Store(goroutineID())
	t.logger.Debug("loop started")
	defer t.logger.Debug("loop stopped")
	defer t.stop()

	for {
		t.drain()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.quit:
			return nil
		case <-t.wake:
		}
	}
}

// Quit implements native.Toolkit. Post fails from here on; functions
// already queued still run before Loop returns.
func (t *Toolkit) Quit() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
	t.quitOnce.Do(func() { close(t.quit) })
}

// stop refuses further posts and runs what was accepted before.
func (t *Toolkit) stop() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
	t.drain()
}

func (t *Toolkit) drain() {
	for {
		t.mu.Lock()
		if len(t.queue) == 0 {
			t.mu.Unlock()
			return
		}
		batch := t.queue
		t.queue = nil
		t.mu.Unlock()

		for _, fn := range batch {
			t.run(fn)
		}
	}
}

func (t *Toolkit) run(fn func()) {
	defer errs.Recover("simkit.Loop")
	fn()
}

var _ native.Toolkit = (*Toolkit)(nil)
