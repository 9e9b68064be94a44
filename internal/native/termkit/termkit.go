// Package termkit is a native toolkit drawn on a terminal with tcell.
//
// Objects are rectangular screen regions. tcell mouse, key, resize and focus
// events are translated into the native callback shapes: object events for
// raw input, smart "clicked"/"activated"/"selected" events, and
// "mouse,clicked,1" signals from source "termkit".
package termkit

import (
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/widgetry/internal/errs"
	"github.com/dshills/widgetry/internal/logging"
	"github.com/dshills/widgetry/internal/native"
)

// signal source for every theme signal termkit emits
const source = "termkit"

type quitToken struct{}

type wakeToken struct{}

type region struct {
	obj     *native.Object
	x, y    int
	w, h    int
	label   string
	visible bool
	items   []*native.Item
}

func (r *region) contains(x, y int) bool {
	return r.visible && x >= r.x && x < r.x+r.w && y >= r.y && y < r.y+r.h
}

// Toolkit is the terminal toolkit.
type Toolkit struct {
	screen tcell.Screen
	canvas *native.Canvas
	cb     *native.Callbacks
	logger *logging.Logger

	mu       sync.Mutex
	nextID   uint64
	regions  []*region
	items    map[uint64]*native.Item
	focus    *native.Object
	pressed  *native.Object
	queue    []func()
	stopped  bool
	quit     chan struct{}
	quitOnce sync.Once
}

// Option configures a Toolkit.
type Option func(*Toolkit)

// WithScreen uses s instead of the process terminal.
func WithScreen(s tcell.Screen) Option {
	return func(t *Toolkit) {
		t.screen = s
	}
}

// WithLogger sets the toolkit logger.
func WithLogger(l *logging.Logger) Option {
	return func(t *Toolkit) {
		t.logger = l
	}
}

// New creates a terminal toolkit. Call Init before Loop.
func New(opts ...Option) (*Toolkit, error) {
	t := &Toolkit{
		canvas: native.NewCanvasHandle(1, "terminal"),
		cb:     native.NewCallbacks(),
		logger: logging.Get(),
		items:  make(map[uint64]*native.Item),
		quit:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = t.logger.WithComponent("termkit")

	if t.screen == nil {
		screen, err := tcell.NewScreen()
		if err != nil {
			return nil, err
		}
		t.screen = screen
	}
	return t, nil
}

// Init initializes the screen and enables mouse reporting.
func (t *Toolkit) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.screen.Init(); err != nil {
		return err
	}
	t.screen.EnableMouse()
	return nil
}

// Shutdown restores the terminal.
func (t *Toolkit) Shutdown() {
	t.screen.Fini()
}

// Name implements native.Toolkit.
func (t *Toolkit) Name() string { return "term" }

// Canvas implements native.Toolkit.
func (t *Toolkit) Canvas() *native.Canvas { return t.canvas }

// Size returns the screen size in cells.
func (t *Toolkit) Size() (int, int) {
	return t.screen.Size()
}

// NewObject implements native.Toolkit. The object starts visible with an
// empty region; place it with SetBounds.
func (t *Toolkit) NewObject(kind string) (*native.Object, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextID++
	obj := native.NewObjectHandle(t.nextID, kind)
	t.regions = append(t.regions, &region{obj: obj, visible: true})
	return obj, nil
}

// NewItem implements native.Toolkit. Items occupy one row each inside the
// parent's region, in creation order.
func (t *Toolkit) NewItem(parent *native.Object, label string) (*native.Item, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r := t.regionLocked(parent)
	if r == nil {
		return nil, native.ErrUnknownObject
	}
	t.nextID++
	item := native.NewItemHandle(t.nextID, parent, label)
	r.items = append(r.items, item)
	t.items[item.ID()] = item
	return item, nil
}

// DestroyObject implements native.Toolkit.
func (t *Toolkit) DestroyObject(obj *native.Object) error {
	t.mu.Lock()
	r := t.regionLocked(obj)
	if r == nil {
		t.mu.Unlock()
		return native.ErrUnknownObject
	}
	for i, rr := range t.regions {
		if rr == r {
			t.regions = append(t.regions[:i:i], t.regions[i+1:]...)
			break
		}
	}
	for _, item := range r.items {
		delete(t.items, item.ID())
	}
	if t.focus == obj {
		t.focus = nil
	}
	if t.pressed == obj {
		t.pressed = nil
	}
	t.mu.Unlock()

	t.cb.DispatchObjectEvent(t.canvas, obj, native.ObjectDel, nil)
	t.cb.Forget(obj)
	return nil
}

// SetBounds places obj on the screen.
func (t *Toolkit) SetBounds(obj *native.Object, x, y, w, h int) error {
	t.mu.Lock()
	r := t.regionLocked(obj)
	if r == nil {
		t.mu.Unlock()
		return native.ErrUnknownObject
	}
	r.x, r.y, r.w, r.h = x, y, w, h
	t.mu.Unlock()

	t.cb.DispatchObjectEvent(t.canvas, obj, native.Resize, native.ResizeInfo{Width: w, Height: h})
	return nil
}

// SetLabel sets the text drawn inside obj.
func (t *Toolkit) SetLabel(obj *native.Object, label string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	r := t.regionLocked(obj)
	if r == nil {
		return native.ErrUnknownObject
	}
	r.label = label
	return nil
}

// SetVisible shows or hides obj. Hidden objects receive no mouse input.
func (t *Toolkit) SetVisible(obj *native.Object, visible bool) error {
	t.mu.Lock()
	r := t.regionLocked(obj)
	if r == nil {
		t.mu.Unlock()
		return native.ErrUnknownObject
	}
	changed := r.visible != visible
	r.visible = visible
	t.mu.Unlock()

	if changed {
		typ := native.Hide
		if visible {
			typ = native.Show
		}
		t.cb.DispatchObjectEvent(t.canvas, obj, typ, nil)
	}
	return nil
}

// Focus moves keyboard focus to obj, raising FocusOut and FocusIn.
func (t *Toolkit) Focus(obj *native.Object) {
	t.mu.Lock()
	prev := t.focus
	if prev == obj {
		t.mu.Unlock()
		return
	}
	t.focus = obj
	t.mu.Unlock()

	if prev != nil {
		t.cb.DispatchObjectEvent(t.canvas, prev, native.FocusOut, nil)
	}
	if obj != nil {
		t.cb.DispatchObjectEvent(t.canvas, obj, native.FocusIn, nil)
	}
}

// Focused returns the object holding keyboard focus.
func (t *Toolkit) Focused() *native.Object {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.focus
}

func (t *Toolkit) regionLocked(obj *native.Object) *region {
	if obj == nil {
		return nil
	}
	for _, r := range t.regions {
		if r.obj == obj {
			return r
		}
	}
	return nil
}

func (t *Toolkit) alive(obj *native.Object) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.regionLocked(obj) != nil
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
func (t *Toolkit) AddSignalCallback(obj *native.Object, emission, src string, cb native.SignalCallback, data native.Data) error {
	if !t.alive(obj) {
		return native.ErrUnknownObject
	}
	return t.cb.AddSignal(obj, emission, src, cb, data)
}

// DelSignalCallback implements native.Toolkit.
func (t *Toolkit) DelSignalCallback(obj *native.Object, emission, src string, data native.Data) bool {
	return t.cb.DelSignal(obj, emission, src, data)
}

// AddItemSignalCallback implements native.Toolkit.
func (t *Toolkit) AddItemSignalCallback(item *native.Item, emission, src string, cb native.ItemSignalCallback, data native.Data) error {
	t.mu.Lock()
	_, ok := t.items[item.ID()]
	t.mu.Unlock()
	if !ok {
		return native.ErrUnknownObject
	}
	return t.cb.AddItemSignal(item, emission, src, cb, data)
}

// DelItemSignalCallback implements native.Toolkit.
func (t *Toolkit) DelItemSignalCallback(item *native.Item, emission, src string, data native.Data) bool {
	return t.cb.DelItemSignal(item, emission, src, data)
}

// Post implements native.Toolkit. The function is queued and the loop is
// woken with a tcell interrupt event. The queue is drained after every
// event, so a full tcell queue only delays the wake-up.
func (t *Toolkit) Post(fn func()) error {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return native.ErrLoopStopped
	}
	t.queue = append(t.queue, fn)
	t.mu.Unlock()

	_ = t.screen.PostEvent(tcell.NewEventInterrupt(wakeToken{})) // best-effort; queue is drained on every event
	return nil
}

// Go implements native.Toolkit.
func (t *Toolkit) Go(fn func()) {
	go func() {
		defer errs.Recover("termkit.Go")
		fn()
	}()
}

// Quit implements native.Toolkit. Post fails from here on; functions
// already queued still run before Loop returns.
func (t *Toolkit) Quit() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
	t.quitOnce.Do(func() {
		close(t.quit)
		_ = t.screen.PostEvent(tcell.NewEventInterrupt(quitToken{}))
	})
}

func (t *Toolkit) quitting() bool {
	select {
	case <-t.quit:
		return true
	default:
		return false
	}
}

var _ native.Toolkit = (*Toolkit)(nil)
