package native

import (
	"sync"

	"github.com/dshills/widgetry/internal/event/signal"
)

type smartEntry struct {
	event string
	cb    SmartCallback
	data  Data
}

type objectEventEntry struct {
	typ  ObjectEventType
	cb   ObjectEventCallback
	data Data
}

type signalEntry struct {
	emission signal.Pattern
	source   signal.Pattern
	cb       SignalCallback
	data     Data
}

type itemSignalEntry struct {
	item     *Item
	emission signal.Pattern
	source   signal.Pattern
	cb       ItemSignalCallback
	data     Data
}

// Callbacks is the per-object callback table toolkits build on. Dispatch
// calls a snapshot, so callbacks may add or remove registrations while
// running.
type Callbacks struct {
	mu      sync.Mutex
	smart   map[uint64][]smartEntry
	objects map[uint64][]objectEventEntry
	signals map[uint64][]signalEntry
	items   map[uint64][]itemSignalEntry
}

// NewCallbacks creates an empty table.
func NewCallbacks() *Callbacks {
	return &Callbacks{
		smart:   make(map[uint64][]smartEntry),
		objects: make(map[uint64][]objectEventEntry),
		signals: make(map[uint64][]signalEntry),
		items:   make(map[uint64][]itemSignalEntry),
	}
}

// AddSmart registers a smart callback.
func (c *Callbacks) AddSmart(obj *Object, event string, cb SmartCallback, data Data) error {
	if cb == nil {
		return ErrNilCallback
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.smart[obj.id] {
		if e.event == event && e.data == data {
			return ErrDuplicateCallback
		}
	}
	c.smart[obj.id] = append(c.smart[obj.id], smartEntry{event: event, cb: cb, data: data})
	return nil
}

// DelSmart removes a smart callback. It reports whether one was removed.
func (c *Callbacks) DelSmart(obj *Object, event string, data Data) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	list := c.smart[obj.id]
	for i, e := range list {
		if e.event == event && e.data == data {
			removeAt(c.smart, obj.id, list, i)
			return true
		}
	}
	return false
}

// DispatchSmart calls every smart callback registered for event.
func (c *Callbacks) DispatchSmart(obj *Object, event string, info any) int {
	c.mu.Lock()
	var run []smartEntry
	for _, e := range c.smart[obj.id] {
		if e.event == event {
			run = append(run, e)
		}
	}
	c.mu.Unlock()

	for _, e := range run {
		e.cb(e.data, obj, info)
	}
	return len(run)
}

// AddObjectEvent registers an object event callback.
func (c *Callbacks) AddObjectEvent(obj *Object, typ ObjectEventType, cb ObjectEventCallback, data Data) error {
	if cb == nil {
		return ErrNilCallback
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.objects[obj.id] {
		if e.typ == typ && e.data == data {
			return ErrDuplicateCallback
		}
	}
	c.objects[obj.id] = append(c.objects[obj.id], objectEventEntry{typ: typ, cb: cb, data: data})
	return nil
}

// DelObjectEvent removes an object event callback.
func (c *Callbacks) DelObjectEvent(obj *Object, typ ObjectEventType, data Data) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	list := c.objects[obj.id]
	for i, e := range list {
		if e.typ == typ && e.data == data {
			removeAt(c.objects, obj.id, list, i)
			return true
		}
	}
	return false
}

// DispatchObjectEvent calls every callback registered for typ on obj.
func (c *Callbacks) DispatchObjectEvent(canvas *Canvas, obj *Object, typ ObjectEventType, info any) int {
	c.mu.Lock()
	var run []objectEventEntry
	for _, e := range c.objects[obj.id] {
		if e.typ == typ {
			run = append(run, e)
		}
	}
	c.mu.Unlock()

	for _, e := range run {
		e.cb(e.data, canvas, obj, info)
	}
	return len(run)
}

// AddSignal registers a signal callback. Emission and source are patterns.
func (c *Callbacks) AddSignal(obj *Object, emission, source string, cb SignalCallback, data Data) error {
	if cb == nil {
		return ErrNilCallback
	}
	em, src := signal.Pattern(emission), signal.Pattern(source)
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.signals[obj.id] {
		if e.emission == em && e.source == src && e.data == data {
			return ErrDuplicateCallback
		}
	}
	c.signals[obj.id] = append(c.signals[obj.id], signalEntry{emission: em, source: src, cb: cb, data: data})
	return nil
}

// DelSignal removes a signal callback registered with the same patterns.
func (c *Callbacks) DelSignal(obj *Object, emission, source string, data Data) bool {
	em, src := signal.Pattern(emission), signal.Pattern(source)
	c.mu.Lock()
	defer c.mu.Unlock()
	list := c.signals[obj.id]
	for i, e := range list {
		if e.emission == em && e.source == src && e.data == data {
			removeAt(c.signals, obj.id, list, i)
			return true
		}
	}
	return false
}

// DispatchSignal calls every signal callback whose patterns match.
func (c *Callbacks) DispatchSignal(obj *Object, emission, source string) int {
	c.mu.Lock()
	var run []signalEntry
	for _, e := range c.signals[obj.id] {
		if signal.Matches(e.emission, e.source, emission, source) {
			run = append(run, e)
		}
	}
	c.mu.Unlock()

	for _, e := range run {
		e.cb(e.data, obj, emission, source)
	}
	return len(run)
}

// AddItemSignal registers an item signal callback.
func (c *Callbacks) AddItemSignal(item *Item, emission, source string, cb ItemSignalCallback, data Data) error {
	if cb == nil {
		return ErrNilCallback
	}
	em, src := signal.Pattern(emission), signal.Pattern(source)
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.items[item.id] {
		if e.emission == em && e.source == src && e.data == data {
			return ErrDuplicateCallback
		}
	}
	c.items[item.id] = append(c.items[item.id], itemSignalEntry{item: item, emission: em, source: src, cb: cb, data: data})
	return nil
}

// DelItemSignal removes an item signal callback.
func (c *Callbacks) DelItemSignal(item *Item, emission, source string, data Data) bool {
	em, src := signal.Pattern(emission), signal.Pattern(source)
	c.mu.Lock()
	defer c.mu.Unlock()
	list := c.items[item.id]
	for i, e := range list {
		if e.emission == em && e.source == src && e.data == data {
			removeAt(c.items, item.id, list, i)
			return true
		}
	}
	return false
}

// DispatchItemSignal calls every item signal callback whose patterns match.
func (c *Callbacks) DispatchItemSignal(item *Item, emission, source string) int {
	c.mu.Lock()
	var run []itemSignalEntry
	for _, e := range c.items[item.id] {
		if signal.Matches(e.emission, e.source, emission, source) {
			run = append(run, e)
		}
	}
	c.mu.Unlock()

	for _, e := range run {
		e.cb(e.data, item, emission, source)
	}
	return len(run)
}

// Forget drops every callback on obj and on items whose parent is obj.
func (c *Callbacks) Forget(obj *Object) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.smart, obj.id)
	delete(c.objects, obj.id)
	delete(c.signals, obj.id)
	for id, list := range c.items {
		if list[0].item.parent == obj {
			delete(c.items, id)
		}
	}
}

// Count returns the number of callbacks registered on obj and its items.
func (c *Callbacks) Count(obj *Object) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.smart[obj.id]) + len(c.objects[obj.id]) + len(c.signals[obj.id])
	for _, list := range c.items {
		for _, e := range list {
			if e.item.parent == obj {
				n++
			}
		}
	}
	return n
}

// removeAt drops list[i] from m[id], deleting the key once the list is empty.
func removeAt[E any](m map[uint64][]E, id uint64, list []E, i int) {
	if len(list) == 1 {
		delete(m, id)
		return
	}
	m[id] = append(list[:i:i], list[i+1:]...)
}
