// Package native defines the boundary between components and the widget
// toolkit that owns the UI loop.
//
// Handles are opaque to components. A toolkit delivers input through four
// callback shapes, each carrying the Data value supplied when the callback
// was registered.
package native

import (
	"context"
	"errors"
	"fmt"
)

// Errors returned by toolkits.
var (
	ErrUnknownObject     = errors.New("native: unknown object")
	ErrLoopStopped       = errors.New("native: main loop stopped")
	ErrDuplicateCallback = errors.New("native: callback already registered for data")
	ErrNilCallback       = errors.New("native: nil callback")
)

// Data is the opaque value a toolkit passes back to a callback.
type Data uintptr

// Object is a native widget handle.
type Object struct {
	id   uint64
	kind string
}

// NewObjectHandle is used by toolkit implementations to mint handles.
func NewObjectHandle(id uint64, kind string) *Object {
	return &Object{id: id, kind: kind}
}

// ID returns the toolkit-assigned identifier.
func (o *Object) ID() uint64 { return o.id }

// Kind returns the widget kind the object was created as.
func (o *Object) Kind() string { return o.kind }

func (o *Object) String() string {
	if o == nil {
		return "object(nil)"
	}
	return fmt.Sprintf("object(%s#%d)", o.kind, o.id)
}

// Canvas is the drawing surface objects live on.
type Canvas struct {
	id   uint64
	name string
}

// NewCanvasHandle is used by toolkit implementations to mint handles.
func NewCanvasHandle(id uint64, name string) *Canvas {
	return &Canvas{id: id, name: name}
}

// ID returns the canvas identifier.
func (c *Canvas) ID() uint64 { return c.id }

// Name returns the canvas name.
func (c *Canvas) Name() string { return c.name }

// Item is an element inside a container object, such as a list row.
type Item struct {
	id     uint64
	parent *Object
	label  string
}

// NewItemHandle is used by toolkit implementations to mint handles.
func NewItemHandle(id uint64, parent *Object, label string) *Item {
	return &Item{id: id, parent: parent, label: label}
}

// ID returns the item identifier.
func (i *Item) ID() uint64 { return i.id }

// Parent returns the owning container.
func (i *Item) Parent() *Object { return i.parent }

// Label returns the item text.
func (i *Item) Label() string { return i.label }

// Callback shapes.
type (
	// SmartCallback receives named widget events such as "clicked".
	SmartCallback func(data Data, obj *Object, info any)
	// ObjectEventCallback receives low-level canvas object events.
	ObjectEventCallback func(data Data, canvas *Canvas, obj *Object, info any)
	// SignalCallback receives theme signals as emission and source strings.
	SignalCallback func(data Data, obj *Object, emission, source string)
	// ItemSignalCallback receives theme signals addressed to an item.
	ItemSignalCallback func(data Data, item *Item, emission, source string)
)

// ObjectEventType selects a low-level object event.
type ObjectEventType int

const (
	ObjectDel ObjectEventType = iota
	MouseDown
	MouseUp
	MouseMove
	KeyDown
	KeyUp
	Resize
	FocusIn
	FocusOut
	Show
	Hide
)

func (t ObjectEventType) String() string {
	switch t {
	case ObjectDel:
		return "del"
	case MouseDown:
		return "mouse,down"
	case MouseUp:
		return "mouse,up"
	case MouseMove:
		return "mouse,move"
	case KeyDown:
		return "key,down"
	case KeyUp:
		return "key,up"
	case Resize:
		return "resize"
	case FocusIn:
		return "focus,in"
	case FocusOut:
		return "focus,out"
	case Show:
		return "show"
	case Hide:
		return "hide"
	default:
		return "unknown"
	}
}

// MouseInfo accompanies mouse object events.
type MouseInfo struct {
	X, Y   int
	Button int
}

// KeyInfo accompanies key object events.
type KeyInfo struct {
	Key  string
	Rune rune
}

// ResizeInfo accompanies resize object events.
type ResizeInfo struct {
	Width, Height int
}

// Toolkit is the native widget toolkit.
//
// Object and callback methods must be called on the UI loop goroutine, or
// before Loop starts. Post and Go may be called from any goroutine.
type Toolkit interface {
	// Name identifies the toolkit.
	Name() string
	// Canvas returns the toolkit's canvas.
	Canvas() *Canvas

	NewObject(kind string) (*Object, error)
	NewItem(parent *Object, label string) (*Item, error)
	// DestroyObject removes the object, raises ObjectDel on it and then
	// drops every callback on the object and its items.
	DestroyObject(obj *Object) error

	AddSmartCallback(obj *Object, event string, cb SmartCallback, data Data) error
	DelSmartCallback(obj *Object, event string, data Data) bool
	AddObjectEventCallback(obj *Object, typ ObjectEventType, cb ObjectEventCallback, data Data) error
	DelObjectEventCallback(obj *Object, typ ObjectEventType, data Data) bool
	AddSignalCallback(obj *Object, emission, source string, cb SignalCallback, data Data) error
	DelSignalCallback(obj *Object, emission, source string, data Data) bool
	AddItemSignalCallback(item *Item, emission, source string, cb ItemSignalCallback, data Data) error
	DelItemSignalCallback(item *Item, emission, source string, data Data) bool

	// Post queues fn to run on the UI loop goroutine.
	Post(fn func()) error
	// Go runs fn on a background goroutine.
	Go(fn func())
	// Loop runs the UI loop on the calling goroutine until ctx is done or
	// Quit is called.
	Loop(ctx context.Context) error
	// Quit stops the loop.
	Quit()
}
