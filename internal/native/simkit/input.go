package simkit

import (
	"github.com/dshills/widgetry/internal/native"
)

// Input injection. These dispatch synchronously on the calling goroutine,
// which should be the loop goroutine once Loop is running. The returned
// count is the number of callbacks invoked.

// EmitSmart delivers a named smart event to obj.
func (t *Toolkit) EmitSmart(obj *native.Object, event string, info any) int {
	return t.cb.DispatchSmart(obj, event, info)
}

// EmitObjectEvent delivers a low-level object event to obj.
func (t *Toolkit) EmitObjectEvent(obj *native.Object, typ native.ObjectEventType, info any) int {
	return t.cb.DispatchObjectEvent(t.canvas, obj, typ, info)
}

// EmitSignal delivers a theme signal to obj.
func (t *Toolkit) EmitSignal(obj *native.Object, emission, source string) int {
	return t.cb.DispatchSignal(obj, emission, source)
}

// EmitItemSignal delivers a theme signal to item.
func (t *Toolkit) EmitItemSignal(item *native.Item, emission, source string) int {
	return t.cb.DispatchItemSignal(item, emission, source)
}

// Click simulates a primary-button press and release over obj.
func (t *Toolkit) Click(obj *native.Object, x, y int) {
	info := native.MouseInfo{X: x, Y: y, Button: 1}
	t.EmitObjectEvent(obj, native.MouseDown, info)
	t.EmitObjectEvent(obj, native.MouseUp, info)
	t.EmitSignal(obj, "mouse,clicked,1", "sim")
	t.EmitSmart(obj, "clicked", info)
}
