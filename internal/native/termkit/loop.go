package termkit

import (
	"context"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/widgetry/internal/errs"
	"github.com/dshills/widgetry/internal/native"
)

// Loop implements native.Toolkit. It polls tcell events on the calling
// goroutine, translates them to native callbacks and redraws after each one.
func (t *Toolkit) Loop(ctx context.Context) error {
	t.logger.Debug("loop started")
	defer t.logger.Debug("loop stopped")
	defer t.stop()

	stopWatch := make(chan struct{})
	defer close(stopWatch)
	go func() {
		select {
		case <-ctx.Done():
			t.Quit()
		case <-stopWatch:
		}
	}()

	t.draw()
	for {
		t.drain()
		if t.quitting() {
			return ctx.Err()
		}

		ev := t.screen.PollEvent()
		if ev == nil {
			// screen finalized
			return ctx.Err()
		}
		t.handle(ev)
		t.draw()
	}
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
	defer errs.Recover("termkit.Loop")
	fn()
}

func (t *Toolkit) handle(ev tcell.Event) {
	defer errs.Recover("termkit.handle")

	switch e := ev.(type) {
	case *tcell.EventInterrupt:
		// queue drained at the top of the loop
	case *tcell.EventMouse:
		x, y := e.Position()
		t.handleMouse(x, y, e.Buttons())
	case *tcell.EventKey:
		t.handleKey(e)
	case *tcell.EventResize:
		w, h := e.Size()
		t.handleResize(w, h)
	case *tcell.EventFocus:
		if obj := t.Focused(); obj != nil {
			typ := native.FocusOut
			if e.Focused {
				typ = native.FocusIn
			}
			t.cb.DispatchObjectEvent(t.canvas, obj, typ, nil)
		}
	}
}

// hit returns the topmost visible region under (x, y).
func (t *Toolkit) hit(x, y int) *region {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := len(t.regions) - 1; i >= 0; i-- {
		if t.regions[i].contains(x, y) {
			return t.regions[i]
		}
	}
	return nil
}

func (t *Toolkit) handleMouse(x, y int, buttons tcell.ButtonMask) {
	r := t.hit(x, y)

	t.mu.Lock()
	pressed := t.pressed
	t.mu.Unlock()

	switch {
	case buttons&tcell.Button1 != 0 && pressed == nil:
		if r == nil {
			return
		}
		t.mu.Lock()
		t.pressed = r.obj
		t.mu.Unlock()
		t.Focus(r.obj)
		t.cb.DispatchObjectEvent(t.canvas, r.obj, native.MouseDown, native.MouseInfo{X: x, Y: y, Button: 1})

	case buttons == tcell.ButtonNone && pressed != nil:
		t.mu.Lock()
		t.pressed = nil
		t.mu.Unlock()
		t.cb.DispatchObjectEvent(t.canvas, pressed, native.MouseUp, native.MouseInfo{X: x, Y: y, Button: 1})
		if r != nil && r.obj == pressed {
			t.click(r, x, y)
		}

	case buttons == tcell.ButtonNone && r != nil:
		t.cb.DispatchObjectEvent(t.canvas, r.obj, native.MouseMove, native.MouseInfo{X: x, Y: y})
	}
}

func (t *Toolkit) click(r *region, x, y int) {
	info := native.MouseInfo{X: x, Y: y, Button: 1}
	t.cb.DispatchSignal(r.obj, "mouse,clicked,1", source)

	t.mu.Lock()
	var item *native.Item
	if row := y - r.y; row >= 0 && row < len(r.items) {
		item = r.items[row]
	}
	t.mu.Unlock()

	if item != nil {
		t.cb.DispatchItemSignal(item, "mouse,clicked,1", source)
		t.cb.DispatchSmart(r.obj, "selected", item)
	}
	t.cb.DispatchSmart(r.obj, "clicked", info)
}

func (t *Toolkit) handleKey(e *tcell.EventKey) {
	if e.Key() == tcell.KeyTab {
		t.focusNext()
		return
	}

	obj := t.Focused()
	if obj == nil {
		return
	}
	t.cb.DispatchObjectEvent(t.canvas, obj, native.KeyDown, native.KeyInfo{Key: e.Name(), Rune: e.Rune()})
	if e.Key() == tcell.KeyEnter || (e.Key() == tcell.KeyRune && e.Rune() == ' ') {
		t.cb.DispatchSmart(obj, "activated", nil)
	}
}

func (t *Toolkit) focusNext() {
	t.mu.Lock()
	var visible []*native.Object
	next := -1
	for _, r := range t.regions {
		if !r.visible {
			continue
		}
		if r.obj == t.focus {
			next = len(visible) + 1
		}
		visible = append(visible, r.obj)
	}
	t.mu.Unlock()

	if len(visible) == 0 {
		return
	}
	if next < 0 || next >= len(visible) {
		next = 0
	}
	t.Focus(visible[next])
}

func (t *Toolkit) handleResize(w, h int) {
	t.mu.Lock()
	objs := make([]*native.Object, 0, len(t.regions))
	for _, r := range t.regions {
		objs = append(objs, r.obj)
	}
	t.mu.Unlock()

	t.screen.Sync()
	for _, obj := range objs {
		t.cb.DispatchObjectEvent(t.canvas, obj, native.Resize, native.ResizeInfo{Width: w, Height: h})
	}
}
