package termkit

import "github.com/gdamore/tcell/v2"

var (
	styleObject  = tcell.StyleDefault.Reverse(true)
	styleFocused = tcell.StyleDefault.Reverse(true).Bold(true)
	styleItem    = tcell.StyleDefault
)

// draw paints every visible region in creation order and shows the result.
func (t *Toolkit) draw() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Clear()
	width, height := t.screen.Size()

	for _, r := range t.regions {
		if !r.visible {
			continue
		}
		style := styleObject
		if r.obj == t.focus {
			style = styleFocused
		}
		for y := r.y; y < r.y+r.h && y < height; y++ {
			for x := r.x; x < r.x+r.w && x < width; x++ {
				if x >= 0 && y >= 0 {
					t.screen.SetContent(x, y, ' ', nil, style)
				}
			}
		}

		if len(r.items) > 0 {
			for i, item := range r.items {
				if i >= r.h {
					break
				}
				t.putString(r.x, r.y+i, r.w, item.Label(), styleItem)
			}
			continue
		}
		x := r.x + (r.w-len([]rune(r.label)))/2
		if x < r.x {
			x = r.x
		}
		t.putString(x, r.y+r.h/2, r.w, r.label, style)
	}
	t.screen.Show()
}

func (t *Toolkit) putString(x, y, limit int, s string, style tcell.Style) {
	n := 0
	for _, ch := range s {
		if n >= limit {
			return
		}
		t.screen.SetContent(x+n, y, ch, nil, style)
		n++
	}
}
