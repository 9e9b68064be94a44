package termkit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/widgetry/internal/logging"
	"github.com/dshills/widgetry/internal/native"
)

func newTestToolkit(t *testing.T) (*Toolkit, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	tk, err := New(WithScreen(screen), WithLogger(logging.Null()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := tk.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	screen.SetSize(40, 10)
	return tk, screen
}

func runLoop(t *testing.T, tk *Toolkit) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- tk.Loop(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("loop did not stop")
		}
		tk.Shutdown()
	})
}

func wait(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func TestToolkit_Post(t *testing.T) {
	tk, _ := newTestToolkit(t)
	runLoop(t, tk)

	var order []int
	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		i := i
		if err := tk.Post(func() { order = append(order, i) }); err != nil {
			t.Fatalf("Post() error = %v", err)
		}
	}
	_ = tk.Post(func() { close(done) })
	wait(t, done, "posted functions")

	for i, v := range order {
		if v != i {
			t.Fatalf("order = %v", order)
		}
	}
}

func TestToolkit_MouseClick(t *testing.T) {
	tk, screen := newTestToolkit(t)
	obj, _ := tk.NewObject("button")
	if err := tk.SetBounds(obj, 2, 2, 10, 3); err != nil {
		t.Fatalf("SetBounds() error = %v", err)
	}

	events := make(chan string, 8)
	clicked := make(chan struct{})
	_ = tk.AddObjectEventCallback(obj, native.MouseDown, func(native.Data, *native.Canvas, *native.Object, any) {
		events <- "down"
	}, 1)
	_ = tk.AddObjectEventCallback(obj, native.MouseUp, func(native.Data, *native.Canvas, *native.Object, any) {
		events <- "up"
	}, 1)
	_ = tk.AddSignalCallback(obj, "mouse,clicked,*", source, func(native.Data, *native.Object, string, string) {
		events <- "signal"
	}, 1)
	_ = tk.AddSmartCallback(obj, "clicked", func(_ native.Data, _ *native.Object, info any) {
		if mi, ok := info.(native.MouseInfo); !ok || mi.X != 4 || mi.Y != 3 {
			t.Errorf("clicked info = %#v", info)
		}
		close(clicked)
	}, 1)

	runLoop(t, tk)
	_ = screen.PostEvent(tcell.NewEventMouse(4, 3, tcell.Button1, tcell.ModNone))
	_ = screen.PostEvent(tcell.NewEventMouse(4, 3, tcell.ButtonNone, tcell.ModNone))
	wait(t, clicked, "clicked")

	want := []string{"down", "up", "signal"}
	for _, w := range want {
		if got := <-events; got != w {
			t.Errorf("event = %q, want %q", got, w)
		}
	}
	if tk.Focused() != obj {
		t.Error("pressing an object should focus it")
	}
}

func TestToolkit_ClickOutsideIgnored(t *testing.T) {
	tk, _ := newTestToolkit(t)
	obj, _ := tk.NewObject("button")
	_ = tk.SetBounds(obj, 0, 0, 2, 1)
	calls := 0
	_ = tk.AddSmartCallback(obj, "clicked", func(native.Data, *native.Object, any) { calls++ }, 1)

	tk.handleMouse(10, 5, tcell.Button1)
	tk.handleMouse(10, 5, tcell.ButtonNone)
	if calls != 0 {
		t.Errorf("click outside the region dispatched %d callbacks", calls)
	}
}

func TestToolkit_ItemSelection(t *testing.T) {
	tk, _ := newTestToolkit(t)
	list, _ := tk.NewObject("list")
	_ = tk.SetBounds(list, 0, 0, 20, 5)
	_, _ = tk.NewItem(list, "alpha")
	beta, _ := tk.NewItem(list, "beta")

	var selected any
	var itemSignal *native.Item
	_ = tk.AddSmartCallback(list, "selected", func(_ native.Data, _ *native.Object, info any) {
		selected = info
	}, 1)
	_ = tk.AddItemSignalCallback(beta, "mouse,clicked,*", "*", func(_ native.Data, item *native.Item, _, _ string) {
		itemSignal = item
	}, 1)

	tk.handleMouse(3, 1, tcell.Button1)
	tk.handleMouse(3, 1, tcell.ButtonNone)

	if selected != beta {
		t.Errorf("selected = %v, want beta", selected)
	}
	if itemSignal != beta {
		t.Errorf("item signal delivered to %v", itemSignal)
	}
}

func TestToolkit_KeyActivatesFocused(t *testing.T) {
	tk, screen := newTestToolkit(t)
	a, _ := tk.NewObject("button")
	b, _ := tk.NewObject("button")
	_ = tk.SetBounds(a, 0, 0, 5, 1)
	_ = tk.SetBounds(b, 0, 2, 5, 1)

	activated := make(chan *native.Object, 1)
	_ = tk.AddSmartCallback(b, "activated", func(_ native.Data, o *native.Object, _ any) {
		activated <- o
	}, 1)

	tk.Focus(a)
	runLoop(t, tk)
	_ = screen.PostEvent(tcell.NewEventKey(tcell.KeyTab, 0, tcell.ModNone))
	_ = screen.PostEvent(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone))

	select {
	case o := <-activated:
		if o != b {
			t.Errorf("activated %v, want %v", o, b)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Tab then Enter should activate the next object")
	}
}

func TestToolkit_FocusEvents(t *testing.T) {
	tk, _ := newTestToolkit(t)
	a, _ := tk.NewObject("entry")
	b, _ := tk.NewObject("entry")

	var log []string
	record := func(name string) native.ObjectEventCallback {
		return func(native.Data, *native.Canvas, *native.Object, any) { log = append(log, name) }
	}
	_ = tk.AddObjectEventCallback(a, native.FocusIn, record("a-in"), 1)
	_ = tk.AddObjectEventCallback(a, native.FocusOut, record("a-out"), 1)
	_ = tk.AddObjectEventCallback(b, native.FocusIn, record("b-in"), 1)

	tk.Focus(a)
	tk.Focus(a)
	tk.Focus(b)

	want := []string{"a-in", "a-out", "b-in"}
	if len(log) != len(want) {
		t.Fatalf("log = %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Errorf("log[%d] = %q, want %q", i, log[i], want[i])
		}
	}
}

func TestToolkit_DestroyObject(t *testing.T) {
	tk, _ := newTestToolkit(t)
	obj, _ := tk.NewObject("button")
	dels := 0
	_ = tk.AddObjectEventCallback(obj, native.ObjectDel, func(native.Data, *native.Canvas, *native.Object, any) { dels++ }, 1)
	tk.Focus(obj)

	if err := tk.DestroyObject(obj); err != nil {
		t.Fatalf("DestroyObject() error = %v", err)
	}
	if dels != 1 {
		t.Errorf("DEL callbacks = %d, want 1", dels)
	}
	if tk.Focused() != nil {
		t.Error("destroying the focused object should clear focus")
	}
	if err := tk.SetLabel(obj, "x"); !errors.Is(err, native.ErrUnknownObject) {
		t.Errorf("SetLabel() on destroyed object error = %v", err)
	}
}

func TestToolkit_Draw(t *testing.T) {
	tk, screen := newTestToolkit(t)
	obj, _ := tk.NewObject("label")
	_ = tk.SetBounds(obj, 0, 0, 6, 1)
	_ = tk.SetLabel(obj, "ok")

	tk.draw()

	mainc, _, _, _ := screen.GetContent(2, 0) //nolint:staticcheck // GetContent is the correct API
	if mainc != 'o' {
		t.Errorf("cell (2,0) = %q, want 'o'", mainc)
	}
	mainc, _, _, _ = screen.GetContent(3, 0) //nolint:staticcheck // GetContent is the correct API
	if mainc != 'k' {
		t.Errorf("cell (3,0) = %q, want 'k'", mainc)
	}
}

func TestToolkit_PostAfterStop(t *testing.T) {
	tk, _ := newTestToolkit(t)
	done := make(chan error, 1)
	go func() { done <- tk.Loop(context.Background()) }()
	tk.Quit()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Loop() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Quit did not stop the loop")
	}
	if err := tk.Post(func() {}); !errors.Is(err, native.ErrLoopStopped) {
		t.Errorf("Post() error = %v, want ErrLoopStopped", err)
	}
	tk.Shutdown()
}

func TestToolkit_QuitRunsAcceptedPosts(t *testing.T) {
	tk, _ := newTestToolkit(t)
	defer tk.Shutdown()

	ran := 0
	for i := 0; i < 3; i++ {
		if err := tk.Post(func() { ran++ }); err != nil {
			t.Fatalf("Post() error = %v", err)
		}
	}
	tk.Quit()
	if err := tk.Post(func() { ran += 100 }); !errors.Is(err, native.ErrLoopStopped) {
		t.Errorf("Post() right after Quit error = %v, want ErrLoopStopped", err)
	}

	if err := tk.Loop(context.Background()); err != nil {
		t.Fatalf("Loop() error = %v", err)
	}
	if ran != 3 {
		t.Errorf("ran = %d, want the 3 functions accepted before Quit", ran)
	}
}
