package app

import (
	"context"
	"testing"
	"time"

	"github.com/dshills/widgetry/internal/async"
	"github.com/dshills/widgetry/internal/async/pool"
	"github.com/dshills/widgetry/internal/bridge"
	"github.com/dshills/widgetry/internal/component"
	"github.com/dshills/widgetry/internal/logging"
	"github.com/dshills/widgetry/internal/native/simkit"
	"github.com/dshills/widgetry/internal/property"
)

func startLoop(t *testing.T, tk *simkit.Toolkit) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = tk.Loop(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func startPool(t *testing.T) *pool.Pool {
	t.Helper()
	p := pool.New(pool.WithWorkerCount(2))
	if err := p.Start(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = p.Stop(context.Background()) })
	return p
}

// onLoop runs fn on the toolkit loop and waits for it.
func onLoop(t *testing.T, tk *simkit.Toolkit, fn func()) {
	t.Helper()
	done := make(chan struct{})
	if err := tk.Post(func() {
		defer close(done)
		fn()
	}); err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("posted function never ran")
	}
}

func newTestCounter(t *testing.T, delay time.Duration) (*simkit.Toolkit, *Counter) {
	t.Helper()
	tk := simkit.New(simkit.WithLogger(logging.Null()))
	startLoop(t, tk)
	p := startPool(t)

	var c *Counter
	onLoop(t, tk, func() {
		var err error
		c, err = NewCounter(tk, p,
			WithSummaryDelay(delay),
			WithComponentOptions(component.WithRegistry(bridge.NewRegistry()), component.WithName("counter")),
		)
		if err != nil {
			t.Errorf("NewCounter() error = %v", err)
		}
	})
	if c == nil {
		t.FailNow()
	}
	return tk, c
}

func TestCounter_ClickSummarizesOnLoop(t *testing.T) {
	tk, c := newTestCounter(t, 10*time.Millisecond)

	type summaryEvent struct {
		text   string
		onLoop bool
	}
	got := make(chan summaryEvent, 4)
	var changes []property.Change[int]

	onLoop(t, tk, func() {
		c.Count.Changed.Listen(func(_ *property.Observable[int], ch property.Change[int]) {
			changes = append(changes, ch)
		})
		c.Summarized.Listen(func(_ *Counter, s string) {
			got <- summaryEvent{text: s, onLoop: tk.OnLoop()}
		})
		tk.Click(c.Object(), 1, 1)
	})

	select {
	case ev := <-got:
		if ev.text != "1 click" {
			t.Errorf("summary = %q, want %q", ev.text, "1 click")
		}
		if !ev.onLoop {
			t.Error("Summarized must be raised on the UI loop")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for summary")
	}

	onLoop(t, tk, func() {
		if c.Count.Get() != 1 {
			t.Errorf("Count = %d, want 1", c.Count.Get())
		}
		if len(changes) != 1 || changes[0] != (property.Change[int]{Old: 0, New: 1}) {
			t.Errorf("changes = %v", changes)
		}
		if got := c.Button().Text.Get(); got != "1 click" {
			t.Errorf("label = %q", got)
		}
		if tk.Label(c.Object()) != "1 click" {
			t.Errorf("native label = %q", tk.Label(c.Object()))
		}
		if c.Pending() != nil {
			t.Error("Pending() should be nil after delivery")
		}
	})
}

func TestCounter_SecondClickCancelsPendingSummary(t *testing.T) {
	tk, c := newTestCounter(t, 100*time.Millisecond)

	got := make(chan string, 4)
	var first *async.Task[string]
	onLoop(t, tk, func() {
		c.Summarized.Listen(func(_ *Counter, s string) { got <- s })
		tk.Click(c.Object(), 1, 1)
		first = c.Pending()
		tk.Click(c.Object(), 1, 1)
	})

	select {
	case s := <-got:
		if s != "2 clicks" {
			t.Errorf("summary = %q, want %q", s, "2 clicks")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for summary")
	}

	res, err := first.Wait(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != async.StatusCancelled {
		t.Errorf("first summary status = %v, want cancelled", res.Status)
	}

	select {
	case s := <-got:
		t.Errorf("unexpected extra summary %q", s)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestCounter_DestroyCancelsPending(t *testing.T) {
	tk, c := newTestCounter(t, time.Hour)

	var pending *async.Task[string]
	onLoop(t, tk, func() {
		tk.Click(c.Object(), 1, 1)
		pending = c.Pending()
		if err := c.Destroy(); err != nil {
			t.Errorf("Destroy() error = %v", err)
		}
		if err := c.Destroy(); err != nil {
			t.Errorf("second Destroy() error = %v", err)
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res, err := pending.Wait(ctx)
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if res.Status != async.StatusCancelled {
		t.Errorf("status = %v, want cancelled", res.Status)
	}
	if tk.Alive(c.Object()) {
		t.Error("native object should be destroyed")
	}
}

func TestSummary(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "0 clicks"},
		{1, "1 click"},
		{12, "12 clicks"},
	}
	for _, tt := range tests {
		if got := summary(tt.n); got != tt.want {
			t.Errorf("summary(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
