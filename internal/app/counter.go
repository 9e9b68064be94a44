package app

import (
	"context"
	"fmt"
	"time"

	"github.com/dshills/widgetry/internal/async"
	"github.com/dshills/widgetry/internal/component"
	"github.com/dshills/widgetry/internal/errs"
	"github.com/dshills/widgetry/internal/event"
	"github.com/dshills/widgetry/internal/native"
	"github.com/dshills/widgetry/internal/property"
)

// DefaultSummaryDelay is how long the background summary takes.
const DefaultSummaryDelay = 150 * time.Millisecond

// Counter is a button that counts its clicks. After each click a background
// task builds a summary and the button caption is updated with it back on
// the UI loop. A click while a summary is pending cancels it.
type Counter struct {
	button *component.Button
	exec   async.Executor
	poster async.Poster
	tracer event.Tracer
	delay  time.Duration

	count   int
	pending *async.Task[string]

	// Count is the number of clicks. Changed is raised on every click.
	Count *property.Observable[int]

	// Summarized is raised on the UI loop with each completed summary.
	Summarized event.Channel[*Counter, string]
}

// CounterOption configures a Counter.
type CounterOption func(*counterConfig)

type counterConfig struct {
	delay  time.Duration
	tracer event.Tracer
	opts   []component.Option
}

// WithSummaryDelay sets how long the background summary takes.
func WithSummaryDelay(d time.Duration) CounterOption {
	return func(c *counterConfig) {
		c.delay = d
	}
}

// WithComponentOptions passes options to the underlying button.
func WithComponentOptions(opts ...component.Option) CounterOption {
	return func(c *counterConfig) {
		c.opts = append(c.opts, opts...)
	}
}

// WithCounterTracer sets the trace sink for the summary task.
func WithCounterTracer(t event.Tracer) CounterOption {
	return func(c *counterConfig) {
		c.tracer = t
		c.opts = append(c.opts, component.WithTracer(t))
	}
}

// NewCounter creates a counter on tk. Summaries run on exec. Call from the
// UI loop.
func NewCounter(tk native.Toolkit, exec async.Executor, opts ...CounterOption) (*Counter, error) {
	cfg := counterConfig{delay: DefaultSummaryDelay}
	for _, opt := range opts {
		opt(&cfg)
	}

	button, err := component.NewButton(tk, "0 clicks", cfg.opts...)
	if err != nil {
		return nil, err
	}

	c := &Counter{
		button: button,
		exec:   exec,
		poster: tk,
		tracer: cfg.tracer,
		delay:  cfg.delay,
	}
	c.Count = property.Observe[int](
		property.NewValueRW(c, (*Counter).getCount, (*Counter).setCount),
		func(a, b int) bool { return a == b },
		event.WithLabel(button.Name()+".count.changed"),
		event.WithTracer(cfg.tracer),
	)
	c.Summarized.Configure(event.WithLabel(button.Name()+".summarized"), event.WithTracer(cfg.tracer))
	button.Clicked.Attach(c.onClick)
	return c, nil
}

func (c *Counter) getCount() int  { return c.count }
func (c *Counter) setCount(n int) { c.count = n }

// Button returns the underlying button.
func (c *Counter) Button() *component.Button { return c.button }

// Object returns the native object.
func (c *Counter) Object() *native.Object { return c.button.Object() }

// Pending returns the summary task in flight, or nil.
func (c *Counter) Pending() *async.Task[string] { return c.pending }

// Destroy cancels any pending summary and destroys the button.
func (c *Counter) Destroy() error {
	if c.pending != nil {
		c.pending.Cancel()
		c.pending = nil
	}
	if c.button.IsDestroyed() {
		return nil
	}
	return c.button.Destroy()
}

func (c *Counter) onClick(*component.Button, native.MouseInfo) error {
	if err := c.Count.SetAndNotify(c.count + 1); err != nil {
		return err
	}
	return c.summarize(c.count)
}

func (c *Counter) summarize(n int) error {
	if c.pending != nil {
		c.pending.Cancel()
	}

	delay := c.delay
	work := func(ctx context.Context) (string, error) {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
			return summary(n), nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	var task *async.Task[string]
	task, err := async.Run[string](c.exec, c.poster, work, func(r async.Result[string]) {
		if c.pending == task {
			c.pending = nil
		}
		c.onSummary(r)
	}, async.WithLabel(c.button.Name()+".summary"), async.WithTracer(c.tracer))
	if err != nil {
		return err
	}
	c.pending = task
	return nil
}

func (c *Counter) onSummary(r async.Result[string]) {
	if r.Status != async.StatusCompleted || r.Err != nil || c.button.IsDestroyed() {
		return
	}
	c.button.Text.Set(r.Value)
	if err := c.Summarized.Raise(c, r.Value); err != nil {
		errs.Report(&errs.Error{Op: "counter.Summarized", Label: c.Summarized.Label(), Err: err})
	}
}

func summary(n int) string {
	if n == 1 {
		return "1 click"
	}
	return fmt.Sprintf("%d clicks", n)
}
