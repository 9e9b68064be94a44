package async

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dshills/widgetry/internal/errs"
	"github.com/dshills/widgetry/internal/event"
	"github.com/dshills/widgetry/internal/logging"
)

// State is the lifecycle state of a Task.
type State int32

const (
	StateCreated State = iota
	StateScheduled
	StateRunning
	StateCompleted
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateScheduled:
		return "scheduled"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether s is Completed or Cancelled.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateCancelled
}

// Status tells a completion handler how the task ended.
type Status int

const (
	// StatusCompleted means the work ran to the end. Err holds its error.
	StatusCompleted Status = iota
	// StatusCancelled means the task was cancelled; Value is the zero value
	// unless the work returned one after observing cancellation.
	StatusCancelled
)

func (s Status) String() string {
	if s == StatusCancelled {
		return "cancelled"
	}
	return "completed"
}

// Result is the payload of Task.Completed.
type Result[R any] struct {
	Value  R
	Status Status
	Err    error
}

// Executor runs functions in the background.
type Executor interface {
	Go(fn func())
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(fn func())

// Go implements Executor.
func (f ExecutorFunc) Go(fn func()) { f(fn) }

// Poster queues functions on the UI loop.
type Poster interface {
	Post(fn func()) error
}

// Work is the background computation of a task.
type Work[R any] func(ctx context.Context) (R, error)

// Task is a single background computation with a result delivered on the
// UI loop.
type Task[R any] struct {
	id     string
	work   Work[R]
	exec   Executor
	poster Poster
	logger *logging.Logger

	state  atomic.Int32
	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	result    Result[R]
	finished  bool
	delivered atomic.Bool
	done      chan struct{}

	// returned runs after the work returns, before the outcome is stored.
	returned func()

	// Completed is raised once, on the UI loop, when the task finishes.
	Completed event.Channel[*Task[R], Result[R]]
}

// Option configures a Task.
type Option func(*taskConfig)

type taskConfig struct {
	parent  context.Context
	logger  *logging.Logger
	channel []event.Option
}

// WithContext derives the work context from ctx. Cancelling ctx cancels
// the task's work.
func WithContext(ctx context.Context) Option {
	return func(c *taskConfig) {
		c.parent = ctx
	}
}

// WithLabel labels the Completed channel for tracing.
func WithLabel(label string) Option {
	return func(c *taskConfig) {
		c.channel = append(c.channel, event.WithLabel(label))
	}
}

// WithTracer sets the Completed channel's trace sink.
func WithTracer(t event.Tracer) Option {
	return func(c *taskConfig) {
		c.channel = append(c.channel, event.WithTracer(t))
	}
}

// WithLogger sets the task logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *taskConfig) {
		c.logger = l
	}
}

// New creates a task in the Created state. Work does not start until
// Schedule.
func New[R any](work Work[R], exec Executor, poster Poster, opts ...Option) *Task[R] {
	if work == nil || exec == nil || poster == nil {
		panic("async: New requires work, executor and poster")
	}
	cfg := taskConfig{parent: context.Background(), logger: logging.Get()}
	for _, opt := range opts {
		opt(&cfg)
	}

	t := &Task[R]{
		id:     uuid.NewString(),
		work:   work,
		exec:   exec,
		poster: poster,
		done:   make(chan struct{}),
	}
	t.logger = cfg.logger.WithComponent("async").WithField("task", t.id)
	t.ctx, t.cancel = context.WithCancel(cfg.parent)
	t.Completed.Configure(cfg.channel...)
	return t
}

// ID returns the task's unique identifier.
func (t *Task[R]) ID() string { return t.id }

// State returns the current state.
func (t *Task[R]) State() State { return State(t.state.Load()) }

// Done is closed after the completion has been delivered, or after delivery
// failed because the UI loop had stopped.
func (t *Task[R]) Done() <-chan struct{} { return t.done }

// Schedule hands the work to the executor. A task can be scheduled once;
// later calls return an error wrapping ErrAlreadyScheduled and do not run
// the work again.
func (t *Task[R]) Schedule() error {
	if !t.state.CompareAndSwap(int32(StateCreated), int32(StateScheduled)) {
		return &StateError{Op: "schedule", State: t.State(), Err: ErrAlreadyScheduled}
	}
	t.logger.Debug("scheduled")
	t.exec.Go(t.run)
	return nil
}

// Cancel requests cancellation. A task that has not started moves straight
// to Cancelled and its completion is posted with StatusCancelled. A running
// task has its context cancelled. Cancel reports whether the task was still
// live.
func (t *Task[R]) Cancel() bool {
	for {
		s := t.State()
		switch s {
		case StateCreated, StateScheduled:
			if t.state.CompareAndSwap(int32(s), int32(StateCancelled)) {
				t.cancel()
				t.logger.Debug("cancelled before start")
				t.finish(Result[R]{Status: StatusCancelled, Err: context.Canceled})
				return true
			}
		case StateRunning:
			t.cancel()
			return true
		default:
			return false
		}
	}
}

func (t *Task[R]) run() {
	if !t.state.CompareAndSwap(int32(StateScheduled), int32(StateRunning)) {
		return
	}
	t.logger.Debug("running")

	value, cancelled, err := t.invoke()
	if t.returned != nil {
		t.returned()
	}

	final, status := StateCompleted, StatusCompleted
	if cancelled {
		final, status = StateCancelled, StatusCancelled
	}
	t.cancel()
	t.state.Store(int32(final))
	t.finish(Result[R]{Value: value, Status: status, Err: err})
}

// invoke runs the work and reports whether its context was already
// cancelled when it returned. A Cancel arriving later does not change the
// outcome.
func (t *Task[R]) invoke() (value R, cancelled bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Debug("work panicked:\n%s", debug.Stack())
			err = fmt.Errorf("%w: %v", ErrWorkPanicked, r)
			cancelled = t.ctx.Err() != nil
		}
	}()
	value, err = t.work(t.ctx)
	return value, t.ctx.Err() != nil, err
}

// finish records res and posts its delivery to the UI loop.
func (t *Task[R]) finish(res Result[R]) {
	t.mu.Lock()
	t.result = res
	t.finished = true
	t.mu.Unlock()

	if err := t.poster.Post(t.deliver); err != nil {
		errs.Report(&errs.Error{
			Op:    "async.deliver",
			Kind:  errs.KindAsync,
			Label: t.Completed.Label(),
			Err:   fmt.Errorf("post completion of task %s: %w", t.id, err),
		})
		if t.delivered.CompareAndSwap(false, true) {
			close(t.done)
		}
	}
}

// deliver runs on the UI loop.
func (t *Task[R]) deliver() {
	if !t.delivered.CompareAndSwap(false, true) {
		return
	}
	defer close(t.done)

	res, _ := t.Result()
	t.logger.Debug("delivering %s", res.Status)
	if err := t.Completed.Raise(t, res); err != nil {
		errs.Report(&errs.Error{
			Op:    "async.deliver",
			Kind:  errs.KindAsync,
			Label: t.Completed.Label(),
			Err:   err,
		})
	}
}

// Result returns the result once the task has finished.
func (t *Task[R]) Result() (Result[R], bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.result, t.finished
}

// Wait blocks until Done or ctx ends. It must not be called on the UI loop
// goroutine, which is where Done is closed.
func (t *Task[R]) Wait(ctx context.Context) (Result[R], error) {
	select {
	case <-t.done:
		res, _ := t.Result()
		return res, nil
	case <-ctx.Done():
		var zero Result[R]
		return zero, ctx.Err()
	}
}

// Run creates a task, attaches onDone to Completed and schedules it.
func Run[R any](exec Executor, poster Poster, work Work[R], onDone func(Result[R]), opts ...Option) (*Task[R], error) {
	t := New(work, exec, poster, opts...)
	if onDone != nil {
		t.Completed.Listen(func(_ *Task[R], r Result[R]) { onDone(r) })
	}
	if err := t.Schedule(); err != nil {
		return nil, err
	}
	return t, nil
}
