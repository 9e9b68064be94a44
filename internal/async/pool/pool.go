package pool

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dshills/widgetry/internal/errs"
)

// PanicHandler is called with the recovered value and stack of a panicking
// function.
type PanicHandler func(r any, stack []byte)

func defaultPanicHandler(r any, stack []byte) {
	errs.Report(&errs.Error{
		Op:    "pool.worker",
		Kind:  errs.KindPanic,
		Err:   fmt.Errorf("panic: %v", r),
		Stack: string(stack),
	})
}

// Pool runs functions on a set of worker goroutines.
type Pool struct {
	// Configuration
	queueSize   int
	workerCount int

	// State
	mu      sync.Mutex // protects queue creation/destruction
	queue   chan func()
	running atomic.Bool
	wg      sync.WaitGroup

	panicHandler PanicHandler

	// Stats
	submitted   atomic.Uint64
	processed   atomic.Uint64
	panicked    atomic.Uint64
	overflowed  atomic.Uint64
	totalTimeNs atomic.Int64
}

// Option configures a Pool.
type Option func(*Pool)

// WithQueueSize sets the queue capacity.
func WithQueueSize(size int) Option {
	return func(p *Pool) {
		if size > 0 {
			p.queueSize = size
		}
	}
}

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(p *Pool) {
		if count > 0 {
			p.workerCount = count
		}
	}
}

// WithPanicHandler sets the panic handler.
func WithPanicHandler(h PanicHandler) Option {
	return func(p *Pool) {
		p.panicHandler = h
	}
}

// New creates a pool. Call Start to launch the workers.
func New(opts ...Option) *Pool {
	p := &Pool{
		queueSize:    1024,
		workerCount:  4,
		panicHandler: defaultPanicHandler,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start launches the workers.
func (p *Pool) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running.Load() {
		return ErrAlreadyRunning
	}

	p.queue = make(chan func(), p.queueSize)
	p.running.Store(true)

	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker()
	}

	return nil
}

// Stop closes the queue and waits for queued functions to finish or for ctx
// to end.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running.Load() {
		p.mu.Unlock()
		return ErrNotRunning
	}

	p.running.Store(false)
	close(p.queue)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Go submits fn. It never blocks; fn overflows to its own goroutine when
// the queue is full or the pool is stopped.
func (p *Pool) Go(fn func()) {
	p.submitted.Add(1)

	p.mu.Lock()
	if p.running.Load() {
		select {
		case p.queue <- fn:
			p.mu.Unlock()
			return
		default:
		}
	}
	p.mu.Unlock()

	p.overflowed.Add(1)
	go p.execute(fn)
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for fn := range p.queue {
		p.execute(fn)
	}
}

// execute runs fn with panic recovery and timing.
func (p *Pool) execute(fn func()) {
	p.processed.Add(1)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			p.panicked.Add(1)
			if p.panicHandler != nil {
				stack := debug.Stack()
				func() {
					defer func() { _ = recover() }()
					p.panicHandler(r, stack)
				}()
			}
		}
		p.totalTimeNs.Add(time.Since(start).Nanoseconds())
	}()

	fn()
}

// QueueDepth returns the number of queued functions.
func (p *Pool) QueueDepth() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running.Load() {
		return 0
	}
	return len(p.queue)
}

// IsRunning reports whether the workers are running.
func (p *Pool) IsRunning() bool {
	return p.running.Load()
}

// Stats returns pool statistics.
func (p *Pool) Stats() Stats {
	processed := p.processed.Load()
	totalNs := p.totalTimeNs.Load()

	var avgNs int64
	if processed > 0 {
		avgNs = totalNs / int64(processed)
	}

	return Stats{
		Submitted:     p.submitted.Load(),
		Processed:     processed,
		Panicked:      p.panicked.Load(),
		Overflowed:    p.overflowed.Load(),
		QueueDepth:    p.QueueDepth(),
		TotalDuration: time.Duration(totalNs),
		AvgDuration:   time.Duration(avgNs),
	}
}

// Stats contains pool statistics.
type Stats struct {
	// Submitted is the number of functions passed to Go.
	Submitted uint64

	// Processed is the number of functions that have started.
	Processed uint64

	// Panicked is the number of functions that panicked.
	Panicked uint64

	// Overflowed is the number of functions run outside the workers.
	Overflowed uint64

	// QueueDepth is the current number of queued functions.
	QueueDepth int

	// TotalDuration is the cumulative run time.
	TotalDuration time.Duration

	// AvgDuration is the average run time.
	AvgDuration time.Duration
}
