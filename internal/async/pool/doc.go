// Package pool provides the background worker pool tasks run on.
//
// A Pool starts a fixed number of workers reading from a buffered queue.
// Submission never blocks and never fails: when the queue is full, or the
// pool is not running, the function runs on a goroutine of its own. Every
// function runs with panic recovery; panics are passed to the PanicHandler.
//
// Usage:
//
//	p := pool.New(pool.WithWorkerCount(4))
//	if err := p.Start(); err != nil {
//	    return err
//	}
//	defer p.Stop(ctx)
//
//	p.Go(func() { ... })
package pool
