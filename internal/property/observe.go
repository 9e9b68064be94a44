package property

import (
	"github.com/dshills/widgetry/internal/errs"
	"github.com/dshills/widgetry/internal/event"
)

// Change carries the values before and after an assignment.
type Change[T any] struct {
	Old T
	New T
}

// Observable wraps a read-write property and raises Changed after every
// assignment that alters its value.
type Observable[T any] struct {
	rw ReadWriter[T]
	eq func(a, b T) bool

	// Changed is raised after the mutator has run.
	Changed event.Channel[*Observable[T], Change[T]]
}

// Observe wraps rw. When eq is non-nil, assignments it reports as equal to
// the current value still call the mutator but do not raise Changed.
func Observe[T any](rw ReadWriter[T], eq func(a, b T) bool, opts ...event.Option) *Observable[T] {
	o := &Observable[T]{rw: rw, eq: eq}
	o.Changed.Configure(opts...)
	return o
}

// Get reads the wrapped property.
func (o *Observable[T]) Get() T {
	return o.rw.Get()
}

// Set assigns v. Handler failures are reported through errs.
func (o *Observable[T]) Set(v T) {
	if err := o.SetAndNotify(v); err != nil {
		errs.Report(&errs.Error{Op: "property.Set", Label: o.Changed.Label(), Err: err})
	}
}

// SetAndNotify assigns v and returns the aggregated handler errors.
func (o *Observable[T]) SetAndNotify(v T) error {
	old := o.rw.Get()
	o.rw.Set(v)
	cur := o.rw.Get()
	if o.eq != nil && o.eq(old, cur) {
		return nil
	}
	return o.Changed.Raise(o, Change[T]{Old: old, New: cur})
}
