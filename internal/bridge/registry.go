package bridge

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dshills/widgetry/internal/errs"
	"github.com/dshills/widgetry/internal/event"
	"github.com/dshills/widgetry/internal/native"
)

// nextKey is shared by every registry; toolkits match registrations by
// object, event and data, so keys must be unique across registries.
var nextKey atomic.Uint64

// Registry maps native Data keys to live bridge contexts.
type Registry struct {
	mu      sync.RWMutex
	entries map[native.Data]*Context
	tracer  event.Tracer
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[native.Data]*Context)}
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry used when no WithRegistry
// option is given.
func Default() *Registry {
	return defaultRegistry
}

// SetTracer sets the trace sink used by contexts created without WithTracer.
func (r *Registry) SetTracer(t event.Tracer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tracer = t
}

func (r *Registry) defaultTracer() event.Tracer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tracer
}

// Len returns the number of live contexts.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Lookup returns the live context for key.
func (r *Registry) Lookup(key native.Data) (*Context, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.entries[key]
	return c, ok
}

// ReleaseAll releases every live context.
func (r *Registry) ReleaseAll() {
	r.mu.RLock()
	all := make([]*Context, 0, len(r.entries))
	for _, c := range r.entries {
		all = append(all, c)
	}
	r.mu.RUnlock()

	for _, c := range all {
		c.Release()
	}
}

func (r *Registry) add(c *Context) {
	c.key = native.Data(nextKey.Add(1))
	r.mu.Lock()
	r.entries[c.key] = c
	r.mu.Unlock()
}

func (r *Registry) remove(key native.Data) {
	r.mu.Lock()
	delete(r.entries, key)
	r.mu.Unlock()
}

// resolve finds the channel for key. A missing or mistyped entry means a
// native callback outlived its context; it is reported, never raised.
func resolve[C any](r *Registry, key native.Data, op string) (*Context, C, bool) {
	var zero C
	c, ok := r.Lookup(key)
	if !ok {
		errs.Report(&errs.Error{
			Op:   op,
			Kind: errs.KindLifetime,
			Err:  fmt.Errorf("%w: %d", ErrUnknownKey, key),
		})
		return nil, zero, false
	}
	ch, ok := c.channel.(C)
	if !ok {
		errs.Report(&errs.Error{
			Op:    op,
			Kind:  errs.KindLifetime,
			Label: c.label,
			Err:   fmt.Errorf("%w: key %d holds %T, want %T", ErrChannelType, key, c.channel, zero),
		})
		return nil, zero, false
	}
	return c, ch, true
}
