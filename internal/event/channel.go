package event

import (
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
)

// Handler handles one raised event. S is the source type and P the payload.
type Handler[S, P any] func(source S, payload P) error

// Tracer receives one Trace call per Raise of a labelled channel.
type Tracer interface {
	Enabled() bool
	Trace(label string)
}

// Option configures a Channel.
type Option func(*channelConfig)

type channelConfig struct {
	label  string
	tracer Tracer
}

// WithLabel sets the diagnostic label used in traces and errors.
func WithLabel(label string) Option {
	return func(c *channelConfig) {
		c.label = label
	}
}

// WithTracer sets the tracer consulted on every Raise.
func WithTracer(t Tracer) Option {
	return func(c *channelConfig) {
		c.tracer = t
	}
}

// Channel is an ordered, multi-subscriber notification of a payload P raised
// by a source S. The zero value is ready to use. A Channel must not be copied
// after first use.
type Channel[S, P any] struct {
	_ noCopy

	mu     sync.Mutex
	label  string
	tracer Tracer
	subs   []*subscription[S, P]
}

// New creates a channel with the given options.
func New[S, P any](opts ...Option) *Channel[S, P] {
	c := &Channel[S, P]{}
	c.Configure(opts...)
	return c
}

// Configure applies options to an existing channel, typically a zero-value
// channel embedded in a component.
func (c *Channel[S, P]) Configure(opts ...Option) {
	cfg := channelConfig{}
	c.mu.Lock()
	cfg.label, cfg.tracer = c.label, c.tracer
	c.mu.Unlock()

	for _, opt := range opts {
		opt(&cfg)
	}

	c.mu.Lock()
	c.label, c.tracer = cfg.label, cfg.tracer
	c.mu.Unlock()
}

// Label returns the channel's diagnostic label.
func (c *Channel[S, P]) Label() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.label
}

// Attach appends h to the handler list and returns its detach token.
// A nil handler panics.
func (c *Channel[S, P]) Attach(h Handler[S, P], opts ...AttachOption) Subscription {
	if h == nil {
		panic("event: Attach with nil handler")
	}
	sub := newSubscription(c, h, opts...)

	c.mu.Lock()
	c.subs = append(c.subs, sub)
	c.mu.Unlock()
	return sub
}

// Listen attaches a handler that cannot fail.
func (c *Channel[S, P]) Listen(fn func(source S, payload P), opts ...AttachOption) Subscription {
	if fn == nil {
		panic("event: Listen with nil handler")
	}
	return c.Attach(func(source S, payload P) error {
		fn(source, payload)
		return nil
	}, opts...)
}

// Detach removes exactly the handler behind sub. It returns false, and
// changes nothing, if sub is not currently attached to this channel.
func (c *Channel[S, P]) Detach(sub Subscription) bool {
	s, ok := sub.(*subscription[S, P])
	if !ok || s == nil {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i, cur := range c.subs {
		if cur == s {
			c.subs = append(c.subs[:i:i], c.subs[i+1:]...)
			s.state.Store(int32(SubscriptionStateCancelled))
			return true
		}
	}
	return false
}

// Len returns the number of attached handlers.
func (c *Channel[S, P]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}

// Clear detaches every handler.
func (c *Channel[S, P]) Clear() {
	c.mu.Lock()
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()

	for _, s := range subs {
		s.state.Store(int32(SubscriptionStateCancelled))
	}
}

// Raise invokes every attached handler in attachment order. Failures do not
// stop dispatch; they are returned joined after the last handler ran.
func (c *Channel[S, P]) Raise(source S, payload P) error {
	c.mu.Lock()
	label, tracer := c.label, c.tracer
	snapshot := make([]*subscription[S, P], len(c.subs))
	copy(snapshot, c.subs)
	c.mu.Unlock()

	if tracer != nil && label != "" && tracer.Enabled() {
		tracer.Trace(label)
	}

	var errs []error
	for _, s := range snapshot {
		if !s.claim() {
			continue
		}
		if s.once {
			c.Detach(s)
		}
		if err := invoke(s, label, source, payload); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// invoke runs one handler, converting a panic into a PanicError.
func invoke[S, P any](s *subscription[S, P], label string, source S, payload P) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{
				SubscriptionID: s.id,
				Label:          label,
				Value:          r,
				Stack:          string(debug.Stack()),
			}
		}
	}()

	if herr := s.handler(source, payload); herr != nil {
		return &HandlerError{SubscriptionID: s.id, Label: label, Err: herr}
	}
	return nil
}

// Filtered returns a handler that only calls h when pred accepts the event.
func Filtered[S, P any](pred func(source S, payload P) bool, h Handler[S, P]) Handler[S, P] {
	return func(source S, payload P) error {
		if !pred(source, payload) {
			return nil
		}
		return h(source, payload)
	}
}

// String implements fmt.Stringer for diagnostics.
func (c *Channel[S, P]) String() string {
	label := c.Label()
	if label == "" {
		label = "<unlabelled>"
	}
	return fmt.Sprintf("event.Channel(%s, %d handlers)", label, c.Len())
}

// noCopy makes `go vet` report copies of a Channel.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
