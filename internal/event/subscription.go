package event

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// SubscriptionState represents the state of a subscription.
type SubscriptionState int32

const (
	// SubscriptionStateActive means the handler runs on Raise.
	SubscriptionStateActive SubscriptionState = iota

	// SubscriptionStatePaused means the handler stays attached but is skipped.
	SubscriptionStatePaused

	// SubscriptionStateCancelled means the handler has been detached.
	SubscriptionStateCancelled
)

// String returns a human-readable state name.
func (s SubscriptionState) String() string {
	switch s {
	case SubscriptionStateActive:
		return "active"
	case SubscriptionStatePaused:
		return "paused"
	case SubscriptionStateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Subscription is the token returned by Attach.
type Subscription interface {
	// ID returns the unique subscription identifier.
	ID() string

	// State returns the current subscription state.
	State() SubscriptionState

	// IsActive returns true if the handler runs on Raise.
	IsActive() bool

	// Pause keeps the handler attached but skips it until Resume.
	Pause()

	// Resume restarts delivery after Pause.
	Resume()

	// Cancel detaches the handler. Equivalent to Channel.Detach.
	Cancel()
}

// AttachOption configures a subscription.
type AttachOption func(*attachConfig)

type attachConfig struct {
	once bool
	id   string
}

// WithOnce detaches the handler after its first invocation.
func WithOnce() AttachOption {
	return func(c *attachConfig) {
		c.once = true
	}
}

// WithID overrides the generated subscription ID. Intended for diagnostics
// and tests; IDs are not required to be unique.
func WithID(id string) AttachOption {
	return func(c *attachConfig) {
		if id != "" {
			c.id = id
		}
	}
}

// subscription is the internal implementation of Subscription.
type subscription[S, P any] struct {
	id      string
	handler Handler[S, P]
	once    bool
	fired   atomic.Bool
	state   atomic.Int32
	channel *Channel[S, P]
}

func newSubscription[S, P any](c *Channel[S, P], h Handler[S, P], opts ...AttachOption) *subscription[S, P] {
	cfg := attachConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.id == "" {
		cfg.id = uuid.NewString()
	}

	s := &subscription[S, P]{
		id:      cfg.id,
		handler: h,
		once:    cfg.once,
		channel: c,
	}
	s.state.Store(int32(SubscriptionStateActive))
	return s
}

func (s *subscription[S, P]) ID() string {
	return s.id
}

func (s *subscription[S, P]) State() SubscriptionState {
	return SubscriptionState(s.state.Load())
}

func (s *subscription[S, P]) IsActive() bool {
	return s.State() == SubscriptionStateActive
}

func (s *subscription[S, P]) Pause() {
	s.state.CompareAndSwap(int32(SubscriptionStateActive), int32(SubscriptionStatePaused))
}

func (s *subscription[S, P]) Resume() {
	s.state.CompareAndSwap(int32(SubscriptionStatePaused), int32(SubscriptionStateActive))
}

func (s *subscription[S, P]) Cancel() {
	s.channel.Detach(s)
}

// claim reports whether the handler may run now. A once-subscription can be
// claimed a single time, even under re-entrant Raise.
func (s *subscription[S, P]) claim() bool {
	if !s.IsActive() {
		return false
	}
	if s.once {
		return s.fired.CompareAndSwap(false, true)
	}
	return true
}
