package logging

import "sync/atomic"

// Tracer writes one debug line per traced event dispatch. It satisfies the
// event package's Tracer interface. Tracing is off until SetEnabled(true).
type Tracer struct {
	logger  *Logger
	enabled atomic.Bool
}

// NewTracer creates a tracer that logs through logger.
func NewTracer(logger *Logger, enabled bool) *Tracer {
	if logger == nil {
		logger = Get()
	}
	t := &Tracer{logger: logger.WithComponent("event")}
	t.enabled.Store(enabled)
	return t
}

// Enabled reports whether traces are emitted.
func (t *Tracer) Enabled() bool {
	return t.enabled.Load() && t.logger.Enabled(LevelDebug)
}

// SetEnabled toggles tracing at runtime.
func (t *Tracer) SetEnabled(enabled bool) {
	t.enabled.Store(enabled)
}

// Trace logs that the labelled event was raised.
func (t *Tracer) Trace(label string) {
	t.logger.Debug("event raised: %s", label)
}
