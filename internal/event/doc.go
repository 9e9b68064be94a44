// Package event provides typed, ordered event channels for components.
//
// A component declares one Channel per occurrence it can produce. The channel
// is parameterized by the source type (who raised it) and the payload type
// (what it carries):
//
//	type Button struct {
//	    Clicked event.Channel[*Button, ClickInfo]
//	}
//
// The zero value of a Channel is ready to use.
//
// # Attaching and Raising
//
// Attach appends a handler and returns a Subscription that serves as the
// detach token. Raise runs every attached handler synchronously, in
// attachment order:
//
//	sub := btn.Clicked.Attach(func(b *Button, info ClickInfo) error {
//	    return save(info)
//	})
//	defer btn.Clicked.Detach(sub)
//
//	err := btn.Clicked.Raise(btn, ClickInfo{X: 3, Y: 4})
//
// Duplicate handlers are allowed; each Attach call yields its own
// subscription. Raising a channel with no handlers is a no-op.
//
// # Failures
//
// A handler that returns an error or panics does not stop dispatch. Raise
// collects every failure (wrapped in HandlerError or PanicError) and returns
// them joined once all handlers have run.
//
// # Dispatch Snapshot
//
// Raise snapshots the handler list before calling anything. Handlers attached
// during a dispatch first run on the next Raise. Handlers detached during a
// dispatch are skipped if they have not been reached yet. Re-entrant Raise
// from inside a handler is permitted and takes its own snapshot.
//
// # Tracing
//
// A channel with a label and an enabled Tracer reports each Raise to the
// tracer before any handler runs. The tracer is checked through Enabled, so a
// disabled tracer costs a single call.
//
// # Thread Safety
//
// Channels belong to the UI-owning goroutine. The handler list is guarded so
// that Attach and Detach from other goroutines do not corrupt it, but
// handlers themselves always run on the goroutine that called Raise.
package event
