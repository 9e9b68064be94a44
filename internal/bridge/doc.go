// Package bridge turns native toolkit callbacks into event.Channel raises.
//
// Each bridge registers a native callback whose Data is an opaque key into a
// Registry. The registry entry, a Context, holds the typed channel. When the
// toolkit invokes the callback, the key is looked up, the optional debug
// label is traced, and the channel is raised with the source and payload the
// callback shape carries:
//
//	smart        Channel[*native.Object, any]
//	object event Channel[*EventSource, any]
//	signal       Channel[*native.Object, SignalInfo]
//	item signal  Channel[*native.Item, SignalInfo]
//
// A Context lives until Release, which unregisters the native callback
// before freeing the registry entry. Contexts release themselves when the
// toolkit raises ObjectDel for the object they are attached to, so no
// callback can fire with a freed key.
//
// Raise failures have no caller to return to inside a native callback; they
// are reported through errs.Report.
package bridge
