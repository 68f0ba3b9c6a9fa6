package libevents

import "reflect"

type (
	// Callback is a function invoked by an event target when a matching
	// event occurs.
	Callback func(Event)

	// EventTarget is the native capability pair this package builds on: raw
	// listener registration and unregistration, with no introspection. The
	// native layer performs no validation; unregistering a callback that was
	// never registered is a no-op.
	EventTarget interface {
		RegisterListener(event string, cb Callback, opts ListenerOptions)
		UnregisterListener(event string, cb Callback, opts ListenerOptions)
	}
)

// callbackPtr yields the identity used to match a callback on removal.
// Distinct closures over the same function literal share a code pointer and
// are therefore indistinguishable to Remove.
func callbackPtr(cb Callback) uintptr {
	return reflect.ValueOf(cb).Pointer()
}
