package libevents

import (
	"strings"
	"sync"
)

// entry is one tracked registration for a (target, event name) pair.
type entry struct {
	// callback is the function the caller handed in and the function given
	// to the native layer; its identity is what Remove matches against.
	callback Callback
	options  ListenerOptions
	ptr      uintptr
}

// Registry tracks, per event target and per event name, the ordered
// callbacks currently attached through it. Native event APIs expose no way
// to enumerate or bulk-remove listeners, so the registry keeps this side
// table in step with every registration and unregistration it performs.
//
// The registry holds strong references to its targets. It never evicts on
// its own; callers that discard a target should call Forget so the tracked
// entries do not outlive it.
type Registry struct {
	logger  Logger
	lock    sync.RWMutex
	tracked map[EventTarget]map[string][]entry
}

// New creates an empty Registry. Registries are independent values, never
// package-global state, so tests and subsystems can hold their own.
func New(logger Logger) *Registry {
	return &Registry{
		logger:  logger.WithField("component", "registry"),
		tracked: make(map[EventTarget]map[string][]entry),
	}
}

// Add registers cb with target for every whitespace-separated name in
// events, once per name, and appends it to the tracked sequence for that
// name. Splitting is purely syntactic; names are not validated. Adding the
// same callback twice registers and tracks it twice. Returns target to
// enable chaining.
func (r *Registry) Add(target EventTarget, events string, cb Callback, opts ListenerOptions) EventTarget {
	for _, name := range strings.Fields(events) {
		r.attach(target, name, cb, opts)
	}
	return target
}

// Once is Add with the fire-once flag forced on in the effective options.
// The native layer drops the listener after its first invocation; the
// tracked entry is not pruned at that moment and lingers until Remove or
// Forget picks it up.
func (r *Registry) Once(target EventTarget, events string, cb Callback, opts ListenerOptions) EventTarget {
	return r.Add(target, events, cb, opts.withOnce())
}

// Remove unregisters listeners for every whitespace-separated name in
// events. With a non-nil cb it removes at most one tracked occurrence per
// name, matched by callback identity; duplicates need one call each. With a
// nil cb it unregisters every tracked callback for the name and deletes the
// name entirely. Removing a callback that was never added is a benign
// no-op, though the native unregister is still issued. Returns target to
// enable chaining.
func (r *Registry) Remove(target EventTarget, events string, cb Callback) EventTarget {
	for _, name := range strings.Fields(events) {
		if cb == nil {
			r.removeAll(target, name)
		} else {
			r.removeOne(target, name, cb)
		}
	}
	return target
}

// Forget drops every tracked entry for target without touching the native
// layer. The registry keys its table by target, so this is the eviction
// half of the association: call it when the target itself is being
// discarded and its native registrations die with it.
func (r *Registry) Forget(target EventTarget) {
	r.lock.Lock()
	defer r.lock.Unlock()

	delete(r.tracked, target)
}

// Listeners returns the tracked callbacks for a (target, event name) pair,
// in registration order.
func (r *Registry) Listeners(target EventTarget, event string) []Callback {
	r.lock.RLock()
	defer r.lock.RUnlock()

	byEvent, found := r.tracked[target]
	if !found {
		return nil
	}

	seq := byEvent[event]
	if len(seq) == 0 {
		return nil
	}

	out := make([]Callback, 0, len(seq))
	for _, e := range seq {
		out = append(out, e.callback)
	}
	return out
}

// ListenerCount returns how many callbacks are tracked for a (target, event
// name) pair.
func (r *Registry) ListenerCount(target EventTarget, event string) int {
	r.lock.RLock()
	defer r.lock.RUnlock()

	byEvent, found := r.tracked[target]
	if !found {
		return 0
	}
	return len(byEvent[event])
}

// EventNames returns the event names with at least one tracked callback on
// target, in no particular order.
func (r *Registry) EventNames(target EventTarget) []string {
	r.lock.RLock()
	defer r.lock.RUnlock()

	byEvent, found := r.tracked[target]
	if len(byEvent) == 0 || !found {
		return nil
	}

	names := make([]string, 0, len(byEvent))
	for name := range byEvent {
		names = append(names, name)
	}
	return names
}

// ensure is the single place a target's tracked entry comes into being.
// Only the registration paths call it; lookups on the removal paths never
// create state. Callers must hold the write lock.
func (r *Registry) ensure(target EventTarget) map[string][]entry {
	byEvent, found := r.tracked[target]
	if !found {
		byEvent = make(map[string][]entry)
		r.tracked[target] = byEvent
	}
	return byEvent
}

func (r *Registry) attach(target EventTarget, name string, cb Callback, opts ListenerOptions) {
	r.lock.Lock()
	byEvent := r.ensure(target)
	byEvent[name] = append(byEvent[name], entry{
		callback: cb,
		options:  opts,
		ptr:      callbackPtr(cb),
	})
	r.lock.Unlock()

	r.logger.Debugf("attach %q once=%t", name, opts.Once)

	target.RegisterListener(name, cb, opts)
}

func (r *Registry) removeOne(target EventTarget, name string, cb Callback) {
	// Still issued when nothing matched: the native layer treats an unknown
	// callback as a no-op.
	opts := r.prune(target, name, cb)

	r.logger.Debugf("detach %q", name)

	target.UnregisterListener(name, cb, opts)
}

func (r *Registry) removeAll(target EventTarget, name string) {
	r.lock.Lock()
	var seq []entry
	if byEvent, found := r.tracked[target]; found {
		seq = byEvent[name]
		delete(byEvent, name)
	}
	r.lock.Unlock()

	r.logger.Debugf("detach all %q (%d tracked)", name, len(seq))

	for _, e := range seq {
		target.UnregisterListener(name, e.callback, e.options)
	}
}

// prune removes the first tracked entry matching cb by identity and reports
// the options it was registered with, falling back to zero options when
// nothing was tracked. An emptied sequence is deleted outright; the table
// keeps no empty placeholders.
func (r *Registry) prune(target EventTarget, name string, cb Callback) (opts ListenerOptions) {
	r.lock.Lock()
	defer r.lock.Unlock()

	byEvent, found := r.tracked[target]
	if !found {
		return
	}

	seq := byEvent[name]
	ptr := callbackPtr(cb)
	for i, e := range seq {
		if e.ptr == ptr {
			opts = e.options
			byEvent[name] = append(seq[:i:i], seq[i+1:]...)
			if len(byEvent[name]) == 0 {
				delete(byEvent, name)
			}
			return
		}
	}
	return
}
