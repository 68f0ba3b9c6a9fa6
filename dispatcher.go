package libevents

import (
	"sync"
)

type registration struct {
	callback Callback
	once     bool
	ptr      uintptr
}

// Dispatcher is an in-process EventTarget. It maps event names to listeners
// and invokes them synchronously, in registration order, when an event is
// dispatched. Fire-once listeners are dropped after their first invocation,
// and unregistering an unknown callback is a no-op, matching what native
// event layers do.
type Dispatcher struct {
	listeners map[string][]registration
	closed    bool
	lock      sync.RWMutex
}

// NewDispatcher creates a new Dispatcher and returns a pointer to it.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		listeners: make(map[string][]registration),
	}
}

// RegisterListener registers a new listener for the given event. Duplicate
// registrations of the same callback are kept; each is invoked on dispatch.
func (d *Dispatcher) RegisterListener(event string, cb Callback, opts ListenerOptions) {
	d.lock.Lock()
	defer d.lock.Unlock()

	d.listeners[event] = append(d.listeners[event], registration{
		callback: cb,
		once:     opts.Once,
		ptr:      callbackPtr(cb),
	})
}

// UnregisterListener removes the first listener registered for the given
// event whose callback matches cb by identity. At most one registration is
// removed per call; removing a callback that is not registered does
// nothing.
func (d *Dispatcher) UnregisterListener(event string, cb Callback, _ ListenerOptions) {
	d.lock.Lock()
	defer d.lock.Unlock()

	seq := d.listeners[event]
	ptr := callbackPtr(cb)
	for i, reg := range seq {
		if reg.ptr == ptr {
			seq = append(seq[:i:i], seq[i+1:]...)
			if len(seq) == 0 {
				delete(d.listeners, event)
			} else {
				d.listeners[event] = seq
			}
			return
		}
	}
}

// Dispatch invokes every listener registered for the event's type,
// synchronously and in registration order. Fire-once listeners are removed
// before their callbacks run, so a callback dispatching the same event
// again never re-enters itself. Dispatching to a closed Dispatcher returns
// ErrTargetClosed.
func (d *Dispatcher) Dispatch(ev Event) error {
	d.lock.Lock()

	if d.closed {
		d.lock.Unlock()
		return ErrTargetClosed
	}

	seq, found := d.listeners[ev.Type()]
	if !found {
		d.lock.Unlock()
		return nil
	}

	run := make([]Callback, 0, len(seq))
	remaining := make([]registration, 0, len(seq))
	for _, reg := range seq {
		run = append(run, reg.callback)
		if !reg.once {
			remaining = append(remaining, reg)
		}
	}
	if len(remaining) == 0 {
		delete(d.listeners, ev.Type())
	} else {
		d.listeners[ev.Type()] = remaining
	}

	// Callbacks run outside the lock so they may register and unregister
	// listeners themselves.
	d.lock.Unlock()

	for _, cb := range run {
		cb(ev)
	}
	return nil
}

// Close removes all listeners and makes further dispatches fail with
// ErrTargetClosed. Registration on a closed Dispatcher is still accepted
// but never fires.
func (d *Dispatcher) Close() {
	d.lock.Lock()
	defer d.lock.Unlock()

	d.closed = true
	d.listeners = make(map[string][]registration)
}
