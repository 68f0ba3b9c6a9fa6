package libevents

// ListenerOptions mirror the flags a native event target accepts at
// registration time. The zero value is a plain bubbling-phase listener.
type ListenerOptions struct {
	// Once makes the target drop the listener after its first invocation.
	Once bool
	// Capture registers for the capture phase instead of the bubbling phase.
	Capture bool
	// Passive promises the callback never cancels the event.
	Passive bool
}

func (o ListenerOptions) withOnce() ListenerOptions {
	o.Once = true
	return o
}
