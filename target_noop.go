package libevents

type noopTarget struct{}

func (noopTarget) RegisterListener(string, Callback, ListenerOptions) {}

func (noopTarget) UnregisterListener(string, Callback, ListenerOptions) {}
