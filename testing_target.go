package libevents

import (
	"github.com/stretchr/testify/mock"
)

type mockTarget struct {
	mock.Mock
}

func (m *mockTarget) RegisterListener(event string, cb Callback, opts ListenerOptions) {
	m.Called(event, cb, opts)
}

func (m *mockTarget) UnregisterListener(event string, cb Callback, opts ListenerOptions) {
	m.Called(event, cb, opts)
}

type targetCall struct {
	op    string
	event string
	ptr   uintptr
	opts  ListenerOptions
}

// recorderTarget records every native call it receives, in order, keyed by
// callback identity so tests can assert which function was handed down.
type recorderTarget struct {
	calls []targetCall
}

func (r *recorderTarget) RegisterListener(event string, cb Callback, opts ListenerOptions) {
	r.calls = append(r.calls, targetCall{op: "register", event: event, ptr: callbackPtr(cb), opts: opts})
}

func (r *recorderTarget) UnregisterListener(event string, cb Callback, opts ListenerOptions) {
	r.calls = append(r.calls, targetCall{op: "unregister", event: event, ptr: callbackPtr(cb), opts: opts})
}

func (r *recorderTarget) ops(op, event string) []targetCall {
	var out []targetCall
	for _, c := range r.calls {
		if c.op == op && c.event == event {
			out = append(out, c)
		}
	}
	return out
}
