package libevents

import (
	"errors"
	"sync"
	"testing"
)

func TestDispatchSingleListener(t *testing.T) {
	dispatcher := NewDispatcher()
	var results []any

	// Registers a single listener for the "event" event.
	dispatcher.RegisterListener("event", func(ev Event) {
		results = append(results, ev.Data())
	}, ListenerOptions{})

	if err := dispatcher.Dispatch(NewEvent("event", 42)); err != nil {
		t.Fatalf("Unexpected dispatch error: %v", err)
	}

	if len(results) != 1 || results[0] != 42 {
		t.Errorf("Expected to receive [42], but got %v", results)
	}
}

func TestDispatchRegistrationOrder(t *testing.T) {
	dispatcher := NewDispatcher()
	var order []int

	dispatcher.RegisterListener("event", func(Event) {
		order = append(order, 1)
	}, ListenerOptions{})
	dispatcher.RegisterListener("event", func(Event) {
		order = append(order, 2)
	}, ListenerOptions{})

	_ = dispatcher.Dispatch(NewEvent("event", nil))

	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("Expected listeners to run in registration order, got %v", order)
	}
}

func TestDispatchNoListeners(t *testing.T) {
	dispatcher := NewDispatcher()
	// When dispatching an event with no listeners, no error or call should occur.
	if err := dispatcher.Dispatch(NewEvent("nonexistentEvent", 100)); err != nil {
		t.Errorf("Expected nil error, got %v", err)
	}
}

func TestDispatchOnceAutoRemoval(t *testing.T) {
	dispatcher := NewDispatcher()
	var fired int

	dispatcher.RegisterListener("event", func(Event) {
		fired++
	}, ListenerOptions{Once: true})

	_ = dispatcher.Dispatch(NewEvent("event", nil))
	_ = dispatcher.Dispatch(NewEvent("event", nil))

	if fired != 1 {
		t.Errorf("Expected fire-once listener to run exactly once, ran %d times", fired)
	}
}

func TestUnregisterRemovesOneOccurrence(t *testing.T) {
	dispatcher := NewDispatcher()
	var fired int

	cb := func(Event) { fired++ }

	dispatcher.RegisterListener("event", cb, ListenerOptions{})
	dispatcher.RegisterListener("event", cb, ListenerOptions{})
	dispatcher.UnregisterListener("event", cb, ListenerOptions{})

	_ = dispatcher.Dispatch(NewEvent("event", nil))

	if fired != 1 {
		t.Errorf("Expected one remaining registration, got %d invocations", fired)
	}
}

func TestUnregisterUnknownCallback(t *testing.T) {
	dispatcher := NewDispatcher()
	// Unregistering a callback that was never registered must not panic or
	// mutate anything.
	dispatcher.UnregisterListener("event", func(Event) {}, ListenerOptions{})
}

func TestDispatchAfterClose(t *testing.T) {
	dispatcher := NewDispatcher()
	dispatcher.RegisterListener("event", func(Event) {
		t.Error("listener must not run after Close")
	}, ListenerOptions{})

	dispatcher.Close()

	if err := dispatcher.Dispatch(NewEvent("event", nil)); !errors.Is(err, ErrTargetClosed) {
		t.Errorf("Expected ErrTargetClosed, got %v", err)
	}
}

func TestDispatchConcurrent(t *testing.T) {
	dispatcher := NewDispatcher()
	var mu sync.Mutex
	var results []int
	var wg sync.WaitGroup

	// Concurrently registers 10 listeners.
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			dispatcher.RegisterListener("event", func(ev Event) {
				mu.Lock()
				results = append(results, ev.Data().(int)+i)
				mu.Unlock()
			}, ListenerOptions{})
		}(i)
	}
	wg.Wait()

	// Concurrent dispatch: 10 events are dispatched.
	for j := 0; j < 10; j++ {
		wg.Add(1)
		go func(j int) {
			defer wg.Done()
			_ = dispatcher.Dispatch(NewEvent("event", j))
		}(j)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	// Expect 10 (listeners) * 10 (dispatches) = 100 callbacks.
	if len(results) != 100 {
		t.Errorf("Expected 100 callbacks, but got %d", len(results))
	}
}
