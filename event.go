package libevents

import "fmt"

// Event names dispatched by the targets shipped with this package. Listener
// registration accepts any name; these are just the ones WsEventTarget and
// Dispatcher produce themselves.
const (
	EventOpen    = "open"
	EventMessage = "message"
	EventBinary  = "binary"
	EventPing    = "ping"
	EventPong    = "pong"
	EventClose   = "close"
)

type Event interface {
	Type() string
	Data() any
	String() string
}

type event struct {
	EventType string
	EventData any
}

func (e event) Type() string {
	return e.EventType
}

func (e event) Data() any {
	return e.EventData
}

func (e event) String() string {
	return fmt.Sprintf("Event{type=%s,data=%v}",
		e.EventType, e.EventData)
}

// closeEvent carries the close code of the underlying connection alongside
// the textual reason.
type closeEvent struct {
	event
	Code int
}

func (e closeEvent) String() string {
	return fmt.Sprintf("Event{type=%s,code=%d,data=%v}",
		e.event.Type(), e.Code, e.event.Data())
}

func NewEvent(eventType string, data any) Event {
	return event{EventType: eventType, EventData: data}
}

func NewMessageEvent(data []byte) Event {
	return NewEvent(EventMessage, data)
}

func NewBinaryEvent(data []byte) Event {
	return NewEvent(EventBinary, data)
}

func NewPingEvent(data []byte) Event {
	return NewEvent(EventPing, data)
}

func NewPongEvent(data []byte) Event {
	return NewEvent(EventPong, data)
}

func NewCloseEvent(code int, reason string) Event {
	return closeEvent{
		event: event{EventType: EventClose, EventData: reason},
		Code:  code,
	}
}
