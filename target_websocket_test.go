package libevents

import (
	"context"
	"net"
	"net/url"
	"testing"
	"time"

	"github.com/fasthttp/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

// startWsServer serves one WebSocket endpoint on a random local port and
// hands every upgraded connection to handle.
func startWsServer(t *testing.T, handle func(conn *websocket.Conn)) net.Listener {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	upgrader := websocket.FastHTTPUpgrader{}
	go func() {
		_ = fasthttp.Serve(ln, func(ctx *fasthttp.RequestCtx) {
			_ = upgrader.Upgrade(ctx, func(conn *websocket.Conn) {
				defer conn.Close()
				handle(conn)
			})
		})
	}()

	return ln
}

func newTestWsTarget(addr string) *WsEventTarget {
	return NewWsEventTarget(
		NewNoopLogger(),
		websocket.DefaultDialer,
		NewStaticDialParamsRepo(NewNoopLogger(), DialParams{
			URL: url.URL{Scheme: "ws", Host: addr},
		}),
		0,
	)
}

func TestWsEventTargetMapsFramesToEvents(t *testing.T) {
	ln := startWsServer(t, func(conn *websocket.Conn) {
		_ = conn.WriteMessage(websocket.TextMessage, []byte("hello"))
		_ = conn.WriteMessage(websocket.BinaryMessage, []byte{0x2a})

		deadline := time.Now().Add(time.Second)
		data := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye")
		_ = conn.WriteControl(websocket.CloseMessage, data, deadline)

		// Hold the connection until the peer reacts to the close frame.
		_, _, _ = conn.ReadMessage()
	})

	events := make(chan Event, 8)
	cb := func(ev Event) { events <- ev }

	target := newTestWsTarget(ln.Addr().String())
	defer target.Close()

	reg := New(NewNoopLogger())
	reg.Add(target, "open message binary close", cb, ListenerOptions{})

	require.NoError(t, target.Open(context.Background()))

	for _, want := range []string{EventOpen, EventMessage, EventBinary, EventClose} {
		select {
		case ev := <-events:
			assert.Equal(t, want, ev.Type())
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %q event", want)
		}
	}
}

func TestWsEventTargetDispatchesOpenWithEndpoint(t *testing.T) {
	ln := startWsServer(t, func(conn *websocket.Conn) {
		_, _, _ = conn.ReadMessage()
	})

	opened := make(chan Event, 1)

	target := newTestWsTarget(ln.Addr().String())
	defer target.Close()

	target.RegisterListener(EventOpen, func(ev Event) { opened <- ev }, ListenerOptions{})

	require.NoError(t, target.Open(context.Background()))

	select {
	case ev := <-opened:
		assert.Equal(t, "ws://"+ln.Addr().String(), ev.Data())
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the open event")
	}
}

func TestWsEventTargetDelegatesRegistration(t *testing.T) {
	target := newTestWsTarget("localhost:0")

	var fired int
	cb := func(Event) { fired++ }

	target.RegisterListener(EventMessage, cb, ListenerOptions{})
	require.NoError(t, target.dispatcher.Dispatch(NewMessageEvent([]byte("x"))))

	target.UnregisterListener(EventMessage, cb, ListenerOptions{})
	require.NoError(t, target.dispatcher.Dispatch(NewMessageEvent([]byte("x"))))

	assert.Equal(t, 1, fired)
}

func TestWsEventTargetSendBeforeOpen(t *testing.T) {
	target := newTestWsTarget("localhost:0")

	err := target.Send([]byte("x"))

	require.ErrorIs(t, err, ErrConnectionClosed)
}
