package libevents

import (
	"io"
	"net/http"
	"sync"
	"time"

	"context"

	"github.com/pkg/errors"

	"github.com/fasthttp/websocket"
)

type (
	dialParamsRepo interface {
		Get(ctx context.Context) (DialParams, error)
	}

	// WsEventTarget is an EventTarget backed by a live WebSocket
	// connection. Inbound frames are dispatched as events to whatever
	// listeners were attached, by name: text frames as "message", binary
	// frames as "binary", control frames as "ping"/"pong"/"close". A
	// successful dial dispatches "open".
	//
	// Register and unregister listeners through a Registry so they can be
	// enumerated and bulk-removed later; the target itself keeps no
	// introspectable state.
	WsEventTarget struct {
		dialParamsRepo dialParamsRepo
		logger         Logger
		dialer         *websocket.Dialer
		dispatcher     *Dispatcher
		conn           *websocket.Conn
		pingInterval   time.Duration
		closeChan      chan struct{}
		closeOnce      sync.Once
		closeReason    error
		closeOnceErr   sync.Once
		writeLock      sync.Mutex
	}
)

// NewWsEventTarget builds a target that will dial with dialer using the
// params the repo yields. A positive pingInterval makes the target send
// periodic pings to keep the connection alive; zero disables them.
func NewWsEventTarget(
	logger Logger,
	dialer *websocket.Dialer,
	dialParamsRepo DialParamsRepo,
	pingInterval time.Duration,
) *WsEventTarget {
	return &WsEventTarget{
		dialParamsRepo: dialParamsRepo,
		dialer:         dialer,
		dispatcher:     NewDispatcher(),
		pingInterval:   pingInterval,
		closeChan:      make(chan struct{}),
		logger:         logger.WithField("net", "ws_event_target"),
	}
}

// RegisterListener registers cb for the given event name.
func (w *WsEventTarget) RegisterListener(event string, cb Callback, opts ListenerOptions) {
	w.dispatcher.RegisterListener(event, cb, opts)
}

// UnregisterListener removes one registration of cb for the given event
// name, matched by identity.
func (w *WsEventTarget) UnregisterListener(event string, cb Callback, opts ListenerOptions) {
	w.dispatcher.UnregisterListener(event, cb, opts)
}

// Open dials the endpoint and starts the frame pump. It returns once the
// connection is established or the dial failed; listeners attached before
// Open see the "open" event.
func (w *WsEventTarget) Open(ctx context.Context) error {
	p, err := w.dialParamsRepo.Get(ctx)
	if err != nil {
		w.logger.Errorf("cannot get dial params: %s", err)
		return err
	}

	conn, resp, err := w.dialer.Dial(p.URL.String(), p.Header)

	if err = w.handleDialError(resp, err); err != nil {
		w.logger.Errorf("connection err to %s: %s", p.URL.String(), err)
		return WrapErrDial(err, p.URL)
	}

	w.logger.Debugf("success opening connection to %s", p.URL.String())

	w.conn = conn

	// Override control message handlers so control frames surface as
	// events instead of dying inside the library's read loop.
	conn.SetPingHandler(func(appData string) error {
		w.logger.Debugf("<= [PING]")
		// Reply on the peer's behalf; the event is informational.
		deadline := time.Now().Add(time.Second)
		_ = conn.WriteControl(websocket.PongMessage, []byte(appData), deadline)
		return w.dispatcher.Dispatch(NewPingEvent([]byte(appData)))
	})

	conn.SetPongHandler(func(appData string) error {
		w.logger.Debugf("<= [PONG]")
		return w.dispatcher.Dispatch(NewPongEvent([]byte(appData)))
	})

	conn.SetCloseHandler(func(code int, text string) error {
		w.logger.Debugf("<= [CLOSE]")
		return w.dispatcher.Dispatch(NewCloseEvent(code, text))
	})

	if err := w.dispatcher.Dispatch(NewEvent(EventOpen, p.URL.String())); err != nil {
		w.safeClose()
		return err
	}

	go w.read(ctx)
	if w.pingInterval > 0 {
		go w.keepAlive(ctx)
	}

	return nil
}

// Send writes a text frame to the peer. Sending before Open succeeded or
// after the connection closed returns ErrConnectionClosed.
func (w *WsEventTarget) Send(data []byte) error {
	w.writeLock.Lock()
	defer w.writeLock.Unlock()

	if w.conn == nil {
		return ErrConnectionClosed
	}

	select {
	case <-w.closeChan:
		return ErrConnectionClosed
	default:
	}

	_ = w.conn.SetWriteDeadline(time.Now().Add(time.Second))
	return w.conn.WriteMessage(websocket.TextMessage, data)
}

// Close terminates the connection and drops every listener.
func (w *WsEventTarget) Close() {
	w.safeClose()
}

// CloseChan returns a channel that will be closed when the connection is
// closed.
func (w *WsEventTarget) CloseChan() <-chan struct{} {
	return w.closeChan
}

// CloseErr returns an error that explains why the connection was closed.
// If the connection closed normally, CloseErr returns nil.
func (w *WsEventTarget) CloseErr() error {
	return w.closeReason
}

func (w *WsEventTarget) read(ctx context.Context) {
	defer w.safeClose()

	for {
		select {
		case <-w.closeChan:
			w.setCloseReason(ErrTerminated)
			return
		case <-ctx.Done():
			w.setCloseReason(ErrTerminated)
			return
		default:
			messageType, bts, err := w.conn.ReadMessage()
			if err != nil {
				w.logger.Errorf("error occurred on websocket read: %s", err)

				w.setCloseReason(errors.Wrap(
					ErrConnectionClosed,
					"error occurred on websocket read: "+err.Error(),
				))
				return
			}
			// message types from ReadMessage are either binary or text
			switch messageType {
			case websocket.BinaryMessage:
				w.logger.Debugf("<= [BIN]")
				_ = w.dispatcher.Dispatch(NewBinaryEvent(bts))
			default:
				w.logger.Debugf("<= [DATA] %s", string(bts))
				_ = w.dispatcher.Dispatch(NewMessageEvent(bts))
			}
		}
	}
}

// keepAlive sends periodic pings until the context is done or the
// connection is closed.
func (w *WsEventTarget) keepAlive(ctx context.Context) {
	ticker := time.NewTicker(w.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.closeChan:
			return
		case <-ticker.C:
			w.logger.Debugf("=> [PING]")
			deadline := time.Now().Add(time.Second)
			if err := w.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				w.logger.Warnf("keep-alive ping failed: %s", err)
			}
		}
	}
}

func (w *WsEventTarget) safeClose() {
	w.closeOnce.Do(w.close)
}

func (w *WsEventTarget) close() {
	w.logger.Infof("closing connection")
	if w.conn != nil {
		_ = w.conn.Close()
	}
	close(w.closeChan)
	w.dispatcher.Close()
}

func (w *WsEventTarget) setCloseReason(err error) {
	w.closeOnceErr.Do(func() {
		w.closeReason = err
	})
}

func (w *WsEventTarget) handleDialError(resp *http.Response, err error) error {
	// 1. Check HTTP errors first
	var msg string

	if resp != nil {
		if resp.Body != nil {
			bts, err := io.ReadAll(resp.Body)
			if err == nil {
				msg = string(bts)
			}
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			return errors.Wrap(ErrRateLimit, msg)
		}
	}

	// 2. Network errors
	if err != nil {
		return errors.Wrap(ErrCannotConnect, err.Error())
	}

	return nil
}
