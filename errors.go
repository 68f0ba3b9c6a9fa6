package libevents

import (
	"fmt"
	"net/url"

	"github.com/pkg/errors"
)

var (
	ErrTargetClosed     = errors.New("event target has been closed")
	ErrConnectionClosed = errors.New("connection has been closed")
	ErrCannotConnect    = errors.New("connection cannot be established")
	ErrTerminated       = errors.New("program exit")
	ErrRateLimit        = errors.New("rate limit exceeded")
)

// ErrDial reports a failed WebSocket dial together with the endpoint that
// refused it.
type ErrDial struct {
	err error
	url url.URL
}

func (e ErrDial) Error() string {
	return fmt.Sprintf("dial error: %s to %s", e.err, e.url.String())
}

func (e ErrDial) Unwrap() error { return e.err }

func WrapErrDial(err error, url url.URL) *ErrDial {
	if err == nil {
		return nil
	}
	return &ErrDial{
		err: err,
		url: url,
	}
}
