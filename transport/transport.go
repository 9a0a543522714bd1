package transport

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Token identifies a send. Tokens are unique per process and never zero.
type Token uint64

// Options configures a session before it is sent.
type Options struct {
	// Timeout bounds the exchange, measured from Send. Zero means no limit.
	Timeout time.Duration

	// Scheme is "http" or "https". Empty means "http".
	Scheme string

	// HostName is the name the caller asked for. It becomes the Host header
	// unless the caller set one, since the session itself dials an address.
	HostName string
}

// Session is a single request/response exchange bound to one address.
// A Session is sent at most once and must be closed exactly once.
type Session interface {
	SetHeaders(headers map[string]string)
	Configure(opts Options)
	SetMethod(method string)
	SetBody(body string)

	// SetDefer switches Send to return as soon as the request is on its way.
	SetDefer(deferred bool)

	// Send issues the request for uri. In normal mode it blocks until the
	// response is complete; in deferred mode it returns immediately and
	// Wait collects the outcome.
	Send(ctx context.Context, uri string) (Token, error)

	// Wait blocks until the response is complete, the timeout passes or
	// ctx is done.
	Wait(ctx context.Context) error

	// Body returns the raw response body once the exchange has completed.
	Body() string

	Close() error
}

// Dialer opens sessions bound to a resolved host and port.
type Dialer interface {
	Open(host string, port int) (Session, error)
}

var (
	// ErrTransport is the root of every transport failure.
	ErrTransport = errors.New("transport failure")

	// ErrTimeout indicates the exchange exceeded its configured timeout.
	ErrTimeout = fmt.Errorf("%w: request timed out", ErrTransport)

	// ErrClosed indicates use of a session after Close.
	ErrClosed = fmt.Errorf("%w: session is closed", ErrTransport)

	// ErrNotSent indicates Wait was called before Send.
	ErrNotSent = fmt.Errorf("%w: request has not been sent", ErrTransport)

	// ErrAlreadySent indicates a second Send on the same session.
	ErrAlreadySent = fmt.Errorf("%w: request already sent", ErrTransport)

	// ErrInvalidAddress indicates an empty host or a port outside 1-65535.
	ErrInvalidAddress = fmt.Errorf("%w: invalid address", ErrTransport)
)

// Await blocks until done is closed, deadline passes or ctx is done. A zero
// deadline waits without limit. Session implementations share it so that
// deferred and blocking sends time out the same way.
func Await(ctx context.Context, done <-chan struct{}, deadline time.Time) error {
	var expired <-chan time.Time
	if !deadline.IsZero() {
		d := time.Until(deadline)
		if d <= 0 {
			select {
			case <-done:
				return nil
			default:
				return ErrTimeout
			}
		}
		timer := time.NewTimer(d)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case <-done:
		return nil
	case <-expired:
		return ErrTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}
