package httpcall

import (
	"context"
	"sync/atomic"

	"github.com/tarmac-project/httpcall/transport"
)

const (
	statePending int32 = iota
	stateReceiving
	stateCompleted
)

// Deferred is a request that has been sent but not yet received. It owns
// its transport session until Receive returns.
type Deferred struct {
	client *Client
	ex     *exchange
	token  transport.Token
	state  atomic.Int32
	done   chan struct{}
}

func newDeferred(c *Client, ex *exchange, token transport.Token) *Deferred {
	d := &Deferred{client: c, ex: ex, token: token, done: make(chan struct{})}
	go func() {
		// Bounded by the session timeout.
		_ = ex.session.Wait(context.Background())
		close(d.done)
	}()
	return d
}

// Key returns the profiling key, METHOD + "." + URL.
func (d *Deferred) Key() string { return d.ex.key }

// Token returns the token issued when the request was sent.
func (d *Deferred) Token() transport.Token { return d.token }

// Done is closed once the response is complete or the request has failed,
// so Receive will not block.
func (d *Deferred) Done() <-chan struct{} { return d.done }

// Receive waits for the response and returns its body. The session is closed
// whatever the outcome. Only the first call does any work; later calls fail
// with ErrInvalidState.
func (d *Deferred) Receive(ctx context.Context) (string, error) {
	if d == nil {
		return "", ErrNilDeferred
	}
	if !d.state.CompareAndSwap(statePending, stateReceiving) {
		return "", ErrInvalidState
	}
	defer d.state.Store(stateCompleted)

	return d.client.finish(d.ex, d.ex.session.Wait(ctx))
}

// ReceiveAll receives every result in order, even after a failure, and
// returns the bodies alongside the first error encountered.
func ReceiveAll(ctx context.Context, results ...*Deferred) ([]string, error) {
	bodies := make([]string, len(results))
	var first error
	for i, d := range results {
		body, err := d.Receive(ctx)
		if err != nil && first == nil {
			first = err
		}
		bodies[i] = body
	}
	return bodies, first
}
