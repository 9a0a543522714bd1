package mock

import (
	"context"
	"sync"
	"time"

	"github.com/tarmac-project/httpcall/transport"
)

// Response describes a synthetic exchange outcome.
type Response struct {
	// Body is returned by Session.Body once the exchange completes.
	Body string
	// Error, when set, is returned by Send (blocking) or Wait (deferred).
	Error error
	// Gate, when non-nil, holds the exchange open until it is closed.
	Gate <-chan struct{}
}

// Config controls construction of a Dialer.
type Config struct {
	// DefaultResponse is used when no method/URI-specific response exists.
	DefaultResponse *Response
	// OpenError, when set, makes every Open fail.
	OpenError error
}

// Dialer implements transport.Dialer with configurable responses and
// records every session it opens. It never performs I/O and is safe for
// concurrent use.
type Dialer struct {
	mu        sync.Mutex
	responses map[string]*Response
	fallback  *Response
	openErr   error
	sessions  []*Session
}

var _ transport.Dialer = (*Dialer)(nil)

// New creates a mock Dialer. Without a DefaultResponse every exchange
// returns the body "OK".
func New(cfg Config) *Dialer {
	fallback := cfg.DefaultResponse
	if fallback == nil {
		fallback = &Response{Body: "OK"}
	}
	return &Dialer{
		responses: make(map[string]*Response),
		fallback:  fallback,
		openErr:   cfg.OpenError,
	}
}

// On starts configuration of a response for method and uri.
func (d *Dialer) On(method, uri string) *ResponseBuilder {
	return &ResponseBuilder{dialer: d, key: method + " " + uri}
}

// Open records and returns a new session bound to host:port.
func (d *Dialer) Open(host string, port int) (transport.Session, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.openErr != nil {
		return nil, d.openErr
	}
	s := &Session{dialer: d, rec: Record{Host: host, Port: port, Method: "GET"}}
	d.sessions = append(d.sessions, s)
	return s, nil
}

// Sessions returns the sessions opened so far, in order.
func (d *Dialer) Sessions() []*Session {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*Session(nil), d.sessions...)
}

func (d *Dialer) responseFor(method, uri string) *Response {
	d.mu.Lock()
	defer d.mu.Unlock()
	if r, ok := d.responses[method+" "+uri]; ok {
		return r
	}
	return d.fallback
}

// ResponseBuilder configures the response for one method and URI.
type ResponseBuilder struct {
	dialer *Dialer
	key    string
}

// Return sets the response body.
func (b *ResponseBuilder) Return(body string) *Dialer {
	return b.set(&Response{Body: body})
}

// ReturnError makes the exchange fail with err.
func (b *ResponseBuilder) ReturnError(err error) *Dialer {
	return b.set(&Response{Error: err})
}

// Hold returns body once gate is closed.
func (b *ResponseBuilder) Hold(body string, gate <-chan struct{}) *Dialer {
	return b.set(&Response{Body: body, Gate: gate})
}

func (b *ResponseBuilder) set(r *Response) *Dialer {
	b.dialer.mu.Lock()
	b.dialer.responses[b.key] = r
	b.dialer.mu.Unlock()
	return b.dialer
}

// Record holds what a client configured on a Session.
type Record struct {
	Host     string
	Port     int
	Headers  map[string]string
	Options  transport.Options
	Method   string
	Payload  string
	Deferred bool
	URI      string
	Sends    int
	Closes   int
}

// Session records everything the client configured on it.
type Session struct {
	dialer *Dialer

	mu       sync.Mutex
	rec      Record
	token    transport.Token
	deadline time.Time
	done     chan struct{}
	resp     *Response
}

var _ transport.Session = (*Session)(nil)

var tokens struct {
	sync.Mutex
	n transport.Token
}

func (s *Session) SetHeaders(h map[string]string) { s.mu.Lock(); s.rec.Headers = h; s.mu.Unlock() }
func (s *Session) Configure(o transport.Options)  { s.mu.Lock(); s.rec.Options = o; s.mu.Unlock() }
func (s *Session) SetMethod(m string)             { s.mu.Lock(); s.rec.Method = m; s.mu.Unlock() }
func (s *Session) SetBody(b string)               { s.mu.Lock(); s.rec.Payload = b; s.mu.Unlock() }
func (s *Session) SetDefer(d bool)                { s.mu.Lock(); s.rec.Deferred = d; s.mu.Unlock() }

// Send looks up the configured response and completes it once its gate opens.
func (s *Session) Send(ctx context.Context, uri string) (transport.Token, error) {
	s.mu.Lock()
	s.rec.Sends++
	if s.rec.Closes > 0 {
		s.mu.Unlock()
		return 0, transport.ErrClosed
	}
	if s.done != nil {
		s.mu.Unlock()
		return 0, transport.ErrAlreadySent
	}
	s.rec.URI = uri
	s.resp = s.dialer.responseFor(s.rec.Method, uri)
	s.done = make(chan struct{})
	if s.rec.Options.Timeout > 0 {
		s.deadline = time.Now().Add(s.rec.Options.Timeout)
	}
	tokens.Lock()
	tokens.n++
	s.token = tokens.n
	tokens.Unlock()
	token, deferred, gate, done := s.token, s.rec.Deferred, s.resp.Gate, s.done
	s.mu.Unlock()

	if gate == nil {
		close(done)
	} else {
		go func() {
			<-gate
			close(done)
		}()
	}

	if deferred {
		return token, nil
	}
	return token, s.Wait(ctx)
}

// Wait blocks until the configured response is released.
func (s *Session) Wait(ctx context.Context) error {
	s.mu.Lock()
	done, deadline, resp := s.done, s.deadline, s.resp
	s.mu.Unlock()
	if done == nil {
		return transport.ErrNotSent
	}
	if err := transport.Await(ctx, done, deadline); err != nil {
		return err
	}
	return resp.Error
}

// Body returns the configured body once the exchange has been released.
func (s *Session) Body() string {
	s.mu.Lock()
	done, resp := s.done, s.resp
	s.mu.Unlock()
	if done == nil || resp.Error != nil {
		return ""
	}
	select {
	case <-done:
		return resp.Body
	default:
		return ""
	}
}

// Close counts closes; the second and later return transport.ErrClosed.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec.Closes++
	if s.rec.Closes > 1 {
		return transport.ErrClosed
	}
	return nil
}

// Record returns a copy of what has been recorded so far.
func (s *Session) Record() Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rec
}
