package transport

import (
	"context"
	"errors"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tarmac-project/httpcall/sdk"
	proto "github.com/tarmac-project/protobuf-go/sdk/http"
)

const (
	capabilityName = "httpclient"
	fnCall         = "call"
)

var lastToken atomic.Uint64

func nextToken() Token { return Token(lastToken.Add(1)) }

// Config controls how HostDialer sessions interact with the host runtime.
type Config struct {
	// SDKConfig provides the runtime namespace used for host calls.
	SDKConfig sdk.RuntimeConfig

	// InsecureSkipVerify disables TLS verification when supported by the host.
	InsecureSkipVerify bool

	// HostCall overrides the waPC host function used for requests.
	HostCall sdk.HostCall
}

// HostDialer opens sessions that perform their exchange through the host
// "httpclient" capability.
type HostDialer struct {
	cfg      Config
	hostCall sdk.HostCall
}

var _ Dialer = (*HostDialer)(nil)

// New creates a HostDialer with namespace defaults and optional host-call override.
func New(cfg Config) (*HostDialer, error) {
	cfg.SDKConfig = cfg.SDKConfig.WithDefaults()
	return &HostDialer{cfg: cfg, hostCall: sdk.ResolveHostCall(cfg.HostCall)}, nil
}

// Open returns an unsent session bound to host:port.
func (d *HostDialer) Open(host string, port int) (Session, error) {
	if host == "" || port < 1 || port > 65535 {
		return nil, ErrInvalidAddress
	}
	return &HostSession{
		namespace: d.cfg.SDKConfig.Namespace,
		insecure:  d.cfg.InsecureSkipVerify,
		hostCall:  d.hostCall,
		addr:      net.JoinHostPort(host, strconv.Itoa(port)),
		method:    "GET",
	}, nil
}

// HostSession is a Session backed by one host call. The host call runs on its
// own goroutine so a deferred Send can return before it completes.
type HostSession struct {
	namespace string
	insecure  bool
	hostCall  sdk.HostCall
	addr      string

	mu       sync.Mutex
	headers  map[string]string
	opts     Options
	method   string
	body     []byte
	deferred bool
	closed   bool

	sent     bool
	token    Token
	deadline time.Time
	done     chan struct{}

	// written by exchange before done is closed
	status   int
	respBody []byte
	err      error
}

var _ Session = (*HostSession)(nil)

func (s *HostSession) SetHeaders(headers map[string]string) {
	s.mu.Lock()
	s.headers = headers
	s.mu.Unlock()
}

func (s *HostSession) Configure(opts Options) {
	s.mu.Lock()
	s.opts = opts
	s.mu.Unlock()
}

func (s *HostSession) SetMethod(method string) {
	s.mu.Lock()
	s.method = method
	s.mu.Unlock()
}

func (s *HostSession) SetBody(body string) {
	s.mu.Lock()
	s.body = []byte(body)
	s.mu.Unlock()
}

func (s *HostSession) SetDefer(deferred bool) {
	s.mu.Lock()
	s.deferred = deferred
	s.mu.Unlock()
}

// Send builds the host request and starts the exchange.
func (s *HostSession) Send(ctx context.Context, uri string) (Token, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0, ErrClosed
	}
	if s.sent {
		s.mu.Unlock()
		return 0, ErrAlreadySent
	}

	req := s.buildRequest(uri)
	s.sent = true
	s.token = nextToken()
	s.done = make(chan struct{})
	if s.opts.Timeout > 0 {
		s.deadline = time.Now().Add(s.opts.Timeout)
	}
	deferred, token := s.deferred, s.token
	s.mu.Unlock()

	go s.exchange(req)

	if deferred {
		return token, nil
	}
	return token, s.Wait(ctx)
}

func (s *HostSession) buildRequest(uri string) *proto.HTTPClient {
	scheme := s.opts.Scheme
	if scheme == "" {
		scheme = "http"
	}

	req := &proto.HTTPClient{
		Method:   s.method,
		Url:      scheme + "://" + s.addr + uri,
		Insecure: s.insecure,
		Body:     s.body,
		Headers:  make(map[string]*proto.Header, len(s.headers)+1),
	}
	for k, v := range s.headers {
		req.Headers[k] = &proto.Header{Values: []string{v}}
	}
	if _, ok := s.headers["Host"]; !ok && s.opts.HostName != "" {
		req.Headers["Host"] = &proto.Header{Values: []string{s.opts.HostName}}
	}
	return req
}

// exchange performs the host call and publishes the outcome.
func (s *HostSession) exchange(req *proto.HTTPClient) {
	status, body, err := s.roundTrip(req)

	s.mu.Lock()
	s.status, s.respBody, s.err = status, body, err
	done := s.done
	s.mu.Unlock()
	close(done)
}

func (s *HostSession) roundTrip(req *proto.HTTPClient) (int, []byte, error) {
	b, err := req.MarshalVT()
	if err != nil {
		return 0, nil, errors.Join(ErrTransport, err)
	}

	resp, err := s.hostCall(s.namespace, capabilityName, fnCall, b)
	if err != nil {
		return 0, nil, errors.Join(ErrTransport, sdk.ErrHostCall, err)
	}

	var r proto.HTTPClientResponse
	if err := r.UnmarshalVT(resp); err != nil {
		return 0, nil, errors.Join(ErrTransport, sdk.ErrHostResponseInvalid, err)
	}
	if err := sdk.CheckStatus(r.GetStatus(), nil); err != nil {
		return 0, nil, errors.Join(ErrTransport, err)
	}

	return int(r.GetCode()), r.GetBody(), nil
}

// Wait blocks until the exchange completes and returns its error.
func (s *HostSession) Wait(ctx context.Context) error {
	s.mu.Lock()
	if !s.sent {
		s.mu.Unlock()
		return ErrNotSent
	}
	done, deadline := s.done, s.deadline
	s.mu.Unlock()

	if err := Await(ctx, done, deadline); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Body returns the response body, or "" before the exchange completes.
func (s *HostSession) Body() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return string(s.respBody)
}

// StatusCode returns the HTTP status of the response, or 0 before it completes.
func (s *HostSession) StatusCode() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Close releases the session. A host call still in flight finishes on its
// own goroutine and its result is discarded.
func (s *HostSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.closed = true
	return nil
}
