package httpcall

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tarmac-project/httpcall/dns"
	"github.com/tarmac-project/httpcall/endpoint"
	"github.com/tarmac-project/httpcall/logging"
	"github.com/tarmac-project/httpcall/metrics"
	"github.com/tarmac-project/httpcall/request"
	"github.com/tarmac-project/httpcall/sdk"
	"github.com/tarmac-project/httpcall/transport"
)

// Method is an HTTP verb accepted by Call and DeferCall.
type Method = request.Method

const (
	GET    = request.GET
	POST   = request.POST
	PUT    = request.PUT
	DELETE = request.DELETE
	PATCH  = request.PATCH
)

// Payload types accepted in Request.Payload.
type (
	Payload = request.Payload
	Raw     = request.Raw
	Form    = request.Form
	Value   = request.Value
)

const (
	// ProfilePrefix starts the names of histograms emitted by the default profiler.
	ProfilePrefix = "httpcall"

	requestsMetric = "httpcall_requests_total"
	sessionsMetric = "httpcall_inflight"
)

var (
	// ErrInvalidState is returned by Receive on a result that was already received.
	ErrInvalidState = errors.New("deferred result is not pending")

	// ErrNilDeferred is returned when a nil *Deferred is received.
	ErrNilDeferred = errors.New("deferred result is nil")
)

// Request describes one HTTP request.
type Request struct {
	// URL is the absolute http or https URL.
	URL string

	// Method defaults to GET.
	Method Method

	// Payload is appended to the query for GET and sent as the body otherwise.
	Payload Payload

	// Timeout bounds the exchange. Zero selects the client default.
	Timeout time.Duration

	// Headers are sent as given. Keys are case-sensitive.
	Headers map[string]string
}

// Resolver turns a host name into an IP address.
type Resolver interface {
	Resolve(ctx context.Context, host string) (string, error)
}

// Config controls how a Client is built.
type Config struct {
	// SDKConfig provides the namespace for host calls and the default timeout.
	SDKConfig sdk.RuntimeConfig

	// HostCall overrides the waPC host function for every default collaborator.
	HostCall sdk.HostCall

	// Logger receives a debug line per completed request. Defaults to the
	// host logging capability.
	Logger logging.Client

	// Profiler brackets the network portion of each request. Defaults to
	// histograms on the host metrics capability.
	Profiler metrics.Profiler

	// Resolver defaults to the host dns capability.
	Resolver Resolver

	// Dialer defaults to the host httpclient capability.
	Dialer transport.Dialer

	// DNSCache and DNSCachePrefix configure the default Resolver's read-only cache.
	DNSCache       dns.Cache
	DNSCachePrefix string

	// InsecureSkipVerify disables TLS verification on the default Dialer.
	InsecureSkipVerify bool
}

// Client issues HTTP requests. It holds no per-request state and is safe for
// concurrent use.
type Client struct {
	timeout  time.Duration
	log      logging.Client
	profiler metrics.Profiler
	resolver Resolver
	dialer   transport.Dialer
	requests *metrics.Counter
	sessions *metrics.Gauge
}

// New creates a Client, building any collaborator missing from cfg on top of
// the host capabilities.
func New(cfg Config) (*Client, error) {
	if cfg.SDKConfig.Timeout < 0 {
		return nil, sdk.ErrInvalidTimeout
	}
	runtime := cfg.SDKConfig.WithDefaults()
	hostCall := sdk.ResolveHostCall(cfg.HostCall)

	c := &Client{
		timeout:  runtime.Timeout,
		log:      cfg.Logger,
		profiler: cfg.Profiler,
		resolver: cfg.Resolver,
		dialer:   cfg.Dialer,
	}

	var err error
	if c.log == nil {
		c.log, err = logging.New(logging.Config{SDKConfig: runtime, HostCall: hostCall})
		if err != nil {
			return nil, fmt.Errorf("could not create logger: %w", err)
		}
	}

	m, err := metrics.New(metrics.Config{SDKConfig: runtime, HostCall: hostCall})
	if err != nil {
		return nil, fmt.Errorf("could not create metrics client: %w", err)
	}
	if c.requests, err = m.NewCounter(requestsMetric); err != nil {
		return nil, err
	}
	if c.sessions, err = m.NewGauge(sessionsMetric); err != nil {
		return nil, err
	}
	if c.profiler == nil {
		c.profiler = m.NewProfiler(ProfilePrefix, nil)
	}

	if c.resolver == nil {
		c.resolver, err = dns.New(dns.Config{
			SDKConfig:   runtime,
			HostCall:    hostCall,
			Logger:      c.log,
			Cache:       cfg.DNSCache,
			CachePrefix: cfg.DNSCachePrefix,
		})
		if err != nil {
			return nil, fmt.Errorf("could not create resolver: %w", err)
		}
	}

	if c.dialer == nil {
		c.dialer, err = transport.New(transport.Config{
			SDKConfig:          runtime,
			InsecureSkipVerify: cfg.InsecureSkipVerify,
			HostCall:           hostCall,
		})
		if err != nil {
			return nil, fmt.Errorf("could not create dialer: %w", err)
		}
	}

	return c, nil
}

// Call performs req and returns the raw response body. It blocks until the
// response is complete, the timeout passes or ctx is done.
func (c *Client) Call(ctx context.Context, req Request) (string, error) {
	ex, err := c.open(ctx, req, false)
	if err != nil {
		return "", err
	}

	c.profiler.Start(ex.key)
	c.requests.Inc()
	_, err = ex.session.Send(ctx, ex.uri)
	return c.finish(ex, err)
}

// DeferCall sends req and returns without waiting for the response. The
// result must be collected with Receive, which also releases the session.
func (c *Client) DeferCall(ctx context.Context, req Request) (*Deferred, error) {
	ex, err := c.open(ctx, req, true)
	if err != nil {
		return nil, err
	}

	c.profiler.Start(ex.key)
	c.requests.Inc()
	token, err := ex.session.Send(ctx, ex.uri)
	if err != nil {
		_, err = c.finish(ex, err)
		return nil, err
	}

	return newDeferred(c, ex, token), nil
}

// exchange is an opened, configured session waiting to be sent.
type exchange struct {
	key     string
	uri     string
	session transport.Session
}

// open runs everything up to the send: parse, resolve, encode, open and
// configure the session.
func (c *Client) open(ctx context.Context, req Request, deferred bool) (*exchange, error) {
	method := req.Method
	if method == "" {
		method = GET
	}
	if !method.Valid() {
		return nil, fmt.Errorf("%w: %q", request.ErrInvalidMethod, method)
	}
	if req.Timeout < 0 {
		return nil, sdk.ErrInvalidTimeout
	}
	timeout := req.Timeout
	if timeout == 0 {
		timeout = c.timeout
	}

	ep, err := endpoint.Parse(req.URL)
	if err != nil {
		return nil, err
	}

	ip, err := c.resolver.Resolve(ctx, ep.Host)
	if err != nil {
		return nil, err
	}

	enc := request.Encode(method, ep.URI(), req.Headers, req.Payload)

	s, err := c.dialer.Open(ip, ep.Port)
	if err != nil {
		return nil, err
	}
	c.sessions.Inc()

	s.SetHeaders(enc.Headers)
	s.Configure(transport.Options{
		Timeout:  timeout,
		Scheme:   string(ep.Scheme),
		HostName: ep.Authority(),
	})
	s.SetMethod(string(enc.Method))
	s.SetBody(enc.Body)
	s.SetDefer(deferred)

	return &exchange{
		key:     string(method) + "." + req.URL,
		uri:     enc.URI,
		session: s,
	}, nil
}

// finish reads the body of a sent exchange, closes its session and reports
// the outcome. err is the send or wait error, if any.
func (c *Client) finish(ex *exchange, err error) (string, error) {
	var body string
	if err == nil {
		body = ex.session.Body()
	}

	if cerr := ex.session.Close(); cerr != nil && !errors.Is(cerr, transport.ErrClosed) {
		c.log.Warn("closing session failed, key=" + ex.key + ": " + cerr.Error())
	}
	c.sessions.Dec()
	c.profiler.End(ex.key)

	if err != nil {
		return "", err
	}

	c.log.Debug(ex.key + " result=" + body)
	return body, nil
}
