package hostmock

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrUnexpectedNamespace is returned when the namespace is not as expected.
	ErrUnexpectedNamespace = errors.New("unexpected namespace")

	// ErrUnexpectedCapability is returned when the capability is not as expected.
	ErrUnexpectedCapability = errors.New("unexpected capability")

	// ErrUnexpectedFunction is returned when the function is not as expected.
	ErrUnexpectedFunction = errors.New("unexpected function")

	// ErrOperationFailed is returned when Fail is set without a custom error.
	ErrOperationFailed = errors.New("operation failed")

	// ErrNoRoute is returned by a Router when no mock is registered for a capability/function pair.
	ErrNoRoute = errors.New("no mock registered for route")
)

// Call records a single host call observed by a Mock or Router.
type Call struct {
	Namespace  string
	Capability string
	Function   string
	Payload    []byte
}

// Mock simulates a host call interface with validation and configurable responses.
type Mock struct {
	// ExpectedNamespace defines the namespace expected in the host call.
	ExpectedNamespace string

	// ExpectedCapability defines the capability expected in the host call.
	ExpectedCapability string

	// ExpectedFunction defines the function name expected in the host call.
	ExpectedFunction string

	// Error is the error to return if the mock is configured to fail.
	Error error

	// PayloadValidator validates the payload passed to the host call.
	PayloadValidator func([]byte) error

	// Response defines the response to return for the host call.
	Response func() []byte

	// Fail indicates whether the mock should return an error.
	Fail bool

	mu    sync.Mutex
	calls []Call
}

// Config represents the configuration for creating a Mock instance.
type Config struct {
	// ExpectedNamespace defines the namespace expected in the host call.
	ExpectedNamespace string

	// ExpectedCapability defines the capability expected in the host call.
	ExpectedCapability string

	// ExpectedFunction defines the function name expected in the host call.
	ExpectedFunction string

	// Error is the error to return if the mock is configured to fail.
	Error error

	// PayloadValidator validates the payload passed to the host call.
	PayloadValidator func([]byte) error

	// Response defines the response to return for the host call.
	Response func() []byte

	// Fail indicates whether the mock should return an error.
	Fail bool
}

// New creates a new instance of the Mock based on the provided Config.
func New(config Config) (*Mock, error) {
	return &Mock{
		ExpectedNamespace:  config.ExpectedNamespace,
		ExpectedCapability: config.ExpectedCapability,
		ExpectedFunction:   config.ExpectedFunction,
		Error:              config.Error,
		Fail:               config.Fail,
		PayloadValidator:   config.PayloadValidator,
		Response:           config.Response,
	}, nil
}

// HostCall simulates a host call, validating inputs and returning a response or error.
// It is safe for concurrent use; every invocation is recorded before validation.
func (m *Mock) HostCall(namespace, capability, function string, payload []byte) ([]byte, error) {
	m.record(Call{
		Namespace:  namespace,
		Capability: capability,
		Function:   function,
		Payload:    append([]byte(nil), payload...),
	})

	if m.Fail && m.Error != nil {
		return nil, m.Error
	}
	if m.Fail {
		return nil, ErrOperationFailed
	}

	// Empty expectations act as wildcards.
	if m.ExpectedNamespace != "" && m.ExpectedNamespace != namespace {
		return nil, fmt.Errorf(
			"%w: expected namespace %s, got %s",
			ErrUnexpectedNamespace,
			m.ExpectedNamespace,
			namespace,
		)
	}

	if m.ExpectedCapability != "" && m.ExpectedCapability != capability {
		return nil, fmt.Errorf(
			"%w: expected capability %s, got %s",
			ErrUnexpectedCapability,
			m.ExpectedCapability,
			capability,
		)
	}

	if m.ExpectedFunction != "" && m.ExpectedFunction != function {
		return nil, fmt.Errorf("%w: expected function %s, got %s", ErrUnexpectedFunction, m.ExpectedFunction, function)
	}

	if m.PayloadValidator != nil {
		if err := m.PayloadValidator(payload); err != nil {
			return nil, err
		}
	}

	if m.Response != nil {
		return m.Response(), nil
	}

	return nil, nil
}

// Calls returns a snapshot of the host calls observed so far.
func (m *Mock) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

func (m *Mock) record(c Call) {
	m.mu.Lock()
	m.calls = append(m.calls, c)
	m.mu.Unlock()
}

// Router dispatches host calls to per-capability mocks so a component that
// talks to several capabilities can be tested against a single HostCall.
type Router struct {
	mu     sync.Mutex
	routes map[string]*Mock
	calls  []Call
}

// NewRouter returns an empty Router.
func NewRouter() *Router {
	return &Router{routes: make(map[string]*Mock)}
}

// Handle registers a mock for capability and function. An empty function
// matches every function of the capability.
func (r *Router) Handle(capability, function string, cfg Config) *Mock {
	if cfg.ExpectedCapability == "" {
		cfg.ExpectedCapability = capability
	}
	if cfg.ExpectedFunction == "" {
		cfg.ExpectedFunction = function
	}
	m, _ := New(cfg)

	r.mu.Lock()
	r.routes[capability+"/"+function] = m
	r.mu.Unlock()
	return m
}

// HostCall routes to the registered mock, preferring an exact function match.
func (r *Router) HostCall(namespace, capability, function string, payload []byte) ([]byte, error) {
	r.mu.Lock()
	r.calls = append(r.calls, Call{
		Namespace:  namespace,
		Capability: capability,
		Function:   function,
		Payload:    append([]byte(nil), payload...),
	})
	m, ok := r.routes[capability+"/"+function]
	if !ok {
		m, ok = r.routes[capability+"/"]
	}
	r.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrNoRoute, capability, function)
	}
	return m.HostCall(namespace, capability, function, payload)
}

// Calls returns a snapshot of every call routed so far.
func (r *Router) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Count returns how many routed calls targeted capability (and function, when non-empty).
func (r *Router) Count(capability, function string) int {
	n := 0
	for _, c := range r.Calls() {
		if c.Capability == capability && (function == "" || c.Function == function) {
			n++
		}
	}
	return n
}
