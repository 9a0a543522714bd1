package sdk

import (
	"errors"
	"time"

	wapc "github.com/wapc/wapc-guest-tinygo"
)

const (
	// DefaultNamespace is used when no explicit namespace is provided.
	DefaultNamespace = "tarmac"

	// DefaultTimeout bounds a request when the caller does not supply a timeout.
	DefaultTimeout = 200 * time.Millisecond
)

var (
	// ErrHandlerNil is returned when the provided function handler is nil.
	ErrHandlerNil = errors.New("function handler cannot be nil")

	// ErrInvalidTimeout is returned when a negative timeout is configured.
	ErrInvalidTimeout = errors.New("timeout cannot be negative")
)

// HostCall is the waPC host function signature shared by every capability
// client: namespace, capability, function, payload.
type HostCall func(string, string, string, []byte) ([]byte, error)

// Config provides configuration options for SDK initialization.
type Config struct {
	// Namespace controls the function namespace to use for host callbacks.
	// If empty, DefaultNamespace is used.
	Namespace string

	// Timeout is the default request timeout handed to capability clients.
	// Zero selects DefaultTimeout.
	Timeout time.Duration

	// Handler is the function registered as the WebAssembly entry point.
	Handler func([]byte) ([]byte, error)
}

// RuntimeConfig carries configuration shared by capability clients.
type RuntimeConfig struct {
	// Namespace is the function namespace used to scope host interactions.
	Namespace string

	// Timeout is the default request timeout. Zero means DefaultTimeout.
	Timeout time.Duration
}

// WithDefaults returns a copy of the runtime config with empty fields filled in.
func (r RuntimeConfig) WithDefaults() RuntimeConfig {
	if r.Namespace == "" {
		r.Namespace = DefaultNamespace
	}
	if r.Timeout <= 0 {
		r.Timeout = DefaultTimeout
	}
	return r
}

// ResolveHostCall returns hc, or the waPC host function when hc is nil.
func ResolveHostCall(hc HostCall) HostCall {
	if hc == nil {
		return wapc.HostCall
	}
	return hc
}

// SDK represents the initialized runtime with a registered waPC handler.
type SDK struct {
	runtime RuntimeConfig
	handler func([]byte) ([]byte, error)
}

// New validates the configuration and registers the handler with waPC.
func New(config Config) (*SDK, error) {
	if config.Handler == nil {
		return nil, ErrHandlerNil
	}
	if config.Timeout < 0 {
		return nil, ErrInvalidTimeout
	}

	cfg := RuntimeConfig{Namespace: config.Namespace, Timeout: config.Timeout}.WithDefaults()

	s := &SDK{
		runtime: cfg,
		handler: config.Handler,
	}

	wapc.RegisterFunction("handler", s.handler)

	return s, nil
}

// Config returns the current runtime configuration snapshot.
func (s *SDK) Config() RuntimeConfig { return s.runtime }
