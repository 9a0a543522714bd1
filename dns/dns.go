package dns

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"strings"

	"github.com/tarmac-project/httpcall/logging"
	"github.com/tarmac-project/httpcall/sdk"
)

const (
	capabilityName = "dns"
	fnLookup       = "lookup"
)

var (
	// ErrResolution indicates that a host name could not be resolved to an address.
	ErrResolution = errors.New("DNS resolution failed")

	// ErrInvalidHost indicates an empty host name.
	ErrInvalidHost = errors.New("host is invalid")
)

// Cache is a read-only host to IP lookup consulted before the host call.
// kv.Client satisfies it.
type Cache interface {
	Get(key string) ([]byte, error)
}

// Config controls how a Resolver interacts with the host runtime.
type Config struct {
	// SDKConfig provides the runtime namespace used for host calls.
	SDKConfig sdk.RuntimeConfig

	// HostCall overrides the waPC host function used for lookups.
	HostCall sdk.HostCall

	// Logger receives lookup failures. Nil discards them.
	Logger logging.Client

	// Cache, when set, is read before asking the host. It is never written.
	Cache Cache

	// CachePrefix is prepended to the host name to form the cache key.
	CachePrefix string
}

// Resolver turns host names into IP addresses through the host "dns" capability.
type Resolver struct {
	runtime     sdk.RuntimeConfig
	hostCall    sdk.HostCall
	log         logging.Client
	cache       Cache
	cachePrefix string
}

// New creates a Resolver with namespace defaults and optional host-call override.
func New(cfg Config) (*Resolver, error) {
	log := cfg.Logger
	if log == nil {
		log = logging.Discard()
	}

	return &Resolver{
		runtime:     cfg.SDKConfig.WithDefaults(),
		hostCall:    sdk.ResolveHostCall(cfg.HostCall),
		log:         log,
		cache:       cfg.Cache,
		cachePrefix: cfg.CachePrefix,
	}, nil
}

// IsIPv4 reports whether host is a dotted IPv4 literal.
func IsIPv4(host string) bool {
	addr, err := netip.ParseAddr(host)
	return err == nil && addr.Is4()
}

// Resolve returns the IP address for host. IPv4 literals come back unchanged
// without touching the cache or the host. The host lookup blocks until it
// answers or ctx is done. Failures are logged and returned; nothing is retried.
func (r *Resolver) Resolve(ctx context.Context, host string) (string, error) {
	if host == "" {
		return "", ErrInvalidHost
	}
	if IsIPv4(host) {
		return host, nil
	}

	if ip, ok := r.cached(host); ok {
		return ip, nil
	}

	type result struct {
		ip  []byte
		err error
	}
	done := make(chan result, 1)
	go func() {
		ip, err := r.hostCall(r.runtime.Namespace, capabilityName, fnLookup, []byte(host))
		done <- result{ip: ip, err: err}
	}()

	var res result
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res = <-done:
	}

	if res.err != nil {
		r.log.Error("DNS lookup failed, domain=" + host)
		return "", errors.Join(ErrResolution, sdk.ErrHostCall, res.err)
	}

	ip := strings.TrimSpace(string(res.ip))
	if ip == "" {
		r.log.Error("DNS lookup failed, domain=" + host)
		return "", fmt.Errorf("%w: no address for %s", ErrResolution, host)
	}
	if _, err := netip.ParseAddr(ip); err != nil {
		r.log.Error("DNS lookup failed, domain=" + host)
		return "", errors.Join(ErrResolution, sdk.ErrHostResponseInvalid, err)
	}

	return ip, nil
}

func (r *Resolver) cached(host string) (string, bool) {
	if r.cache == nil {
		return "", false
	}

	v, err := r.cache.Get(r.cachePrefix + host)
	if err != nil {
		r.log.Debug("DNS cache miss, domain=" + host + ": " + err.Error())
		return "", false
	}

	ip := strings.TrimSpace(string(v))
	if _, err := netip.ParseAddr(ip); err != nil {
		return "", false
	}
	return ip, true
}
