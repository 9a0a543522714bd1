package endpoint

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/idna"
)

// Scheme is the URL scheme of a request target.
type Scheme string

const (
	HTTP  Scheme = "http"
	HTTPS Scheme = "https"
)

// DefaultPort returns 80 for http and 443 for https.
func (s Scheme) DefaultPort() int {
	if s == HTTPS {
		return 443
	}
	return 80
}

var (
	// ErrMalformedURL indicates a URL without a usable scheme or host.
	ErrMalformedURL = errors.New("malformed URL")
)

// Endpoint is a URL decomposed into the parts needed to open a transport
// session and build the request line.
type Endpoint struct {
	Scheme Scheme
	// Host is the hostname or IP literal, without brackets or port.
	Host string
	// Port is the explicit port, or the scheme default.
	Port int
	// Path is the escaped path, possibly empty.
	Path string
	// Query is the raw query string without the leading '?', possibly empty.
	Query string
}

// URI returns Path + "?" + Query. The '?' is always present, even when the
// query is empty; existing callers depend on this shape.
func (e Endpoint) URI() string {
	return e.Path + "?" + e.Query
}

// Address returns host:port suitable for dialing.
func (e Endpoint) Address() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

// Authority returns the value for a Host header: the host alone when the
// port is the scheme default, otherwise host:port.
func (e Endpoint) Authority() string {
	if e.Port == e.Scheme.DefaultPort() {
		if strings.Contains(e.Host, ":") {
			return "[" + e.Host + "]"
		}
		return e.Host
	}
	return e.Address()
}

// Parse decomposes raw into an Endpoint. It fails with ErrMalformedURL when
// the scheme or host is missing, the scheme is not http(s), or the port is
// out of range.
func Parse(raw string) (Endpoint, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Endpoint{}, errors.Join(ErrMalformedURL, err)
	}

	if u.Scheme == "" {
		return Endpoint{}, fmt.Errorf("%w: missing scheme in %q", ErrMalformedURL, raw)
	}
	scheme := Scheme(strings.ToLower(u.Scheme))
	if scheme != HTTP && scheme != HTTPS {
		return Endpoint{}, fmt.Errorf("%w: unsupported scheme %q", ErrMalformedURL, u.Scheme)
	}

	host := u.Hostname()
	if host == "" {
		return Endpoint{}, fmt.Errorf("%w: missing host in %q", ErrMalformedURL, raw)
	}
	host, err = toASCII(host)
	if err != nil {
		return Endpoint{}, errors.Join(ErrMalformedURL, err)
	}

	port := scheme.DefaultPort()
	if p := u.Port(); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil || port < 1 || port > 65535 {
			return Endpoint{}, fmt.Errorf("%w: invalid port %q", ErrMalformedURL, p)
		}
	}

	return Endpoint{
		Scheme: scheme,
		Host:   host,
		Port:   port,
		Path:   u.EscapedPath(),
		Query:  u.RawQuery,
	}, nil
}

// toASCII converts internationalised host names to punycode. ASCII hosts
// pass through untouched so IP literals and underscores survive.
func toASCII(host string) (string, error) {
	for i := 0; i < len(host); i++ {
		if host[i] >= utf8.RuneSelf {
			return idna.Lookup.ToASCII(host)
		}
	}
	return host, nil
}
