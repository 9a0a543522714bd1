package request

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Method is an HTTP verb supported by httpcall.
type Method string

const (
	GET    Method = http.MethodGet
	POST   Method = http.MethodPost
	PUT    Method = http.MethodPut
	DELETE Method = http.MethodDelete
	PATCH  Method = http.MethodPatch
)

// ContentTypeForm is the Content-Type applied to POST requests that do not set one.
const ContentTypeForm = "application/x-www-form-urlencoded"

var (
	// ErrInvalidMethod indicates an HTTP method outside GET, POST, PUT, DELETE and PATCH.
	ErrInvalidMethod = errors.New("invalid HTTP method")
)

// ParseMethod validates s (case-insensitive) and returns the matching Method.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToUpper(s))
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidMethod, s)
	}
	return m, nil
}

// Valid reports whether m is one of the supported verbs.
func (m Method) Valid() bool {
	switch m {
	case GET, POST, PUT, DELETE, PATCH:
		return true
	default:
		return false
	}
}

// Payload is the request content: Raw, Form or Value.
type Payload interface {
	encode() string
}

// Raw is a payload sent exactly as given.
type Raw string

func (r Raw) encode() string { return string(r) }

// Form is a key/value payload, URL-encoded as k=v&k=v in sorted key order.
type Form map[string]string

func (f Form) encode() string {
	if len(f) == 0 {
		return ""
	}
	v := make(url.Values, len(f))
	for k, val := range f {
		v.Set(k, val)
	}
	return v.Encode()
}

// Value wraps any other payload; it is sent as its fmt.Sprint representation.
type Value struct {
	V any
}

func (v Value) encode() string {
	if v.V == nil {
		return ""
	}
	return fmt.Sprint(v.V)
}

// EncodeContent turns a payload into its wire form. A nil payload encodes to "".
func EncodeContent(p Payload) string {
	if p == nil {
		return ""
	}
	return p.encode()
}

// BuildHeaders returns a copy of headers with the method defaults applied:
// POST gains a form Content-Type when none is set; other methods are copied
// unchanged. Keys are matched case-sensitively, as supplied.
func BuildHeaders(headers map[string]string, method Method) map[string]string {
	out := make(map[string]string, len(headers)+1)
	for k, v := range headers {
		out[k] = v
	}
	if method != POST {
		return out
	}
	if _, ok := out["Content-Type"]; !ok {
		out["Content-Type"] = ContentTypeForm
	}
	return out
}

// Encoded is a request ready for the transport. It is built once per call
// and not modified afterwards.
type Encoded struct {
	Method  Method
	URI     string
	Body    string
	Headers map[string]string
}

// Encode builds the wire form of a request. GET content is appended to uri
// as uri + "&" + content, whatever uri already holds, and the body stays
// empty; other methods carry the content as the body with uri untouched.
func Encode(method Method, uri string, headers map[string]string, payload Payload) Encoded {
	content := EncodeContent(payload)
	enc := Encoded{
		Method:  method,
		URI:     uri,
		Headers: BuildHeaders(headers, method),
	}
	if method == GET {
		enc.URI = uri + "&" + content
		return enc
	}
	enc.Body = content
	return enc
}
