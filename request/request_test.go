package request

import (
	"errors"
	"net/url"
	"reflect"
	"strings"
	"testing"
)

func TestParseMethod(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"GET", "post", "Put", "DELETE", "patch"} {
		m, err := ParseMethod(s)
		if err != nil {
			t.Fatalf("ParseMethod(%q): %v", s, err)
		}
		if string(m) != strings.ToUpper(s) {
			t.Fatalf("ParseMethod(%q) = %q", s, m)
		}
	}

	for _, s := range []string{"", "HEAD", "OPTIONS", "FETCH"} {
		if _, err := ParseMethod(s); !errors.Is(err, ErrInvalidMethod) {
			t.Fatalf("ParseMethod(%q): expected ErrInvalidMethod, got %v", s, err)
		}
	}
}

func TestBuildHeaders(t *testing.T) {
	t.Parallel()

	tt := []struct {
		name    string
		headers map[string]string
		method  Method
		want    map[string]string
	}{
		{
			name:    "GET passes through",
			headers: map[string]string{"Accept": "text/html"},
			method:  GET,
			want:    map[string]string{"Accept": "text/html"},
		},
		{
			name:   "GET nil headers",
			method: GET,
			want:   map[string]string{},
		},
		{
			name:    "POST default content type",
			headers: map[string]string{"Accept": "*/*"},
			method:  POST,
			want:    map[string]string{"Accept": "*/*", "Content-Type": ContentTypeForm},
		},
		{
			name:    "POST keeps caller content type",
			headers: map[string]string{"Content-Type": "application/json"},
			method:  POST,
			want:    map[string]string{"Content-Type": "application/json"},
		},
		{
			name:    "POST key match is case-sensitive",
			headers: map[string]string{"content-type": "text/plain"},
			method:  POST,
			want:    map[string]string{"content-type": "text/plain", "Content-Type": ContentTypeForm},
		},
		{
			name:    "PUT passes through",
			headers: map[string]string{"X-Trace": "1"},
			method:  PUT,
			want:    map[string]string{"X-Trace": "1"},
		},
		{
			name:   "PATCH gets no default",
			method: PATCH,
			want:   map[string]string{},
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := BuildHeaders(tc.headers, tc.method)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("BuildHeaders = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestBuildHeadersCopies(t *testing.T) {
	t.Parallel()

	in := map[string]string{"Accept": "*/*"}
	out := BuildHeaders(in, POST)
	out["X-Extra"] = "1"

	if len(in) != 1 {
		t.Fatalf("caller headers were mutated: %v", in)
	}
}

func TestEncodeContent(t *testing.T) {
	t.Parallel()

	tt := []struct {
		name    string
		payload Payload
		want    string
	}{
		{"raw", Raw(`{"a":1}`), `{"a":1}`},
		{"raw untouched", Raw("a b&c"), "a b&c"},
		{"form sorted", Form{"b": "2", "a": "1"}, "a=1&b=2"},
		{"form escaped", Form{"q": "a b", "x": "&="}, "q=a+b&x=%26%3D"},
		{"empty form", Form{}, ""},
		{"nil form", Form(nil), ""},
		{"nil payload", nil, ""},
		{"value int", Value{V: 42}, "42"},
		{"value nil", Value{}, ""},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := EncodeContent(tc.payload); got != tc.want {
				t.Fatalf("EncodeContent = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestEncodeContentRoundTrip(t *testing.T) {
	t.Parallel()

	in := Form{"a": "1", "b": "2", "name": "Zoë & co", "empty": ""}
	encoded := EncodeContent(in)

	if !strings.Contains(encoded, "a=1") || !strings.Contains(encoded, "b=2") {
		t.Fatalf("missing pairs in %q", encoded)
	}
	if EncodeContent(in) != encoded {
		t.Fatal("encoding is not stable")
	}

	decoded, err := url.ParseQuery(encoded)
	if err != nil {
		t.Fatalf("ParseQuery: %v", err)
	}
	got := Form{}
	for k := range decoded {
		got[k] = decoded.Get(k)
	}
	if !reflect.DeepEqual(got, in) {
		t.Fatalf("round trip = %v, want %v", got, in)
	}
}

func TestEncode(t *testing.T) {
	t.Parallel()

	tt := []struct {
		name     string
		method   Method
		uri      string
		payload  Payload
		wantURI  string
		wantBody string
	}{
		{"GET appends to existing query", GET, "/p?x=1", Form{"y": "2"}, "/p?x=1&y=2", ""},
		{"GET leading ampersand kept", GET, "/p?", Form{"y": "2"}, "/p?&y=2", ""},
		{"GET empty payload", GET, "/api?id=5", Form{}, "/api?id=5&", ""},
		{"GET raw payload", GET, "/s?", Raw("q=go"), "/s?&q=go", ""},
		{"POST body", POST, "/submit?", Form{"a": "1"}, "/submit?", "a=1"},
		{"PUT raw body", PUT, "/r/1?", Raw(`{"x":1}`), "/r/1?", `{"x":1}`},
		{"DELETE empty body", DELETE, "/r/1?", nil, "/r/1?", ""},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := Encode(tc.method, tc.uri, nil, tc.payload)
			if got.URI != tc.wantURI {
				t.Errorf("URI = %q, want %q", got.URI, tc.wantURI)
			}
			if got.Body != tc.wantBody {
				t.Errorf("Body = %q, want %q", got.Body, tc.wantBody)
			}
			if got.Method != tc.method {
				t.Errorf("Method = %q, want %q", got.Method, tc.method)
			}
		})
	}

	post := Encode(POST, "/x?", nil, Form{})
	if post.Headers["Content-Type"] != ContentTypeForm {
		t.Fatalf("expected POST default content type, got %v", post.Headers)
	}
}
