package transport

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/tarmac-project/httpcall/hostmock"
	"github.com/tarmac-project/httpcall/sdk"
	sdkproto "github.com/tarmac-project/protobuf-go/sdk"
	proto "github.com/tarmac-project/protobuf-go/sdk/http"
)

func response(code int32, body string) func() []byte {
	return func() []byte {
		b, _ := (&proto.HTTPClientResponse{
			Status: &sdkproto.Status{Status: "OK", Code: 200},
			Code:   code,
			Body:   []byte(body),
		}).MarshalVT()
		return b
	}
}

// expectRequest checks the fields the host receives.
func expectRequest(method, url string, headers map[string]string, body string) func([]byte) error {
	return func(payload []byte) error {
		var req proto.HTTPClient
		if err := req.UnmarshalVT(payload); err != nil {
			return fmt.Errorf("could not unmarshal payload: %w", err)
		}
		if req.GetMethod() != method {
			return fmt.Errorf("method mismatch: expected %s, got %s", method, req.GetMethod())
		}
		if req.GetUrl() != url {
			return fmt.Errorf("url mismatch: expected %s, got %s", url, req.GetUrl())
		}
		if string(req.GetBody()) != body {
			return fmt.Errorf("body mismatch: expected %q, got %q", body, req.GetBody())
		}
		for k, v := range headers {
			h := req.GetHeaders()[k]
			if h == nil || len(h.GetValues()) != 1 || h.GetValues()[0] != v {
				return fmt.Errorf("header %s mismatch: expected %q, got %v", k, v, h)
			}
		}
		return nil
	}
}

func newDialer(t *testing.T, cfg hostmock.Config) (*HostDialer, *hostmock.Mock) {
	t.Helper()
	m, err := hostmock.New(cfg)
	if err != nil {
		t.Fatalf("hostmock: %v", err)
	}
	d, err := New(Config{SDKConfig: sdk.RuntimeConfig{Namespace: "testing"}, HostCall: m.HostCall})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d, m
}

func TestOpen(t *testing.T) {
	d, _ := newDialer(t, hostmock.Config{})

	tt := []struct {
		name    string
		host    string
		port    int
		wantErr error
	}{
		{"valid", "93.184.216.34", 80, nil},
		{"max port", "10.0.0.1", 65535, nil},
		{"empty host", "", 80, ErrInvalidAddress},
		{"zero port", "10.0.0.1", 0, ErrInvalidAddress},
		{"port too large", "10.0.0.1", 65536, ErrInvalidAddress},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			s, err := d.Open(tc.host, tc.port)
			if !errors.Is(err, tc.wantErr) || (tc.wantErr == nil && err != nil) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			if tc.wantErr == nil && s == nil {
				t.Fatal("expected a session")
			}
		})
	}
}

func TestHostSessionSend(t *testing.T) {
	tt := []struct {
		name    string
		method  string
		headers map[string]string
		body    string
		opts    Options
		uri     string
		wantURL string
		wantHdr map[string]string
	}{
		{
			name:    "GET sets Host from requested name",
			method:  "GET",
			opts:    Options{Timeout: time.Second, HostName: "example.com"},
			uri:     "/api?id=5",
			wantURL: "http://93.184.216.34:80/api?id=5",
			wantHdr: map[string]string{"Host": "example.com"},
		},
		{
			name:    "POST keeps caller headers",
			method:  "POST",
			headers: map[string]string{"Content-Type": "application/x-www-form-urlencoded", "Host": "api.local"},
			body:    "a=1",
			opts:    Options{Scheme: "https", HostName: "example.com"},
			uri:     "/submit?",
			wantURL: "https://93.184.216.34:80/submit?",
			wantHdr: map[string]string{"Content-Type": "application/x-www-form-urlencoded", "Host": "api.local"},
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			d, m := newDialer(t, hostmock.Config{
				ExpectedNamespace:  "testing",
				ExpectedCapability: "httpclient",
				ExpectedFunction:   "call",
				PayloadValidator:   expectRequest(tc.method, tc.wantURL, tc.wantHdr, tc.body),
				Response:           response(200, "OK"),
			})

			s, err := d.Open("93.184.216.34", 80)
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			s.SetHeaders(tc.headers)
			s.Configure(tc.opts)
			s.SetMethod(tc.method)
			s.SetBody(tc.body)

			token, err := s.Send(context.Background(), tc.uri)
			if err != nil {
				t.Fatalf("Send: %v", err)
			}
			if token == 0 {
				t.Error("expected a non-zero token")
			}
			if got := s.Body(); got != "OK" {
				t.Errorf("expected body OK, got %q", got)
			}
			if got := s.(*HostSession).StatusCode(); got != 200 {
				t.Errorf("expected status 200, got %d", got)
			}
			if n := len(m.Calls()); n != 1 {
				t.Errorf("expected 1 host call, got %d", n)
			}
			if err := s.Close(); err != nil {
				t.Errorf("Close: %v", err)
			}
		})
	}
}

func TestHostSessionDeferred(t *testing.T) {
	gate := make(chan struct{})
	d, _ := newDialer(t, hostmock.Config{
		Response: func() []byte {
			<-gate
			return response(200, "late")()
		},
	})

	s, _ := d.Open("10.0.0.1", 8080)
	s.SetDefer(true)
	s.Configure(Options{Timeout: time.Second})

	token, err := s.Send(context.Background(), "/slow?")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if token == 0 {
		t.Fatal("expected a non-zero token")
	}
	if got := s.Body(); got != "" {
		t.Errorf("expected empty body before completion, got %q", got)
	}

	close(gate)
	if err := s.Wait(context.Background()); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if got := s.Body(); got != "late" {
		t.Errorf("expected body late, got %q", got)
	}
}

func TestHostSessionTokensUnique(t *testing.T) {
	d, _ := newDialer(t, hostmock.Config{Response: response(200, "")})

	seen := make(map[Token]bool)
	for i := 0; i < 10; i++ {
		s, _ := d.Open("10.0.0.1", 80)
		s.SetDefer(true)
		token, err := s.Send(context.Background(), "/?")
		if err != nil {
			t.Fatalf("Send: %v", err)
		}
		if seen[token] {
			t.Fatalf("token %d issued twice", token)
		}
		seen[token] = true
		_ = s.Wait(context.Background())
		_ = s.Close()
	}
}

func TestHostSessionTimeout(t *testing.T) {
	gate := make(chan struct{})
	defer close(gate)

	d, _ := newDialer(t, hostmock.Config{
		Response: func() []byte {
			<-gate
			return response(200, "never")()
		},
	})

	t.Run("blocking", func(t *testing.T) {
		s, _ := d.Open("10.0.0.1", 80)
		s.Configure(Options{Timeout: 20 * time.Millisecond})
		_, err := s.Send(context.Background(), "/?")
		if !errors.Is(err, ErrTimeout) {
			t.Fatalf("expected ErrTimeout, got %v", err)
		}
		if !errors.Is(err, ErrTransport) {
			t.Errorf("expected ErrTransport, got %v", err)
		}
	})

	t.Run("deferred measured from send", func(t *testing.T) {
		s, _ := d.Open("10.0.0.1", 80)
		s.SetDefer(true)
		s.Configure(Options{Timeout: 20 * time.Millisecond})
		if _, err := s.Send(context.Background(), "/?"); err != nil {
			t.Fatalf("Send: %v", err)
		}
		time.Sleep(40 * time.Millisecond)
		start := time.Now()
		if err := s.Wait(context.Background()); !errors.Is(err, ErrTimeout) {
			t.Fatalf("expected ErrTimeout, got %v", err)
		}
		if time.Since(start) > 10*time.Millisecond {
			t.Error("expected Wait to fail immediately for an expired deferred request")
		}
	})
}

func TestHostSessionFailures(t *testing.T) {
	tt := []struct {
		name    string
		cfg     hostmock.Config
		wantErr error
	}{
		{
			name:    "host call fails",
			cfg:     hostmock.Config{Fail: true},
			wantErr: sdk.ErrHostCall,
		},
		{
			name:    "invalid response",
			cfg:     hostmock.Config{Response: func() []byte { return []byte{0xff, 0xff} }},
			wantErr: sdk.ErrHostResponseInvalid,
		},
		{
			name: "host error status",
			cfg: hostmock.Config{Response: func() []byte {
				b, _ := (&proto.HTTPClientResponse{Status: &sdkproto.Status{Status: "boom", Code: 500}}).MarshalVT()
				return b
			}},
			wantErr: sdk.ErrHostError,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			d, _ := newDialer(t, tc.cfg)
			s, _ := d.Open("10.0.0.1", 80)

			_, err := s.Send(context.Background(), "/?")
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			if !errors.Is(err, ErrTransport) {
				t.Errorf("expected ErrTransport, got %v", err)
			}
			if got := s.Body(); got != "" {
				t.Errorf("expected empty body, got %q", got)
			}
		})
	}
}

func TestHostSessionLifecycle(t *testing.T) {
	d, _ := newDialer(t, hostmock.Config{Response: response(200, "OK")})

	t.Run("wait before send", func(t *testing.T) {
		s, _ := d.Open("10.0.0.1", 80)
		if err := s.Wait(context.Background()); !errors.Is(err, ErrNotSent) {
			t.Fatalf("expected ErrNotSent, got %v", err)
		}
	})

	t.Run("second send", func(t *testing.T) {
		s, _ := d.Open("10.0.0.1", 80)
		if _, err := s.Send(context.Background(), "/?"); err != nil {
			t.Fatalf("Send: %v", err)
		}
		if _, err := s.Send(context.Background(), "/?"); !errors.Is(err, ErrAlreadySent) {
			t.Fatalf("expected ErrAlreadySent, got %v", err)
		}
	})

	t.Run("send after close", func(t *testing.T) {
		s, _ := d.Open("10.0.0.1", 80)
		_ = s.Close()
		if _, err := s.Send(context.Background(), "/?"); !errors.Is(err, ErrClosed) {
			t.Fatalf("expected ErrClosed, got %v", err)
		}
	})

	t.Run("double close", func(t *testing.T) {
		s, _ := d.Open("10.0.0.1", 80)
		if err := s.Close(); err != nil {
			t.Fatalf("first Close: %v", err)
		}
		if err := s.Close(); !errors.Is(err, ErrClosed) {
			t.Fatalf("expected ErrClosed, got %v", err)
		}
	})
}
