package mock

import (
	"errors"
	"sort"
	"sync"

	"github.com/tarmac-project/httpcall/kv"
)

const (
	opGet  = "GET"
	opKeys = "KEYS"
)

// Config configures the mock client.
type Config struct {
	// Seed pre-populates the in-memory store.
	Seed map[string][]byte
}

// Call records an operation performed against the mock.
type Call struct {
	Op  string
	Key string
}

// Client implements kv.Reader in memory. It is safe for concurrent use.
type Client struct {
	mu     sync.Mutex
	store  map[string][]byte
	errors map[string]error
	calls  []Call
}

var _ kv.Reader = (*Client)(nil)

// New creates a new mock KV reader.
func New(cfg Config) *Client {
	st := make(map[string][]byte, len(cfg.Seed))
	for k, v := range cfg.Seed {
		st[k] = append([]byte(nil), v...)
	}
	return &Client{
		store:  st,
		errors: make(map[string]error),
	}
}

// FailGet makes Get return err for key.
func (m *Client) FailGet(key string, err error) *Client {
	m.mu.Lock()
	m.errors[opGet+" "+key] = err
	m.mu.Unlock()
	return m
}

// Get implements kv.Reader.
func (m *Client) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, Call{Op: opGet, Key: key})
	if key == "" {
		return nil, kv.ErrInvalidKey
	}
	if err, ok := m.errors[opGet+" "+key]; ok {
		return nil, err
	}
	v, ok := m.store[key]
	if !ok {
		return nil, kv.ErrKeyNotFound
	}
	return append([]byte(nil), v...), nil
}

// Keys implements kv.Reader.
func (m *Client) Keys() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, Call{Op: opKeys})
	keys := make([]string, 0, len(m.store))
	for k := range m.store {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Calls returns a snapshot of recorded operations.
func (m *Client) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// ErrExample is a sentinel error to help tests customize failures.
var ErrExample = errors.New("kv mock example error")
