package kv

import (
	"errors"

	"github.com/tarmac-project/httpcall/sdk"
	proto "github.com/tarmac-project/protobuf-go/sdk/kvstore"
)

const (
	capabilityName = "kvstore"
	fnGet          = "get"
	fnKeys         = "keys"
)

var (
	// ErrInvalidKey indicates an empty key.
	ErrInvalidKey = errors.New("key is invalid")

	// ErrKeyNotFound indicates the host has no value for the key.
	ErrKeyNotFound = errors.New("key not found")

	// ErrMarshalRequest wraps failures while encoding the request payload.
	ErrMarshalRequest = errors.New("failed to marshal request")

	// ErrUnmarshalResponse wraps failures while decoding the host response.
	ErrUnmarshalResponse = errors.New("failed to unmarshal response")
)

// Reader is the read-only view of the host key/value store.
type Reader interface {
	Get(key string) ([]byte, error)
	Keys() ([]string, error)
}

// Config controls how a Client instance interacts with the host runtime.
type Config struct {
	// SDKConfig provides the runtime namespace used for host calls.
	SDKConfig sdk.RuntimeConfig

	// HostCall overrides the waPC host function used for KV operations.
	HostCall sdk.HostCall
}

// Client reads from the host "kvstore" capability.
type Client struct {
	runtime  sdk.RuntimeConfig
	hostCall sdk.HostCall
}

var _ Reader = (*Client)(nil)

// New creates a KV reader with namespace defaults and optional host-call override.
func New(cfg Config) (*Client, error) {
	return &Client{
		runtime:  cfg.SDKConfig.WithDefaults(),
		hostCall: sdk.ResolveHostCall(cfg.HostCall),
	}, nil
}

// Get returns the value stored under key.
func (c *Client) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, ErrInvalidKey
	}

	b, err := (&proto.KVStoreGet{Key: key}).MarshalVT()
	if err != nil {
		return nil, errors.Join(ErrMarshalRequest, err)
	}

	respBytes, callErr := c.hostCall(c.runtime.Namespace, capabilityName, fnGet, b)
	if callErr != nil && len(respBytes) == 0 {
		return nil, errors.Join(sdk.ErrHostCall, callErr)
	}

	var resp proto.KVStoreGetResponse
	if err := resp.UnmarshalVT(respBytes); err != nil {
		return nil, errors.Join(sdk.ErrHostResponseInvalid, ErrUnmarshalResponse, err)
	}

	if resp.GetStatus().GetCode() == sdk.StatusMissing {
		return nil, ErrKeyNotFound
	}
	if err := sdk.CheckStatus(resp.GetStatus(), callErr); err != nil {
		return nil, err
	}

	return resp.GetData(), nil
}

// Keys lists every key in the store.
func (c *Client) Keys() ([]string, error) {
	b, err := (&proto.KVStoreKeys{}).MarshalVT()
	if err != nil {
		return nil, errors.Join(ErrMarshalRequest, err)
	}

	respBytes, callErr := c.hostCall(c.runtime.Namespace, capabilityName, fnKeys, b)
	if callErr != nil && len(respBytes) == 0 {
		return nil, errors.Join(sdk.ErrHostCall, callErr)
	}

	var resp proto.KVStoreKeysResponse
	if err := resp.UnmarshalVT(respBytes); err != nil {
		return nil, errors.Join(sdk.ErrHostResponseInvalid, ErrUnmarshalResponse, err)
	}

	if err := sdk.CheckStatus(resp.GetStatus(), callErr); err != nil {
		return nil, err
	}

	return resp.GetKeys(), nil
}
