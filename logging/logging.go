package logging

import (
	"github.com/tarmac-project/httpcall/sdk"
)

const capabilityName = "logging"

// Level orders log severities; a client drops messages below its configured level.
type Level int

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the host function name used for the level.
func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "Trace"
	case LevelDebug:
		return "Debug"
	case LevelInfo:
		return "Info"
	case LevelWarn:
		return "Warn"
	case LevelError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Client exposes convenience helpers for sending log entries to the host runtime.
type Client interface {
	Info(message string)
	Warn(message string)
	Error(message string)
	Debug(message string)
	Trace(message string)
}

// Config controls how a Client instance interacts with the host runtime.
type Config struct {
	// SDKConfig provides the runtime namespace used for host calls.
	SDKConfig sdk.RuntimeConfig

	// HostCall overrides the waPC host function used for logging operations.
	HostCall sdk.HostCall

	// Level is the minimum level forwarded to the host. The zero value forwards everything.
	Level Level
}

// client implements Client using the configured host call entrypoint.
type client struct {
	runtime  sdk.RuntimeConfig
	hostCall sdk.HostCall
	level    Level
}

// New creates a Client that emits logs through the configured host capability.
func New(cfg Config) (Client, error) {
	return &client{
		runtime:  cfg.SDKConfig.WithDefaults(),
		hostCall: sdk.ResolveHostCall(cfg.HostCall),
		level:    cfg.Level,
	}, nil
}

func (c *client) Info(message string)  { c.log(LevelInfo, message) }
func (c *client) Warn(message string)  { c.log(LevelWarn, message) }
func (c *client) Error(message string) { c.log(LevelError, message) }
func (c *client) Debug(message string) { c.log(LevelDebug, message) }
func (c *client) Trace(message string) { c.log(LevelTrace, message) }

// log is best-effort; a failing host call never reaches the caller.
func (c *client) log(lvl Level, message string) {
	if lvl < c.level {
		return
	}
	_, _ = c.hostCall(c.runtime.Namespace, capabilityName, lvl.String(), []byte(message))
}

type discard struct{}

func (discard) Info(string)  {}
func (discard) Warn(string)  {}
func (discard) Error(string) {}
func (discard) Debug(string) {}
func (discard) Trace(string) {}

// Discard returns a Client that drops every message.
func Discard() Client { return discard{} }
