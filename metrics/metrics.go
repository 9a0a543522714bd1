package metrics

import (
	"errors"
	"regexp"

	"github.com/tarmac-project/httpcall/sdk"
	proto "github.com/tarmac-project/protobuf-go/sdk/metrics"
)

const (
	capabilityName = "metrics"
	fnCounter      = "counter"
	fnGauge        = "gauge"
	fnHistogram    = "histogram"
	actionInc      = "inc"
	actionDec      = "dec"
)

var (
	// ErrInvalidMetricName indicates a metric name that does not match the supported format.
	ErrInvalidMetricName = errors.New("metric name is invalid")

	// metricName is the pattern the host accepts for metric names.
	metricName = regexp.MustCompile(`^[a-zA-Z0-9_:]+$`)
)

// Client creates metric handles. Every handle reports to the host on a
// best-effort basis: emission failures are dropped so that request paths
// never fail because of metrics.
type Client interface {
	NewCounter(name string) (*Counter, error)
	NewGauge(name string) (*Gauge, error)
	NewHistogram(name string) (*Histogram, error)
}

// Config controls how a HostMetrics instance interacts with the host runtime.
type Config struct {
	// SDKConfig provides the runtime namespace used for host calls.
	SDKConfig sdk.RuntimeConfig

	// HostCall overrides the waPC host function used for metrics operations.
	HostCall sdk.HostCall
}

// HostMetrics emits metrics through the host "metrics" capability.
type HostMetrics struct {
	runtime  sdk.RuntimeConfig
	hostCall sdk.HostCall
}

var _ Client = (*HostMetrics)(nil)

// New creates a metrics client with namespace defaults and optional host-call override.
func New(config Config) (*HostMetrics, error) {
	return &HostMetrics{
		runtime:  config.SDKConfig.WithDefaults(),
		hostCall: sdk.ResolveHostCall(config.HostCall),
	}, nil
}

// vtMessage is any generated message that can encode itself.
type vtMessage interface {
	MarshalVT() ([]byte, error)
}

// handle is the part shared by all metric kinds.
type handle struct {
	name string
	host *HostMetrics
}

func (c *HostMetrics) handle(name string) (handle, error) {
	if !metricName.MatchString(name) {
		return handle{}, ErrInvalidMetricName
	}
	return handle{name: name, host: c}, nil
}

func (h handle) emit(fn string, msg vtMessage) {
	payload, err := msg.MarshalVT()
	if err != nil {
		return
	}
	_, _ = h.host.hostCall(h.host.runtime.Namespace, capabilityName, fn, payload)
}

// Counter only goes up.
type Counter struct{ handle }

// Gauge goes up and down.
type Gauge struct{ handle }

// Histogram records observed values.
type Histogram struct{ handle }

// NewCounter returns a handle for the named counter.
func (c *HostMetrics) NewCounter(name string) (*Counter, error) {
	h, err := c.handle(name)
	if err != nil {
		return nil, err
	}
	return &Counter{h}, nil
}

// NewGauge returns a handle for the named gauge.
func (c *HostMetrics) NewGauge(name string) (*Gauge, error) {
	h, err := c.handle(name)
	if err != nil {
		return nil, err
	}
	return &Gauge{h}, nil
}

// NewHistogram returns a handle for the named histogram.
func (c *HostMetrics) NewHistogram(name string) (*Histogram, error) {
	h, err := c.handle(name)
	if err != nil {
		return nil, err
	}
	return &Histogram{h}, nil
}

// Inc adds one to the counter.
func (c *Counter) Inc() { c.emit(fnCounter, &proto.MetricsCounter{Name: c.name}) }

// Inc adds one to the gauge.
func (g *Gauge) Inc() { g.emit(fnGauge, &proto.MetricsGauge{Name: g.name, Action: actionInc}) }

// Dec subtracts one from the gauge.
func (g *Gauge) Dec() { g.emit(fnGauge, &proto.MetricsGauge{Name: g.name, Action: actionDec}) }

// Observe records value in the histogram.
func (h *Histogram) Observe(value float64) {
	h.emit(fnHistogram, &proto.MetricsHistogram{Name: h.name, Value: value})
}
