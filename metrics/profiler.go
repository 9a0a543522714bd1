package metrics

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Profiler brackets a keyed operation with Start and End. Overlapping
// operations under the same key are matched first-in, first-out. End
// without a matching Start is ignored.
type Profiler interface {
	Start(key string)
	End(key string)
}

// Clock returns the current time. time.Now carries a monotonic reading,
// which is what elapsed-time math relies on.
type Clock func() time.Time

// spans tracks open Start calls per key.
type spans struct {
	mu   sync.Mutex
	now  Clock
	open map[string][]time.Time
}

func newSpans(now Clock) *spans {
	if now == nil {
		now = time.Now
	}
	return &spans{now: now, open: make(map[string][]time.Time)}
}

func (s *spans) start(key string) {
	t := s.now()
	s.mu.Lock()
	s.open[key] = append(s.open[key], t)
	s.mu.Unlock()
}

func (s *spans) end(key string) (time.Duration, bool) {
	t := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	starts := s.open[key]
	if len(starts) == 0 {
		return 0, false
	}
	begin := starts[0]
	if len(starts) == 1 {
		delete(s.open, key)
	} else {
		s.open[key] = starts[1:]
	}
	return t.Sub(begin), true
}

func (s *spans) pending(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.open[key])
}

// MetricName turns a profiling key such as "GET.http://example.com/api?id=5"
// into a metric name accepted by the host, prefixed with prefix.
func MetricName(prefix, key string) string {
	var b strings.Builder
	b.Grow(len(prefix) + len(key) + 1)
	b.WriteString(prefix)
	if prefix != "" && key != "" {
		b.WriteByte('_')
	}
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == ':':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "profile"
	}
	return b.String()
}

// HostProfiler reports each finished span as a histogram observation, in
// seconds, on the host metrics capability.
type HostProfiler struct {
	metrics *HostMetrics
	prefix  string
	spans   *spans

	mu         sync.Mutex
	histograms map[string]*Histogram
}

// NewProfiler returns a host-backed Profiler whose histogram names start with prefix.
func (c *HostMetrics) NewProfiler(prefix string, now Clock) *HostProfiler {
	return &HostProfiler{
		metrics:    c,
		prefix:     prefix,
		spans:      newSpans(now),
		histograms: make(map[string]*Histogram),
	}
}

// Start opens a span for key.
func (p *HostProfiler) Start(key string) { p.spans.start(key) }

// End closes the oldest open span for key and observes its duration.
func (p *HostProfiler) End(key string) {
	d, ok := p.spans.end(key)
	if !ok {
		return
	}
	h := p.histogram(key)
	if h == nil {
		return
	}
	h.Observe(d.Seconds())
}

func (p *HostProfiler) histogram(key string) *Histogram {
	p.mu.Lock()
	defer p.mu.Unlock()
	if h, ok := p.histograms[key]; ok {
		return h
	}
	h, err := p.metrics.NewHistogram(MetricName(p.prefix, key))
	if err != nil {
		return nil
	}
	p.histograms[key] = h
	return h
}

const (
	recorderMin     = 1                 // 1µs
	recorderMax     = 10 * 60 * 1000000 // 10m in µs
	recorderSigFigs = 3
)

// Recorder is an in-process Profiler that keeps an HDR histogram of span
// durations per key. It is meant for native builds and tests where no host
// metrics capability exists.
type Recorder struct {
	spans *spans

	mu    sync.Mutex
	hists map[string]*hdrhistogram.Histogram
}

// NewRecorder returns an empty Recorder. A nil clock uses time.Now.
func NewRecorder(now Clock) *Recorder {
	return &Recorder{
		spans: newSpans(now),
		hists: make(map[string]*hdrhistogram.Histogram),
	}
}

// Start opens a span for key.
func (r *Recorder) Start(key string) { r.spans.start(key) }

// End closes the oldest open span for key and records its duration.
func (r *Recorder) End(key string) {
	d, ok := r.spans.end(key)
	if !ok {
		return
	}

	us := d.Microseconds()
	if us < recorderMin {
		us = recorderMin
	}
	if us > recorderMax {
		us = recorderMax
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.hists[key]
	if !ok {
		h = hdrhistogram.New(recorderMin, recorderMax, recorderSigFigs)
		r.hists[key] = h
	}
	_ = h.RecordValue(us)
}

// Count returns the number of finished spans recorded for key.
func (r *Recorder) Count(key string) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.hists[key]; ok {
		return h.TotalCount()
	}
	return 0
}

// Pending returns the number of spans started for key but not yet ended.
func (r *Recorder) Pending(key string) int { return r.spans.pending(key) }

// Quantile returns the duration at quantile q (0-100) for key.
func (r *Recorder) Quantile(key string, q float64) time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.hists[key]; ok {
		return time.Duration(h.ValueAtQuantile(q)) * time.Microsecond
	}
	return 0
}

// Keys returns the keys with at least one finished span, sorted.
func (r *Recorder) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]string, 0, len(r.hists))
	for k := range r.hists {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var (
	_ Profiler = (*HostProfiler)(nil)
	_ Profiler = (*Recorder)(nil)
)
