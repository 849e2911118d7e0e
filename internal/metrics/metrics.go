package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder collects tool call and cache counters.
type Recorder struct {
	toolCalls    *prometheus.CounterVec
	toolDuration *prometheus.HistogramVec
	cacheHits    *prometheus.CounterVec
	cacheMisses  *prometheus.CounterVec
}

// NewRecorder creates the collectors and registers them with reg.
// A nil reg falls back to the default registerer.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	r := &Recorder{
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aavelens",
			Subsystem: "tools",
			Name:      "calls_total",
			Help:      "Total tool invocations partitioned by tool and outcome.",
		}, []string{"tool", "status"}),
		toolDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "aavelens",
			Subsystem: "tools",
			Name:      "call_duration_seconds",
			Help:      "Wall time spent serving a tool invocation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"tool"}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aavelens",
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Cache lookups answered with a fresh entry.",
		}, []string{"kind"}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aavelens",
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Cache lookups that found no entry or an expired one.",
		}, []string{"kind"}),
	}
	reg.MustRegister(r.toolCalls, r.toolDuration, r.cacheHits, r.cacheMisses)
	return r
}

// ObserveToolCall records one finished invocation.
func (r *Recorder) ObserveToolCall(tool string, failed bool, elapsed time.Duration) {
	if r == nil {
		return
	}
	status := "ok"
	if failed {
		status = "error"
	}
	r.toolCalls.WithLabelValues(tool, status).Inc()
	r.toolDuration.WithLabelValues(tool).Observe(elapsed.Seconds())
}

func (r *Recorder) CacheHit(key string) {
	if r == nil {
		return
	}
	r.cacheHits.WithLabelValues(keyKind(key)).Inc()
}

func (r *Recorder) CacheMiss(key string) {
	if r == nil {
		return
	}
	r.cacheMisses.WithLabelValues(keyKind(key)).Inc()
}

// keyKind keeps label cardinality bounded by dropping everything after the first underscore.
func keyKind(key string) string {
	if i := strings.IndexByte(key, '_'); i > 0 {
		return key[:i]
	}
	return key
}
