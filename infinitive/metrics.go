package infinitive

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts what the client does to the Infinitive API; a nil *Metrics is valid and records nothing
type Metrics struct {
	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "infinitive_requests_total",
			Help: "Requests sent to the Infinitive API",
		}, []string{"method", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "infinitive_request_duration_seconds",
			Help:    "Infinitive API request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "infinitive_cache_hits_total",
			Help: "Zone config reads served from the response cache",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "infinitive_cache_misses_total",
			Help: "Zone config reads that went to the Infinitive API",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.requests, m.duration, m.cacheHits, m.cacheMisses)
	}
	return m
}

// code is 0 for transport failures
func (m *Metrics) observe(method string, code int, start time.Time) {
	if m == nil {
		return
	}
	label := "error"
	if code != 0 {
		label = strconv.Itoa(code)
	}
	m.requests.WithLabelValues(method, label).Inc()
	m.duration.WithLabelValues(method).Observe(time.Since(start).Seconds())
}

func (m *Metrics) cache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheHits.Inc()
		return
	}
	m.cacheMisses.Inc()
}
