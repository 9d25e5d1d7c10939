package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Request outcome labels.
const (
	OutcomeOK      = "ok"
	OutcomeHTTP    = "http_error"
	OutcomeNetwork = "network_error"
	OutcomeTimeout = "timeout"
	OutcomeConfig  = "config_error"
	OutcomeStorage = "storage_error"
)

type Metrics struct {
	Requests        *prometheus.CounterVec
	RequestDuration prometheus.Histogram
	CacheFallbacks  prometheus.Counter
}

var (
	once   sync.Once
	global *Metrics
)

func Global() *Metrics {
	once.Do(func() {
		global = &Metrics{
			Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "aiknvm",
				Name:      "api_requests_total",
				Help:      "Total backend requests by outcome",
			}, []string{"outcome"}),
			RequestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
				Namespace: "aiknvm",
				Name:      "api_request_duration_seconds",
				Help:      "Backend request latency",
				Buckets:   prometheus.DefBuckets,
			}),
			CacheFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "aiknvm",
				Name:      "cache_fallbacks_total",
				Help:      "Reads served from the offline cache after a network failure",
			}),
		}
		prometheus.MustRegister(global.Requests, global.RequestDuration, global.CacheFallbacks)
	})
	return global
}

func (m *Metrics) ObserveRequest(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(outcome).Inc()
	m.RequestDuration.Observe(elapsed.Seconds())
}
