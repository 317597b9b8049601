package observability

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus counters for the HTTP surface and the
// expiration sweep.
type Metrics struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	errorsTotal      *prometheus.CounterVec
	sweepRunsTotal   prometheus.Counter
	sweepRenewed     prometheus.Counter
	sweepExpired     prometheus.Counter
	sweepRecordFails prometheus.Counter
}

// NewMetrics registers collectors on the given registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests processed, by path, method and status.",
		}, []string{"path", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"path", "method"}),
		errorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_request_errors_total",
			Help: "Failed HTTP requests, by path, method and error code.",
		}, []string{"path", "method", "code"}),
		sweepRunsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "expiration_sweep_runs_total",
			Help: "Completed expiration sweep passes.",
		}),
		sweepRenewed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "expiration_sweep_renewed_total",
			Help: "Subscriptions auto-renewed by the sweep.",
		}),
		sweepExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "expiration_sweep_expired_total",
			Help: "Subscriptions expired by the sweep.",
		}),
		sweepRecordFails: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "expiration_sweep_record_failures_total",
			Help: "Individual subscription updates that failed during a sweep.",
		}),
	}

	reg.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.errorsTotal,
		m.sweepRunsTotal,
		m.sweepRenewed,
		m.sweepExpired,
		m.sweepRecordFails,
	)
	return m
}

// RecordRequest increments counters for a completed request.
func (m *Metrics) RecordRequest(path, method string, status int, seconds float64) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(path, method).Observe(seconds)
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errorsTotal.WithLabelValues(path, method, code).Inc()
}

// RecordSweep records the outcome of one sweep pass.
func (m *Metrics) RecordSweep(renewed, expired, failed int) {
	if m == nil {
		return
	}
	m.sweepRunsTotal.Inc()
	m.sweepRenewed.Add(float64(renewed))
	m.sweepExpired.Add(float64(expired))
	m.sweepRecordFails.Add(float64(failed))
}
