package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Collector records dispatcher activity. A nil *Collector records nothing.
type Collector struct {
	// Requests tracks logical dispatches by method and outcome
	Requests *prometheus.CounterVec

	// Attempts tracks network round-trips by method
	Attempts *prometheus.CounterVec

	// Retries tracks retried attempts by method and the status that caused them
	Retries *prometheus.CounterVec

	// Failures tracks terminal failures by method and cause
	Failures *prometheus.CounterVec

	// Latency tracks dispatch duration including backoff waits
	Latency *prometheus.HistogramVec

	// InFlight tracks dispatches currently running
	InFlight prometheus.Gauge
}

// New registers the collector's metrics with reg
func New(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		Requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ubeu_client_requests_total",
				Help: "Total number of dispatched requests",
			},
			[]string{"method", "outcome"},
		),
		Attempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ubeu_client_attempts_total",
				Help: "Total number of HTTP attempts",
			},
			[]string{"method"},
		),
		Retries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ubeu_client_retries_total",
				Help: "Total number of retried attempts",
			},
			[]string{"method", "status"},
		),
		Failures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ubeu_client_failures_total",
				Help: "Total number of terminal request failures",
			},
			[]string{"method", "cause"},
		),
		Latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ubeu_client_request_duration_seconds",
				Help:    "Request duration in seconds, retries included",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		InFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "ubeu_client_requests_in_flight",
				Help: "Number of requests currently being dispatched",
			},
		),
	}
}

// Started marks the beginning of a dispatch
func (c *Collector) Started() {
	if c == nil {
		return
	}
	c.InFlight.Inc()
}

// Attempt records one network round-trip
func (c *Collector) Attempt(method string) {
	if c == nil {
		return
	}
	c.Attempts.WithLabelValues(method).Inc()
}

// Retry records a retry caused by status (0 when no response was received)
func (c *Collector) Retry(method string, status int) {
	if c == nil {
		return
	}
	label := "network"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	c.Retries.WithLabelValues(method, label).Inc()
}

// Finished records the end of a dispatch. cause is empty on success.
func (c *Collector) Finished(method, cause string, duration time.Duration) {
	if c == nil {
		return
	}
	c.InFlight.Dec()
	c.Latency.WithLabelValues(method).Observe(duration.Seconds())

	if cause == "" {
		c.Requests.WithLabelValues(method, OutcomeSuccess).Inc()
		return
	}
	c.Requests.WithLabelValues(method, OutcomeFailure).Inc()
	c.Failures.WithLabelValues(method, cause).Inc()
}
