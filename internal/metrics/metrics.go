// internal/metrics/metrics.go
// Client-side request and reconciliation metrics

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors the SDK records into. A nil *Metrics is valid and
// records nothing, so services never need to branch on whether metrics are enabled.
type Metrics struct {
	requestsTotal     *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	optimisticReverts *prometheus.CounterVec
}

// New builds the collectors and registers them on reg. A nil registerer returns nil.
func New(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		return nil, nil
	}

	m := &Metrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sacavia_client_requests_total",
				Help: "Total number of API requests issued by the client",
			},
			[]string{"route", "method", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sacavia_client_request_duration_seconds",
				Help:    "Latency of API requests issued by the client",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
		optimisticReverts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sacavia_client_optimistic_reverts_total",
				Help: "Optimistic mutations reverted after a failed call",
			},
			[]string{"action"},
		),
	}

	for _, c := range []prometheus.Collector{m.requestsTotal, m.requestDuration, m.optimisticReverts} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// ObserveRequest records one finished request. status 0 means no response arrived.
func (m *Metrics) ObserveRequest(route, method string, status int, took time.Duration) {
	if m == nil {
		return
	}
	label := "network_error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.requestsTotal.WithLabelValues(route, method, label).Inc()
	m.requestDuration.WithLabelValues(route, method).Observe(took.Seconds())
}

// ObserveRevert records an optimistic mutation that had to be rolled back.
func (m *Metrics) ObserveRevert(action string) {
	if m == nil {
		return
	}
	m.optimisticReverts.WithLabelValues(action).Inc()
}
