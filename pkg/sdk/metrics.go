package sdk

import (
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metric outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics holds the SDK's prometheus collectors. A nil *Metrics records
// nothing.
type Metrics struct {
	requests  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	grants    *prometheus.CounterVec
	refreshes *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "marketplace_sdk",
			Name:      "requests_total",
			Help:      "HTTP requests sent, by method and response status",
		}, []string{"method", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "marketplace_sdk",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		grants: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "marketplace_sdk",
			Name:      "token_grants_total",
			Help:      "Token grants requested, by grant type and outcome",
		}, []string{"grant", "outcome"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "marketplace_sdk",
			Name:      "token_refresh_total",
			Help:      "Refresh-and-replay attempts, by outcome",
		}, []string{"outcome"}),
	}

	for _, c := range []prometheus.Collector{m.requests, m.duration, m.grants, m.refreshes} {
		err := reg.Register(c)
		if err != nil {
			return nil, fmt.Errorf("registering metrics: %w", err)
		}
	}

	return m, nil
}

// ObserveRequest counts one HTTP exchange. Status 0 means a transport error.
func (m *Metrics) ObserveRequest(method string, status int, latency time.Duration) {
	if m == nil {
		return
	}

	m.requests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(method).Observe(latency.Seconds())
}

// ObserveGrant counts one token grant.
func (m *Metrics) ObserveGrant(grant string, err error) {
	if m == nil {
		return
	}

	m.grants.WithLabelValues(grant, outcome(err)).Inc()
}

// ObserveRefresh counts one refresh-and-replay attempt.
func (m *Metrics) ObserveRefresh(err error) {
	if m == nil {
		return
	}

	m.refreshes.WithLabelValues(outcome(err)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return OutcomeFailure
	}

	return OutcomeSuccess
}
