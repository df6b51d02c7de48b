// Package metrics provides application-level metrics collection backed by
// a private Prometheus registry.
package metrics

import (
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

const namespace = "ethpkg"

// Result labels for provider requests.
const (
	ResultOK       = "ok"
	ResultRPCError = "rpc_error"
	ResultError    = "error"
)

// Metrics holds the donation and provider collectors.
type Metrics struct {
	registry *prometheus.Registry

	donationsTotal   *prometheus.CounterVec
	stageFailures    *prometheus.CounterVec
	providerRequests *prometheus.CounterVec
	providerLatency  *prometheus.HistogramVec
	apiRequests      *prometheus.CounterVec
}

// Global is the process-wide metrics instance.
//
//nolint:gochecknoglobals // Intentional global for metrics access
var Global = New()

// New creates a Metrics instance with its own registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		donationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "donations_total",
			Help:      "Donation attempts by final status.",
		}, []string{"status"}),
		stageFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "donation_failures_total",
			Help:      "Donation attempts that ended before submission, by stage.",
		}, []string{"stage"}),
		providerRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_requests_total",
			Help:      "Raw wallet provider requests by method and result.",
		}, []string{"method", "result"}),
		providerLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_request_duration_seconds",
			Help:      "Time until the provider invoked its callback.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 5, 15, 60, 300},
		}, []string{"method"}),
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Requests to the quote and verification APIs.",
		}, []string{"api", "result"}),
	}

	m.registry.MustRegister(
		m.donationsTotal,
		m.stageFailures,
		m.providerRequests,
		m.providerLatency,
		m.apiRequests,
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordDonation records the final status of a donation attempt.
func (m *Metrics) RecordDonation(status string) {
	m.donationsTotal.WithLabelValues(status).Inc()
}

// RecordStageFailure records the stage a donation attempt ended at.
func (m *Metrics) RecordStageFailure(stage string) {
	m.stageFailures.WithLabelValues(stage).Inc()
}

// RecordProviderRequest records one raw provider request.
func (m *Metrics) RecordProviderRequest(method string, duration time.Duration, result string) {
	m.providerRequests.WithLabelValues(method, result).Inc()
	m.providerLatency.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordAPIRequest records a request to an HTTP collaborator API.
func (m *Metrics) RecordAPIRequest(api string, err error) {
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	m.apiRequests.WithLabelValues(api, result).Inc()
}

// Snapshot is a point-in-time summary of the collected metrics.
type Snapshot struct {
	DonationsTotal         float64
	DonationsSubmitted     float64
	ProviderRequestsTotal  float64
	ProviderRequestErrors  float64
	ProviderLatencySeconds float64
	APIRequestsTotal       float64
	APIRequestErrors       float64
}

// Snapshot gathers the registry into a Snapshot.
func (m *Metrics) Snapshot() Snapshot {
	var s Snapshot

	families, err := m.registry.Gather()
	if err != nil {
		return s
	}

	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range metric.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}

			switch mf.GetName() {
			case namespace + "_donations_total":
				v := metric.GetCounter().GetValue()
				s.DonationsTotal += v
				if labels["status"] == "submitted" {
					s.DonationsSubmitted += v
				}
			case namespace + "_provider_requests_total":
				v := metric.GetCounter().GetValue()
				s.ProviderRequestsTotal += v
				if labels["result"] != ResultOK {
					s.ProviderRequestErrors += v
				}
			case namespace + "_provider_request_duration_seconds":
				s.ProviderLatencySeconds += metric.GetHistogram().GetSampleSum()
			case namespace + "_api_requests_total":
				v := metric.GetCounter().GetValue()
				s.APIRequestsTotal += v
				if labels["result"] != ResultOK {
					s.APIRequestErrors += v
				}
			}
		}
	}
	return s
}

// WriteText writes all metrics in the Prometheus text exposition format.
func (m *Metrics) WriteText(w io.Writer) error {
	families, err := m.registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
