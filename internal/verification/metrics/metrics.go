package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the verification module. All methods
// are safe on a nil receiver.
type Metrics struct {
	// Classified outcomes by method and outcome
	Outcomes *prometheus.CounterVec

	// Provider call latency by provider and method
	ProviderLatency *prometheus.HistogramVec

	// Provider call failures by provider and error category
	ProviderFailures *prometheus.CounterVec

	// Duplicate requests rejected or coalesced by the in-flight guard
	Duplicates *prometheus.CounterVec

	// Badges computed by status
	Badges *prometheus.CounterVec

	// Events that could not be published
	PublishFailures prometheus.Counter
}

// New registers the verification metrics with the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Outcomes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bgv_verification_outcomes_total",
			Help: "Recorded verification attempts by method and classified outcome",
		}, []string{"method", "outcome"}),

		ProviderLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bgv_provider_call_duration_seconds",
			Help:    "Duration of verification provider calls",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"provider", "method"}),

		ProviderFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bgv_provider_failures_total",
			Help: "Provider calls that produced no payload, by error category",
		}, []string{"provider", "category"}),

		Duplicates: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bgv_verification_duplicates_total",
			Help: "Duplicate verification requests by resolution (coalesced, rejected)",
		}, []string{"resolution"}),

		Badges: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bgv_badges_computed_total",
			Help: "Verification badges computed by status",
		}, []string{"status"}),

		PublishFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "bgv_event_publish_failures_total",
			Help: "Attempt-recorded events that failed to publish",
		}),
	}
}

func (m *Metrics) IncOutcome(method, outcome string) {
	if m != nil {
		m.Outcomes.WithLabelValues(method, outcome).Inc()
	}
}

func (m *Metrics) ObserveProviderLatency(provider, method string, d time.Duration) {
	if m != nil {
		m.ProviderLatency.WithLabelValues(provider, method).Observe(d.Seconds())
	}
}

func (m *Metrics) IncProviderFailure(provider, category string) {
	if m != nil {
		m.ProviderFailures.WithLabelValues(provider, category).Inc()
	}
}

func (m *Metrics) IncDuplicate(resolution string) {
	if m != nil {
		m.Duplicates.WithLabelValues(resolution).Inc()
	}
}

func (m *Metrics) IncBadge(status string) {
	if m != nil {
		m.Badges.WithLabelValues(status).Inc()
	}
}

func (m *Metrics) IncPublishFailure() {
	if m != nil {
		m.PublishFailures.Inc()
	}
}
