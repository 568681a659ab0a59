package billing

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Webhook outcomes used as metric labels.
const (
	OutcomeProcessed = "processed"
	OutcomeIgnored   = "ignored"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
)

// Metrics instruments webhook deliveries.
type Metrics struct {
	deliveries *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		deliveries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "resumekit",
				Subsystem: "billing",
				Name:      "webhook_deliveries_total",
				Help:      "Billing webhook deliveries by event type and outcome",
			},
			[]string{"event_type", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "resumekit",
				Subsystem: "billing",
				Name:      "webhook_duration_seconds",
				Help:      "Time spent handling a billing webhook delivery",
				Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"outcome"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.deliveries, m.duration)
	}
	return m
}

func (m *Metrics) observe(eventType, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	if eventType == "" {
		eventType = "unknown"
	}
	m.deliveries.WithLabelValues(eventType, outcome).Inc()
	m.duration.WithLabelValues(outcome).Observe(took.Seconds())
}
