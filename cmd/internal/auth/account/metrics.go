package account

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts registration and login outcomes. A nil *Metrics records nothing.
type Metrics struct {
	registrations *prometheus.CounterVec
	logins        *prometheus.CounterVec
	loginDuration prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg (nil: unregistered).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		registrations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quill", Subsystem: "auth", Name: "registrations_total",
			Help: "Registration attempts by result.",
		}, []string{"result"}),
		logins: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quill", Subsystem: "auth", Name: "logins_total",
			Help: "Login attempts by result.",
		}, []string{"result"}),
		loginDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "quill", Subsystem: "auth", Name: "login_duration_seconds",
			Help:    "Time from credential lookup to login outcome.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 0.75, 1, 2.5},
		}),
	}
}

func (m *Metrics) registration(result string) {
	if m != nil {
		m.registrations.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) login(result string, seconds float64) {
	if m != nil {
		m.logins.WithLabelValues(result).Inc()
		m.loginDuration.Observe(seconds)
	}
}
