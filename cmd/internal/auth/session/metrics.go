package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the session lifecycle counters. A nil *Metrics records nothing.
type Metrics struct {
	created            prometheus.Counter
	collisions         prometheus.Counter
	allocationFailures prometheus.Counter
	validations        *prometheus.CounterVec
	destroyed          prometheus.Counter
}

// NewMetrics creates the counters and registers them with reg (nil: unregistered).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		created: f.NewCounter(prometheus.CounterOpts{
			Namespace: "quill", Subsystem: "session", Name: "created_total",
			Help: "Sessions successfully created.",
		}),
		collisions: f.NewCounter(prometheus.CounterOpts{
			Namespace: "quill", Subsystem: "session", Name: "token_collisions_total",
			Help: "Generated session tokens that collided with a stored token.",
		}),
		allocationFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: "quill", Subsystem: "session", Name: "allocation_failures_total",
			Help: "Session creations that exhausted every allocation attempt.",
		}),
		validations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quill", Subsystem: "session", Name: "validations_total",
			Help: "Session validations by result.",
		}, []string{"result"}),
		destroyed: f.NewCounter(prometheus.CounterOpts{
			Namespace: "quill", Subsystem: "session", Name: "destroyed_total",
			Help: "Active sessions destroyed by logout.",
		}),
	}
}

func (m *Metrics) incCreated() {
	if m != nil {
		m.created.Inc()
	}
}

func (m *Metrics) incCollision() {
	if m != nil {
		m.collisions.Inc()
	}
}

func (m *Metrics) incAllocationFailure() {
	if m != nil {
		m.allocationFailures.Inc()
	}
}

func (m *Metrics) incValidation(result string) {
	if m != nil {
		m.validations.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) incDestroyed() {
	if m != nil {
		m.destroyed.Inc()
	}
}
