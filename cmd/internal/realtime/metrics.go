package realtime

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks feed fan-out. A nil *Metrics records nothing.
type Metrics struct {
	clients   prometheus.Gauge
	published *prometheus.CounterVec
	dropped   prometheus.Counter
}

// NewMetrics registers feed collectors on reg. A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		clients: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "quill", Subsystem: "feed", Name: "clients",
			Help: "Connected feed clients.",
		}),
		published: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quill", Subsystem: "feed", Name: "events_published_total",
			Help: "Events published to the feed by type.",
		}, []string{"type"}),
		dropped: f.NewCounter(prometheus.CounterOpts{
			Namespace: "quill", Subsystem: "feed", Name: "events_dropped_total",
			Help: "Events dropped because a client queue was full.",
		}),
	}
}

func (m *Metrics) setClients(n int) {
	if m != nil {
		m.clients.Set(float64(n))
	}
}

func (m *Metrics) incPublished(typ string) {
	if m != nil {
		m.published.WithLabelValues(typ).Inc()
	}
}

func (m *Metrics) addDropped(n int) {
	if m != nil && n > 0 {
		m.dropped.Add(float64(n))
	}
}
