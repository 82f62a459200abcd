package metrics

import "github.com/prometheus/client_golang/prometheus"

// SessionMetrics observes the in-memory session store.
type SessionMetrics struct {
	Active  prometheus.Gauge
	Evicted prometheus.Counter
}

func NewSessionMetrics(reg prometheus.Registerer) *SessionMetrics {
	m := &SessionMetrics{
		Active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sessions",
			Name:      "active",
			Help:      "Number of dashboard sessions currently held in memory.",
		}),
		Evicted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sessions",
			Name:      "evicted_total",
			Help:      "Total number of expired sessions evicted from memory.",
		}),
	}

	reg.MustRegister(m.Active, m.Evicted)
	return m
}

func (m *SessionMetrics) SessionsEvicted(n int) { m.Evicted.Add(float64(n)) }
func (m *SessionMetrics) SessionsActive(n int)  { m.Active.Set(float64(n)) }
