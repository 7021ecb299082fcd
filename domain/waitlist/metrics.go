package waitlist

import (
	"github.com/prometheus/client_golang/prometheus"
)

type dialogMetrics struct {
	transitions *prometheus.CounterVec
	sessions    prometheus.GaugeFunc
}

// newDialogMetrics registers the dialog collectors on reg. A nil reg (metrics
// disabled) yields collectors that are counted but never exported.
func newDialogMetrics(reg prometheus.Registerer, liveSessions func() int) *dialogMetrics {
	m := &dialogMetrics{
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "waitlist_dialog_transitions_total",
				Help: "Waitlist dialog state transitions by cause and target state.",
			},
			[]string{"cause", "to"},
		),
		sessions: prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "waitlist_dialog_sessions",
				Help: "Live waitlist dialog sessions held in memory.",
			},
			func() float64 {
				if liveSessions == nil {
					return 0
				}
				return float64(liveSessions())
			},
		),
	}

	if reg != nil {
		reg.MustRegister(m.transitions, m.sessions)
	}

	return m
}

func (m *dialogMetrics) observe(t Transition) {
	m.transitions.WithLabelValues(t.Cause, t.To.String()).Inc()
}
