package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the progression module.
type Metrics struct {
	StageAdvances      *prometheus.CounterVec
	FinanceHandoffs    prometheus.Counter
	BlockedTransitions *prometheus.CounterVec
}

// New creates and registers the progression metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		StageAdvances: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "recouvro_stage_advances_total",
			Help: "Total number of stage transitions, by target stage",
		}, []string{"target"}),
		FinanceHandoffs: promauto.NewCounter(prometheus.CounterOpts{
			Name: "recouvro_finance_handoffs_total",
			Help: "Total number of dossiers handed to the finance department",
		}),
		BlockedTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "recouvro_blocked_transitions_total",
			Help: "Transition attempts rejected by a precondition or stage gate, by target",
		}, []string{"target"}),
	}
}
