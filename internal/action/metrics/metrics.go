package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the action module.
type Metrics struct {
	ActionsRecorded *prometheus.CounterVec
	ActionsUpdated  prometheus.Counter
	ActionsDeleted  prometheus.Counter
	AmountRecovered prometheus.Counter
}

// New creates and registers the action metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		ActionsRecorded: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "recouvro_actions_recorded_total",
			Help: "Total number of recovery actions recorded, by seizure type",
		}, []string{"type"}),
		ActionsUpdated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "recouvro_actions_updated_total",
			Help: "Total number of recovery actions edited",
		}),
		ActionsDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "recouvro_actions_deleted_total",
			Help: "Total number of recovery actions deleted",
		}),
		AmountRecovered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "recouvro_recovered_amount_total",
			Help: "Sum of amounts recovered at action creation time",
		}),
	}
}
