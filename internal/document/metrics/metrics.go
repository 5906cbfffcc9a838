package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the document module.
type Metrics struct {
	DocumentsCreated   *prometheus.CounterVec
	DocumentsCompleted prometheus.Counter
	DocumentsDeleted   prometheus.Counter
	ExpiredCompletions prometheus.Counter
}

// New creates and registers the document metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		DocumentsCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "recouvro_documents_created_total",
			Help: "Total number of legal documents recorded, by type",
		}, []string{"type"}),
		DocumentsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "recouvro_documents_completed_total",
			Help: "Total number of legal documents completed before their deadline",
		}),
		DocumentsDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "recouvro_documents_deleted_total",
			Help: "Total number of legal documents deleted",
		}),
		ExpiredCompletions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "recouvro_documents_expired_completion_attempts_total",
			Help: "Completion attempts rejected because the statutory deadline had passed",
		}),
	}
}
