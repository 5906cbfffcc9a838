package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the dossier module.
type Metrics struct {
	DossiersCreated     prometheus.Counter
	DossiersClosed      prometheus.Counter
	DossiersReactivated prometheus.Counter
}

// New creates and registers the dossier metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		DossiersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "recouvro_dossiers_created_total",
			Help: "Total number of dossiers entered into the juridique pipeline",
		}),
		DossiersClosed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "recouvro_dossiers_closed_total",
			Help: "Total number of dossiers closed",
		}),
		DossiersReactivated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "recouvro_dossiers_reactivated_total",
			Help: "Total number of closed dossiers reactivated",
		}),
	}
}
