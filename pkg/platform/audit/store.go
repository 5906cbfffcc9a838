package audit

import (
	"context"

	id "recouvro/pkg/domain"
)

// Store is the append-only persistence boundary for audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByDossier(ctx context.Context, dossierID id.DossierID) ([]Event, error)
}
