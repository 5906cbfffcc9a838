// Package store persists dossiers. Implementations return sentinel errors;
// services translate them into domain errors.
package store

import (
	"context"

	"recouvro/internal/dossier/models"
	id "recouvro/pkg/domain"
)

// Store is the persistence boundary for dossiers. The core performs no
// locking itself; Execute is the store's atomic validate-then-mutate hook
// (mutex in memory, SELECT ... FOR UPDATE in PostgreSQL) and is the only
// write path that may assume it does not race another writer.
type Store interface {
	Create(ctx context.Context, dossier *models.Dossier) error
	FindByID(ctx context.Context, dossierID id.DossierID) (*models.Dossier, error)
	// Execute loads the dossier, runs validate, and persists the result of
	// mutate while holding the store's lock. The updated dossier is returned.
	Execute(ctx context.Context, dossierID id.DossierID,
		validate func(*models.Dossier) error,
		mutate func(*models.Dossier)) (*models.Dossier, error)
}
