// Package store persists audiences.
package store

import (
	"context"

	"recouvro/internal/audience/models"
	id "recouvro/pkg/domain"
)

// Store is the audience persistence contract.
type Store interface {
	Create(ctx context.Context, audience *models.Audience) error
	ListByDossier(ctx context.Context, dossierID id.DossierID) ([]*models.Audience, error)
	CountByDossier(ctx context.Context, dossierID id.DossierID) (int, error)
}
