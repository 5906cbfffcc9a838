// Package store persists recovery actions.
package store

import (
	"context"

	"recouvro/internal/action/models"
	id "recouvro/pkg/domain"
)

// Store is the recovery-action ledger persistence contract.
type Store interface {
	Create(ctx context.Context, action *models.RecoveryAction) error
	FindByID(ctx context.Context, actionID id.ActionID) (*models.RecoveryAction, error)
	ListByDossier(ctx context.Context, dossierID id.DossierID) ([]*models.RecoveryAction, error)
	CountByDossier(ctx context.Context, dossierID id.DossierID) (int, error)
	// SumByDossier totals the recovered amounts for a dossier, optionally
	// excluding one action. Pass a nil exclude to sum everything.
	SumByDossier(ctx context.Context, dossierID id.DossierID, exclude *id.ActionID) (float64, error)
	Update(ctx context.Context, action *models.RecoveryAction) error
	Delete(ctx context.Context, actionID id.ActionID) error
}
