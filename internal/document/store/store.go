// Package store persists legal documents.
package store

import (
	"context"

	"recouvro/internal/document/models"
	id "recouvro/pkg/domain"
)

// Store is the legal-document ledger persistence contract.
type Store interface {
	Create(ctx context.Context, doc *models.LegalDocument) error
	FindByID(ctx context.Context, documentID id.DocumentID) (*models.LegalDocument, error)
	ListByDossier(ctx context.Context, dossierID id.DossierID) ([]*models.LegalDocument, error)
	CountByDossier(ctx context.Context, dossierID id.DossierID) (int, error)
	// Execute loads the document, runs validate, and persists the mutation
	// atomically. Validation failures leave the stored document untouched.
	Execute(ctx context.Context, documentID id.DocumentID,
		validate func(*models.LegalDocument) error,
		mutate func(*models.LegalDocument)) (*models.LegalDocument, error)
	Delete(ctx context.Context, documentID id.DocumentID) error
}
