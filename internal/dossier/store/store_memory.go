package store

import (
	"context"
	"sync"

	"recouvro/internal/dossier/models"
	id "recouvro/pkg/domain"
	"recouvro/pkg/platform/sentinel"
)

// InMemory is the default dossier store for development and unit tests.
type InMemory struct {
	mu       sync.RWMutex
	dossiers map[id.DossierID]*models.Dossier
}

func NewInMemory() *InMemory {
	return &InMemory{dossiers: make(map[id.DossierID]*models.Dossier)}
}

func (s *InMemory) Create(_ context.Context, dossier *models.Dossier) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.dossiers[dossier.ID]; exists {
		return sentinel.ErrConflict
	}
	clone := *dossier
	s.dossiers[dossier.ID] = &clone
	return nil
}

func (s *InMemory) FindByID(_ context.Context, dossierID id.DossierID) (*models.Dossier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dossier, ok := s.dossiers[dossierID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *dossier
	return &clone, nil
}

func (s *InMemory) Execute(_ context.Context, dossierID id.DossierID,
	validate func(*models.Dossier) error,
	mutate func(*models.Dossier)) (*models.Dossier, error) {

	s.mu.Lock()
	defer s.mu.Unlock()

	dossier, ok := s.dossiers[dossierID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}

	// Validate against a copy so a failed validation leaves no trace.
	candidate := *dossier
	if err := validate(&candidate); err != nil {
		return nil, err
	}
	mutate(&candidate)
	s.dossiers[dossierID] = &candidate

	clone := candidate
	return &clone, nil
}
