package store

import (
	"context"
	"sort"
	"sync"

	"recouvro/internal/document/models"
	id "recouvro/pkg/domain"
	"recouvro/pkg/platform/sentinel"
)

// InMemory is the default document store for development and unit tests.
type InMemory struct {
	mu        sync.RWMutex
	documents map[id.DocumentID]*models.LegalDocument
}

func NewInMemory() *InMemory {
	return &InMemory{documents: make(map[id.DocumentID]*models.LegalDocument)}
}

func (s *InMemory) Create(_ context.Context, doc *models.LegalDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.documents[doc.ID]; exists {
		return sentinel.ErrConflict
	}
	clone := *doc
	s.documents[doc.ID] = &clone
	return nil
}

func (s *InMemory) FindByID(_ context.Context, documentID id.DocumentID) (*models.LegalDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[documentID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *doc
	return &clone, nil
}

func (s *InMemory) ListByDossier(_ context.Context, dossierID id.DossierID) ([]*models.LegalDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.LegalDocument
	for _, doc := range s.documents {
		if doc.DossierID == dossierID {
			clone := *doc
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemory) CountByDossier(_ context.Context, dossierID id.DossierID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, doc := range s.documents {
		if doc.DossierID == dossierID {
			count++
		}
	}
	return count, nil
}

func (s *InMemory) Execute(_ context.Context, documentID id.DocumentID,
	validate func(*models.LegalDocument) error,
	mutate func(*models.LegalDocument)) (*models.LegalDocument, error) {

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.documents[documentID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}

	// Validate against a copy so a failed validation leaves no trace.
	candidate := *doc
	if err := validate(&candidate); err != nil {
		return nil, err
	}
	mutate(&candidate)
	s.documents[documentID] = &candidate

	clone := candidate
	return &clone, nil
}

func (s *InMemory) Delete(_ context.Context, documentID id.DocumentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[documentID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.documents, documentID)
	return nil
}
