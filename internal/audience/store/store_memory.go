package store

import (
	"context"
	"sort"
	"sync"

	"recouvro/internal/audience/models"
	id "recouvro/pkg/domain"
	"recouvro/pkg/platform/sentinel"
)

// InMemory is the default audience store for development and unit tests.
type InMemory struct {
	mu        sync.RWMutex
	audiences map[id.AudienceID]*models.Audience
}

func NewInMemory() *InMemory {
	return &InMemory{audiences: make(map[id.AudienceID]*models.Audience)}
}

func (s *InMemory) Create(_ context.Context, audience *models.Audience) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.audiences[audience.ID]; exists {
		return sentinel.ErrConflict
	}
	clone := *audience
	s.audiences[audience.ID] = &clone
	return nil
}

func (s *InMemory) ListByDossier(_ context.Context, dossierID id.DossierID) ([]*models.Audience, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Audience
	for _, audience := range s.audiences {
		if audience.DossierID == dossierID {
			clone := *audience
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DateAudience.Before(out[j].DateAudience) })
	return out, nil
}

func (s *InMemory) CountByDossier(_ context.Context, dossierID id.DossierID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, audience := range s.audiences {
		if audience.DossierID == dossierID {
			count++
		}
	}
	return count, nil
}
