package store

import (
	"context"
	"sort"
	"sync"

	"recouvro/internal/action/models"
	id "recouvro/pkg/domain"
	"recouvro/pkg/platform/sentinel"
)

// InMemory is the default action store for development and unit tests.
type InMemory struct {
	mu      sync.RWMutex
	actions map[id.ActionID]*models.RecoveryAction
}

func NewInMemory() *InMemory {
	return &InMemory{actions: make(map[id.ActionID]*models.RecoveryAction)}
}

func (s *InMemory) Create(_ context.Context, action *models.RecoveryAction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.actions[action.ID]; exists {
		return sentinel.ErrConflict
	}
	clone := *action
	s.actions[action.ID] = &clone
	return nil
}

func (s *InMemory) FindByID(_ context.Context, actionID id.ActionID) (*models.RecoveryAction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	action, ok := s.actions[actionID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *action
	return &clone, nil
}

func (s *InMemory) ListByDossier(_ context.Context, dossierID id.DossierID) ([]*models.RecoveryAction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.RecoveryAction
	for _, action := range s.actions {
		if action.DossierID == dossierID {
			clone := *action
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
	for _, action := range s.actions {
		if action.DossierID == dossierID {
			count++
		}
	}
	return count, nil
}

func (s *InMemory) SumByDossier(_ context.Context, dossierID id.DossierID, exclude *id.ActionID) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var sum float64
	for _, action := range s.actions {
		if action.DossierID != dossierID {
			continue
		}
		if exclude != nil && action.ID == *exclude {
			continue
		}
		sum += action.MontantRecupere
	}
	return sum, nil
}

func (s *InMemory) Update(_ context.Context, action *models.RecoveryAction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.actions[action.ID]; !ok {
		return sentinel.ErrNotFound
	}
	clone := *action
	s.actions[action.ID] = &clone
	return nil
}

func (s *InMemory) Delete(_ context.Context, actionID id.ActionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.actions[actionID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.actions, actionID)
	return nil
}
