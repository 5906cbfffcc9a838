package memory

import (
	"context"
	"sync"

	id "recouvro/pkg/domain"
	audit "recouvro/pkg/platform/audit"
)

// Store keeps audit events in memory, grouped by dossier. Used by unit tests
// and as the default sink when no database is configured.
type Store struct {
	mu     sync.RWMutex
	events map[id.DossierID][]audit.Event
}

func New() *Store {
	return &Store{events: make(map[id.DossierID][]audit.Event)}
}

func (s *Store) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.DossierID] = append(s.events[event.DossierID], event)
	return nil
}

func (s *Store) ListByDossier(_ context.Context, dossierID id.DossierID) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event{}, s.events[dossierID]...), nil
}
