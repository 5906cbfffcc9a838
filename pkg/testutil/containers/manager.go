//go:build integration

package containers

import (
	"sync"
	"testing"

	actionstore "recouvro/internal/action/store"
	audiencestore "recouvro/internal/audience/store"
	documentstore "recouvro/internal/document/store"
	dossierstore "recouvro/internal/dossier/store"
	auditpostgres "recouvro/pkg/platform/audit/store/postgres"
)

// Manager shares one container of each kind across all integration suites in
// a test binary. Starting PostgreSQL once per binary instead of once per
// suite keeps the integration run fast; suites isolate themselves by
// truncating tables or flushing keys in SetupTest.
type Manager struct {
	mu       sync.Mutex
	postgres *PostgresContainer
	redis    *RedisContainer
}

var (
	managerOnce sync.Once
	manager     *Manager
)

// GetManager returns the process-wide container manager.
func GetManager() *Manager {
	managerOnce.Do(func() {
		manager = &Manager{}
	})
	return manager
}

// GetPostgres returns the shared PostgreSQL container, starting it on first
// use with the full schema applied.
func (m *Manager) GetPostgres(t *testing.T) *PostgresContainer {
	t.Helper()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.postgres == nil {
		m.postgres = NewPostgresContainer(t,
			dossierstore.Schema(),
			documentstore.Schema(),
			actionstore.Schema(),
			audiencestore.Schema(),
			auditpostgres.Schema(),
		)
	}
	return m.postgres
}

// GetRedis returns the shared Redis container, starting it on first use.
func (m *Manager) GetRedis(t *testing.T) *RedisContainer {
	t.Helper()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.redis == nil {
		m.redis = NewRedisContainer(t)
	}
	return m.redis
}
