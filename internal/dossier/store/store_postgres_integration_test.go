//go:build integration

package store_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"recouvro/internal/dossier/models"
	"recouvro/internal/dossier/store"
	id "recouvro/pkg/domain"
	dErrors "recouvro/pkg/domain-errors"
	"recouvro/pkg/platform/sentinel"
	"recouvro/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.Postgres
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	err := s.postgres.TruncateTables(ctx, "dossiers")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) newTestDossier(creance float64) *models.Dossier {
	dossier, err := models.NewDossier(id.NewDossierID(), "REC-"+uuid.NewString(), creance, "Me Benali", time.Now().UTC())
	s.Require().NoError(err)
	return dossier
}

func (s *PostgresStoreSuite) TestCreateAndFindRoundtrip() {
	ctx := context.Background()

	created := s.newTestDossier(15000)
	s.Require().NoError(s.store.Create(ctx, created))

	found, err := s.store.FindByID(ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(created.ID, found.ID)
	s.Equal(created.Reference, found.Reference)
	s.Equal(15000.0, found.MontantCreance)
	s.Equal(models.StageAwaitingDocuments, found.EffectiveStage())
	s.Equal(models.DepartementJuridique, found.Departement)
	s.Nil(found.DateCloture)
}

func (s *PostgresStoreSuite) TestDuplicateReferenceConflict() {
	ctx := context.Background()

	first := s.newTestDossier(1000)
	s.Require().NoError(s.store.Create(ctx, first))

	dup := s.newTestDossier(2000)
	dup.Reference = first.Reference
	s.ErrorIs(s.store.Create(ctx, dup), sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestNotFound() {
	ctx := context.Background()

	_, err := s.store.FindByID(ctx, id.NewDossierID())
	s.ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.store.Execute(ctx, id.NewDossierID(),
		func(*models.Dossier) error { return nil },
		func(*models.Dossier) {})
	s.ErrorIs(err, sentinel.ErrNotFound)
}

// TestConcurrentExecuteSerializes verifies the row lock: fifty concurrent
// increments of the recovered projection must all land.
func (s *PostgresStoreSuite) TestConcurrentExecuteSerializes() {
	ctx := context.Background()

	dossier := s.newTestDossier(100000)
	s.Require().NoError(s.store.Create(ctx, dossier))

	const goroutines = 50
	var wg sync.WaitGroup
	var failures atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.store.Execute(ctx, dossier.ID,
				func(d *models.Dossier) error { return d.EnsureOpen() },
				func(d *models.Dossier) { d.ApplyRecovered(d.MontantRecupere+100, time.Now().UTC()) })
			if err != nil {
				failures.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(0), failures.Load(), "all increments should commit")

	found, err := s.store.FindByID(ctx, dossier.ID)
	s.Require().NoError(err)
	s.Equal(float64(goroutines)*100, found.MontantRecupere)
}

func (s *PostgresStoreSuite) TestExecuteValidationFailureLeavesRowUntouched() {
	ctx := context.Background()

	dossier := s.newTestDossier(5000)
	s.Require().NoError(s.store.Create(ctx, dossier))

	_, err := s.store.Execute(ctx, dossier.ID,
		func(*models.Dossier) error {
			return dErrors.New(dErrors.CodeStageViolation, "not eligible")
		},
		func(d *models.Dossier) { d.ApplyStage(models.StageActions, time.Now().UTC()) })
	s.True(dErrors.HasCode(err, dErrors.CodeStageViolation))

	found, err := s.store.FindByID(ctx, dossier.ID)
	s.Require().NoError(err)
	s.Equal(models.StageAwaitingDocuments, found.EffectiveStage())
}

func (s *PostgresStoreSuite) TestClosureRoundtrip() {
	ctx := context.Background()

	dossier := s.newTestDossier(5000)
	s.Require().NoError(s.store.Create(ctx, dossier))

	_, err := s.store.Execute(ctx, dossier.ID,
		func(d *models.Dossier) error { return d.CanClose() },
		func(d *models.Dossier) { d.ApplyClosure(time.Now().UTC()) })
	s.Require().NoError(err)

	found, err := s.store.FindByID(ctx, dossier.ID)
	s.Require().NoError(err)
	s.Require().NotNil(found.DateCloture)
	s.Equal(models.StatutCloture, found.Statut)
	s.True(found.IsClosed())
}
