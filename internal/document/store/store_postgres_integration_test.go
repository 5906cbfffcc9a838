//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"recouvro/internal/document/models"
	"recouvro/internal/document/store"
	id "recouvro/pkg/domain"
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
	err := s.postgres.TruncateTables(ctx, "legal_documents")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) newTestDocument(dossierID id.DossierID, docType models.DocumentType, createdAt time.Time) *models.LegalDocument {
	doc, err := models.NewLegalDocument(id.NewDocumentID(), dossierID, docType, "Me Benali", "", createdAt)
	s.Require().NoError(err)
	return doc
}

func (s *PostgresStoreSuite) TestCreateListCount() {
	ctx := context.Background()
	dossierID := id.NewDossierID()
	base := time.Now().UTC().Truncate(time.Microsecond)

	// Insert out of order; listing is sorted by creation time.
	second := s.newTestDocument(dossierID, models.TypeOrdonnancePaiement, base.Add(time.Hour))
	first := s.newTestDocument(dossierID, models.TypeMiseEnDemeure, base)
	other := s.newTestDocument(id.NewDossierID(), models.TypeMiseEnDemeure, base)
	s.Require().NoError(s.store.Create(ctx, second))
	s.Require().NoError(s.store.Create(ctx, first))
	s.Require().NoError(s.store.Create(ctx, other))

	docs, err := s.store.ListByDossier(ctx, dossierID)
	s.Require().NoError(err)
	s.Require().Len(docs, 2)
	s.Equal(first.ID, docs[0].ID)
	s.Equal(second.ID, docs[1].ID)
	s.Equal(10, docs[0].DelayDays)
	s.Equal(20, docs[1].DelayDays)

	count, err := s.store.CountByDossier(ctx, dossierID)
	s.Require().NoError(err)
	s.Equal(2, count)
}

func (s *PostgresStoreSuite) TestExecuteCompletion() {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	doc := s.newTestDocument(id.NewDossierID(), models.TypeMiseEnDemeure, now)
	s.Require().NoError(s.store.Create(ctx, doc))

	completed, err := s.store.Execute(ctx, doc.ID,
		func(d *models.LegalDocument) error { return d.CanComplete(now.Add(time.Hour)) },
		func(d *models.LegalDocument) { d.ApplyCompletion(now.Add(time.Hour)) })
	s.Require().NoError(err)
	s.True(completed.Completed)

	found, err := s.store.FindByID(ctx, doc.ID)
	s.Require().NoError(err)
	s.True(found.Completed)
	s.Require().NotNil(found.CompletedAt)
	s.Equal(models.StatusCompleted, found.DeriveStatus(now.Add(30*24*time.Hour)))
}

func (s *PostgresStoreSuite) TestDelete() {
	ctx := context.Background()

	doc := s.newTestDocument(id.NewDossierID(), models.TypeNotificationOrdonnance, time.Now().UTC())
	s.Require().NoError(s.store.Create(ctx, doc))

	s.Require().NoError(s.store.Delete(ctx, doc.ID))

	_, err := s.store.FindByID(ctx, doc.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)

	s.ErrorIs(s.store.Delete(ctx, doc.ID), sentinel.ErrNotFound)
}
