package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"recouvro/internal/document/models"
	id "recouvro/pkg/domain"
	"recouvro/pkg/platform/sentinel"
)

type DocumentStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func TestDocumentStoreSuite(t *testing.T) {
	suite.Run(t, new(DocumentStoreSuite))
}

func (s *DocumentStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func (s *DocumentStoreSuite) newDocument(dossierID id.DossierID, at time.Time) *models.LegalDocument {
	doc, err := models.NewLegalDocument(id.NewDocumentID(), dossierID, models.TypeMiseEnDemeure, "Me Kaddour", "", at)
	s.Require().NoError(err)
	return doc
}

func (s *DocumentStoreSuite) TestCreateAndList() {
	s.Run("lists a dossier's documents in creation order", func() {
		dossierID := id.NewDossierID()
		base := time.Now()
		second := s.newDocument(dossierID, base.Add(time.Hour))
		first := s.newDocument(dossierID, base)
		s.Require().NoError(s.store.Create(s.ctx, second))
		s.Require().NoError(s.store.Create(s.ctx, first))
		s.Require().NoError(s.store.Create(s.ctx, s.newDocument(id.NewDossierID(), base)))

		docs, err := s.store.ListByDossier(s.ctx, dossierID)
		s.Require().NoError(err)
		s.Require().Len(docs, 2)
		s.Equal(first.ID, docs[0].ID)
		s.Equal(second.ID, docs[1].ID)

		count, err := s.store.CountByDossier(s.ctx, dossierID)
		s.Require().NoError(err)
		s.Equal(2, count)
	})

	s.Run("duplicate create conflicts", func() {
		doc := s.newDocument(id.NewDossierID(), time.Now())
		s.Require().NoError(s.store.Create(s.ctx, doc))
		s.Require().ErrorIs(s.store.Create(s.ctx, doc), sentinel.ErrConflict)
	})
}

func (s *DocumentStoreSuite) TestExecute() {
	s.Run("applies completion when validation passes", func() {
		doc := s.newDocument(id.NewDossierID(), time.Now())
		s.Require().NoError(s.store.Create(s.ctx, doc))

		at := doc.CreatedAt.AddDate(0, 0, 2)
		updated, err := s.store.Execute(s.ctx, doc.ID,
			func(d *models.LegalDocument) error { return d.CanComplete(at) },
			func(d *models.LegalDocument) { d.ApplyCompletion(at) },
		)
		s.Require().NoError(err)
		s.True(updated.Completed)

		found, err := s.store.FindByID(s.ctx, doc.ID)
		s.Require().NoError(err)
		s.True(found.Completed)
	})

	s.Run("failed validation leaves no trace", func() {
		doc := s.newDocument(id.NewDossierID(), time.Now())
		s.Require().NoError(s.store.Create(s.ctx, doc))

		expired := doc.CreatedAt.AddDate(0, 0, 11)
		_, err := s.store.Execute(s.ctx, doc.ID,
			func(d *models.LegalDocument) error { return d.CanComplete(expired) },
			func(d *models.LegalDocument) { d.ApplyCompletion(expired) },
		)
		s.Require().Error(err)

		found, findErr := s.store.FindByID(s.ctx, doc.ID)
		s.Require().NoError(findErr)
		s.False(found.Completed)
	})
}

func (s *DocumentStoreSuite) TestDelete() {
	s.Run("removes the document", func() {
		doc := s.newDocument(id.NewDossierID(), time.Now())
		s.Require().NoError(s.store.Create(s.ctx, doc))
		s.Require().NoError(s.store.Delete(s.ctx, doc.ID))
		_, err := s.store.FindByID(s.ctx, doc.ID)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("unknown document is ErrNotFound", func() {
		s.Require().ErrorIs(s.store.Delete(s.ctx, id.NewDocumentID()), sentinel.ErrNotFound)
	})
}
