package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"recouvro/internal/dossier/models"
	id "recouvro/pkg/domain"
	dErrors "recouvro/pkg/domain-errors"
	"recouvro/pkg/platform/sentinel"
)

type DossierStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func TestDossierStoreSuite(t *testing.T) {
	suite.Run(t, new(DossierStoreSuite))
}

func (s *DossierStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func (s *DossierStoreSuite) newDossier() *models.Dossier {
	d, err := models.NewDossier(id.NewDossierID(), "REC-"+id.NewDossierID().String()[:8], 10000, "Me Kaddour", time.Now())
	s.Require().NoError(err)
	return d
}

func (s *DossierStoreSuite) TestCreateAndFind() {
	s.Run("creates and finds by id", func() {
		dossier := s.newDossier()
		s.Require().NoError(s.store.Create(s.ctx, dossier))

		found, err := s.store.FindByID(s.ctx, dossier.ID)
		s.Require().NoError(err)
		s.Equal(dossier.Reference, found.Reference)
	})

	s.Run("returns ErrNotFound for unknown id", func() {
		_, err := s.store.FindByID(s.ctx, id.NewDossierID())
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("duplicate create conflicts", func() {
		dossier := s.newDossier()
		s.Require().NoError(s.store.Create(s.ctx, dossier))
		s.Require().ErrorIs(s.store.Create(s.ctx, dossier), sentinel.ErrConflict)
	})

	s.Run("reads return copies", func() {
		dossier := s.newDossier()
		s.Require().NoError(s.store.Create(s.ctx, dossier))

		found, err := s.store.FindByID(s.ctx, dossier.ID)
		s.Require().NoError(err)
		found.Reference = "mutated"

		again, err := s.store.FindByID(s.ctx, dossier.ID)
		s.Require().NoError(err)
		s.NotEqual("mutated", again.Reference)
	})
}

func (s *DossierStoreSuite) TestExecute() {
	s.Run("applies mutation when validation passes", func() {
		dossier := s.newDossier()
		s.Require().NoError(s.store.Create(s.ctx, dossier))

		now := time.Now()
		updated, err := s.store.Execute(s.ctx, dossier.ID,
			func(d *models.Dossier) error { return d.CanAdvanceTo(models.StageActions) },
			func(d *models.Dossier) { d.ApplyStage(models.StageActions, now) },
		)
		s.Require().NoError(err)
		s.Equal(models.StageActions, updated.Stage)

		found, err := s.store.FindByID(s.ctx, dossier.ID)
		s.Require().NoError(err)
		s.Equal(models.StageActions, found.Stage)
	})

	s.Run("failed validation leaves no trace", func() {
		dossier := s.newDossier()
		dossier.Stage = models.StageAudiences
		s.Require().NoError(s.store.Create(s.ctx, dossier))

		_, err := s.store.Execute(s.ctx, dossier.ID,
			func(d *models.Dossier) error { return d.CanAdvanceTo(models.StageActions) },
			func(d *models.Dossier) { d.ApplyStage(models.StageActions, time.Now()) },
		)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeStageViolation))

		found, findErr := s.store.FindByID(s.ctx, dossier.ID)
		s.Require().NoError(findErr)
		s.Equal(models.StageAudiences, found.Stage)
	})

	s.Run("unknown dossier is ErrNotFound", func() {
		_, err := s.store.Execute(s.ctx, id.NewDossierID(),
			func(*models.Dossier) error { return nil },
			func(*models.Dossier) {},
		)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}
