package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	dossiermodels "recouvro/internal/dossier/models"
	dossierstore "recouvro/internal/dossier/store"

	"recouvro/internal/audience/store"
	id "recouvro/pkg/domain"
	dErrors "recouvro/pkg/domain-errors"
	"recouvro/pkg/requestcontext"
)

type AudienceServiceSuite struct {
	suite.Suite
	service  *Service
	dossiers *dossierstore.InMemory
	now      time.Time
	ctx      context.Context
}

func TestAudienceServiceSuite(t *testing.T) {
	suite.Run(t, new(AudienceServiceSuite))
}

func (s *AudienceServiceSuite) SetupTest() {
	s.dossiers = dossierstore.NewInMemory()
	s.service = New(store.NewInMemory(), s.dossiers)
	s.now = time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.ctx = requestcontext.WithBailiffName(s.ctx, "Me Kaddour")
}

func (s *AudienceServiceSuite) newDossier(stage dossiermodels.Stage) *dossiermodels.Dossier {
	dossier, err := dossiermodels.NewDossier(id.NewDossierID(), "REC-"+id.NewDossierID().String()[:8], 10000, "Me Kaddour", s.now)
	s.Require().NoError(err)
	dossier.Stage = stage
	s.Require().NoError(s.dossiers.Create(s.ctx, dossier))
	return dossier
}

func (s *AudienceServiceSuite) TestCreate() {
	s.Run("records an audience in the audiences stage", func() {
		dossier := s.newDossier(dossiermodels.StageAudiences)

		audience, err := s.service.Create(s.ctx, dossier.ID, s.now.AddDate(0, 1, 0), "TGI Alger", "")
		s.Require().NoError(err)
		s.Equal("TGI Alger", audience.Tribunal)
		s.Equal("Me Kaddour", audience.BailiffName)

		listed, err := s.service.ListByDossier(s.ctx, dossier.ID)
		s.Require().NoError(err)
		s.Len(listed, 1)
	})

	s.Run("rejects creation outside the audiences stage", func() {
		dossier := s.newDossier(dossiermodels.StageActions)
		_, err := s.service.Create(s.ctx, dossier.ID, s.now.AddDate(0, 1, 0), "TGI Alger", "")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeStageViolation))
	})

	s.Run("rejects creation on a closed dossier", func() {
		dossier := s.newDossier(dossiermodels.StageAudiences)
		_, err := s.dossiers.Execute(s.ctx, dossier.ID,
			func(d *dossiermodels.Dossier) error { return d.CanClose() },
			func(d *dossiermodels.Dossier) { d.ApplyClosure(s.now) },
		)
		s.Require().NoError(err)

		_, err = s.service.Create(s.ctx, dossier.ID, s.now.AddDate(0, 1, 0), "TGI Alger", "")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeCaseClosed))
	})

	s.Run("rejects a missing tribunal", func() {
		dossier := s.newDossier(dossiermodels.StageAudiences)
		_, err := s.service.Create(s.ctx, dossier.ID, s.now.AddDate(0, 1, 0), "  ", "")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}
