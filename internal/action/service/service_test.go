package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"recouvro/internal/action/models"
	"recouvro/internal/action/store"
	dossiermodels "recouvro/internal/dossier/models"
	dossierservice "recouvro/internal/dossier/service"
	dossierstore "recouvro/internal/dossier/store"
	id "recouvro/pkg/domain"
	dErrors "recouvro/pkg/domain-errors"
	audit "recouvro/pkg/platform/audit"
	"recouvro/pkg/platform/audit/publisher"
	auditmemory "recouvro/pkg/platform/audit/store/memory"
	"recouvro/pkg/requestcontext"
)

type ActionServiceSuite struct {
	suite.Suite
	service    *Service
	actions    *store.InMemory
	dossiers   *dossierstore.InMemory
	auditStore *auditmemory.Store
	now        time.Time
	ctx        context.Context
}

func TestActionServiceSuite(t *testing.T) {
	suite.Run(t, new(ActionServiceSuite))
}

func (s *ActionServiceSuite) SetupTest() {
	s.actions = store.NewInMemory()
	s.dossiers = dossierstore.NewInMemory()
	s.auditStore = auditmemory.New()
	auditor := publisher.New(s.auditStore)
	dossiers := dossierservice.New(s.dossiers, dossierservice.WithAuditPublisher(auditor))
	s.service = New(s.actions, dossiers, WithAuditPublisher(auditor))
	s.now = time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.ctx = requestcontext.WithBailiffName(s.ctx, "Me Kaddour")
}

func (s *ActionServiceSuite) newDossier(stage dossiermodels.Stage, creance float64, bailiff string) *dossiermodels.Dossier {
	dossier, err := dossiermodels.NewDossier(id.NewDossierID(), "REC-"+id.NewDossierID().String()[:8], creance, bailiff, s.now)
	s.Require().NoError(err)
	dossier.Stage = stage
	s.Require().NoError(s.dossiers.Create(s.ctx, dossier))
	return dossier
}

func (s *ActionServiceSuite) create(dossierID id.DossierID, amount float64) (*models.RecoveryAction, *Totals) {
	action, totals, err := s.service.Create(s.ctx, dossierID, CreateParams{
		Type:   models.TypeSaisieMobiliere,
		Amount: amount,
	})
	s.Require().NoError(err)
	return action, totals
}

// -----------------------------------------------------------------------------
// Remaining-amount arithmetic
// -----------------------------------------------------------------------------

func (s *ActionServiceSuite) TestRemainingArithmetic() {
	s.Run("successive actions and an upward edit", func() {
		dossier := s.newDossier(dossiermodels.StageActions, 10000, "Me Kaddour")

		actionA, totals := s.create(dossier.ID, 3000)
		s.Equal(7000.0, totals.Remaining)
		s.Equal(7000.0, actionA.MontantRestant)

		_, totals = s.create(dossier.ID, 4000)
		s.Equal(3000.0, totals.Remaining)
		s.Equal(7000.0, totals.CumulativeRecovered)

		// Editing action A excludes its prior 3000 before re-adding.
		_, totals, err := s.service.Update(s.ctx, actionA.ID, UpdateParams{
			Type:   models.TypeSaisieMobiliere,
			Amount: 5000,
		})
		s.Require().NoError(err)
		s.Equal(9000.0, totals.CumulativeRecovered)
		s.Equal(1000.0, totals.Remaining)

		// The dossier projection follows the ledger.
		found, err := s.dossiers.FindByID(s.ctx, dossier.ID)
		s.Require().NoError(err)
		s.Equal(9000.0, found.MontantRecupere)
	})

	s.Run("over-recovery clamps remaining to zero", func() {
		dossier := s.newDossier(dossiermodels.StageActions, 5000, "Me Kaddour")
		_, totals := s.create(dossier.ID, 8000)
		s.Equal(0.0, totals.Remaining)
		s.Equal(8000.0, totals.CumulativeRecovered)
	})

	s.Run("reconciles against an externally written dossier amount", func() {
		dossier := s.newDossier(dossiermodels.StageActions, 10000, "Me Kaddour")
		// The finance import wrote the dossier field directly.
		_, err := s.dossiers.Execute(s.ctx, dossier.ID,
			func(*dossiermodels.Dossier) error { return nil },
			func(d *dossiermodels.Dossier) { d.ApplyRecovered(6000, s.now) },
		)
		s.Require().NoError(err)

		_, totals := s.create(dossier.ID, 1000)
		s.Equal(6000.0, totals.CumulativeRecovered)
		s.Equal(4000.0, totals.Remaining)
	})
}

// -----------------------------------------------------------------------------
// Gates
// -----------------------------------------------------------------------------

func (s *ActionServiceSuite) TestGates() {
	s.Run("rejects creation outside the actions stage", func() {
		dossier := s.newDossier(dossiermodels.StageAwaitingDocuments, 10000, "Me Kaddour")
		_, _, err := s.service.Create(s.ctx, dossier.ID, CreateParams{Type: models.TypeSaisieMobiliere, Amount: 100})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeStageViolation))
	})

	s.Run("rejects creation on a closed dossier", func() {
		dossier := s.newDossier(dossiermodels.StageActions, 10000, "Me Kaddour")
		_, err := s.dossiers.Execute(s.ctx, dossier.ID,
			func(d *dossiermodels.Dossier) error { return d.CanClose() },
			func(d *dossiermodels.Dossier) { d.ApplyClosure(s.now) },
		)
		s.Require().NoError(err)

		_, _, err = s.service.Create(s.ctx, dossier.ID, CreateParams{Type: models.TypeSaisieMobiliere, Amount: 100})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeCaseClosed))
	})

	s.Run("falls back to the dossier's assigned bailiff", func() {
		dossier := s.newDossier(dossiermodels.StageActions, 10000, "Me Benali")
		ctx := requestcontext.WithBailiffName(s.ctx, "")

		action, _, err := s.service.Create(ctx, dossier.ID, CreateParams{Type: models.TypeSaisieAttribution, Amount: 100})
		s.Require().NoError(err)
		s.Equal("Me Benali", action.BailiffName)
	})

	s.Run("no resolvable bailiff fails", func() {
		dossier := s.newDossier(dossiermodels.StageActions, 10000, "")
		ctx := requestcontext.WithBailiffName(s.ctx, "")

		_, _, err := s.service.Create(ctx, dossier.ID, CreateParams{Type: models.TypeSaisieMobiliere, Amount: 100})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNoBailiffAssigned))
	})
}

// -----------------------------------------------------------------------------
// Delete
// -----------------------------------------------------------------------------

func (s *ActionServiceSuite) TestDelete() {
	s.Run("refreshes the projection from the remaining ledger", func() {
		dossier := s.newDossier(dossiermodels.StageActions, 10000, "Me Kaddour")
		actionA, _ := s.create(dossier.ID, 3000)
		s.create(dossier.ID, 4000)

		s.Require().NoError(s.service.Delete(s.ctx, actionA.ID))

		found, err := s.dossiers.FindByID(s.ctx, dossier.ID)
		s.Require().NoError(err)
		s.Equal(4000.0, found.MontantRecupere)

		events, err := s.auditStore.ListByDossier(s.ctx, dossier.ID)
		s.Require().NoError(err)
		s.Equal(audit.ActionRecoveryDeleted, events[len(events)-1].Action)
	})

	s.Run("unknown action is not found", func() {
		err := s.service.Delete(s.ctx, id.NewActionID())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
