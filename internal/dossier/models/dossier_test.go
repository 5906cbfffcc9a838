package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	id "recouvro/pkg/domain"
	dErrors "recouvro/pkg/domain-errors"
)

type DossierModelSuite struct {
	suite.Suite
	now time.Time
}

func TestDossierModelSuite(t *testing.T) {
	suite.Run(t, new(DossierModelSuite))
}

func (s *DossierModelSuite) SetupTest() {
	s.now = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
}

func (s *DossierModelSuite) newDossier() *Dossier {
	d, err := NewDossier(id.NewDossierID(), "REC-2024-0042", 10000, "Me Kaddour", s.now)
	s.Require().NoError(err)
	return d
}

func (s *DossierModelSuite) TestNewDossier() {
	s.Run("rejects empty reference", func() {
		_, err := NewDossier(id.NewDossierID(), "  ", 100, "Me Kaddour", s.now)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("rejects negative claim amount", func() {
		_, err := NewDossier(id.NewDossierID(), "REC-1", -1, "Me Kaddour", s.now)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("starts awaiting documents and open", func() {
		d := s.newDossier()
		s.Equal(StageAwaitingDocuments, d.EffectiveStage())
		s.False(d.IsClosed())
		s.Equal(StatutEnCours, d.Statut)
	})
}

func (s *DossierModelSuite) TestStageTransitions() {
	s.Run("absent stage reads as awaiting documents", func() {
		d := s.newDossier()
		d.Stage = ""
		s.Equal(StageAwaitingDocuments, d.EffectiveStage())
	})

	s.Run("advances only one step forward", func() {
		d := s.newDossier()
		s.NoError(d.CanAdvanceTo(StageActions))
		s.Error(d.CanAdvanceTo(StageAudiences))
		s.Error(d.CanAdvanceTo(StageAwaitingDocuments))

		d.ApplyStage(StageActions, s.now)
		s.NoError(d.CanAdvanceTo(StageAudiences))
		s.Error(d.CanAdvanceTo(StageActions))
	})

	s.Run("no rollback", func() {
		d := s.newDossier()
		d.Stage = StageAudiences
		err := d.CanAdvanceTo(StageActions)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeStageViolation))
	})

	s.Run("finance is not a linear edge", func() {
		d := s.newDossier()
		d.Stage = StageAudiences
		s.Error(d.CanAdvanceTo(StageFinance))

		d.ApplyHandToFinance(s.now)
		s.Equal(StageFinance, d.Stage)
		s.Equal(DepartementFinance, d.Departement)
		s.True(d.Stage.IsTerminal())
	})

	s.Run("closed dossier cannot advance", func() {
		d := s.newDossier()
		d.ApplyClosure(s.now)
		err := d.CanAdvanceTo(StageActions)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeCaseClosed))
	})
}

func (s *DossierModelSuite) TestClosureLifecycle() {
	d := s.newDossier()

	s.Run("close freezes the dossier", func() {
		s.Require().NoError(d.CanClose())
		d.ApplyClosure(s.now)
		s.True(d.IsClosed())
		s.NotNil(d.DateCloture)
		s.Equal(StatutCloture, d.Statut)
	})

	s.Run("double close conflicts", func() {
		err := d.CanClose()
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("statut CLOTURE alone freezes even without date", func() {
		frozen := s.newDossier()
		frozen.Statut = StatutCloture
		s.True(frozen.IsClosed())
		s.True(dErrors.HasCode(frozen.EnsureOpen(), dErrors.CodeCaseClosed))
	})

	s.Run("reactivate reopens", func() {
		s.Require().NoError(d.CanReactivate())
		d.ApplyReactivation(s.now.Add(time.Hour))
		s.False(d.IsClosed())
		s.Nil(d.DateCloture)
		s.Equal(StatutEnCours, d.Statut)
	})

	s.Run("reactivating an open dossier conflicts", func() {
		err := d.CanReactivate()
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func (s *DossierModelSuite) TestStageKeyNormalization() {
	dossierID := id.NewDossierID()

	s.Run("reads snake_case key", func() {
		raw := []byte(`{"id":"` + dossierID.String() + `","reference":"REC-1","montant_creance":500,"statut":"EN_COURS","etape_huissier":"EN_ACTIONS","departement":"JURIDIQUE"}`)
		var d Dossier
		s.Require().NoError(json.Unmarshal(raw, &d))
		s.Equal(StageActions, d.Stage)
	})

	s.Run("reads camelCase key", func() {
		raw := []byte(`{"id":"` + dossierID.String() + `","reference":"REC-1","montant_creance":500,"statut":"EN_COURS","etapeHuissier":"EN_AUDIENCES","departement":"JURIDIQUE"}`)
		var d Dossier
		s.Require().NoError(json.Unmarshal(raw, &d))
		s.Equal(StageAudiences, d.Stage)
	})

	s.Run("snake_case wins when both present", func() {
		raw := []byte(`{"id":"` + dossierID.String() + `","reference":"REC-1","montant_creance":500,"statut":"EN_COURS","etape_huissier":"EN_ACTIONS","etapeHuissier":"EN_AUDIENCES","departement":"JURIDIQUE"}`)
		var d Dossier
		s.Require().NoError(json.Unmarshal(raw, &d))
		s.Equal(StageActions, d.Stage)
	})

	s.Run("missing stage defaults to awaiting documents", func() {
		raw := []byte(`{"id":"` + dossierID.String() + `","reference":"REC-1","montant_creance":500,"statut":"EN_COURS","departement":"JURIDIQUE"}`)
		var d Dossier
		s.Require().NoError(json.Unmarshal(raw, &d))
		s.Equal(StageAwaitingDocuments, d.EffectiveStage())
	})

	s.Run("unknown stage is rejected", func() {
		raw := []byte(`{"id":"` + dossierID.String() + `","reference":"REC-1","montant_creance":500,"statut":"EN_COURS","etape_huissier":"EN_ORBITE","departement":"JURIDIQUE"}`)
		var d Dossier
		s.Error(json.Unmarshal(raw, &d))
	})

	s.Run("marshal emits only the canonical key", func() {
		d := s.newDossier()
		raw, err := json.Marshal(d)
		s.Require().NoError(err)
		s.Contains(string(raw), `"etape_huissier":"EN_ATTENTE_DOCUMENTS"`)

		var decoded map[string]any
		s.Require().NoError(json.Unmarshal(raw, &decoded))
		_, hasCamel := decoded["etapeHuissier"]
		s.False(hasCamel)
	})
}

func (s *DossierModelSuite) TestApplyRecoveredClampsNegative() {
	d := s.newDossier()
	d.ApplyRecovered(-5, s.now)
	s.Zero(d.MontantRecupere)

	d.ApplyRecovered(2500, s.now)
	s.Equal(2500.0, d.MontantRecupere)
}
