//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	id "recouvro/pkg/domain"
	audit "recouvro/pkg/platform/audit"
	"recouvro/pkg/platform/audit/store/postgres"
	"recouvro/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *postgres.Store
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.pg = mgr.GetPostgres(s.T())
	s.store = postgres.New(s.pg.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	err := s.pg.TruncateTables(ctx, "audit_events")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) TestAppendAndListChronological() {
	ctx := context.Background()
	dossierID := id.NewDossierID()
	base := time.Now().UTC().Truncate(time.Microsecond)

	// Append out of order; the trail reads back chronologically.
	later := audit.Event{
		Category:    audit.CategoryCompliance,
		Timestamp:   base.Add(time.Minute),
		DossierID:   dossierID,
		Action:      audit.ActionStageAdvanced,
		BailiffName: "Me Benali",
		Stage:       "EN_ACTIONS",
		RequestID:   "req-2",
	}
	earlier := audit.Event{
		Category:    audit.CategoryCompliance,
		Timestamp:   base,
		DossierID:   dossierID,
		Action:      audit.ActionDocumentCreated,
		BailiffName: "Me Benali",
		Detail:      "PV_MISE_EN_DEMEURE",
		RequestID:   "req-1",
	}
	s.Require().NoError(s.store.Append(ctx, later))
	s.Require().NoError(s.store.Append(ctx, earlier))
	s.Require().NoError(s.store.Append(ctx, audit.Event{
		Category:  audit.CategoryCompliance,
		Timestamp: base,
		DossierID: id.NewDossierID(),
		Action:    audit.ActionDossierCreated,
	}))

	events, err := s.store.ListByDossier(ctx, dossierID)
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal(audit.ActionDocumentCreated, events[0].Action)
	s.Equal("PV_MISE_EN_DEMEURE", events[0].Detail)
	s.Equal(audit.ActionStageAdvanced, events[1].Action)
	s.Equal("EN_ACTIONS", events[1].Stage)
	s.Equal(dossierID, events[0].DossierID)
}

func (s *PostgresStoreSuite) TestAmountSurvivesRoundtrip() {
	ctx := context.Background()
	dossierID := id.NewDossierID()

	event := audit.Event{
		Category:  audit.CategoryCompliance,
		Timestamp: time.Now().UTC().Truncate(time.Microsecond),
		DossierID: dossierID,
		Action:    audit.ActionRecoveryRecorded,
		Amount:    3000,
	}
	s.Require().NoError(s.store.Append(ctx, event))

	events, err := s.store.ListByDossier(ctx, dossierID)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(3000.0, events[0].Amount)
}

func (s *PostgresStoreSuite) TestEmptyTrail() {
	ctx := context.Background()

	events, err := s.store.ListByDossier(ctx, id.NewDossierID())
	s.Require().NoError(err)
	s.Empty(events)
}
