package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	id "recouvro/pkg/domain"
	dErrors "recouvro/pkg/domain-errors"
)

type DocumentModelSuite struct {
	suite.Suite
	now time.Time
}

func TestDocumentModelSuite(t *testing.T) {
	suite.Run(t, new(DocumentModelSuite))
}

func (s *DocumentModelSuite) SetupTest() {
	s.now = time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)
}

func (s *DocumentModelSuite) newDocument(docType DocumentType) *LegalDocument {
	doc, err := NewLegalDocument(id.NewDocumentID(), id.NewDossierID(), docType, "Me Kaddour", "", s.now)
	s.Require().NoError(err)
	return doc
}

// -----------------------------------------------------------------------------
// Construction
// -----------------------------------------------------------------------------

func (s *DocumentModelSuite) TestNewLegalDocument() {
	s.Run("derives the statutory delay from the type", func() {
		s.Equal(10, s.newDocument(TypeMiseEnDemeure).DelayDays)
		s.Equal(20, s.newDocument(TypeOrdonnancePaiement).DelayDays)
		s.Equal(0, s.newDocument(TypeNotificationOrdonnance).DelayDays)
	})

	s.Run("rejects an unknown type", func() {
		_, err := NewLegalDocument(id.NewDocumentID(), id.NewDossierID(), "ASSIGNATION", "Me Kaddour", "", s.now)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("rejects a blank bailiff name", func() {
		_, err := NewLegalDocument(id.NewDocumentID(), id.NewDossierID(), TypeMiseEnDemeure, "   ", "", s.now)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

// -----------------------------------------------------------------------------
// Deadlines and status derivation
// -----------------------------------------------------------------------------

func (s *DocumentModelSuite) TestDeadline() {
	s.Run("mise en demeure expires after ten days", func() {
		doc := s.newDocument(TypeMiseEnDemeure)
		deadline, ok := doc.Deadline()
		s.Require().True(ok)
		s.Equal(s.now.AddDate(0, 0, 10), deadline)
	})

	s.Run("ordonnance expires after twenty days", func() {
		doc := s.newDocument(TypeOrdonnancePaiement)
		deadline, ok := doc.Deadline()
		s.Require().True(ok)
		s.Equal(s.now.AddDate(0, 0, 20), deadline)
	})

	s.Run("notification has no deadline", func() {
		_, ok := s.newDocument(TypeNotificationOrdonnance).Deadline()
		s.False(ok)
	})

	s.Run("missing creation instant means non-expiring", func() {
		doc := s.newDocument(TypeMiseEnDemeure)
		doc.CreatedAt = time.Time{}
		_, ok := doc.Deadline()
		s.False(ok)
	})
}

func (s *DocumentModelSuite) TestDeriveStatus() {
	s.Run("pending before the deadline, expired after", func() {
		doc := s.newDocument(TypeMiseEnDemeure)
		s.Equal(StatusPending, doc.DeriveStatus(s.now.AddDate(0, 0, 9)))
		s.Equal(StatusPending, doc.DeriveStatus(s.now.AddDate(0, 0, 10)))
		s.Equal(StatusExpired, doc.DeriveStatus(s.now.AddDate(0, 0, 11)))
	})

	s.Run("non-expiring documents stay pending forever", func() {
		doc := s.newDocument(TypeNotificationOrdonnance)
		s.Equal(StatusPending, doc.DeriveStatus(s.now.AddDate(10, 0, 0)))
	})

	s.Run("completed is terminal even past the deadline", func() {
		doc := s.newDocument(TypeMiseEnDemeure)
		doc.ApplyCompletion(s.now.AddDate(0, 0, 5))
		s.Equal(StatusCompleted, doc.DeriveStatus(s.now.AddDate(0, 0, 30)))
	})
}

// -----------------------------------------------------------------------------
// Completion
// -----------------------------------------------------------------------------

func (s *DocumentModelSuite) TestCompletion() {
	s.Run("completes a pending document", func() {
		doc := s.newDocument(TypeMiseEnDemeure)
		at := s.now.AddDate(0, 0, 3)
		s.Require().NoError(doc.CanComplete(at))
		doc.ApplyCompletion(at)
		s.True(doc.Completed)
		s.Require().NotNil(doc.CompletedAt)
		s.Equal(at, *doc.CompletedAt)
	})

	s.Run("cannot complete past the deadline", func() {
		doc := s.newDocument(TypeMiseEnDemeure)
		err := doc.CanComplete(s.now.AddDate(0, 0, 11))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeAlreadyExpired))
	})

	s.Run("cannot complete twice", func() {
		doc := s.newDocument(TypeOrdonnancePaiement)
		doc.ApplyCompletion(s.now)
		err := doc.CanComplete(s.now.AddDate(0, 0, 1))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeAlreadyCompleted))
	})

	s.Run("non-expiring document completes long after creation", func() {
		doc := s.newDocument(TypeNotificationOrdonnance)
		s.Require().NoError(doc.CanComplete(s.now.AddDate(2, 0, 0)))
	})
}
