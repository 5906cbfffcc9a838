// Package service orchestrates the legal-document ledger: recording dated
// documents, completing them before their statutory deadline, and deletion.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"recouvro/internal/document/metrics"
	"recouvro/internal/document/models"
	"recouvro/internal/document/store"
	dossiermodels "recouvro/internal/dossier/models"
	id "recouvro/pkg/domain"
	dErrors "recouvro/pkg/domain-errors"
	audit "recouvro/pkg/platform/audit"
	"recouvro/pkg/platform/sentinel"
	"recouvro/pkg/requestcontext"
)

// DossierReader is the slice of the dossier store this service needs to
// enforce stage and closure gates.
type DossierReader interface {
	FindByID(ctx context.Context, dossierID id.DossierID) (*dossiermodels.Dossier, error)
}

// AuditPublisher is the slice of the audit publisher this service needs.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// View is a document decorated with its derived status and deadline. The
// status is never stored; it is recomputed at every read boundary.
type View struct {
	models.LegalDocument
	Status   models.Status `json:"status"`
	Deadline *time.Time    `json:"deadline,omitempty"`
}

func viewOf(doc *models.LegalDocument, now time.Time) View {
	v := View{LegalDocument: *doc, Status: doc.DeriveStatus(now)}
	if deadline, ok := doc.Deadline(); ok {
		v.Deadline = &deadline
	}
	return v
}

// Service manages legal documents.
type Service struct {
	documents store.Store
	dossiers  DossierReader
	auditor   AuditPublisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(auditor AuditPublisher) Option {
	return func(s *Service) { s.auditor = auditor }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(documents store.Store, dossiers DossierReader, opts ...Option) *Service {
	s := &Service{documents: documents, dossiers: dossiers, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create records a legal document against a dossier. The dossier must be open
// and in the documents stage; the statutory delay is derived from the type at
// creation and never changes.
func (s *Service) Create(ctx context.Context, dossierID id.DossierID, docType models.DocumentType, attachmentRef string) (*View, error) {
	now := requestcontext.Now(ctx)

	dossier, err := s.loadDossier(ctx, dossierID)
	if err != nil {
		return nil, err
	}
	if err := dossier.EnsureOpen(); err != nil {
		return nil, err
	}
	if !dossier.EffectiveStage().AllowsDocumentCreation() {
		return nil, dErrors.Newf(dErrors.CodeStageViolation,
			"documents cannot be recorded in stage %s", dossier.EffectiveStage())
	}

	bailiff := requestcontext.BailiffName(ctx)
	if bailiff == "" {
		bailiff = dossier.BailiffName
	}

	doc, err := models.NewLegalDocument(id.NewDocumentID(), dossierID, docType, bailiff, attachmentRef, now)
	if err != nil {
		return nil, err
	}

	if err := s.documents.Create(ctx, doc); err != nil {
		return nil, wrapStoreErr(err)
	}

	if err := s.emit(ctx, audit.Event{
		DossierID:   dossierID,
		Action:      audit.ActionDocumentCreated,
		BailiffName: doc.BailiffName,
		Stage:       string(dossier.EffectiveStage()),
		Detail:      string(doc.Type),
	}); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.DocumentsCreated.WithLabelValues(string(doc.Type)).Inc()
	}
	view := viewOf(doc, now)
	return &view, nil
}

// Get loads one document with its derived status.
func (s *Service) Get(ctx context.Context, documentID id.DocumentID) (*View, error) {
	doc, err := s.documents.FindByID(ctx, documentID)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	view := viewOf(doc, requestcontext.Now(ctx))
	return &view, nil
}

// ListByDossier returns a dossier's documents with statuses derived at the
// request instant.
func (s *Service) ListByDossier(ctx context.Context, dossierID id.DossierID) ([]View, error) {
	now := requestcontext.Now(ctx)
	docs, err := s.documents.ListByDossier(ctx, dossierID)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	views := make([]View, 0, len(docs))
	for _, doc := range docs {
		views = append(views, viewOf(doc, now))
	}
	return views, nil
}

// Complete marks a pending document as done. Rejected with a conflict once the
// statutory deadline has passed or when the document is already completed.
func (s *Service) Complete(ctx context.Context, documentID id.DocumentID) (*View, error) {
	now := requestcontext.Now(ctx)

	existing, err := s.documents.FindByID(ctx, documentID)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	dossier, err := s.loadDossier(ctx, existing.DossierID)
	if err != nil {
		return nil, err
	}
	if err := dossier.EnsureOpen(); err != nil {
		return nil, err
	}

	doc, err := s.documents.Execute(ctx, documentID,
		func(d *models.LegalDocument) error { return d.CanComplete(now) },
		func(d *models.LegalDocument) { d.ApplyCompletion(now) },
	)
	if err != nil {
		if s.metrics != nil && dErrors.HasCode(err, dErrors.CodeAlreadyExpired) {
			s.metrics.ExpiredCompletions.Inc()
		}
		return nil, wrapStoreErr(err)
	}

	if err := s.emit(ctx, audit.Event{
		DossierID:   doc.DossierID,
		Action:      audit.ActionDocumentCompleted,
		BailiffName: doc.BailiffName,
		Detail:      string(doc.Type),
	}); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.DocumentsCompleted.Inc()
	}
	view := viewOf(doc, now)
	return &view, nil
}

// Delete removes a document. Existence is the only gate: deletion stays
// available even on a closed dossier so erroneous records can be purged.
func (s *Service) Delete(ctx context.Context, documentID id.DocumentID) error {
	doc, err := s.documents.FindByID(ctx, documentID)
	if err != nil {
		return wrapStoreErr(err)
	}

	if err := s.documents.Delete(ctx, documentID); err != nil {
		return wrapStoreErr(err)
	}

	if err := s.emit(ctx, audit.Event{
		DossierID: doc.DossierID,
		Action:    audit.ActionDocumentDeleted,
		Detail:    string(doc.Type),
	}); err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.DocumentsDeleted.Inc()
	}
	return nil
}

func (s *Service) loadDossier(ctx context.Context, dossierID id.DossierID) (*dossiermodels.Dossier, error) {
	dossier, err := s.dossiers.FindByID(ctx, dossierID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "dossier not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeCollaborator, "dossier store unavailable")
	}
	return dossier, nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) error {
	if s.auditor == nil {
		return nil
	}
	if event.BailiffName == "" {
		event.BailiffName = requestcontext.BailiffName(ctx)
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "audit emission failed")
	}
	return nil
}

// wrapStoreErr translates sentinel store errors into coded domain errors.
// Coded errors from validation callbacks pass through untouched.
func wrapStoreErr(err error) error {
	var coded *dErrors.Error
	switch {
	case errors.As(err, &coded):
		return err
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "document not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "document write conflicted")
	default:
		return dErrors.Wrap(err, dErrors.CodeCollaborator, "document store unavailable")
	}
}
