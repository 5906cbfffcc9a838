// Package service orchestrates the dossier lifecycle: intake, closure,
// reactivation, and the recovered-amount projection refresh.
package service

import (
	"context"
	"errors"
	"log/slog"

	"recouvro/internal/dossier/metrics"
	"recouvro/internal/dossier/models"
	"recouvro/internal/dossier/store"
	id "recouvro/pkg/domain"
	dErrors "recouvro/pkg/domain-errors"
	audit "recouvro/pkg/platform/audit"
	"recouvro/pkg/platform/sentinel"
	"recouvro/pkg/requestcontext"
)

// AuditPublisher is the slice of the audit publisher this service needs.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service manages dossiers.
type Service struct {
	dossiers store.Store
	auditor  AuditPublisher
	metrics  *metrics.Metrics
	logger   *slog.Logger
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

func New(dossiers store.Store, opts ...Option) *Service {
	s := &Service{dossiers: dossiers, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create registers a dossier entering the bailiff pipeline.
func (s *Service) Create(ctx context.Context, reference string, montantCreance float64, bailiffName string) (*models.Dossier, error) {
	now := requestcontext.Now(ctx)
	dossier, err := models.NewDossier(id.NewDossierID(), reference, montantCreance, bailiffName, now)
	if err != nil {
		return nil, err
	}

	if err := s.dossiers.Create(ctx, dossier); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "dossier reference must be unique")
		}
		return nil, wrapStoreErr(err)
	}

	if err := s.emit(ctx, audit.Event{
		DossierID:   dossier.ID,
		Action:      audit.ActionDossierCreated,
		BailiffName: dossier.BailiffName,
		Stage:       string(dossier.EffectiveStage()),
	}); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.DossiersCreated.Inc()
	}
	return dossier, nil
}

// Get loads one dossier.
func (s *Service) Get(ctx context.Context, dossierID id.DossierID) (*models.Dossier, error) {
	if dossierID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "dossier id is required")
	}
	dossier, err := s.dossiers.FindByID(ctx, dossierID)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return dossier, nil
}

// Close freezes a dossier. All document/action/audience mutations are
// rejected afterwards until the dossier is reactivated.
func (s *Service) Close(ctx context.Context, dossierID id.DossierID) (*models.Dossier, error) {
	now := requestcontext.Now(ctx)
	dossier, err := s.dossiers.Execute(ctx, dossierID,
		func(d *models.Dossier) error { return d.CanClose() },
		func(d *models.Dossier) { d.ApplyClosure(now) },
	)
	if err != nil {
		return nil, wrapStoreErr(err)
	}

	if err := s.emit(ctx, audit.Event{
		DossierID: dossier.ID,
		Action:    audit.ActionDossierClosed,
		Stage:     string(dossier.EffectiveStage()),
	}); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.DossiersClosed.Inc()
	}
	return dossier, nil
}

// Reactivate reopens a closed dossier.
func (s *Service) Reactivate(ctx context.Context, dossierID id.DossierID) (*models.Dossier, error) {
	now := requestcontext.Now(ctx)
	dossier, err := s.dossiers.Execute(ctx, dossierID,
		func(d *models.Dossier) error { return d.CanReactivate() },
		func(d *models.Dossier) { d.ApplyReactivation(now) },
	)
	if err != nil {
		return nil, wrapStoreErr(err)
	}

	if err := s.emit(ctx, audit.Event{
		DossierID: dossier.ID,
		Action:    audit.ActionDossierReactivated,
		Stage:     string(dossier.EffectiveStage()),
	}); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.DossiersReactivated.Inc()
	}
	return dossier, nil
}

// RefreshRecovered rewrites the cached recovered-amount projection from the
// authoritative action-ledger sum. Called by the action service after every
// action mutation.
func (s *Service) RefreshRecovered(ctx context.Context, dossierID id.DossierID, total float64) error {
	now := requestcontext.Now(ctx)
	_, err := s.dossiers.Execute(ctx, dossierID,
		func(*models.Dossier) error { return nil },
		func(d *models.Dossier) { d.ApplyRecovered(total, now) },
	)
	if err != nil {
		return wrapStoreErr(err)
	}
	return nil
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
		return dErrors.New(dErrors.CodeNotFound, "dossier not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "dossier write conflicted")
	default:
		return dErrors.Wrap(err, dErrors.CodeCollaborator, "dossier store unavailable")
	}
}
