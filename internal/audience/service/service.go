// Package service orchestrates audience recording.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"recouvro/internal/audience/models"
	"recouvro/internal/audience/store"
	dossiermodels "recouvro/internal/dossier/models"
	id "recouvro/pkg/domain"
	dErrors "recouvro/pkg/domain-errors"
	audit "recouvro/pkg/platform/audit"
	"recouvro/pkg/platform/sentinel"
	"recouvro/pkg/requestcontext"
)

// DossierReader is the slice of the dossier store this service needs.
type DossierReader interface {
	FindByID(ctx context.Context, dossierID id.DossierID) (*dossiermodels.Dossier, error)
}

// AuditPublisher is the slice of the audit publisher this service needs.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service manages audiences.
type Service struct {
	audiences store.Store
	dossiers  DossierReader
	auditor   AuditPublisher
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

func New(audiences store.Store, dossiers DossierReader, opts ...Option) *Service {
	s := &Service{audiences: audiences, dossiers: dossiers, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create records an audience. The dossier must be open and in the audiences
// stage.
func (s *Service) Create(ctx context.Context, dossierID id.DossierID, dateAudience time.Time, tribunal, resultat string) (*models.Audience, error) {
	now := requestcontext.Now(ctx)

	dossier, err := s.loadDossier(ctx, dossierID)
	if err != nil {
		return nil, err
	}
	if err := dossier.EnsureOpen(); err != nil {
		return nil, err
	}
	if !dossier.EffectiveStage().AllowsAudienceCreation() {
		return nil, dErrors.Newf(dErrors.CodeStageViolation,
			"audiences cannot be recorded in stage %s", dossier.EffectiveStage())
	}

	bailiff := requestcontext.BailiffName(ctx)
	if bailiff == "" {
		bailiff = dossier.BailiffName
	}

	audience, err := models.NewAudience(id.NewAudienceID(), dossierID, dateAudience, tribunal, resultat, bailiff, now)
	if err != nil {
		return nil, err
	}

	if err := s.audiences.Create(ctx, audience); err != nil {
		return nil, wrapStoreErr(err)
	}

	if err := s.emit(ctx, audit.Event{
		DossierID:   dossierID,
		Action:      audit.ActionAudienceRecorded,
		BailiffName: audience.BailiffName,
		Stage:       string(dossier.EffectiveStage()),
		Detail:      audience.Tribunal,
	}); err != nil {
		return nil, err
	}
	return audience, nil
}

// ListByDossier returns a dossier's audiences ordered by hearing date.
func (s *Service) ListByDossier(ctx context.Context, dossierID id.DossierID) ([]*models.Audience, error) {
	audiences, err := s.audiences.ListByDossier(ctx, dossierID)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return audiences, nil
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

func wrapStoreErr(err error) error {
	var coded *dErrors.Error
	switch {
	case errors.As(err, &coded):
		return err
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "audience not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "audience write conflicted")
	default:
		return dErrors.Wrap(err, dErrors.CodeCollaborator, "audience store unavailable")
	}
}
