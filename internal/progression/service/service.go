// Package service executes the gated stage transitions and serves the
// progression view consumed by UI callers.
package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	actionmodels "recouvro/internal/action/models"
	dossiermodels "recouvro/internal/dossier/models"
	dossierstore "recouvro/internal/dossier/store"
	"recouvro/internal/progression"
	"recouvro/internal/progression/metrics"
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

// View is the progression read model: the dossier, its collections, the
// affordance flags, and the recovered/remaining totals.
type View struct {
	Dossier             *dossiermodels.Dossier `json:"dossier"`
	DocumentCount       int                    `json:"document_count"`
	ActionCount         int                    `json:"action_count"`
	AudienceCount       int                    `json:"audience_count"`
	CumulativeRecovered float64                `json:"montant_recupere_cumule"`
	Remaining           float64                `json:"montant_restant"`

	CanCreateDocument     bool `json:"can_create_document"`
	CanCreateAction       bool `json:"can_create_action"`
	CanCreateAudience     bool `json:"can_create_audience"`
	CanAdvanceToActions   bool `json:"can_advance_to_actions"`
	CanAdvanceToAudiences bool `json:"can_advance_to_audiences"`
	CanHandToFinance      bool `json:"can_hand_to_finance"`
}

// Service executes progression commands against the dossier store while the
// loader supplies the eligibility snapshot.
type Service struct {
	dossiers dossierstore.Store
	loader   *progression.Loader
	auditor  AuditPublisher
	metrics  *metrics.Metrics
	logger   *slog.Logger
	tracer   trace.Tracer
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

func New(dossiers dossierstore.Store, loader *progression.Loader, opts ...Option) *Service {
	s := &Service{
		dossiers: dossiers,
		loader:   loader,
		logger:   slog.Default(),
		tracer:   otel.Tracer("recouvro/progression"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// View assembles the progression read model for one dossier.
func (s *Service) View(ctx context.Context, dossierID id.DossierID) (*View, error) {
	ctx, span := s.tracer.Start(ctx, "progression.View",
		trace.WithAttributes(attribute.String("dossier.id", dossierID.String())))
	defer span.End()

	snap, err := s.loader.Load(ctx, dossierID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "snapshot load failed")
		return nil, err
	}

	var sum float64
	for _, action := range snap.Actions {
		sum += action.MontantRecupere
	}
	cumulative := actionmodels.Reconcile(sum, snap.Dossier.MontantRecupere)

	return &View{
		Dossier:             snap.Dossier,
		DocumentCount:       len(snap.Documents),
		ActionCount:         len(snap.Actions),
		AudienceCount:       len(snap.Audiences),
		CumulativeRecovered: cumulative,
		Remaining:           actionmodels.Remaining(snap.Dossier.MontantCreance, cumulative),

		CanCreateDocument:     snap.CanCreateDocument(),
		CanCreateAction:       snap.CanCreateAction(),
		CanCreateAudience:     snap.CanCreateAudience(),
		CanAdvanceToActions:   snap.CanAdvanceToActions(),
		CanAdvanceToAudiences: snap.CanAdvanceToAudiences(),
		CanHandToFinance:      snap.CanHandToFinance(),
	}, nil
}

// AdvanceToActions moves the dossier from EN_ATTENTE_DOCUMENTS to EN_ACTIONS.
// Requires at least one recorded document.
func (s *Service) AdvanceToActions(ctx context.Context, dossierID id.DossierID) (*dossiermodels.Dossier, error) {
	return s.advance(ctx, dossierID, dossiermodels.StageActions, func(snap *progression.Snapshot) error {
		if len(snap.Documents) == 0 {
			return dErrors.New(dErrors.CodePreconditionFailed, "at least one document is required before advancing to actions")
		}
		return nil
	})
}

// AdvanceToAudiences moves the dossier from EN_ACTIONS to EN_AUDIENCES.
// Requires at least one recorded action.
func (s *Service) AdvanceToAudiences(ctx context.Context, dossierID id.DossierID) (*dossiermodels.Dossier, error) {
	return s.advance(ctx, dossierID, dossiermodels.StageAudiences, func(snap *progression.Snapshot) error {
		if len(snap.Actions) == 0 {
			return dErrors.New(dErrors.CodePreconditionFailed, "at least one action is required before advancing to audiences")
		}
		return nil
	})
}

func (s *Service) advance(ctx context.Context, dossierID id.DossierID, target dossiermodels.Stage, precondition func(*progression.Snapshot) error) (*dossiermodels.Dossier, error) {
	ctx, span := s.tracer.Start(ctx, "progression.Advance",
		trace.WithAttributes(
			attribute.String("dossier.id", dossierID.String()),
			attribute.String("stage.target", string(target)),
		))
	defer span.End()

	now := requestcontext.Now(ctx)

	snap, err := s.loader.Load(ctx, dossierID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := precondition(snap); err != nil {
		s.countBlocked(target)
		span.SetStatus(codes.Error, "precondition failed")
		return nil, err
	}

	// The authoritative stage check re-runs under the store's row lock; the
	// snapshot only served the precondition counts.
	dossier, err := s.dossiers.Execute(ctx, dossierID,
		func(d *dossiermodels.Dossier) error { return d.CanAdvanceTo(target) },
		func(d *dossiermodels.Dossier) { d.ApplyStage(target, now) },
	)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeStageViolation) || dErrors.HasCode(err, dErrors.CodeCaseClosed) {
			s.countBlocked(target)
		}
		span.RecordError(err)
		return nil, wrapStoreErr(err)
	}

	if err := s.emit(ctx, audit.Event{
		DossierID: dossier.ID,
		Action:    audit.ActionStageAdvanced,
		Stage:     string(dossier.EffectiveStage()),
		Detail:    string(target),
	}); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.StageAdvances.WithLabelValues(string(target)).Inc()
	}
	s.logger.InfoContext(ctx, "stage advanced",
		"dossier_id", dossier.ID,
		"stage", dossier.EffectiveStage(),
	)
	return dossier, nil
}

// HandToFinance transfers the dossier to the finance department. The rule is
// stage-independent: any open dossier with at least one action or audience
// qualifies, and the transition is terminal for the bailiff sub-workflow.
func (s *Service) HandToFinance(ctx context.Context, dossierID id.DossierID) (*dossiermodels.Dossier, error) {
	ctx, span := s.tracer.Start(ctx, "progression.HandToFinance",
		trace.WithAttributes(attribute.String("dossier.id", dossierID.String())))
	defer span.End()

	now := requestcontext.Now(ctx)

	snap, err := s.loader.Load(ctx, dossierID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if len(snap.Actions) == 0 && len(snap.Audiences) == 0 {
		s.countBlocked(dossiermodels.StageFinance)
		span.SetStatus(codes.Error, "precondition failed")
		return nil, dErrors.New(dErrors.CodePreconditionFailed, "at least one action or audience is required before handing to finance")
	}

	dossier, err := s.dossiers.Execute(ctx, dossierID,
		func(d *dossiermodels.Dossier) error {
			if err := d.EnsureOpen(); err != nil {
				return err
			}
			if d.EffectiveStage().IsTerminal() {
				return dErrors.New(dErrors.CodeConflict, "dossier is already handed to finance")
			}
			return nil
		},
		func(d *dossiermodels.Dossier) { d.ApplyHandToFinance(now) },
	)
	if err != nil {
		span.RecordError(err)
		return nil, wrapStoreErr(err)
	}

	if err := s.emit(ctx, audit.Event{
		DossierID: dossier.ID,
		Action:    audit.ActionHandedToFinance,
		Stage:     string(dossier.EffectiveStage()),
	}); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.FinanceHandoffs.Inc()
	}
	s.logger.InfoContext(ctx, "dossier handed to finance", "dossier_id", dossier.ID)
	return dossier, nil
}

func (s *Service) countBlocked(target dossiermodels.Stage) {
	if s.metrics != nil {
		s.metrics.BlockedTransitions.WithLabelValues(string(target)).Inc()
	}
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
		return dErrors.New(dErrors.CodeNotFound, "dossier not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "dossier write conflicted")
	default:
		return dErrors.Wrap(err, dErrors.CodeCollaborator, "dossier store unavailable")
	}
}
