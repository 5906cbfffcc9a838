// Package service orchestrates the recovery-action ledger: recording
// seizures, editing them, and keeping the cumulative/remaining amounts
// consistent with the dossier projection.
package service

import (
	"context"
	"errors"
	"log/slog"

	"recouvro/internal/action/metrics"
	"recouvro/internal/action/models"
	"recouvro/internal/action/store"
	dossiermodels "recouvro/internal/dossier/models"
	id "recouvro/pkg/domain"
	dErrors "recouvro/pkg/domain-errors"
	audit "recouvro/pkg/platform/audit"
	"recouvro/pkg/platform/sentinel"
	"recouvro/pkg/requestcontext"
)

// Dossiers is the slice of the dossier service this service needs: loading a
// dossier for its gates and pushing the recovered-amount projection back.
type Dossiers interface {
	Get(ctx context.Context, dossierID id.DossierID) (*dossiermodels.Dossier, error)
	RefreshRecovered(ctx context.Context, dossierID id.DossierID, total float64) error
}

// AuditPublisher is the slice of the audit publisher this service needs.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Totals is the recovered/remaining summary returned alongside mutations so
// callers can refresh their view without a second round trip.
type Totals struct {
	CumulativeRecovered float64 `json:"montant_recupere_cumule"`
	Remaining           float64 `json:"montant_restant"`
}

// Service manages recovery actions.
type Service struct {
	actions  store.Store
	dossiers Dossiers
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

func New(actions store.Store, dossiers Dossiers, opts ...Option) *Service {
	s := &Service{actions: actions, dossiers: dossiers, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateParams carries the caller-supplied fields for recording an action.
type CreateParams struct {
	Type          models.ActionType
	Amount        float64
	StateHint     models.StateHint
	AttachmentRef string
}

// Create records a seizure against a dossier. The dossier must be open and in
// the actions stage; the bailiff identity falls back to the dossier's
// assigned bailiff when the request carries none.
func (s *Service) Create(ctx context.Context, dossierID id.DossierID, params CreateParams) (*models.RecoveryAction, *Totals, error) {
	now := requestcontext.Now(ctx)

	dossier, err := s.dossiers.Get(ctx, dossierID)
	if err != nil {
		return nil, nil, err
	}
	if err := dossier.EnsureOpen(); err != nil {
		return nil, nil, err
	}
	if !dossier.EffectiveStage().AllowsActionCreation() {
		return nil, nil, dErrors.Newf(dErrors.CodeStageViolation,
			"actions cannot be recorded in stage %s", dossier.EffectiveStage())
	}

	bailiff := requestcontext.BailiffName(ctx)
	if bailiff == "" {
		bailiff = dossier.BailiffName
	}

	action, err := models.NewRecoveryAction(id.NewActionID(), dossierID, params.Type, bailiff, params.Amount, params.StateHint, params.AttachmentRef, now)
	if err != nil {
		return nil, nil, err
	}

	totals, err := s.projectTotals(ctx, dossier, nil, action.MontantRecupere)
	if err != nil {
		return nil, nil, err
	}
	action.MontantRestant = totals.Remaining

	if err := s.actions.Create(ctx, action); err != nil {
		return nil, nil, wrapStoreErr(err)
	}
	if err := s.dossiers.RefreshRecovered(ctx, dossierID, totals.CumulativeRecovered); err != nil {
		return nil, nil, err
	}

	if err := s.emit(ctx, audit.Event{
		DossierID:   dossierID,
		Action:      audit.ActionRecoveryRecorded,
		BailiffName: action.BailiffName,
		Stage:       string(dossier.EffectiveStage()),
		Amount:      action.MontantRecupere,
		Detail:      string(action.Type),
	}); err != nil {
		return nil, nil, err
	}

	if s.metrics != nil {
		s.metrics.ActionsRecorded.WithLabelValues(string(action.Type)).Inc()
		s.metrics.AmountRecovered.Add(action.MontantRecupere)
	}
	return action, totals, nil
}

// UpdateParams carries the editable fields of an action.
type UpdateParams struct {
	Type          models.ActionType
	Amount        float64
	StateHint     models.StateHint
	AttachmentRef string
}

// Update edits an action. The cumulative sum excludes the action's own prior
// amount before the new amount is added back, so edits never double-count.
func (s *Service) Update(ctx context.Context, actionID id.ActionID, params UpdateParams) (*models.RecoveryAction, *Totals, error) {
	now := requestcontext.Now(ctx)

	existing, err := s.actions.FindByID(ctx, actionID)
	if err != nil {
		return nil, nil, wrapStoreErr(err)
	}

	dossier, err := s.dossiers.Get(ctx, existing.DossierID)
	if err != nil {
		return nil, nil, err
	}
	if err := dossier.EnsureOpen(); err != nil {
		return nil, nil, err
	}
	if !dossier.EffectiveStage().AllowsActionCreation() {
		return nil, nil, dErrors.Newf(dErrors.CodeStageViolation,
			"actions cannot be edited in stage %s", dossier.EffectiveStage())
	}

	bailiff := existing.BailiffName
	if name := requestcontext.BailiffName(ctx); name != "" {
		bailiff = name
	}

	updated, err := models.NewRecoveryAction(existing.ID, existing.DossierID, params.Type, bailiff, params.Amount, params.StateHint, params.AttachmentRef, existing.CreatedAt)
	if err != nil {
		return nil, nil, err
	}
	updated.UpdatedAt = now

	totals, err := s.projectTotals(ctx, dossier, &existing.ID, updated.MontantRecupere)
	if err != nil {
		return nil, nil, err
	}
	updated.MontantRestant = totals.Remaining

	if err := s.actions.Update(ctx, updated); err != nil {
		return nil, nil, wrapStoreErr(err)
	}
	if err := s.dossiers.RefreshRecovered(ctx, updated.DossierID, totals.CumulativeRecovered); err != nil {
		return nil, nil, err
	}

	if err := s.emit(ctx, audit.Event{
		DossierID:   updated.DossierID,
		Action:      audit.ActionRecoveryUpdated,
		BailiffName: updated.BailiffName,
		Amount:      updated.MontantRecupere,
		Detail:      string(updated.Type),
	}); err != nil {
		return nil, nil, err
	}

	if s.metrics != nil {
		s.metrics.ActionsUpdated.Inc()
	}
	return updated, totals, nil
}

// Delete removes an action and refreshes the dossier projection from the
// remaining ledger entries. Existence is the only gate.
func (s *Service) Delete(ctx context.Context, actionID id.ActionID) error {
	existing, err := s.actions.FindByID(ctx, actionID)
	if err != nil {
		return wrapStoreErr(err)
	}

	if err := s.actions.Delete(ctx, actionID); err != nil {
		return wrapStoreErr(err)
	}

	sum, err := s.actions.SumByDossier(ctx, existing.DossierID, nil)
	if err != nil {
		return wrapStoreErr(err)
	}
	if err := s.dossiers.RefreshRecovered(ctx, existing.DossierID, sum); err != nil {
		return err
	}

	if err := s.emit(ctx, audit.Event{
		DossierID: existing.DossierID,
		Action:    audit.ActionRecoveryDeleted,
		Amount:    existing.MontantRecupere,
		Detail:    string(existing.Type),
	}); err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.ActionsDeleted.Inc()
	}
	return nil
}

// ListByDossier returns a dossier's actions in creation order.
func (s *Service) ListByDossier(ctx context.Context, dossierID id.DossierID) ([]*models.RecoveryAction, error) {
	actions, err := s.actions.ListByDossier(ctx, dossierID)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return actions, nil
}

// CumulativeRecovered reconciles the action-ledger sum with the dossier's
// recorded recovered amount, optionally excluding one action during an edit.
func (s *Service) CumulativeRecovered(ctx context.Context, dossierID id.DossierID, exclude *id.ActionID) (float64, error) {
	dossier, err := s.dossiers.Get(ctx, dossierID)
	if err != nil {
		return 0, err
	}
	sum, err := s.actions.SumByDossier(ctx, dossierID, exclude)
	if err != nil {
		return 0, wrapStoreErr(err)
	}
	return models.Reconcile(sum, dossier.MontantRecupere), nil
}

// projectTotals computes the post-write cumulative and remaining amounts for
// a pending mutation that contributes newAmount, excluding the action being
// edited from the stored sum.
func (s *Service) projectTotals(ctx context.Context, dossier *dossiermodels.Dossier, exclude *id.ActionID, newAmount float64) (*Totals, error) {
	sum, err := s.actions.SumByDossier(ctx, dossier.ID, exclude)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	cumulative := models.Reconcile(sum+newAmount, dossier.MontantRecupere)
	return &Totals{
		CumulativeRecovered: cumulative,
		Remaining:           models.Remaining(dossier.MontantCreance, cumulative),
	}, nil
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
// Coded errors pass through untouched.
func wrapStoreErr(err error) error {
	var coded *dErrors.Error
	switch {
	case errors.As(err, &coded):
		return err
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "action not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "action write conflicted")
	default:
		return dErrors.Wrap(err, dErrors.CodeCollaborator, "action store unavailable")
	}
}
