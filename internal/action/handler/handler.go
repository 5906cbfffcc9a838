// Package handler wires recovery-action endpoints to the action service.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"recouvro/internal/action/models"
	"recouvro/internal/action/service"
	id "recouvro/pkg/domain"
	dErrors "recouvro/pkg/domain-errors"
	"recouvro/pkg/platform/httputil"
	"recouvro/pkg/requestcontext"
)

// Service defines the interface for action operations.
type Service interface {
	Create(ctx context.Context, dossierID id.DossierID, params service.CreateParams) (*models.RecoveryAction, *service.Totals, error)
	Update(ctx context.Context, actionID id.ActionID, params service.UpdateParams) (*models.RecoveryAction, *service.Totals, error)
	Delete(ctx context.Context, actionID id.ActionID) error
	ListByDossier(ctx context.Context, dossierID id.DossierID) ([]*models.RecoveryAction, error)
}

// Handler serves the recovery-action endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts action endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/dossiers/{dossierID}/actions", h.HandleCreate)
	r.Get("/dossiers/{dossierID}/actions", h.HandleList)
	r.Put("/actions/{actionID}", h.HandleUpdate)
	r.Delete("/actions/{actionID}", h.HandleDelete)
}

// ActionRequest is the body of create and update calls.
type ActionRequest struct {
	Type           string  `json:"type"`
	Amount         float64 `json:"montant_recupere"`
	ResultingState string  `json:"etat_resultant,omitempty"`
	AttachmentRef  string  `json:"attachment_ref,omitempty"`
}

// ActionResponse pairs the persisted action with the refreshed totals.
type ActionResponse struct {
	Action *models.RecoveryAction `json:"action"`
	Totals *service.Totals        `json:"totals"`
}

// HandleCreate handles POST /dossiers/{dossierID}/actions.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	dossierID, err := id.ParseDossierID(chi.URLParam(r, "dossierID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid dossier id"))
		return
	}

	req, ok := httputil.Decode[ActionRequest](w, r)
	if !ok {
		return
	}

	action, totals, err := h.service.Create(ctx, dossierID, service.CreateParams{
		Type:          models.ActionType(req.Type),
		Amount:        req.Amount,
		StateHint:     models.StateHint(req.ResultingState),
		AttachmentRef: req.AttachmentRef,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "action creation failed",
			"request_id", requestcontext.RequestID(ctx),
			"dossier_id", dossierID,
			"type", req.Type,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "action recorded",
		"request_id", requestcontext.RequestID(ctx),
		"dossier_id", dossierID,
		"action_id", action.ID,
		"amount", action.MontantRecupere,
	)
	httputil.WriteJSON(w, http.StatusCreated, ActionResponse{Action: action, Totals: totals})
}

// HandleList handles GET /dossiers/{dossierID}/actions.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	dossierID, err := id.ParseDossierID(chi.URLParam(r, "dossierID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid dossier id"))
		return
	}

	actions, err := h.service.ListByDossier(ctx, dossierID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"actions": actions})
}

// HandleUpdate handles PUT /actions/{actionID}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actionID, err := id.ParseActionID(chi.URLParam(r, "actionID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid action id"))
		return
	}

	req, ok := httputil.Decode[ActionRequest](w, r)
	if !ok {
		return
	}

	action, totals, err := h.service.Update(ctx, actionID, service.UpdateParams{
		Type:          models.ActionType(req.Type),
		Amount:        req.Amount,
		StateHint:     models.StateHint(req.ResultingState),
		AttachmentRef: req.AttachmentRef,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "action update failed",
			"request_id", requestcontext.RequestID(ctx),
			"action_id", actionID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ActionResponse{Action: action, Totals: totals})
}

// HandleDelete handles DELETE /actions/{actionID}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actionID, err := id.ParseActionID(chi.URLParam(r, "actionID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid action id"))
		return
	}

	if err := h.service.Delete(ctx, actionID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
