// Package handler wires progression endpoints to the progression service.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	dossiermodels "recouvro/internal/dossier/models"
	"recouvro/internal/progression/service"
	id "recouvro/pkg/domain"
	dErrors "recouvro/pkg/domain-errors"
	"recouvro/pkg/platform/httputil"
	"recouvro/pkg/requestcontext"
)

// Service defines the interface for progression operations.
type Service interface {
	View(ctx context.Context, dossierID id.DossierID) (*service.View, error)
	AdvanceToActions(ctx context.Context, dossierID id.DossierID) (*dossiermodels.Dossier, error)
	AdvanceToAudiences(ctx context.Context, dossierID id.DossierID) (*dossiermodels.Dossier, error)
	HandToFinance(ctx context.Context, dossierID id.DossierID) (*dossiermodels.Dossier, error)
}

// Handler serves the progression endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts progression endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/dossiers/{dossierID}/progression", h.HandleView)
	r.Post("/dossiers/{dossierID}/advance-to-actions", h.transition("advance to actions", h.service.AdvanceToActions))
	r.Post("/dossiers/{dossierID}/advance-to-audiences", h.transition("advance to audiences", h.service.AdvanceToAudiences))
	r.Post("/dossiers/{dossierID}/hand-to-finance", h.transition("hand to finance", h.service.HandToFinance))
}

// HandleView handles GET /dossiers/{dossierID}/progression.
func (h *Handler) HandleView(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	dossierID, err := id.ParseDossierID(chi.URLParam(r, "dossierID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid dossier id"))
		return
	}

	view, err := h.service.View(ctx, dossierID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

// transition builds a handler for one stage-transition command. The commands
// share their shape: parse the dossier id, run the command, return the
// updated dossier.
func (h *Handler) transition(name string, command func(context.Context, id.DossierID) (*dossiermodels.Dossier, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		dossierID, err := id.ParseDossierID(chi.URLParam(r, "dossierID"))
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid dossier id"))
			return
		}

		dossier, err := command(ctx, dossierID)
		if err != nil {
			h.logger.ErrorContext(ctx, "stage transition failed",
				"request_id", requestcontext.RequestID(ctx),
				"dossier_id", dossierID,
				"transition", name,
				"error", err,
			)
			httputil.WriteError(w, err)
			return
		}

		h.logger.InfoContext(ctx, "stage transition applied",
			"request_id", requestcontext.RequestID(ctx),
			"dossier_id", dossierID,
			"transition", name,
			"stage", dossier.EffectiveStage(),
		)
		httputil.WriteJSON(w, http.StatusOK, dossier)
	}
}
