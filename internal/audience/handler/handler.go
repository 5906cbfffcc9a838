// Package handler wires audience endpoints to the audience service.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"recouvro/internal/audience/models"
	id "recouvro/pkg/domain"
	dErrors "recouvro/pkg/domain-errors"
	"recouvro/pkg/platform/httputil"
	"recouvro/pkg/requestcontext"
)

// Service defines the interface for audience operations.
type Service interface {
	Create(ctx context.Context, dossierID id.DossierID, dateAudience time.Time, tribunal, resultat string) (*models.Audience, error)
	ListByDossier(ctx context.Context, dossierID id.DossierID) ([]*models.Audience, error)
}

// Handler serves the audience endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts audience endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/dossiers/{dossierID}/audiences", h.HandleCreate)
	r.Get("/dossiers/{dossierID}/audiences", h.HandleList)
}

// CreateRequest is the body of POST /dossiers/{dossierID}/audiences.
type CreateRequest struct {
	DateAudience time.Time `json:"date_audience"`
	Tribunal     string    `json:"tribunal"`
	Resultat     string    `json:"resultat,omitempty"`
}

// HandleCreate handles POST /dossiers/{dossierID}/audiences.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	dossierID, err := id.ParseDossierID(chi.URLParam(r, "dossierID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid dossier id"))
		return
	}

	req, ok := httputil.Decode[CreateRequest](w, r)
	if !ok {
		return
	}

	audience, err := h.service.Create(ctx, dossierID, req.DateAudience, req.Tribunal, req.Resultat)
	if err != nil {
		h.logger.ErrorContext(ctx, "audience creation failed",
			"request_id", requestcontext.RequestID(ctx),
			"dossier_id", dossierID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "audience recorded",
		"request_id", requestcontext.RequestID(ctx),
		"dossier_id", dossierID,
		"audience_id", audience.ID,
	)
	httputil.WriteJSON(w, http.StatusCreated, audience)
}

// HandleList handles GET /dossiers/{dossierID}/audiences.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	dossierID, err := id.ParseDossierID(chi.URLParam(r, "dossierID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid dossier id"))
		return
	}

	audiences, err := h.service.ListByDossier(ctx, dossierID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"audiences": audiences})
}
