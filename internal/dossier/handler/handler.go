// Package handler wires dossier lifecycle endpoints to the dossier service.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"recouvro/internal/dossier/models"
	id "recouvro/pkg/domain"
	dErrors "recouvro/pkg/domain-errors"
	"recouvro/pkg/platform/httputil"
	"recouvro/pkg/requestcontext"
)

// Service defines the interface for dossier lifecycle operations.
type Service interface {
	Create(ctx context.Context, reference string, montantCreance float64, bailiffName string) (*models.Dossier, error)
	Get(ctx context.Context, dossierID id.DossierID) (*models.Dossier, error)
	Close(ctx context.Context, dossierID id.DossierID) (*models.Dossier, error)
	Reactivate(ctx context.Context, dossierID id.DossierID) (*models.Dossier, error)
}

// Handler serves the dossier endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts dossier endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/dossiers", h.HandleCreate)
	r.Get("/dossiers/{dossierID}", h.HandleGet)
	r.Post("/dossiers/{dossierID}/close", h.HandleClose)
	r.Post("/dossiers/{dossierID}/reactivate", h.HandleReactivate)
}

// CreateRequest is the body of POST /dossiers.
type CreateRequest struct {
	Reference      string  `json:"reference"`
	MontantCreance float64 `json:"montant_creance"`
	BailiffName    string  `json:"huissier,omitempty"`
}

// HandleCreate handles POST /dossiers.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.Decode[CreateRequest](w, r)
	if !ok {
		return
	}

	bailiff := req.BailiffName
	if bailiff == "" {
		bailiff = requestcontext.BailiffName(ctx)
	}

	dossier, err := h.service.Create(ctx, req.Reference, req.MontantCreance, bailiff)
	if err != nil {
		h.logger.ErrorContext(ctx, "dossier creation failed",
			"request_id", requestcontext.RequestID(ctx),
			"reference", req.Reference,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "dossier created",
		"request_id", requestcontext.RequestID(ctx),
		"dossier_id", dossier.ID,
		"reference", dossier.Reference,
	)
	httputil.WriteJSON(w, http.StatusCreated, dossier)
}

// HandleGet handles GET /dossiers/{dossierID}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	dossierID, err := id.ParseDossierID(chi.URLParam(r, "dossierID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid dossier id"))
		return
	}

	dossier, err := h.service.Get(ctx, dossierID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, dossier)
}

// HandleClose handles POST /dossiers/{dossierID}/close.
func (h *Handler) HandleClose(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, "close", h.service.Close)
}

// HandleReactivate handles POST /dossiers/{dossierID}/reactivate.
func (h *Handler) HandleReactivate(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, "reactivate", h.service.Reactivate)
}

func (h *Handler) lifecycle(w http.ResponseWriter, r *http.Request, name string, command func(context.Context, id.DossierID) (*models.Dossier, error)) {
	ctx := r.Context()

	dossierID, err := id.ParseDossierID(chi.URLParam(r, "dossierID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid dossier id"))
		return
	}

	dossier, err := command(ctx, dossierID)
	if err != nil {
		h.logger.ErrorContext(ctx, "dossier lifecycle command failed",
			"request_id", requestcontext.RequestID(ctx),
			"dossier_id", dossierID,
			"command", name,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "dossier lifecycle command applied",
		"request_id", requestcontext.RequestID(ctx),
		"dossier_id", dossierID,
		"command", name,
	)
	httputil.WriteJSON(w, http.StatusOK, dossier)
}
