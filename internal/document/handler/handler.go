// Package handler wires document endpoints to the document service.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"recouvro/internal/document/models"
	"recouvro/internal/document/service"
	id "recouvro/pkg/domain"
	dErrors "recouvro/pkg/domain-errors"
	"recouvro/pkg/platform/httputil"
	"recouvro/pkg/requestcontext"
)

// Service defines the interface for document operations.
type Service interface {
	Create(ctx context.Context, dossierID id.DossierID, docType models.DocumentType, attachmentRef string) (*service.View, error)
	Get(ctx context.Context, documentID id.DocumentID) (*service.View, error)
	ListByDossier(ctx context.Context, dossierID id.DossierID) ([]service.View, error)
	Complete(ctx context.Context, documentID id.DocumentID) (*service.View, error)
	Delete(ctx context.Context, documentID id.DocumentID) error
}

// Handler serves the legal-document endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts document endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/dossiers/{dossierID}/documents", h.HandleCreate)
	r.Get("/dossiers/{dossierID}/documents", h.HandleList)
	r.Get("/documents/{documentID}", h.HandleGet)
	r.Post("/documents/{documentID}/complete", h.HandleComplete)
	r.Delete("/documents/{documentID}", h.HandleDelete)
}

// CreateRequest is the body of POST /dossiers/{dossierID}/documents.
type CreateRequest struct {
	Type          string `json:"type"`
	AttachmentRef string `json:"attachment_ref,omitempty"`
}

// HandleCreate handles POST /dossiers/{dossierID}/documents.
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

	view, err := h.service.Create(ctx, dossierID, models.DocumentType(req.Type), req.AttachmentRef)
	if err != nil {
		h.logger.ErrorContext(ctx, "document creation failed",
			"request_id", requestcontext.RequestID(ctx),
			"dossier_id", dossierID,
			"type", req.Type,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "document created",
		"request_id", requestcontext.RequestID(ctx),
		"dossier_id", dossierID,
		"document_id", view.ID,
		"type", view.Type,
	)
	httputil.WriteJSON(w, http.StatusCreated, view)
}

// HandleList handles GET /dossiers/{dossierID}/documents.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	dossierID, err := id.ParseDossierID(chi.URLParam(r, "dossierID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid dossier id"))
		return
	}

	views, err := h.service.ListByDossier(ctx, dossierID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"documents": views})
}

// HandleGet handles GET /documents/{documentID}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	documentID, err := id.ParseDocumentID(chi.URLParam(r, "documentID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid document id"))
		return
	}

	view, err := h.service.Get(ctx, documentID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

// HandleComplete handles POST /documents/{documentID}/complete.
func (h *Handler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	documentID, err := id.ParseDocumentID(chi.URLParam(r, "documentID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid document id"))
		return
	}

	view, err := h.service.Complete(ctx, documentID)
	if err != nil {
		h.logger.ErrorContext(ctx, "document completion failed",
			"request_id", requestcontext.RequestID(ctx),
			"document_id", documentID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "document completed",
		"request_id", requestcontext.RequestID(ctx),
		"document_id", documentID,
	)
	httputil.WriteJSON(w, http.StatusOK, view)
}

// HandleDelete handles DELETE /documents/{documentID}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	documentID, err := id.ParseDocumentID(chi.URLParam(r, "documentID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid document id"))
		return
	}

	if err := h.service.Delete(ctx, documentID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
