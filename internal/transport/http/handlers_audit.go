package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	id "recouvro/pkg/domain"
	dErrors "recouvro/pkg/domain-errors"
	audit "recouvro/pkg/platform/audit"
	"recouvro/pkg/platform/httputil"
)

// AuditHandler serves the per-dossier audit trail.
type AuditHandler struct {
	store  audit.Store
	logger *slog.Logger
}

func NewAuditHandler(store audit.Store, logger *slog.Logger) *AuditHandler {
	return &AuditHandler{store: store, logger: logger}
}

// Register mounts the audit endpoint on the router.
func (h *AuditHandler) Register(r chi.Router) {
	r.Get("/dossiers/{dossierID}/audit", h.HandleList)
}

// HandleList handles GET /dossiers/{dossierID}/audit.
func (h *AuditHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	dossierID, err := id.ParseDossierID(chi.URLParam(r, "dossierID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid dossier id"))
		return
	}

	events, err := h.store.ListByDossier(ctx, dossierID)
	if err != nil {
		h.logger.ErrorContext(ctx, "audit trail read failed", "dossier_id", dossierID, "error", err)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeCollaborator, "audit store unavailable"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"events": events})
}
