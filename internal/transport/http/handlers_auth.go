package httptransport

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	dErrors "recouvro/pkg/domain-errors"
	"recouvro/pkg/platform/httputil"
	"recouvro/pkg/platform/secrets"
	"recouvro/pkg/requestcontext"
)

// TokenIssuer signs access tokens carrying the bailiff identity.
type TokenIssuer interface {
	GenerateAccessToken(bailiffName string, expiresIn time.Duration) (string, error)
}

// TokenRequest is the body of POST /auth/token.
type TokenRequest struct {
	BailiffName string `json:"huissier"`
	APISecret   string `json:"api_secret"`
}

// TokenResponse carries the issued bearer token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// NewTokenHandler builds the POST /auth/token handler. Callers exchange the
// shared API secret for a short-lived bearer token bound to a bailiff name.
func NewTokenHandler(issuer TokenIssuer, secretHash string, tokenTTL time.Duration, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if secretHash == "" {
			httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "token issuance is not configured"))
			return
		}

		req, ok := httputil.Decode[TokenRequest](w, r)
		if !ok {
			return
		}
		if strings.TrimSpace(req.BailiffName) == "" {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "huissier is required"))
			return
		}

		if err := secrets.Verify(req.APISecret, secretHash); err != nil {
			logger.WarnContext(ctx, "token request rejected",
				"request_id", requestcontext.RequestID(ctx),
				"huissier", req.BailiffName,
			)
			httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid secret"))
			return
		}

		token, err := issuer.GenerateAccessToken(strings.TrimSpace(req.BailiffName), tokenTTL)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}

		logger.InfoContext(ctx, "access token issued",
			"request_id", requestcontext.RequestID(ctx),
			"huissier", req.BailiffName,
		)
		httputil.WriteJSON(w, http.StatusOK, TokenResponse{
			AccessToken: token,
			TokenType:   "Bearer",
			ExpiresIn:   int64(tokenTTL.Seconds()),
		})
	}
}
