package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"recouvro/pkg/requestcontext"
)

// JWTValidator defines the interface for validating access tokens.
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// JWTClaims represents the claims we expect from the JWT validator.
type JWTClaims struct {
	BailiffName string
}

// RequireAuth validates the bearer token and stores the bailiff identity in
// the request context. Requests without a valid token get 401.
func RequireAuth(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := r.Header.Get("Authorization")
			if !strings.HasPrefix(authz, "Bearer ") {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}
			claims, err := validator.ValidateToken(strings.TrimPrefix(authz, "Bearer "))
			if err != nil {
				logger.WarnContext(r.Context(), "token validation failed",
					"request_id", requestcontext.RequestID(r.Context()),
					"error", err.Error(),
				)
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			ctx := requestcontext.WithBailiffName(r.Context(), claims.BailiffName)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
