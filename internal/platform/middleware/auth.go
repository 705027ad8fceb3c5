package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	authmodels "portaria/internal/auth/models"
	"portaria/pkg/requestcontext"
)

// TokenVerifier validates a bearer token and returns the principal it
// belongs to. The auth service implements it; session revocation is checked
// there, not here.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*authmodels.Operator, error)
}

// RequireAuth guards state-changing and listing routes. The operator id and
// name land in the request context for services to attribute actions to.
func RequireAuth(verifier TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(r.Context(), "unauthorized access - missing token",
					"request_id", requestcontext.RequestID(r.Context()),
				)
				unauthorized(w, "Missing or invalid Authorization header")
				return
			}

			operator, err := verifier.Verify(r.Context(), token)
			if err != nil {
				logger.WarnContext(r.Context(), "unauthorized access - invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(r.Context()),
				)
				unauthorized(w, "Invalid or expired token")
				return
			}

			ctx := requestcontext.WithOperatorID(r.Context(), operator.ID.String())
			ctx = requestcontext.WithOperatorName(ctx, operator.Name)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","message":"` + description + `"}`))
}
