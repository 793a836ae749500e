package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/example/inventory-api/internal/auth"
)

type contextKey string

// claimsContextKey carries the authenticated principal's claims.
const claimsContextKey contextKey = "claims"

// requireAuth rejects requests without a valid bearer access token
// before any handler logic runs.
func (h *HTTPHandler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication credentials were not provided"})
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid authorization header"})
			return
		}

		claims, err := h.auth.ValidateAccessToken(token)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "token is invalid or expired"})
			return
		}

		ctx := context.WithValue(r.Context(), claimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClaimsFromContext returns the claims stored by requireAuth, nil when
// the request was not authenticated.
func ClaimsFromContext(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsContextKey).(*auth.Claims)
	return claims
}
