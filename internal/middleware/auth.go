package middleware

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/universal-crud/backend-go/internal/auth"
	"github.com/universal-crud/backend-go/internal/respond"
)

// Authenticate verifies the Bearer token and stores the caller's principal in
// the request context. Authorization decisions read the token claims; only
// /api/auth/verify goes back to the database for fresh user data.
func Authenticate(tokens *auth.TokenManager) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				respond.Error(w, http.StatusUnauthorized, "Access token required")
				return
			}

			claims, err := tokens.Parse(token)
			if err != nil {
				respond.Error(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			principal := &auth.Principal{
				UserID:   claims.UserID,
				Username: claims.Username,
				Role:     claims.Role,
			}
			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), principal)))
		})
	}
}

// RequireAdmin rejects callers without the admin role. Must run after
// Authenticate.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := auth.FromContext(r.Context())
		if !ok {
			respond.Error(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		if !principal.IsAdmin() {
			respond.Error(w, http.StatusForbidden, "Insufficient permissions")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}
