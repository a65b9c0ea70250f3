package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/jmoiron/sqlx"

	"coastal-guardian-backend-go/internal/models"
	"coastal-guardian-backend-go/internal/services"
)

type contextKey string

const ctxUser contextKey = "user"

// WithAuth verifies the bearer token and resolves its subject. Requests with
// a missing, malformed or expired token, or whose subject no longer exists
// or is deactivated, are rejected with 401.
func WithAuth(db *sqlx.DB, tokens services.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
				WriteError(w, http.StatusUnauthorized, "No token provided, authorization denied")
				return
			}
			tokenStr := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			userID, err := tokens.Subject(tokenStr, "access")
			if err != nil {
				WriteError(w, http.StatusUnauthorized, "Token is not valid")
				return
			}
			user, err := services.FetchUser(db, userID)
			if err != nil {
				WriteError(w, http.StatusUnauthorized, "Token is not valid")
				return
			}
			if !user.IsActive {
				WriteError(w, http.StatusUnauthorized, "User account is deactivated")
				return
			}
			ctx := context.WithValue(r.Context(), ctxUser, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CurrentUser returns the authenticated user attached by WithAuth.
func CurrentUser(r *http.Request) (models.User, bool) {
	user, ok := r.Context().Value(ctxUser).(models.User)
	return user, ok
}

// RequireRole rejects authenticated users whose role is not in the allowed
// set. Admin override is granted by listing RoleAdmin at the call site.
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	allowed := map[models.Role]bool{}
	for _, role := range roles {
		allowed[role] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := CurrentUser(r)
			if !ok {
				WriteError(w, http.StatusUnauthorized, "No token provided, authorization denied")
				return
			}
			if !allowed[user.Role] {
				WriteError(w, http.StatusForbidden, "Access denied. Authority role required.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
