// Package middleware holds request middleware shared by the route table.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/minibnb/minibnb/internal/apperr"
	"github.com/minibnb/minibnb/internal/auth"
	"github.com/minibnb/minibnb/internal/httpx"
)

type contextKey string

const userIDKey contextKey = "user_id"

// RequireAuth validates the Authorization bearer header with v and stores
// the authenticated user id on the request context.
func RequireAuth(v auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				httpx.Error(w, apperr.Unauthorized("missing or invalid authorization header"))
				return
			}
			token := strings.TrimPrefix(header, "Bearer ")

			userID, err := v.Verify(token)
			if err != nil {
				httpx.Error(w, apperr.Unauthorized("invalid or expired token"))
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserID returns the authenticated user stored by RequireAuth.
func UserID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	return id, ok
}
