// File: internal/middleware/auth.go
package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/appleaww/messenger/internal/auth"
)

const bearerPrefix = "Bearer "

// NewJWTMiddleware validates the Authorization header of every REST request
// and attaches the token subject to the request context. The same token is
// presented here and at the websocket handshake; neither side keeps any
// server-side token state.
func NewJWTMiddleware(codec *auth.Codec) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, bearerPrefix) {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}

			userID, role, err := codec.Verify(strings.TrimPrefix(header, bearerPrefix))
			if err != nil {
				log.Printf("[AuthMiddleware] Invalid token: %v", err)
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			ctx = context.WithValue(ctx, RoleKey, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFrom extracts the authenticated user id placed by NewJWTMiddleware.
func UserIDFrom(ctx context.Context) (uint, bool) {
	userID, ok := ctx.Value(UserIDKey).(uint)
	return userID, ok
}
