package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/lojabox/lojabox/internal/server/auth"
	"github.com/lojabox/lojabox/internal/server/models"
)

type ctxKey string

const sessionKey ctxKey = "session"

// requireSession verifies the Authorization bearer token and stores the
// resulting session in the request context.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "missing token")
			return
		}

		session, err := auth.SessionFromToken(token, s.jwtSecret)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), sessionKey, *session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// sessionFromContext returns the session placed there by requireSession.
func sessionFromContext(ctx context.Context) (models.Session, bool) {
	session, ok := ctx.Value(sessionKey).(models.Session)
	return session, ok
}
