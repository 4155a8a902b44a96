package httpapi

import (
	"context"
	"net/http"
	"strings"

	"contacthub/internal/common"
	"contacthub/internal/server/models"
)

type contextKey string

const userContextKey contextKey = "user"

// UserFromContext returns the authenticated user attached by the guard
// middleware. The second value is false on routes that skipped the guard.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userContextKey).(*models.User)
	return u, ok
}

// bearerToken extracts the credential from the Authorization header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get(common.AuthorizationHeaderName)
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, common.BearerScheme) || token == "" {
		return "", false
	}
	return token, true
}

// authenticate guards a subtree: it resolves the bearer token to a live user
// and attaches it to the request context. Every rejection path terminates the
// request with 401, the wrapped handler is only ever reached with a user set.
func (s *HTTPServer) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "Not authorized")
			return
		}

		user, err := s.users.Authenticate(r.Context(), token)
		if err != nil {
			s.logger.Warn(r.Context(), "request rejected by access guard", "error", err)
			writeError(w, http.StatusUnauthorized, "Not authorized")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
