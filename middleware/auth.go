package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Dosada05/tournament-hub/models"
	"github.com/Dosada05/tournament-hub/services"
	"go.uber.org/zap"
)

// SessionCookieName is the cookie that may carry the session token.
const SessionCookieName = "session"

// SessionResolver turns a token into a session.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*services.Session, error)
}

// Authenticate resolves the session when a token is present. Requests
// without a valid token continue anonymously; RequireRole rejects them.
func Authenticate(resolver SessionResolver, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			session, err := resolver.Resolve(r.Context(), token)
			ctx := r.Context()
			switch {
			case err == nil:
				ctx = WithSession(ctx, session)
			case errors.Is(err, services.ErrUnauthorized):
				// anonymous
			default:
				log.Error("failed to resolve session", zap.Error(err))
				ctx = context.WithValue(ctx, sessionErrorContextKey, err)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole gates a route with services.Authorize. Non-GET requests count
// as mutating, so banned users can still read.
func RequireRole(role models.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sessionErrorFromContext(r.Context()) != nil {
				writeError(w, http.StatusInternalServerError, "the server encountered a problem and could not process your request")
				return
			}

			err := services.Authorize(SessionFromContext(r.Context()), role, isMutating(r.Method))
			switch {
			case err == nil:
				next.ServeHTTP(w, r)
			case errors.Is(err, services.ErrForbidden):
				writeError(w, http.StatusForbidden, err.Error())
			default:
				writeError(w, http.StatusUnauthorized, err.Error())
			}
		})
	}
}

func tokenFromRequest(r *http.Request) string {
	if scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " "); ok && strings.EqualFold(scheme, "Bearer") {
		if token = strings.TrimSpace(token); token != "" {
			return token
		}
	}
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}
