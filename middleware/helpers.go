package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Dosada05/tournament-hub/services"
)

type contextKey string

const (
	sessionContextKey      contextKey = "session"
	sessionErrorContextKey contextKey = "session_error"
)

// WithSession stores a resolved session on ctx.
func WithSession(ctx context.Context, s *services.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, s)
}

// SessionFromContext returns the session resolved by Authenticate, or nil
// for anonymous requests.
func SessionFromContext(ctx context.Context) *services.Session {
	s, _ := ctx.Value(sessionContextKey).(*services.Session)
	return s
}

func sessionErrorFromContext(ctx context.Context) error {
	err, _ := ctx.Value(sessionErrorContextKey).(error)
	return err
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func isMutating(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	default:
		return true
	}
}
