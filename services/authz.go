package services

import (
	"github.com/Dosada05/tournament-hub/models"
	"github.com/google/uuid"
)

// Session is the resolved identity behind a request.
// Role and Banned always describe the real user, so an impersonating
// super admin keeps their own privileges and ban state.
type Session struct {
	UserID     uuid.UUID
	RealUserID uuid.UUID
	Role       models.UserRole
	Banned     bool
}

func (s *Session) Impersonating() bool {
	return s.UserID != s.RealUserID
}

// Authorize is the single gate used by every protected route.
func Authorize(session *Session, required models.UserRole, mutating bool) error {
	if session == nil {
		return ErrUnauthorized
	}
	if mutating && session.Banned {
		return ErrUnauthorized
	}
	if session.Role.Rank() < required.Rank() {
		return ErrForbidden
	}
	return nil
}
