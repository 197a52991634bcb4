package models

import (
	"time"

	"github.com/google/uuid"
)

// TournamentStatus mirrors the tournament_status enum in the database.
type TournamentStatus string

const (
	StatusDraft              TournamentStatus = "draft"
	StatusScheduled          TournamentStatus = "scheduled"
	StatusRegistrationOpen   TournamentStatus = "registration_open"
	StatusRegistrationClosed TournamentStatus = "registration_closed"
	StatusOngoing            TournamentStatus = "ongoing"
	StatusCompleted          TournamentStatus = "completed"
)

// statusOrder is the forward-only lifecycle.
var statusOrder = []TournamentStatus{
	StatusDraft,
	StatusScheduled,
	StatusRegistrationOpen,
	StatusRegistrationClosed,
	StatusOngoing,
	StatusCompleted,
}

// PublicStatuses are the statuses shown on the public tournament list.
var PublicStatuses = []TournamentStatus{
	StatusScheduled,
	StatusRegistrationOpen,
	StatusRegistrationClosed,
	StatusOngoing,
	StatusCompleted,
}

func (s TournamentStatus) position() int {
	for i, st := range statusOrder {
		if st == s {
			return i
		}
	}
	return -1
}

func (s TournamentStatus) Valid() bool {
	return s.position() >= 0
}

// CanTransitionTo reports whether next lies strictly after s in the lifecycle.
func (s TournamentStatus) CanTransitionTo(next TournamentStatus) bool {
	from, to := s.position(), next.position()
	return from >= 0 && to > from
}

type Tournament struct {
	ID                   uuid.UUID        `json:"id"`
	Name                 string           `json:"name"`
	Type                 string           `json:"type"`
	Date                 time.Time        `json:"date"`
	StartTime            string           `json:"startTime"`
	RegistrationDeadline *time.Time       `json:"registrationDeadline,omitempty"`
	ScheduledAt          time.Time        `json:"scheduledAt"`
	MaxTeams             int              `json:"maxTeams"`
	TeamSize             int              `json:"teamSize"`
	RegisteredTeams      int              `json:"registeredTeams"`
	Status               TournamentStatus `json:"status"`
	BannerKey            *string          `json:"-"`
	BannerURL            *string          `json:"bannerUrl,omitempty"`
	CreatedAt            time.Time        `json:"createdAt"`
}

// AdvanceIfDue opens registration for a scheduled tournament whose opening
// time has passed. It reports whether the status changed.
func (t *Tournament) AdvanceIfDue(now time.Time) bool {
	if t.Status == StatusScheduled && !t.ScheduledAt.After(now) {
		t.Status = StatusRegistrationOpen
		return true
	}
	return false
}

// AcceptsRegistrations reports whether a new team could take a slot at now.
func (t *Tournament) AcceptsRegistrations(now time.Time) bool {
	if t.Status != StatusRegistrationOpen {
		return false
	}
	if t.RegistrationDeadline != nil && !now.Before(*t.RegistrationDeadline) {
		return false
	}
	return t.RegisteredTeams < t.MaxTeams
}
