package models

import (
	"time"

	"github.com/google/uuid"
)

type InviteStatus string

const (
	InvitePending  InviteStatus = "pending"
	InviteAccepted InviteStatus = "accepted"
	InviteRejected InviteStatus = "rejected"
)

type TeamInvite struct {
	ID           uuid.UUID    `json:"id"`
	CaptainID    uuid.UUID    `json:"captainId"`
	TournamentID uuid.UUID    `json:"tournamentId"`
	TeamName     string       `json:"teamName"`
	InviteeID    uuid.UUID    `json:"inviteeId"`
	Status       InviteStatus `json:"status"`
	CreatedAt    time.Time    `json:"createdAt"`
	RespondedAt  *time.Time   `json:"respondedAt,omitempty"`
}
