package models

import (
	"time"

	"github.com/google/uuid"
)

type TeamStatus string

const TeamStatusRegistered TeamStatus = "registered"

type Team struct {
	ID           uuid.UUID   `json:"id"`
	TournamentID uuid.UUID   `json:"tournamentId"`
	TeamName     string      `json:"teamName"`
	CaptainID    uuid.UUID   `json:"captainId"`
	Players      []uuid.UUID `json:"players"`
	PlayerCount  int         `json:"playerCount"`
	Status       TeamStatus  `json:"status"`
	CreatedAt    time.Time   `json:"createdAt"`
}

// HasMember reports whether userID is the captain or a listed player.
func (t *Team) HasMember(userID uuid.UUID) bool {
	if t.CaptainID == userID {
		return true
	}
	for _, id := range t.Players {
		if id == userID {
			return true
		}
	}
	return false
}

// TeamSummary is the public projection used in tournament team lists.
type TeamSummary struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// TeamPlayer is a roster entry with the contact handles shown to teammates.
type TeamPlayer struct {
	UserID        uuid.UUID `json:"userId"`
	DisplayName   string    `json:"displayName"`
	MinecraftName *string   `json:"minecraftName,omitempty"`
	DiscordName   *string   `json:"discordName,omitempty"`
	IsCaptain     bool      `json:"isCaptain"`
	JoinedAt      time.Time `json:"joinedAt"`
}

type TeamDetail struct {
	ID             uuid.UUID        `json:"id"`
	TeamName       string           `json:"teamName"`
	Status         TeamStatus       `json:"status"`
	CaptainID      uuid.UUID        `json:"captainId"`
	TournamentID   uuid.UUID        `json:"tournamentId"`
	TournamentName string           `json:"tournamentName"`
	TournamentDate time.Time        `json:"tournamentDate"`
	StartTime      string           `json:"startTime"`
	Tournament     TournamentStatus `json:"tournamentStatus"`
	Players        []TeamPlayer     `json:"players"`
	CreatedAt      time.Time        `json:"createdAt"`
}

// HasMember reports whether userID is the captain or on the roster.
func (d *TeamDetail) HasMember(userID uuid.UUID) bool {
	if d.CaptainID == userID {
		return true
	}
	for _, p := range d.Players {
		if p.UserID == userID {
			return true
		}
	}
	return false
}
