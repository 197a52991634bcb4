package models

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	RolePlayer     UserRole = "player"
	RoleAdmin      UserRole = "admin"
	RoleSuperAdmin UserRole = "super_admin"
)

// Rank orders roles so a higher role satisfies every lower requirement.
// Unknown roles rank below player.
func (r UserRole) Rank() int {
	switch r {
	case RolePlayer:
		return 1
	case RoleAdmin:
		return 2
	case RoleSuperAdmin:
		return 3
	default:
		return 0
	}
}

func (r UserRole) Valid() bool {
	return r.Rank() > 0
}

type User struct {
	ID            uuid.UUID `json:"id"`
	ExternalID    string    `json:"externalId"`
	Email         string    `json:"email"`
	DisplayName   string    `json:"displayName"`
	MinecraftName *string   `json:"minecraftName,omitempty"`
	DiscordName   *string   `json:"discordName,omitempty"`
	Role          UserRole  `json:"role"`
	Banned        bool      `json:"banned"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ExternalIdentity is what the identity provider forwards on sign-in.
type ExternalIdentity struct {
	ExternalID    string  `json:"externalId" validate:"required,max=128"`
	Email         string  `json:"email" validate:"required,email,max=254"`
	DisplayName   string  `json:"displayName" validate:"required,max=64"`
	MinecraftName *string `json:"minecraftName,omitempty" validate:"omitempty,max=16"`
	DiscordName   *string `json:"discordName,omitempty" validate:"omitempty,max=37"`
}
