package models

import "time"

const (
	AuditRoleChange         = "role_change"
	AuditUserBan            = "user_ban"
	AuditUserUnban          = "user_unban"
	AuditImpersonationStart = "impersonation_start"
	AuditImpersonationEnd   = "impersonation_end"
	AuditSettingChange      = "setting_change"
	AuditTournamentCreate   = "tournament_create"
	AuditTournamentStatus   = "tournament_status_change"
	AuditTournamentBanner   = "tournament_banner_update"
)

type AuditLog struct {
	ID         string         `json:"id" bson:"_id,omitempty"`
	ActorID    string         `json:"actorId" bson:"actor_id"`
	Action     string         `json:"action" bson:"action"`
	TargetType string         `json:"targetType" bson:"target_type"`
	TargetID   string         `json:"targetId,omitempty" bson:"target_id,omitempty"`
	Details    map[string]any `json:"details,omitempty" bson:"details,omitempty"`
	CreatedAt  time.Time      `json:"createdAt" bson:"created_at"`
}
