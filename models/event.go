package models

// Типы событий, рассылаемых через realtime-канал.
const (
	EventTeamRegistered      = "team_registered"
	EventInviteAccepted      = "invite_accepted"
	EventTournamentStatus    = "tournament_status_changed"
	EventMaintenanceToggled  = "maintenance_toggled"
	EventAnnouncementChanged = "announcement_changed"
	EventTickerChanged       = "ticker_changed"
	EventSettingsUpdated     = "settings_updated"
)

// SiteRoom receives every site-wide settings event.
const SiteRoom = "site"

// TournamentRoom returns the realtime room for a tournament id.
func TournamentRoom(tournamentID string) string {
	return "tournament_" + tournamentID
}

type Event struct {
	Type    string      `json:"type"`
	Room    string      `json:"room"`
	Payload interface{} `json:"payload,omitempty"`
}
