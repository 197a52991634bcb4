package models

import (
	"strings"
	"time"
)

// SiteSettingsID is the fixed _id of the settings singleton.
const SiteSettingsID = "site"

type Announcement struct {
	Message string `json:"message" bson:"message" validate:"max=500"`
	Active  bool   `json:"active" bson:"active"`
}

type TickerItem struct {
	Text string `json:"text" bson:"text" validate:"required,max=140"`
	Link string `json:"link,omitempty" bson:"link,omitempty" validate:"omitempty,url,max=512"`
}

type SiteSettings struct {
	ID              string       `json:"-" bson:"_id"`
	MaintenanceMode bool         `json:"maintenanceMode" bson:"maintenance_mode"`
	Announcement    Announcement `json:"announcement" bson:"announcement"`
	Ticker          []TickerItem `json:"ticker" bson:"ticker" validate:"max=20,dive"`
	HostedBy        []string     `json:"hostedBy" bson:"hosted_by" validate:"max=5,dive,required,max=64"`
	UpdatedAt       time.Time    `json:"updatedAt" bson:"updated_at"`
	UpdatedBy       string       `json:"updatedBy,omitempty" bson:"updated_by,omitempty"`
}

// DefaultSiteSettings is what public pages render when nothing is stored or
// the store cannot be read.
func DefaultSiteSettings() SiteSettings {
	return SiteSettings{
		ID:       SiteSettingsID,
		Ticker:   []TickerItem{},
		HostedBy: []string{},
	}
}

// HostedByName joins the hosts for display, e.g. "Alice & Bob".
func (s SiteSettings) HostedByName() string {
	return strings.Join(s.HostedBy, " & ")
}
