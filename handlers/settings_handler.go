package handlers

import (
	"net/http"

	"github.com/Dosada05/tournament-hub/models"
	"github.com/Dosada05/tournament-hub/services"
)

// SettingsHandler serves the site settings. Public reads always answer 200.
type SettingsHandler struct {
	settingsService services.SettingsService
}

func NewSettingsHandler(ss services.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: ss}
}

// Maintenance обрабатывает GET /settings/maintenance
func (h *SettingsHandler) Maintenance(w http.ResponseWriter, r *http.Request) {
	enabled := h.settingsService.MaintenanceMode(r.Context())
	if err := writeJSON(w, http.StatusOK, jsonResponse{"maintenanceMode": enabled}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Site обрабатывает GET /settings/site
func (h *SettingsHandler) Site(w http.ResponseWriter, r *http.Request) {
	hosts, name := h.settingsService.HostedBy(r.Context())
	if err := writeJSON(w, http.StatusOK, jsonResponse{"hostedBy": hosts, "hostedByName": name}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Ticker обрабатывает GET /settings/home-ticker
func (h *SettingsHandler) Ticker(w http.ResponseWriter, r *http.Request) {
	items := h.settingsService.Ticker(r.Context())
	if err := writeJSON(w, http.StatusOK, jsonResponse{"items": items}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Announcement обрабатывает GET /announcement
func (h *SettingsHandler) Announcement(w http.ResponseWriter, r *http.Request) {
	a := h.settingsService.Announcement(r.Context())
	if err := writeJSON(w, http.StatusOK, a, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Replace обрабатывает PUT /admin/settings
func (h *SettingsHandler) Replace(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}

	var input services.SiteSettingsInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	settings, err := h.settingsService.Replace(r.Context(), session.RealUserID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"settings": settings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SetMaintenance обрабатывает PUT /admin/settings/maintenance
func (h *SettingsHandler) SetMaintenance(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}

	var input struct {
		Enabled *bool `json:"enabled"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Enabled == nil {
		failedValidationResponse(w, r, map[string]string{"enabled": "failed on required"})
		return
	}

	if err := h.settingsService.SetMaintenance(r.Context(), session.RealUserID, *input.Enabled); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"maintenanceMode": *input.Enabled}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SetAnnouncement обрабатывает PUT /admin/announcement
func (h *SettingsHandler) SetAnnouncement(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}

	var input models.Announcement
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.settingsService.SetAnnouncement(r.Context(), session.RealUserID, input); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, h.settingsService.Announcement(r.Context()), nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SetTicker обрабатывает PUT /admin/settings/ticker
func (h *SettingsHandler) SetTicker(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}

	var input services.TickerInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.settingsService.SetTicker(r.Context(), session.RealUserID, input); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"items": h.settingsService.Ticker(r.Context())}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
