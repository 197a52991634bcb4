package handlers

import (
	"net/http"

	"github.com/Dosada05/tournament-hub/services"
)

type UserHandler struct {
	userService   services.UserService
	teamService   services.TeamService
	inviteService services.InviteService
}

func NewUserHandler(us services.UserService, ts services.TeamService, is services.InviteService) *UserHandler {
	return &UserHandler{
		userService:   us,
		teamService:   ts,
		inviteService: is,
	}
}

// GetMe обрабатывает GET /users/me
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}

	user, err := h.userService.GetMe(r.Context(), session.UserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"user": user, "impersonating": session.Impersonating()}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateMe обрабатывает PATCH /users/me
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}

	var input services.UpdateProfileInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	user, err := h.userService.UpdateMe(r.Context(), session.UserID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"user": user}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// MyTeams обрабатывает GET /users/me/teams
func (h *UserHandler) MyTeams(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}

	teams, err := h.teamService.GetMyTeams(r.Context(), session.UserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"teams": teams}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// MyTeamDetail обрабатывает GET /users/me/teams/{teamID}
func (h *UserHandler) MyTeamDetail(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	teamID, err := getUUIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	team, err := h.teamService.GetTeamDetail(r.Context(), session.UserID, teamID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"team": team}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// MyInvites обрабатывает GET /users/me/invites
func (h *UserHandler) MyInvites(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}

	invites, err := h.inviteService.ListMyInvites(r.Context(), session.UserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"invites": invites}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
