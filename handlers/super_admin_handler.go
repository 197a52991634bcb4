package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Dosada05/tournament-hub/models"
	"github.com/Dosada05/tournament-hub/services"
)

type SuperAdminHandler struct {
	userService  services.UserService
	auditService services.AuditService
}

func NewSuperAdminHandler(us services.UserService, as services.AuditService) *SuperAdminHandler {
	return &SuperAdminHandler{
		userService:  us,
		auditService: as,
	}
}

// ListUsers обрабатывает GET /super-admin/users
func (h *SuperAdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.ListUsers(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if users == nil {
		users = []*models.User{}
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"users": users}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ChangeRole обрабатывает PATCH /super-admin/users/{userID}/role
func (h *SuperAdminHandler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	targetID, err := getUUIDFromURL(r, "userID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Role models.UserRole `json:"role"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	user, err := h.userService.ChangeRole(r.Context(), session, targetID, input.Role)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"user": user}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Ban обрабатывает POST /super-admin/users/{userID}/ban
func (h *SuperAdminHandler) Ban(w http.ResponseWriter, r *http.Request) {
	h.setBanned(w, r, true)
}

// Unban обрабатывает DELETE /super-admin/users/{userID}/ban
func (h *SuperAdminHandler) Unban(w http.ResponseWriter, r *http.Request) {
	h.setBanned(w, r, false)
}

func (h *SuperAdminHandler) setBanned(w http.ResponseWriter, r *http.Request, banned bool) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	targetID, err := getUUIDFromURL(r, "userID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	user, err := h.userService.SetBanned(r.Context(), session, targetID, banned)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"user": user}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// StartImpersonation обрабатывает POST /super-admin/impersonate/{userID}
func (h *SuperAdminHandler) StartImpersonation(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	targetID, err := getUUIDFromURL(r, "userID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	token, user, err := h.userService.StartImpersonation(r.Context(), session, targetID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	setSessionCookie(w, r, token)
	if err := writeJSON(w, http.StatusOK, jsonResponse{"token": token, "user": user}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// EndImpersonation обрабатывает POST /super-admin/impersonate/exit
func (h *SuperAdminHandler) EndImpersonation(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}

	token, user, err := h.userService.EndImpersonation(r.Context(), session)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	setSessionCookie(w, r, token)
	if err := writeJSON(w, http.StatusOK, jsonResponse{"token": token, "user": user}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// AuditLogs обрабатывает GET /super-admin/audit-logs?limit=
func (h *SuperAdminHandler) AuditLogs(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			badRequestResponse(w, r, errors.New("invalid limit query parameter"))
			return
		}
		limit = parsed
	}

	entries, err := h.auditService.List(r.Context(), limit)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if entries == nil {
		entries = []*models.AuditLog{}
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"logs": entries}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
