package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/Dosada05/tournament-hub/middleware"
	"github.com/Dosada05/tournament-hub/models"
	"github.com/Dosada05/tournament-hub/services"
)

// ProviderSecretHeader carries the shared secret of the identity provider.
const ProviderSecretHeader = "X-Provider-Secret"

type AuthHandler struct {
	sessionService services.SessionService
	providerSecret []byte
}

// NewAuthHandler builds the sign-in handler. An empty providerSecret disables
// sign-in entirely.
func NewAuthHandler(sessionService services.SessionService, providerSecret string) *AuthHandler {
	return &AuthHandler{
		sessionService: sessionService,
		providerSecret: []byte(providerSecret),
	}
}

// SignIn обрабатывает POST /auth/sign-in от провайдера идентификации.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	if len(h.providerSecret) == 0 {
		serviceUnavailableResponse(w, r, services.ErrFeatureDisabled.Error())
		return
	}
	given := []byte(r.Header.Get(ProviderSecretHeader))
	if subtle.ConstantTimeCompare(given, h.providerSecret) != 1 {
		unauthorizedResponse(w, r, "invalid provider credentials")
		return
	}

	var input models.ExternalIdentity
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	token, user, err := h.sessionService.SignIn(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	setSessionCookie(w, r, token)
	if err := writeJSON(w, http.StatusOK, jsonResponse{"token": token, "user": user}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func setSessionCookie(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}
