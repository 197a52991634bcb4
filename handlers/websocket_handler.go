package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Dosada05/tournament-hub/models"
	"github.com/Dosada05/tournament-hub/realtime"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type WebSocketHandler struct {
	hub      *realtime.Hub
	upgrader websocket.Upgrader
	log      *zap.Logger
}

// NewWebSocketHandler accepts connections from allowedOrigins; "*" allows any.
func NewWebSocketHandler(hub *realtime.Hub, allowedOrigins []string, log *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		log: log,
	}
}

// ServeWs обрабатывает GET /ws?room=site|tournament_<id>
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	room, err := parseRoom(r.URL.Query().Get("room"))
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade уже ответил клиенту.
		h.log.Debug("websocket upgrade failed", zap.String("room", room), zap.Error(err))
		return
	}

	client := realtime.NewClient(h.hub, conn, room)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}

func parseRoom(raw string) (string, error) {
	if raw == "" || raw == models.SiteRoom {
		return models.SiteRoom, nil
	}
	id, ok := strings.CutPrefix(raw, "tournament_")
	if !ok {
		return "", errors.New("room must be \"site\" or \"tournament_<id>\"")
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", errors.New("room has an invalid tournament id")
	}
	return models.TournamentRoom(parsed.String()), nil
}

func originChecker(allowed []string) func(*http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[strings.TrimRight(o, "/")] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[strings.TrimRight(origin, "/")]
		return ok
	}
}
