package routes

import (
	"net/http"
	"time"

	"github.com/Dosada05/tournament-hub/handlers"
	"github.com/Dosada05/tournament-hub/middleware"
	"github.com/Dosada05/tournament-hub/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Handlers groups everything SetupRoutes mounts.
type Handlers struct {
	Auth       *handlers.AuthHandler
	User       *handlers.UserHandler
	Tournament *handlers.TournamentHandler
	Team       *handlers.TeamHandler
	Invite     *handlers.InviteHandler
	Settings   *handlers.SettingsHandler
	SuperAdmin *handlers.SuperAdminHandler
	WebSocket  *handlers.WebSocketHandler
	Health     *handlers.HealthHandler
}

type Options struct {
	AllowedOrigins []string
	Sessions       middleware.SessionResolver
	Logger         *zap.Logger
}

func SetupRoutes(router chi.Router, h Handlers, opts Options) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.AccessLog(opts.Logger))
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/healthz", h.Health.Healthz)
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/ws", h.WebSocket.ServeWs)

	router.Group(func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(30 * time.Second))
		r.Use(middleware.Authenticate(opts.Sessions, opts.Logger))

		r.Post("/auth/sign-in", h.Auth.SignIn)

		// Публичные настройки сайта
		r.Get("/settings/maintenance", h.Settings.Maintenance)
		r.Get("/settings/site", h.Settings.Site)
		r.Get("/settings/home-ticker", h.Settings.Ticker)
		r.Get("/announcement", h.Settings.Announcement)

		r.Route("/tournaments", func(r chi.Router) {
			r.Get("/", h.Tournament.ListHandler)
			r.Route("/{tournamentID}", func(r chi.Router) {
				r.Get("/", h.Tournament.GetByIDHandler)
				r.Get("/teams", h.Tournament.ListTeamsHandler)
				r.Get("/check-name", h.Tournament.CheckNameHandler)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(models.RolePlayer))
					r.Post("/teams", h.Team.CreateTeam)
					r.Post("/invites", h.Invite.CreateInvite)
				})
			})
		})

		r.Route("/users/me", func(r chi.Router) {
			r.Use(middleware.RequireRole(models.RolePlayer))
			r.Get("/", h.User.GetMe)
			r.Patch("/", h.User.UpdateMe)
			r.Get("/teams", h.User.MyTeams)
			r.Get("/teams/{teamID}", h.User.MyTeamDetail)
			r.Get("/invites", h.User.MyInvites)
			r.Post("/invites/{inviteID}/respond", h.Invite.Respond)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(models.RoleAdmin))
			r.Post("/tournaments", h.Tournament.CreateHandler)
			r.Patch("/tournaments/{tournamentID}/status", h.Tournament.UpdateStatusHandler)
			r.Put("/tournaments/{tournamentID}/banner", h.Tournament.UploadBannerHandler)
			r.Put("/settings", h.Settings.Replace)
			r.Put("/settings/maintenance", h.Settings.SetMaintenance)
			r.Put("/settings/ticker", h.Settings.SetTicker)
			r.Put("/announcement", h.Settings.SetAnnouncement)
		})

		r.Route("/super-admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(models.RoleSuperAdmin))
			r.Get("/users", h.SuperAdmin.ListUsers)
			r.Patch("/users/{userID}/role", h.SuperAdmin.ChangeRole)
			r.Post("/users/{userID}/ban", h.SuperAdmin.Ban)
			r.Delete("/users/{userID}/ban", h.SuperAdmin.Unban)
			r.Post("/impersonate/exit", h.SuperAdmin.EndImpersonation)
			r.Post("/impersonate/{userID}", h.SuperAdmin.StartImpersonation)
			r.Get("/audit-logs", h.SuperAdmin.AuditLogs)
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"the requested resource could not be found"}` + "\n"))
	})
}
