package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// APILatency measures HTTP request latencies by route pattern.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tournament_hub_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// TeamRegistrations counts createTeam outcomes (success|capacity|conflict|invalid|error).
	TeamRegistrations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tournament_hub_team_registrations_total",
			Help: "Total number of team registration attempts",
		},
		[]string{"result"},
	)

	// InviteResponses counts invite responses by action and result.
	InviteResponses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tournament_hub_invite_responses_total",
			Help: "Total number of invite responses",
		},
		[]string{"action", "result"},
	)

	AuditWriteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tournament_hub_audit_write_failures_total",
			Help: "Audit entries that could not be stored",
		},
	)

	// NotifyFailures counts events that could not be published, by event type.
	NotifyFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tournament_hub_notify_failures_total",
			Help: "Realtime events that could not be published",
		},
		[]string{"type"},
	)

	// TournamentsOpened counts scheduled tournaments moved to registration_open.
	TournamentsOpened = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tournament_hub_tournaments_opened_total",
			Help: "Tournaments automatically opened for registration",
		},
	)

	WebSocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tournament_hub_websocket_clients",
			Help: "Number of connected WebSocket clients",
		},
	)
)
