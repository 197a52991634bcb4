package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Dosada05/tournament-hub/metrics"
	"github.com/Dosada05/tournament-hub/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// EventsChannel is the Redis pub/sub channel shared by every instance.
const EventsChannel = "tournament-hub:events"

const publishTimeout = 2 * time.Second

var errRelayChannelClosed = errors.New("relay message channel closed")

// HubNotifier delivers events straight to the local hub. Used when Redis is
// not configured (single instance).
type HubNotifier struct {
	hub *Hub
}

func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) Notify(_ context.Context, event models.Event) {
	n.hub.Deliver(event)
}

// RedisNotifier publishes events to Redis; every instance's Relay forwards
// them to its own hub.
type RedisNotifier struct {
	client  *redis.Client
	channel string
	log     *zap.Logger
}

func NewRedisNotifier(client *redis.Client, log *zap.Logger) *RedisNotifier {
	return &RedisNotifier{client: client, channel: EventsChannel, log: log}
}

func (n *RedisNotifier) Notify(ctx context.Context, event models.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		n.fail(event, err)
		return
	}

	// Публикация не должна зависеть от отмены исходного запроса.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err = n.client.Publish(pubCtx, n.channel, payload).Err(); err != nil {
		n.fail(event, err)
	}
}

func (n *RedisNotifier) fail(event models.Event, err error) {
	metrics.NotifyFailures.WithLabelValues(event.Type).Inc()
	n.log.Error("failed to publish event",
		zap.String("type", event.Type),
		zap.String("room", event.Room),
		zap.Error(err),
	)
}

// Relay subscribes to the events channel and forwards each message to the
// local hub. Lost subscriptions are retried until ctx ends.
type Relay struct {
	client     *redis.Client
	hub        *Hub
	channel    string
	retryDelay time.Duration
	log        *zap.Logger
}

const (
	relayRetryDelay    = 500 * time.Millisecond
	relayMaxRetryDelay = 30 * time.Second
)

func NewRelay(client *redis.Client, hub *Hub, log *zap.Logger) *Relay {
	return &Relay{client: client, hub: hub, channel: EventsChannel, retryDelay: relayRetryDelay, log: log}
}

// Run only returns once ctx is done or the client is closed; a Redis outage
// degrades live updates without stopping the service.
func (r *Relay) Run(ctx context.Context) error {
	delay := r.retryDelay
	for {
		subscribed, err := r.subscribe(ctx)
		if ctx.Err() != nil || errors.Is(err, redis.ErrClosed) {
			return nil
		}
		if subscribed {
			delay = r.retryDelay
		}
		r.log.Warn("relay subscription lost, retrying",
			zap.String("channel", r.channel),
			zap.Duration("retry_in", delay),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
		delay = min(delay*2, relayMaxRetryDelay)
	}
}

func (r *Relay) subscribe(ctx context.Context) (bool, error) {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return false, err
	}
	r.log.Info("relay subscribed", zap.String("channel", r.channel))

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return true, ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return true, errRelayChannelClosed
			}
			r.forward(msg.Payload)
		}
	}
}

func (r *Relay) forward(payload string) {
	var envelope struct {
		Type string `json:"type"`
		Room string `json:"room"`
	}
	if err := json.Unmarshal([]byte(payload), &envelope); err != nil || envelope.Room == "" {
		r.log.Warn("dropping malformed relay message", zap.Error(err))
		return
	}
	r.hub.BroadcastToRoom(envelope.Room, []byte(payload))
}
