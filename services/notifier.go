package services

import (
	"context"

	"github.com/Dosada05/tournament-hub/models"
)

// Notifier pushes an event to realtime subscribers. Delivery is best effort:
// implementations log and count failures instead of returning them.
type Notifier interface {
	Notify(ctx context.Context, event models.Event)
}

// NopNotifier drops every event.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, models.Event) {}
