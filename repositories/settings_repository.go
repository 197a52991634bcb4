package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/tournament-hub/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const SettingsCollection = "site_settings"

var ErrSettingsNotFound = errors.New("site settings not found")

// SettingsRepository stores the site settings singleton document.
// Every write is an upsert on the fixed _id.
type SettingsRepository interface {
	Get(ctx context.Context) (*models.SiteSettings, error)
	Replace(ctx context.Context, settings models.SiteSettings) error
	SetMaintenance(ctx context.Context, enabled bool, actorID string, now time.Time) error
	SetAnnouncement(ctx context.Context, announcement models.Announcement, actorID string, now time.Time) error
	SetTicker(ctx context.Context, items []models.TickerItem, actorID string, now time.Time) error
}

type mongoSettingsRepository struct {
	collection *mongo.Collection
}

func NewMongoSettingsRepository(collection *mongo.Collection) SettingsRepository {
	return &mongoSettingsRepository{collection: collection}
}

func (r *mongoSettingsRepository) Get(ctx context.Context) (*models.SiteSettings, error) {
	var settings models.SiteSettings
	err := r.collection.FindOne(ctx, bson.M{"_id": models.SiteSettingsID}).Decode(&settings)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrSettingsNotFound
		}
		return nil, fmt.Errorf("failed to get site settings: %w", err)
	}
	return &settings, nil
}

func (r *mongoSettingsRepository) Replace(ctx context.Context, s models.SiteSettings) error {
	return r.set(ctx, bson.M{
		"maintenance_mode": s.MaintenanceMode,
		"announcement":     s.Announcement,
		"ticker":           nonNilTicker(s.Ticker),
		"hosted_by":        nonNilStrings(s.HostedBy),
		"updated_at":       s.UpdatedAt,
		"updated_by":       s.UpdatedBy,
	})
}

func (r *mongoSettingsRepository) SetMaintenance(ctx context.Context, enabled bool, actorID string, now time.Time) error {
	return r.set(ctx, bson.M{
		"maintenance_mode": enabled,
		"updated_at":       now,
		"updated_by":       actorID,
	})
}

func (r *mongoSettingsRepository) SetAnnouncement(ctx context.Context, a models.Announcement, actorID string, now time.Time) error {
	return r.set(ctx, bson.M{
		"announcement": a,
		"updated_at":   now,
		"updated_by":   actorID,
	})
}

func (r *mongoSettingsRepository) SetTicker(ctx context.Context, items []models.TickerItem, actorID string, now time.Time) error {
	return r.set(ctx, bson.M{
		"ticker":     nonNilTicker(items),
		"updated_at": now,
		"updated_by": actorID,
	})
}

func (r *mongoSettingsRepository) set(ctx context.Context, fields bson.M) error {
	filter := bson.M{"_id": models.SiteSettingsID}
	update := bson.M{"$set": fields}
	opts := options.Update().SetUpsert(true)

	res, err := r.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("failed to upsert site settings: %w", err)
	}
	if res.MatchedCount == 0 && res.UpsertedID == nil {
		return fmt.Errorf("site settings neither matched nor upserted")
	}
	return nil
}

// Пустые списки храним как [], а не null, чтобы документ всегда декодировался одинаково.
func nonNilTicker(items []models.TickerItem) []models.TickerItem {
	if items == nil {
		return []models.TickerItem{}
	}
	return items
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
