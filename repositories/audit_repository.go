package repositories

import (
	"context"
	"fmt"

	"github.com/Dosada05/tournament-hub/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const AuditCollection = "audit_logs"

// AuditRepository is append-only: there is no update or delete.
type AuditRepository interface {
	Insert(ctx context.Context, entry *models.AuditLog) error
	ListRecent(ctx context.Context, limit int64) ([]*models.AuditLog, error)
	EnsureIndexes(ctx context.Context) error
}

type mongoAuditRepository struct {
	collection *mongo.Collection
}

func NewMongoAuditRepository(collection *mongo.Collection) AuditRepository {
	return &mongoAuditRepository{collection: collection}
}

func (r *mongoAuditRepository) Insert(ctx context.Context, entry *models.AuditLog) error {
	if _, err := r.collection.InsertOne(ctx, entry); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("audit entry %s already exists: %w", entry.ID, err)
		}
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

func (r *mongoAuditRepository) ListRecent(ctx context.Context, limit int64) ([]*models.AuditLog, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find audit entries: %w", err)
	}
	defer cursor.Close(ctx)

	entries := make([]*models.AuditLog, 0)
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode audit entries: %w", err)
	}
	return entries, nil
}

func (r *mongoAuditRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "actor_id", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create audit indexes: %w", err)
	}
	return nil
}
