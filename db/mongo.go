package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/multierr"
)

// MongoClient wraps *mongo.Client bound to a single database.
type MongoClient struct {
	client   *mongo.Client
	database string
}

func ConnectMongo(uri, database string, timeout time.Duration) (*MongoClient, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		err = fmt.Errorf("failed to ping MongoDB: %w", err)
		return nil, multierr.Append(err, client.Disconnect(context.Background()))
	}

	return &MongoClient{client: client, database: database}, nil
}

func (m *MongoClient) Collection(name string) *mongo.Collection {
	return m.client.Database(m.database).Collection(name)
}

func (m *MongoClient) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

func (m *MongoClient) Disconnect(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
