package database

import (
	"context"
	"fmt"
	"time"

	"feedback-system/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	maxConnectAttempts     = 3
	connectBackoffBase     = 2 * time.Second
	serverSelectionTimeout = 5 * time.Second
	maxPoolSize            = 10
)

// Collection names.
const (
	UsersCollection    = "users"
	FeedbackCollection = "feedbacks"
)

// Mongo manages the MongoDB connection: bounded connect retries with
// exponential backoff, readiness checks, and index creation.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
	uri    string
	dbName string
}

func New(uri, dbName string) *Mongo {
	return &Mongo{uri: uri, dbName: dbName}
}

// Connect establishes the client connection, retrying a bounded number of
// times with exponential backoff before giving up.
func (m *Mongo) Connect(ctx context.Context) error {
	opts := options.Client().
		ApplyURI(m.uri).
		SetServerSelectionTimeout(serverSelectionTimeout).
		SetMaxPoolSize(maxPoolSize)

	var lastErr error
	for attempt := 1; attempt <= maxConnectAttempts; attempt++ {
		logger.Log.Info("Attempting database connection",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", maxConnectAttempts),
		)

		client, err := mongo.Connect(ctx, opts)
		if err == nil {
			err = client.Ping(ctx, nil)
			if err == nil {
				m.client = client
				m.db = client.Database(m.dbName)
				logger.Log.Info("MongoDB connected",
					zap.String("database", m.dbName),
				)
				return nil
			}
			_ = client.Disconnect(ctx)
		}

		lastErr = err
		logger.Log.Warn("Database connection failed",
			zap.Int("attempt", attempt),
			zap.Error(err),
		)

		if attempt < maxConnectAttempts {
			backoff := connectBackoffBase << (attempt - 1)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	return fmt.Errorf("database connection failed after %d attempts: %w", maxConnectAttempts, lastErr)
}

// Ping reports current connectivity.
func (m *Mongo) Ping(ctx context.Context) error {
	if m.client == nil {
		return mongo.ErrClientDisconnected
	}
	return m.client.Ping(ctx, nil)
}

// IsReady reports whether the database currently answers pings.
func (m *Mongo) IsReady(ctx context.Context) bool {
	return m.Ping(ctx) == nil
}

func (m *Mongo) Disconnect(ctx context.Context) error {
	if m.client == nil {
		return nil
	}
	return m.client.Disconnect(ctx)
}

// Database returns the handle for the configured database.
func (m *Mongo) Database() *mongo.Database {
	return m.db
}

// EnsureIndexes creates the indexes the application relies on. Safe to run
// on every startup; existing indexes are left alone.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	users := m.db.Collection(UsersCollection)
	_, err := users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "createdAt", Value: 1}}},
		{Keys: bson.D{{Key: "name", Value: 1}}},
		{Keys: bson.D{{Key: "role", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("creating user indexes: %w", err)
	}

	feedback := m.db.Collection(FeedbackCollection)
	_, err = feedback.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "raisedBy", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: 1}}},
		{Keys: bson.D{{Key: "rating", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "category", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("creating feedback indexes: %w", err)
	}

	return nil
}
