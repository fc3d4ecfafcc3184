package persistence

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/spec-kit/teamchat-service/internal/config"
)

// Mongo wraps access to the document store.
type Mongo struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// NewMongo establishes a client, verifies connectivity and ensures the
// unique indexes the domain relies on.
func NewMongo(ctx context.Context, cfg config.MongoConfig, logger *zap.Logger) (*Mongo, error) {
	connCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.TimeoutSeconds)*time.Second)
	defer cancel()

	client, err := mongo.Connect(connCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(connCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(cfg.Database)
	if err := ensureIndexes(connCtx, db); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ensure indexes: %w", err)
	}

	logger.Info("connected to mongo", zap.String("database", cfg.Database))
	return &Mongo{Client: client, Database: db}, nil
}

// ensureIndexes creates the uniqueness constraints the CRUD layer
// depends on: one user per email, one membership per (workspace, user),
// one channel name per workspace, one invite token.
func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := options.Index().SetUnique(true)

	specs := map[string]mongo.IndexModel{
		"users":       {Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		"memberships": {Keys: bson.D{{Key: "workspaceId", Value: 1}, {Key: "userId", Value: 1}}, Options: unique},
		"channels":    {Keys: bson.D{{Key: "workspaceId", Value: 1}, {Key: "name", Value: 1}}, Options: unique},
		"invites":     {Keys: bson.D{{Key: "token", Value: 1}}, Options: unique},
		"workspaces":  {Keys: bson.D{{Key: "slug", Value: 1}}, Options: unique},
	}
	for collection, model := range specs {
		if _, err := db.Collection(collection).Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("collection %s: %w", collection, err)
		}
	}
	return nil
}

// Collection returns a handle within the configured database.
func (m *Mongo) Collection(name string) *mongo.Collection {
	return m.Database.Collection(name)
}

// Ping verifies connectivity.
func (m *Mongo) Ping(ctx context.Context) error {
	if m == nil || m.Client == nil {
		return fmt.Errorf("mongo client not configured")
	}
	return m.Client.Ping(ctx, nil)
}

// Close disconnects the client.
func (m *Mongo) Close(ctx context.Context) {
	if m != nil && m.Client != nil {
		_ = m.Client.Disconnect(ctx)
	}
}
