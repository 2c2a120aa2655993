package database

import (
	"context"
	"fmt"
	"time"

	"github.com/sangkips/clientbook-api/internal/config"
	applog "github.com/sangkips/clientbook-api/pkg/logger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NewMongoClient connects to MongoDB and verifies the connection.
func NewMongoClient(ctx context.Context, cfg *config.DatabaseConfig) (*mongo.Client, error) {
	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("mongo connection URI is empty")
	}

	timeout := cfg.MongoTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	clientOptions := options.Client().ApplyURI(cfg.MongoURI).
		SetMaxPoolSize(50).
		SetMinPoolSize(5).
		SetConnectTimeout(5 * time.Second).
		SetSocketTimeout(timeout)

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancelPing := context.WithTimeout(ctx, 2*time.Second)
	defer cancelPing()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	applog.App().WithField("database", cfg.MongoDatabase).Info("Successfully connected to MongoDB")
	return client, nil
}

// CloseMongo disconnects the client.
func CloseMongo(client *mongo.Client) error {
	if err := client.Disconnect(context.Background()); err != nil {
		applog.App().WithError(err).Error("Failed to disconnect MongoDB client")
		return err
	}
	return nil
}
