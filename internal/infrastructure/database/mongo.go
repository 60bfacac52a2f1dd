package database

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoConfig holds the MongoDB connection settings.
type MongoConfig struct {
	URI            string
	Database       string
	Collection     string
	ConnectTimeout time.Duration
}

// ConnectMongo connects to MongoDB and verifies the primary is reachable.
func ConnectMongo(ctx context.Context, cfg MongoConfig, log zerolog.Logger) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI).SetAppName("media-catalog"))
	if err != nil {
		log.Error().
			Str("error_code", "a3f1c8e2-6b4d-4e9a-8c7f-1d2e5b9a0c36").
			Err(err).
			Msg("unable to connect to mongodb")
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	log.Info().
		Str("database", cfg.Database).
		Str("collection", cfg.Collection).
		Msg("successfully connected to mongodb")
	return client, nil
}

// MediaCollection returns the collection holding media records.
func MediaCollection(client *mongo.Client, cfg MongoConfig) *mongo.Collection {
	return client.Database(cfg.Database).Collection(cfg.Collection)
}
