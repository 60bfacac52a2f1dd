package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"

	"github.com/janhq/media-catalog/internal/config"
	domain "github.com/janhq/media-catalog/internal/domain/media"
	"github.com/janhq/media-catalog/internal/infrastructure/database"
	"github.com/janhq/media-catalog/internal/infrastructure/relay"
	repo "github.com/janhq/media-catalog/internal/infrastructure/repository/media"
)

// provideRepository connects the record store selected by MEDIA_STORE_BACKEND.
// The returned cleanup closes the underlying connection.
func provideRepository(ctx context.Context, cfg *config.Config, log zerolog.Logger) (domain.Repository, func(), error) {
	switch cfg.StoreBackend {
	case config.StoreMongo:
		mongoCfg := database.MongoConfig{
			URI:            cfg.MongoURI,
			Database:       cfg.MongoDatabase,
			Collection:     cfg.MongoCollection,
			ConnectTimeout: cfg.MongoConnectTimeout,
		}
		client, err := database.ConnectMongo(ctx, mongoCfg, log)
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			if err := client.Disconnect(context.Background()); err != nil {
				log.Error().Err(err).Msg("disconnect mongodb")
			}
		}
		return repo.NewMongoRepository(database.MediaCollection(client, mongoCfg), log), cleanup, nil

	case config.StorePostgres, config.StoreSQLite:
		dbCfg := newDatabaseConfig(cfg)
		db, err := database.Connect(dbCfg, log)
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		if err := database.AutoMigrate(ctx, db, log); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("migrate database: %w", err)
		}
		return repo.NewGormRepository(db, dbCfg.Driver, log), cleanup, nil

	default:
		return nil, nil, fmt.Errorf("unknown record store backend %q", cfg.StoreBackend)
	}
}

func newDatabaseConfig(cfg *config.Config) database.Config {
	dbCfg := database.Config{
		Driver:          database.DriverPostgres,
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	}
	if cfg.StoreBackend == config.StoreSQLite {
		dbCfg.Driver = database.DriverSQLite
		dbCfg.DSN = cfg.SQLitePath
		dbCfg.MaxOpenConns = 1
	}
	return dbCfg
}

// provideRelay creates the asset relay selected by MEDIA_RELAY_BACKEND.
func provideRelay(ctx context.Context, cfg *config.Config, log zerolog.Logger) (domain.AssetRelay, error) {
	var (
		assetRelay domain.AssetRelay
		err        error
	)
	switch cfg.RelayBackend {
	case config.RelayLocal:
		assetRelay, err = relay.NewLocalRelay(cfg, log)
	case config.RelayS3:
		assetRelay, err = relay.NewS3Relay(ctx, cfg, log)
	case config.RelayCloudinary:
		assetRelay, err = relay.NewCloudinaryRelay(cfg, log)
	default:
		err = fmt.Errorf("unknown asset relay backend %q", cfg.RelayBackend)
	}
	if err != nil {
		return nil, err
	}
	return assetRelay, nil
}
