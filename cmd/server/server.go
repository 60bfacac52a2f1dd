package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/janhq/media-catalog/internal/config"
	domain "github.com/janhq/media-catalog/internal/domain/media"
	"github.com/janhq/media-catalog/internal/infrastructure/logger"
	"github.com/janhq/media-catalog/internal/infrastructure/observability"
	"github.com/janhq/media-catalog/internal/interfaces/httpserver"
)

// @title Media Catalog API
// @version 1.0
// @description Relays thumbnails and videos to a media host and catalogs the resulting records
// @BasePath /
type Application struct {
	httpServer *httpserver.HttpServer
	log        zerolog.Logger
}

func NewApplication(httpServer *httpserver.HttpServer, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		log:        log,
	}
}

func (a *Application) Start(ctx context.Context) error {
	return a.httpServer.Run(ctx)
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	mediaRepository, closeRepository, err := provideRepository(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.StoreBackend).Msg("initialize record store")
	}
	defer closeRepository()

	assetRelay, err := provideRelay(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.RelayBackend).Msg("initialize asset relay")
	}

	mediaService := domain.NewService(cfg, mediaRepository, assetRelay, log)

	httpServer := httpserver.New(cfg, log, mediaService)
	app := NewApplication(httpServer, log)

	log.Info().
		Str("store", cfg.StoreBackend).
		Str("relay", cfg.RelayBackend).
		Msg("media catalog starting")

	if err := app.Start(ctx); err != nil {
		log.Error().Err(err).Msg("application stopped with error")
		return
	}

	log.Info().Msg("application exited cleanly")
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
