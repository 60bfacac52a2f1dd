//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"

	"github.com/janhq/media-catalog/internal/config"
	domain "github.com/janhq/media-catalog/internal/domain/media"
	"github.com/janhq/media-catalog/internal/infrastructure/logger"
	"github.com/janhq/media-catalog/internal/interfaces/httpserver"
)

var mediaSet = wire.NewSet(
	provideRepository,
	provideRelay,
	domain.NewService,
)

// BuildApplication assembles the media catalog with Wire.
func BuildApplication(ctx context.Context) (*Application, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		mediaSet,
		httpserver.New,
		NewApplication,
	)
	return nil, nil, nil
}
