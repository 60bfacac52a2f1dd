package relay

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	cldconfig "github.com/cloudinary/cloudinary-go/v2/config"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/janhq/media-catalog/internal/config"
	domain "github.com/janhq/media-catalog/internal/domain/media"
)

// CloudinaryRelay uploads assets to Cloudinary, one folder per asset kind.
type CloudinaryRelay struct {
	cld *cloudinary.Cloudinary
	log zerolog.Logger
}

func NewCloudinaryRelay(cfg *config.Config, log zerolog.Logger) (*CloudinaryRelay, error) {
	logger := log.With().Str("component", "cloudinary-relay").Logger()

	// The client copies its configuration into the upload and admin APIs, so
	// overrides must be applied before it is built.
	cldCfg, err := cldconfig.NewFromParams(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		return nil, fmt.Errorf("create cloudinary configuration: %w", err)
	}
	if prefix := strings.TrimSpace(cfg.CloudinaryUploadPrefix); prefix != "" {
		cldCfg.API.UploadPrefix = strings.TrimSuffix(prefix, "/")
	}

	cld, err := cloudinary.NewFromConfiguration(*cldCfg)
	if err != nil {
		return nil, fmt.Errorf("create cloudinary client: %w", err)
	}

	logger.Info().
		Str("cloud_name", cfg.CloudinaryCloudName).
		Str("upload_prefix", cld.Upload.Config.API.UploadPrefix).
		Msg("cloudinary relay initialized")

	return &CloudinaryRelay{cld: cld, log: logger}, nil
}

func (c *CloudinaryRelay) Upload(ctx context.Context, req domain.UploadRequest) (*domain.Asset, error) {
	var asset *domain.Asset

	err := observe(ctx, config.RelayCloudinary, "upload", req.Kind, func(ctx context.Context, span trace.Span) error {
		resp, err := c.cld.Upload.Upload(ctx, req.Body, uploader.UploadParams{
			Folder:       req.Folder,
			ResourceType: string(req.Kind),
		})
		if err != nil {
			return externalError(ctx, fmt.Sprintf("cloudinary %s upload failed", req.Kind), err, "3b7e1c9a-5d2f-4a8e-9c6b-0f4d8a2e7c15")
		}
		if resp.Error.Message != "" {
			return externalError(ctx, fmt.Sprintf("cloudinary rejected %s upload", req.Kind), errors.New(resp.Error.Message), "6d0a4f8c-1e7b-4c3d-a5f9-8b2e6c0d4a71")
		}
		if resp.SecureURL == "" {
			return externalError(ctx, fmt.Sprintf("cloudinary returned no url for %s", req.Kind), nil, "9f3c7a1e-4b8d-4e2a-b6c0-2d5f9e3a7b86")
		}

		span.SetAttributes(attribute.String("cloudinary.public_id", resp.PublicID))
		asset = &domain.Asset{URL: resp.SecureURL, Ref: resp.PublicID, Kind: req.Kind}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.log.Debug().Str("public_id", asset.Ref).Str("kind", string(req.Kind)).Msg("asset uploaded to cloudinary")
	return asset, nil
}

// Delete destroys the asset by public id. An asset Cloudinary no longer knows counts as deleted.
func (c *CloudinaryRelay) Delete(ctx context.Context, asset domain.Asset) error {
	return observe(ctx, config.RelayCloudinary, "delete", asset.Kind, func(ctx context.Context, span trace.Span) error {
		span.SetAttributes(attribute.String("cloudinary.public_id", asset.Ref))
		resp, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{
			PublicID:     asset.Ref,
			ResourceType: string(asset.Kind),
		})
		if err != nil {
			return externalError(ctx, "cloudinary destroy failed", err, "c4e8a2d6-7f1b-4d9c-8a3e-5b0f7d1c9e28")
		}
		if resp.Error.Message != "" {
			return externalError(ctx, "cloudinary rejected destroy", errors.New(resp.Error.Message), "2a6f0c4e-8d3b-4e7a-9f1c-6e2a8d4b0f53")
		}
		switch resp.Result {
		case "ok", "not found":
			return nil
		default:
			return externalError(ctx, fmt.Sprintf("cloudinary destroy returned %q", resp.Result), nil, "7e1b5d9f-3a6c-4f2e-b8d0-4c7a1e5f9b32")
		}
	})
}
