package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/janhq/media-catalog/internal/config"
	domain "github.com/janhq/media-catalog/internal/domain/media"
)

// LocalRelay writes assets under a directory served by the HTTP server.
type LocalRelay struct {
	basePath string
	baseURL  string
	log      zerolog.Logger
}

// NewLocalRelay creates the storage directory if it does not exist yet.
func NewLocalRelay(cfg *config.Config, log zerolog.Logger) (*LocalRelay, error) {
	logger := log.With().Str("component", "local-relay").Logger()

	basePath := strings.TrimSpace(cfg.LocalStoragePath)
	if basePath == "" {
		return nil, errors.New("MEDIA_LOCAL_STORAGE_PATH is not set")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create local storage directory: %w", err)
	}

	relay := &LocalRelay{
		basePath: basePath,
		baseURL:  cfg.LocalBaseURL(),
		log:      logger,
	}

	logger.Info().
		Str("path", basePath).
		Str("base_url", relay.baseURL).
		Msg("local relay initialized")

	return relay, nil
}

// BasePath is the directory served under /files.
func (l *LocalRelay) BasePath() string {
	return l.basePath
}

func (l *LocalRelay) Upload(ctx context.Context, req domain.UploadRequest) (*domain.Asset, error) {
	key := objectKey(req.Folder, req.Filename)
	var asset *domain.Asset

	err := observe(ctx, config.RelayLocal, "upload", req.Kind, func(ctx context.Context, span trace.Span) error {
		span.SetAttributes(attribute.String("local.key", key))
		written, err := l.write(ctx, key, req.Body)
		if err != nil {
			return externalError(ctx, fmt.Sprintf("local %s upload failed", req.Kind), err, "e5b83c1d-6a2f-4d7e-8b9c-0a4f1e6d2c57")
		}
		l.log.Debug().Str("key", key).Int64("bytes", written).Msg("asset written to local storage")
		asset = &domain.Asset{
			URL:  l.baseURL + "/" + key,
			Ref:  key,
			Kind: req.Kind,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return asset, nil
}

// Delete removes the file behind the asset. A file that is already gone counts as deleted.
func (l *LocalRelay) Delete(ctx context.Context, asset domain.Asset) error {
	return observe(ctx, config.RelayLocal, "delete", asset.Kind, func(ctx context.Context, span trace.Span) error {
		span.SetAttributes(attribute.String("local.key", asset.Ref))
		fullPath, err := l.resolve(asset.Ref)
		if err != nil {
			return externalError(ctx, "local delete failed", err, "1d9e4a7b-2c6f-4e3a-b8d5-7f0c3a9e6b21")
		}
		if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
			return externalError(ctx, "local delete failed", err, "8c2f6b3e-9a1d-4f5c-a7e0-3b6d9c2f8e14")
		}
		return nil
	})
}

func (l *LocalRelay) write(ctx context.Context, key string, body io.Reader) (int64, error) {
	fullPath, err := l.resolve(key)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return 0, fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}

	written, err := io.Copy(file, contextReader{ctx: ctx, r: body})
	closeErr := file.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(fullPath)
		return 0, fmt.Errorf("failed to write file: %w", err)
	}
	return written, nil
}

// resolve maps a key to a path inside basePath.
func (l *LocalRelay) resolve(key string) (string, error) {
	fullPath := filepath.Join(l.basePath, filepath.FromSlash(key))
	rel, err := filepath.Rel(l.basePath, fullPath)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("invalid asset key %q", key)
	}
	return fullPath, nil
}

// contextReader stops a copy once the upload deadline passes.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
