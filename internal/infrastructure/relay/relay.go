package relay

import (
	"context"
	"path"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	domain "github.com/janhq/media-catalog/internal/domain/media"
	"github.com/janhq/media-catalog/internal/infrastructure/metrics"
	"github.com/janhq/media-catalog/internal/infrastructure/observability"
	"github.com/janhq/media-catalog/internal/utils/platformerrors"
	"github.com/janhq/media-catalog/utils/mediaid"
)

// objectKey builds a collision-free key under folder, keeping the original file extension.
func objectKey(folder, filename string) string {
	ext := strings.ToLower(path.Ext(strings.TrimSpace(filename)))
	if len(ext) > 10 || strings.ContainsAny(ext, `/\ `) {
		ext = ""
	}
	name := mediaid.Token() + ext
	folder = strings.Trim(strings.TrimSpace(folder), "/")
	if folder == "" {
		return name
	}
	return folder + "/" + name
}

// observe wraps a single relay call with a span and the relay metrics.
func observe(ctx context.Context, backend, operation string, kind domain.AssetKind, fn func(ctx context.Context, span trace.Span) error) error {
	ctx, span := observability.StartRelaySpan(ctx, backend, operation, string(kind))
	defer span.End()

	start := time.Now()
	err := fn(ctx, span)
	metrics.RecordRelayOperation(backend, operation, string(kind), metrics.Status(err), time.Since(start).Seconds())
	observability.RecordError(span, err)
	return err
}

func externalError(ctx context.Context, message string, err error, uuid string) error {
	return platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, message, err, uuid)
}
