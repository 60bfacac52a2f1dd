package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName = "jan-server/media-catalog"
)

// GetTracer returns the tracer for the media catalog service.
func GetTracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// StartCreateSpan starts the span covering one create-media operation.
func StartCreateSpan(ctx context.Context, title string) (context.Context, trace.Span) {
	return GetTracer().Start(ctx, "media.create",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.Int("media.title_length", len(title))),
	)
}

// StartRelaySpan starts a span for an asset relay call.
func StartRelaySpan(ctx context.Context, backend, operation, kind string) (context.Context, trace.Span) {
	return GetTracer().Start(ctx, "relay."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("relay.backend", backend),
			attribute.String("relay.asset_kind", kind),
		),
	)
}

// StartStoreSpan starts a span for a record store call.
func StartStoreSpan(ctx context.Context, backend, operation string) (context.Context, trace.Span) {
	return GetTracer().Start(ctx, "store."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", backend),
			attribute.String("db.operation", operation),
		),
	)
}

// RecordError records an error on a span.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// AddCompensationEvent marks a best-effort asset cleanup on the span carried by ctx.
func AddCompensationEvent(ctx context.Context, ref string, err error) {
	span := trace.SpanFromContext(ctx)
	attrs := []attribute.KeyValue{
		attribute.String("asset.ref", ref),
		attribute.Bool("compensation.ok", err == nil),
	}
	span.AddEvent("compensation", trace.WithAttributes(attrs...))
}
