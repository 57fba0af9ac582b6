package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/bjaus/mvc"
)

const tracerName = "github.com/bjaus/mvc"

// Tracing returns router options that wrap each action in a span.
func Tracing(tp trace.TracerProvider) []mvc.Option {
	tracer := tp.Tracer(tracerName)
	return []mvc.Option{
		mvc.WithOnMatch(func(ctx context.Context, t mvc.Target) context.Context {
			ctx, _ = tracer.Start(ctx, t.String(),
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("mvc.controller", t.Controller),
					attribute.String("mvc.action", t.Action),
				),
			)
			return ctx
		}),
		mvc.WithOnSuccess(func(ctx context.Context, _ mvc.Target, _ time.Duration) {
			span := trace.SpanFromContext(ctx)
			span.SetStatus(codes.Ok, "")
			span.End()
		}),
		mvc.WithOnFailure(func(ctx context.Context, _ mvc.Target, err error, _ time.Duration) {
			span := trace.SpanFromContext(ctx)
			span.RecordError(err)
			span.SetAttributes(attribute.Int("http.response.status_code", mvc.StatusOf(err)))
			span.SetStatus(codes.Error, err.Error())
			span.End()
		}),
	}
}
