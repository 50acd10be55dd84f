package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// StorageOperation is the kind of storage access being traced.
type StorageOperation string

const (
	StorageOperationLoad StorageOperation = "load"
	StorageOperationSave StorageOperation = "save"
)

// StartStorageSpan creates a client span for a storage backend access.
// The returned function ends the span, recording err when non-nil.
func StartStorageSpan(ctx context.Context, system string, op StorageOperation) (context.Context, func(error)) {
	tracer := otel.Tracer("tourplan/storage")

	ctx, span := tracer.Start(ctx, string(op)+" tour state",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", system),
			attribute.String("db.operation", string(op)),
		),
	)
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}

// StartSpan creates a span for a general operation.
func StartSpan(ctx context.Context, name string) (context.Context, func(error)) {
	tracer := otel.Tracer("tourplan")

	ctx, span := tracer.Start(ctx, name)
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}
