package storage

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracedStorage records one span per storage call.
type TracedStorage struct {
	next    Storage
	tracer  trace.Tracer
	backend string
}

func WithTracing(next Storage, tracer trace.Tracer, backend string) *TracedStorage {
	return &TracedStorage{
		next:    next,
		tracer:  tracer,
		backend: backend,
	}
}

func (t *TracedStorage) GetItem(ctx context.Context, key string) (string, error) {
	ctx, span := t.start(ctx, "storage.get_item", key)
	defer span.End()

	value, err := t.next.GetItem(ctx, key)
	switch {
	case err == nil:
		span.SetAttributes(attribute.Int("storage.value_size", len(value)))
	case errors.Is(err, ErrKeyNotFound):
		span.SetAttributes(attribute.Bool("storage.miss", true))
	default:
		recordError(span, err)
	}
	return value, err
}

func (t *TracedStorage) SetItem(ctx context.Context, key, value string) error {
	ctx, span := t.start(ctx, "storage.set_item", key)
	defer span.End()
	span.SetAttributes(attribute.Int("storage.value_size", len(value)))

	err := t.next.SetItem(ctx, key, value)
	recordError(span, err)
	return err
}

func (t *TracedStorage) RemoveItem(ctx context.Context, key string) error {
	ctx, span := t.start(ctx, "storage.remove_item", key)
	defer span.End()

	err := t.next.RemoveItem(ctx, key)
	recordError(span, err)
	return err
}

func (t *TracedStorage) Close() error {
	return t.next.Close()
}

func (t *TracedStorage) start(ctx context.Context, name, key string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("storage.backend", t.backend),
			attribute.String("storage.key", key),
		),
	)
}

func recordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
