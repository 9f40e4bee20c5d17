package storage

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/karupanerura/webstore"
)

// TracerName is the instrumentation name used by TracedStorage.
const TracerName = "github.com/karupanerura/webstore/storage"

var _ webstore.Storage = (*TracedStorage)(nil)

// TracedStorage is a decorator for a webstore.Storage that records an OpenTelemetry span per operation.
type TracedStorage struct {
	storage webstore.Storage
	tracer  trace.Tracer
}

// NewTracedStorage wraps the storage. If the provider is nil, the global tracer provider is used.
func NewTracedStorage(storage webstore.Storage, provider trace.TracerProvider) *TracedStorage {
	if provider == nil {
		provider = otel.GetTracerProvider()
	}
	return &TracedStorage{
		storage: storage,
		tracer:  provider.Tracer(TracerName),
	}
}

func (s *TracedStorage) start(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "webstore.storage."+operation, trace.WithAttributes(attrs...))
}

func end(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// GetItem calls the underlying storage in a span.
func (s *TracedStorage) GetItem(ctx context.Context, key string) (value string, ok bool, err error) {
	ctx, span := s.start(ctx, "GetItem", attribute.String("webstore.key", key))
	defer func() {
		span.SetAttributes(attribute.Bool("webstore.found", ok))
		end(span, err)
	}()
	return s.storage.GetItem(ctx, key)
}

// SetItem calls the underlying storage in a span.
func (s *TracedStorage) SetItem(ctx context.Context, key, value string) (err error) {
	ctx, span := s.start(ctx, "SetItem", attribute.String("webstore.key", key), attribute.Int("webstore.value_size", len(value)))
	defer func() { end(span, err) }()
	return s.storage.SetItem(ctx, key, value)
}

// RemoveItem calls the underlying storage in a span.
func (s *TracedStorage) RemoveItem(ctx context.Context, key string) (err error) {
	ctx, span := s.start(ctx, "RemoveItem", attribute.String("webstore.key", key))
	defer func() { end(span, err) }()
	return s.storage.RemoveItem(ctx, key)
}

// Clear calls the underlying storage in a span.
func (s *TracedStorage) Clear(ctx context.Context) (err error) {
	ctx, span := s.start(ctx, "Clear")
	defer func() { end(span, err) }()
	return s.storage.Clear(ctx)
}

// Length calls the underlying storage in a span.
func (s *TracedStorage) Length(ctx context.Context) (n int, err error) {
	ctx, span := s.start(ctx, "Length")
	defer func() { end(span, err) }()
	return s.storage.Length(ctx)
}

// Key calls the underlying storage in a span.
func (s *TracedStorage) Key(ctx context.Context, index int) (key string, ok bool, err error) {
	ctx, span := s.start(ctx, "Key", attribute.Int("webstore.index", index))
	defer func() { end(span, err) }()
	return s.storage.Key(ctx, index)
}
