package storage

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/karupanerura/webstore"
)

var _ webstore.Storage = (*InstrumentedStorage)(nil)

// InstrumentedStorage is a decorator for a webstore.Storage that records Prometheus metrics
// for every operation: a counter of operations by result and a histogram of their durations.
type InstrumentedStorage struct {
	storage    webstore.Storage
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewInstrumentedStorage wraps the storage and registers its collectors to the registerer.
// The name is attached to every metric as the "storage" label.
// Collectors already registered by another InstrumentedStorage are shared.
func NewInstrumentedStorage(storage webstore.Storage, reg prometheus.Registerer, name string) (*InstrumentedStorage, error) {
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   "webstore",
		Subsystem:   "storage",
		Name:        "operations_total",
		Help:        "Total number of storage mechanism operations.",
		ConstLabels: prometheus.Labels{"storage": name},
	}, []string{"operation", "result"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   "webstore",
		Subsystem:   "storage",
		Name:        "operation_duration_seconds",
		Help:        "Duration of storage mechanism operations.",
		ConstLabels: prometheus.Labels{"storage": name},
		Buckets:     prometheus.DefBuckets,
	}, []string{"operation"})

	var err error
	if operations, err = register(reg, operations); err != nil {
		return nil, err
	}
	if duration, err = register(reg, duration); err != nil {
		return nil, err
	}

	return &InstrumentedStorage{
		storage:    storage,
		operations: operations,
		duration:   duration,
	}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (s *InstrumentedStorage) observe(operation string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	s.operations.WithLabelValues(operation, result).Inc()
	s.duration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// GetItem calls the underlying storage and records the operation.
func (s *InstrumentedStorage) GetItem(ctx context.Context, key string) (value string, ok bool, err error) {
	defer func(start time.Time) { s.observe("get_item", start, err) }(time.Now())
	return s.storage.GetItem(ctx, key)
}

// SetItem calls the underlying storage and records the operation.
func (s *InstrumentedStorage) SetItem(ctx context.Context, key, value string) (err error) {
	defer func(start time.Time) { s.observe("set_item", start, err) }(time.Now())
	return s.storage.SetItem(ctx, key, value)
}

// RemoveItem calls the underlying storage and records the operation.
func (s *InstrumentedStorage) RemoveItem(ctx context.Context, key string) (err error) {
	defer func(start time.Time) { s.observe("remove_item", start, err) }(time.Now())
	return s.storage.RemoveItem(ctx, key)
}

// Clear calls the underlying storage and records the operation.
func (s *InstrumentedStorage) Clear(ctx context.Context) (err error) {
	defer func(start time.Time) { s.observe("clear", start, err) }(time.Now())
	return s.storage.Clear(ctx)
}

// Length calls the underlying storage and records the operation.
func (s *InstrumentedStorage) Length(ctx context.Context) (n int, err error) {
	defer func(start time.Time) { s.observe("length", start, err) }(time.Now())
	return s.storage.Length(ctx)
}

// Key calls the underlying storage and records the operation.
func (s *InstrumentedStorage) Key(ctx context.Context, index int) (key string, ok bool, err error) {
	defer func(start time.Time) { s.observe("key", start, err) }(time.Now())
	return s.storage.Key(ctx, index)
}
