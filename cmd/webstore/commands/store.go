package commands

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/rs/zerolog"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/karupanerura/webstore"
	"github.com/karupanerura/webstore/internal/config"
	"github.com/karupanerura/webstore/storage"
	"github.com/karupanerura/webstore/storage/badgerstorage"
	"github.com/karupanerura/webstore/storage/cookiestorage"
	"github.com/karupanerura/webstore/storage/memstorage"
	"github.com/karupanerura/webstore/storage/sqlitestorage"
)

// openStore builds the Store described by the configuration.
// The returned closers release the primary mechanism and flush the traces.
func openStore(ctx context.Context, cfg config.Config, logger zerolog.Logger, reg prometheus.Registerer) (*webstore.Store, []func() error, error) {
	origin, err := url.Parse(cfg.Cookie.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("cookie.url: %w", err)
	}
	cookieOpts := []cookiestorage.Option{cookiestorage.WithPath(cfg.Cookie.Path)}
	if cfg.Cookie.MaxAge > 0 {
		cookieOpts = append(cookieOpts, cookiestorage.WithMaxAge(cfg.Cookie.MaxAge))
	}
	fallback, err := cookiestorage.New(origin, cookieOpts...)
	if err != nil {
		return nil, nil, err
	}

	tracerProvider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(&logSpanProcessor{logger: logger}))
	closers := []func() error{
		func() error { return tracerProvider.Shutdown(context.WithoutCancel(ctx)) },
	}

	provider := func() (webstore.Storage, error) {
		primary, closer, err := openPrimary(cfg.Storage, logger)
		if err != nil {
			return nil, err
		}
		if closer != nil {
			closers = append(closers, closer)
		}

		instrumented, err := storage.NewInstrumentedStorage(primary, reg, cfg.Storage.Backend)
		if err != nil {
			return nil, err
		}
		return storage.NewTracedStorage(instrumented, tracerProvider), nil
	}

	opts := []webstore.Option{
		webstore.WithPrimary(provider),
		webstore.WithFallback(fallback),
		webstore.WithLogger(logger),
	}
	if cfg.Storage.Probe != "" {
		opts = append(opts, webstore.WithProbeKey(cfg.Storage.Probe))
	}
	if cfg.Storage.Advisory {
		opts = append(opts, webstore.WithAdvisorySelfTest())
	}

	store, err := webstore.New(ctx, opts...)
	if err != nil {
		return nil, closers, err
	}
	return store, closers, nil
}

func openPrimary(cfg config.StorageConfig, logger zerolog.Logger) (webstore.Storage, func() error, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		var opts []memstorage.Option
		if cfg.Quota > 0 {
			opts = append(opts, memstorage.WithQuota(cfg.Quota))
		}
		return memstorage.New(opts...), nil, nil
	case config.BackendSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o700); err != nil {
			return nil, nil, err
		}
		s, err := sqlitestorage.Open(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case config.BackendBadger:
		opts := []badgerstorage.Option{badgerstorage.WithLogger(logger)}
		if cfg.Prefix != "" {
			opts = append(opts, badgerstorage.WithPrefix(cfg.Prefix))
		}

		var s *badgerstorage.Storage
		var err error
		if cfg.Path == "" {
			s, err = badgerstorage.OpenInMemory(opts...)
		} else {
			s, err = badgerstorage.Open(cfg.Path, opts...)
		}
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: backend %q", webstore.ErrPrimaryUnavailable, cfg.Backend)
	}
}

func dumpMetrics(w io.Writer, gatherer prometheus.Gatherer) error {
	families, err := gatherer.Gather()
	if err != nil {
		return err
	}
	for _, family := range families {
		if _, err := expfmt.MetricFamilyToText(w, family); err != nil {
			return err
		}
	}
	return nil
}
