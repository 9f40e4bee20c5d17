package webstore

import (
	"github.com/rs/zerolog"
)

// DefaultProbeKey is the key written and removed by the self-test.
var DefaultProbeKey = "__webstore__"

// Option is the interface for the options of the Store.
type Option interface {
	apply(*options)
}

type optionFunc func(*options)

func (f optionFunc) apply(o *options) {
	f(o)
}

// WithPrimary sets the provider of the primary storage mechanism.
// The provider is called once by New.
func WithPrimary(provider StorageProvider) Option {
	return optionFunc(func(o *options) {
		o.primary = provider
	})
}

// WithPrimaryStorage sets an already resolved primary storage mechanism.
// A nil storage is treated as an unavailable primary mechanism.
func WithPrimaryStorage(storage Storage) Option {
	return WithPrimary(func() (Storage, error) {
		if storage == nil {
			return nil, ErrPrimaryUnavailable
		}
		return storage, nil
	})
}

// WithFallback sets the fallback storage mechanism.
// It is used only when the primary storage mechanism is unavailable.
func WithFallback(fallback FallbackStorage) Option {
	return optionFunc(func(o *options) {
		o.fallback = fallback
	})
}

// WithCodec sets the codec used for the primary storage mechanism.
// The default codec is JSONCodec.
func WithCodec(codec Codec) Option {
	if codec == nil {
		panic("codec must not be nil")
	}
	return optionFunc(func(o *options) {
		o.codec = codec
	})
}

// WithLogger sets the logger. The default logger discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return optionFunc(func(o *options) {
		o.logger = logger
	})
}

// WithProbeKey sets the key used by the self-test.
func WithProbeKey(key string) Option {
	if key == "" {
		panic("probe key must not be empty")
	}
	return optionFunc(func(o *options) {
		o.probeKey = key
	})
}

// WithAdvisorySelfTest makes a failed self-test advisory only.
// By default, every operation of a Store whose self-test failed returns ErrDisabled.
// With this option the Store only reports Disabled() and keeps calling the bound mechanism.
func WithAdvisorySelfTest() Option {
	return optionFunc(func(o *options) {
		o.advisory = true
	})
}

type options struct {
	primary  StorageProvider
	fallback FallbackStorage
	codec    Codec
	logger   zerolog.Logger
	probeKey string
	advisory bool
}

func defaultOptions() options {
	return options{
		codec:    JSONCodec{},
		logger:   zerolog.Nop(),
		probeKey: DefaultProbeKey,
	}
}
