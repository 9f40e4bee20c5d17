package badgerstorage

import (
	"github.com/rs/zerolog"
)

// DefaultPrefix is the default key prefix of the items.
var DefaultPrefix = "webstore:"

// Option is the interface for the options of the Badger storage.
type Option interface {
	apply(*options)
}

type optionFunc func(*options)

func (f optionFunc) apply(o *options) {
	f(o)
}

// WithPrefix sets the key prefix of the items. The prefix must not be empty.
func WithPrefix(prefix string) Option {
	if prefix == "" {
		panic("prefix must not be empty")
	}
	return optionFunc(func(o *options) {
		o.prefix = prefix
	})
}

// WithLogger sets the logger that receives Badger's internal logs.
func WithLogger(logger zerolog.Logger) Option {
	return optionFunc(func(o *options) {
		o.logger = logger
	})
}

// WithSyncWrites makes every write synced to disk before returning.
func WithSyncWrites(sync bool) Option {
	return optionFunc(func(o *options) {
		o.syncWrites = sync
	})
}

type options struct {
	prefix     string
	logger     zerolog.Logger
	syncWrites bool
}

func defaultOptions() options {
	return options{
		prefix: DefaultPrefix,
		logger: zerolog.Nop(),
	}
}
