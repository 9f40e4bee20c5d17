package memstorage

// Option is the interface for the options of the in-memory storage.
type Option interface {
	apply(*options)
}

type optionFunc func(*options)

func (f optionFunc) apply(o *options) {
	f(o)
}

// WithQuota limits the total size of keys and values in bytes.
// SetItem fails with storage.ErrQuotaExceeded when the limit would be exceeded.
// The quota must be a natural number.
func WithQuota(bytes int) Option {
	if bytes <= 0 {
		panic("quota must be natural number")
	}
	return optionFunc(func(o *options) {
		o.quota = bytes
	})
}

type options struct {
	quota int
}

func defaultOptions() options {
	return options{}
}
