package webstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/karupanerura/webstore/internal/safecall"
)

// Version is the version of the webstore library.
const Version = "0.1.0"

// Mechanism identifies the storage mechanism a Store is bound to.
type Mechanism int

const (
	// MechanismPrimary means the Store is bound to the primary Storage.
	MechanismPrimary Mechanism = iota + 1

	// MechanismFallback means the Store is bound to the FallbackStorage.
	MechanismFallback
)

// String returns the name of the mechanism.
func (m Mechanism) String() string {
	switch m {
	case MechanismPrimary:
		return "primary"
	case MechanismFallback:
		return "fallback"
	default:
		return fmt.Sprintf("Mechanism(%d)", int(m))
	}
}

// Store is a key-value facade over a primary storage mechanism with a fallback.
// The mechanism is selected once by New and never changes afterwards.
//
// A Store adds no locking: Transact is a read-modify-write helper, not an atomic operation.
type Store struct {
	binding   binding
	mechanism Mechanism
	codec     Codec
	logger    zerolog.Logger
	advisory  bool

	selfTestErr error
}

// New creates a Store.
//
// It resolves the primary storage mechanism through the configured provider. When the provider
// is missing, fails, panics or returns nil, the Store is bound to the fallback mechanism instead;
// if no fallback is configured either, New returns ErrNoMechanism.
// Then it runs a self-test that writes, reads back and removes the probe key. The self-test
// result never makes New fail; see Disabled and WithAdvisorySelfTest.
func New(ctx context.Context, opts ...Option) (*Store, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt.apply(&options)
	}

	s := &Store{
		codec:    options.codec,
		logger:   options.logger,
		advisory: options.advisory,
	}

	primary, err := resolvePrimary(options.primary)
	if err == nil {
		s.mechanism = MechanismPrimary
		s.binding = &primaryBinding{storage: primary, store: s}
	} else {
		if options.fallback == nil {
			return nil, fmt.Errorf("%w: %w", ErrNoMechanism, err)
		}
		s.logger.Warn().Err(err).Msg("primary storage mechanism is unavailable, using fallback")
		s.mechanism = MechanismFallback
		s.binding = &fallbackBinding{storage: options.fallback}
	}
	s.logger.Info().
		Stringer("mechanism", s.mechanism).
		Str("codec", s.codec.Name()).
		Msg("storage mechanism bound")

	s.selfTestErr = s.selfTest(ctx, options.probeKey)
	if s.selfTestErr != nil {
		s.logger.Error().Err(s.selfTestErr).Str("probe", options.probeKey).Msg("storage self-test failed")
	}
	return s, nil
}

func resolvePrimary(provider StorageProvider) (Storage, error) {
	if provider == nil {
		return nil, ErrPrimaryUnavailable
	}

	storage, err := safecall.Value(func() (Storage, error) {
		return provider()
	})
	if err != nil {
		if errors.Is(err, ErrPrimaryUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrPrimaryUnavailable, err)
	}
	if storage == nil {
		return nil, ErrPrimaryUnavailable
	}
	return storage, nil
}

// selfTest writes the probe key, reads it back and removes it.
func (s *Store) selfTest(ctx context.Context, probe string) error {
	return safecall.Call(func() error {
		if _, err := s.set(ctx, probe, probe); err != nil {
			return err
		}

		var mismatch error
		got, ok, err := s.binding.get(ctx, probe)
		if err != nil {
			return err
		} else if !ok || got != any(probe) {
			mismatch = fmt.Errorf("%w: got %#v", ErrProbeMismatch, got)
		}
		return errors.Join(mismatch, s.binding.remove(ctx, probe))
	})
}

// Mechanism returns the mechanism the Store is bound to.
func (s *Store) Mechanism() Mechanism {
	return s.mechanism
}

// Disabled reports whether the self-test failed.
func (s *Store) Disabled() bool {
	return s.selfTestErr != nil
}

// Enabled reports whether the self-test succeeded.
func (s *Store) Enabled() bool {
	return !s.Disabled()
}

// SelfTestError returns the error that made the self-test fail, or nil.
func (s *Store) SelfTestError() error {
	return s.selfTestErr
}

// Version returns the library version.
func (s *Store) Version() string {
	return Version
}

// SupportsEnumeration reports whether GetAll and ForEach are available.
// Only the primary mechanism can enumerate its entries.
func (s *Store) SupportsEnumeration() bool {
	return s.mechanism == MechanismPrimary
}

// guard returns ErrDisabled when the self-test failed, unless the self-test is advisory.
func (s *Store) guard() error {
	if s.selfTestErr == nil || s.advisory {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrDisabled, s.selfTestErr)
}
