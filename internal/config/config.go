// Package config loads the configuration of the webstore command.
//
// Values are read from a YAML file and then from WEBSTORE_ environment variables,
// later sources overriding earlier ones:
//
//	WEBSTORE_STORAGE_BACKEND=sqlite -> storage.backend
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
)

// DefaultEnvPrefix is the prefix of the environment variables read by Load.
const DefaultEnvPrefix = "WEBSTORE_"

// Backends of the primary storage mechanism.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
	BackendNone   = "none"
)

var ErrInvalid = errors.New("invalid configuration")

// Config is the configuration of the webstore command.
type Config struct {
	Log     LogConfig     `koanf:"log"`
	Storage StorageConfig `koanf:"storage"`
	Cookie  CookieConfig  `koanf:"cookie"`
	Metrics MetricsConfig `koanf:"metrics"`
}

type LogConfig struct {
	Level string `koanf:"level"`
}

type StorageConfig struct {
	// Backend is one of memory, sqlite, badger or none.
	// With none, the cookie fallback mechanism is used.
	Backend string `koanf:"backend"`

	// Path is the SQLite database file or the Badger directory.
	// Badger runs in memory when it is empty.
	// The sqlite backend defaults to webstore/webstore.db under the user configuration directory.
	Path string `koanf:"path"`

	// Prefix namespaces the Badger keys.
	Prefix string `koanf:"prefix"`

	// Quota limits the memory backend in bytes. Zero means unlimited.
	Quota int `koanf:"quota"`

	Probe    string `koanf:"probe"`
	Advisory bool   `koanf:"advisory"`
}

type CookieConfig struct {
	// URL is the origin of the fallback cookies.
	URL    string        `koanf:"url"`
	Path   string        `koanf:"path"`
	MaxAge time.Duration `koanf:"maxage"`
}

type MetricsConfig struct {
	// Dump prints the collected metrics to stderr when the command exits.
	Dump bool `koanf:"dump"`
}

// Default returns the configuration used for keys that no source sets.
func Default() Config {
	return Config{
		Log: LogConfig{Level: "info"},
		Storage: StorageConfig{
			Backend: BackendSQLite,
			Path:    DefaultPath(),
		},
		Cookie: CookieConfig{
			URL:  "http://localhost/",
			Path: "/",
		},
	}
}

// DefaultPath returns the default SQLite database file.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "webstore", "webstore.db")
}

// Durable reports whether the configured backend keeps values after the process exits.
func (c *StorageConfig) Durable() bool {
	switch c.Backend {
	case BackendSQLite:
		return true
	case BackendBadger:
		return c.Path != ""
	default:
		return false
	}
}

// Load reads the file, if any, and the environment into a copy of Default.
func Load(path string) (Config, error) {
	return load(path, DefaultEnvPrefix)
}

func load(path, envPrefix string) (Config, error) {
	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	transform := func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".")
	}
	if err := k.Load(env.Provider(envPrefix, ".", transform), nil); err != nil {
		return Config{}, fmt.Errorf("load env: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	// The default path belongs to the default backend only.
	if !k.Exists("storage.path") && cfg.Storage.Backend != BackendSQLite {
		cfg.Storage.Path = ""
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values that cannot be checked by their types.
func (c *Config) Validate() error {
	var errs []error
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}

	switch c.Storage.Backend {
	case BackendMemory, BackendBadger, BackendNone:
	case BackendSQLite:
		if c.Storage.Path == "" {
			errs = append(errs, errors.New("storage.path is required for the sqlite backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.backend: unknown backend %q", c.Storage.Backend))
	}
	if c.Storage.Quota < 0 {
		errs = append(errs, errors.New("storage.quota must not be negative"))
	}

	if !strings.HasPrefix(c.Cookie.Path, "/") {
		errs = append(errs, fmt.Errorf("cookie.path: %q must start with /", c.Cookie.Path))
	}
	if c.Cookie.MaxAge != 0 && c.Cookie.MaxAge < time.Second {
		errs = append(errs, errors.New("cookie.maxage must be zero or at least one second"))
	}

	if len(errs) != 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// LogLevel returns the parsed log level.
func (c *Config) LogLevel() zerolog.Level {
	level, err := zerolog.ParseLevel(c.Log.Level)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}
