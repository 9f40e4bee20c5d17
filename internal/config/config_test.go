package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "webstore.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Default(t *testing.T) {
	t.Parallel()

	cfg, err := load("", "WEBSTORE_TEST_DEFAULT_")
	if err != nil {
		t.Fatal(err)
	}
	if df := cmp.Diff(Default(), cfg); df != "" {
		t.Errorf("config diff=%s", df)
	}
}

func TestLoad_File(t *testing.T) {
	t.Parallel()

	path := writeFile(t, `
log:
  level: debug
storage:
  backend: sqlite
  path: /var/lib/webstore.db
  probe: __probe__
  advisory: true
cookie:
  url: https://example.com/
  maxage: 1h
metrics:
  dump: true
`)
	cfg, err := load(path, "WEBSTORE_TEST_FILE_")
	if err != nil {
		t.Fatal(err)
	}

	expected := Config{
		Log: LogConfig{Level: "debug"},
		Storage: StorageConfig{
			Backend:  BackendSQLite,
			Path:     "/var/lib/webstore.db",
			Probe:    "__probe__",
			Advisory: true,
		},
		Cookie: CookieConfig{
			URL:    "https://example.com/",
			Path:   "/",
			MaxAge: time.Hour,
		},
		Metrics: MetricsConfig{Dump: true},
	}
	if df := cmp.Diff(expected, cfg); df != "" {
		t.Errorf("config diff=%s", df)
	}
	if cfg.LogLevel() != zerolog.DebugLevel {
		t.Errorf("expected debug level, got %v", cfg.LogLevel())
	}
}

func TestLoad_Env(t *testing.T) {
	path := writeFile(t, `
storage:
  backend: sqlite
  path: /from/file.db
`)
	t.Setenv("WEBSTORE_STORAGE_BACKEND", "badger")
	t.Setenv("WEBSTORE_STORAGE_PREFIX", "app:")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Storage.Backend != BackendBadger {
		t.Errorf("env should override the file, got backend %q", cfg.Storage.Backend)
	}
	if cfg.Storage.Path != "/from/file.db" || cfg.Storage.Prefix != "app:" {
		t.Errorf("unexpected storage config %+v", cfg.Storage)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	t.Parallel()

	if _, err := load(filepath.Join(t.TempDir(), "missing.yaml"), "WEBSTORE_TEST_MISSING_"); err == nil {
		t.Error("loading a missing file should fail")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{name: "unknown backend", modify: func(c *Config) { c.Storage.Backend = "redis" }},
		{name: "sqlite without path", modify: func(c *Config) { c.Storage.Backend, c.Storage.Path = BackendSQLite, "" }},
		{name: "negative quota", modify: func(c *Config) { c.Storage.Quota = -1 }},
		{name: "log level", modify: func(c *Config) { c.Log.Level = "loud" }},
		{name: "cookie path", modify: func(c *Config) { c.Cookie.Path = "app" }},
		{name: "cookie max age", modify: func(c *Config) { c.Cookie.MaxAge = time.Millisecond }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := Default()
			tt.modify(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}

	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	if cfg.Storage.Backend != BackendSQLite || cfg.Storage.Path != DefaultPath() {
		t.Errorf("default storage should be the sqlite file, got %+v", cfg.Storage)
	}
	if !cfg.Storage.Durable() {
		t.Error("default storage should be durable")
	}
	if filepath.Base(DefaultPath()) != "webstore.db" {
		t.Errorf("unexpected default path %q", DefaultPath())
	}
}

func TestLoad_DefaultPathOnlyForSQLite(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		content  string
		expected string
	}{
		{content: "storage:\n  backend: sqlite\n", expected: DefaultPath()},
		{content: "storage:\n  backend: badger\n", expected: ""},
		{content: "storage:\n  backend: badger\n  path: /var/lib/webstore\n", expected: "/var/lib/webstore"},
	} {
		cfg, err := load(writeFile(t, tt.content), "WEBSTORE_TEST_PATH_")
		if err != nil {
			t.Fatal(err)
		}
		if cfg.Storage.Path != tt.expected {
			t.Errorf("%q: expected path %q, got %q", tt.content, tt.expected, cfg.Storage.Path)
		}
	}
}

func TestStorageConfig_Durable(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		storage  StorageConfig
		expected bool
	}{
		{StorageConfig{Backend: BackendSQLite, Path: "webstore.db"}, true},
		{StorageConfig{Backend: BackendBadger, Path: "data"}, true},
		{StorageConfig{Backend: BackendBadger}, false},
		{StorageConfig{Backend: BackendMemory}, false},
		{StorageConfig{Backend: BackendNone}, false},
	} {
		if got := tt.storage.Durable(); got != tt.expected {
			t.Errorf("%+v: expected %v, got %v", tt.storage, tt.expected, got)
		}
	}
}
