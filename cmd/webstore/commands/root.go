// Package commands implements the webstore command line interface.
package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/karupanerura/webstore"
	"github.com/karupanerura/webstore/internal/config"
)

var (
	// ErrNotFound is returned by the get command for a missing key.
	ErrNotFound = errors.New("key not found")

	// ErrNotDurable is returned by the writing commands when a durable backend is configured
	// but the store is bound to a mechanism that does not outlive the process.
	ErrNotDurable = errors.New("configured storage backend is unavailable, refusing to write to a non-durable mechanism")
)

type openFunc func(context.Context, config.Config, zerolog.Logger, prometheus.Registerer) (*webstore.Store, []func() error, error)

// app is the state shared by the subcommands of one invocation.
type app struct {
	configPath string
	verbose    bool

	logger   zerolog.Logger
	cfg      config.Config
	registry *prometheus.Registry
	store    *webstore.Store
	closers  []func() error
	open     openFunc
}

// Execute runs the root command.
func Execute(ctx context.Context, logger zerolog.Logger) error {
	return newRootCommand(logger).ExecuteContext(ctx)
}

func newRootCommand(logger zerolog.Logger) *cobra.Command {
	return newAppCommand(&app{logger: logger, open: openStore})
}

func newAppCommand(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "webstore",
		Short: "Key-value store over a primary storage mechanism with a cookie fallback",
		Long: `webstore reads and writes JSON values through a storage facade.

The primary mechanism is selected by storage.backend (memory, sqlite, badger or none);
the default is a SQLite file under the user configuration directory.
When it cannot be opened, the store falls back to in-process cookies for cookie.url,
and the writing commands fail instead of losing the values.`,
		Version:           webstore.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.teardown(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newGetCommand(a))
	rootCmd.AddCommand(newSetCommand(a))
	rootCmd.AddCommand(newRemoveCommand(a))
	rootCmd.AddCommand(newClearCommand(a))
	rootCmd.AddCommand(newListCommand(a))
	rootCmd.AddCommand(newStatusCommand(a))

	return rootCmd
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := cfg.LogLevel()
	if a.verbose {
		level = zerolog.DebugLevel
	}
	a.logger = a.logger.Level(level)
	a.registry = prometheus.NewRegistry()

	store, closers, err := a.open(cmd.Context(), a.cfg, a.logger, a.registry)
	a.closers = closers
	if err != nil {
		if rerr := a.release(); rerr != nil {
			a.logger.Warn().Err(rerr).Msg("failed to release storage")
		}
		return err
	}
	a.store = store
	return nil
}

// durable reports whether the values written by this invocation outlive the process.
func (a *app) durable() bool {
	return a.store.Mechanism() == webstore.MechanismPrimary && a.cfg.Storage.Durable()
}

// checkWritable refuses writes that a configured durable backend was expected to keep,
// and warns about writes to a backend that never keeps them.
func (a *app) checkWritable() error {
	if a.durable() {
		return nil
	}
	if a.cfg.Storage.Durable() {
		return fmt.Errorf("%w: %s is bound to the %s mechanism", ErrNotDurable, a.cfg.Storage.Backend, a.store.Mechanism())
	}
	a.logger.Warn().
		Str("backend", a.cfg.Storage.Backend).
		Stringer("mechanism", a.store.Mechanism()).
		Msg("values are not persisted after this command exits")
	return nil
}

// release runs the closers once.
func (a *app) release() error {
	var errs []error
	for _, closer := range a.closers {
		errs = append(errs, closer())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *app) teardown(cmd *cobra.Command) error {
	errs := []error{a.release()}
	if a.cfg.Metrics.Dump && a.registry != nil {
		errs = append(errs, dumpMetrics(cmd.ErrOrStderr(), a.registry))
	}
	return errors.Join(errs...)
}

// run executes fn with the store, closing the resources even if fn fails.
func (a *app) run(cmd *cobra.Command, fn func(context.Context, *webstore.Store) error) error {
	if err := fn(cmd.Context(), a.store); err != nil {
		if terr := a.teardown(cmd); terr != nil {
			a.logger.Warn().Err(terr).Msg("failed to release storage")
		}
		return fmt.Errorf("%s: %w", cmd.Name(), err)
	}
	return nil
}
