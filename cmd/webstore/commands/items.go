package commands

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/karupanerura/webstore"
)

func newGetCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get KEY",
		Short: "Print the value stored under KEY as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, store *webstore.Store) error {
				v, ok, err := store.Get(ctx, args[0])
				if err != nil {
					return err
				} else if !ok {
					return fmt.Errorf("%w: %q", ErrNotFound, args[0])
				}
				return printJSON(cmd.OutOrStdout(), v)
			})
		},
	}
}

func newSetCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Store VALUE under KEY",
		Long:  "Store VALUE under KEY. VALUE is parsed as JSON; text that is not JSON is stored as a string.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, store *webstore.Store) error {
				if err := a.checkWritable(); err != nil {
					return err
				}
				v, ok := store.Deserialize(args[1])
				if !ok {
					v = ""
				}
				_, err := store.Set(ctx, args[0], v)
				return err
			})
		},
	}
}

func newRemoveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm KEY",
		Aliases: []string{"remove"},
		Short:   "Remove KEY",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, store *webstore.Store) error {
				if err := a.checkWritable(); err != nil {
					return err
				}
				return store.Remove(ctx, args[0])
			})
		},
	}
}

func newClearCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, func(ctx context.Context, store *webstore.Store) error {
				if err := a.checkWritable(); err != nil {
					return err
				}
				return store.Clear(ctx)
			})
		},
	}
}

func newListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print every key and its JSON value, sorted by key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, func(ctx context.Context, store *webstore.Store) error {
				all, err := store.GetAll(ctx)
				if err != nil {
					return err
				}

				keys := make([]string, 0, len(all))
				for key := range all {
					keys = append(keys, key)
				}
				slices.Sort(keys)

				w := cmd.OutOrStdout()
				for _, key := range keys {
					b := []byte("undefined")
					if v := all[key]; !webstore.IsUndefined(v) {
						if b, err = json.Marshal(v); err != nil {
							return err
						}
					}
					if _, err := fmt.Fprintf(w, "%s\t%s\n", key, b); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func newStatusCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the bound storage mechanism and the self-test result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, func(_ context.Context, store *webstore.Store) error {
				status := struct {
					Version     string `json:"version"`
					Backend     string `json:"backend"`
					Mechanism   string `json:"mechanism"`
					Enabled     bool   `json:"enabled"`
					Enumeration bool   `json:"enumeration"`
					Durable     bool   `json:"durable"`
					SelfTest    string `json:"selfTestError,omitempty"`
				}{
					Version:     store.Version(),
					Backend:     a.cfg.Storage.Backend,
					Mechanism:   store.Mechanism().String(),
					Enabled:     store.Enabled(),
					Enumeration: store.SupportsEnumeration(),
					Durable:     a.durable(),
				}
				if err := store.SelfTestError(); err != nil {
					status.SelfTest = err.Error()
				}
				return printJSON(cmd.OutOrStdout(), status)
			})
		},
	}
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", b)
	return err
}
