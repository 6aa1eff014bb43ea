package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/noah-isme/bilishelf-api/internal/app"
	"github.com/noah-isme/bilishelf-api/pkg/config"
	"github.com/noah-isme/bilishelf-api/pkg/logger"
)

// loader builds the application for one command invocation.
type loader func(ctx context.Context, storeDriver string) (*app.App, error)

func defaultLoader(ctx context.Context, storeDriver string) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if storeDriver != "" {
		cfg.Store.Driver = storeDriver
	}
	logr, err := logger.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}
	return app.New(ctx, cfg, logr)
}

type rootOptions struct {
	load        loader
	storeDriver string
}

func newRootCmd(load loader) *cobra.Command {
	opts := &rootOptions{load: load}

	root := &cobra.Command{
		Use:           "shelfctl",
		Short:         "Manage the local Bilibili favorites library",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.storeDriver, "store", "", "Store driver override (postgres, kv, memory)")

	root.AddCommand(
		newSyncCmd(opts),
		newFoldersCmd(opts),
		newExportCmd(opts),
		newImportCmd(opts),
		newTokenCmd(opts),
	)
	return root
}

// withApp builds the application, runs fn and closes it.
func (o *rootOptions) withApp(cmd *cobra.Command, fn func(a *app.App) error) error {
	a, err := o.load(cmd.Context(), o.storeDriver)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck
	return fn(a)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
