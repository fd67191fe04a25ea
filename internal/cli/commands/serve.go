package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/leapgrid/internal/api"
	"github.com/leapstack-labs/leapgrid/internal/dataset"
	"github.com/leapstack-labs/leapgrid/pkg/adapter"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	var (
		addr        string
		datasetPath string
		watch       bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the LeapGrid HTTP API",
		Long: `Serve starts the HTTP API that materializes datasets and executes SQL
statements against them. A dataset file given via --dataset is
materialized on startup; with --watch it is re-materialized whenever the
file changes on disk.`,
		Example: `  # Serve on the default address
  leapgrid serve

  # Preload a dataset and re-materialize it on change
  leapgrid serve --dataset grids.yaml --watch`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()
			cfg, logger, ad := cmdCtx.Cfg, cmdCtx.Logger, cmdCtx.Adapter

			// CLI flags override config file.
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("dataset") {
				cfg.Dataset = datasetPath
			}
			if cmd.Flags().Changed("watch") {
				cfg.Watch = watch
			}

			if cfg.Watch && cfg.Dataset == "" {
				return fmt.Errorf("--watch requires a dataset file")
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-sigChan
				logger.Info("shutting down")
				cancel()
			}()

			if cfg.Dataset != "" {
				if err := materializeFile(ctx, ad, logger, cfg.Dataset); err != nil {
					return err
				}
			}

			srv := api.NewServer(api.Config{
				Adapter: ad,
				Addr:    cfg.Addr,
				Logger:  logger,
			})

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Serving LeapGrid API on %s\n", cfg.Addr)
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl+C to stop")

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return srv.Serve(gctx)
			})
			if cfg.Watch {
				g.Go(func() error {
					return dataset.Watch(gctx, cfg.Dataset, logger, func(changed string) {
						if err := materializeFile(gctx, ad, logger, changed); err != nil {
							logger.Warn("re-materialization failed", "path", changed, "error", err)
						}
					})
				})
			}
			return g.Wait()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: :8321)")
	cmd.Flags().StringVar(&datasetPath, "dataset", "", "dataset file to materialize on startup")
	cmd.Flags().BoolVar(&watch, "watch", false, "re-materialize the dataset when it changes")

	return cmd
}

// materializeFile loads a dataset file and materializes it. Per-table
// failures are logged, not returned: a half-usable database beats no
// database while someone edits the file.
func materializeFile(ctx context.Context, ad *adapter.Adapter, logger *slog.Logger, path string) error {
	file, err := dataset.Load(path)
	if err != nil {
		return err
	}

	report, err := ad.Materialize(ctx, file.DatabaseID, file.Specs())
	if err != nil {
		return err
	}

	logger.Info("materialized dataset",
		"path", path,
		"database", report.DatabaseID,
		"tables", len(report.Tables),
		"skipped", len(report.Skipped))
	for _, t := range report.Failed() {
		logger.Warn("table failed to materialize",
			"database", report.DatabaseID,
			"table", t.Table,
			"error", t.Err)
	}
	return nil
}
