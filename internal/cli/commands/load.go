package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapgrid/internal/dataset"
)

// NewLoadCommand creates the load command. It materializes a dataset file
// into a throwaway engine and reports per-table results, which makes it a
// cheap validation pass for dataset files before serving them.
func NewLoadCommand() *cobra.Command {
	var execute string

	cmd := &cobra.Command{
		Use:   "load <dataset-file>",
		Short: "Materialize a dataset file and report per-table results",
		Long: `Load parses a dataset file, materializes every table into an embedded
engine, and prints what happened table by table. Tables that fail to
materialize are reported without aborting their siblings; the command
exits non-zero if any table failed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			file, err := dataset.Load(args[0])
			if err != nil {
				return err
			}

			report, err := cmdCtx.Adapter.Materialize(cmd.Context(), file.DatabaseID, file.Specs())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "database %d:\n", report.DatabaseID)
			renderReport(out, report)

			if execute != "" {
				res, err := cmdCtx.Adapter.Execute(cmd.Context(), file.DatabaseID, execute)
				if err != nil {
					return err
				}
				if err := renderResult(out, &res, cmdCtx.Cfg.Format, cmdCtx.Cfg.RowLimit); err != nil {
					return err
				}
			}

			if failed := report.Failed(); len(failed) > 0 {
				return fmt.Errorf("%d of %d tables failed to materialize", len(failed), len(report.Tables))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&execute, "execute", "e", "", "statement to run after materializing")

	return cmd
}
