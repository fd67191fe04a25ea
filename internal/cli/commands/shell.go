package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/leapstack-labs/leapgrid/internal/cli/config"
	"github.com/leapstack-labs/leapgrid/internal/dataset"
	"github.com/leapstack-labs/leapgrid/pkg/adapter"
	"github.com/leapstack-labs/leapgrid/pkg/sqltoken"
)

// NewShellCommand creates the shell command.
func NewShellCommand() *cobra.Command {
	var (
		format  string
		execute string
	)

	cmd := &cobra.Command{
		Use:   "shell <dataset-file>",
		Short: "Explore a dataset interactively",
		Long: `Shell materializes a dataset file and opens an interactive SQL prompt
against it. UPDATE and DELETE statements report the affected-row count and
the resulting table contents; everything else renders as a result set.

When stdin is not a terminal the statement is read from it and executed
once, which makes the shell usable from pipes and scripts.`,
		Example: `  # Interactive session
  leapgrid shell grids.yaml

  # One-shot statement
  leapgrid shell grids.yaml -e "SELECT * FROM Customers"

  # Piped input
  echo "SELECT COUNT(*) FROM Customers;" | leapgrid shell grids.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()
			cfg, ad := cmdCtx.Cfg, cmdCtx.Adapter

			if cmd.Flags().Changed("format") {
				cfg.Format = format
			}

			file, err := dataset.Load(args[0])
			if err != nil {
				return err
			}

			report, err := ad.Materialize(cmd.Context(), file.DatabaseID, file.Specs())
			if err != nil {
				return err
			}
			if !report.Ok() || len(report.Skipped) > 0 {
				renderReport(cmd.ErrOrStderr(), report)
			}

			switch {
			case execute != "":
				return runStatement(cmd, ad, file.DatabaseID, execute, cfg.Format, cfg.RowLimit)
			case !term.IsTerminal(int(os.Stdin.Fd())):
				content, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
				stmt := strings.TrimSuffix(strings.TrimSpace(string(content)), ";")
				return runStatement(cmd, ad, file.DatabaseID, stmt, cfg.Format, cfg.RowLimit)
			}

			return runShellREPL(cmd, ad, file.DatabaseID, cfg)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: table, json, csv")
	cmd.Flags().StringVarP(&execute, "execute", "e", "", "Statement to execute instead of entering the shell")

	return cmd
}

func runShellREPL(cmd *cobra.Command, ad *adapter.Adapter, databaseID int64, cfg *config.Config) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "leapgrid> ",
		HistoryFile:     cfg.HistoryFile,
		AutoComplete:    newShellCompleter(ctx, ad, databaseID),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize shell: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintf(out, "LeapGrid shell (database %d)\n", databaseID)
	_, _ = fmt.Fprintln(out, "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(out)

	var multiLineBuffer strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			multiLineBuffer.Reset()
			rl.SetPrompt("leapgrid> ")
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ".") {
			if line == ".quit" || line == ".exit" {
				break
			}
			handleDotCommand(ctx, cmd, ad, databaseID, line)
			continue
		}

		// Accumulate multi-line SQL until semicolon
		multiLineBuffer.WriteString(line)
		if !strings.HasSuffix(line, ";") {
			multiLineBuffer.WriteString(" ")
			rl.SetPrompt("    ...> ")
			continue
		}
		rl.SetPrompt("leapgrid> ")

		stmt := strings.TrimSuffix(multiLineBuffer.String(), ";")
		multiLineBuffer.Reset()

		if err := runStatement(cmd, ad, databaseID, stmt, cfg.Format, cfg.RowLimit); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
		_, _ = fmt.Fprintln(out)
	}

	return nil
}

// runStatement routes a statement to the matching adapter entry point and
// renders what comes back. UPDATE and DELETE go through the mutation path so
// the shell reports affected rows the same way the API does.
func runStatement(cmd *cobra.Command, ad *adapter.Adapter, databaseID int64, sqlText, format string, limit int) error {
	out := cmd.OutOrStdout()

	switch headKeyword(sqlText) {
	case "UPDATE":
		outcome, err := ad.RunUpdate(cmd.Context(), databaseID, sqlText)
		if err != nil {
			return err
		}
		return renderOutcome(out, &outcome, format, limit)
	case "DELETE":
		outcome, err := ad.RunDelete(cmd.Context(), databaseID, sqlText)
		if err != nil {
			return err
		}
		return renderOutcome(out, &outcome, format, limit)
	default:
		res, err := ad.Execute(cmd.Context(), databaseID, sqlText)
		if err != nil {
			return err
		}
		return renderResult(out, &res, format, limit)
	}
}

// headKeyword returns the statement's leading keyword uppercased, or "" when
// the statement does not open with a bare identifier.
func headKeyword(sqlText string) string {
	tok := sqltoken.NewScanner(sqlText).Next()
	if tok.Kind != sqltoken.Ident {
		return ""
	}
	return strings.ToUpper(tok.Text)
}

func handleDotCommand(ctx context.Context, cmd *cobra.Command, ad *adapter.Adapter, databaseID int64, line string) {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])

	switch command {
	case ".help":
		printShellHelp(cmd.OutOrStdout())

	case ".tables":
		tables, err := ad.Catalog(ctx, databaseID)
		if err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			return
		}
		for _, name := range tables {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), name)
		}

	case ".schema":
		if len(parts) < 2 {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Usage: .schema <table>")
			return
		}
		res, err := ad.Execute(ctx, databaseID, fmt.Sprintf("PRAGMA table_info(%s)", parts[1]))
		if err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			return
		}
		_ = renderResult(cmd.OutOrStdout(), &res, "table", 0)

	case ".clear":
		fmt.Print("\033[H\033[2J")

	default:
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Unknown command: %s (type .help for commands)\n", command)
	}
}

func printShellHelp(w io.Writer) {
	help := `
Commands:
  .help           Show this help message
  .tables         List tables in the database
  .schema <name>  Show schema for a table
  .clear          Clear the screen
  .quit / .exit   Exit the shell

Tips:
  - SQL statements must end with a semicolon (;)
  - UPDATE and DELETE report affected rows and the resulting table
  - Use arrow keys to navigate history
  - Tab completion works for table names
`
	_, _ = fmt.Fprintln(w, help)
}

// newShellCompleter builds tab completion from the live table catalog.
func newShellCompleter(ctx context.Context, ad *adapter.Adapter, databaseID int64) *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface

	tables, err := ad.Catalog(ctx, databaseID)
	if err == nil {
		for _, name := range tables {
			items = append(items, readline.PcItem(name))
		}
	}

	items = append(items,
		readline.PcItem(".help"),
		readline.PcItem(".tables"),
		readline.PcItem(".schema"),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)

	return readline.NewPrefixCompleter(items...)
}
