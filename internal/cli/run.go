package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/crosstab/internal/plan"
	"github.com/roach88/crosstab/internal/sink"
	"github.com/roach88/crosstab/internal/stratify"
	"github.com/roach88/crosstab/internal/tab"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Data     string
	Database string
	Combine  bool
	Workers  int

	// TokenGenerator allows overriding the run-token generator (for
	// testing). If nil, defaults to UUIDv7Generator.
	TokenGenerator stratify.TokenGenerator
}

// tableResult is one finished table in the run's JSON payload.
type tableResult struct {
	Stratum   string     `json:"stratum,omitempty"`
	RowVar    string     `json:"row_var"`
	ColVar    string     `json:"col_var"`
	RowLabels []string   `json:"row_labels"`
	ColLabels []string   `json:"col_labels"`
	Cells     [][]string `json:"cells"`
}

// runResult is the JSON payload for a completed run.
type runResult struct {
	RunToken string            `json:"run_token"`
	Plan     string            `json:"plan"`
	Tables   []tableResult     `json:"tables"`
	Failed   map[string]string `json:"failed,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <plan.yaml>",
		Short: "Run a tabulation plan against a CSV dataset",
		Long: `Run a tabulation plan: recode variables, cross-tabulate, add margins,
normalize, and render the finished tables.

A stratified plan produces one table per stratum; a failed stratum is
reported without discarding its siblings (exit code 1). With --db the
finished tables are also persisted to a SQLite database keyed by the
run token.

Example:
  crosstab run ./plan.yaml --data ./survey.csv
  crosstab run ./plan.yaml --data ./survey.csv --db ./tables.db --combine`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Data, "data", "", "path to CSV dataset (required)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "persist finished tables to this SQLite database")
	cmd.Flags().BoolVar(&opts.Combine, "combine", false, "lay stratified tables out side by side")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "stratum worker pool size (0 = auto)")
	_ = cmd.MarkFlagRequired("data")

	return cmd
}

func runPlan(opts *RunOptions, planPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))

	p, err := plan.Load(planPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load plan", err)
	}
	slog.Info("plan loaded", "plan", p.Name, "variables", len(p.Variables))

	ds, err := loadDataset(p, opts.Data)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load dataset", err)
	}
	slog.Info("dataset loaded", "records", ds.Len())

	bound, err := p.Bind(ds)
	if err != nil {
		return WrapExitError(ExitFailure, "recoding failed", err)
	}

	tokens := opts.TokenGenerator
	if tokens == nil {
		tokens = stratify.UUIDv7Generator{}
	}

	set, err := executeRun(bound, tokens, opts.Workers)
	if err != nil {
		return WrapExitError(ExitFailure, "run failed", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := emit(ctx, formatter, opts, p, set); err != nil {
		return err
	}

	if failed := set.Failed(); len(failed) > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d stratum(s) failed: %v", len(failed), failed))
	}
	return nil
}

// executeRun dispatches to the stratified or unstratified path. Both
// return a TableSet so output handling is uniform; an unstratified run is
// a set with a single empty-label stratum.
func executeRun(bound *plan.Bound, tokens stratify.TokenGenerator, workers int) (*stratify.TableSet, error) {
	if bound.Config.StratVar != "" {
		s := stratify.New(
			stratify.WithTokenGenerator(tokens),
			stratify.WithWorkers(workers),
		)
		return s.Run(bound.Data, bound.Row, bound.Col, bound.Strat, bound.Config)
	}

	table, err := stratify.Pipeline(bound.Data, bound.Row, bound.Col, bound.Config)
	if err != nil {
		return nil, err
	}
	return &stratify.TableSet{
		RunToken: tokens.Generate(),
		Order:    []string{""},
		Tables:   map[string]*tab.FormattedTable{"": table},
		Errors:   map[string]error{},
	}, nil
}

// emit renders the run to the configured format and optionally persists
// it to SQLite. Text output always goes through the text sink; JSON
// output carries every table in one response document.
func emit(ctx context.Context, formatter *OutputFormatter, opts *RunOptions, p *plan.Plan, set *stratify.TableSet) error {
	run := sink.RunInfo{Token: set.RunToken, Plan: p.Name}

	tables := make([]tableResult, 0, len(set.Tables))
	ordered := make([]struct {
		stratum string
		table   *tab.FormattedTable
	}, 0, len(set.Tables))

	if opts.Combine && p.Table.Strat != "" {
		wide, err := stratify.Combine(set)
		if err != nil {
			return WrapExitError(ExitFailure, "combine failed", err)
		}
		ordered = append(ordered, struct {
			stratum string
			table   *tab.FormattedTable
		}{"", wide})
	} else {
		for _, label := range set.Order {
			t, ok := set.Tables[label]
			if !ok {
				continue
			}
			ordered = append(ordered, struct {
				stratum string
				table   *tab.FormattedTable
			}{label, t})
		}
	}

	var sinks []sink.Sink
	if formatter.Format != "json" {
		sinks = append(sinks, &sink.TextSink{W: formatter.Writer})
	}
	if opts.Database != "" {
		store, err := sink.OpenSQLite(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := store.Close(); closeErr != nil {
				slog.Error("error closing database", "error", closeErr)
			}
		}()
		sinks = append(sinks, store)
	}

	for _, entry := range ordered {
		for _, s := range sinks {
			if err := s.WriteTable(ctx, run, entry.stratum, entry.table); err != nil {
				return WrapExitError(ExitCommandError, "sink write failed", err)
			}
		}
		tables = append(tables, tableResult{
			Stratum:   entry.stratum,
			RowVar:    entry.table.RowVar,
			ColVar:    entry.table.ColVar,
			RowLabels: entry.table.RowLabels,
			ColLabels: entry.table.ColLabels,
			Cells:     entry.table.Cells,
		})
	}

	if formatter.Format == "json" {
		result := runResult{
			RunToken: set.RunToken,
			Plan:     p.Name,
			Tables:   tables,
		}
		if len(set.Errors) > 0 {
			result.Failed = make(map[string]string, len(set.Errors))
			for label, err := range set.Errors {
				result.Failed[label] = err.Error()
			}
		}
		return formatter.Success(result)
	}

	for _, label := range set.Failed() {
		fmt.Fprintf(formatter.Writer, "✗ stratum %q failed: %v\n", label, set.Errors[label])
	}
	return nil
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	cmd := NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return GetExitCode(err)
	}
	return ExitSuccess
}
