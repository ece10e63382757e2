package stratify

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/roach88/crosstab/internal/dataset"
	"github.com/roach88/crosstab/internal/recode"
	"github.com/roach88/crosstab/internal/tab"
)

// Config is the explicit per-call configuration for a tabulation run.
// The engine owns no flags or persisted settings; everything arrives here.
type Config struct {
	RowVar   string
	ColVar   string
	StratVar string // empty for unstratified runs

	Margins       tab.Margins
	PctAxis       tab.Axis
	Digits        int
	ShowCounts    bool
	MissingPolicy tab.MissingPolicy
}

// TableSet is an ordered mapping from stratum label to one finished
// formatted table. Strata appear in the stratification variable's level
// order; only strata present in the data after recoding appear.
//
// Errors holds per-stratum failures under the partial-result contract: a
// stratum that failed has an entry in Errors and none in Tables, and its
// siblings' results are still delivered.
type TableSet struct {
	RunToken string
	Order    []string
	Tables   map[string]*tab.FormattedTable
	Errors   map[string]error
}

// Failed returns the labels of strata that failed, in output order.
func (s *TableSet) Failed() []string {
	var out []string
	for _, label := range s.Order {
		if _, bad := s.Errors[label]; bad {
			out = append(out, label)
		}
	}
	return out
}

// Stratifier runs the per-stratum pipeline across a worker pool.
type Stratifier struct {
	tokens  TokenGenerator
	workers int
}

// Option configures a Stratifier.
type Option func(*Stratifier)

// WithTokenGenerator overrides the run-token generator (tests use
// FixedGenerator for deterministic output).
func WithTokenGenerator(g TokenGenerator) Option {
	return func(s *Stratifier) { s.tokens = g }
}

// WithWorkers caps the worker pool size. Zero or negative means
// min(NumCPU, number of strata).
func WithWorkers(n int) Option {
	return func(s *Stratifier) { s.workers = n }
}

// New creates a Stratifier with UUIDv7 run tokens by default.
func New(opts ...Option) *Stratifier {
	s := &Stratifier{tokens: UUIDv7Generator{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Pipeline runs the full per-stratum pipeline once:
// tabulate -> margins -> normalize -> format.
// It is also the entry point for unstratified runs.
func Pipeline(ds *dataset.Dataset, rowLevels, colLevels recode.Levels, cfg Config) (*tab.FormattedTable, error) {
	m, err := tab.Tabulate(ds, cfg.RowVar, cfg.ColVar, rowLevels, colLevels, cfg.MissingPolicy)
	if err != nil {
		return nil, err
	}
	aug, err := tab.AddMargins(m, cfg.Margins)
	if err != nil {
		return nil, err
	}
	return tab.Format(tab.Normalize(aug, cfg.PctAxis), cfg.Digits, cfg.ShowCounts)
}

// Run partitions the dataset by the recoded stratum label and produces
// one formatted table per stratum present in the data.
//
// A record with a missing stratum label is excluded from all strata under
// the complete-case policy; with the own-category policy it lands in the
// reserved stratum. A stratum label outside the declared level order is a
// whole-run UnknownCategoryError, since it indicates a recoding
// configuration mismatch rather than bad data in one stratum.
func (s *Stratifier) Run(ds *dataset.Dataset, rowLevels, colLevels, stratLevels recode.Levels, cfg Config) (*TableSet, error) {
	if cfg.StratVar == "" {
		return nil, fmt.Errorf("stratify: config has no strat_var; use Pipeline for unstratified runs")
	}
	if err := stratLevels.Validate(); err != nil {
		return nil, err
	}
	if cfg.MissingPolicy == tab.MissingOwnCategory && stratLevels.Reserved() == "" {
		return nil, fmt.Errorf("stratify %s: own-category policy but level order carries no reserved missing category", cfg.StratVar)
	}

	token := s.tokens.Generate()
	partitions, order, err := partition(ds, cfg.StratVar, stratLevels, cfg.MissingPolicy)
	if err != nil {
		return nil, err
	}

	slog.Info("stratified run starting",
		"run_token", token,
		"strat_var", cfg.StratVar,
		"strata", len(order),
	)

	set := &TableSet{
		RunToken: token,
		Order:    order,
		Tables:   make(map[string]*tab.FormattedTable, len(order)),
		Errors:   make(map[string]error),
	}

	type outcome struct {
		table *tab.FormattedTable
		err   error
	}
	outcomes := make([]outcome, len(order))

	workers := s.workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(order) {
		workers = len(order)
	}

	// Fan out one task per stratum; each worker writes only its own
	// outcome slot, so there is no shared mutable state across strata.
	tasks := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range tasks {
				label := order[i]
				table, err := Pipeline(partitions[label], rowLevels, colLevels, cfg)
				outcomes[i] = outcome{table: table, err: err}
			}
		}()
	}
	for i := range order {
		tasks <- i
	}
	close(tasks)
	wg.Wait()

	// Fan in, keyed by stratum, already in strat level order.
	for i, label := range order {
		if outcomes[i].err != nil {
			// Log and continue: one bad stratum must not discard siblings.
			slog.Error("stratum failed",
				"run_token", token,
				"stratum", label,
				"error", outcomes[i].err,
			)
			set.Errors[label] = stratumError(outcomes[i].err, label)
			continue
		}
		set.Tables[label] = outcomes[i].table
	}

	slog.Info("stratified run finished",
		"run_token", token,
		"ok", len(set.Tables),
		"failed", len(set.Errors),
	)

	return set, nil
}

// partition splits records by stratum label. Returned order is the strat
// level order restricted to strata actually present in the data.
func partition(ds *dataset.Dataset, stratVar string, levels recode.Levels, policy tab.MissingPolicy) (map[string]*dataset.Dataset, []string, error) {
	parts := make(map[string]*dataset.Dataset)

	for _, rec := range ds.Records {
		v := rec.Get(stratVar)
		var label string
		if dataset.IsMissing(v) {
			if policy != tab.MissingOwnCategory {
				continue // complete-case: excluded from all strata
			}
			label = levels.Reserved()
		} else {
			str, ok := v.(dataset.String)
			if !ok {
				return nil, nil, &tab.UnknownCategoryError{Variable: stratVar, Label: dataset.Display(v)}
			}
			label = string(str)
		}

		if _, ok := levels.Index(label); !ok {
			return nil, nil, &tab.UnknownCategoryError{Variable: stratVar, Label: label}
		}
		part, ok := parts[label]
		if !ok {
			part = &dataset.Dataset{}
			parts[label] = part
		}
		part.Records = append(part.Records, rec)
	}

	var order []string
	for _, label := range levels.Labels() {
		if _, present := parts[label]; present {
			order = append(order, label)
		}
	}
	return parts, order, nil
}

// stratumError attaches the stratum label to an UnknownCategoryError so
// the caller sees which partition misfired; other errors are wrapped with
// the label as context.
func stratumError(err error, label string) error {
	var ue *tab.UnknownCategoryError
	if errors.As(err, &ue) && ue.Stratum == "" {
		return &tab.UnknownCategoryError{Variable: ue.Variable, Label: ue.Label, Stratum: label}
	}
	return fmt.Errorf("stratum %q: %w", label, err)
}
