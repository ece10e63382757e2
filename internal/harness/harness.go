package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/crosstab/internal/dataset"
	"github.com/roach88/crosstab/internal/plan"
	"github.com/roach88/crosstab/internal/stratify"
	"github.com/roach88/crosstab/internal/tab"
)

// Result is the outcome of running a scenario: the same table set the
// engine produces, in stratum level order. An unstratified scenario
// yields a single empty-label stratum.
type Result struct {
	RunToken string
	Order    []string
	Tables   map[string]*tab.FormattedTable
	Errors   map[string]error
}

// AssertionError is returned when a scenario expectation fails.
type AssertionError struct {
	Scenario string
	Stratum  string
	Expected string
	Actual   string
}

func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "scenario %s failed", e.Scenario)
	if e.Stratum != "" {
		fmt.Fprintf(&buf, " (stratum %q)", e.Stratum)
	}
	fmt.Fprintf(&buf, "\n  expected: %s\n  actual: %s", e.Expected, e.Actual)
	return buf.String()
}

// Run executes a scenario through the full plan pipeline with a fixed
// run token. It returns the run's table set; expectation checking is a
// separate step (Verify), so callers can also golden-compare the result.
func Run(s *Scenario) (*Result, error) {
	data, err := s.planBytes()
	if err != nil {
		return nil, fmt.Errorf("scenario %s: encode plan: %w", s.Name, err)
	}
	p, err := plan.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}

	ds, err := dataset.FromCSV(strings.NewReader(s.Data), p.CSVOptions())
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}

	bound, err := p.Bind(ds)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}

	token := s.RunToken
	if token == "" {
		token = DefaultRunToken
	}

	if bound.Config.StratVar != "" {
		engine := stratify.New(stratify.WithTokenGenerator(stratify.NewFixedGenerator(token)))
		set, err := engine.Run(bound.Data, bound.Row, bound.Col, bound.Strat, bound.Config)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
		}
		return &Result{
			RunToken: set.RunToken,
			Order:    set.Order,
			Tables:   set.Tables,
			Errors:   set.Errors,
		}, nil
	}

	table, err := stratify.Pipeline(bound.Data, bound.Row, bound.Col, bound.Config)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	return &Result{
		RunToken: token,
		Order:    []string{""},
		Tables:   map[string]*tab.FormattedTable{"": table},
		Errors:   map[string]error{},
	}, nil
}

// Verify checks a result against the scenario's expectations. It stops
// at the first mismatch and reports it as an AssertionError.
func Verify(s *Scenario, res *Result) error {
	for _, want := range s.Expect.Tables {
		got, ok := res.Tables[want.Stratum]
		if !ok {
			actual := "stratum missing from result"
			if err, failed := res.Errors[want.Stratum]; failed {
				actual = fmt.Sprintf("stratum failed: %v", err)
			}
			return &AssertionError{
				Scenario: s.Name,
				Stratum:  want.Stratum,
				Expected: "a finished table",
				Actual:   actual,
			}
		}
		if err := verifyTable(s.Name, want, got); err != nil {
			return err
		}
	}

	for _, stratum := range s.Expect.Failed {
		if _, failed := res.Errors[stratum]; !failed {
			return &AssertionError{
				Scenario: s.Name,
				Stratum:  stratum,
				Expected: "stratum failure",
				Actual:   "stratum succeeded or is absent",
			}
		}
	}

	return nil
}

func verifyTable(scenario string, want ExpectedTable, got *tab.FormattedTable) error {
	if want.RowLabels != nil && !slices.Equal(want.RowLabels, got.RowLabels) {
		return &AssertionError{
			Scenario: scenario,
			Stratum:  want.Stratum,
			Expected: fmt.Sprintf("row labels %v", want.RowLabels),
			Actual:   fmt.Sprintf("row labels %v", got.RowLabels),
		}
	}
	if want.ColLabels != nil && !slices.Equal(want.ColLabels, got.ColLabels) {
		return &AssertionError{
			Scenario: scenario,
			Stratum:  want.Stratum,
			Expected: fmt.Sprintf("col labels %v", want.ColLabels),
			Actual:   fmt.Sprintf("col labels %v", got.ColLabels),
		}
	}

	if len(want.Cells) != len(got.Cells) {
		return &AssertionError{
			Scenario: scenario,
			Stratum:  want.Stratum,
			Expected: fmt.Sprintf("%d rows", len(want.Cells)),
			Actual:   fmt.Sprintf("%d rows", len(got.Cells)),
		}
	}
	for i := range want.Cells {
		if !slices.Equal(want.Cells[i], got.Cells[i]) {
			return &AssertionError{
				Scenario: scenario,
				Stratum:  want.Stratum,
				Expected: fmt.Sprintf("row %d = %v", i, want.Cells[i]),
				Actual:   fmt.Sprintf("row %d = %v", i, got.Cells[i]),
			}
		}
	}
	return nil
}
