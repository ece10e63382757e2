package harness

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/crosstab/internal/sink"
)

// RunWithGolden executes a scenario and compares its rendered output
// against a golden file in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Structured expectations (Verify) are checked first, so a golden
// mismatch always comes with the cells already validated.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	if err := Verify(scenario, result); err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, Snapshot(scenario, result))

	return nil
}

// Snapshot renders a result as deterministic text: a header naming the
// scenario and run token, then each finished table in stratum order,
// then any failed strata. Trailing spaces are stripped per line so the
// golden files stay diff-friendly.
func Snapshot(s *Scenario, res *Result) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "scenario: %s\n", s.Name)
	fmt.Fprintf(&b, "run: %s\n", res.RunToken)

	for _, label := range res.Order {
		table, ok := res.Tables[label]
		if !ok {
			continue
		}
		b.WriteByte('\n')
		if label != "" {
			fmt.Fprintf(&b, "stratum: %s\n", label)
		}
		b.WriteString(sink.Render(table))
	}

	for _, label := range res.Order {
		if err, failed := res.Errors[label]; failed {
			fmt.Fprintf(&b, "\nstratum %s failed: %v\n", label, err)
		}
	}

	return []byte(trimTrailing(b.String()))
}

// trimTrailing strips trailing spaces from every line.
func trimTrailing(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	return strings.Join(lines, "\n")
}
