package stratify

import (
	"fmt"
	"slices"

	"github.com/roach88/crosstab/internal/tab"
)

// Combine lays the successful tables of a set out side by side as one
// wide table: shared row labels on the left, each stratum's columns
// grouped under its label via ColGroups. Failed strata are skipped.
//
// All tables in a set are built against the same row level order, so
// their row labels agree; a mismatch indicates a corrupted set and is
// reported as an error.
func Combine(set *TableSet) (*tab.FormattedTable, error) {
	var first *tab.FormattedTable
	var firstLabel string
	for _, label := range set.Order {
		if t, ok := set.Tables[label]; ok {
			first = t
			firstLabel = label
			break
		}
	}
	if first == nil {
		return nil, fmt.Errorf("combine: no successful strata in run %s", set.RunToken)
	}

	out := &tab.FormattedTable{
		RowVar:    first.RowVar,
		ColVar:    first.ColVar,
		RowLabels: slices.Clone(first.RowLabels),
		Cells:     make([][]string, len(first.RowLabels)),
	}

	for _, label := range set.Order {
		t, ok := set.Tables[label]
		if !ok {
			continue
		}
		if !slices.Equal(t.RowLabels, out.RowLabels) {
			return nil, fmt.Errorf("combine: stratum %q row labels diverge from %q", label, firstLabel)
		}
		out.ColGroups = append(out.ColGroups, tab.ColGroup{Label: label, Span: len(t.ColLabels)})
		out.ColLabels = append(out.ColLabels, t.ColLabels...)
		for i := range out.Cells {
			out.Cells[i] = append(out.Cells[i], t.Cells[i]...)
		}
	}

	return out, nil
}
