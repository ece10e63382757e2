package tab

import (
	"fmt"
	"math"
	"strconv"
)

// ColGroup is a header grouping hint for the rendering sink: Span
// consecutive columns share a parent header labeled Label. The engine
// produces the hint but never interprets it.
type ColGroup struct {
	Label string
	Span  int
}

// FormattedTable is the presentation form of a matrix: the same index
// structure, with display strings instead of numbers. It is the handoff
// value for rendering/export sinks and is not reused internally.
type FormattedTable struct {
	RowVar string
	ColVar string

	RowLabels []string
	ColLabels []string
	Cells     [][]string

	// ColGroups optionally groups consecutive columns under parent
	// headers (used when stratified tables are laid out side by side).
	ColGroups []ColGroup
}

// Format renders a normalized matrix into display strings.
//
// Percentages are rounded half-to-even at digits decimal places and
// always carry a trailing %; digits=0 renders an integer percentage.
// With showCounts the cell reads "<pct>% (<count>)". Cells without a
// percentage (AxisNone) render the bare count.
//
// Formatting never touches the stored pairs: calling Format twice with
// different digits re-rounds from the exact percentages, so no rounding
// error accumulates.
func Format(n *Normalized, digits int, showCounts bool) (*FormattedTable, error) {
	if digits < 0 {
		return nil, fmt.Errorf("format: digits must be non-negative, got %d", digits)
	}

	rowLabels := n.RowLabels()
	colLabels := n.ColLabels()

	cells := make([][]string, len(rowLabels))
	for i := range cells {
		cells[i] = make([]string, len(colLabels))
		for j := range cells[i] {
			cells[i][j] = formatCell(n.CellAt(i, j), digits, showCounts)
		}
	}

	return &FormattedTable{
		RowVar:    n.RowVar,
		ColVar:    n.ColVar,
		RowLabels: rowLabels,
		ColLabels: colLabels,
		Cells:     cells,
	}, nil
}

func formatCell(c Cell, digits int, showCounts bool) string {
	if !c.HasPct {
		return strconv.Itoa(c.Count)
	}
	pct := formatPct(c.Pct, digits)
	if showCounts {
		return pct + " (" + strconv.Itoa(c.Count) + ")"
	}
	return pct
}

// formatPct rounds half-to-even at digits decimal places and appends %.
func formatPct(v float64, digits int) string {
	scale := math.Pow10(digits)
	rounded := math.RoundToEven(v*scale) / scale
	return strconv.FormatFloat(rounded, 'f', digits, 64) + "%"
}
