package tab

// Axis selects the denominator for percentage normalization.
type Axis string

const (
	AxisRow  Axis = "row"  // divide by the cell's row total
	AxisCol  Axis = "col"  // divide by the cell's column total
	AxisCell Axis = "cell" // divide by the grand total
	AxisNone Axis = "none" // counts only, no percentages
)

// Cell pairs a count with its percentage. HasPct is false under AxisNone.
type Cell struct {
	Count  int
	Pct    float64
	HasPct bool
}

// Normalized is a matrix of (count, percentage) pairs. Percentages are
// exact at this stage - rounding is deferred to Format so re-formatting
// with different digit settings is reproducible from the same counts.
type Normalized struct {
	RowVar string
	ColVar string

	rowLabels []string
	colLabels []string
	cells     [][]Cell

	axis        Axis
	hasTotalCol bool
	hasTotalRow bool
}

// RowLabels returns the row labels in order. The caller gets a copy.
func (n *Normalized) RowLabels() []string {
	out := make([]string, len(n.rowLabels))
	copy(out, n.rowLabels)
	return out
}

// ColLabels returns the column labels in order. The caller gets a copy.
func (n *Normalized) ColLabels() []string {
	out := make([]string, len(n.colLabels))
	copy(out, n.colLabels)
	return out
}

// CellAt returns the pair at (row, col).
func (n *Normalized) CellAt(row, col int) Cell {
	return n.cells[row][col]
}

// Axis returns the normalization axis the pairs were computed under.
func (n *Normalized) Axis() Axis {
	return n.axis
}

// Normalize converts a matrix of counts into (count, percentage) pairs
// along the selected axis. The input may carry margins or not; margin
// rows/columns are never used as denominators.
//
// Denominators come from the original data region only:
//
//   - AxisRow:  pct = 100 * count / row total
//   - AxisCol:  pct = 100 * count / column total
//   - AxisCell: pct = 100 * count / grand total
//   - AxisNone: percentage left unset
//
// A zero total yields a defined 0% - an empty row or column is a
// legitimate degenerate case, not an error. Margin cells on the
// normalized axis render as 100% anchors: under AxisRow the totals
// column shows 100% for every non-empty row and the totals row shows
// 100% across (the grand-total cell included); AxisCol mirrors this.
// Under AxisCell margin cells are normalized by the grand total like any
// other cell.
func Normalize(m *Matrix, axis Axis) *Normalized {
	if axis == "" {
		axis = AxisNone
	}

	out := &Normalized{
		RowVar:      m.RowVar,
		ColVar:      m.ColVar,
		rowLabels:   m.RowLabels(),
		colLabels:   m.ColLabels(),
		cells:       make([][]Cell, len(m.counts)),
		axis:        axis,
		hasTotalCol: m.hasTotalCol,
		hasTotalRow: m.hasTotalRow,
	}

	rows := m.dataRows()
	cols := m.dataCols()

	rowTotals := make([]int, rows)
	colTotals := make([]int, cols)
	grand := 0
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			c := m.counts[i][j]
			rowTotals[i] += c
			colTotals[j] += c
			grand += c
		}
	}

	for i := range m.counts {
		out.cells[i] = make([]Cell, len(m.counts[i]))
		for j, count := range m.counts[i] {
			cell := Cell{Count: count}
			if axis != AxisNone {
				cell.HasPct = true
				cell.Pct = percentage(axis, i, j, count, rows, cols, rowTotals, colTotals, grand)
			}
			out.cells[i][j] = cell
		}
	}

	return out
}

func percentage(axis Axis, i, j, count, rows, cols int, rowTotals, colTotals []int, grand int) float64 {
	marginRow := i >= rows // cell sits in the appended totals row
	marginCol := j >= cols // cell sits in the appended totals column

	switch axis {
	case AxisCell:
		return ratio(count, grand)

	case AxisRow:
		switch {
		case marginRow:
			// Totals row anchors at 100% across, grand cell included.
			return anchor(grand)
		case marginCol:
			return anchor(rowTotals[i])
		default:
			return ratio(count, rowTotals[i])
		}

	case AxisCol:
		switch {
		case marginCol:
			return anchor(grand)
		case marginRow:
			return anchor(colTotals[j])
		default:
			return ratio(count, colTotals[j])
		}
	}
	return 0
}

// ratio returns 100*count/total, with a defined 0 for a zero total.
func ratio(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(count) / float64(total)
}

// anchor returns the 100% margin anchor, or 0 when there is no data to
// anchor (so an all-zero row renders 0% in every column, totals included).
func anchor(total int) float64 {
	if total == 0 {
		return 0
	}
	return 100
}
