package tab

// TotalLabel is the label used for appended margin rows and columns.
const TotalLabel = "Total"

// Margins selects which totals to append to a matrix.
// Row appends a per-row totals column; Col appends a per-column totals
// row. Requesting both also yields the grand-total cell at the corner.
type Margins struct {
	Row bool
	Col bool
}

// Matrix is a contingency matrix: a count grid cross-classifying two
// categorical variables. Row and column index orders equal the declared
// level orders; totals, when present, occupy the last row/column.
//
// INVARIANT: the sum over all non-margin cells equals N, the number of
// records that contributed after missing-value exclusion.
type Matrix struct {
	RowVar string
	ColVar string

	rowLabels []string
	colLabels []string
	counts    [][]int

	hasTotalCol bool // per-row totals column appended
	hasTotalRow bool // per-column totals row appended

	n int
}

func newMatrix(rowVar, colVar string, rowLabels, colLabels []string) *Matrix {
	counts := make([][]int, len(rowLabels))
	for i := range counts {
		counts[i] = make([]int, len(colLabels))
	}
	return &Matrix{
		RowVar:    rowVar,
		ColVar:    colVar,
		rowLabels: rowLabels,
		colLabels: colLabels,
		counts:    counts,
	}
}

// RowLabels returns the row labels in level order (including a trailing
// Total when row margins are present). The caller gets a copy.
func (m *Matrix) RowLabels() []string {
	out := make([]string, len(m.rowLabels))
	copy(out, m.rowLabels)
	return out
}

// ColLabels returns the column labels in level order (including a
// trailing Total when column margins are present). The caller gets a copy.
func (m *Matrix) ColLabels() []string {
	out := make([]string, len(m.colLabels))
	copy(out, m.colLabels)
	return out
}

// Count returns the count at (row, col).
func (m *Matrix) Count(row, col int) int {
	return m.counts[row][col]
}

// N returns the number of records that contributed to the matrix.
func (m *Matrix) N() int {
	return m.n
}

// HasTotalCol reports whether a per-row totals column has been appended.
func (m *Matrix) HasTotalCol() bool { return m.hasTotalCol }

// HasTotalRow reports whether a per-column totals row has been appended.
func (m *Matrix) HasTotalRow() bool { return m.hasTotalRow }

// dataRows returns the number of rows excluding an appended totals row.
func (m *Matrix) dataRows() int {
	if m.hasTotalRow {
		return len(m.rowLabels) - 1
	}
	return len(m.rowLabels)
}

// dataCols returns the number of columns excluding an appended totals
// column.
func (m *Matrix) dataCols() int {
	if m.hasTotalCol {
		return len(m.colLabels) - 1
	}
	return len(m.colLabels)
}

// clone returns a deep copy. Stages that produce an augmented matrix work
// on a clone so the input stays untouched.
func (m *Matrix) clone() *Matrix {
	out := &Matrix{
		RowVar:      m.RowVar,
		ColVar:      m.ColVar,
		rowLabels:   m.RowLabels(),
		colLabels:   m.ColLabels(),
		counts:      make([][]int, len(m.counts)),
		hasTotalCol: m.hasTotalCol,
		hasTotalRow: m.hasTotalRow,
		n:           m.n,
	}
	for i, row := range m.counts {
		out.counts[i] = make([]int, len(row))
		copy(out.counts[i], row)
	}
	return out
}
