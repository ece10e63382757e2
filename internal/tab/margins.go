package tab

// AddMargins returns a copy of the matrix with totals appended on the
// requested axes: a per-row totals column for axes.Row, a per-column
// totals row for axes.Col, and - when both are requested - a grand-total
// corner cell computed once from the original cells, never from
// already-augmented rows.
//
// Margins may be applied incrementally in either axis order: a later
// application extends an already-present totals row/column with the grand
// total so the matrix stays rectangular.
//
// Applying margins to a matrix that already carries them is an
// AlreadyAugmentedError. Requesting no axes returns an untouched copy.
func AddMargins(m *Matrix, axes Margins) (*Matrix, error) {
	if axes.Row && m.hasTotalCol {
		return nil, &AlreadyAugmentedError{Axis: "row"}
	}
	if axes.Col && m.hasTotalRow {
		return nil, &AlreadyAugmentedError{Axis: "col"}
	}

	out := m.clone()
	if !axes.Row && !axes.Col {
		return out, nil
	}

	rows := out.dataRows()
	cols := out.dataCols()

	// Totals computed from the original data region only.
	rowTotals := make([]int, rows)
	colTotals := make([]int, cols)
	grand := 0
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			c := out.counts[i][j]
			rowTotals[i] += c
			colTotals[j] += c
			grand += c
		}
	}

	if axes.Row {
		out.colLabels = append(out.colLabels, TotalLabel)
		for i := 0; i < rows; i++ {
			out.counts[i] = append(out.counts[i], rowTotals[i])
		}
		if out.hasTotalRow {
			out.counts[rows] = append(out.counts[rows], grand)
		}
		out.hasTotalCol = true
	}

	if axes.Col {
		out.rowLabels = append(out.rowLabels, TotalLabel)
		totalRow := make([]int, len(out.colLabels))
		copy(totalRow, colTotals)
		if out.hasTotalCol {
			totalRow[len(totalRow)-1] = grand
		}
		out.counts = append(out.counts, totalRow)
		out.hasTotalRow = true
	}

	return out, nil
}
