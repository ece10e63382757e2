package tab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/crosstab/internal/dataset"
	"github.com/roach88/crosstab/internal/recode"
)

func TestNormalizeRowSumsTo100(t *testing.T) {
	m := handedMatrix(t)
	n := Normalize(m, AxisRow)

	for i := range n.RowLabels() {
		sum := 0.0
		for j := range n.ColLabels() {
			sum += n.CellAt(i, j).Pct
		}
		assert.InDelta(t, 100, sum, 1e-9, "row %d percentages sum to 100", i)
	}
}

func TestNormalizeRowWithMargins(t *testing.T) {
	aug, err := AddMargins(handedMatrix(t), Margins{Row: true, Col: true})
	require.NoError(t, err)

	n := Normalize(aug, AxisRow)

	// Male: 43/52, 9/52, anchored 100% total.
	assert.InDelta(t, 100*43.0/52.0, n.CellAt(0, 0).Pct, 1e-9)
	assert.InDelta(t, 100*9.0/52.0, n.CellAt(0, 1).Pct, 1e-9)
	assert.InDelta(t, 100, n.CellAt(0, 2).Pct, 1e-9)

	// Totals row anchors at 100% across, grand cell included.
	assert.InDelta(t, 100, n.CellAt(2, 0).Pct, 1e-9)
	assert.InDelta(t, 100, n.CellAt(2, 1).Pct, 1e-9)
	assert.InDelta(t, 100, n.CellAt(2, 2).Pct, 1e-9)

	// Counts are carried alongside the percentages.
	assert.Equal(t, 43, n.CellAt(0, 0).Count)
	assert.Equal(t, 100, n.CellAt(2, 2).Count)
}

func TestNormalizeColAxis(t *testing.T) {
	m := handedMatrix(t)
	n := Normalize(m, AxisCol)

	// Right-handed column: 43/87, 44/87.
	assert.InDelta(t, 100*43.0/87.0, n.CellAt(0, 0).Pct, 1e-9)
	assert.InDelta(t, 100*44.0/87.0, n.CellAt(1, 0).Pct, 1e-9)

	for j := range n.ColLabels() {
		sum := 0.0
		for i := range n.RowLabels() {
			sum += n.CellAt(i, j).Pct
		}
		assert.InDelta(t, 100, sum, 1e-9, "column %d percentages sum to 100", j)
	}
}

func TestNormalizeCellAxis(t *testing.T) {
	aug, err := AddMargins(handedMatrix(t), Margins{Row: true, Col: true})
	require.NoError(t, err)

	n := Normalize(aug, AxisCell)
	assert.InDelta(t, 43, n.CellAt(0, 0).Pct, 1e-9, "43/100 of the grand total")
	assert.InDelta(t, 52, n.CellAt(0, 2).Pct, 1e-9, "margin cells normalize by grand total")
	assert.InDelta(t, 100, n.CellAt(2, 2).Pct, 1e-9)
}

func TestNormalizeNoneCarriesCountsOnly(t *testing.T) {
	n := Normalize(handedMatrix(t), AxisNone)
	cell := n.CellAt(0, 0)
	assert.Equal(t, 43, cell.Count)
	assert.False(t, cell.HasPct)
}

func TestNormalizeEmptyRowIsZeroNotFault(t *testing.T) {
	rows := recode.NewLevels("gender", []string{"Male", "Female", "Nonbinary"})
	cols := recode.NewLevels("hand", []string{"Right-handed", "Left-handed"})
	m, err := Tabulate(handedDataset(), "gender", "hand", rows, cols, MissingExclude)
	require.NoError(t, err)
	aug, err := AddMargins(m, Margins{Row: true, Col: true})
	require.NoError(t, err)

	n := Normalize(aug, AxisRow)
	for j := range n.ColLabels() {
		assert.Equal(t, 0.0, n.CellAt(2, j).Pct, "empty row renders 0%% everywhere, total cell included")
	}
}

func TestNormalizeEmptyMatrix(t *testing.T) {
	rows := recode.NewLevels("a", []string{"X"})
	cols := recode.NewLevels("b", []string{"Y"})
	m, err := Tabulate(&dataset.Dataset{}, "a", "b", rows, cols, MissingExclude)
	require.NoError(t, err)

	n := Normalize(m, AxisCell)
	assert.Equal(t, 0.0, n.CellAt(0, 0).Pct, "zero grand total divides to 0%%")
}
