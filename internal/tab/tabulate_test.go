package tab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/crosstab/internal/dataset"
	"github.com/roach88/crosstab/internal/recode"
)

// handedDataset builds the gender x handedness example: 43 (Male,Right),
// 9 (Male,Left), 44 (Female,Right), 4 (Female,Left).
func handedDataset() *dataset.Dataset {
	ds := &dataset.Dataset{}
	add := func(n int, gender, hand string) {
		for i := 0; i < n; i++ {
			ds.Records = append(ds.Records, dataset.NewRecord(
				dataset.Field{Name: "gender", Value: dataset.String(gender)},
				dataset.Field{Name: "hand", Value: dataset.String(hand)},
			))
		}
	}
	add(43, "Male", "Right-handed")
	add(9, "Male", "Left-handed")
	add(44, "Female", "Right-handed")
	add(4, "Female", "Left-handed")
	return ds
}

func handedLevels() (recode.Levels, recode.Levels) {
	return recode.NewLevels("gender", []string{"Male", "Female"}),
		recode.NewLevels("hand", []string{"Right-handed", "Left-handed"})
}

func TestTabulateCounts(t *testing.T) {
	rows, cols := handedLevels()
	m, err := Tabulate(handedDataset(), "gender", "hand", rows, cols, MissingExclude)
	require.NoError(t, err)

	assert.Equal(t, 43, m.Count(0, 0))
	assert.Equal(t, 9, m.Count(0, 1))
	assert.Equal(t, 44, m.Count(1, 0))
	assert.Equal(t, 4, m.Count(1, 1))
	assert.Equal(t, 100, m.N())
}

func TestTabulateCellSumEqualsCompleteCases(t *testing.T) {
	rows, cols := handedLevels()
	ds := handedDataset()
	// Two incomplete records that must be excluded.
	ds.Records = append(ds.Records,
		dataset.NewRecord(
			dataset.Field{Name: "gender", Value: dataset.Missing{}},
			dataset.Field{Name: "hand", Value: dataset.String("Right-handed")},
		),
		dataset.NewRecord(
			dataset.Field{Name: "gender", Value: dataset.String("Male")},
			dataset.Field{Name: "hand", Value: dataset.Missing{}},
		),
	)

	m, err := Tabulate(ds, "gender", "hand", rows, cols, MissingExclude)
	require.NoError(t, err)

	sum := 0
	for i := range m.RowLabels() {
		for j := range m.ColLabels() {
			sum += m.Count(i, j)
		}
	}
	assert.Equal(t, 100, sum, "cell sum equals records with both values present")
	assert.Equal(t, m.N(), sum)
}

func TestTabulateZeroFilledShape(t *testing.T) {
	rows := recode.NewLevels("gender", []string{"Male", "Female", "Nonbinary"})
	_, cols := handedLevels()

	m, err := Tabulate(handedDataset(), "gender", "hand", rows, cols, MissingExclude)
	require.NoError(t, err)

	require.Len(t, m.RowLabels(), 3, "shape follows declared levels, not observed data")
	assert.Equal(t, 0, m.Count(2, 0))
	assert.Equal(t, 0, m.Count(2, 1))
}

func TestTabulateUnknownCategory(t *testing.T) {
	rows, cols := handedLevels()
	ds := &dataset.Dataset{Records: []dataset.Record{
		dataset.NewRecord(
			dataset.Field{Name: "gender", Value: dataset.String("Martian")},
			dataset.Field{Name: "hand", Value: dataset.String("Right-handed")},
		),
	}}

	_, err := Tabulate(ds, "gender", "hand", rows, cols, MissingExclude)
	require.Error(t, err)
	require.True(t, IsUnknownCategory(err))

	var ue *UnknownCategoryError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "gender", ue.Variable)
	assert.Equal(t, "Martian", ue.Label)
}

func TestTabulateUnrecodedNumericIsUnknownCategory(t *testing.T) {
	rows, cols := handedLevels()
	ds := &dataset.Dataset{Records: []dataset.Record{
		dataset.NewRecord(
			dataset.Field{Name: "gender", Value: dataset.Number(1)},
			dataset.Field{Name: "hand", Value: dataset.String("Right-handed")},
		),
	}}

	_, err := Tabulate(ds, "gender", "hand", rows, cols, MissingExclude)
	require.Error(t, err)
	assert.True(t, IsUnknownCategory(err))
}

func TestTabulateOwnCategoryPolicy(t *testing.T) {
	rows, cols := handedLevels()
	rowsM, err := rows.WithReserved("(Missing)")
	require.NoError(t, err)
	colsM, err := cols.WithReserved("(Missing)")
	require.NoError(t, err)

	ds := &dataset.Dataset{Records: []dataset.Record{
		dataset.NewRecord(
			dataset.Field{Name: "gender", Value: dataset.Missing{}},
			dataset.Field{Name: "hand", Value: dataset.String("Left-handed")},
		),
	}}

	m, err := Tabulate(ds, "gender", "hand", rowsM, colsM, MissingOwnCategory)
	require.NoError(t, err)

	assert.Equal(t, []string{"Male", "Female", "(Missing)"}, m.RowLabels())
	assert.Equal(t, 1, m.Count(2, 1), "missing counted under the reserved category")
	assert.Equal(t, 1, m.N())
}

func TestTabulateOwnCategoryRequiresReservedLevel(t *testing.T) {
	rows, cols := handedLevels() // no reserved category
	_, err := Tabulate(&dataset.Dataset{}, "gender", "hand", rows, cols, MissingOwnCategory)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gender")
}

func TestTabulateOwnCategoryErrorNamesColVar(t *testing.T) {
	rows, cols := handedLevels()
	rowsM, err := rows.WithReserved("(Missing)")
	require.NoError(t, err)

	// Only the column dimension lacks its reserved level; the error must
	// name that variable, not the row variable.
	_, err = Tabulate(&dataset.Dataset{}, "gender", "hand", rowsM, cols, MissingOwnCategory)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `tabulate hand`)
	assert.NotContains(t, err.Error(), "gender")
}

func TestTabulateEmptyLevels(t *testing.T) {
	rows := recode.NewLevels("gender", nil)
	_, cols := handedLevels()
	_, err := Tabulate(&dataset.Dataset{}, "gender", "hand", rows, cols, MissingExclude)
	require.Error(t, err)
	assert.True(t, recode.IsEmptyLevelSet(err))
}

func TestTabulateDeterministic(t *testing.T) {
	rows, cols := handedLevels()
	ds := handedDataset()

	a, err := Tabulate(ds, "gender", "hand", rows, cols, MissingExclude)
	require.NoError(t, err)
	b, err := Tabulate(ds, "gender", "hand", rows, cols, MissingExclude)
	require.NoError(t, err)

	assert.Equal(t, a, b, "same input yields a bit-identical matrix")
}
