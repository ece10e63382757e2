package tab

import (
	"fmt"

	"github.com/roach88/crosstab/internal/dataset"
	"github.com/roach88/crosstab/internal/recode"
)

// MissingPolicy controls how records with missing values in a tabulated
// dimension are handled.
type MissingPolicy string

const (
	// MissingExclude drops the record from the count whenever either
	// dimension is missing (complete-case policy, the default).
	MissingExclude MissingPolicy = "exclude"

	// MissingOwnCategory counts missing values under the reserved
	// category that the recode step appended to the level order.
	MissingOwnCategory MissingPolicy = "own_category"
)

// Tabulate groups records by two categorical dimensions and counts
// occurrences per cell.
//
// Both variables must already be recoded: every non-missing value is
// expected to be a label in the corresponding level order, and anything
// else is an UnknownCategoryError. The matrix shape is exactly
// rowLevels.Len() x colLevels.Len() regardless of which cells are empty.
//
// Iterating the same records twice yields an identical matrix.
func Tabulate(ds *dataset.Dataset, rowVar, colVar string, rowLevels, colLevels recode.Levels, policy MissingPolicy) (*Matrix, error) {
	if err := rowLevels.Validate(); err != nil {
		return nil, err
	}
	if err := colLevels.Validate(); err != nil {
		return nil, err
	}
	if policy == "" {
		policy = MissingExclude
	}
	if policy == MissingOwnCategory {
		if rowLevels.Reserved() == "" {
			return nil, fmt.Errorf("tabulate %s: own-category policy but level order for %q carries no reserved missing category", rowVar, rowVar)
		}
		if colLevels.Reserved() == "" {
			return nil, fmt.Errorf("tabulate %s: own-category policy but level order for %q carries no reserved missing category", colVar, colVar)
		}
	}

	m := newMatrix(rowVar, colVar, rowLevels.Labels(), colLevels.Labels())

	for _, rec := range ds.Records {
		rowLabel, rowOK, err := cellLabel(rec.Get(rowVar), rowVar, rowLevels, policy)
		if err != nil {
			return nil, err
		}
		colLabel, colOK, err := cellLabel(rec.Get(colVar), colVar, colLevels, policy)
		if err != nil {
			return nil, err
		}
		if !rowOK || !colOK {
			continue // complete-case exclusion
		}

		i, ok := rowLevels.Index(rowLabel)
		if !ok {
			return nil, &UnknownCategoryError{Variable: rowVar, Label: rowLabel}
		}
		j, ok := colLevels.Index(colLabel)
		if !ok {
			return nil, &UnknownCategoryError{Variable: colVar, Label: colLabel}
		}

		m.counts[i][j]++
		m.n++
	}

	return m, nil
}

// cellLabel resolves a record's raw value for one dimension to a category
// label. ok=false means the record is excluded from the count.
func cellLabel(v dataset.Value, variable string, levels recode.Levels, policy MissingPolicy) (string, bool, error) {
	if dataset.IsMissing(v) {
		if policy == MissingOwnCategory {
			return levels.Reserved(), true, nil
		}
		return "", false, nil
	}
	label, ok := v.(dataset.String)
	if !ok {
		// A non-string value here means the variable was never recoded.
		return "", false, &UnknownCategoryError{Variable: variable, Label: dataset.Display(v)}
	}
	return string(label), true, nil
}
