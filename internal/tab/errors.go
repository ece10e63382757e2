package tab

import (
	"errors"
	"fmt"
)

// UnknownCategoryError reports a recoded label outside the declared level
// order. It indicates a recoding/tabulation configuration mismatch: level
// lists are pre-declared by the recode step, so a new label cannot appear
// silently at tabulation time.
type UnknownCategoryError struct {
	Variable string
	Label    string
	Stratum  string // empty outside stratified runs
}

func (e *UnknownCategoryError) Error() string {
	if e.Stratum != "" {
		return fmt.Sprintf("variable %q: label %q not in declared level order (stratum %q)", e.Variable, e.Label, e.Stratum)
	}
	return fmt.Sprintf("variable %q: label %q not in declared level order", e.Variable, e.Label)
}

// IsUnknownCategory reports whether err is an UnknownCategoryError.
// Uses errors.As to handle wrapped errors.
func IsUnknownCategory(err error) bool {
	var ue *UnknownCategoryError
	return errors.As(err, &ue)
}

// AlreadyAugmentedError reports margins requested on a matrix that
// already carries them. Double totals are a known pitfall in ad hoc
// tabulation workflows, so a second augmentation is an error rather than
// a silent re-sum.
type AlreadyAugmentedError struct {
	Axis string // "row" or "col"
}

func (e *AlreadyAugmentedError) Error() string {
	return fmt.Sprintf("matrix already has %s margins", e.Axis)
}

// IsAlreadyAugmented reports whether err is an AlreadyAugmentedError.
func IsAlreadyAugmented(err error) bool {
	var ae *AlreadyAugmentedError
	return errors.As(err, &ae)
}
