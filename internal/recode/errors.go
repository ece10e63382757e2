package recode

import (
	"errors"
	"fmt"

	"github.com/roach88/crosstab/internal/dataset"
)

// RecodeError reports a raw value that no rule matched under the Error
// unmapped policy. It names the first offending value and its index so
// the caller can fix the mapping.
type RecodeError struct {
	Variable string
	Value    dataset.Value
	Index    int
}

func (e *RecodeError) Error() string {
	return fmt.Sprintf("recode %s: unmapped value %s at index %d", e.Variable, dataset.Display(e.Value), e.Index)
}

// IsRecodeError reports whether err is a RecodeError.
// Uses errors.As to handle wrapped errors.
func IsRecodeError(err error) bool {
	var re *RecodeError
	return errors.As(err, &re)
}

// EmptyLevelSetError reports a variable whose level order is empty -
// there is nothing to tabulate against.
type EmptyLevelSetError struct {
	Variable string
}

func (e *EmptyLevelSetError) Error() string {
	return fmt.Sprintf("variable %q has an empty level set", e.Variable)
}

// IsEmptyLevelSet reports whether err is an EmptyLevelSetError.
func IsEmptyLevelSet(err error) bool {
	var ee *EmptyLevelSetError
	return errors.As(err, &ee)
}
