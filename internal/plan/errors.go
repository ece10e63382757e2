package plan

import (
	"errors"
	"fmt"
)

// Error code constants - unified across plan loading and compilation.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeNotFound     = "E002" // Plan file not found
	ErrCodeParseFailed  = "E003" // YAML parse failed
	ErrCodeSchemaFailed = "E004" // CUE schema validation failed

	// Semantic errors
	ErrCodeBadRule     = "E101" // Rule has zero or multiple matchers
	ErrCodeBadVariable = "E102" // Table references an undeclared variable
	ErrCodeBadPolicy   = "E103" // Policy/label combination invalid
)

// PlanError is a structured plan loading/compilation error with a stable
// code for machine consumption in CLI JSON output.
type PlanError struct {
	Code    string
	Message string
}

func (e *PlanError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsPlanError reports whether err is a PlanError.
func IsPlanError(err error) bool {
	var pe *PlanError
	return errors.As(err, &pe)
}

func planErrf(code, format string, args ...any) *PlanError {
	return &PlanError{Code: code, Message: fmt.Sprintf(format, args...)}
}
