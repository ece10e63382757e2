package dataset

import (
	"fmt"
	"strconv"
)

// Value is a sealed interface representing raw field values.
// Only String, Number, and Missing implement it.
//
// The missing marker is a distinct type rather than a sentinel string so
// that it can never collide with real data and is never silently coerced
// into a category label.
type Value interface {
	rawValue() // Sealed - only these types implement it
}

// String is a raw categorical value (string or code).
type String string

func (String) rawValue() {}

// Number is a raw numeric value.
type Number float64

func (Number) rawValue() {}

// Missing is the distinguished "absent/unknown" marker.
type Missing struct{}

func (Missing) rawValue() {}

// IsMissing reports whether v is the missing marker.
// A nil Value is treated as missing as well, so partially populated
// records behave like records with explicit missing fields.
func IsMissing(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(Missing)
	return ok
}

// Display renders a raw value for diagnostics and error messages.
// Not used for table output - the formatter owns presentation.
func Display(v Value) string {
	switch val := v.(type) {
	case nil, Missing:
		return "<missing>"
	case String:
		return string(val)
	case Number:
		return strconv.FormatFloat(float64(val), 'g', -1, 64)
	default:
		return fmt.Sprintf("<unknown %T>", v)
	}
}
