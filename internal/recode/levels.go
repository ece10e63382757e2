package recode

import "fmt"

// Levels is an immutable ordered list of category labels for one variable.
//
// INVARIANT: a Levels value never changes after construction. Adding the
// reserved missing category produces a new value and is only legal during
// recoding, before any matrix exists.
type Levels struct {
	variable string
	labels   []string
	index    map[string]int
	reserved string // reserved missing label, "" when absent
}

// NewLevels builds a level order for a variable from labels in order.
// Duplicate labels collapse to their first position: the engine treats
// each distinct label as one category.
func NewLevels(variable string, labels []string) Levels {
	lv := Levels{
		variable: variable,
		labels:   make([]string, 0, len(labels)),
		index:    make(map[string]int, len(labels)),
	}
	for _, label := range labels {
		if _, seen := lv.index[label]; seen {
			continue
		}
		lv.index[label] = len(lv.labels)
		lv.labels = append(lv.labels, label)
	}
	return lv
}

// Variable returns the variable name this level order belongs to.
func (l Levels) Variable() string {
	return l.variable
}

// Labels returns the labels in level order. The caller gets a copy.
func (l Levels) Labels() []string {
	out := make([]string, len(l.labels))
	copy(out, l.labels)
	return out
}

// Len returns the number of categories.
func (l Levels) Len() int {
	return len(l.labels)
}

// Index returns the position of a label in level order.
func (l Levels) Index(label string) (int, bool) {
	i, ok := l.index[label]
	return i, ok
}

// Reserved returns the reserved missing label, or "" if none was added.
func (l Levels) Reserved() string {
	return l.reserved
}

// WithReserved returns a new Levels with the reserved missing category
// appended at the end of the level order. Used by the own-category
// missing policy; must happen during recoding, never mid-pipeline.
//
// A reserved label that collides with an existing category is rejected:
// the collision would silently merge missing records into real data.
func (l Levels) WithReserved(label string) (Levels, error) {
	if _, exists := l.index[label]; exists {
		return Levels{}, fmt.Errorf("variable %q: reserved missing label %q collides with an existing category", l.variable, label)
	}
	out := NewLevels(l.variable, append(l.Labels(), label))
	out.reserved = label
	return out, nil
}

// Validate returns EmptyLevelSetError when there is nothing to tabulate
// against.
func (l Levels) Validate() error {
	if len(l.labels) == 0 {
		return &EmptyLevelSetError{Variable: l.variable}
	}
	return nil
}
