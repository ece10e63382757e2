package recode

import (
	"fmt"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/crosstab/internal/dataset"
)

// Matcher decides whether a rule applies to a raw value.
//
// A matcher is never asked about the missing marker unless it explicitly
// opts in via MatchesMissing - raw missing values are not data and must
// not be captured by value rules by accident.
type Matcher interface {
	Matches(v dataset.Value) bool
	MatchesMissing() bool
}

// Exact matches a raw value equal to a fixed value.
type Exact struct {
	Value dataset.Value
}

func (m Exact) Matches(v dataset.Value) bool { return v == m.Value }
func (m Exact) MatchesMissing() bool         { return false }

// Range matches numeric raw values in [Lo, Hi). Non-numeric values never
// match.
type Range struct {
	Lo, Hi float64
}

func (m Range) Matches(v dataset.Value) bool {
	n, ok := v.(dataset.Number)
	return ok && float64(n) >= m.Lo && float64(n) < m.Hi
}
func (m Range) MatchesMissing() bool { return false }

// Predicate matches via an arbitrary function over non-missing values.
type Predicate struct {
	Fn func(dataset.Value) bool
}

func (m Predicate) Matches(v dataset.Value) bool { return m.Fn != nil && m.Fn(v) }
func (m Predicate) MatchesMissing() bool         { return false }

// MissingValue is the only matcher that targets the missing marker.
// Use it when a recoding explicitly maps missingness to a category.
type MissingValue struct{}

func (MissingValue) Matches(v dataset.Value) bool { return dataset.IsMissing(v) }
func (MissingValue) MatchesMissing() bool         { return true }

// Rule pairs a matcher with the category label it emits.
type Rule struct {
	Match Matcher
	Label string
}

// UnmappedPolicy controls what happens to raw values no rule matches.
type UnmappedPolicy interface {
	unmappedPolicy() // Sealed
}

// Error fails on the first unmapped raw value.
type Error struct{}

func (Error) unmappedPolicy() {}

// Drop emits the missing marker for unmapped values; downstream
// complete-case handling then excludes those records.
type Drop struct{}

func (Drop) unmappedPolicy() {}

// LabelAs emits a fixed label for unmapped values.
type LabelAs struct {
	Label string
}

func (LabelAs) unmappedPolicy() {}

// Result carries the recoded labels (aligned 1:1 with the input values;
// the missing marker is represented as ok=false positions via Labels and
// MissingAt) and the level order both as one value, so every downstream
// consumer shares a single source of truth for ordering.
type Result struct {
	// Labels holds the emitted label per input position. Positions where
	// the output is the missing marker hold "" and are flagged in
	// MissingAt.
	Labels []string

	// MissingAt flags positions whose output is the missing marker
	// (either the input was missing, or the Drop policy applied).
	MissingAt []bool

	// Levels is the resulting level order: rule declaration order, or
	// the explicit override passed to Recode.
	Levels Levels
}

// Values converts the result back into a raw value column, with the
// missing marker restored at flagged positions.
func (r *Result) Values() []dataset.Value {
	out := make([]dataset.Value, len(r.Labels))
	for i, label := range r.Labels {
		if r.MissingAt[i] {
			out[i] = dataset.Missing{}
		} else {
			out[i] = dataset.String(label)
		}
	}
	return out
}

// Options adjusts recoding behavior beyond the rule list.
type Options struct {
	// LevelOrder overrides the rule-order level sequence. Labels emitted
	// by rules (and LabelAs) must appear in the override.
	LevelOrder []string
}

// Recode maps raw values to category labels, first-match-wins against the
// rules in the supplied order. Rule order also defines the level order of
// the resulting category unless opts.LevelOrder overrides it.
//
// Recode is a pure function over its inputs: the raw values are not
// mutated and the returned Levels is immutable.
func Recode(variable string, values []dataset.Value, rules []Rule, onUnmapped UnmappedPolicy, opts Options) (*Result, error) {
	if len(rules) == 0 {
		return nil, &EmptyLevelSetError{Variable: variable}
	}
	if onUnmapped == nil {
		onUnmapped = Error{}
	}

	// Normalize rule labels once. NFC keeps canonically equal spellings
	// in one category even when the bytes differ.
	labels := make([]string, len(rules))
	for i, rule := range rules {
		labels[i] = norm.NFC.String(rule.Label)
	}

	levelOrder := labels
	if extra, ok := onUnmapped.(LabelAs); ok {
		levelOrder = append(append([]string{}, labels...), norm.NFC.String(extra.Label))
	}
	if opts.LevelOrder != nil {
		override := make([]string, len(opts.LevelOrder))
		for i, label := range opts.LevelOrder {
			override[i] = norm.NFC.String(label)
		}
		if err := checkOverrideCovers(variable, override, levelOrder); err != nil {
			return nil, err
		}
		levelOrder = override
	}

	levels := NewLevels(variable, levelOrder)
	if err := levels.Validate(); err != nil {
		return nil, err
	}

	result := &Result{
		Labels:    make([]string, len(values)),
		MissingAt: make([]bool, len(values)),
		Levels:    levels,
	}

	for i, v := range values {
		label, matched := applyRules(v, rules, labels)
		if matched {
			result.Labels[i] = label
			continue
		}
		if dataset.IsMissing(v) {
			// Missing input with no explicit missing rule stays missing,
			// regardless of the unmapped policy.
			result.MissingAt[i] = true
			continue
		}
		switch p := onUnmapped.(type) {
		case Error:
			return nil, &RecodeError{Variable: variable, Value: v, Index: i}
		case Drop:
			result.MissingAt[i] = true
		case LabelAs:
			result.Labels[i] = norm.NFC.String(p.Label)
		default:
			return nil, fmt.Errorf("recode %s: unknown unmapped policy %T", variable, onUnmapped)
		}
	}

	return result, nil
}

// applyRules returns the first matching rule's label. Value rules are
// skipped for the missing marker; only MissingValue matchers see it.
func applyRules(v dataset.Value, rules []Rule, labels []string) (string, bool) {
	missing := dataset.IsMissing(v)
	for i, rule := range rules {
		if missing && !rule.Match.MatchesMissing() {
			continue
		}
		if rule.Match.Matches(v) {
			return labels[i], true
		}
	}
	return "", false
}

func checkOverrideCovers(variable string, override, required []string) error {
	have := make(map[string]bool, len(override))
	for _, label := range override {
		have[label] = true
	}
	for _, label := range required {
		if !have[label] {
			return fmt.Errorf("recode %s: level order override missing label %q", variable, label)
		}
	}
	return nil
}
