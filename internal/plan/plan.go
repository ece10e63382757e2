package plan

import (
	"bytes"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/crosstab/internal/dataset"
	"github.com/roach88/crosstab/internal/recode"
	"github.com/roach88/crosstab/internal/stratify"
	"github.com/roach88/crosstab/internal/tab"
)

// Plan is a declarative tabulation run: dataset decoding hints, variable
// recodings, and the table specification.
type Plan struct {
	Name      string         `yaml:"name" json:"name"`
	Dataset   DatasetSpec    `yaml:"dataset,omitempty" json:"dataset,omitempty"`
	Variables []VariableSpec `yaml:"variables" json:"variables"`
	Table     TableSpec      `yaml:"table" json:"table"`
}

// DatasetSpec carries decoding hints for the input collaborator.
type DatasetSpec struct {
	MissingTokens []string `yaml:"missing_tokens,omitempty" json:"missing_tokens,omitempty"`
	Numeric       []string `yaml:"numeric,omitempty" json:"numeric,omitempty"`
}

// VariableSpec declares how one variable is recoded into categories.
type VariableSpec struct {
	Name  string     `yaml:"name" json:"name"`
	Rules []RuleSpec `yaml:"rules" json:"rules"`

	// OnUnmapped: "error" (default), "drop", or "label" (requires
	// UnmappedLabel).
	OnUnmapped    string   `yaml:"on_unmapped,omitempty" json:"on_unmapped,omitempty"`
	UnmappedLabel string   `yaml:"unmapped_label,omitempty" json:"unmapped_label,omitempty"`
	LevelOrder    []string `yaml:"level_order,omitempty" json:"level_order,omitempty"`
}

// RuleSpec is one recoding rule. Exactly one matcher must be set.
type RuleSpec struct {
	Label   string     `yaml:"label" json:"label"`
	Equals  *string    `yaml:"equals,omitempty" json:"equals,omitempty"`
	Range   *RangeSpec `yaml:"range,omitempty" json:"range,omitempty"`
	Missing bool       `yaml:"missing,omitempty" json:"missing,omitempty"`
}

// RangeSpec matches numeric values in [Lo, Hi).
type RangeSpec struct {
	Lo float64 `yaml:"lo" json:"lo"`
	Hi float64 `yaml:"hi" json:"hi"`
}

// TableSpec is the cross-tabulation configuration.
type TableSpec struct {
	Row   string `yaml:"row" json:"row"`
	Col   string `yaml:"col" json:"col"`
	Strat string `yaml:"strat,omitempty" json:"strat,omitempty"`

	Margins    []string `yaml:"margins,omitempty" json:"margins,omitempty"`
	PctAxis    string   `yaml:"pct_axis,omitempty" json:"pct_axis,omitempty"`
	Digits     int      `yaml:"digits,omitempty" json:"digits,omitempty"`
	ShowCounts bool     `yaml:"show_counts,omitempty" json:"show_counts,omitempty"`

	// MissingPolicy: "exclude" (default) or "own_category".
	MissingPolicy string `yaml:"missing_policy,omitempty" json:"missing_policy,omitempty"`
	// MissingLabel names the reserved category under own_category;
	// defaults to "(Missing)".
	MissingLabel string `yaml:"missing_label,omitempty" json:"missing_label,omitempty"`
}

// DefaultMissingLabel is the reserved category label used by the
// own-category policy when the plan does not override it.
const DefaultMissingLabel = "(Missing)"

// Load reads, strictly decodes, and validates a plan file.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, planErrf(ErrCodeNotFound, "read plan: %v", err)
	}
	return Parse(data)
}

// Parse decodes plan YAML with strict field validation (catches typos
// like "variable:" vs "variables:"), validates against the CUE schema,
// then runs the semantic checks CUE cannot express.
func Parse(data []byte) (*Plan, error) {
	var p Plan
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&p); err != nil {
		return nil, planErrf(ErrCodeParseFailed, "parse plan YAML: %v", err)
	}

	if err := validateSchema(data); err != nil {
		return nil, err
	}
	if err := p.check(); err != nil {
		return nil, err
	}
	return &p, nil
}

// check enforces cross-field rules the schema cannot: one matcher per
// rule, declared variables for every table dimension, and consistent
// policy/label combinations.
func (p *Plan) check() error {
	declared := make(map[string]bool, len(p.Variables))
	for _, v := range p.Variables {
		declared[v.Name] = true

		for i, r := range v.Rules {
			matchers := 0
			if r.Equals != nil {
				matchers++
			}
			if r.Range != nil {
				matchers++
			}
			if r.Missing {
				matchers++
			}
			if matchers != 1 {
				return planErrf(ErrCodeBadRule, "variable %q rule %d: exactly one of equals/range/missing required", v.Name, i)
			}
		}

		if v.OnUnmapped == "label" && v.UnmappedLabel == "" {
			return planErrf(ErrCodeBadPolicy, "variable %q: on_unmapped=label requires unmapped_label", v.Name)
		}
		if v.OnUnmapped != "label" && v.UnmappedLabel != "" {
			return planErrf(ErrCodeBadPolicy, "variable %q: unmapped_label is only valid with on_unmapped=label", v.Name)
		}
	}

	for _, dim := range []struct{ role, name string }{
		{"row", p.Table.Row},
		{"col", p.Table.Col},
		{"strat", p.Table.Strat},
	} {
		if dim.name == "" {
			continue // strat is optional; row/col emptiness is schema-checked
		}
		if !declared[dim.name] {
			return planErrf(ErrCodeBadVariable, "table %s variable %q has no recoding declaration", dim.role, dim.name)
		}
	}

	if p.Table.MissingLabel != "" && p.Table.MissingPolicy != "own_category" {
		return planErrf(ErrCodeBadPolicy, "missing_label is only valid with missing_policy=own_category")
	}

	return nil
}

// CSVOptions returns the dataset decoding options the plan declares.
func (p *Plan) CSVOptions() dataset.CSVOptions {
	return dataset.CSVOptions{
		MissingTokens: p.Dataset.MissingTokens,
		Numeric:       p.Dataset.Numeric,
	}
}

// Config converts the table spec into the engine configuration object.
func (p *Plan) Config() stratify.Config {
	cfg := stratify.Config{
		RowVar:     p.Table.Row,
		ColVar:     p.Table.Col,
		StratVar:   p.Table.Strat,
		Digits:     p.Table.Digits,
		ShowCounts: p.Table.ShowCounts,
		PctAxis:    tab.AxisNone,
	}
	for _, axis := range p.Table.Margins {
		switch axis {
		case "row":
			cfg.Margins.Row = true
		case "col":
			cfg.Margins.Col = true
		}
	}
	if p.Table.PctAxis != "" {
		cfg.PctAxis = tab.Axis(p.Table.PctAxis)
	}
	cfg.MissingPolicy = tab.MissingExclude
	if p.Table.MissingPolicy == "own_category" {
		cfg.MissingPolicy = tab.MissingOwnCategory
	}
	return cfg
}

// ReservedLabel returns the reserved missing category label, or "" when
// the plan uses the complete-case policy.
func (p *Plan) ReservedLabel() string {
	if p.Table.MissingPolicy != "own_category" {
		return ""
	}
	if p.Table.MissingLabel != "" {
		return p.Table.MissingLabel
	}
	return DefaultMissingLabel
}

// Variable returns the recoding declaration for a variable name.
func (p *Plan) Variable(name string) (VariableSpec, bool) {
	for _, v := range p.Variables {
		if v.Name == name {
			return v, true
		}
	}
	return VariableSpec{}, false
}

// Compile converts a variable spec into recode inputs.
func (v VariableSpec) Compile() ([]recode.Rule, recode.UnmappedPolicy, recode.Options, error) {
	rules := make([]recode.Rule, len(v.Rules))
	for i, r := range v.Rules {
		switch {
		case r.Equals != nil:
			rules[i] = recode.Rule{Match: recode.Exact{Value: dataset.String(*r.Equals)}, Label: r.Label}
		case r.Range != nil:
			rules[i] = recode.Rule{Match: recode.Range{Lo: r.Range.Lo, Hi: r.Range.Hi}, Label: r.Label}
		case r.Missing:
			rules[i] = recode.Rule{Match: recode.MissingValue{}, Label: r.Label}
		default:
			return nil, nil, recode.Options{}, planErrf(ErrCodeBadRule, "variable %q rule %d: no matcher", v.Name, i)
		}
	}

	var policy recode.UnmappedPolicy
	switch v.OnUnmapped {
	case "", "error":
		policy = recode.Error{}
	case "drop":
		policy = recode.Drop{}
	case "label":
		policy = recode.LabelAs{Label: v.UnmappedLabel}
	default:
		return nil, nil, recode.Options{}, planErrf(ErrCodeBadPolicy, "variable %q: unknown on_unmapped %q", v.Name, v.OnUnmapped)
	}

	return rules, policy, recode.Options{LevelOrder: v.LevelOrder}, nil
}
