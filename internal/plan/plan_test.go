package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/crosstab/internal/recode"
	"github.com/roach88/crosstab/internal/tab"
)

const validPlan = `
name: handedness by gender
dataset:
  missing_tokens: ["NA"]
variables:
  - name: gender
    rules:
      - equals: "M"
        label: Male
      - equals: "F"
        label: Female
  - name: hand
    rules:
      - equals: "R"
        label: Right-handed
      - equals: "L"
        label: Left-handed
  - name: site
    rules:
      - equals: "1"
        label: North
      - equals: "2"
        label: South
table:
  row: gender
  col: hand
  strat: site
  margins: [row, col]
  pct_axis: row
  digits: 0
  show_counts: true
`

func TestParseValidPlan(t *testing.T) {
	p, err := Parse([]byte(validPlan))
	require.NoError(t, err)

	assert.Equal(t, "handedness by gender", p.Name)
	assert.Len(t, p.Variables, 3)

	cfg := p.Config()
	assert.Equal(t, "gender", cfg.RowVar)
	assert.Equal(t, "hand", cfg.ColVar)
	assert.Equal(t, "site", cfg.StratVar)
	assert.True(t, cfg.Margins.Row)
	assert.True(t, cfg.Margins.Col)
	assert.Equal(t, tab.AxisRow, cfg.PctAxis)
	assert.Equal(t, 0, cfg.Digits)
	assert.True(t, cfg.ShowCounts)
	assert.Equal(t, tab.MissingExclude, cfg.MissingPolicy)
	assert.Equal(t, "", p.ReservedLabel())

	opts := p.CSVOptions()
	assert.Equal(t, []string{"NA"}, opts.MissingTokens)
}

func TestParseRejectsUnknownFields(t *testing.T) {
	bad := validPlan + "\nextra_field: true\n"
	_, err := Parse([]byte(bad))
	require.Error(t, err)
	assert.True(t, IsPlanError(err))
}

func TestParseRejectsMisspelledSection(t *testing.T) {
	bad := `
name: x
variable:
  - name: gender
    rules:
      - equals: "M"
        label: Male
table:
  row: gender
  col: gender
`
	_, err := Parse([]byte(bad))
	require.Error(t, err, "singular 'variable:' is a typo, not an extension")
}

func TestParseSchemaRejectsBadAxis(t *testing.T) {
	bad := `
name: x
variables:
  - name: gender
    rules:
      - equals: "M"
        label: Male
table:
  row: gender
  col: gender
  pct_axis: diagonal
`
	_, err := Parse([]byte(bad))
	require.Error(t, err)

	var pe *PlanError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ErrCodeSchemaFailed, pe.Code)
}

func TestParseSchemaRejectsNegativeDigits(t *testing.T) {
	bad := `
name: x
variables:
  - name: gender
    rules:
      - equals: "M"
        label: Male
table:
  row: gender
  col: gender
  digits: -1
`
	_, err := Parse([]byte(bad))
	require.Error(t, err)
}

func TestParseRejectsRuleWithTwoMatchers(t *testing.T) {
	bad := `
name: x
variables:
  - name: age
    rules:
      - equals: "M"
        range: {lo: 0, hi: 10}
        label: Both
table:
  row: age
  col: age
`
	_, err := Parse([]byte(bad))
	require.Error(t, err)

	var pe *PlanError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ErrCodeBadRule, pe.Code)
}

func TestParseRejectsUndeclaredTableVariable(t *testing.T) {
	bad := `
name: x
variables:
  - name: gender
    rules:
      - equals: "M"
        label: Male
table:
  row: gender
  col: hand
`
	_, err := Parse([]byte(bad))
	require.Error(t, err)

	var pe *PlanError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ErrCodeBadVariable, pe.Code)
}

func TestParseRejectsLabelPolicyWithoutLabel(t *testing.T) {
	bad := `
name: x
variables:
  - name: gender
    on_unmapped: label
    rules:
      - equals: "M"
        label: Male
table:
  row: gender
  col: gender
`
	_, err := Parse([]byte(bad))
	require.Error(t, err)

	var pe *PlanError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ErrCodeBadPolicy, pe.Code)
}

func TestParseMissingLabelRequiresOwnCategory(t *testing.T) {
	bad := `
name: x
variables:
  - name: gender
    rules:
      - equals: "M"
        label: Male
table:
  row: gender
  col: gender
  missing_label: "(None)"
`
	_, err := Parse([]byte(bad))
	require.Error(t, err)
}

func TestReservedLabelDefaults(t *testing.T) {
	p, err := Parse([]byte(`
name: x
variables:
  - name: gender
    rules:
      - equals: "M"
        label: Male
table:
  row: gender
  col: gender
  missing_policy: own_category
`))
	require.NoError(t, err)
	assert.Equal(t, DefaultMissingLabel, p.ReservedLabel())
	assert.Equal(t, tab.MissingOwnCategory, p.Config().MissingPolicy)
}

func TestVariableCompile(t *testing.T) {
	p, err := Parse([]byte(`
name: x
variables:
  - name: age
    on_unmapped: drop
    level_order: [Adult, Minor]
    rules:
      - range: {lo: 0, hi: 18}
        label: Minor
      - range: {lo: 18, hi: 200}
        label: Adult
      - missing: true
        label: Adult
table:
  row: age
  col: age
`))
	require.NoError(t, err)

	spec, ok := p.Variable("age")
	require.True(t, ok)

	rules, policy, opts, err := spec.Compile()
	require.NoError(t, err)
	require.Len(t, rules, 3)
	assert.IsType(t, recode.Range{}, rules[0].Match)
	assert.IsType(t, recode.MissingValue{}, rules[2].Match)
	assert.IsType(t, recode.Drop{}, policy)
	assert.Equal(t, []string{"Adult", "Minor"}, opts.LevelOrder)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("testdata/does-not-exist.yaml")
	require.Error(t, err)

	var pe *PlanError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ErrCodeNotFound, pe.Code)
}
