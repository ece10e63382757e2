package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario: a dataset, a plan, and
// the expected output tables.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Data is the inline CSV dataset, header row included.
	Data string `yaml:"data"`

	// Plan is the tabulation plan, embedded verbatim. It goes through
	// the same strict decoding and schema validation as a plan file.
	Plan yaml.Node `yaml:"plan"`

	// Expect lists the expected tables and failed strata.
	Expect ExpectClause `yaml:"expect"`

	// RunToken is an optional fixed run token for deterministic output.
	// If empty, defaults to "test-run-default".
	RunToken string `yaml:"run_token,omitempty"`
}

// ExpectClause specifies the expected run outcome.
type ExpectClause struct {
	// Tables holds one entry per expected table, in stratum level order.
	// An unstratified run expects a single entry with an empty stratum.
	Tables []ExpectedTable `yaml:"tables"`

	// Failed lists strata expected to fail under the partial-result
	// contract.
	Failed []string `yaml:"failed,omitempty"`
}

// ExpectedTable is the expected content of one finished table.
// Label lists are optional; cells are always checked.
type ExpectedTable struct {
	Stratum   string     `yaml:"stratum,omitempty"`
	RowLabels []string   `yaml:"row_labels,omitempty"`
	ColLabels []string   `yaml:"col_labels,omitempty"`
	Cells     [][]string `yaml:"cells"`
}

// DefaultRunToken is the fixed token scenarios run under when they do
// not specify one.
const DefaultRunToken = "test-run-default"

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Data == "" {
		return fmt.Errorf("data is required")
	}
	if s.Plan.IsZero() {
		return fmt.Errorf("plan is required")
	}
	if len(s.Expect.Tables) == 0 && len(s.Expect.Failed) == 0 {
		return fmt.Errorf("expect must list tables or failed strata")
	}
	for i, table := range s.Expect.Tables {
		if len(table.Cells) == 0 {
			return fmt.Errorf("expect.tables[%d]: cells is required", i)
		}
	}
	return nil
}

// planBytes re-encodes the embedded plan node so it can go through the
// same strict parse and schema validation as a standalone plan file.
func (s *Scenario) planBytes() ([]byte, error) {
	return yaml.Marshal(&s.Plan)
}
