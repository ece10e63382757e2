package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validatePlan = `name: survey
variables:
  - name: gender
    rules:
      - label: Female
        equals: F
      - label: Male
        equals: M
  - name: handedness
    rules:
      - label: Right-handed
        equals: R
      - label: Left-handed
        equals: L
table:
  row: gender
  col: handedness
`

func writePlanFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestValidateValidPlan(t *testing.T) {
	path := writePlanFile(t, validatePlan)

	out, _, err := execute(t, "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "valid")
}

func TestValidateValidPlanJSON(t *testing.T) {
	path := writePlanFile(t, validatePlan)

	out, _, err := execute(t, "--format", "json", "validate", path)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestValidateMissingFile(t *testing.T) {
	_, _, err := execute(t, "validate", filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestValidateUndeclaredTableVariable(t *testing.T) {
	path := writePlanFile(t, `name: bad
variables:
  - name: gender
    rules:
      - label: Female
        equals: F
table:
  row: gender
  col: handedness
`)

	out, _, err := execute(t, "validate", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "E102")
}

func TestValidateUnknownField(t *testing.T) {
	path := writePlanFile(t, `name: typo
variable:
  - name: gender
table:
  row: gender
  col: gender
`)

	out, _, err := execute(t, "validate", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "E003")
}

func TestValidateJSONErrorPayload(t *testing.T) {
	path := writePlanFile(t, `name: bad
variables:
  - name: gender
    rules:
      - label: Female
        equals: F
        missing: true
table:
  row: gender
  col: gender
`)

	out, _, err := execute(t, "--format", "json", "validate", path)
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E101", resp.Error.Code)
}
