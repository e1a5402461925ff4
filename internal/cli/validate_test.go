package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_ValidScenario(t *testing.T) {
	path := writeScenario(t, validScenario)

	out, err := execute(t, "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "scenario valid")
}

func TestValidate_ValidScenarioJSON(t *testing.T) {
	path := writeScenario(t, validScenario)

	out, err := execute(t, "--format", "json", "validate", path)
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Valid bool `json:"valid"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
}

func TestValidate_InvalidScenario(t *testing.T) {
	path := writeScenario(t, "name: broken\n")

	out, err := execute(t, "validate", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "validation failed")
	assert.Contains(t, out, "description is required")
}

func TestValidate_FailFastStopsAtFirstError(t *testing.T) {
	path := writeScenario(t, "steps:\n  - name: idle\n")

	out, err := execute(t, "validate", path)
	require.Error(t, err)
	assert.Contains(t, out, "name is required")
	assert.NotContains(t, out, "exactly one of", "fail-fast reports only the first problem")
}

func TestValidate_AllErrorsCollects(t *testing.T) {
	path := writeScenario(t, "steps:\n  - name: idle\n")

	out, err := execute(t, "validate", "--all-errors", path)
	require.Error(t, err)
	assert.Contains(t, out, "name is required")
	assert.Contains(t, out, "description is required")
	assert.Contains(t, out, "exactly one of transact, undo, redo")
}

func TestValidate_MalformedYAML(t *testing.T) {
	path := writeScenario(t, "name: [unclosed\n")

	_, err := execute(t, "validate", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestValidate_MissingFile(t *testing.T) {
	_, err := execute(t, "validate", "no-such-file.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
