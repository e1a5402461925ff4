package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_TextOutput(t *testing.T) {
	path := writeScenario(t, validScenario)

	out, err := execute(t, "run", path)
	require.NoError(t, err)
	assert.Contains(t, out, "scenario cli-smoke: 1 event(s)")
	assert.Contains(t, out, "fill: items <- items (list, 1 change(s))")
}

func TestRun_JSONOutput(t *testing.T) {
	path := writeScenario(t, validScenario)

	out, err := execute(t, "--format", "json", "run", path)
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Scenario string `json:"scenario"`
			Trace    []struct {
				Step     string `json:"step"`
				Receiver string `json:"receiver"`
			} `json:"trace"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "cli-smoke", resp.Data.Scenario)
	require.Len(t, resp.Data.Trace, 1)
	assert.Equal(t, "fill", resp.Data.Trace[0].Step)
	assert.Equal(t, "items", resp.Data.Trace[0].Receiver)
}

func TestRun_MissingFile(t *testing.T) {
	_, err := execute(t, "run", "no-such-file.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRun_BadScenarioFailsWithCommandError(t *testing.T) {
	path := writeScenario(t, "name: broken\n")

	_, err := execute(t, "run", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRun_ScenarioExecutionError(t *testing.T) {
	path := writeScenario(t, `name: ghost
description: References an unbound alias.
steps:
  - transact:
      - op: push
        target: ghost
        values: [1]
`)

	out, err := execute(t, "run", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "unknown alias")
}
