package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true

	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

const passingPlan = `
version: "v1"
name: "Smoke"
threads: 2
properties:
  expected: "pong"
elements:
  - kind: "preprocessor"
    script: |
      vars.put("answer", props.get("expected"));
  - kind: "sampler"
    name: "Ping"
    script: |
      SampleResult.success = vars.get("answer") === "pong";
  - kind: "delay"
    duration: "1ms"
`

func TestNewRunCmd(t *testing.T) {
	cmd := NewRunCmd()

	assert.Equal(t, "run [plan-file]", cmd.Use)
	assert.Equal(t, "Run a load plan", cmd.Short)
	assert.Contains(t, cmd.Long, "The plan file should be a YAML file containing the plan definition")

	err := cmd.Args(cmd, []string{})
	assert.Error(t, err, "should require exactly one argument")

	err = cmd.Args(cmd, []string{"plan1", "plan2"})
	assert.Error(t, err, "should not accept more than one argument")

	err = cmd.Args(cmd, []string{"plan.yaml"})
	assert.NoError(t, err, "should accept exactly one argument")

	for _, flag := range []string{"props", "mode", "threads", "iterations", "timeout"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), flag)
	}
}

func TestRunCmd_Passing(t *testing.T) {
	dir := t.TempDir()
	plan := writeFile(t, dir, "plan.yaml", passingPlan)

	out, err := execute(t, "run", plan, "--iterations", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "=== Summary: Smoke (embedded) ===")
	assert.Contains(t, out, "Total Samples: 6")
	assert.Contains(t, out, "Failed Samples: 0")
}

func TestRunCmd_PropsFile(t *testing.T) {
	dir := t.TempDir()
	propsFile := writeFile(t, dir, "props.yaml", "target:\n  code: \"204\"\n")
	plan := writeFile(t, dir, "plan.yaml", `
version: "v1"
name: "Props"
elements:
  - kind: "sampler"
    name: "Code"
    script: |
      SampleResult.success = props.get("target.code") === "204";
`)

	out, err := execute(t, "run", plan, "--props", propsFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Passed Samples: 1")
}

func TestRunCmd_Failures(t *testing.T) {
	dir := t.TempDir()
	plan := writeFile(t, dir, "plan.yaml", `
version: "v1"
name: "Broken"
elements:
  - kind: "sampler"
    name: "Throws"
    script: |
      throw new Error("backend down");
`)

	out, err := execute(t, "run", plan)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 failed sample(s) of 1")
	assert.Contains(t, out, "Element errors: 1")
	assert.Contains(t, out, "backend down")
}

func TestRunCmd_InvalidInput(t *testing.T) {
	dir := t.TempDir()
	plan := writeFile(t, dir, "plan.yaml", passingPlan)

	_, err := execute(t, "run", plan, "--mode", "gui")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown execution mode")

	_, err = execute(t, "run", filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
