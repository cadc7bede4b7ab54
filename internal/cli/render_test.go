package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rocketship-ai/loadplan/internal/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderCmd(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "check.js", `SampleResult.success = true;`)
	plan := writeFile(t, dir, "plan.yaml", `
version: "v1"
name: "Rendered"
elements:
  - kind: "sampler"
    file: "check.js"
  - kind: "delay"
    duration: "1500ms"
`)

	out, err := execute(t, "render", plan)
	require.NoError(t, err)

	parsed, err := dsl.ParseYAML([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, 1, parsed.Threads)
	require.Len(t, parsed.Elements, 2)
	assert.Equal(t, "Script Sampler", parsed.Elements[0].Name())

	el, err := parsed.Elements[1].Materialize(nil)
	require.NoError(t, err)
	assert.Equal(t, "1.5s", el.Duration)

	target := filepath.Join(dir, "out.yaml")
	_, err = execute(t, "render", plan, "-o", target)
	require.NoError(t, err)
	written, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(written), "SampleResult.success = true;")
}
