package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append(args, "--log-level", "disabled"))
	err := cmd.Execute()
	return out.String(), err
}

func TestList(t *testing.T) {
	out, err := execute(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "s5-moisture-transfer")
	assert.Contains(t, out, "[filtration mass moisture]")
}

func TestParams(t *testing.T) {
	out, err := execute(t, "params", "diffusion")
	require.NoError(t, err)
	var params map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(out), &params))
	assert.Equal(t, 0.68, params["boundary"])
	assert.Equal(t, 3, params["times"])
}

func TestRun_Diffusion(t *testing.T) {
	out, err := execute(t, "run", "diffusion")
	require.NoError(t, err)

	var d runDump
	require.NoError(t, yaml.Unmarshal([]byte(out), &d))
	assert.Equal(t, "diffusion", d.Model)
	assert.Equal(t, 4, d.Presentation.Precision)
	require.Len(t, d.Series, 1)
	s := d.Series[0]
	assert.Equal(t, "moisture", s.Name)
	require.Len(t, s.Layers, 4)
	assert.Equal(t, []float64{0.68, 0.02, 0.02, 0.02, 0.02, 0.68}, s.Layers[0])
	assert.InDeltaSlice(t, []float64{0, 0.1, 0.2, 0.3, 0.4, 0.5}, s.X, 1e-12)
	assert.Empty(t, s.Y)
	assert.Empty(t, s.Layers2D)
}

func TestRun_Config(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diffusion.yaml")
	require.NoError(t, os.WriteFile(path, []byte("times: 1\n"), 0o644))

	out, err := execute(t, "run", "diffusion", "--config", path)
	require.NoError(t, err)
	var d runDump
	require.NoError(t, yaml.Unmarshal([]byte(out), &d))
	require.Len(t, d.Series, 1)
	assert.Len(t, d.Series[0].Layers, 2)
}

func TestRun_Output2D(t *testing.T) {
	out, err := execute(t, "run", "s5-2d-mass-heat-transfer", "--output", "mass", "--precision", "2")
	require.NoError(t, err)
	var d runDump
	require.NoError(t, yaml.Unmarshal([]byte(out), &d))
	require.Len(t, d.Series, 1)
	s := d.Series[0]
	assert.Equal(t, "mass", s.Name)
	require.Len(t, s.Layers2D, 5)
	assert.Len(t, s.X, 11)
	require.Len(t, s.Y, 6)
	assert.Equal(t, 0.0, s.Y[0])
	for _, layer := range s.Layers2D {
		require.Len(t, layer, 6)
		assert.Len(t, layer[0], 11)
	}
	assert.True(t, d.Presentation.Is3D)
}

func TestRun_Errors(t *testing.T) {
	_, err := execute(t, "run", "no-such-model")
	assert.Error(t, err)

	_, err = execute(t, "run", "diffusion", "--output", "heat")
	assert.Error(t, err)

	_, err = execute(t, "run", "diffusion", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
