package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestVersion(t *testing.T) {
	assert.Equal(t, "dev\n", execute(t, "version"))
}

func TestRunAndInspect(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "profile.json"), []byte(`[[4, 8]]`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "3NodeData.json"), []byte(`[
		{"bus": 10, "weightdict": [{"Load": 1}]},
		{"bus": 11, "weightdict": [{"Load": 3}]},
		{"bus": 12, "weightdict": [{"Wind": 3}]}
	]`), 0o644))
	cfgFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte(`run:
  days: 1
  hours: 2
profile:
  type: json
  conf:
    path: `+filepath.Join(dir, "profile.json")+`
catalog:
  type: json
  conf:
    path: `+filepath.Join(dir, "{nodes}NodeData.json")+`
logging:
  level: error
`), 0o644))

	outPath := filepath.Join(dir, "result{nodes}.json")
	out := execute(t, "--config", cfgFile, "run", "--nodes", "3", "--out", outPath)
	assert.Contains(t, out, "2 entries from 3 nodes")

	data, err := os.ReadFile(filepath.Join(dir, "result3.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `[{"10": [[1, 2]]}, {"11": [[3, 6]]}]`, string(data))

	out = execute(t, "--config", cfgFile, "inspect", "--nodes", "3")
	assert.Contains(t, out, "total weight: 4.0000")
	assert.Contains(t, out, "0.750000")
	assert.Contains(t, out, "12")
}
