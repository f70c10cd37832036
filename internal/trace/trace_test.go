package trace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cshekharsharma/textcrdt"
)

func writeScenario(t *testing.T, yamlBody string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlBody), 0o644))
	return path
}

func TestLoadAndReplay(t *testing.T) {
	path := writeScenario(t, `
final_text: "heXllo"
ops:
  - insert: {index: 0, text: "hello"}
  - insert: {index: 2, text: "X"}
`)

	scenario, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "heXllo", scenario.FinalText)
	require.Len(t, scenario.Ops, 2)

	net := textcrdt.NewNetwork()
	r := textcrdt.NewReplica(net.Attach("replay"))
	require.NoError(t, scenario.Replay(r))
}

func TestReplayMismatchReturnsError(t *testing.T) {
	path := writeScenario(t, `
final_text: "nope"
ops:
  - insert: {index: 0, text: "hello"}
`)
	scenario, err := Load(path)
	require.NoError(t, err)

	net := textcrdt.NewNetwork()
	r := textcrdt.NewReplica(net.Attach("replay"))
	err = scenario.Replay(r)
	require.Error(t, err)
}

func TestReplayWithDeletes(t *testing.T) {
	path := writeScenario(t, `
final_text: "hllo"
ops:
  - insert: {index: 0, text: "hello"}
  - delete: {index: 1, count: 1}
`)
	scenario, err := Load(path)
	require.NoError(t, err)

	net := textcrdt.NewNetwork()
	r := textcrdt.NewReplica(net.Attach("replay"))
	require.NoError(t, scenario.Replay(r))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.Error(t, err)
}
