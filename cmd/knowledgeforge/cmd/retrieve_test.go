package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetrieveCmd_HasFlags(t *testing.T) {
	// Given: root command
	cmd := NewRootCmd()

	// When: finding the retrieve command
	retrieveCmd, _, err := cmd.Find([]string{"retrieve"})
	require.NoError(t, err)

	// Then: the expected flags exist
	for _, name := range []string{"limit", "mode", "json"} {
		assert.NotNil(t, retrieveCmd.Flags().Lookup(name), "expected --%s flag", name)
	}
}

func TestRunRetrieve_ReportsStrategyUsed(t *testing.T) {
	withTempDatabase(t)
	configDir = t.TempDir()

	dir := t.TempDir()
	path := filepath.Join(dir, "gotcha.md")
	require.NoError(t, os.WriteFile(path, []byte("nil pointer dereferenced in the retry loop"), 0o644))

	out := &bytes.Buffer{}
	cmd := NewRootCmd()
	cmd.SetOut(out)
	cmd.SetArgs([]string{"index", path})
	require.NoError(t, cmd.Execute())

	out.Reset()
	cmd = NewRootCmd()
	cmd.SetOut(out)
	cmd.SetArgs([]string{"retrieve", "nil pointer retry"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "query id:")
	assert.Contains(t, out.String(), "strategy:")
}
