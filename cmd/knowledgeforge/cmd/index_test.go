package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexCmd_HasFlags(t *testing.T) {
	// Given: root command
	cmd := NewRootCmd()

	// When: finding the index command
	indexCmd, _, err := cmd.Find([]string{"index"})
	require.NoError(t, err)

	// Then: the expected flags exist
	for _, name := range []string{"type", "category", "tag", "rebuild", "only"} {
		assert.NotNil(t, indexCmd.Flags().Lookup(name), "expected --%s flag", name)
	}
}

func TestRunIndex_NoPathsErrors(t *testing.T) {
	// Given: no paths
	err := runIndex(&cobra.Command{}, nil, "", "", nil)

	// Then: it errors instead of indexing nothing
	assert.Error(t, err)
}

func TestLoadEntry_InfersTypeFromExtension(t *testing.T) {
	// Given: a .go file on disk
	dir := t.TempDir()
	path := filepath.Join(dir, "example.go")
	require.NoError(t, os.WriteFile(path, []byte("package main"), 0o644))

	// When: loading it with no explicit type
	entry, err := loadEntry(path, "", "", nil)

	// Then: the type is inferred as code
	require.NoError(t, err)
	assert.Equal(t, "code", string(entry.Type))
	assert.Equal(t, "go", entry.Language)
	assert.Equal(t, "package main", entry.Content)
}

func TestLoadEntry_ExplicitTypeOverridesExtension(t *testing.T) {
	// Given: a .go file and an explicit override
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.go")
	require.NoError(t, os.WriteFile(path, []byte("notes"), 0o644))

	// When: loading with --type gotcha
	entry, err := loadEntry(path, "gotcha", "build", []string{"ci"})

	// Then: the override wins and category/tags are carried through
	require.NoError(t, err)
	assert.Equal(t, "gotcha", string(entry.Type))
	assert.Equal(t, "build", entry.Category)
	assert.Equal(t, []string{"ci"}, entry.Tags)
}

func TestRunIndex_IndexesFileIntoEngine(t *testing.T) {
	withTempDatabase(t)
	configDir = t.TempDir()

	dir := t.TempDir()
	path := filepath.Join(dir, "gotcha.md")
	require.NoError(t, os.WriteFile(path, []byte("nil pointer in retry loop"), 0o644))

	out := &bytes.Buffer{}
	cmd := NewRootCmd()
	cmd.SetOut(out)
	cmd.SetArgs([]string{"index", path})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "indexed 1 entries")
}
