package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadQueryFileReadsNamedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queries.sql")
	require.NoError(t, os.WriteFile(path, []byte("SELECT * FROM commands;"), 0o644))

	text, err := readQueryFile(path)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM commands;", text)
}

func TestReadQueryFileMissingFileErrors(t *testing.T) {
	_, err := readQueryFile(filepath.Join(t.TempDir(), "missing.sql"))
	assert.Error(t, err)
}

func TestResolveIndexSpecsMergesConfigAndFlags(t *testing.T) {
	specs, err := resolveIndexSpecs("", []string{"command_id:uint64", "risk_level:int"})
	require.NoError(t, err)
	require.Len(t, specs, 2)
	assert.Equal(t, "command_id", specs[0].Attribute)
	assert.Equal(t, "risk_level", specs[1].Attribute)
}

func TestResolveIndexSpecsRejectsBadFlag(t *testing.T) {
	_, err := resolveIndexSpecs("", []string{"bogus"})
	assert.Error(t, err)
}
