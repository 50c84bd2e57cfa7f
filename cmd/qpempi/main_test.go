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
	require.NoError(t, os.WriteFile(path, []byte("DESCRIBE commands;"), 0o644))

	text, err := readQueryFile(path)
	require.NoError(t, err)
	assert.Equal(t, "DESCRIBE commands;", text)
}

func TestResolveIndexSpecsMergesConfigAndFlags(t *testing.T) {
	specs, err := resolveIndexSpecs("", []string{"host_name:string"})
	require.NoError(t, err)
	require.Len(t, specs, 1)
	assert.Equal(t, "host_name", specs[0].Attribute)
}
