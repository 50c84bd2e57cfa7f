package serial

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jairik/Parallel-Query-Processing-System/engine"
	"github.com/Jairik/Parallel-Query-Processing-System/store"
)

func newTestEngine(t *testing.T) *engine.Engine {
	t.Helper()
	path := filepath.Join(t.TempDir(), "commands.csv")
	st, err := store.Open(path, "commands", nil, 4, slog.New(slog.NewTextHandler(os.Stderr, nil)))
	require.NoError(t, err)
	return engine.New(st, false, slog.New(slog.NewTextHandler(os.Stderr, nil)))
}

func TestRunExecutesInsertThenSelect(t *testing.T) {
	eng := newTestEngine(t)
	text := `INSERT INTO commands VALUES (1, "rm -rf /tmp", rm, bash, 0, "2026-01-01T00:00:00Z", false, "/tmp", 1000, alice, box1, 3);
SELECT * FROM commands WHERE command_id = 1;`

	var out bytes.Buffer
	err := Run(eng, text, &out, slog.New(slog.NewTextHandler(os.Stderr, nil)))
	require.NoError(t, err)
	assert.Contains(t, out.String(), "inserted")
	assert.Contains(t, out.String(), "(1 rows")
}

func TestRunSkipsUnparsableStatementAndContinues(t *testing.T) {
	eng := newTestEngine(t)
	text := "FROBNICATE commands; SELECT * FROM commands;"

	var out bytes.Buffer
	err := Run(eng, text, &out, nil)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "[1]")
}

func TestRunSkipsTableMismatchAndContinues(t *testing.T) {
	eng := newTestEngine(t)
	text := "SELECT * FROM other_table; SELECT * FROM commands;"

	var out bytes.Buffer
	err := Run(eng, text, &out, nil)
	require.NoError(t, err)
	assert.NotContains(t, out.String(), "[0]")
	assert.Contains(t, out.String(), "[1]")
}

func TestRunEmptyQueryTextProducesNoOutput(t *testing.T) {
	eng := newTestEngine(t)
	var out bytes.Buffer
	err := Run(eng, "   ", &out, nil)
	require.NoError(t, err)
	assert.Empty(t, out.String())
}
