package shared

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
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

func TestRunPreservesSubmissionOrderAcrossWorkers(t *testing.T) {
	eng := newTestEngine(t)
	text := `INSERT INTO commands VALUES (1, "ls", ls, bash, 0, "2026-01-01T00:00:00Z", false, "/tmp", 1, alice, box1, 1);
INSERT INTO commands VALUES (2, "pwd", pwd, bash, 0, "2026-01-01T00:00:00Z", false, "/tmp", 1, alice, box1, 1);
SELECT * FROM commands WHERE command_id = 1;
SELECT * FROM commands WHERE command_id = 2;`

	var out bytes.Buffer
	err := Run(eng, text, 4, &out, nil)
	require.NoError(t, err)

	text0 := out.String()
	idx0 := strings.Index(text0, "[0]")
	idx1 := strings.Index(text0, "[1]")
	idx2 := strings.Index(text0, "[2]")
	idx3 := strings.Index(text0, "[3]")
	assert.True(t, idx0 < idx1 && idx1 < idx2 && idx2 < idx3)
}

func TestRunSingleWorkerBehavesLikeSerial(t *testing.T) {
	eng := newTestEngine(t)
	text := `INSERT INTO commands VALUES (1, "ls", ls, bash, 0, "2026-01-01T00:00:00Z", false, "/tmp", 1, alice, box1, 1);
SELECT * FROM commands;`

	var out bytes.Buffer
	err := Run(eng, text, 1, &out, nil)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "(1 rows")
}

func TestRunEmptyQueryTextIsNoop(t *testing.T) {
	eng := newTestEngine(t)
	var out bytes.Buffer
	err := Run(eng, "", 2, &out, nil)
	require.NoError(t, err)
	assert.Empty(t, out.String())
}
