package distributed

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jairik/Parallel-Query-Processing-System/store"
)

func newTestPeers(t *testing.T, numPeers int) []*Peer {
	t.Helper()
	path := filepath.Join(t.TempDir(), "commands.csv")
	specs := []store.IndexSpec{{Attribute: "command_id", FieldType: 0}}
	peers, err := NewPeers(path, "commands", specs, 4, numPeers, false, slog.New(slog.NewTextHandler(os.Stderr, nil)))
	require.NoError(t, err)
	return peers
}

func TestNewPeersDefaultsToOnePeerMinimum(t *testing.T) {
	path := filepath.Join(t.TempDir(), "commands.csv")
	peers, err := NewPeers(path, "commands", nil, 4, 0, false, nil)
	require.NoError(t, err)
	assert.Len(t, peers, 1)
}

func TestRunBroadcastsInsertToAllPeers(t *testing.T) {
	peers := newTestPeers(t, 3)
	text := `INSERT INTO commands VALUES (1, "ls", ls, bash, 0, "2026-01-01T00:00:00Z", false, "/tmp", 1, alice, box1, 1);`

	var out bytes.Buffer
	err := Run(peers, text, &out, slog.New(slog.NewTextHandler(os.Stderr, nil)))
	require.NoError(t, err)

	for _, p := range peers {
		assert.Len(t, p.Store.Rows(), 1, "peer %d should have replicated the insert", p.ID)
	}
}

func TestRunOnlyWriterPeerPersistsToDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "commands.csv")
	specs := []store.IndexSpec{{Attribute: "command_id", FieldType: 0}}
	peers, err := NewPeers(path, "commands", specs, 4, 2, false, nil)
	require.NoError(t, err)

	text := `INSERT INTO commands VALUES (1, "ls", ls, bash, 0, "2026-01-01T00:00:00Z", false, "/tmp", 1, alice, box1, 1);`
	var out bytes.Buffer
	require.NoError(t, Run(peers, text, &out, nil))

	reopened, err := store.Open(path, "commands", nil, 4, nil)
	require.NoError(t, err)
	assert.Len(t, reopened.Rows(), 1)
}

func TestRunPartitionsReadsAndPreservesOrder(t *testing.T) {
	peers := newTestPeers(t, 2)
	text := `INSERT INTO commands VALUES (1, "ls", ls, bash, 0, "2026-01-01T00:00:00Z", false, "/tmp", 1, alice, box1, 1);
INSERT INTO commands VALUES (2, "pwd", pwd, bash, 0, "2026-01-01T00:00:00Z", false, "/tmp", 1, alice, box1, 1);
SELECT * FROM commands WHERE command_id = 1;
SELECT * FROM commands WHERE command_id = 2;`

	var out bytes.Buffer
	err := Run(peers, text, &out, nil)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "[0]")
	assert.Contains(t, out.String(), "[3]")
}

func TestRunDeleteMirrorsAcrossPeers(t *testing.T) {
	peers := newTestPeers(t, 2)
	text := `INSERT INTO commands VALUES (1, "ls", ls, bash, 0, "2026-01-01T00:00:00Z", false, "/tmp", 1, alice, box1, 1);
DELETE FROM commands WHERE command_id = 1;`

	var out bytes.Buffer
	require.NoError(t, Run(peers, text, &out, nil))

	for _, p := range peers {
		assert.Empty(t, p.Store.Rows(), "peer %d should have mirrored the delete", p.ID)
	}
}

func TestRunEmptyQueryTextIsNoop(t *testing.T) {
	peers := newTestPeers(t, 1)
	var out bytes.Buffer
	err := Run(peers, "", &out, nil)
	require.NoError(t, err)
	assert.Empty(t, out.String())
}
