package engine

import (
	"path/filepath"
	"strconv"
	"testing"

	"github.com/Jairik/Parallel-Query-Processing-System/predicate"
	"github.com/Jairik/Parallel-Query-Processing-System/query"
	"github.com/Jairik/Parallel-Query-Processing-System/schema"
	"github.com/Jairik/Parallel-Query-Processing-System/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, specs []store.IndexSpec) *Engine {
	t.Helper()
	path := filepath.Join(t.TempDir(), "commands.csv")
	st, err := store.Open(path, "commands", specs, 4, nil)
	require.NoError(t, err)
	return New(st, false, nil)
}

func insertRow(t *testing.T, e *Engine, id uint64, userID, risk int32, sudo bool) {
	t.Helper()
	values := []string{
		"", "rm -rf /tmp", "rm", "bash", "0", "2026-01-01T00:00:00Z",
		boolStr(sudo), "/tmp", "", "alice", "box1", "",
	}
	values[0] = strconv.FormatUint(id, 10)
	values[8] = strconv.FormatInt(int64(userID), 10)
	values[11] = strconv.FormatInt(int64(risk), 10)
	q := &query.ParsedQuery{Command: query.CommandInsert, Table: "commands", Values: values}
	ok, err := e.Insert(q)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestSelectWildcardReturnsAllColumns(t *testing.T) {
	e := newTestEngine(t, nil)
	insertRow(t, e, 1, 1000, 1, false)

	rs, err := e.Select(&query.ParsedQuery{Command: query.CommandSelect, Table: "commands"})
	require.NoError(t, err)
	assert.True(t, rs.Success)
	assert.Equal(t, schema.Columns(), rs.Columns)
	assert.Equal(t, 1, rs.NumRecords)
}

func TestSelectEmptyStoreReturnsEmptySuccess(t *testing.T) {
	e := newTestEngine(t, nil)
	rs, err := e.Select(&query.ParsedQuery{Command: query.CommandSelect, Table: "commands"})
	require.NoError(t, err)
	assert.True(t, rs.Success)
	assert.Equal(t, 0, rs.NumRecords)
}

func TestSelectDuplicateKeyPointLookup(t *testing.T) {
	e := newTestEngine(t, []store.IndexSpec{{Attribute: "risk_level", FieldType: schema.FieldInt}})
	insertRow(t, e, 1, 1, 1, false)
	insertRow(t, e, 2, 1, 1, false)
	insertRow(t, e, 3, 1, 2, false)
	insertRow(t, e, 4, 1, 1, false)

	where := predicate.Leaf(predicate.Compile("risk_level", predicate.OpEq, "1"))
	rs, err := e.Select(&query.ParsedQuery{Command: query.CommandSelect, Table: "commands", Where: where})
	require.NoError(t, err)
	assert.Equal(t, 3, rs.NumRecords)
}

func TestSelectNestedGroupMatchesScenario(t *testing.T) {
	e := newTestEngine(t, []store.IndexSpec{{Attribute: "user_id", FieldType: schema.FieldInt}})
	insertRow(t, e, 1, 1, 5, false)
	insertRow(t, e, 2, 2, 2, false)
	insertRow(t, e, 3, 3, 5, false)
	insertRow(t, e, 4, 1, 1, false)

	inner := predicate.Chain(
		[]*predicate.Node{
			predicate.Leaf(predicate.Compile("user_id", predicate.OpEq, "1")),
			predicate.Leaf(predicate.Compile("user_id", predicate.OpEq, "2")),
		},
		[]predicate.LogicOp{predicate.LogicOr},
	)
	where := predicate.Chain(
		[]*predicate.Node{
			predicate.Group(inner),
			predicate.Leaf(predicate.Compile("risk_level", predicate.OpGt, "3")),
		},
		[]predicate.LogicOp{predicate.LogicAnd},
	)
	rs, err := e.Select(&query.ParsedQuery{Command: query.CommandSelect, Table: "commands", Where: where})
	require.NoError(t, err)
	require.Equal(t, 1, rs.NumRecords)
}

func TestSelectRangeOnIndexedU64(t *testing.T) {
	e := newTestEngine(t, []store.IndexSpec{{Attribute: "command_id", FieldType: schema.FieldUint64}})
	for _, id := range []uint64{5, 15, 25, 35, 45} {
		insertRow(t, e, id, 1, 1, false)
	}
	where := predicate.Chain(
		[]*predicate.Node{
			predicate.Leaf(predicate.Compile("command_id", predicate.OpGte, "10")),
			predicate.Leaf(predicate.Compile("command_id", predicate.OpLte, "30")),
		},
		[]predicate.LogicOp{predicate.LogicAnd},
	)
	rs, err := e.Select(&query.ParsedQuery{Command: query.CommandSelect, Table: "commands", Where: where})
	require.NoError(t, err)
	require.Equal(t, 2, rs.NumRecords)
}

func TestPredicateShortCircuitOverUnknownAttribute(t *testing.T) {
	e := newTestEngine(t, nil)
	insertRow(t, e, 1, 1, 1, false)

	where := predicate.Chain(
		[]*predicate.Node{
			predicate.Leaf(predicate.Compile("user_id", predicate.OpEq, "1")),
			predicate.Leaf(predicate.Compile("unknown_attr", predicate.OpEq, "5")),
		},
		[]predicate.LogicOp{predicate.LogicOr},
	)
	rs, err := e.Select(&query.ParsedQuery{Command: query.CommandSelect, Table: "commands", Where: where})
	require.NoError(t, err)
	assert.Equal(t, 1, rs.NumRecords)
}

func TestDeleteThenReselectMatchesScenario(t *testing.T) {
	e := newTestEngine(t, []store.IndexSpec{{Attribute: "command_id", FieldType: schema.FieldUint64}})
	for _, id := range []uint64{1, 2, 3, 4} {
		insertRow(t, e, id, 1, 1, false)
	}
	where := predicate.Leaf(predicate.Compile("command_id", predicate.OpEq, "2"))
	rs, err := e.Delete(&query.ParsedQuery{Command: query.CommandDelete, Table: "commands", Where: where})
	require.NoError(t, err)
	assert.True(t, rs.Success)
	assert.Equal(t, 1, rs.NumRecords)

	all, err := e.Select(&query.ParsedQuery{Command: query.CommandSelect, Table: "commands"})
	require.NoError(t, err)
	assert.Equal(t, 3, all.NumRecords)
	for _, row := range all.Rows {
		assert.NotEqual(t, "2", row[0])
	}
}

func TestDeleteEmptyStoreReportsZero(t *testing.T) {
	e := newTestEngine(t, nil)
	rs, err := e.Delete(&query.ParsedQuery{Command: query.CommandDelete, Table: "commands"})
	require.NoError(t, err)
	assert.True(t, rs.Success)
	assert.Equal(t, 0, rs.NumRecords)
}

func TestInsertFillsIndexScenario(t *testing.T) {
	e := newTestEngine(t, []store.IndexSpec{{Attribute: "command_id", FieldType: schema.FieldUint64}})
	insertRow(t, e, 42, 1, 1, false)

	ix, ok := e.Store.IndexByAttribute("command_id")
	require.True(t, ok)
	assert.Equal(t, 1, ix.Len())
}

func TestOrderByDescSortsResults(t *testing.T) {
	e := newTestEngine(t, nil)
	insertRow(t, e, 1, 1, 5, false)
	insertRow(t, e, 2, 1, 1, false)
	insertRow(t, e, 3, 1, 9, false)

	q := &query.ParsedQuery{
		Command: query.CommandSelect,
		Table:   "commands",
		Columns: []string{"risk_level"},
		Order:   []query.OrderTerm{{Field: "risk_level", Direction: query.Descending}},
	}
	rs, err := e.Select(q)
	require.NoError(t, err)
	require.Len(t, rs.Rows, 3)
	assert.Equal(t, []string{"9", "5", "1"}, []string{rs.Rows[0][0], rs.Rows[1][0], rs.Rows[2][0]})
}

func TestTableMismatchErrors(t *testing.T) {
	e := newTestEngine(t, nil)
	_, err := e.Select(&query.ParsedQuery{Command: query.CommandSelect, Table: "other_table"})
	assert.Error(t, err)
}

func TestDescribeListsColumns(t *testing.T) {
	e := newTestEngine(t, nil)
	rs, err := e.Describe(&query.ParsedQuery{Command: query.CommandDescribe, Table: "commands"})
	require.NoError(t, err)
	assert.Equal(t, len(schema.Columns()), rs.NumRecords)
}

func boolStr(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
