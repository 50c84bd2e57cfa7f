// Package driver holds the statement-dispatch and result-formatting
// logic shared by every concurrency driver (driver/serial, driver/shared,
// driver/distributed). Grounded on the teacher's own driver package
// (driver/database.go): a thin per-backend dispatch switch plus
// fmt.Printf-based result output, generalized here from DDL-dump/run to
// SELECT/INSERT/DELETE/DESCRIBE dispatch over one engine.Engine.
package driver

import (
	"fmt"
	"strings"

	"github.com/Jairik/Parallel-Query-Processing-System/engine"
	"github.com/Jairik/Parallel-Query-Processing-System/query"
)

// Mutates reports whether cmd changes store state, per spec.md §5's
// distinction between read and write statements (drivers serialize
// writes; reads may run unordered).
func Mutates(cmd query.Command) bool {
	return cmd == query.CommandInsert || cmd == query.CommandDelete || cmd == query.CommandCreateIndex
}

// Dispatch executes one already-parsed statement against eng and
// returns its ResultSet. INSERT is reported as a one-row ResultSet
// ("inserted": true/false) so every command shares a uniform return
// shape for the ordered-emit drivers.
func Dispatch(eng *engine.Engine, q *query.ParsedQuery) (engine.ResultSet, error) {
	switch q.Command {
	case query.CommandSelect:
		return eng.Select(q)
	case query.CommandDelete:
		return eng.Delete(q)
	case query.CommandDescribe:
		return eng.Describe(q)
	case query.CommandInsert:
		ok, err := eng.Insert(q)
		rs := engine.ResultSet{Columns: []string{"inserted"}, Rows: [][]string{{fmt.Sprintf("%t", ok)}}, NumRecords: 1, Success: ok}
		return rs, err
	default:
		return engine.ResultSet{}, fmt.Errorf("driver: unsupported command %q", q.RawText)
	}
}

// FormatResultSet renders rs as a simple whitespace-aligned table for
// CLI output, matching the teacher's plain fmt.Printf-based reporting
// rather than pulling in a table-rendering dependency not present in
// the example corpus.
func FormatResultSet(rs engine.ResultSet) string {
	var b strings.Builder
	if len(rs.Columns) > 0 {
		fmt.Fprintln(&b, strings.Join(rs.Columns, "\t"))
	}
	for _, row := range rs.Rows {
		fmt.Fprintln(&b, strings.Join(row, "\t"))
	}
	fmt.Fprintf(&b, "(%d rows, %s)\n", rs.NumRecords, rs.Elapsed)
	return b.String()
}
