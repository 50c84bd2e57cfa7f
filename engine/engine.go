// Package engine implements the query planner/executor (spec.md C6 /
// §4.4): for SELECT and DELETE it picks an index-driven candidate set
// or falls back to a full scan, then applies the full predicate to each
// candidate; for INSERT it validates and appends via the store.
//
// Grounded on the teacher's adapter.Database / database.Database shape
// (an interface-plus-free-functions database handle bound to one
// connection) — here Engine plays the same role bound to one
// store.Store and one table name, matching spec.md §6's
// ParsedQuery.table check.
package engine

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/Jairik/Parallel-Query-Processing-System/key"
	"github.com/Jairik/Parallel-Query-Processing-System/predicate"
	"github.com/Jairik/Parallel-Query-Processing-System/query"
	"github.com/Jairik/Parallel-Query-Processing-System/schema"
	"github.com/Jairik/Parallel-Query-Processing-System/store"
	"github.com/k0kubun/pp/v3"
)

// Engine binds the core planner/executor to one store and table name.
type Engine struct {
	Store   *store.Store
	Verbose bool
	log     *slog.Logger
}

// New returns an Engine bound to st, executing only statements whose
// ParsedQuery.Table matches st.Table().
func New(st *store.Store, verbose bool, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{Store: st, Verbose: verbose, log: log}
}

func (e *Engine) checkTable(q *query.ParsedQuery) error {
	if q.Table != "" && q.Table != e.Store.Table() {
		return fmt.Errorf("%w: query names %q, store is bound to %q", store.ErrTableMismatch, q.Table, e.Store.Table())
	}
	return nil
}

// Select executes a SELECT statement: probe-leaf candidate selection,
// predicate filtering, projection, and optional ORDER BY (spec.md
// §4.4 steps 1-5, SPEC_FULL.md's ORDER BY supplement).
func (e *Engine) Select(q *query.ParsedQuery) (ResultSet, error) {
	start := time.Now()
	if err := e.checkTable(q); err != nil {
		return ResultSet{}, err
	}

	columns := q.Columns
	if q.IsWildcardProjection() {
		columns = schema.Columns()
	}

	candidates := e.candidateRows(q.Where)
	matched := make([]*schema.Row, 0, len(candidates))
	for _, row := range candidates {
		if q.Where.Eval(row) {
			matched = append(matched, row)
		}
	}

	applyOrderBy(matched, q.Order)

	rs := ResultSet{Columns: columns, Success: true}
	for _, t := range columns {
		if info, ok := schema.FieldByName(t); ok {
			rs.ColumnType = append(rs.ColumnType, info.Type.String())
		} else {
			rs.ColumnType = append(rs.ColumnType, "unknown")
		}
	}
	for _, row := range matched {
		cells := make([]string, len(columns))
		for i, col := range columns {
			text, ok := schema.CellText(row, col)
			if ok {
				cells[i] = text
			}
		}
		rs.Rows = append(rs.Rows, cells)
	}
	rs.NumRecords = len(rs.Rows)
	rs.Elapsed = time.Since(start)

	if e.Verbose {
		e.log.Debug("select executed", "candidates", len(candidates), "matched", rs.NumRecords)
		pp.Println(rs)
	}
	return rs, nil
}

// Insert validates and appends a row built from q.Values (spec.md §4.2,
// §6's insert_values). Reports false without error when the values
// cannot form a row (wrong arity or a malformed numeric or boolean
// field). Reports false with the store's error when the row fails
// schema.Row.Validate (e.g. a zero command_id), and when
// the durability append fails after the in-memory mutation already
// happened (spec.md §9's documented non-rollback limitation).
func (e *Engine) Insert(q *query.ParsedQuery) (bool, error) {
	if err := e.checkTable(q); err != nil {
		return false, err
	}
	row, err := rowFromValues(q.Values)
	if err != nil {
		e.log.Warn("insert rejected: bad arity or field value", "err", err)
		return false, nil
	}
	ok, err := e.Store.Insert(row)
	if err != nil {
		return ok, err
	}
	if e.Verbose {
		pp.Println(row)
	}
	return ok, nil
}

// Delete executes a DELETE statement: candidate selection and predicate
// filtering as in Select, then removes every surviving row via the
// store and reports the deleted count (spec.md §4.4 step 6).
func (e *Engine) Delete(q *query.ParsedQuery) (ResultSet, error) {
	start := time.Now()
	if err := e.checkTable(q); err != nil {
		return ResultSet{}, err
	}

	candidates := e.candidateRows(q.Where)
	var matched []*schema.Row
	for _, row := range candidates {
		if q.Where.Eval(row) {
			matched = append(matched, row)
		}
	}

	n, err := e.Store.DeleteMatching(matched)
	if err != nil {
		return ResultSet{NumRecords: n, Elapsed: time.Since(start), Success: false}, err
	}

	rs := ResultSet{NumRecords: n, Success: true, Elapsed: time.Since(start)}
	if e.Verbose {
		e.log.Debug("delete executed", "deleted", n)
	}
	return rs, nil
}

// Describe implements the supplemental DESCRIBE command (SPEC_FULL.md):
// it reports the bound table's column names and types, independent of
// any stored row.
func (e *Engine) Describe(q *query.ParsedQuery) (ResultSet, error) {
	if err := e.checkTable(q); err != nil {
		return ResultSet{}, err
	}
	rs := ResultSet{Columns: []string{"column", "type"}, Success: true}
	for _, name := range schema.Columns() {
		info, _ := schema.FieldByName(name)
		rs.Rows = append(rs.Rows, []string{name, info.Type.String()})
	}
	rs.NumRecords = len(rs.Rows)
	return rs, nil
}

// candidateRows implements spec.md §4.4 steps 1-3: find a probe leaf,
// compute its key range, and range-scan the bound index; otherwise
// return every row in the store.
func (e *Engine) candidateRows(where *predicate.Node) []*schema.Row {
	leaf, ix, ok := e.probeLeaf(where)
	if !ok {
		return e.Store.Rows()
	}

	op := leaf.Op
	compiled, _ := leaf.CompiledKey()
	kind := compiled.Kind()

	switch op {
	case predicate.OpEq:
		return ix.Find(compiled)
	case predicate.OpGt:
		lo, ok := compiled.Succ()
		if !ok {
			if kind == key.KindString {
				return e.Store.Rows()
			}
			return nil
		}
		return ix.Range(lo, key.MaxKey(kind))
	case predicate.OpGte:
		return ix.Range(compiled, key.MaxKey(kind))
	case predicate.OpLt:
		hi, ok := compiled.Pred()
		if !ok {
			if kind == key.KindString {
				return e.Store.Rows()
			}
			return nil
		}
		return ix.Range(key.MinKey(kind), hi)
	case predicate.OpLte:
		return ix.Range(key.MinKey(kind), compiled)
	default:
		// OpNeq: full range is equivalent to a full scan plus predicate
		// filter (spec.md §8 boundary behavior), so probeLeaf never
		// selects a != leaf as the probe in the first place; this default
		// is unreachable but kept defensive rather than panicking.
		return e.Store.Rows()
	}
}

// probeLeaf implements spec.md §4.4 step 1: among every comparison leaf
// bound to a live index (matching field type), prefer an equality leaf;
// otherwise take the first range leaf encountered. != leaves are never
// eligible (spec.md §8: "!= on indexed key uses full-range scan").
func (e *Engine) probeLeaf(where *predicate.Node) (*predicate.Comparison, *store.Index, bool) {
	var rangeLeaf *predicate.Comparison
	var rangeIndex *store.Index

	for _, leaf := range predicate.Leaves(where) {
		if leaf.Op == predicate.OpNeq {
			continue
		}
		ix, ok := e.Store.IndexByAttribute(leaf.Field)
		if !ok {
			continue
		}
		fieldType, ok := leaf.ResolvedFieldType()
		if !ok || fieldType != ix.FieldType {
			continue
		}
		if _, ok := leaf.CompiledKey(); !ok {
			continue
		}
		if leaf.Op == predicate.OpEq {
			return leaf, ix, true
		}
		if rangeLeaf == nil {
			rangeLeaf = leaf
			rangeIndex = ix
		}
	}
	if rangeLeaf != nil {
		return rangeLeaf, rangeIndex, true
	}
	return nil, nil, false
}

// applyOrderBy stable-sorts rows by the first ordering term whose field
// is a known schema attribute (SPEC_FULL.md's ORDER BY supplement);
// unknown fields leave the rows in their existing order rather than
// erroring.
func applyOrderBy(rows []*schema.Row, order []query.OrderTerm) {
	if len(order) == 0 {
		return
	}
	term := order[0]
	if _, ok := schema.FieldByName(term.Field); !ok {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a := schema.ExtractKey(rows[i], term.Field)
		b := schema.ExtractKey(rows[j], term.Field)
		cmp := a.Compare(b)
		if term.Direction == query.Descending {
			return cmp > 0
		}
		return cmp < 0
	})
}

// rowFromValues builds a Row from ordered literal text in schema.Columns()
// order, mirroring how the original parser fills insert_values
// positionally. Returns an error on wrong arity or a malformed numeric
// field — a schema violation per spec.md §7, not a coercion-failure
// leaf (those only apply inside WHERE clauses).
func rowFromValues(values []string) (*schema.Row, error) {
	cols := schema.Columns()
	if len(values) != len(cols) {
		return nil, fmt.Errorf("engine: insert expects %d values, got %d", len(cols), len(values))
	}
	fields := append([]string{}, values...)
	return schema.FromCSVRecord(fields)
}
