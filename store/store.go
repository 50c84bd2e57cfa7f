// Package store implements the record store (spec.md C4): the owning
// vector of rows, the CSV file it persists to, and the set of
// secondary indexes bound to that vector. The store is the sole owner
// of every row; indexes hold only non-owning *schema.Row references
// (spec.md §3's lifetime rule), which is naturally expressible in Go
// since the garbage collector, not the store, decides when a row's
// memory is actually reclaimed — the store's job is only to guarantee
// no index outlives its row's logical membership.
//
// Grounded on the original's buildEngine-serial.c (getAllRecordsFromFile,
// loadIntoBplusTree, makeIndexSerial) for Open's load/index-build
// sequence; CSV persistence itself is delegated to the durability
// package.
package store

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/Jairik/Parallel-Query-Processing-System/bptree"
	"github.com/Jairik/Parallel-Query-Processing-System/durability"
	"github.com/Jairik/Parallel-Query-Processing-System/schema"
)

// ErrTableMismatch is returned when a ParsedQuery names a table other
// than the one the store is bound to (spec.md §6: "table name (must
// match the store's bound table)").
var ErrTableMismatch = errors.New("store: table name does not match bound table")

// IndexSpec describes one secondary index to build at Open time or via
// AddIndex: the attribute it's keyed on and that attribute's field type.
type IndexSpec struct {
	Attribute string
	FieldType schema.FieldType
}

// Store owns the rows vector, the CSV file path, and the bound
// indexes, per spec.md §2 C4 and §3's "Record Store" data model.
type Store struct {
	path      string
	table     string
	order     int
	rows      []*schema.Row
	indexes   []*Index
	indexSpec []IndexSpec
	log       *slog.Logger
}

// StoreStats is a read-only operational snapshot, grounded on the
// teacher's DumpDDLs-style introspection pattern: a separate read path
// alongside the mutating API, not layered into it.
type StoreStats struct {
	RowCount int
	Indexes  []IndexStats
}

// IndexStats reports one index's bound attribute and live entry count.
type IndexStats struct {
	Attribute string
	FieldType schema.FieldType
	Entries   int
}

// Open reads the CSV header and body at path, builds one Row per data
// line, then builds every index named in specs by iterating the rows in
// file order — mirroring makeIndexSerial/loadIntoBplusTree in
// buildEngine-serial.c. order is the B+-tree fanout for every index
// built by this store (bptree.DefaultOrder if <= 0).
func Open(path, table string, specs []IndexSpec, order int, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}
	if order <= 0 {
		order = bptree.DefaultOrder
	}

	s := &Store{path: path, table: table, order: order, log: log}

	rows, err := durability.ReadAll(path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	s.rows = rows

	for _, spec := range specs {
		if !s.AddIndex(spec.Attribute, spec.FieldType) {
			return nil, fmt.Errorf("store: open %s: unknown index attribute %q", path, spec.Attribute)
		}
	}

	log.Info("store opened", "path", path, "table", table, "rows", len(rows), "indexes", len(specs))
	return s, nil
}

// Close is a no-op beyond logging: the store holds no open file handle
// between operations (each append/rewrite opens, writes, and closes the
// CSV file in turn), so there is nothing to release here. It exists for
// symmetry with Open and so callers have a clear teardown point.
func (s *Store) Close() error {
	s.log.Info("store closed", "path", s.path, "table", s.table)
	return nil
}

// Table returns the bound table name.
func (s *Store) Table() string { return s.table }

// Rows returns the current row set in store order. Callers must not
// mutate the returned slice or the rows it points to.
func (s *Store) Rows() []*schema.Row { return s.rows }

// Indexes returns every bound index, in the order they were created.
func (s *Store) Indexes() []*Index { return s.indexes }

// IndexByAttribute returns the index bound to attribute, if any.
func (s *Store) IndexByAttribute(attribute string) (*Index, bool) {
	for _, ix := range s.indexes {
		if ix.Attribute == attribute {
			return ix, true
		}
	}
	return nil, false
}

// AddIndex builds a new index over the current rows and appends it to
// the index list; rows inserted after this call are indexed going
// forward, but AddIndex does not retroactively rescan on later
// operations beyond this initial build (spec.md §4.2). Reports false if
// attribute is not a known schema field.
func (s *Store) AddIndex(attribute string, fieldType schema.FieldType) bool {
	if _, ok := schema.FieldByName(attribute); !ok {
		return false
	}
	ix := newIndex(attribute, fieldType, s.order)
	for _, r := range s.rows {
		ix.insert(r)
	}
	s.indexes = append(s.indexes, ix)
	s.indexSpec = append(s.indexSpec, IndexSpec{Attribute: attribute, FieldType: fieldType})
	s.log.Debug("index added", "attribute", attribute, "type", fieldType.String(), "entries", ix.Len())
	return true
}

// Insert validates row (spec.md §3's required-field rules), then on
// success appends it to the owning vector, extracts a key for each
// bound attribute and inserts into each index, and appends one CSV
// line to the file, in that order (spec.md §4.2).
//
// If the CSV append fails, the in-memory state has already changed:
// the row is in the rows vector and every index, but the file does not
// yet reflect it. This is a documented, deliberate limitation carried
// from spec.md §9's open question rather than strengthened with a
// rollback — see DESIGN.md.
func (s *Store) Insert(row *schema.Row) (bool, error) {
	if err := row.Validate(); err != nil {
		s.log.Warn("insert rejected", "err", err)
		return false, err
	}

	s.rows = append(s.rows, row)
	for _, ix := range s.indexes {
		ix.insert(row)
	}

	if err := durability.AppendRow(s.path, row); err != nil {
		s.log.Error("insert durability append failed", "err", err)
		return false, fmt.Errorf("store: append row: %w", err)
	}
	return true, nil
}

// DeleteMatching removes every row in matches from the rows vector and
// from every index, then rewrites the CSV file from the surviving rows
// (spec.md §4.2/§4.5). matches must be a subset of rows currently owned
// by this store, identified by pointer identity (the same *schema.Row
// values returned by Rows()/an index's Find/Range).
func (s *Store) DeleteMatching(matches []*schema.Row) (int, error) {
	if len(matches) == 0 {
		return 0, nil
	}
	removed := s.removeInMemory(matches)

	if err := durability.RewriteAll(s.path, s.rows); err != nil {
		s.log.Error("delete durability rewrite failed", "err", err)
		return removed, fmt.Errorf("store: rewrite csv: %w", err)
	}
	return removed, nil
}

// removeInMemory deletes matches from the rows vector and every index
// without touching the CSV file, returning the number removed.
func (s *Store) removeInMemory(matches []*schema.Row) int {
	toDelete := make(map[*schema.Row]bool, len(matches))
	for _, r := range matches {
		toDelete[r] = true
	}

	survivors := s.rows[:0:0]
	removed := 0
	for _, r := range s.rows {
		if toDelete[r] {
			for _, ix := range s.indexes {
				ix.remove(r)
			}
			removed++
			continue
		}
		survivors = append(survivors, r)
	}
	s.rows = survivors
	return removed
}

// InsertMirror applies row to this store's in-memory rows and indexes
// without appending to the CSV file. It exists for the distributed
// driver's non-writer peer replicas (SPEC_FULL.md's [MODULE driver]:
// "writes broadcast to every peer's store, and peer 0 alone performs
// the durability write") — every peer keeps its rows/indexes in sync,
// but only peer 0's Store.Insert touches disk.
func (s *Store) InsertMirror(row *schema.Row) bool {
	if err := row.Validate(); err != nil {
		return false
	}
	s.rows = append(s.rows, row)
	for _, ix := range s.indexes {
		ix.insert(row)
	}
	return true
}

// DeleteMirror removes matches from this store's in-memory rows and
// indexes without rewriting the CSV file, the delete-side counterpart
// to InsertMirror for non-writer distributed-driver peers.
func (s *Store) DeleteMirror(matches []*schema.Row) int {
	return s.removeInMemory(matches)
}

// DeleteMirrorWhere scans this store's own rows for every row match
// reports true for, then removes them in-memory without rewriting the
// CSV file. Mirror peers have distinct *schema.Row instances from the
// writer peer even when their contents agree, so matching must be
// re-evaluated locally rather than replayed by pointer identity.
func (s *Store) DeleteMirrorWhere(match func(*schema.Row) bool) int {
	var toDelete []*schema.Row
	for _, r := range s.rows {
		if match(r) {
			toDelete = append(toDelete, r)
		}
	}
	return s.removeInMemory(toDelete)
}

// Stats reports row and per-index counts for operational visibility.
func (s *Store) Stats() StoreStats {
	stats := StoreStats{RowCount: len(s.rows)}
	for _, ix := range s.indexes {
		stats.Indexes = append(stats.Indexes, IndexStats{
			Attribute: ix.Attribute,
			FieldType: ix.FieldType,
			Entries:   ix.Len(),
		})
	}
	return stats
}
