// Package durability implements the CSV-backed persistence protocol
// (spec.md C7 / §4.5): append one line on INSERT, rewrite the whole
// file on DELETE, both RFC-4180 quoted via encoding/csv.
//
// Grounded on the teacher's adapter/file and database/file packages —
// its "pseudo database backed by a single file" pattern, generalized
// here from dumping DDL statements to a file to appending/rewriting CSV
// data rows. Kept as its own package (not folded into store) so the
// record store's row/index bookkeeping stays decoupled from exactly how
// rows reach disk, mirroring the teacher's adapter/database split.
package durability

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Jairik/Parallel-Query-Processing-System/schema"
)

// ReadAll reads the CSV header and every data line at path, returning
// one *schema.Row per line in file order. If path does not exist, it is
// created containing only the header line and ReadAll returns an empty
// slice — spec.md's Open is defined over an existing CSV, but a fresh
// data file is a reasonable starting state for a new table.
func ReadAll(path string) ([]*schema.Row, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		if err := writeHeaderOnly(path); err != nil {
			return nil, err
		}
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(bufio.NewReader(f))
	r.FieldsPerRecord = -1

	if _, err := r.Read(); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("durability: read header: %w", err)
	}

	var rows []*schema.Row
	for {
		fields, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("durability: read record: %w", err)
		}
		row, err := schema.FromCSVRecord(fields)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func writeHeaderOnly(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := schema.NewCSVWriter(csv.NewWriter(f))
	if err := w.Write(schema.Header); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// AppendRow serializes row as one CSV line and appends it to path,
// flushing before returning (spec.md §4.5: "flushing before reporting
// success. No header is rewritten."). The file is created with a header
// line first if it does not yet exist.
func AppendRow(path string, row *schema.Row) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := writeHeaderOnly(path); err != nil {
			return err
		}
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	w := schema.NewCSVWriter(csv.NewWriter(f))
	if err := w.Write(schema.ToCSVRecord(row)); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// RewriteAll truncates path and rewrites header + rows.
//
// This restores the header line on every rewrite. spec.md §9 notes the
// original source drops the header on its DELETE-triggered rewrite,
// flagging it as a possible bug; this implementation always re-emits
// the header because ReadAll unconditionally expects one, and a file
// this package cannot re-read is a correctness defect, not a cosmetic
// one (see DESIGN.md for the full resolution).
func RewriteAll(path string, rows []*schema.Row) error {
	f, err := os.OpenFile(path, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	w := schema.NewCSVWriter(csv.NewWriter(f))
	if err := w.Write(schema.Header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.Write(schema.ToCSVRecord(row)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
