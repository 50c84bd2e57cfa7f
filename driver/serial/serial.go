// Package serial implements the single-threaded driver: a direct loop
// over engine.Engine calls with no locking, matching spec.md §5's "core"
// contract and generalized from the original QPESeq.c's statement loop.
package serial

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/Jairik/Parallel-Query-Processing-System/driver"
	"github.com/Jairik/Parallel-Query-Processing-System/engine"
	"github.com/Jairik/Parallel-Query-Processing-System/sqlminiparse"
)

// Run parses and executes every statement in queryText in order,
// writing each statement's formatted ResultSet to out. Unsupported or
// malformed statements are logged as a warning and skipped, per §7
// ("statement is skipped with a diagnostic; other statements continue")
// rather than aborting the whole file.
func Run(eng *engine.Engine, queryText string, out io.Writer, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}
	statements := sqlminiparse.SplitStatements(queryText)
	for i, stmt := range statements {
		q, err := sqlminiparse.Parse(stmt)
		if err != nil {
			log.Warn("skipping unparsable statement", "index", i, "statement", stmt, "err", err)
			continue
		}

		rs, err := driver.Dispatch(eng, q)
		if err != nil {
			log.Warn("statement failed", "index", i, "statement", stmt, "err", err)
			continue
		}
		if _, err := fmt.Fprintf(out, "-- [%d] %s\n%s", i, stmt, driver.FormatResultSet(rs)); err != nil {
			return err
		}
	}
	return nil
}
