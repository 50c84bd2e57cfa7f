// Package shared implements the shared-memory worker-pool driver,
// grounded byte-for-byte on the teacher's ConcurrentMapFuncWithError
// (database/concurrent.go): an errgroup.Group bounded by SetLimit(workers),
// fed by statement index, emitting results tagged with their submission
// order and sorted back into that order before printing — spec.md §5's
// "ordered emit barrier keyed on the input query index." Mutating
// statements (INSERT/DELETE) are additionally serialized through a
// sync.Mutex held here, never inside the core, per §9's design note that
// drivers own synchronization.
package shared

import (
	"cmp"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Jairik/Parallel-Query-Processing-System/driver"
	"github.com/Jairik/Parallel-Query-Processing-System/engine"
	"github.com/Jairik/Parallel-Query-Processing-System/sqlminiparse"
)

type orderedOutput struct {
	order int
	text  string
}

// Run parses every statement in queryText, then executes them across
// workers goroutines. A statement that fails to parse or execute is
// logged and emits no output line rather than aborting the batch
// (spec.md §7's "skip and continue" contract applies per-statement
// here, same as driver/serial).
func Run(eng *engine.Engine, queryText string, workers int, out io.Writer, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}
	statements := sqlminiparse.SplitStatements(queryText)
	if len(statements) == 0 {
		return nil
	}

	var mu sync.Mutex // guards mutating statements only; core does no locking of its own
	eg := errgroup.Group{}
	if workers <= 0 {
		eg.SetLimit(1)
	} else {
		eg.SetLimit(workers)
	}

	results := make(chan orderedOutput, len(statements))
	for i, stmt := range statements {
		order := i
		raw := stmt
		eg.Go(func() error {
			q, err := sqlminiparse.Parse(raw)
			if err != nil {
				log.Warn("skipping unparsable statement", "index", order, "statement", raw, "err", err)
				return nil
			}

			if driver.Mutates(q.Command) {
				mu.Lock()
				rs, err := driver.Dispatch(eng, q)
				mu.Unlock()
				if err != nil {
					log.Warn("statement failed", "index", order, "statement", raw, "err", err)
					return nil
				}
				results <- orderedOutput{order, fmt.Sprintf("-- [%d] %s\n%s", order, raw, driver.FormatResultSet(rs))}
				return nil
			}

			rs, err := driver.Dispatch(eng, q)
			if err != nil {
				log.Warn("statement failed", "index", order, "statement", raw, "err", err)
				return nil
			}
			results <- orderedOutput{order, fmt.Sprintf("-- [%d] %s\n%s", order, raw, driver.FormatResultSet(rs))}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return err
	}
	close(results)

	ordered := make([]orderedOutput, 0, len(statements))
	for r := range results {
		ordered = append(ordered, r)
	}
	slices.SortFunc(ordered, func(a, b orderedOutput) int {
		return cmp.Compare(a.order, b.order)
	})

	for _, r := range ordered {
		if _, err := io.WriteString(out, r.text); err != nil {
			return err
		}
	}
	return nil
}
