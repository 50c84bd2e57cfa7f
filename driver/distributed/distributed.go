// Package distributed simulates the MPI-style peer model from the
// original QPEMPI.c / engine/mpi with in-process goroutines and
// channels standing in for peers — no real network/MPI library exists
// anywhere in the example corpus to ground a dependency on, so this
// uses Go's own concurrency primitives, per the pack's general
// no-hand-rolled-protocol-stubs stance.
//
// Each simulated peer holds its own *store.Store replica bootstrapped
// from the same CSV snapshot. Reads are partitioned across peers by
// statement index modulo peer count; writes are broadcast to every
// peer's store, but only peer 0 performs the durability write — the
// other peers apply the same mutation in memory only, via
// store.Store's Mirror methods.
package distributed

import (
	"cmp"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"

	"github.com/Jairik/Parallel-Query-Processing-System/driver"
	"github.com/Jairik/Parallel-Query-Processing-System/engine"
	"github.com/Jairik/Parallel-Query-Processing-System/query"
	"github.com/Jairik/Parallel-Query-Processing-System/schema"
	"github.com/Jairik/Parallel-Query-Processing-System/sqlminiparse"
	"github.com/Jairik/Parallel-Query-Processing-System/store"
)

// Peer is one simulated MPI-style rank: its own store replica and the
// engine bound to it. Peer 0 is the durability writer.
type Peer struct {
	ID     int
	Store  *store.Store
	Engine *engine.Engine
}

// NewPeers opens numPeers independent replicas of the store at path,
// each re-reading the same CSV snapshot (the "initial scatter" in a
// real MPI program), and returns them in rank order. numPeers must be
// >= 1; peer 0 is always the durability writer.
func NewPeers(path, table string, specs []store.IndexSpec, order, numPeers int, verbose bool, log *slog.Logger) ([]*Peer, error) {
	if numPeers < 1 {
		numPeers = 1
	}
	if log == nil {
		log = slog.Default()
	}

	peers := make([]*Peer, numPeers)
	for i := 0; i < numPeers; i++ {
		st, err := store.Open(path, table, specs, order, log)
		if err != nil {
			return nil, fmt.Errorf("distributed: open peer %d: %w", i, err)
		}
		peers[i] = &Peer{ID: i, Store: st, Engine: engine.New(st, verbose, log)}
	}
	return peers, nil
}

type orderedOutput struct {
	order int
	text  string
}

// Run parses every statement in queryText and executes it across
// peers: reads are partitioned round-robin by statement index, writes
// go through peer 0 (the durability writer) and are then mirrored into
// every other peer's in-memory replica.
func Run(peers []*Peer, queryText string, out io.Writer, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}
	if len(peers) == 0 {
		return fmt.Errorf("distributed: no peers")
	}
	statements := sqlminiparse.SplitStatements(queryText)
	if len(statements) == 0 {
		return nil
	}

	results := make(chan orderedOutput, len(statements))
	var wg sync.WaitGroup

	for i, stmt := range statements {
		order := i
		raw := stmt
		q, err := sqlminiparse.Parse(raw)
		if err != nil {
			log.Warn("skipping unparsable statement", "index", order, "statement", raw, "err", err)
			continue
		}

		if driver.Mutates(q.Command) {
			rs, err := driver.Dispatch(peers[0].Engine, q)
			if err != nil {
				log.Warn("statement failed on writer peer", "index", order, "statement", raw, "err", err)
				continue
			}
			if rs.Success {
				broadcastMirror(peers[1:], q, log)
			}
			results <- orderedOutput{order, formatLine(order, raw, rs)}
			continue
		}

		peer := peers[order%len(peers)]
		wg.Add(1)
		go func() {
			defer wg.Done()
			rs, err := driver.Dispatch(peer.Engine, q)
			if err != nil {
				log.Warn("statement failed", "index", order, "statement", raw, "peer", peer.ID, "err", err)
				return
			}
			results <- orderedOutput{order, formatLine(order, raw, rs)}
		}()
	}

	wg.Wait()
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

// broadcastMirror applies the same mutation q already ran on the
// writer peer to every mirror peer, concurrently, in memory only.
func broadcastMirror(mirrors []*Peer, q *query.ParsedQuery, log *slog.Logger) {
	var wg sync.WaitGroup
	for _, p := range mirrors {
		p := p
		if q.Table != "" && q.Table != p.Store.Table() {
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			switch q.Command {
			case query.CommandInsert:
				row, err := schema.FromCSVRecord(q.Values)
				if err != nil {
					log.Warn("mirror insert failed", "peer", p.ID, "err", err)
					return
				}
				p.Store.InsertMirror(row)
			case query.CommandDelete:
				p.Store.DeleteMirrorWhere(func(r *schema.Row) bool { return q.Where.Eval(r) })
			}
		}()
	}
	wg.Wait()
}

func formatLine(order int, stmt string, rs engine.ResultSet) string {
	return fmt.Sprintf("-- [%d] %s\n%s", order, stmt, driver.FormatResultSet(rs))
}
