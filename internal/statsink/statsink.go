// Package statsink defines the external SQL statistics sink collaborator
// (spec.md §1, "SQL statistics sink" is explicitly out of scope for the
// core) and provides one reference implementation over SQLite so the
// supplemented incremental-export feature (SPEC_FULL.md §4.12) has
// something real to drive.
package statsink

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// Row is the sink-facing shape of one statistics sample; solver.StatsRow
// satisfies this by field layout, kept decoupled so the core package never
// imports database/sql.
type Row struct {
	SolveID      int64
	Iteration    int64
	Restarts     int64
	Conflicts    int64
	Decisions    int64
	Propagations int64
	LearnedUnits int64
	LearnedBins  int64
	LearnedLongs int64
	ElapsedSecs  float64
	MemEstimate  int64
}

// Sink receives one Row per outer-loop iteration.
type Sink interface {
	Push(row Row) error
	Close() error
}

// SQLiteSink persists rows into a `solve_stats` table in a SQLite database
// identified by dsn, creating the table on first use.
type SQLiteSink struct {
	db *sql.DB
}

// NewSQLiteSink opens (or creates) the database at dsn and ensures the
// schema exists.
func NewSQLiteSink(dsn string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	const schema = `
CREATE TABLE IF NOT EXISTS solve_stats (
	solve_id      INTEGER NOT NULL,
	iteration     INTEGER NOT NULL,
	restarts      INTEGER NOT NULL,
	conflicts     INTEGER NOT NULL,
	decisions     INTEGER NOT NULL,
	propagations  INTEGER NOT NULL,
	learned_units INTEGER NOT NULL,
	learned_bins  INTEGER NOT NULL,
	learned_longs INTEGER NOT NULL,
	elapsed_secs  REAL NOT NULL,
	mem_estimate  INTEGER NOT NULL,
	PRIMARY KEY (solve_id, iteration)
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteSink{db: db}, nil
}

// Push inserts (or replaces) one row.
func (s *SQLiteSink) Push(row Row) error {
	const stmt = `
INSERT OR REPLACE INTO solve_stats
(solve_id, iteration, restarts, conflicts, decisions, propagations,
 learned_units, learned_bins, learned_longs, elapsed_secs, mem_estimate)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`
	_, err := s.db.Exec(stmt,
		row.SolveID, row.Iteration, row.Restarts, row.Conflicts, row.Decisions,
		row.Propagations, row.LearnedUnits, row.LearnedBins, row.LearnedLongs,
		row.ElapsedSecs, row.MemEstimate)
	return err
}

// Close releases the underlying database handle.
func (s *SQLiteSink) Close() error { return s.db.Close() }
