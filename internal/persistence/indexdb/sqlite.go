package indexdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteIndex records runs and their per-tick digests. Writes go through a
// buffered channel drained by a single goroutine so the simulation never
// blocks on the database.
type SQLiteIndex struct {
	db *sql.DB

	ch   chan tickRow
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool
}

type RunMeta struct {
	Scenario string
	Seed     int64
	GridU    uint32
	GridV    uint32
}

type tickRow struct {
	RunID  int64
	Tick   uint64
	Digest string
	Agents int
	Events int
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan tickRow, 8192),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	// WAL is much faster for append-style workloads.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("pragma %q: %w", p, err)
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	scenario TEXT NOT NULL,
	seed INTEGER NOT NULL,
	grid_u INTEGER NOT NULL,
	grid_v INTEGER NOT NULL,
	started_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS ticks (
	run_id INTEGER NOT NULL,
	tick INTEGER NOT NULL,
	digest TEXT NOT NULL,
	agents INTEGER NOT NULL,
	events INTEGER NOT NULL,
	PRIMARY KEY (run_id, tick)
);
`
	_, err := db.Exec(schema)
	return err
}

// BeginRun inserts a run row and returns its id. Called synchronously at
// startup, before any tick is recorded.
func (s *SQLiteIndex) BeginRun(meta RunMeta) (int64, error) {
	res, err := s.db.Exec(
		"INSERT INTO runs (scenario, seed, grid_u, grid_v, started_at) VALUES (?, ?, ?, ?, ?)",
		meta.Scenario, meta.Seed, meta.GridU, meta.GridV, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// RecordTick queues a tick row; it drops the row rather than blocking when
// the writer falls far behind.
func (s *SQLiteIndex) RecordTick(runID int64, tick uint64, digest string, agents, events int) {
	if s.closed.Load() {
		return
	}
	select {
	case s.ch <- tickRow{RunID: runID, Tick: tick, Digest: digest, Agents: agents, Events: events}:
	default:
	}
}

// Digest returns the recorded digest for a tick of a run; ok is false when
// the tick was never recorded (or was dropped under load).
func (s *SQLiteIndex) Digest(runID int64, tick uint64) (digest string, ok bool, err error) {
	row := s.db.QueryRow("SELECT digest FROM ticks WHERE run_id = ? AND tick = ?", runID, tick)
	switch err := row.Scan(&digest); err {
	case nil:
		return digest, true, nil
	case sql.ErrNoRows:
		return "", false, nil
	default:
		return "", false, err
	}
}

// LatestRun returns the id and metadata of the most recent run.
func (s *SQLiteIndex) LatestRun() (int64, RunMeta, error) {
	var id int64
	var meta RunMeta
	row := s.db.QueryRow("SELECT id, scenario, seed, grid_u, grid_v FROM runs ORDER BY id DESC LIMIT 1")
	if err := row.Scan(&id, &meta.Scenario, &meta.Seed, &meta.GridU, &meta.GridV); err != nil {
		return 0, meta, err
	}
	return id, meta, nil
}

func (s *SQLiteIndex) loop() {
	for row := range s.ch {
		_, err := s.db.Exec(
			"INSERT OR REPLACE INTO ticks (run_id, tick, digest, agents, events) VALUES (?, ?, ?, ?, ?)",
			row.RunID, row.Tick, row.Digest, row.Agents, row.Events,
		)
		if err != nil {
			// A failed insert only loses index data, never simulation state.
			continue
		}
	}
}

// Close drains pending writes and shuts the database.
func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}
