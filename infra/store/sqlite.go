package store

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"os"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kilianp07/loadshare/core/model"
	"github.com/kilianp07/loadshare/core/outputs"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
        run_id TEXT PRIMARY KEY,
        nodes INTEGER,
        days INTEGER,
        hours INTEGER,
        total_weight REAL,
        start_date INTEGER,
        created_at INTEGER
    );`,
	`CREATE TABLE IF NOT EXISTS allocations (
        run_id TEXT,
        entry INTEGER,
        bus TEXT,
        day INTEGER,
        hour INTEGER,
        load REAL,
        PRIMARY KEY(run_id, entry, day, hour)
    );`,
}

// SQLiteStore persists allocation runs in a SQLite database. The database
// is opened on first use.
type SQLiteStore struct {
	path string
	db   *sql.DB
	// created is set while the file holds nothing but what this store
	// created; a failed write then removes it.
	created bool
}

// NewSQLiteStore returns a store for the database at path.
func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) open(ctx context.Context) error {
	if s.db != nil {
		return nil
	}
	_, statErr := os.Stat(s.path)
	created := errors.Is(statErr, fs.ErrNotExist)
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}
	for _, stmt := range sqliteSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			if created {
				removeDBFiles(s.path)
			}
			return err
		}
	}
	s.db, s.created = db, created
	return nil
}

// Write stores the run and all allocated values in one transaction.
func (s *SQLiteStore) Write(ctx context.Context, meta model.RunMeta, res model.AllocationResult) error {
	return outputs.Commit(s.Prepare(ctx, meta, res))
}

// Prepare inserts the run inside an open transaction. Commit commits it;
// Discard rolls it back.
func (s *SQLiteStore) Prepare(ctx context.Context, meta model.RunMeta, res model.AllocationResult) (outputs.Staged, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.open(ctx); err != nil {
		return nil, model.IOError("store.sqlite", s.path, err)
	}
	tx, err := s.insert(ctx, meta, res)
	if err != nil {
		s.cleanup()
		return nil, model.IOError("store.sqlite", s.path, err)
	}
	return &sqliteTx{store: s, tx: tx}, nil
}

func (s *SQLiteStore) insert(ctx context.Context, meta model.RunMeta, res model.AllocationResult) (_ *sql.Tx, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err = tx.ExecContext(ctx, `INSERT INTO runs (run_id, nodes, days, hours, total_weight, start_date, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)`,
		meta.RunID, meta.Nodes, meta.Shape.Days, meta.Shape.Hours, meta.TotalWeight,
		unixOrZero(meta.StartDate), unixOrZero(meta.CreatedAt)); err != nil {
		return nil, err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO allocations (run_id, entry, bus, day, hour, load)
        VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = stmt.Close() }()
	for i, bp := range res {
		for d, row := range bp.Profile {
			for h, v := range row {
				if _, err = stmt.ExecContext(ctx, meta.RunID, i, bp.Bus, d, h, v); err != nil {
					return nil, err
				}
			}
		}
	}
	return tx, nil
}

// cleanup closes and removes a database file this store created.
func (s *SQLiteStore) cleanup() {
	if !s.created || s.db == nil {
		return
	}
	_ = s.db.Close()
	s.db, s.created = nil, false
	removeDBFiles(s.path)
}

func removeDBFiles(path string) {
	for _, p := range []string{path, path + "-journal", path + "-wal", path + "-shm"} {
		_ = os.Remove(p)
	}
}

type sqliteTx struct {
	store *SQLiteStore
	tx    *sql.Tx
}

func (t *sqliteTx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		t.store.cleanup()
		return model.IOError("store.sqlite", t.store.path, err)
	}
	t.store.created = false
	return nil
}

func (t *sqliteTx) Discard() error {
	err := t.tx.Rollback()
	t.store.cleanup()
	if err != nil && !errors.Is(err, sql.ErrTxDone) {
		return model.IOError("store.sqlite", t.store.path, err)
	}
	return nil
}

// Query returns the allocation stored for runID, in entry order.
func (s *SQLiteStore) Query(ctx context.Context, runID string) (model.RunMeta, model.AllocationResult, error) {
	if err := s.open(ctx); err != nil {
		return model.RunMeta{}, nil, err
	}
	var meta model.RunMeta
	var start, created int64
	err := s.db.QueryRowContext(ctx, `SELECT run_id, nodes, days, hours, total_weight, start_date, created_at
        FROM runs WHERE run_id = ?`, runID).
		Scan(&meta.RunID, &meta.Nodes, &meta.Shape.Days, &meta.Shape.Hours, &meta.TotalWeight, &start, &created)
	if err != nil {
		return model.RunMeta{}, nil, err
	}
	meta.StartDate = fromUnix(start)
	meta.CreatedAt = fromUnix(created)

	rows, err := s.db.QueryContext(ctx, `SELECT entry, bus, day, hour, load
        FROM allocations WHERE run_id = ? ORDER BY entry, day, hour`, runID)
	if err != nil {
		return model.RunMeta{}, nil, err
	}
	defer func() { _ = rows.Close() }()
	var res model.AllocationResult
	for rows.Next() {
		var entry, day, hour int
		var bus string
		var v float64
		if err := rows.Scan(&entry, &bus, &day, &hour, &v); err != nil {
			return model.RunMeta{}, nil, err
		}
		for len(res) <= entry {
			res = append(res, model.BusProfile{Bus: bus, Profile: model.NewLoadProfile(meta.Shape)})
		}
		if day < meta.Shape.Days && hour < meta.Shape.Hours {
			res[entry].Profile[day][hour] = v
		}
	}
	if err := rows.Err(); err != nil {
		return model.RunMeta{}, nil, err
	}
	return meta, res, nil
}

// Close closes the underlying database, if it was opened.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func fromUnix(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
