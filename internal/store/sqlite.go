package store

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/navindex/internal/foundation/errors"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens or creates a snapshot database.
// Use ":memory:" for an in-memory database, or a file path for persistent storage.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryStore, "open sqlite database").
			WithContext("path", dbPath).
			Build()
	}
	// one connection keeps ":memory:" databases shared and serializes writers
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, errors.WrapError(err, errors.CategoryStore, "initialize schema").Build()
	}
	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		fingerprint TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		nodes INTEGER NOT NULL,
		linked INTEGER NOT NULL,
		pages INTEGER NOT NULL,
		files INTEGER NOT NULL,
		symbols INTEGER NOT NULL,
		entries INTEGER NOT NULL,
		chunks INTEGER NOT NULL,
		payload BLOB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_snapshots_source ON snapshots(source, created_at);
	CREATE INDEX IF NOT EXISTS idx_snapshots_fingerprint ON snapshots(fingerprint);
	`
	_, err := s.db.Exec(schema)
	return err
}

const selectColumns = "SELECT id, source, fingerprint, created_at, nodes, linked, pages, files, symbols, entries, chunks, payload FROM snapshots"

// Save stores snap. An unchanged fingerprint is a no-op returning the
// existing id.
func (s *SQLiteStore) Save(ctx context.Context, snap *Snapshot) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", false, errors.WrapError(err, errors.CategoryStore, "begin transaction").Build()
	}
	defer func() { _ = tx.Rollback() }()

	var latestID, latestFP string
	err = tx.QueryRowContext(ctx,
		"SELECT id, fingerprint FROM snapshots WHERE source = ? ORDER BY created_at DESC, rowid DESC LIMIT 1",
		snap.Source,
	).Scan(&latestID, &latestFP)
	switch {
	case err == nil && latestFP == snap.Fingerprint:
		snap.ID = latestID
		return latestID, false, nil
	case err != nil && !stderrors.Is(err, sql.ErrNoRows):
		return "", false, errors.WrapError(err, errors.CategoryStore, "query latest snapshot").Build()
	}

	if snap.ID == "" {
		snap.ID = newID()
	}
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = time.Now().UTC()
	}
	st := snap.Stats
	_, err = tx.ExecContext(ctx,
		"INSERT INTO snapshots (id, source, fingerprint, created_at, nodes, linked, pages, files, symbols, entries, chunks, payload) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		snap.ID, snap.Source, snap.Fingerprint, snap.CreatedAt.UnixNano(),
		st.Nodes, st.Linked, st.Pages, st.Files, st.Symbols, st.Entries, st.Chunks,
		snap.Payload,
	)
	if err != nil {
		return "", false, errors.WrapError(err, errors.CategoryStore, "insert snapshot").
			WithContext("snapshot_id", snap.ID).
			Build()
	}
	if err := tx.Commit(); err != nil {
		return "", false, errors.WrapError(err, errors.CategoryStore, "commit snapshot").Build()
	}
	return snap.ID, true, nil
}

// Latest returns the newest snapshot of source.
func (s *SQLiteStore) Latest(ctx context.Context, source string) (*Snapshot, error) {
	list, err := s.List(ctx, source, 1)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, errors.NotFoundError(fmt.Sprintf("no snapshot for %s", source)).
			WithContext("site", source).
			Build()
	}
	return list[0], nil
}

// List returns snapshots of source, newest first. An empty source lists every
// source; a limit of zero or less returns all rows.
func (s *SQLiteStore) List(ctx context.Context, source string, limit int) ([]*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := selectColumns
	var args []any
	if source != "" {
		query += " WHERE source = ?"
		args = append(args, source)
	}
	query += " ORDER BY created_at DESC, rowid DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryStore, "query snapshots").Build()
	}
	defer rows.Close()
	return scanSnapshots(rows)
}

// Get returns the snapshot with id.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, selectColumns+" WHERE id = ?", id)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryStore, "query snapshot").Build()
	}
	defer rows.Close()
	list, err := scanSnapshots(rows)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, errors.NotFoundError(fmt.Sprintf("snapshot %s not found", id)).
			WithContext("snapshot_id", id).
			Build()
	}
	return list[0], nil
}

func scanSnapshots(rows *sql.Rows) ([]*Snapshot, error) {
	out := make([]*Snapshot, 0)
	for rows.Next() {
		var snap Snapshot
		var created int64
		st := &snap.Stats
		if err := rows.Scan(&snap.ID, &snap.Source, &snap.Fingerprint, &created,
			&st.Nodes, &st.Linked, &st.Pages, &st.Files, &st.Symbols, &st.Entries, &st.Chunks,
			&snap.Payload); err != nil {
			return nil, errors.WrapError(err, errors.CategoryStore, "scan snapshot").Build()
		}
		snap.CreatedAt = time.Unix(0, created).UTC()
		out = append(out, &snap)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapError(err, errors.CategoryStore, "iterate rows").Build()
	}
	return out, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
