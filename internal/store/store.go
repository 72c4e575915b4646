// Package store keeps the job history in a local sqlite database.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"printerone/internal/model"
)

type Store struct {
	db *sql.DB
}

func Open(ctx context.Context, dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", dbPath))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS jobs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    source TEXT NOT NULL,
    printer TEXT NOT NULL DEFAULT '',
    format TEXT NOT NULL DEFAULT '',
    size_bytes INTEGER NOT NULL DEFAULT 0,
    status TEXT NOT NULL,
    error TEXT NOT NULL DEFAULT '',
    received_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_jobs_received_at ON jobs(received_at);
`)
	return err
}

// RecordJob appends one history row and returns its id.
func (s *Store) RecordJob(ctx context.Context, rec model.JobRecord) (int64, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("store not initialized")
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO jobs (source, printer, format, size_bytes, status, error, received_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.Source, rec.Printer, rec.Format, rec.SizeBytes, rec.Status, rec.Error, rec.ReceivedAt.UTC())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListRecent returns up to limit history rows, newest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]model.JobRecord, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("store not initialized")
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, printer, format, size_bytes, status, error, received_at
         FROM jobs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.JobRecord
	for rows.Next() {
		var rec model.JobRecord
		if err := rows.Scan(&rec.ID, &rec.Source, &rec.Printer, &rec.Format,
			&rec.SizeBytes, &rec.Status, &rec.Error, &rec.ReceivedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Prune deletes history rows beyond the newest keep entries.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("store not initialized")
	}
	if keep <= 0 {
		keep = 1000
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM jobs WHERE id NOT IN (SELECT id FROM jobs ORDER BY id DESC LIMIT ?)`, keep)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
