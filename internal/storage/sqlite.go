package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver registration.

	"screening_notifier/internal/model"
	"screening_notifier/migrations"
)

const timeLayout = "2006-01-02T15:04:05Z"

// SQLite implements Store backed by a SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at dsn and runs pending migrations.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// :memory: databases are per connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := migrations.Run(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Load returns every stored date.
func (s *SQLite) Load(ctx context.Context) (model.DateSet, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT date_id FROM seen_dates ORDER BY date_id`)
	if err != nil {
		return nil, fmt.Errorf("query seen dates: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var raw []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan seen date: %w", err)
		}
		raw = append(raw, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate seen dates: %w", err)
	}
	return parseStored(raw)
}

// Save replaces the stored dates in one transaction. Dates already present
// keep their original seen_at.
func (s *SQLite) Save(ctx context.Context, dates model.DateSet) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	existing, err := existingDates(ctx, tx)
	if err != nil {
		return err
	}

	for id := range existing {
		if dates.Has(id) {
			continue
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM seen_dates WHERE date_id = ?`, string(id)); err != nil {
			return fmt.Errorf("delete seen date: %w", err)
		}
	}

	now := time.Now().UTC().Format(timeLayout)
	for _, id := range dates.Sorted() {
		if existing.Has(id) {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO seen_dates (date_id, seen_at) VALUES (?, ?)`, string(id), now,
		); err != nil {
			return fmt.Errorf("insert seen date: %w", err)
		}
	}

	return tx.Commit()
}

// SeenAt returns when id was first stored.
func (s *SQLite) SeenAt(ctx context.Context, id model.DateID) (time.Time, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT seen_at FROM seen_dates WHERE date_id = ?`, string(id),
	).Scan(&raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("query seen_at: %w", err)
	}
	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse seen_at: %w", err)
	}
	return t, nil
}

func existingDates(ctx context.Context, tx *sql.Tx) (model.DateSet, error) {
	rows, err := tx.QueryContext(ctx, `SELECT date_id FROM seen_dates`)
	if err != nil {
		return nil, fmt.Errorf("query seen dates: %w", err)
	}
	defer func() { _ = rows.Close() }()

	set := make(model.DateSet)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan seen date: %w", err)
		}
		set.Add(model.DateID(id))
	}
	return set, rows.Err()
}
