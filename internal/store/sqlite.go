package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SQLite keeps records as (record_key, field, value) rows, one row per
// field, with the revision stored like any other field. Conditional writes
// are a revision compare inside a transaction.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db}
}

func (s *SQLite) Fetch(ctx context.Context, key string) (Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT field, value FROM records WHERE record_key = ?
	`, key)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", key, err)
	}
	defer rows.Close()

	rec := Record{}
	for rows.Next() {
		var field, value string
		if err := rows.Scan(&field, &value); err != nil {
			return nil, fmt.Errorf("fetching %s: %w", key, err)
		}
		rec[field] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetching %s: %w", key, err)
	}
	if len(rec) == 0 {
		return nil, ErrNotFound
	}
	return rec, nil
}

func (s *SQLite) FetchField(ctx context.Context, key, field string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `
		SELECT value FROM records WHERE record_key = ? AND field = ?
	`, key, field).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("fetching %s.%s: %w", key, field, err)
	}
	return value, true, nil
}

func (s *SQLite) Create(ctx context.Context, key string, rec Record) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		// Claiming the revision row doubles as the existence check, so a
		// racing create loses with ErrExists instead of a constraint error.
		res, err := tx.ExecContext(ctx, `
			INSERT INTO records (record_key, field, value) VALUES (?, ?, ?)
			ON CONFLICT (record_key, field) DO NOTHING
		`, key, FieldRev, firstRev)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrExists
		}
		fields := rec.Clone()
		delete(fields, FieldRev)
		return upsertFields(ctx, tx, key, fields)
	})
}

func (s *SQLite) Write(ctx context.Context, key string, rec Record) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		rev, err := currentRev(ctx, tx, key)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE record_key = ?`, key); err != nil {
			return err
		}
		merged := rec.Clone()
		merged[FieldRev] = nextRev(rev)
		return upsertFields(ctx, tx, key, merged)
	})
}

func (s *SQLite) Update(ctx context.Context, key string, fields Record) error {
	return s.updateGuarded(ctx, key, fields, "")
}

func (s *SQLite) UpdateIf(ctx context.Context, key string, fields Record, rev string) error {
	return s.updateGuarded(ctx, key, fields, rev)
}

func (s *SQLite) updateGuarded(ctx context.Context, key string, fields Record, expected string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		rev, err := currentRev(ctx, tx, key)
		if err != nil {
			return err
		}
		if expected != "" && rev != expected {
			return ErrConflict
		}
		merged := fields.Clone()
		merged[FieldRev] = nextRev(rev)
		return upsertFields(ctx, tx, key, merged)
	})
}

func (s *SQLite) Delete(ctx context.Context, key string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE record_key = ?`, key)
	if err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLite) Exists(ctx context.Context, key string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `
		SELECT 1 FROM records WHERE record_key = ? LIMIT 1
	`, key).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking %s: %w", key, err)
	}
	return true, nil
}

func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLite) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func currentRev(ctx context.Context, tx *sql.Tx, key string) (string, error) {
	var rev string
	err := tx.QueryRowContext(ctx, `
		SELECT value FROM records WHERE record_key = ? AND field = ?
	`, key, FieldRev).Scan(&rev)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return rev, err
}

func upsertFields(ctx context.Context, tx *sql.Tx, key string, fields Record) error {
	for field, value := range fields {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO records (record_key, field, value) VALUES (?, ?, ?)
			ON CONFLICT (record_key, field) DO UPDATE SET value = excluded.value
		`, key, field, value)
		if err != nil {
			return err
		}
	}
	return nil
}
