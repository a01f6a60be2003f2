package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/starford/daivaya/internal/apperr"
	"github.com/starford/daivaya/internal/models"
)

// ReadingRow is a row of the readings table.
type ReadingRow struct {
	ID        string
	UserID    string
	Kind      string
	Title     string
	Checksum  string
	CreatedAt time.Time
}

// ReadingIndex lists archived readings per user.
type ReadingIndex interface {
	UpsertReading(ctx context.Context, r ReadingRow) error
	GetReading(ctx context.Context, userID, id string) (*ReadingRow, error)
	ListReadings(ctx context.Context, userID string, limit, offset int) ([]models.ReadingMeta, int, error)
	DeleteReading(ctx context.Context, id string) error
	AllReadingIDs(ctx context.Context) (map[string]string, error)
}

var _ ReadingIndex = (*DB)(nil)

// UpsertReading inserts or replaces a reading row.
func (db *DB) UpsertReading(ctx context.Context, r ReadingRow) error {
	_, err := db.conn.ExecContext(ctx, db.rebind(`
		INSERT INTO readings (id, user_id, kind, title, checksum, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			user_id    = excluded.user_id,
			kind       = excluded.kind,
			title      = excluded.title,
			checksum   = excluded.checksum,
			created_at = excluded.created_at
	`), r.ID, r.UserID, r.Kind, r.Title, r.Checksum, r.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("store: upsert reading: %w", err)
	}
	return nil
}

// GetReading returns the user's reading, or ErrNotFound. Readings of other
// users are reported as not found.
func (db *DB) GetReading(ctx context.Context, userID, id string) (*ReadingRow, error) {
	var r ReadingRow
	err := db.conn.QueryRowContext(ctx, db.rebind(`
		SELECT id, user_id, kind, title, checksum, created_at
		FROM readings WHERE id = ? AND user_id = ?
	`), id, userID).Scan(&r.ID, &r.UserID, &r.Kind, &r.Title, &r.Checksum, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.ErrNotFound, "reading not found")
	}
	if err != nil {
		return nil, fmt.Errorf("store: get reading: %w", err)
	}
	return &r, nil
}

// ListReadings returns a page of the user's readings, newest first, and the
// total count.
func (db *DB) ListReadings(ctx context.Context, userID string, limit, offset int) ([]models.ReadingMeta, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := db.conn.QueryRowContext(ctx, db.rebind(`SELECT count(*) FROM readings WHERE user_id = ?`), userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("store: count readings: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx, db.rebind(`
		SELECT id, kind, title, checksum, created_at FROM readings
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`), userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("store: list readings: %w", err)
	}
	defer rows.Close()

	out := []models.ReadingMeta{}
	for rows.Next() {
		var m models.ReadingMeta
		if err := rows.Scan(&m.ID, &m.Kind, &m.Title, &m.Checksum, &m.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, m)
	}
	return out, total, rows.Err()
}

// DeleteReading removes a reading row.
func (db *DB) DeleteReading(ctx context.Context, id string) error {
	if _, err := db.conn.ExecContext(ctx, db.rebind(`DELETE FROM readings WHERE id = ?`), id); err != nil {
		return fmt.Errorf("store: delete reading: %w", err)
	}
	return nil
}

// AllReadingIDs maps every indexed reading id to its checksum.
func (db *DB) AllReadingIDs(ctx context.Context) (map[string]string, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT id, checksum FROM readings`)
	if err != nil {
		return nil, fmt.Errorf("store: all readings: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var id, cs string
		if err := rows.Scan(&id, &cs); err != nil {
			return nil, err
		}
		out[id] = cs
	}
	return out, rows.Err()
}
