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

// Entry kinds.
const (
	KindGrant  = "grant"
	KindCharge = "charge"
)

// Ledger is the credit bookkeeping used by the service layer.
type Ledger interface {
	Balance(ctx context.Context, userID string) (int, error)
	Grant(ctx context.Context, userID string, amount int, requestID, memo string) (models.LedgerEntry, error)
	Charge(ctx context.Context, userID string, amount int, requestID, memo string) (models.LedgerEntry, error)
	Entries(ctx context.Context, userID string, limit int) ([]models.LedgerEntry, error)
	EntryByRequest(ctx context.Context, requestID string) (models.LedgerEntry, bool, error)
}

var _ Ledger = (*DB)(nil)

// Balance returns the user's balance; unknown users have zero.
func (db *DB) Balance(ctx context.Context, userID string) (int, error) {
	var bal int
	err := db.conn.QueryRowContext(ctx, db.rebind(`SELECT balance FROM accounts WHERE user_id = ?`), userID).Scan(&bal)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("store: balance: %w", err)
	}
	return bal, nil
}

// Grant credits amount to the user, creating the account if needed.
// Replaying a requestID returns the original entry.
func (db *DB) Grant(ctx context.Context, userID string, amount int, requestID, memo string) (models.LedgerEntry, error) {
	if amount < 0 {
		return models.LedgerEntry{}, apperr.Validation("grant amount must not be negative")
	}
	return db.apply(ctx, userID, amount, requestID, KindGrant, memo)
}

// Charge debits amount from the user. It fails with ErrInsufficientCredits
// when the balance is short and never drives the balance negative. Replaying
// a requestID returns the original entry without charging again; a replay
// with a different user, amount or memo fails with ErrConflict.
func (db *DB) Charge(ctx context.Context, userID string, amount int, requestID, memo string) (models.LedgerEntry, error) {
	if amount < 0 {
		return models.LedgerEntry{}, apperr.Validation("charge amount must not be negative")
	}
	return db.apply(ctx, userID, -amount, requestID, KindCharge, memo)
}

func (db *DB) apply(ctx context.Context, userID string, delta int, requestID, kind, memo string) (models.LedgerEntry, error) {
	if requestID == "" {
		return models.LedgerEntry{}, apperr.Validation("request id is required")
	}

	if e, ok, err := db.EntryByRequest(ctx, requestID); err != nil {
		return models.LedgerEntry{}, err
	} else if ok {
		return replayed(e, userID, delta, kind, memo)
	}

	e, err := db.applyTx(ctx, userID, delta, requestID, kind, memo)
	if err == nil || errors.Is(err, apperr.ErrInsufficientCredits) {
		return e, err
	}

	// A concurrent call with the same request id may have won the insert.
	if prior, ok, lookupErr := db.EntryByRequest(ctx, requestID); lookupErr == nil && ok {
		return replayed(prior, userID, delta, kind, memo)
	}
	return models.LedgerEntry{}, err
}

func replayed(e models.LedgerEntry, userID string, delta int, kind, memo string) (models.LedgerEntry, error) {
	if e.UserID != userID || e.Kind != kind || e.Amount != delta || e.Memo != memo {
		return models.LedgerEntry{}, apperr.New(apperr.ErrConflict, "request id already used for %s of %d", e.Memo, e.Amount)
	}
	return e, nil
}

func (db *DB) applyTx(ctx context.Context, userID string, delta int, requestID, kind, memo string) (models.LedgerEntry, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return models.LedgerEntry{}, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if _, err := tx.ExecContext(ctx, db.rebind(`
		INSERT INTO accounts (user_id, balance) VALUES (?, 0)
		ON CONFLICT (user_id) DO NOTHING
	`), userID); err != nil {
		return models.LedgerEntry{}, fmt.Errorf("store: ensure account: %w", err)
	}

	res, err := tx.ExecContext(ctx, db.rebind(`
		UPDATE accounts SET balance = balance + ?
		WHERE user_id = ? AND balance + ? >= 0
	`), delta, userID, delta)
	if err != nil {
		return models.LedgerEntry{}, fmt.Errorf("store: update balance: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.LedgerEntry{}, apperr.New(apperr.ErrInsufficientCredits, "insufficient credits")
	}

	var bal int
	if err := tx.QueryRowContext(ctx, db.rebind(`SELECT balance FROM accounts WHERE user_id = ?`), userID).Scan(&bal); err != nil {
		return models.LedgerEntry{}, fmt.Errorf("store: read balance: %w", err)
	}

	e := models.LedgerEntry{
		UserID:    userID,
		RequestID: requestID,
		Kind:      kind,
		Amount:    delta,
		Balance:   bal,
		Memo:      memo,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	if err := tx.QueryRowContext(ctx, db.rebind(`
		INSERT INTO ledger (user_id, request_id, kind, amount, balance_after, memo, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`), e.UserID, e.RequestID, e.Kind, e.Amount, e.Balance, e.Memo, e.CreatedAt).Scan(&e.ID); err != nil {
		return models.LedgerEntry{}, fmt.Errorf("store: insert entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.LedgerEntry{}, fmt.Errorf("store: commit: %w", err)
	}
	return e, nil
}

const entryColumns = `id, user_id, request_id, kind, amount, balance_after, memo, created_at`

func scanEntry(row interface{ Scan(...any) error }) (models.LedgerEntry, error) {
	var e models.LedgerEntry
	err := row.Scan(&e.ID, &e.UserID, &e.RequestID, &e.Kind, &e.Amount, &e.Balance, &e.Memo, &e.CreatedAt)
	return e, err
}

// EntryByRequest returns the entry recorded under requestID, if any.
func (db *DB) EntryByRequest(ctx context.Context, requestID string) (models.LedgerEntry, bool, error) {
	row := db.conn.QueryRowContext(ctx, db.rebind(`SELECT `+entryColumns+` FROM ledger WHERE request_id = ?`), requestID)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.LedgerEntry{}, false, nil
	}
	if err != nil {
		return models.LedgerEntry{}, false, fmt.Errorf("store: entry by request: %w", err)
	}
	return e, true, nil
}

// Entries returns the user's most recent ledger entries, newest first.
func (db *DB) Entries(ctx context.Context, userID string, limit int) ([]models.LedgerEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := db.conn.QueryContext(ctx, db.rebind(`
		SELECT `+entryColumns+` FROM ledger
		WHERE user_id = ?
		ORDER BY id DESC
		LIMIT ?
	`), userID, limit)
	if err != nil {
		return nil, fmt.Errorf("store: entries: %w", err)
	}
	defer rows.Close()

	out := []models.LedgerEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
