package postgres

import (
	"context"
	"fmt"
	"time"

	ierr "github.com/billcraft/billcraft/internal/errors"
	"github.com/lib/pq"
)

// DefaultLockTimeout bounds how long a transition waits for the exclusive
// per-entity lock before surfacing a conflict to the caller.
const DefaultLockTimeout = 5 * time.Second

// LockEntity acquires an exclusive advisory lock keyed by the entity id for
// the duration of the current transaction. The lock is released automatically
// on commit or rollback. Must be called inside a transaction.
//
// When the lock cannot be acquired within the timeout the caller gets
// ErrConcurrentModification, which is safe to retry once after re-reading
// state.
func (db *DB) LockEntity(ctx context.Context, key string) error {
	tx, ok := GetTx(ctx)
	if !ok {
		return ierr.NewError("entity lock requested outside a transaction").
			WithHint("Acquire entity locks inside WithTx").
			Mark(ierr.ErrSystem)
	}

	timeoutMs := int(DefaultLockTimeout.Milliseconds())
	// SET LOCAL resets automatically on commit/rollback
	_, err := tx.ExecContext(ctx, fmt.Sprintf("SET LOCAL lock_timeout = %d", timeoutMs))
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to set lock timeout").
			Mark(ierr.ErrDatabase)
	}

	_, err = tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key)
	if err != nil {
		if isLockTimeoutError(err) {
			return ierr.WithError(err).
				WithHintf("Another operation holds the lock on %s", key).
				WithReportableDetails(map[string]any{
					"entity": key,
				}).
				Mark(ierr.ErrConcurrentModification)
		}
		return ierr.WithError(err).
			WithHint("Failed to acquire entity lock").
			Mark(ierr.ErrDatabase)
	}

	return nil
}

// TryLockEntity attempts to acquire the advisory lock without waiting.
// Returns false when another transaction already holds it. Must be called
// inside a transaction.
func (db *DB) TryLockEntity(ctx context.Context, key string) (bool, error) {
	tx, ok := GetTx(ctx)
	if !ok {
		return false, ierr.NewError("entity lock requested outside a transaction").
			WithHint("Acquire entity locks inside WithTx").
			Mark(ierr.ErrSystem)
	}

	var acquired bool
	row := tx.QueryRowContext(ctx, `SELECT pg_try_advisory_xact_lock(hashtext($1))`, key)
	if err := row.Scan(&acquired); err != nil {
		return false, ierr.WithError(err).
			WithHint("Failed to try entity lock").
			Mark(ierr.ErrDatabase)
	}

	return acquired, nil
}

// isLockTimeoutError checks for the PostgreSQL lock_not_available code.
func isLockTimeoutError(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if ierr.As(err, &pqErr) {
		return pqErr.Code == "55P03"
	}
	return false
}
