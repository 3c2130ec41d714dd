package postgres

import "context"

// IClient is the surface services depend on for transactional execution.
// *DB implements it against PostgreSQL; tests substitute an in-memory
// client that runs the function inline.
type IClient interface {
	// WithTx executes fn inside a transaction, committing on nil error and
	// rolling back otherwise.
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	// LockEntity takes the exclusive per-entity lock for the remainder of
	// the current transaction.
	LockEntity(ctx context.Context, key string) error
}

var _ IClient = (*DB)(nil)
