package postgres

import (
	ierr "github.com/billcraft/billcraft/internal/errors"
	"github.com/lib/pq"
)

// isUniqueViolation reports whether err is a PostgreSQL unique violation,
// optionally matched against a specific constraint name.
func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !ierr.As(err, &pqErr) {
		return false
	}
	if pqErr.Code != "23505" {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}
