package testutil

import (
	ierr "github.com/billcraft/billcraft/internal/errors"
	"github.com/billcraft/billcraft/internal/types"
)

func notFound(entity, id string) error {
	return ierr.NewErrorf("%s %s not found", entity, id).
		WithReportableDetails(map[string]any{entity + "_id": id}).
		Mark(ierr.ErrNotFound)
}

// baseStatusMatches applies the soft-delete-aware status filter the SQL
// repositories express in their WHERE clauses.
func baseStatusMatches(status types.Status, f *types.QueryFilter) bool {
	if status == types.StatusDeleted {
		return false
	}
	return string(status) == f.GetStatus()
}
