package postgres

import (
	"database/sql"

	ierr "github.com/flexprice/checkout/internal/errors"
	"github.com/lib/pq"
)

const pqUniqueViolation = "23505"

// translate maps driver errors onto the ierr taxonomy
func translate(err error, entity string, details map[string]any) error {
	if err == nil {
		return nil
	}
	if ierr.Is(err, sql.ErrNoRows) {
		return ierr.WithError(err).
			WithHintf("%s not found", entity).
			WithReportableDetails(details).
			Mark(ierr.ErrNotFound)
	}
	var pqErr *pq.Error
	if ierr.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
		return ierr.WithError(err).
			WithHintf("%s already exists", entity).
			WithReportableDetails(details).
			Mark(ierr.ErrAlreadyExists)
	}
	return ierr.WithError(err).
		WithHintf("Failed to access %s", entity).
		WithReportableDetails(details).
		Mark(ierr.ErrDatabase)
}
