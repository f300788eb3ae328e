package storage

import (
	"errors"

	"github.com/lib/pq"
)

// ErrConflict indicates an insert hit a uniqueness constraint.
var ErrConflict = errors.New("conflict with existing row")

// isUniqueViolation reports whether err is a Postgres unique_violation.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
