package httperr

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	sqlStateExclusionViolation   = "23P01"
	sqlStateUniqueViolation      = "23505"
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsExclusionViolation reports a hit on the barber window exclusion constraint.
func IsExclusionViolation(err error) bool {
	return pgCode(err) == sqlStateExclusionViolation
}

// IsUniqueViolation covers both drivers: translated gorm errors, raw pg codes
// and the sqlite message.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || pgCode(err) == sqlStateUniqueViolation {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// IsSerializationFailure reports errors after which the whole transaction may be retried.
func IsSerializationFailure(err error) bool {
	code := pgCode(err)
	return code == sqlStateSerializationFailure || code == sqlStateDeadlockDetected
}
