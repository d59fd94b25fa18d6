package errors

import (
	stderrs "errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// transient SQLSTATE classes and codes for the snapshot store
var pgTransient = map[string]bool{
	"40001": true, // serialization_failure
	"40P01": true, // deadlock_detected
	"55P03": true, // lock_not_available
	"57P03": true, // cannot_connect_now
}

// PgCode returns the SQLSTATE of the first *pgconn.PgError in err's chain
func PgCode(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if stderrs.As(err, &pgErr) {
		return pgErr.Code, true
	}
	return "", false
}

// FromPG wraps a Postgres error with the Storage code, or Unavailable when
// the failure is transient
func FromPG(err error, msg string) error {
	if err == nil {
		return nil
	}
	code := ErrorCodeStorage
	if s, ok := PgCode(err); ok && (pgTransient[s] || strings.HasPrefix(s, "08")) {
		code = ErrorCodeUnavailable
	}
	return Wrap(err, code, msg)
}
