package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	sqlStateUniqueViolation  = "23505"
	sqlStateLockNotAvailable = "55P03"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	return pgCode(err) == sqlStateUniqueViolation
}

// isLockNotAvailable detecta que se agotó lock_timeout esperando un bloqueo (55P03).
func isLockNotAvailable(err error) bool {
	return pgCode(err) == sqlStateLockNotAvailable
}
