package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL SQLSTATE codes the repository translates.
const (
	codeUniqueViolation          = "23505"
	codeForeignKeyViolation      = "23503"
	codeInvalidTextRep           = "22P02"
	codeCharacterNotInRepertoire = "22021"
)

// Common errors shared by entity repositories.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrEmailExists     = errors.New("email already exists")
	ErrMessageNotFound = errors.New("message not found")
	ErrOwnerNotFound   = errors.New("message owner not found")
)

// sqlState extracts the SQLSTATE code from a pgx error.
// Returns "" for errors that did not come from the server.
func sqlState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation.
func isUniqueViolation(err error) bool {
	return sqlState(err) == codeUniqueViolation
}

// isForeignKeyViolation checks if the error is a PostgreSQL foreign key violation.
func isForeignKeyViolation(err error) bool {
	return sqlState(err) == codeForeignKeyViolation
}

// isUnmatchableKey reports errors raised when the server cannot even compare
// the supplied identifier (bad encoding, invalid text). Lookups treat these as
// "no such row".
func isUnmatchableKey(err error) bool {
	switch sqlState(err) {
	case codeInvalidTextRep, codeCharacterNotInRepertoire:
		return true
	}
	return false
}
