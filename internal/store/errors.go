package store

import (
	"errors"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrWeakPassword       = errors.New("password is too short")
	ErrDuplicateHandle    = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrEmptyTitle         = errors.New("title is required")
	ErrTitleTooLong       = errors.New("title is too long")
	ErrEmptyMessage       = errors.New("comment message cannot be empty")
	ErrMessageTooLong     = errors.New("comment message is too long")
)

const (
	pqForeignKeyViolation = "23503"
	pqUniqueViolation     = "23505"
)

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqForeignKeyViolation
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	return false
}
