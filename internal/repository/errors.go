package repository

import (
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrDuplicateApplication reports that the (student, opening) pair already has an application.
	ErrDuplicateApplication = errors.New("application already exists")
	// ErrDuplicateKey reports a unique constraint violation on any other table.
	ErrDuplicateKey = errors.New("duplicate key")
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pq.Error
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	return false
}
