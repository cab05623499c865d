package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/krishkalaria12/snap-album/apperr"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

// isUniqueViolation recognises a unique or primary key violation from any of
// the supported drivers, translated by gorm or not.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}

	return false
}

func storageErr(op string, err error) error {
	return apperr.Storage(op, err)
}

// notFoundOr maps gorm's missing-row error to notFound and anything else to a
// storage fault.
func notFoundOr(err error, notFound error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return storageErr(op, err)
}
