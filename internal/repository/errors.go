package repository

import (
	"database/sql"
	"fmt"

	"github.com/isati-sh/daycare-sub001/internal/apperrors"
	"github.com/isati-sh/daycare-sub001/internal/database"
)

// storageErr wraps a driver error as a storage failure, tagging unique
// constraint violations with ErrResourceAlreadyExists.
func storageErr(db database.DBTX, op string, err error) error {
	if db.GetDialect().IsUniqueViolation(err) {
		err = fmt.Errorf("%w: %w", apperrors.ErrResourceAlreadyExists, err)
	}
	return apperrors.Storage(op, err)
}

// requireAffected turns a zero-row update or delete into ErrNotFound
func requireAffected(result sql.Result, what, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return apperrors.Storage("failed to read affected rows", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", what, id, apperrors.ErrNotFound)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
