package database

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lanceraa/api/internal/models"
)

// Unique constraint names declared by the schema migrations
const (
	ConstraintAccountsEmail      = "accounts_email_key"
	ConstraintAccountsHandle     = "accounts_handle_key"
	ConstraintAccountsPhone      = "accounts_phone_key"
	ConstraintAccountsResetToken = "accounts_reset_token_hash_key"
)

// MapPostgresError converts driver errors into domain sentinels. Unique
// violations are resolved by constraint name so callers can tell which field
// collided.
func MapPostgresError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		switch pgErr.ConstraintName {
		case ConstraintAccountsEmail:
			return models.ErrDuplicateEmail
		case ConstraintAccountsHandle:
			return models.ErrDuplicateHandle
		case ConstraintAccountsPhone:
			return models.ErrDuplicatePhone
		}
		return models.ErrConflict
	case pgerrcode.ForeignKeyViolation, pgerrcode.NotNullViolation, pgerrcode.CheckViolation:
		return models.ErrBadRequest
	}

	return err
}
