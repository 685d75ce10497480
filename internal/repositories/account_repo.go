package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lanceraa/api/internal/database"
	"github.com/lanceraa/api/internal/models"
)

const accountColumns = `id, handle, email, phone, password_hash, first_name, last_name, role,
	active, verified, profile_completed,
	verification_code, verification_code_expires_at,
	reset_token_hash, reset_token_expires_at,
	password_changed_at, created_at, updated_at, last_login_at`

type AccountRepository struct {
	db database.Querier
}

// NewAccountRepository binds the repository to a pool or a transaction
func NewAccountRepository(db database.Querier) *AccountRepository {
	return &AccountRepository{db: db}
}

// rowScanner interface for scanning rows (supports both single row and multiple rows)
type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccountRow(scanner rowScanner) (*models.Account, error) {
	var a models.Account
	var phone, code, resetHash *string

	err := scanner.Scan(
		&a.ID, &a.Handle, &a.Email, &phone, &a.PasswordHash, &a.FirstName, &a.LastName, &a.Role,
		&a.Active, &a.Verified, &a.ProfileCompleted,
		&code, &a.VerificationCodeExpiresAt,
		&resetHash, &a.ResetTokenExpiresAt,
		&a.PasswordChangedAt, &a.CreatedAt, &a.UpdatedAt, &a.LastLoginAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	a.Phone = deref(phone)
	a.VerificationCode = deref(code)
	a.ResetTokenHash = deref(resetHash)

	return &a, nil
}

func (r *AccountRepository) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	a.ID = uuid.New().String()

	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now

	if a.Role == "" {
		a.Role = models.RoleUser
	}

	query := `
		INSERT INTO accounts (id, handle, email, phone, password_hash, first_name, last_name, role,
			active, verified, profile_completed, verification_code, verification_code_expires_at,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING ` + accountColumns

	return scanAccountRow(r.db.QueryRow(ctx, query,
		a.ID, a.Handle, a.Email, nullable(a.Phone), a.PasswordHash, a.FirstName, a.LastName, a.Role,
		a.Active, a.Verified, a.ProfileCompleted, nullable(a.VerificationCode), a.VerificationCodeExpiresAt,
		a.CreatedAt, a.UpdatedAt,
	))
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, models.ErrNotFound
	}
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return scanAccountRow(r.db.QueryRow(ctx, query, id))
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	return scanAccountRow(r.db.QueryRow(ctx, query, email))
}

func (r *AccountRepository) GetByHandle(ctx context.Context, handle string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE handle = $1`
	return scanAccountRow(r.db.QueryRow(ctx, query, handle))
}

func (r *AccountRepository) GetByPhone(ctx context.Context, phone string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE phone = $1`
	return scanAccountRow(r.db.QueryRow(ctx, query, phone))
}

// GetByResetTokenHash looks up the account holding the given reset token fingerprint
func (r *AccountRepository) GetByResetTokenHash(ctx context.Context, hash string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE reset_token_hash = $1`
	return scanAccountRow(r.db.QueryRow(ctx, query, hash))
}

func (r *AccountRepository) HandleExists(ctx context.Context, handle string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM accounts WHERE handle = $1)`, handle).Scan(&exists)
	if err != nil {
		return false, database.MapPostgresError(err)
	}
	return exists, nil
}

func (r *AccountRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM accounts WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, database.MapPostgresError(err)
	}
	return exists, nil
}

// Save persists every mutable column of the account and returns the stored row
func (r *AccountRepository) Save(ctx context.Context, a *models.Account) (*models.Account, error) {
	a.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE accounts SET
			handle = $1, phone = $2, password_hash = $3, first_name = $4, last_name = $5, role = $6,
			active = $7, verified = $8, profile_completed = $9,
			verification_code = $10, verification_code_expires_at = $11,
			reset_token_hash = $12, reset_token_expires_at = $13,
			password_changed_at = $14, last_login_at = $15, updated_at = $16
		WHERE id = $17
		RETURNING ` + accountColumns

	return scanAccountRow(r.db.QueryRow(ctx, query,
		a.Handle, nullable(a.Phone), a.PasswordHash, a.FirstName, a.LastName, a.Role,
		a.Active, a.Verified, a.ProfileCompleted,
		nullable(a.VerificationCode), a.VerificationCodeExpiresAt,
		nullable(a.ResetTokenHash), a.ResetTokenExpiresAt,
		a.PasswordChangedAt, a.LastLoginAt, a.UpdatedAt,
		a.ID,
	))
}

// ClearExpiredResetTokens drops reset tokens whose expiry has passed and
// returns the number of accounts touched
func (r *AccountRepository) ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE accounts SET reset_token_hash = NULL, reset_token_expires_at = NULL, updated_at = $1
		WHERE reset_token_hash IS NOT NULL AND reset_token_expires_at < $1
	`

	result, err := r.db.Exec(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("failed to clear expired reset tokens: %w", database.MapPostgresError(err))
	}

	return result.RowsAffected(), nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
