package repositories

import (
	"context"
	"time"

	"github.com/lanceraa/api/internal/models"
)

// AccountStore defines persistence operations for accounts
type AccountStore interface {
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	GetByID(ctx context.Context, id string) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	GetByHandle(ctx context.Context, handle string) (*models.Account, error)
	GetByPhone(ctx context.Context, phone string) (*models.Account, error)
	GetByResetTokenHash(ctx context.Context, hash string) (*models.Account, error)
	HandleExists(ctx context.Context, handle string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Save(ctx context.Context, account *models.Account) (*models.Account, error)
	ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)
}

// ProfileStore defines persistence operations for profiles
type ProfileStore interface {
	GetByAccountID(ctx context.Context, accountID string) (*models.Profile, error)
	EnsureExists(ctx context.Context, accountID string) (*models.Profile, error)
	Save(ctx context.Context, profile *models.Profile) (*models.Profile, error)
}

// TxFunc is a unit of work run against repositories sharing one transaction
type TxFunc func(accounts AccountStore, profiles ProfileStore) error
