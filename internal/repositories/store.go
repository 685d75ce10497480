package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/lanceraa/api/internal/database"
)

// Store hands out repositories bound to the pool, or to a single transaction
// via WithinTransaction.
type Store struct {
	db       *database.DB
	accounts *AccountRepository
	profiles *ProfileRepository
}

func NewStore(db *database.DB) *Store {
	return &Store{
		db:       db,
		accounts: NewAccountRepository(db.Pool),
		profiles: NewProfileRepository(db.Pool),
	}
}

func (s *Store) Accounts() AccountStore {
	return s.accounts
}

func (s *Store) Profiles() ProfileStore {
	return s.profiles
}

// WithinTransaction runs fn with repositories that share one transaction.
// Any error returned by fn rolls the whole unit back.
func (s *Store) WithinTransaction(ctx context.Context, fn TxFunc) error {
	return s.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		return fn(NewAccountRepository(tx), NewProfileRepository(tx))
	})
}
