package account

import (
	"context"

	"github.com/amirasaad/mobank/pkg/domain/account"
	"github.com/google/uuid"
)

// Repository defines account data access. There is no delete: accounts are
// deactivated instead.
type Repository interface {
	// Create inserts a new account. A colliding account number returns
	// domain.ErrDuplicateReference.
	Create(ctx context.Context, acc *account.Account) error

	// Get returns the account or domain.ErrAccountNotFound.
	Get(ctx context.Context, id uuid.UUID) (*account.Account, error)

	// LockForUpdate reads and row-locks the given accounts for the rest of
	// the enclosing transaction. Locks are taken in ascending id order no
	// matter the argument order. Missing ids are absent from the result.
	LockForUpdate(ctx context.Context, ids ...uuid.UUID) (map[uuid.UUID]*account.Account, error)

	// UpdateBalance sets the balance in minor units.
	UpdateBalance(ctx context.Context, id uuid.UUID, balance int64) error

	// SetActive flips the active flag.
	SetActive(ctx context.Context, id uuid.UUID, active bool) error

	// ListByUser lists a user's accounts, oldest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*account.Account, error)

	// IDsByUser lists the ids of every account owned by userID.
	IDsByUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}
