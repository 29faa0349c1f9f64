package transaction

import (
	"context"
	"time"

	"github.com/amirasaad/mobank/pkg/currency"
	"github.com/amirasaad/mobank/pkg/domain/account"
	"github.com/google/uuid"
)

// Filter selects ledger entries that touch any of AccountIDs as source or
// destination. An empty AccountIDs matches nothing.
type Filter struct {
	AccountIDs []uuid.UUID
	Kind       account.Kind
	Since      *time.Time
}

// Cursor is the sort key of the last row a client has seen.
type Cursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

// Page bounds a listing. Rows are ordered created_at DESC, id DESC. When
// After is set, Offset is ignored and rows strictly after the cursor are
// returned.
type Page struct {
	Limit  int
	Offset int
	After  *Cursor
}

// Totals are the summed flows of one currency.
type Totals struct {
	Currency currency.Code
	Inflow   int64
	Outflow  int64
}

// Repository defines ledger data access. Records are append-only: there is
// no update or delete.
type Repository interface {
	// Create inserts a new record. A reference or idempotency key
	// collision returns domain.ErrDuplicateReference.
	Create(ctx context.Context, tx *account.Transaction) error

	// Get returns the record or domain.ErrTransactionNotFound.
	Get(ctx context.Context, id uuid.UUID) (*account.Transaction, error)

	// GetByIdempotencyKey returns the record the caller stored under key,
	// or domain.ErrTransactionNotFound.
	GetByIdempotencyKey(ctx context.Context, initiatedBy uuid.UUID, key string) (*account.Transaction, error)

	// List returns one page of matching records.
	List(ctx context.Context, filter Filter, page Page) ([]*account.Transaction, error)

	// Count returns the number of matching records.
	Count(ctx context.Context, filter Filter) (int64, error)

	// Totals sums inflow and outflow per currency for the accounts in the
	// filter. Inflow is deposits into them and transfers received by them;
	// outflow is every debit taken from them.
	Totals(ctx context.Context, filter Filter) ([]Totals, error)
}
