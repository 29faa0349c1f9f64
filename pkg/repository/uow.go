package repository

import (
	"context"

	"github.com/amirasaad/mobank/pkg/repository/account"
	"github.com/amirasaad/mobank/pkg/repository/transaction"
)

// UnitOfWork defines the contract for transactional work and repository access.
//
// Repositories obtained from the UnitOfWork passed to fn share its database
// transaction, so balance changes and the ledger insert commit together.
// Repositories obtained outside Do run in autocommit mode and are meant
// for reads.
type UnitOfWork interface {
	// Do executes fn within a transaction boundary. If fn returns an error,
	// the transaction is rolled back and the error is returned. If the
	// commit itself fails the error wraps domain.ErrOutcomeUnknown.
	Do(ctx context.Context, fn func(uow UnitOfWork) error) error

	AccountRepository() (account.Repository, error)
	TransactionRepository() (transaction.Repository, error)
}
