package repository

import (
	"context"
	"fmt"

	"github.com/amirasaad/mobank/pkg/domain"
	"github.com/amirasaad/mobank/pkg/repository"
	"github.com/amirasaad/mobank/pkg/repository/account"
	"github.com/amirasaad/mobank/pkg/repository/transaction"
	"gorm.io/gorm"
)

// UoW provides transaction boundary and repository access in one abstraction.
// Repositories handed out by a UoW share its session, so every write made
// inside Do commits or rolls back together.
type UoW struct {
	db *gorm.DB
}

// NewUoW creates a new UoW for the given *gorm.DB.
func NewUoW(db *gorm.DB) *UoW {
	return &UoW{db: db}
}

// Do runs fn in a database transaction. A failure inside fn rolls back and
// is returned through MapGormErrorToDomain. A failure after fn succeeded
// can only come from COMMIT, whose effect is then unknown, so it is
// reported as domain.ErrOutcomeUnknown.
func (u *UoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	fnDone := false
	err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := fn(&UoW{db: tx}); err != nil {
			return err
		}
		fnDone = true
		return nil
	})
	if err == nil {
		return nil
	}
	if fnDone {
		return fmt.Errorf("%w: commit: %v", domain.ErrOutcomeUnknown, err)
	}
	return MapGormErrorToDomain(err)
}

// AccountRepository returns an account repository bound to the UoW session.
func (u *UoW) AccountRepository() (account.Repository, error) {
	return NewAccountRepository(u.db), nil
}

// TransactionRepository returns a ledger repository bound to the UoW session.
func (u *UoW) TransactionRepository() (transaction.Repository, error) {
	return NewTransactionRepository(u.db), nil
}
