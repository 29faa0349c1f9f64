// Package mocks holds testify mocks of the repository contracts.
package mocks

import (
	"context"
	"testing"

	"github.com/amirasaad/mobank/pkg/domain/account"
	"github.com/amirasaad/mobank/pkg/repository"
	accountrepo "github.com/amirasaad/mobank/pkg/repository/account"
	txrepo "github.com/amirasaad/mobank/pkg/repository/transaction"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockUnitOfWork is a mock of repository.UnitOfWork. Do runs fn against the
// mock itself and, when fn succeeds, returns the error configured on the
// "Do" expectation, which simulates a failed commit.
type MockUnitOfWork struct {
	mock.Mock
	Accounts     *MockAccountRepository
	Transactions *MockTransactionRepository
}

// NewMockUnitOfWork builds a UoW mock wired to fresh repository mocks and
// asserts every expectation when the test ends.
func NewMockUnitOfWork(t *testing.T) *MockUnitOfWork {
	m := &MockUnitOfWork{
		Accounts:     NewMockAccountRepository(t),
		Transactions: NewMockTransactionRepository(t),
	}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockUnitOfWork) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	args := m.Called(ctx, fn)
	if err := fn(m); err != nil {
		return err
	}
	return args.Error(0)
}

func (m *MockUnitOfWork) AccountRepository() (accountrepo.Repository, error) {
	return m.Accounts, nil
}

func (m *MockUnitOfWork) TransactionRepository() (txrepo.Repository, error) {
	return m.Transactions, nil
}

// MockAccountRepository is a mock of account.Repository.
type MockAccountRepository struct {
	mock.Mock
}

func NewMockAccountRepository(t *testing.T) *MockAccountRepository {
	m := &MockAccountRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockAccountRepository) Create(ctx context.Context, acc *account.Account) error {
	return m.Called(ctx, acc).Error(0)
}

func (m *MockAccountRepository) Get(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	args := m.Called(ctx, id)
	acc, _ := args.Get(0).(*account.Account)
	return acc, args.Error(1)
}

func (m *MockAccountRepository) LockForUpdate(
	ctx context.Context,
	ids ...uuid.UUID,
) (map[uuid.UUID]*account.Account, error) {
	args := m.Called(ctx, ids)
	locked, _ := args.Get(0).(map[uuid.UUID]*account.Account)
	return locked, args.Error(1)
}

func (m *MockAccountRepository) UpdateBalance(ctx context.Context, id uuid.UUID, balance int64) error {
	return m.Called(ctx, id, balance).Error(0)
}

func (m *MockAccountRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return m.Called(ctx, id, active).Error(0)
}

func (m *MockAccountRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*account.Account, error) {
	args := m.Called(ctx, userID)
	list, _ := args.Get(0).([]*account.Account)
	return list, args.Error(1)
}

func (m *MockAccountRepository) IDsByUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, userID)
	ids, _ := args.Get(0).([]uuid.UUID)
	return ids, args.Error(1)
}

// MockTransactionRepository is a mock of transaction.Repository.
type MockTransactionRepository struct {
	mock.Mock
}

func NewMockTransactionRepository(t *testing.T) *MockTransactionRepository {
	m := &MockTransactionRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx *account.Transaction) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockTransactionRepository) Get(ctx context.Context, id uuid.UUID) (*account.Transaction, error) {
	args := m.Called(ctx, id)
	tx, _ := args.Get(0).(*account.Transaction)
	return tx, args.Error(1)
}

func (m *MockTransactionRepository) GetByIdempotencyKey(
	ctx context.Context,
	initiatedBy uuid.UUID,
	key string,
) (*account.Transaction, error) {
	args := m.Called(ctx, initiatedBy, key)
	tx, _ := args.Get(0).(*account.Transaction)
	return tx, args.Error(1)
}

func (m *MockTransactionRepository) List(
	ctx context.Context,
	filter txrepo.Filter,
	page txrepo.Page,
) ([]*account.Transaction, error) {
	args := m.Called(ctx, filter, page)
	list, _ := args.Get(0).([]*account.Transaction)
	return list, args.Error(1)
}

func (m *MockTransactionRepository) Count(ctx context.Context, filter txrepo.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTransactionRepository) Totals(ctx context.Context, filter txrepo.Filter) ([]txrepo.Totals, error) {
	args := m.Called(ctx, filter)
	totals, _ := args.Get(0).([]txrepo.Totals)
	return totals, args.Error(1)
}
