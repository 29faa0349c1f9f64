package account_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	infrarepo "github.com/amirasaad/mobank/infra/repository"
	"github.com/amirasaad/mobank/internal/fixtures/mocks"
	"github.com/amirasaad/mobank/pkg/currency"
	"github.com/amirasaad/mobank/pkg/domain"
	"github.com/amirasaad/mobank/pkg/domain/account"
	accountsvc "github.com/amirasaad/mobank/pkg/service/account"
	"github.com/amirasaad/mobank/pkg/testutils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func sequence(numbers ...string) accountsvc.NumberFunc {
	i := 0
	return func() (string, error) {
		n := numbers[i%len(numbers)]
		i++
		return n, nil
	}
}

func TestRandomNumber(t *testing.T) {
	for range 100 {
		n, err := accountsvc.RandomNumber()
		require.NoError(t, err)
		assert.True(t, account.ValidNumber(n), n)
	}
}

func TestOpenAccount(t *testing.T) {
	db := testutils.NewSQLiteDB(t)
	svc := accountsvc.New(infrarepo.NewUoW(db), slog.Default())
	owner := uuid.New()

	acc, err := svc.OpenAccount(context.Background(), owner, account.CategorySavings, currency.EUR)
	require.NoError(t, err)
	assert.Equal(t, owner, acc.UserID)
	assert.Equal(t, account.CategorySavings, acc.Category)
	assert.Equal(t, currency.EUR, acc.Currency())
	assert.True(t, acc.Balance.IsZero())
	assert.True(t, acc.Active)
	assert.Len(t, acc.Number, account.NumberLength)

	stored, err := infrarepo.NewAccountRepository(db).Get(context.Background(), acc.ID)
	require.NoError(t, err)
	assert.Equal(t, acc.Number, stored.Number)

	def, err := svc.OpenAccount(context.Background(), owner, "", "")
	require.NoError(t, err)
	assert.Equal(t, account.CategoryChecking, def.Category)
	assert.Equal(t, currency.USD, def.Currency())
}

func TestOpenAccount_Rejects(t *testing.T) {
	svc := accountsvc.New(mocks.NewMockUnitOfWork(t), slog.Default())

	_, err := svc.OpenAccount(context.Background(), uuid.New(), "brokerage", currency.USD)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	_, err = svc.OpenAccount(context.Background(), uuid.New(), account.CategoryChecking, "XYZ")
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestOpenAccount_RetriesNumberCollision(t *testing.T) {
	db := testutils.NewSQLiteDB(t)
	taken := testutils.SeedAccount(t, db, uuid.New(), currency.USD, 0)

	svc := accountsvc.New(infrarepo.NewUoW(db), slog.Default(),
		accountsvc.WithNumberFunc(sequence(taken.Number, taken.Number, "0000000042")))
	acc, err := svc.OpenAccount(context.Background(), uuid.New(), "", "")
	require.NoError(t, err)
	assert.Equal(t, "0000000042", acc.Number)
}

func TestOpenAccount_GivesUpAfterRepeatedCollisions(t *testing.T) {
	db := testutils.NewSQLiteDB(t)
	taken := testutils.SeedAccount(t, db, uuid.New(), currency.USD, 0)

	svc := accountsvc.New(infrarepo.NewUoW(db), slog.Default(),
		accountsvc.WithNumberFunc(sequence(taken.Number)))
	_, err := svc.OpenAccount(context.Background(), uuid.New(), "", "")
	assert.ErrorIs(t, err, domain.ErrDuplicateReference)
}

func TestOpenAccount_StorageFailureIsNotRetried(t *testing.T) {
	uow := mocks.NewMockUnitOfWork(t)
	uow.On("Do", mock.Anything, mock.Anything).Return(nil).Once()
	uow.Accounts.On("Create", mock.Anything, mock.Anything).
		Return(errors.Join(domain.ErrStorageUnavailable, errors.New("dial tcp: refused"))).Once()

	svc := accountsvc.New(uow, slog.Default())
	_, err := svc.OpenAccount(context.Background(), uuid.New(), "", "")
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
}

func TestListAccounts(t *testing.T) {
	db := testutils.NewSQLiteDB(t)
	svc := accountsvc.New(infrarepo.NewUoW(db), slog.Default())
	owner := uuid.New()
	a := testutils.SeedAccount(t, db, owner, currency.USD, 0)
	b := testutils.SeedAccount(t, db, owner, currency.GBP, 0)
	testutils.SeedAccount(t, db, uuid.New(), currency.USD, 0)

	accs, err := svc.ListAccounts(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, accs, 2)
	assert.ElementsMatch(t, []uuid.UUID{a.ID, b.ID}, []uuid.UUID{accs[0].ID, accs[1].ID})

	none, err := svc.ListAccounts(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDeactivateAccount(t *testing.T) {
	db := testutils.NewSQLiteDB(t)
	svc := accountsvc.New(infrarepo.NewUoW(db), slog.Default())
	owner := uuid.New()
	acc := testutils.SeedAccount(t, db, owner, currency.USD, 500)

	_, err := svc.DeactivateAccount(context.Background(), uuid.New(), acc.ID)
	require.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.DeactivateAccount(context.Background(), owner, uuid.New())
	require.ErrorIs(t, err, domain.ErrAccountNotFound)

	got, err := svc.DeactivateAccount(context.Background(), owner, acc.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)

	again, err := svc.DeactivateAccount(context.Background(), owner, acc.ID)
	require.NoError(t, err)
	assert.False(t, again.Active)

	stored, err := infrarepo.NewAccountRepository(db).Get(context.Background(), acc.ID)
	require.NoError(t, err)
	assert.False(t, stored.Active)
	assert.Equal(t, int64(500), stored.Balance.Amount())
}
