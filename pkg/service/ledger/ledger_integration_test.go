package ledger_test

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	infrarepo "github.com/amirasaad/mobank/infra/repository"
	"github.com/amirasaad/mobank/pkg/config"
	"github.com/amirasaad/mobank/pkg/currency"
	"github.com/amirasaad/mobank/pkg/domain"
	"github.com/amirasaad/mobank/pkg/domain/account"
	"github.com/amirasaad/mobank/pkg/service/ledger"
	"github.com/amirasaad/mobank/pkg/testutils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type EngineTestSuite struct {
	suite.Suite
	ctx    context.Context
	db     *gorm.DB
	engine *ledger.Engine
	owner  uuid.UUID
}

func ticker() func() time.Time {
	var n atomic.Int64
	base := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	return func() time.Time {
		return base.Add(time.Duration(n.Add(1)) * time.Second)
	}
}

func (s *EngineTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.db = testutils.NewSQLiteDB(s.T())
	s.owner = uuid.New()
	s.engine = ledger.New(
		infrarepo.NewUoW(s.db),
		config.Ledger{MaxRetries: 3, RetryInterval: time.Millisecond},
		slog.Default(),
		ledger.WithClock(ticker()),
	)
}

func (s *EngineTestSuite) entries(id uuid.UUID) int64 {
	var n int64
	s.Require().NoError(s.db.Model(&infrarepo.Transaction{}).
		Where("source_account_id = ? OR destination_account_id = ?", id, id).
		Count(&n).Error)
	return n
}

func (s *EngineTestSuite) TestDepositAndWithdrawal() {
	acc := testutils.SeedAccount(s.T(), s.db, s.owner, currency.USD, 0)

	dep, err := s.engine.ExecuteTransaction(s.ctx, ledger.Request{
		CallerID: s.owner, Kind: account.KindDeposit, Amount: "250.75", SourceAccountID: acc.ID,
	})
	s.Require().NoError(err)
	s.Equal(int64(25075), dep.Amount.Amount())
	s.Equal(int64(25075), testutils.Balance(s.T(), s.db, acc.ID))

	_, err = s.engine.ExecuteTransaction(s.ctx, ledger.Request{
		CallerID: s.owner, Kind: account.KindWithdrawal, Amount: "50.75", SourceAccountID: acc.ID,
	})
	s.Require().NoError(err)
	s.Equal(int64(20000), testutils.Balance(s.T(), s.db, acc.ID))

	stored, err := infrarepo.NewTransactionRepository(s.db).Get(s.ctx, dep.ID)
	s.Require().NoError(err)
	s.Equal(dep.Reference, stored.Reference)
	s.Equal(dep.CreatedAt, stored.CreatedAt)
	s.Regexp(`^TXN20250301080001[A-Z2-7]{10}$`, stored.Reference)
}

func (s *EngineTestSuite) TestInternalTransferMovesBothBalances() {
	src := testutils.SeedAccount(s.T(), s.db, s.owner, currency.EUR, 10000)
	dst := testutils.SeedAccount(s.T(), s.db, uuid.New(), currency.EUR, 100)

	dstID := dst.ID
	tx, err := s.engine.ExecuteTransaction(s.ctx, ledger.Request{
		CallerID: s.owner, Kind: account.KindTransfer, Amount: "99.99",
		SourceAccountID: src.ID, DestinationAccountID: &dstID, Description: "rent",
	})
	s.Require().NoError(err)
	s.Equal(int64(1), testutils.Balance(s.T(), s.db, src.ID))
	s.Equal(int64(10099), testutils.Balance(s.T(), s.db, dst.ID))

	stored, err := infrarepo.NewTransactionRepository(s.db).Get(s.ctx, tx.ID)
	s.Require().NoError(err)
	s.Equal(src.Number, stored.SourceAccountNumber)
	s.Equal(dst.Number, stored.DestinationAccountNumber)
}

func (s *EngineTestSuite) TestExternalTransferAndPayment() {
	src := testutils.SeedAccount(s.T(), s.db, s.owner, currency.USD, 10000)

	_, err := s.engine.ExecuteTransaction(s.ctx, ledger.Request{
		CallerID: s.owner, Kind: account.KindTransfer, Amount: "10", SourceAccountID: src.ID,
	})
	s.ErrorIs(err, domain.ErrInvalidRequest)

	tx, err := s.engine.ExecuteTransaction(s.ctx, ledger.Request{
		CallerID: s.owner, Kind: account.KindTransfer, Amount: "10", SourceAccountID: src.ID,
		CounterpartyEmail: "jane@example.com",
	})
	s.Require().NoError(err)
	s.Nil(tx.DestinationAccountID)
	s.Equal(src.Number, tx.SourceAccountNumber)
	s.Empty(tx.DestinationAccountNumber)

	_, err = s.engine.ExecuteTransaction(s.ctx, ledger.Request{
		CallerID: s.owner, Kind: account.KindPayment, Amount: "5", SourceAccountID: src.ID,
		CounterpartyName: "Power Co",
	})
	s.Require().NoError(err)
	s.Equal(int64(8500), testutils.Balance(s.T(), s.db, src.ID))
	s.Equal(int64(2), s.entries(src.ID))
}

func (s *EngineTestSuite) TestRejectionsLeaveNoTrace() {
	src := testutils.SeedAccount(s.T(), s.db, s.owner, currency.USD, 1000)
	eur := testutils.SeedAccount(s.T(), s.db, uuid.New(), currency.EUR, 0)
	foreign := testutils.SeedAccount(s.T(), s.db, uuid.New(), currency.USD, 1000)
	eurID := eur.ID

	cases := []struct {
		name string
		req  ledger.Request
		want error
	}{
		{"insufficient funds", ledger.Request{
			Kind: account.KindWithdrawal, Amount: "10.01", SourceAccountID: src.ID,
		}, domain.ErrInsufficientFunds},
		{"currency mismatch", ledger.Request{
			Kind: account.KindTransfer, Amount: "1", SourceAccountID: src.ID, DestinationAccountID: &eurID,
		}, domain.ErrInvalidRequest},
		{"unknown source", ledger.Request{
			Kind: account.KindDeposit, Amount: "1", SourceAccountID: uuid.New(),
		}, domain.ErrAccountNotFound},
		{"someone else's account", ledger.Request{
			Kind: account.KindWithdrawal, Amount: "1", SourceAccountID: foreign.ID,
		}, domain.ErrAccountNotFound},
		{"too precise", ledger.Request{
			Kind: account.KindDeposit, Amount: "1.001", SourceAccountID: src.ID,
		}, domain.ErrInvalidRequest},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			tc.req.CallerID = s.owner
			_, err := s.engine.ExecuteTransaction(s.ctx, tc.req)
			s.ErrorIs(err, tc.want)
		})
	}

	s.Equal(int64(1000), testutils.Balance(s.T(), s.db, src.ID))
	s.Equal(int64(1000), testutils.Balance(s.T(), s.db, foreign.ID))
	s.Equal(int64(0), testutils.Balance(s.T(), s.db, eur.ID))
	s.Equal(int64(0), s.entries(src.ID))
}

func (s *EngineTestSuite) TestInactiveSourceIsNotFound() {
	src := testutils.SeedAccount(s.T(), s.db, s.owner, currency.USD, 1000)
	s.Require().NoError(infrarepo.NewAccountRepository(s.db).SetActive(s.ctx, src.ID, false))

	_, err := s.engine.ExecuteTransaction(s.ctx, ledger.Request{
		CallerID: s.owner, Kind: account.KindDeposit, Amount: "1", SourceAccountID: src.ID,
	})
	s.ErrorIs(err, domain.ErrAccountNotFound)
}

func (s *EngineTestSuite) TestFailedInsertRollsBackBalances() {
	src := testutils.SeedAccount(s.T(), s.db, s.owner, currency.USD, 10000)
	dst := testutils.SeedAccount(s.T(), s.db, uuid.New(), currency.USD, 0)

	first, err := s.engine.ExecuteTransaction(s.ctx, ledger.Request{
		CallerID: s.owner, Kind: account.KindDeposit, Amount: "1", SourceAccountID: src.ID,
	})
	s.Require().NoError(err)

	clashing := ledger.New(
		infrarepo.NewUoW(s.db),
		config.Ledger{MaxRetries: 1, RetryInterval: time.Millisecond},
		slog.Default(),
		ledger.WithReferenceFunc(func(time.Time) (string, error) { return first.Reference, nil }),
	)
	dstID := dst.ID
	_, err = clashing.ExecuteTransaction(s.ctx, ledger.Request{
		CallerID: s.owner, Kind: account.KindTransfer, Amount: "40",
		SourceAccountID: src.ID, DestinationAccountID: &dstID,
	})
	s.ErrorIs(err, domain.ErrStorageUnavailable)
	s.NotErrorIs(err, domain.ErrDuplicateReference)
	s.Equal(domain.CodeStorageUnavailable, domain.CodeOf(err))
	s.Equal(int64(10100), testutils.Balance(s.T(), s.db, src.ID))
	s.Equal(int64(0), testutils.Balance(s.T(), s.db, dst.ID))
	s.Equal(int64(1), s.entries(src.ID))
}

func (s *EngineTestSuite) TestIdempotentReplay() {
	src := testutils.SeedAccount(s.T(), s.db, s.owner, currency.USD, 10000)
	req := ledger.Request{
		CallerID: s.owner, Kind: account.KindWithdrawal, Amount: "20",
		SourceAccountID: src.ID, IdempotencyKey: "atm-42",
	}

	first, err := s.engine.ExecuteTransaction(s.ctx, req)
	s.Require().NoError(err)
	again, err := s.engine.ExecuteTransaction(s.ctx, req)
	s.Require().NoError(err)
	s.Equal(first.ID, again.ID)
	s.Equal(first.Reference, again.Reference)
	s.Equal(int64(8000), testutils.Balance(s.T(), s.db, src.ID))

	req.Amount = "21"
	_, err = s.engine.ExecuteTransaction(s.ctx, req)
	s.ErrorIs(err, domain.ErrInvalidRequest)
	s.Equal(int64(1), s.entries(src.ID))
}

func (s *EngineTestSuite) TestConcurrentDebitsNeverOverdraw() {
	src := testutils.SeedAccount(s.T(), s.db, s.owner, currency.USD, 10000)

	const workers = 20
	var (
		wg        sync.WaitGroup
		succeeded atomic.Int64
		declined  atomic.Int64
	)
	for i := range workers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.engine.ExecuteTransaction(s.ctx, ledger.Request{
				CallerID: s.owner, Kind: account.KindWithdrawal, Amount: "10",
				SourceAccountID: src.ID, Description: fmt.Sprintf("worker %d", i),
			})
			switch {
			case err == nil:
				succeeded.Add(1)
			case domain.CodeOf(err) == domain.CodeInsufficientFunds:
				declined.Add(1)
			}
		}(i)
	}
	wg.Wait()

	s.Equal(int64(10), succeeded.Load())
	s.Equal(int64(10), declined.Load())
	s.Equal(int64(0), testutils.Balance(s.T(), s.db, src.ID))
	s.Equal(int64(10), s.entries(src.ID))
}

func TestConcurrentWithdrawals_PooledConnections(t *testing.T) {
	db := testutils.NewConcurrentSQLiteDB(t, 8)
	owner := uuid.New()
	acc := testutils.SeedAccount(t, db, owner, currency.USD, 10000)
	engine := ledger.New(
		infrarepo.NewUoW(db),
		config.Ledger{MaxRetries: 10, RetryInterval: 2 * time.Millisecond, RequestTimeout: 30 * time.Second},
		slog.Default(),
	)

	succeeded, declined, other := raceWithdrawals(engine, owner, acc.ID, "10.00", 20)

	assert.Equal(t, int64(10), succeeded)
	assert.Equal(t, int64(10), declined)
	assert.Zero(t, other)
	assert.Equal(t, int64(0), testutils.Balance(t, db, acc.ID))
}

func TestEngineTestSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}
