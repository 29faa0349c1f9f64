// Package query serves read-only views of accounts and the ledger, scoped
// to what the caller is allowed to see.
package query

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/amirasaad/mobank/pkg/config"
	"github.com/amirasaad/mobank/pkg/currency"
	"github.com/amirasaad/mobank/pkg/domain"
	"github.com/amirasaad/mobank/pkg/domain/account"
	"github.com/amirasaad/mobank/pkg/domain/money"
	"github.com/amirasaad/mobank/pkg/repository"
	accountrepo "github.com/amirasaad/mobank/pkg/repository/account"
	repo "github.com/amirasaad/mobank/pkg/repository/transaction"
	"github.com/google/uuid"
)

// Service answers balance, history and statistics queries.
type Service struct {
	uow    repository.UnitOfWork
	cfg    config.Ledger
	logger *slog.Logger
	now    func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithClock replaces time.Now when placing the statistics window.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a query Service. Zero paging and window settings fall back to
// the config defaults.
func New(uow repository.UnitOfWork, cfg config.Ledger, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 20
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = 100
	}
	if cfg.DefaultStatsWindow <= 0 {
		cfg.DefaultStatsWindow = 30
	}
	if cfg.MaxStatsWindow <= 0 {
		cfg.MaxStatsWindow = 366
	}
	if cfg.RecentCount <= 0 {
		cfg.RecentCount = 5
	}
	s := &Service{uow: uow, cfg: cfg, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Balance is the current state of one account.
type Balance struct {
	AccountID     uuid.UUID
	AccountNumber string
	Category      account.Category
	Balance       money.Money
}

// ListFilter narrows a history listing.
type ListFilter struct {
	Kind      account.Kind
	AccountID *uuid.UUID
}

// PageRequest selects a page either by number or by cursor. A non-empty
// Cursor wins: PageNumber is then ignored and the resulting page reports
// PageNumber 0.
type PageRequest struct {
	PageNumber int
	PageSize   int
	Cursor     string
}

// TransactionPage is one page of history.
type TransactionPage struct {
	Items      []*account.Transaction
	TotalCount int64
	// PageNumber is 0 for pages fetched by cursor.
	PageNumber int
	PageSize   int
	Pages      int
	NextCursor string
}

// StatisticsRequest selects the accounts and window of a summary.
type StatisticsRequest struct {
	AccountID  *uuid.UUID
	WindowDays int
}

// CurrencyTotals are the flows of one currency inside the window.
type CurrencyTotals struct {
	Currency currency.Code
	Inflow   int64
	Outflow  int64
	Net      int64
}

// Statistics summarises the caller's recent activity.
type Statistics struct {
	WindowDays int
	Since      time.Time
	Count      int64
	Totals     []CurrencyTotals
	Recent     []*account.Transaction
}

// GetBalance returns the balance of an account the caller owns.
func (s *Service) GetBalance(ctx context.Context, callerID, accountID uuid.UUID) (result *Balance, err error) {
	logger := s.logger.With("userID", callerID, "accountID", accountID)
	logger.Info("GetBalance started")
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		acc, err := owned(ctx, accounts, callerID, accountID)
		if err != nil {
			return err
		}
		if !acc.Active {
			return fmt.Errorf("%w: account is inactive", domain.ErrAccountNotFound)
		}
		result = &Balance{
			AccountID:     acc.ID,
			AccountNumber: acc.Number,
			Category:      acc.Category,
			Balance:       acc.Balance,
		}
		return nil
	})
	if err != nil {
		logger.Warn("GetBalance failed", "error", err, "code", domain.CodeOf(err))
		return nil, err
	}
	logger.Info("GetBalance successful", "balance", result.Balance.String())
	return result, nil
}

// ListTransactions returns one page of the caller's history, newest first.
func (s *Service) ListTransactions(
	ctx context.Context,
	callerID uuid.UUID,
	filter ListFilter,
	page PageRequest,
) (result *TransactionPage, err error) {
	logger := s.logger.With("userID", callerID, "kind", filter.Kind, "page", page.PageNumber, "limit", page.PageSize)
	logger.Info("ListTransactions started")

	if filter.Kind != "" && !filter.Kind.Valid() {
		return nil, fmt.Errorf("%w: unknown transaction type %q", domain.ErrInvalidRequest, filter.Kind)
	}
	pageNumber, pageSize, err := s.pageBounds(page)
	if err != nil {
		logger.Warn("ListTransactions rejected", "error", err)
		return nil, err
	}
	bounds := repo.Page{Limit: pageSize + 1, Offset: (pageNumber - 1) * pageSize}
	if page.Cursor != "" {
		after, err := DecodeCursor(page.Cursor)
		if err != nil {
			logger.Warn("ListTransactions rejected", "error", err)
			return nil, err
		}
		bounds.After = &after
		bounds.Offset = 0
		pageNumber = 0
	}

	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		ids, err := s.scope(ctx, uow, callerID, filter.AccountID)
		if err != nil {
			return err
		}
		ledger, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		f := repo.Filter{AccountIDs: ids, Kind: filter.Kind}
		total, err := ledger.Count(ctx, f)
		if err != nil {
			return err
		}
		items, err := ledger.List(ctx, f, bounds)
		if err != nil {
			return err
		}

		result = &TransactionPage{
			TotalCount: total,
			PageNumber: pageNumber,
			PageSize:   pageSize,
			Pages:      int((total + int64(pageSize) - 1) / int64(pageSize)),
		}
		if len(items) > pageSize {
			items = items[:pageSize]
			last := items[len(items)-1]
			result.NextCursor = EncodeCursor(repo.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		}
		result.Items = items
		return nil
	})
	if err != nil {
		logger.Warn("ListTransactions failed", "error", err, "code", domain.CodeOf(err))
		return nil, err
	}
	logger.Info("ListTransactions successful", "count", len(result.Items), "total", result.TotalCount)
	return result, nil
}

// GetStatistics summarises the caller's flows over the last WindowDays days.
func (s *Service) GetStatistics(
	ctx context.Context,
	callerID uuid.UUID,
	req StatisticsRequest,
) (result *Statistics, err error) {
	logger := s.logger.With("userID", callerID, "period", req.WindowDays)
	logger.Info("GetStatistics started")

	days := req.WindowDays
	if days == 0 {
		days = s.cfg.DefaultStatsWindow
	}
	if days < 1 || days > s.cfg.MaxStatsWindow {
		err = fmt.Errorf("%w: period must be between 1 and %d days", domain.ErrInvalidRequest, s.cfg.MaxStatsWindow)
		logger.Warn("GetStatistics rejected", "error", err)
		return nil, err
	}
	since := s.now().UTC().AddDate(0, 0, -days).Truncate(time.Microsecond)

	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		ids, err := s.scope(ctx, uow, callerID, req.AccountID)
		if err != nil {
			return err
		}
		ledger, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		f := repo.Filter{AccountIDs: ids, Since: &since}
		count, err := ledger.Count(ctx, f)
		if err != nil {
			return err
		}
		totals, err := ledger.Totals(ctx, f)
		if err != nil {
			return err
		}
		recent, err := ledger.List(ctx, f, repo.Page{Limit: s.cfg.RecentCount})
		if err != nil {
			return err
		}

		result = &Statistics{
			WindowDays: days,
			Since:      since,
			Count:      count,
			Totals:     make([]CurrencyTotals, 0, len(totals)),
			Recent:     recent,
		}
		for _, t := range totals {
			result.Totals = append(result.Totals, CurrencyTotals{
				Currency: t.Currency,
				Inflow:   t.Inflow,
				Outflow:  t.Outflow,
				Net:      t.Inflow - t.Outflow,
			})
		}
		return nil
	})
	if err != nil {
		logger.Warn("GetStatistics failed", "error", err, "code", domain.CodeOf(err))
		return nil, err
	}
	logger.Info("GetStatistics successful", "count", result.Count)
	return result, nil
}

// GetTransaction returns one record if it touches an account the caller
// owns. Records the caller cannot see are reported as not found.
func (s *Service) GetTransaction(
	ctx context.Context,
	callerID, transactionID uuid.UUID,
) (result *account.Transaction, err error) {
	logger := s.logger.With("userID", callerID, "transactionID", transactionID)
	logger.Info("GetTransaction started")
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		ledger, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		tx, err := ledger.Get(ctx, transactionID)
		if err != nil {
			return err
		}
		ids, err := accounts.IDsByUser(ctx, callerID)
		if err != nil {
			return err
		}
		if !slices.ContainsFunc(ids, tx.Touches) {
			return domain.ErrTransactionNotFound
		}
		result = tx
		return nil
	})
	if err != nil {
		logger.Warn("GetTransaction failed", "error", err, "code", domain.CodeOf(err))
		return nil, err
	}
	logger.Info("GetTransaction successful", "reference", result.Reference)
	return result, nil
}

func (s *Service) pageBounds(page PageRequest) (number, size int, err error) {
	number, size = page.PageNumber, page.PageSize
	if number == 0 {
		number = 1
	}
	if size == 0 {
		size = s.cfg.DefaultPageSize
	}
	if number < 1 {
		return 0, 0, fmt.Errorf("%w: page must be at least 1", domain.ErrInvalidRequest)
	}
	if size < 1 {
		return 0, 0, fmt.Errorf("%w: limit must be at least 1", domain.ErrInvalidRequest)
	}
	if size > s.cfg.MaxPageSize {
		size = s.cfg.MaxPageSize
	}
	return number, size, nil
}

// scope resolves the account ids whose history the caller may read: the
// single filtered account, or every account the caller owns.
func (s *Service) scope(
	ctx context.Context,
	uow repository.UnitOfWork,
	callerID uuid.UUID,
	accountID *uuid.UUID,
) ([]uuid.UUID, error) {
	accounts, err := uow.AccountRepository()
	if err != nil {
		return nil, err
	}
	if accountID == nil {
		return accounts.IDsByUser(ctx, callerID)
	}
	acc, err := owned(ctx, accounts, callerID, *accountID)
	if err != nil {
		return nil, err
	}
	return []uuid.UUID{acc.ID}, nil
}

func owned(ctx context.Context, accounts accountrepo.Repository, callerID, accountID uuid.UUID) (*account.Account, error) {
	acc, err := accounts.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if acc.UserID != callerID {
		return nil, fmt.Errorf("%w: account belongs to another user", domain.ErrForbidden)
	}
	return acc, nil
}
