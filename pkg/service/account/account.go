// Package account opens, lists and deactivates customer accounts.
package account

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/amirasaad/mobank/pkg/currency"
	"github.com/amirasaad/mobank/pkg/domain"
	"github.com/amirasaad/mobank/pkg/domain/account"
	"github.com/amirasaad/mobank/pkg/repository"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
)

const maxNumberRetries = 4

// NumberFunc generates a candidate account number.
type NumberFunc func() (string, error)

// Service manages the account lifecycle.
type Service struct {
	uow       repository.UnitOfWork
	logger    *slog.Logger
	newNumber NumberFunc
	now       func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithNumberFunc replaces RandomNumber.
func WithNumberFunc(fn NumberFunc) Option {
	return func(s *Service) { s.newNumber = fn }
}

// New creates an account Service.
func New(uow repository.UnitOfWork, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{uow: uow, logger: logger, newNumber: RandomNumber, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RandomNumber returns ten uniformly random decimal digits.
func RandomNumber() (string, error) {
	limit := big.NewInt(10_000_000_000)
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", account.NumberLength, n), nil
}

// OpenAccount creates an active, empty account for the caller. Empty
// category and currency default to checking and USD.
func (s *Service) OpenAccount(
	ctx context.Context,
	callerID uuid.UUID,
	category account.Category,
	code currency.Code,
) (*account.Account, error) {
	logger := s.logger.With("userID", callerID, "category", category, "currency", code)
	logger.Info("OpenAccount started")

	if category == "" {
		category = account.CategoryChecking
	}
	if code == "" {
		code = currency.DefaultCurrency
	}
	if !category.Valid() {
		err := fmt.Errorf("%w: unknown account category %q", domain.ErrInvalidRequest, category)
		logger.Warn("OpenAccount rejected", "error", err)
		return nil, err
	}
	if !currency.IsSupported(code) {
		err := fmt.Errorf("%w: unsupported currency %q", domain.ErrInvalidRequest, code)
		logger.Warn("OpenAccount rejected", "error", err)
		return nil, err
	}

	attempt := 0
	op := func() (*account.Account, error) {
		attempt++
		number, err := s.newNumber()
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		now := s.now().UTC().Truncate(time.Microsecond)
		acc, err := account.New().
			WithUserID(callerID).
			WithNumber(number).
			WithCategory(category).
			WithCurrency(code).
			WithCreatedAt(now).
			WithUpdatedAt(now).
			Build()
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err))
		}
		err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
			accounts, err := uow.AccountRepository()
			if err != nil {
				return err
			}
			return accounts.Create(ctx, acc)
		})
		if errors.Is(err, domain.ErrDuplicateReference) {
			logger.Warn("OpenAccount number collision", "attempt", attempt)
			return nil, err
		}
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		return acc, nil
	}

	b := backoff.WithContext(backoff.WithMaxRetries(&backoff.ZeroBackOff{}, maxNumberRetries), ctx)
	acc, err := backoff.RetryWithData(op, b)
	if err != nil {
		logger.Error("OpenAccount failed", "error", err, "code", domain.CodeOf(err), "attempts", attempt)
		return nil, err
	}
	logger.Info("OpenAccount successful", "accountID", acc.ID, "number", acc.Number)
	return acc, nil
}

// ListAccounts returns every account the caller owns, active or not.
func (s *Service) ListAccounts(ctx context.Context, callerID uuid.UUID) (accs []*account.Account, err error) {
	logger := s.logger.With("userID", callerID)
	logger.Info("ListAccounts started")
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		accs, err = accounts.ListByUser(ctx, callerID)
		return err
	})
	if err != nil {
		logger.Error("ListAccounts failed", "error", err)
		return nil, err
	}
	logger.Info("ListAccounts successful", "count", len(accs))
	return accs, nil
}

// DeactivateAccount stops an owned account from taking part in new
// transactions. Its history stays readable. Deactivating twice is a no-op.
func (s *Service) DeactivateAccount(ctx context.Context, callerID, accountID uuid.UUID) (acc *account.Account, err error) {
	logger := s.logger.With("userID", callerID, "accountID", accountID)
	logger.Info("DeactivateAccount started")
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		locked, err := accounts.LockForUpdate(ctx, accountID)
		if err != nil {
			return err
		}
		acc = locked[accountID]
		if acc == nil {
			return domain.ErrAccountNotFound
		}
		if acc.UserID != callerID {
			return fmt.Errorf("%w: account belongs to another user", domain.ErrForbidden)
		}
		if !acc.Active {
			return nil
		}
		if err := accounts.SetActive(ctx, accountID, false); err != nil {
			return err
		}
		acc.Active = false
		return nil
	})
	if err != nil {
		logger.Warn("DeactivateAccount failed", "error", err, "code", domain.CodeOf(err))
		return nil, err
	}
	logger.Info("DeactivateAccount successful")
	return acc, nil
}
