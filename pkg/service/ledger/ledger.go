// Package ledger is the transaction engine: it validates a money movement,
// applies it to one or two account balances and appends the ledger entry,
// all inside one unit of work.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/mobank/pkg/config"
	"github.com/amirasaad/mobank/pkg/domain"
	"github.com/amirasaad/mobank/pkg/domain/account"
	"github.com/amirasaad/mobank/pkg/domain/money"
	"github.com/amirasaad/mobank/pkg/repository"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
)

// Engine executes ledger transactions.
type Engine struct {
	uow          repository.UnitOfWork
	logger       *slog.Logger
	cfg          config.Ledger
	now          func() time.Time
	newReference ReferenceFunc
}

// Option customises an Engine.
type Option func(*Engine)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithReferenceFunc replaces NewReference.
func WithReferenceFunc(fn ReferenceFunc) Option {
	return func(e *Engine) { e.newReference = fn }
}

// New creates an Engine.
func New(uow repository.UnitOfWork, cfg config.Ledger, logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		uow:          uow,
		logger:       logger,
		cfg:          cfg,
		now:          time.Now,
		newReference: NewReference,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExecuteTransaction validates req and, if it passes, commits the balance
// change(s) and the ledger entry atomically. It returns the committed
// entry. Collisions and pre-commit storage failures are retried with
// exponential backoff; business rejections and failed commits are not.
// Collisions that outlast the retries surface as ErrStorageUnavailable.
//
// A request carrying an idempotency key the caller already used returns
// the stored entry without moving money again.
func (e *Engine) ExecuteTransaction(ctx context.Context, req Request) (*account.Transaction, error) {
	logger := e.logger.With(
		"userID", req.CallerID,
		"kind", req.Kind,
		"sourceAccountID", req.SourceAccountID,
		"amount", req.Amount,
	)
	if req.DestinationAccountID != nil {
		logger = logger.With("destinationAccountID", *req.DestinationAccountID)
	}
	logger.Info("ExecuteTransaction started")

	if err := req.Validate(); err != nil {
		logger.Warn("ExecuteTransaction rejected", "error", err)
		return nil, err
	}

	if e.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.RequestTimeout)
		defer cancel()
	}

	attempt := 0
	op := func() (*account.Transaction, error) {
		attempt++
		tx, replayed, err := e.execute(ctx, req)
		if err == nil {
			if replayed {
				logger.Info("ExecuteTransaction replayed", "reference", tx.Reference, "transactionID", tx.ID)
			}
			return tx, nil
		}
		if domain.IsRetryable(err) {
			return nil, err
		}
		return nil, backoff.Permanent(err)
	}
	notify := func(err error, wait time.Duration) {
		logger.Warn("ExecuteTransaction retrying", "attempt", attempt, "wait", wait, "error", err)
	}

	tx, err := backoff.RetryNotifyWithData(op, e.backOff(ctx), notify)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			if domain.CodeOf(err) == domain.CodeInternal {
				err = fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
			}
		}
		if errors.Is(err, domain.ErrDuplicateReference) {
			logger.Error("ExecuteTransaction reference collisions exhausted", "error", err, "attempts", attempt)
			err = fmt.Errorf("%w: could not allocate a unique reference after %d attempts",
				domain.ErrStorageUnavailable, attempt)
		}
		switch {
		case domain.IsBusiness(err):
			logger.Warn("ExecuteTransaction rejected", "error", err, "code", domain.CodeOf(err))
		default:
			logger.Error("ExecuteTransaction failed", "error", err, "code", domain.CodeOf(err), "attempts", attempt)
		}
		return nil, err
	}
	logger.Info("ExecuteTransaction completed", "reference", tx.Reference, "transactionID", tx.ID)
	return tx, nil
}

func (e *Engine) backOff(ctx context.Context) backoff.BackOffContext {
	eb := backoff.NewExponentialBackOff()
	if e.cfg.RetryInterval > 0 {
		eb.InitialInterval = e.cfg.RetryInterval
		eb.MaxInterval = 20 * e.cfg.RetryInterval
	}
	eb.MaxElapsedTime = 0
	eb.Reset()
	retries := e.cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(eb, uint64(retries)), ctx)
}

// execute runs one attempt inside a unit of work.
func (e *Engine) execute(ctx context.Context, req Request) (result *account.Transaction, replayed bool, err error) {
	err = e.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		ledger, err := uow.TransactionRepository()
		if err != nil {
			return err
		}

		if req.IdempotencyKey != "" {
			prev, err := ledger.GetByIdempotencyKey(ctx, req.CallerID, req.IdempotencyKey)
			switch {
			case err == nil:
				if !req.matches(prev) {
					return invalid("idempotency key was already used for a different request")
				}
				result, replayed = prev, true
				return nil
			case !errors.Is(err, domain.ErrTransactionNotFound):
				return err
			}
		}

		ids := []uuid.UUID{req.SourceAccountID}
		if req.DestinationAccountID != nil {
			ids = append(ids, *req.DestinationAccountID)
		}
		locked, err := accounts.LockForUpdate(ctx, ids...)
		if err != nil {
			return err
		}

		src := locked[req.SourceAccountID]
		if err := src.ValidateSource(req.CallerID); err != nil {
			return err
		}
		amount, err := money.Parse(req.Amount, src.Currency())
		if err != nil {
			return invalid("%v", err)
		}

		if req.Kind.IsDebit() {
			err = src.Debit(amount)
		} else {
			err = src.Credit(amount)
		}
		if err != nil {
			return err
		}

		var dst *account.Account
		if req.DestinationAccountID != nil {
			dst = locked[*req.DestinationAccountID]
			if err := dst.ValidateDestination(src.Currency()); err != nil {
				return err
			}
			if err := dst.Credit(amount); err != nil {
				return err
			}
		} else if req.IsExternal() && req.CounterpartyName == "" && req.CounterpartyEmail == "" {
			return invalid("external transfer requires a counterparty name or email")
		}

		if err := accounts.UpdateBalance(ctx, src.ID, src.Balance.Amount()); err != nil {
			return err
		}
		if dst != nil {
			if err := accounts.UpdateBalance(ctx, dst.ID, dst.Balance.Amount()); err != nil {
				return err
			}
		}

		now := e.now().UTC().Truncate(time.Microsecond)
		ref, err := e.newReference(now)
		if err != nil {
			return err
		}
		tx := &account.Transaction{
			ID:                   uuid.New(),
			Reference:            ref,
			Kind:                 req.Kind,
			Amount:               amount,
			Description:          req.Description,
			Status:               account.StatusCompleted,
			SourceAccountID:      src.ID,
			DestinationAccountID: req.DestinationAccountID,
			SourceAccountNumber:  src.Number,
			CounterpartyName:     req.CounterpartyName,
			CounterpartyEmail:    req.CounterpartyEmail,
			InitiatedBy:          req.CallerID,
			IdempotencyKey:       req.IdempotencyKey,
			CreatedAt:            now,
			CompletedAt:          &now,
		}
		if dst != nil {
			tx.DestinationAccountNumber = dst.Number
		}
		if err := ledger.Create(ctx, tx); err != nil {
			return err
		}
		result = tx
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return result, replayed, nil
}
