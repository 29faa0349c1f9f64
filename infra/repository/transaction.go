package repository

import (
	"context"
	"errors"

	"github.com/amirasaad/mobank/pkg/currency"
	"github.com/amirasaad/mobank/pkg/domain"
	"github.com/amirasaad/mobank/pkg/domain/account"
	repo "github.com/amirasaad/mobank/pkg/repository/transaction"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new ledger repository using the provided *gorm.DB.
func NewTransactionRepository(db *gorm.DB) repo.Repository {
	return &transactionRepository{db: db}
}

// Create implements transaction.Repository.
func (r *transactionRepository) Create(ctx context.Context, tx *account.Transaction) error {
	m := transactionToModel(tx)
	return WrapError(func() error {
		return r.db.WithContext(ctx).Create(&m).Error
	})
}

// Get implements transaction.Repository.
func (r *transactionRepository) Get(ctx context.Context, id uuid.UUID) (*account.Transaction, error) {
	return r.take(r.db.WithContext(ctx).Where("id = ?", id))
}

// GetByIdempotencyKey implements transaction.Repository.
func (r *transactionRepository) GetByIdempotencyKey(
	ctx context.Context,
	initiatedBy uuid.UUID,
	key string,
) (*account.Transaction, error) {
	return r.take(r.db.WithContext(ctx).
		Where("initiated_by = ? AND idempotency_key = ?", initiatedBy, key))
}

func (r *transactionRepository) take(q *gorm.DB) (*account.Transaction, error) {
	var m Transaction
	if err := q.Take(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, MapGormErrorToDomain(err)
	}
	return transactionToDomain(&m)
}

// scoped applies a Filter. Callers must handle an empty AccountIDs first.
func (r *transactionRepository) scoped(ctx context.Context, f repo.Filter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&Transaction{}).
		Where("(source_account_id IN ? OR destination_account_id IN ?)", f.AccountIDs, f.AccountIDs)
	if f.Kind != "" {
		q = q.Where("kind = ?", string(f.Kind))
	}
	if f.Since != nil {
		q = q.Where("created_at >= ?", f.Since.UTC())
	}
	return q
}

// List implements transaction.Repository.
func (r *transactionRepository) List(
	ctx context.Context,
	filter repo.Filter,
	page repo.Page,
) ([]*account.Transaction, error) {
	if len(filter.AccountIDs) == 0 {
		return []*account.Transaction{}, nil
	}
	q := r.scoped(ctx, filter).Order("created_at DESC, id DESC").Limit(page.Limit)
	if page.After != nil {
		at := page.After.CreatedAt.UTC()
		q = q.Where("(created_at < ? OR (created_at = ? AND id < ?))", at, at, page.After.ID)
	} else if page.Offset > 0 {
		q = q.Offset(page.Offset)
	}

	var rows []Transaction
	if err := q.Find(&rows).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	result := make([]*account.Transaction, 0, len(rows))
	for i := range rows {
		t, err := transactionToDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, nil
}

// Count implements transaction.Repository.
func (r *transactionRepository) Count(ctx context.Context, filter repo.Filter) (int64, error) {
	if len(filter.AccountIDs) == 0 {
		return 0, nil
	}
	var n int64
	if err := r.scoped(ctx, filter).Count(&n).Error; err != nil {
		return 0, MapGormErrorToDomain(err)
	}
	return n, nil
}

const totalsSelect = `currency,
CAST(COALESCE(SUM(CASE WHEN (kind = ? AND source_account_id IN ?) OR (kind = ? AND destination_account_id IN ?) THEN amount ELSE 0 END), 0) AS BIGINT) AS inflow,
CAST(COALESCE(SUM(CASE WHEN kind IN ? AND source_account_id IN ? THEN amount ELSE 0 END), 0) AS BIGINT) AS outflow`

// Totals implements transaction.Repository.
func (r *transactionRepository) Totals(ctx context.Context, filter repo.Filter) ([]repo.Totals, error) {
	if len(filter.AccountIDs) == 0 {
		return []repo.Totals{}, nil
	}
	debits := []string{
		string(account.KindTransfer),
		string(account.KindWithdrawal),
		string(account.KindPayment),
	}
	var rows []struct {
		Currency string
		Inflow   int64
		Outflow  int64
	}
	err := r.scoped(ctx, filter).
		Select(totalsSelect,
			string(account.KindDeposit), filter.AccountIDs,
			string(account.KindTransfer), filter.AccountIDs,
			debits, filter.AccountIDs).
		Group("currency").
		Order("currency").
		Scan(&rows).Error
	if err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	result := make([]repo.Totals, 0, len(rows))
	for _, row := range rows {
		result = append(result, repo.Totals{
			Currency: currency.Code(row.Currency),
			Inflow:   row.Inflow,
			Outflow:  row.Outflow,
		})
	}
	return result, nil
}
