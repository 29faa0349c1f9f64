package repository

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"time"

	"github.com/amirasaad/mobank/pkg/domain"
	"github.com/amirasaad/mobank/pkg/domain/account"
	repo "github.com/amirasaad/mobank/pkg/repository/account"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new account repository using the provided *gorm.DB.
func NewAccountRepository(db *gorm.DB) repo.Repository {
	return &accountRepository{db: db}
}

// Create implements account.Repository.
func (r *accountRepository) Create(ctx context.Context, acc *account.Account) error {
	m := accountToModel(acc)
	return WrapError(func() error {
		return r.db.WithContext(ctx).Create(&m).Error
	})
}

// Get implements account.Repository.
func (r *accountRepository) Get(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	var m Account
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, MapGormErrorToDomain(err)
	}
	return accountToDomain(&m)
}

// LockForUpdate implements account.Repository. One SELECT ... FOR UPDATE
// is issued per row, in ascending id order, so two requests touching the
// same pair of accounts always queue on the same row first.
func (r *accountRepository) LockForUpdate(
	ctx context.Context,
	ids ...uuid.UUID,
) (map[uuid.UUID]*account.Account, error) {
	ordered := sortedUnique(ids)
	locked := make(map[uuid.UUID]*account.Account, len(ordered))
	for _, id := range ordered {
		var rows []Account
		err := r.db.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			Find(&rows).Error
		if err != nil {
			return nil, MapGormErrorToDomain(err)
		}
		if len(rows) == 0 {
			continue
		}
		acc, err := accountToDomain(&rows[0])
		if err != nil {
			return nil, err
		}
		locked[id] = acc
	}
	return locked, nil
}

// UpdateBalance implements account.Repository.
func (r *accountRepository) UpdateBalance(ctx context.Context, id uuid.UUID, balance int64) error {
	return r.update(ctx, id, map[string]any{"balance": balance})
}

// SetActive implements account.Repository.
func (r *accountRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return r.update(ctx, id, map[string]any{"active": active})
}

func (r *accountRepository) update(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	fields["updated_at"] = time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&Account{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// ListByUser implements account.Repository.
func (r *accountRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*account.Account, error) {
	var rows []Account
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	result := make([]*account.Account, 0, len(rows))
	for i := range rows {
		acc, err := accountToDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		result = append(result, acc)
	}
	return result, nil
}

// IDsByUser implements account.Repository.
func (r *accountRepository) IDsByUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&Account{}).
		Where("user_id = ?", userID).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return ids, nil
}

func sortedUnique(ids []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i][:], out[j][:]) < 0
	})
	return out
}
