package repository

import (
	"fmt"

	"github.com/amirasaad/mobank/pkg/currency"
	"github.com/amirasaad/mobank/pkg/domain/account"
	"github.com/amirasaad/mobank/pkg/domain/money"
)

func accountToModel(a *account.Account) Account {
	return Account{
		ID:        a.ID,
		Number:    a.Number,
		UserID:    a.UserID,
		Category:  string(a.Category),
		Balance:   a.Balance.Amount(),
		Currency:  a.Currency().String(),
		Active:    a.Active,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func accountToDomain(m *Account) (*account.Account, error) {
	acc, err := account.New().
		WithID(m.ID).
		WithNumber(m.Number).
		WithUserID(m.UserID).
		WithCategory(account.Category(m.Category)).
		WithCurrency(currency.Code(m.Currency)).
		WithBalance(m.Balance).
		WithActive(m.Active).
		WithCreatedAt(m.CreatedAt.UTC()).
		WithUpdatedAt(m.UpdatedAt.UTC()).
		Build()
	if err != nil {
		return nil, fmt.Errorf("hydrate account %s: %w", m.ID, err)
	}
	return acc, nil
}

func transactionToModel(t *account.Transaction) Transaction {
	return Transaction{
		ID:                       t.ID,
		Reference:                t.Reference,
		Kind:                     string(t.Kind),
		Amount:                   t.Amount.Amount(),
		Currency:                 t.Amount.Currency().String(),
		Description:              optional(t.Description),
		Status:                   string(t.Status),
		SourceAccountID:          t.SourceAccountID,
		DestinationAccountID:     t.DestinationAccountID,
		SourceAccountNumber:      t.SourceAccountNumber,
		DestinationAccountNumber: optional(t.DestinationAccountNumber),
		CounterpartyName:         optional(t.CounterpartyName),
		CounterpartyEmail:        optional(t.CounterpartyEmail),
		InitiatedBy:              t.InitiatedBy,
		IdempotencyKey:           optional(t.IdempotencyKey),
		CreatedAt:                t.CreatedAt,
		CompletedAt:              t.CompletedAt,
	}
}

func transactionToDomain(m *Transaction) (*account.Transaction, error) {
	amount, err := money.FromMinor(m.Amount, currency.Code(m.Currency))
	if err != nil {
		return nil, fmt.Errorf("hydrate transaction %s: %w", m.ID, err)
	}
	t := &account.Transaction{
		ID:                       m.ID,
		Reference:                m.Reference,
		Kind:                     account.Kind(m.Kind),
		Amount:                   amount,
		Description:              deref(m.Description),
		Status:                   account.Status(m.Status),
		SourceAccountID:          m.SourceAccountID,
		DestinationAccountID:     m.DestinationAccountID,
		SourceAccountNumber:      m.SourceAccountNumber,
		DestinationAccountNumber: deref(m.DestinationAccountNumber),
		CounterpartyName:         deref(m.CounterpartyName),
		CounterpartyEmail:        deref(m.CounterpartyEmail),
		InitiatedBy:              m.InitiatedBy,
		IdempotencyKey:           deref(m.IdempotencyKey),
		CreatedAt:                m.CreatedAt.UTC(),
	}
	if m.CompletedAt != nil {
		completed := m.CompletedAt.UTC()
		t.CompletedAt = &completed
	}
	return t, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
