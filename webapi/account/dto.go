package account

import (
	"time"

	"github.com/amirasaad/mobank/pkg/domain/account"
)

//revive:disable

// CreateAccountRequest represents the request body for opening an account.
type CreateAccountRequest struct {
	AccountType string `json:"account_type" validate:"omitempty,oneof=checking savings credit"`
	Currency    string `json:"currency" validate:"omitempty,len=3,uppercase,alpha"`
}

// AccountDTO is the API response representation of an account.
type AccountDTO struct {
	ID            string `json:"id"`
	AccountNumber string `json:"account_number"`
	AccountType   string `json:"account_type"`
	Balance       string `json:"balance"`
	Currency      string `json:"currency"`
	Active        bool   `json:"active"`
	CreatedAt     string `json:"created_at"`
}

// ToAccountDTO maps a domain account to its API form.
func ToAccountDTO(a *account.Account) *AccountDTO {
	if a == nil {
		return nil
	}
	return &AccountDTO{
		ID:            a.ID.String(),
		AccountNumber: a.Number,
		AccountType:   string(a.Category),
		Balance:       a.Balance.String(),
		Currency:      a.Currency().String(),
		Active:        a.Active,
		CreatedAt:     a.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}
