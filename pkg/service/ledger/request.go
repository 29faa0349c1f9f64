package ledger

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/amirasaad/mobank/pkg/domain"
	"github.com/amirasaad/mobank/pkg/domain/account"
	"github.com/amirasaad/mobank/pkg/domain/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	maxEmailLength          = 255
	maxIdempotencyKeyLength = 255
)

// Request asks the engine to move money. Amount is a decimal string in
// major units of the source account currency.
type Request struct {
	CallerID             uuid.UUID
	Kind                 account.Kind
	Amount               string
	SourceAccountID      uuid.UUID
	DestinationAccountID *uuid.UUID
	CounterpartyName     string
	CounterpartyEmail    string
	Description          string
	IdempotencyKey       string
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{domain.ErrInvalidRequest}, args...)...)
}

// Validate checks everything that can be checked without loading accounts.
func (r Request) Validate() error {
	if r.CallerID == uuid.Nil {
		return invalid("caller is required")
	}
	if !r.Kind.Valid() {
		return invalid("unknown transaction type %q", r.Kind)
	}
	if r.SourceAccountID == uuid.Nil {
		return invalid("source account is required")
	}
	amt := strings.TrimSpace(r.Amount)
	if strings.ContainsAny(amt, "eE") {
		return invalid("amount must be a plain decimal")
	}
	d, err := decimal.NewFromString(amt)
	if err != nil {
		return invalid("amount must be a decimal number")
	}
	if !d.IsPositive() {
		return invalid("amount must be greater than zero")
	}
	if r.DestinationAccountID != nil {
		if r.Kind != account.KindTransfer {
			return invalid("destination account is only allowed for transfers")
		}
		if *r.DestinationAccountID == r.SourceAccountID {
			return invalid("cannot transfer to the same account")
		}
	}
	if utf8.RuneCountInString(r.Description) > account.MaxDescriptionLength {
		return invalid("description exceeds %d characters", account.MaxDescriptionLength)
	}
	if utf8.RuneCountInString(r.CounterpartyName) > account.MaxCounterpartyLength {
		return invalid("counterparty name exceeds %d characters", account.MaxCounterpartyLength)
	}
	if len(r.CounterpartyEmail) > maxEmailLength {
		return invalid("counterparty email exceeds %d characters", maxEmailLength)
	}
	if len(r.IdempotencyKey) > maxIdempotencyKeyLength {
		return invalid("idempotency key exceeds %d characters", maxIdempotencyKeyLength)
	}
	return nil
}

// IsExternal reports whether r is a transfer leaving the ledger.
func (r Request) IsExternal() bool {
	return r.Kind == account.KindTransfer && r.DestinationAccountID == nil
}

// matches reports whether tx is the record r would have produced.
func (r Request) matches(tx *account.Transaction) bool {
	amount, err := money.Parse(r.Amount, tx.Amount.Currency())
	if err != nil || !amount.Equals(tx.Amount) {
		return false
	}
	if r.Kind != tx.Kind || r.SourceAccountID != tx.SourceAccountID {
		return false
	}
	switch {
	case r.DestinationAccountID == nil && tx.DestinationAccountID != nil,
		r.DestinationAccountID != nil && tx.DestinationAccountID == nil:
		return false
	case r.DestinationAccountID != nil && *r.DestinationAccountID != *tx.DestinationAccountID:
		return false
	}
	return r.Description == tx.Description &&
		r.CounterpartyName == tx.CounterpartyName &&
		r.CounterpartyEmail == tx.CounterpartyEmail
}
