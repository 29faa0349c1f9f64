package account

import (
	"time"

	"github.com/amirasaad/mobank/pkg/domain/money"
	"github.com/google/uuid"
)

// Kind is the type of a money movement.
type Kind string

const (
	KindTransfer   Kind = "TRANSFER"
	KindDeposit    Kind = "DEPOSIT"
	KindWithdrawal Kind = "WITHDRAWAL"
	KindPayment    Kind = "PAYMENT"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindTransfer, KindDeposit, KindWithdrawal, KindPayment:
		return true
	}
	return false
}

// IsDebit reports whether k takes money out of the source account.
func (k Kind) IsDebit() bool {
	return k == KindTransfer || k == KindWithdrawal || k == KindPayment
}

// Status is the lifecycle state of a transaction record.
type Status string

const (
	StatusCompleted Status = "COMPLETED"
	// StatusFailed is part of the vocabulary only; rejected requests leave
	// no record.
	StatusFailed Status = "FAILED"
)

// Field limits.
const (
	MaxDescriptionLength  = 500
	MaxCounterpartyLength = 100
)

// Transaction is an immutable ledger entry. Corrections are new entries.
// Account numbers are copied from the accounts when the entry is recorded;
// DestinationAccountNumber is empty for external movements.
type Transaction struct {
	ID                       uuid.UUID
	Reference                string
	Kind                     Kind
	Amount                   money.Money
	Description              string
	Status                   Status
	SourceAccountID          uuid.UUID
	DestinationAccountID     *uuid.UUID
	SourceAccountNumber      string
	DestinationAccountNumber string
	CounterpartyName         string
	CounterpartyEmail        string
	InitiatedBy              uuid.UUID
	IdempotencyKey           string
	CreatedAt                time.Time
	CompletedAt              *time.Time
}

// IsInternal reports whether t moved money between two ledger accounts.
func (t *Transaction) IsInternal() bool {
	return t.DestinationAccountID != nil
}

// Touches reports whether accountID is the source or destination of t.
func (t *Transaction) Touches(accountID uuid.UUID) bool {
	return t.SourceAccountID == accountID ||
		(t.DestinationAccountID != nil && *t.DestinationAccountID == accountID)
}
