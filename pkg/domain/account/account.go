package account

import (
	"errors"
	"fmt"
	"time"

	"github.com/amirasaad/mobank/pkg/currency"
	"github.com/amirasaad/mobank/pkg/domain"
	"github.com/amirasaad/mobank/pkg/domain/money"
	"github.com/google/uuid"
)

var (
	// ErrInvalidCategory is returned for an account category outside the known set.
	ErrInvalidCategory = errors.New("invalid account category")
	// ErrInvalidNumber is returned when an account number is not 10 digits.
	ErrInvalidNumber = errors.New("account number must be 10 digits")
	// ErrUserRequired is returned when an account is built without an owner.
	ErrUserRequired = errors.New("userID is required")
)

// NumberLength is the number of digits in an account number.
const NumberLength = 10

// Category classifies an account.
type Category string

const (
	CategoryChecking Category = "checking"
	CategorySavings  Category = "savings"
	CategoryCredit   Category = "credit"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryChecking, CategorySavings, CategoryCredit:
		return true
	}
	return false
}

// Account is a customer-owned balance holder.
//
// Invariants:
//   - Balance is changed only by the ledger engine, together with the
//     insertion of a transaction record.
//   - Balance is never negative after a debit.
//   - Accounts are deactivated, never deleted.
type Account struct {
	ID        uuid.UUID
	Number    string
	UserID    uuid.UUID
	Category  Category
	Balance   money.Money
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Builder provides a fluent API for constructing Account instances.
type Builder struct {
	id        uuid.UUID
	number    string
	userID    uuid.UUID
	category  Category
	balance   int64
	currency  currency.Code
	active    bool
	createdAt time.Time
	updatedAt time.Time
}

// New creates a Builder for an active, empty checking account in the
// default currency.
func New() *Builder {
	now := time.Now().UTC()
	return &Builder{
		id:        uuid.New(),
		category:  CategoryChecking,
		currency:  currency.DefaultCurrency,
		active:    true,
		createdAt: now,
		updatedAt: now,
	}
}

func (b *Builder) WithID(id uuid.UUID) *Builder {
	b.id = id
	return b
}

func (b *Builder) WithNumber(number string) *Builder {
	b.number = number
	return b
}

// WithUserID sets the owner. This is a mandatory field.
func (b *Builder) WithUserID(userID uuid.UUID) *Builder {
	b.userID = userID
	return b
}

func (b *Builder) WithCategory(c Category) *Builder {
	b.category = c
	return b
}

func (b *Builder) WithCurrency(code currency.Code) *Builder {
	b.currency = code
	return b
}

// WithBalance sets the balance in minor units. Only for hydrating an
// existing account from storage or for test setup.
func (b *Builder) WithBalance(balance int64) *Builder {
	b.balance = balance
	return b
}

func (b *Builder) WithActive(active bool) *Builder {
	b.active = active
	return b
}

func (b *Builder) WithCreatedAt(t time.Time) *Builder {
	b.createdAt = t
	return b
}

func (b *Builder) WithUpdatedAt(t time.Time) *Builder {
	b.updatedAt = t
	return b
}

// Build validates the collected fields and returns the Account.
func (b *Builder) Build() (*Account, error) {
	if b.userID == uuid.Nil {
		return nil, ErrUserRequired
	}
	if !b.category.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, b.category)
	}
	if !ValidNumber(b.number) {
		return nil, ErrInvalidNumber
	}
	bal, err := money.FromMinor(b.balance, b.currency)
	if err != nil {
		return nil, err
	}
	return &Account{
		ID:        b.id,
		Number:    b.number,
		UserID:    b.userID,
		Category:  b.category,
		Balance:   bal,
		Active:    b.active,
		CreatedAt: b.createdAt,
		UpdatedAt: b.updatedAt,
	}, nil
}

// ValidNumber reports whether s is exactly NumberLength ASCII digits.
func ValidNumber(s string) bool {
	if len(s) != NumberLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Currency returns the currency the account is denominated in.
func (a *Account) Currency() currency.Code {
	return a.Balance.Currency()
}

// ValidateSource checks that userID may move money out of (or into) a.
// A foreign or inactive account is reported as not found so that other
// users' account ids are not disclosed.
func (a *Account) ValidateSource(userID uuid.UUID) error {
	if a == nil || a.UserID != userID || !a.Active {
		return fmt.Errorf("%w: source account", domain.ErrAccountNotFound)
	}
	return nil
}

// ValidateDestination checks that a can receive an internal transfer in
// the given currency.
func (a *Account) ValidateDestination(code currency.Code) error {
	if a == nil || !a.Active {
		return fmt.Errorf("%w: destination account", domain.ErrAccountNotFound)
	}
	if a.Currency() != code {
		return fmt.Errorf("%w: destination currency %s does not match %s",
			domain.ErrInvalidRequest, a.Currency(), code)
	}
	return nil
}

// Debit subtracts amount from the balance.
// Invariants enforced:
//   - amount is positive and in the account currency.
//   - the balance after the debit is not negative.
func (a *Account) Debit(amount money.Money) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", domain.ErrInvalidRequest)
	}
	less, err := a.Balance.LessThan(amount)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	if less {
		return fmt.Errorf("%w: balance %s, requested %s",
			domain.ErrInsufficientFunds, a.Balance, amount)
	}
	next, err := a.Balance.Subtract(amount)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	a.Balance = next
	return nil
}

// Credit adds amount to the balance. A credit that would overflow the
// balance is rejected.
func (a *Account) Credit(amount money.Money) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", domain.ErrInvalidRequest)
	}
	next, err := a.Balance.Add(amount)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	a.Balance = next
	return nil
}
