package repository

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrImmutable is returned by the ORM hooks when something tries to update
// or delete a ledger entry.
var ErrImmutable = errors.New("ledger entries are immutable")

// Account represents an account record in the database.
type Account struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Number    string    `gorm:"type:varchar(10);uniqueIndex;not null"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null"`
	Category  string    `gorm:"type:varchar(16);not null"`
	Balance   int64     `gorm:"not null"`
	Currency  string    `gorm:"type:varchar(3);not null"`
	Active    bool      `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName specifies the table name for the Account model.
func (Account) TableName() string {
	return "accounts"
}

// Transaction represents a persisted ledger entry.
type Transaction struct {
	ID                       uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Reference                string     `gorm:"type:varchar(32);uniqueIndex;not null"`
	Kind                     string     `gorm:"type:varchar(16);not null;index"`
	Amount                   int64      `gorm:"not null"`
	Currency                 string     `gorm:"type:varchar(3);not null"`
	Description              *string    `gorm:"type:varchar(500)"`
	Status                   string     `gorm:"type:varchar(16);not null"`
	SourceAccountID          uuid.UUID  `gorm:"type:uuid;not null;index"`
	DestinationAccountID     *uuid.UUID `gorm:"type:uuid;index"`
	SourceAccountNumber      string     `gorm:"type:varchar(10);not null;default:''"`
	DestinationAccountNumber *string    `gorm:"type:varchar(10)"`
	CounterpartyName         *string    `gorm:"type:varchar(100)"`
	CounterpartyEmail        *string    `gorm:"type:varchar(255)"`
	InitiatedBy              uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_transactions_idempotency,priority:1"`
	IdempotencyKey           *string    `gorm:"type:varchar(255);uniqueIndex:idx_transactions_idempotency,priority:2"`
	CreatedAt                time.Time  `gorm:"not null;index"`
	CompletedAt              *time.Time
}

// TableName specifies the table name for the Transaction model.
func (Transaction) TableName() string {
	return "transactions"
}

// BeforeUpdate rejects every update of a ledger entry.
func (*Transaction) BeforeUpdate(*gorm.DB) error {
	return ErrImmutable
}

// BeforeDelete rejects every delete of a ledger entry.
func (*Transaction) BeforeDelete(*gorm.DB) error {
	return ErrImmutable
}

// Models lists every persisted model, for AutoMigrate in tests.
func Models() []any {
	return []any{&Account{}, &Transaction{}}
}
