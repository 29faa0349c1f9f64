package domain

import "errors"

// Ledger error taxonomy. Callers match with errors.Is; services wrap these
// with fmt.Errorf("%w: ...") to add display detail.
var (
	// ErrAccountNotFound is returned when an account is missing, inactive or
	// not usable by the caller for a money movement.
	ErrAccountNotFound = errors.New("account not found")
	// ErrTransactionNotFound is returned when a transaction is missing or not
	// visible to the caller.
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrForbidden is returned when an account exists but belongs to someone else.
	ErrForbidden = errors.New("forbidden")
	// ErrInsufficientFunds is returned when a debit exceeds the current balance.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrInvalidRequest is returned for a bad kind, amount or request shape.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrDuplicateReference is returned when a unique key collides on insert.
	// The ledger engine retries it; it does not reach API callers.
	ErrDuplicateReference = errors.New("duplicate reference")
	// ErrStorageUnavailable is returned when the store failed before commit.
	// Nothing was written and the request is safe to retry.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrOutcomeUnknown is returned when the commit itself failed or timed out.
	// The caller must reconcile through a query before resubmitting.
	ErrOutcomeUnknown = errors.New("transaction outcome unknown")
)

// Code is a stable, machine-readable error kind.
type Code string

const (
	CodeAccountNotFound     Code = "ACCOUNT_NOT_FOUND"
	CodeTransactionNotFound Code = "TRANSACTION_NOT_FOUND"
	CodeForbidden           Code = "FORBIDDEN"
	CodeInsufficientFunds   Code = "INSUFFICIENT_FUNDS"
	CodeInvalidRequest      Code = "INVALID_REQUEST"
	CodeDuplicateReference  Code = "DUPLICATE_REFERENCE"
	CodeStorageUnavailable  Code = "STORAGE_UNAVAILABLE"
	CodeOutcomeUnknown      Code = "OUTCOME_UNKNOWN"
	CodeInternal            Code = "INTERNAL"
)

var codes = []struct {
	err  error
	code Code
}{
	{ErrAccountNotFound, CodeAccountNotFound},
	{ErrTransactionNotFound, CodeTransactionNotFound},
	{ErrForbidden, CodeForbidden},
	{ErrInsufficientFunds, CodeInsufficientFunds},
	{ErrInvalidRequest, CodeInvalidRequest},
	{ErrDuplicateReference, CodeDuplicateReference},
	{ErrStorageUnavailable, CodeStorageUnavailable},
	{ErrOutcomeUnknown, CodeOutcomeUnknown},
}

// CodeOf returns the error kind of err, or CodeInternal when err does not
// wrap any ledger error.
func CodeOf(err error) Code {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return CodeInternal
}

// IsBusiness reports whether err is a deterministic business-rule failure
// that must be returned to the caller as-is and never retried.
func IsBusiness(err error) bool {
	switch CodeOf(err) {
	case CodeAccountNotFound, CodeTransactionNotFound, CodeForbidden,
		CodeInsufficientFunds, CodeInvalidRequest:
		return true
	}
	return false
}

// IsRetryable reports whether err was raised before anything could commit.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrDuplicateReference) || errors.Is(err, ErrStorageUnavailable)
}
