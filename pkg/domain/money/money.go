package money

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/amirasaad/mobank/pkg/currency"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidAmount is returned when an amount is not a plain decimal number.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrTooPrecise is returned when an amount has more fractional digits
	// than its currency allows.
	ErrTooPrecise = errors.New("amount has too many decimal places for currency")
	// ErrOverflow is returned when a value does not fit in int64 minor units.
	ErrOverflow = errors.New("amount out of range")
	// ErrCurrencyMismatch is returned by arithmetic on two different currencies.
	ErrCurrencyMismatch = errors.New("currency mismatch")
)

// Amount is a value in the smallest unit of a currency (cents for USD).
type Amount = int64

// Money is an exact monetary value.
// Invariants:
//   - Amount is always stored in minor units of Currency.
//   - Currency is a supported ISO 4217 code.
//   - Arithmetic never silently overflows.
type Money struct {
	amount   Amount
	currency currency.Code
}

// Parse reads a decimal string such as "25.50" as an amount of code.
// Exponents and float rounding are never applied: "0.001" in USD is an
// error, not zero.
func Parse(s string, code currency.Code) (Money, error) {
	meta, err := currency.Get(code)
	if err != nil {
		return Money{}, err
	}
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, "eE") {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	dec := int32(meta.Decimals)
	if !d.Equal(d.Truncate(dec)) {
		return Money{}, fmt.Errorf("%w: %s allows %d", ErrTooPrecise, code, meta.Decimals)
	}
	minor := d.Shift(dec)
	if minor.GreaterThan(decimal.NewFromInt(math.MaxInt64)) ||
		minor.LessThan(decimal.NewFromInt(math.MinInt64)) {
		return Money{}, ErrOverflow
	}
	return Money{amount: minor.IntPart(), currency: code}, nil
}

// FromMinor builds Money from an amount already in minor units.
func FromMinor(amount Amount, code currency.Code) (Money, error) {
	if _, err := currency.Get(code); err != nil {
		return Money{}, err
	}
	return Money{amount: amount, currency: code}, nil
}

// Amount returns the value in minor units.
func (m Money) Amount() Amount {
	return m.amount
}

// Currency returns the currency of m.
func (m Money) Currency() currency.Code {
	return m.currency
}

// Decimal returns m in major units as an exact decimal.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.amount, -int32(decimals(m.currency)))
}

// String formats m in major units with the currency's fixed precision,
// e.g. "25.50" or "1000" for JPY.
func (m Money) String() string {
	return Format(m.amount, m.currency)
}

// Format renders a minor-unit amount of code as a decimal string.
func Format(amount Amount, code currency.Code) string {
	dec := int32(decimals(code))
	return decimal.New(amount, -dec).StringFixed(dec)
}

// Add returns m + other.
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, ErrCurrencyMismatch
	}
	sum, ok := AddMinor(m.amount, other.amount)
	if !ok {
		return Money{}, ErrOverflow
	}
	return Money{amount: sum, currency: m.currency}, nil
}

// Subtract returns m - other.
func (m Money) Subtract(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, ErrCurrencyMismatch
	}
	if other.amount == math.MinInt64 {
		return Money{}, ErrOverflow
	}
	diff, ok := AddMinor(m.amount, -other.amount)
	if !ok {
		return Money{}, ErrOverflow
	}
	return Money{amount: diff, currency: m.currency}, nil
}

// Equals reports whether both values have the same currency and amount.
func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.amount == other.amount
}

// LessThan compares two values of the same currency.
func (m Money) LessThan(other Money) (bool, error) {
	if m.currency != other.currency {
		return false, ErrCurrencyMismatch
	}
	return m.amount < other.amount, nil
}

// IsPositive returns true if the amount is greater than zero.
func (m Money) IsPositive() bool {
	return m.amount > 0
}

// IsZero returns true if the amount is zero.
func (m Money) IsZero() bool {
	return m.amount == 0
}

// AddMinor adds two minor-unit amounts and reports false on overflow.
func AddMinor(a, b Amount) (Amount, bool) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, false
	}
	return a + b, true
}

func decimals(code currency.Code) int {
	meta, err := currency.Get(code)
	if err != nil {
		return currency.DefaultDecimals
	}
	return meta.Decimals
}
