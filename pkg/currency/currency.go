// Package currency holds the ISO 4217 codes the ledger accepts and the number
// of minor units each one carries.
package currency

import (
	"errors"
	"regexp"
	"sort"
)

const (
	// DefaultCurrency is the fallback currency code (USD)
	DefaultCurrency Code = "USD"
	// DefaultDecimals is the default number of decimal places for currencies
	DefaultDecimals = 2
)

// Code represents a currency code (e.g., "USD", "EUR").
type Code string

// String returns the currency code as a string.
func (c Code) String() string {
	return string(c)
}

// Common currency codes for convenience.
const (
	USD Code = "USD"
	EUR Code = "EUR"
	GBP Code = "GBP"
	JPY Code = "JPY"
	KWD Code = "KWD"
	EGP Code = "EGP"
	NGN Code = "NGN"
)

var (
	// ErrInvalidCode is returned when a code is not three upper-case letters.
	ErrInvalidCode = errors.New("invalid currency code")
	// ErrUnsupported is returned when a well-formed code is not in the table.
	ErrUnsupported = errors.New("unsupported currency")
)

// Meta holds currency-specific metadata
type Meta struct {
	Code     Code
	Decimals int
	Symbol   string
}

var codeFormat = regexp.MustCompile(`^[A-Z]{3}$`)

var supported = map[Code]Meta{
	USD: {Code: USD, Decimals: 2, Symbol: "$"},
	EUR: {Code: EUR, Decimals: 2, Symbol: "€"},
	GBP: {Code: GBP, Decimals: 2, Symbol: "£"},
	JPY: {Code: JPY, Decimals: 0, Symbol: "¥"},
	KWD: {Code: KWD, Decimals: 3, Symbol: "د.ك"},
	EGP: {Code: EGP, Decimals: 2, Symbol: "E£"},
	NGN: {Code: NGN, Decimals: 2, Symbol: "₦"},
}

// IsValidFormat reports whether code looks like an ISO 4217 code.
func IsValidFormat(code string) bool {
	return codeFormat.MatchString(code)
}

// Get returns the metadata for code.
func Get(code Code) (Meta, error) {
	if !IsValidFormat(string(code)) {
		return Meta{}, ErrInvalidCode
	}
	meta, ok := supported[code]
	if !ok {
		return Meta{}, ErrUnsupported
	}
	return meta, nil
}

// IsSupported checks if a currency code is registered
func IsSupported(code Code) bool {
	_, ok := supported[code]
	return ok
}

// ListSupported returns all supported codes, sorted.
func ListSupported() []Code {
	codes := make([]Code, 0, len(supported))
	for code := range supported {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}
