package ledger

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"time"
)

const (
	referencePrefix     = "TXN"
	referenceTimeLayout = "20060102150405"
	referenceRandomLen  = 10
)

var referenceEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// ReferenceFunc produces a transaction reference for the given instant.
type ReferenceFunc func(now time.Time) (string, error)

// NewReference returns TXN<yyyymmddhhmmss><10 random base32 chars>. The
// random part carries 50 bits, so a clash within one second is negligible
// and is retried on the unique index anyway.
func NewReference(now time.Time) (string, error) {
	var b [7]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("generate reference: %w", err)
	}
	random := referenceEncoding.EncodeToString(b[:])[:referenceRandomLen]
	return referencePrefix + now.UTC().Format(referenceTimeLayout) + random, nil
}
