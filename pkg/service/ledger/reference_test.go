package ledger

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReference(t *testing.T) {
	at := time.Date(2025, 3, 9, 14, 5, 7, 0, time.FixedZone("X", 2*3600))
	ref, err := NewReference(at)
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^TXN20250309120507[A-Z2-7]{10}$`), ref)

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		r, err := NewReference(at)
		require.NoError(t, err)
		assert.False(t, seen[r], "duplicate reference %s", r)
		seen[r] = true
	}
}
