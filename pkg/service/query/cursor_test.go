package query_test

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/amirasaad/mobank/pkg/domain"
	repo "github.com/amirasaad/mobank/pkg/repository/transaction"
	"github.com/amirasaad/mobank/pkg/service/query"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursor_RoundTripKeepsMicroseconds(t *testing.T) {
	c := repo.Cursor{
		CreatedAt: time.Date(2025, 3, 1, 8, 0, 0, 123456000, time.UTC),
		ID:        uuid.New(),
	}
	got, err := query.DecodeCursor(query.EncodeCursor(c))
	require.NoError(t, err)
	assert.True(t, c.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, c.ID, got.ID)
}

func TestDecodeCursor_Malformed(t *testing.T) {
	enc := func(s string) string { return base64.RawURLEncoding.EncodeToString([]byte(s)) }
	for name, in := range map[string]string{
		"not base64":   "!!!",
		"no separator": enc("12345"),
		"bad time":     enc("abc|" + uuid.NewString()),
		"bad id":       enc("12345|nope"),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := query.DecodeCursor(in)
			assert.ErrorIs(t, err, domain.ErrInvalidRequest)
		})
	}
}
