package currency

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	tests := []struct {
		name     string
		code     Code
		decimals int
		err      error
	}{
		{name: "usd", code: USD, decimals: 2},
		{name: "yen has no minor unit", code: JPY, decimals: 0},
		{name: "dinar has three", code: KWD, decimals: 3},
		{name: "lower case", code: "usd", err: ErrInvalidCode},
		{name: "too long", code: "USDX", err: ErrInvalidCode},
		{name: "unknown", code: "XYZ", err: ErrUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta, err := Get(tt.code)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.decimals, meta.Decimals)
			assert.Equal(t, tt.code, meta.Code)
		})
	}
}

func TestListSupported(t *testing.T) {
	codes := ListSupported()
	assert.Contains(t, codes, USD)
	assert.True(t, IsSupported(DefaultCurrency))
	for i := 1; i < len(codes); i++ {
		assert.Less(t, codes[i-1], codes[i])
	}
}
