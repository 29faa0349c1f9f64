package ledger

import (
	"strings"
	"testing"

	"github.com/amirasaad/mobank/pkg/currency"
	"github.com/amirasaad/mobank/pkg/domain"
	"github.com/amirasaad/mobank/pkg/domain/account"
	"github.com/amirasaad/mobank/pkg/domain/money"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestValidate(t *testing.T) {
	caller, src, dst := uuid.New(), uuid.New(), uuid.New()
	valid := Request{
		CallerID:        caller,
		Kind:            account.KindWithdrawal,
		Amount:          "10.00",
		SourceAccountID: src,
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(r *Request)
	}{
		{"missing caller", func(r *Request) { r.CallerID = uuid.Nil }},
		{"unknown kind", func(r *Request) { r.Kind = "REFUND" }},
		{"missing source", func(r *Request) { r.SourceAccountID = uuid.Nil }},
		{"zero amount", func(r *Request) { r.Amount = "0" }},
		{"negative amount", func(r *Request) { r.Amount = "-5" }},
		{"not a number", func(r *Request) { r.Amount = "five" }},
		{"exponent", func(r *Request) { r.Amount = "1e2" }},
		{"destination on withdrawal", func(r *Request) { r.DestinationAccountID = &dst }},
		{"transfer to self", func(r *Request) {
			r.Kind = account.KindTransfer
			r.DestinationAccountID = &r.SourceAccountID
		}},
		{"long description", func(r *Request) { r.Description = strings.Repeat("d", 501) }},
		{"long counterparty", func(r *Request) { r.CounterpartyName = strings.Repeat("n", 101) }},
		{"long idempotency key", func(r *Request) { r.IdempotencyKey = strings.Repeat("k", 256) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			tt.mutate(&r)
			assert.ErrorIs(t, r.Validate(), domain.ErrInvalidRequest)
		})
	}

	t.Run("description at the limit", func(t *testing.T) {
		r := valid
		r.Description = strings.Repeat("é", 500)
		assert.NoError(t, r.Validate())
	})
}

func TestRequestMatches(t *testing.T) {
	src, dst := uuid.New(), uuid.New()
	amount, err := money.Parse("25.50", currency.USD)
	require.NoError(t, err)
	tx := &account.Transaction{
		Kind:                 account.KindTransfer,
		Amount:               amount,
		SourceAccountID:      src,
		DestinationAccountID: &dst,
		Description:          "rent",
	}
	req := Request{
		Kind:                 account.KindTransfer,
		Amount:               "25.5",
		SourceAccountID:      src,
		DestinationAccountID: &dst,
		Description:          "rent",
	}
	assert.True(t, req.matches(tx))

	other := req
	other.Amount = "25.51"
	assert.False(t, other.matches(tx))

	other = req
	other.DestinationAccountID = nil
	assert.False(t, other.matches(tx))

	other = req
	other.Description = "groceries"
	assert.False(t, other.matches(tx))
}
