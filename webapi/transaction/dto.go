package transaction

import (
	"encoding/json"
	"time"

	"github.com/amirasaad/mobank/pkg/domain/account"
	"github.com/amirasaad/mobank/pkg/domain/money"
	"github.com/amirasaad/mobank/pkg/service/query"
)

//revive:disable

// CreateTransactionRequest is the body of POST /transactions. Amount is a
// decimal in major units of the source account currency, as a string or a
// JSON number.
type CreateTransactionRequest struct {
	Type                 string      `json:"type" validate:"required,oneof=TRANSFER DEPOSIT WITHDRAWAL PAYMENT"`
	Amount               json.Number `json:"amount" validate:"required"`
	SourceAccountID      string      `json:"source_account_id" validate:"required,uuid"`
	DestinationAccountID string      `json:"destination_account_id" validate:"omitempty,uuid"`
	Description          string      `json:"description" validate:"max=500"`
	CounterpartyName     string      `json:"counterparty_name" validate:"max=100"`
	CounterpartyEmail    string      `json:"counterparty_email" validate:"omitempty,email,max=255"`
}

// ListQuery holds the query parameters of GET /transactions.
type ListQuery struct {
	Type      string `query:"type" validate:"omitempty,oneof=TRANSFER DEPOSIT WITHDRAWAL PAYMENT"`
	AccountID string `query:"account_id" validate:"omitempty,uuid"`
	Page      int    `query:"page" validate:"omitempty,min=1"`
	Limit     int    `query:"limit" validate:"omitempty,min=1"`
	Cursor    string `query:"cursor"`
}

// StatsQuery holds the query parameters of GET /transactions/stats.
type StatsQuery struct {
	AccountID string `query:"account_id" validate:"omitempty,uuid"`
	Period    int    `query:"period" validate:"omitempty,min=1"`
}

// TransactionDTO is the API representation of a ledger entry.
type TransactionDTO struct {
	ID                       string  `json:"id"`
	Reference                string  `json:"reference"`
	Type                     string  `json:"type"`
	Amount                   string  `json:"amount"`
	Currency                 string  `json:"currency"`
	Description              string  `json:"description,omitempty"`
	Status                   string  `json:"status"`
	SourceAccountID          string  `json:"source_account_id"`
	DestinationAccountID     *string `json:"destination_account_id,omitempty"`
	SourceAccountNumber      string  `json:"source_account_number"`
	DestinationAccountNumber string  `json:"destination_account_number,omitempty"`
	CounterpartyName         string  `json:"counterparty_name,omitempty"`
	CounterpartyEmail        string  `json:"counterparty_email,omitempty"`
	CreatedAt                string  `json:"created_at"`
	CompletedAt              *string `json:"completed_at,omitempty"`
}

// PaginationDTO describes where a page sits in the full listing.
type PaginationDTO struct {
	Page       int    `json:"page,omitempty"`
	Limit      int    `json:"limit"`
	Total      int64  `json:"total"`
	Pages      int    `json:"pages"`
	NextCursor string `json:"next_cursor,omitempty"`
}

// ListResponse is the data of GET /transactions.
type ListResponse struct {
	Transactions []*TransactionDTO `json:"transactions"`
	Pagination   PaginationDTO     `json:"pagination"`
}

// TotalsDTO are the flows of one currency.
type TotalsDTO struct {
	Currency string `json:"currency"`
	Inflow   string `json:"inflow"`
	Outflow  string `json:"outflow"`
	Net      string `json:"net"`
}

// StatsResponse is the data of GET /transactions/stats.
type StatsResponse struct {
	PeriodDays int               `json:"period_days"`
	Since      string            `json:"since"`
	Count      int64             `json:"transaction_count"`
	Totals     []TotalsDTO       `json:"totals"`
	Recent     []*TransactionDTO `json:"recent_transactions"`
}

// BalanceResponse is the data of GET /transactions/balance/:accountId.
type BalanceResponse struct {
	AccountID     string `json:"account_id"`
	AccountNumber string `json:"account_number"`
	AccountType   string `json:"account_type"`
	Balance       string `json:"balance"`
	Currency      string `json:"currency"`
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ToTransactionDTO maps a ledger entry to its API form.
func ToTransactionDTO(tx *account.Transaction) *TransactionDTO {
	if tx == nil {
		return nil
	}
	dto := &TransactionDTO{
		ID:                       tx.ID.String(),
		Reference:                tx.Reference,
		Type:                     string(tx.Kind),
		Amount:                   tx.Amount.String(),
		Currency:                 tx.Amount.Currency().String(),
		Description:              tx.Description,
		Status:                   string(tx.Status),
		SourceAccountID:          tx.SourceAccountID.String(),
		SourceAccountNumber:      tx.SourceAccountNumber,
		DestinationAccountNumber: tx.DestinationAccountNumber,
		CounterpartyName:         tx.CounterpartyName,
		CounterpartyEmail:        tx.CounterpartyEmail,
		CreatedAt:                timestamp(tx.CreatedAt),
	}
	if tx.DestinationAccountID != nil {
		id := tx.DestinationAccountID.String()
		dto.DestinationAccountID = &id
	}
	if tx.CompletedAt != nil {
		at := timestamp(*tx.CompletedAt)
		dto.CompletedAt = &at
	}
	return dto
}

func toTransactionDTOs(txs []*account.Transaction) []*TransactionDTO {
	out := make([]*TransactionDTO, 0, len(txs))
	for _, tx := range txs {
		out = append(out, ToTransactionDTO(tx))
	}
	return out
}

// ToListResponse maps a history page to its API form.
func ToListResponse(p *query.TransactionPage) *ListResponse {
	return &ListResponse{
		Transactions: toTransactionDTOs(p.Items),
		Pagination: PaginationDTO{
			Page:       p.PageNumber,
			Limit:      p.PageSize,
			Total:      p.TotalCount,
			Pages:      p.Pages,
			NextCursor: p.NextCursor,
		},
	}
}

// ToStatsResponse maps statistics to their API form.
func ToStatsResponse(s *query.Statistics) *StatsResponse {
	totals := make([]TotalsDTO, 0, len(s.Totals))
	for _, t := range s.Totals {
		totals = append(totals, TotalsDTO{
			Currency: t.Currency.String(),
			Inflow:   money.Format(t.Inflow, t.Currency),
			Outflow:  money.Format(t.Outflow, t.Currency),
			Net:      money.Format(t.Net, t.Currency),
		})
	}
	return &StatsResponse{
		PeriodDays: s.WindowDays,
		Since:      timestamp(s.Since),
		Count:      s.Count,
		Totals:     totals,
		Recent:     toTransactionDTOs(s.Recent),
	}
}

// ToBalanceResponse maps a balance to its API form.
func ToBalanceResponse(b *query.Balance) *BalanceResponse {
	return &BalanceResponse{
		AccountID:     b.AccountID.String(),
		AccountNumber: b.AccountNumber,
		AccountType:   string(b.Category),
		Balance:       b.Balance.String(),
		Currency:      b.Balance.Currency().String(),
	}
}
