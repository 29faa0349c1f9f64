package transaction

import (
	"github.com/amirasaad/mobank/pkg/config"
	"github.com/amirasaad/mobank/pkg/domain/account"
	"github.com/amirasaad/mobank/pkg/middleware"
	"github.com/amirasaad/mobank/pkg/service/ledger"
	"github.com/amirasaad/mobank/pkg/service/query"
	"github.com/amirasaad/mobank/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// IdempotencyKeyHeader lets clients retry a POST /transactions safely.
const IdempotencyKeyHeader = "Idempotency-Key"

// Routes registers the ledger endpoints. Every route requires a bearer
// token.
//
// Routes:
//   - POST /transactions                     : Execute a transfer, deposit, withdrawal or payment.
//   - GET  /transactions                     : List the caller's transactions, newest first.
//   - GET  /transactions/stats               : Summarise the caller's recent activity.
//   - GET  /transactions/balance/:accountId  : Current balance of an owned account.
//   - GET  /transactions/:id                 : One transaction visible to the caller.
func Routes(app *fiber.App, engine *ledger.Engine, querySvc *query.Service, cfg *config.App) {
	protected := middleware.JwtProtected(cfg.Auth.Jwt)
	app.Post("/transactions", protected, CreateTransaction(engine))
	app.Get("/transactions", protected, ListTransactions(querySvc))
	app.Get("/transactions/stats", protected, GetStatistics(querySvc))
	app.Get("/transactions/balance/:accountId", protected, GetBalance(querySvc))
	app.Get("/transactions/:id", protected, GetTransaction(querySvc))
}

// CreateTransaction returns a handler that executes a money movement and
// responds with the committed ledger entry.
func CreateTransaction(engine *ledger.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := middleware.CurrentUser(c)
		if !ok {
			return err
		}
		input, err := common.BindAndValidate[CreateTransactionRequest](c)
		if input == nil {
			return err // error response already written
		}
		tx, err := engine.ExecuteTransaction(c.UserContext(), ledger.Request{
			CallerID:             userID,
			Kind:                 account.Kind(input.Type),
			Amount:               input.Amount.String(),
			SourceAccountID:      uuid.MustParse(input.SourceAccountID),
			DestinationAccountID: common.OptionalUUID(input.DestinationAccountID),
			CounterpartyName:     input.CounterpartyName,
			CounterpartyEmail:    input.CounterpartyEmail,
			Description:          input.Description,
			IdempotencyKey:       c.Get(IdempotencyKeyHeader),
		})
		if err != nil {
			return common.ProblemDetailsJSON(c, "Transaction failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Transaction completed successfully", ToTransactionDTO(tx))
	}
}

// ListTransactions returns a handler serving one page of history.
func ListTransactions(querySvc *query.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := middleware.CurrentUser(c)
		if !ok {
			return err
		}
		q, err := common.ValidateQuery[ListQuery](c)
		if q == nil {
			return err
		}
		page, err := querySvc.ListTransactions(c.UserContext(), userID,
			query.ListFilter{Kind: account.Kind(q.Type), AccountID: common.OptionalUUID(q.AccountID)},
			query.PageRequest{PageNumber: q.Page, PageSize: q.Limit, Cursor: q.Cursor},
		)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list transactions", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Transactions fetched", ToListResponse(page))
	}
}

// GetStatistics returns a handler summarising the caller's activity.
func GetStatistics(querySvc *query.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := middleware.CurrentUser(c)
		if !ok {
			return err
		}
		q, err := common.ValidateQuery[StatsQuery](c)
		if q == nil {
			return err
		}
		stats, err := querySvc.GetStatistics(c.UserContext(), userID, query.StatisticsRequest{
			AccountID:  common.OptionalUUID(q.AccountID),
			WindowDays: q.Period,
		})
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to compute statistics", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Statistics fetched", ToStatsResponse(stats))
	}
}

// GetBalance returns a handler reporting the balance of an owned account.
func GetBalance(querySvc *query.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := middleware.CurrentUser(c)
		if !ok {
			return err
		}
		accountID, ok, err := common.ParamUUID(c, "accountId")
		if !ok {
			return err
		}
		balance, err := querySvc.GetBalance(c.UserContext(), userID, accountID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to fetch balance", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Balance fetched", ToBalanceResponse(balance))
	}
}

// GetTransaction returns a handler serving one visible transaction.
func GetTransaction(querySvc *query.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := middleware.CurrentUser(c)
		if !ok {
			return err
		}
		id, ok, err := common.ParamUUID(c, "id")
		if !ok {
			return err
		}
		tx, err := querySvc.GetTransaction(c.UserContext(), userID, id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to fetch transaction", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Transaction fetched", ToTransactionDTO(tx))
	}
}
