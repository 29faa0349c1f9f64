package account

import (
	"github.com/amirasaad/mobank/pkg/config"
	"github.com/amirasaad/mobank/pkg/currency"
	"github.com/amirasaad/mobank/pkg/domain/account"
	"github.com/amirasaad/mobank/pkg/middleware"
	accountsvc "github.com/amirasaad/mobank/pkg/service/account"
	"github.com/amirasaad/mobank/webapi/common"
	"github.com/gofiber/fiber/v2"
)

// Routes registers HTTP routes for the account lifecycle. All routes are
// protected by authentication middleware.
//
// Routes:
//   - POST /accounts                 : Open an account for the authenticated user.
//   - GET  /accounts                 : List the authenticated user's accounts.
//   - POST /accounts/:id/deactivate  : Deactivate an owned account.
func Routes(app *fiber.App, accountSvc *accountsvc.Service, cfg *config.App) {
	protected := middleware.JwtProtected(cfg.Auth.Jwt)
	app.Post("/accounts", protected, CreateAccount(accountSvc))
	app.Get("/accounts", protected, ListAccounts(accountSvc))
	app.Post("/accounts/:id/deactivate", protected, DeactivateAccount(accountSvc))
}

// CreateAccount returns a Fiber handler that opens an empty account. The
// account type defaults to checking and the currency to USD.
func CreateAccount(accountSvc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := middleware.CurrentUser(c)
		if !ok {
			return err
		}
		input, err := common.BindAndValidate[CreateAccountRequest](c)
		if input == nil {
			return err // error response already written
		}
		a, err := accountSvc.OpenAccount(c.UserContext(), userID,
			account.Category(input.AccountType), currency.Code(input.Currency))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to create account", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Account created", ToAccountDTO(a))
	}
}

// ListAccounts returns a Fiber handler listing the caller's accounts.
func ListAccounts(accountSvc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := middleware.CurrentUser(c)
		if !ok {
			return err
		}
		accs, err := accountSvc.ListAccounts(c.UserContext(), userID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list accounts", err)
		}
		out := make([]*AccountDTO, 0, len(accs))
		for _, a := range accs {
			out = append(out, ToAccountDTO(a))
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Accounts fetched", out)
	}
}

// DeactivateAccount returns a Fiber handler that deactivates an owned
// account.
func DeactivateAccount(accountSvc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok, err := middleware.CurrentUser(c)
		if !ok {
			return err
		}
		accountID, ok, err := common.ParamUUID(c, "id")
		if !ok {
			return err
		}
		a, err := accountSvc.DeactivateAccount(c.UserContext(), userID, accountID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to deactivate account", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Account deactivated", ToAccountDTO(a))
	}
}
