// Package webapi provides the HTTP/JSON binding of the ledger service.
// It is organized into sub-packages:
// - transaction: execute, list, statistics and balance endpoints
// - account: account lifecycle endpoints
// - common: response envelope, problem details and request binding
package webapi

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amirasaad/mobank/pkg/app"
	"github.com/amirasaad/mobank/pkg/domain"
	accountweb "github.com/amirasaad/mobank/webapi/account"
	"github.com/amirasaad/mobank/webapi/common"
	transactionweb "github.com/amirasaad/mobank/webapi/transaction"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

const healthTimeout = 2 * time.Second

// SetupApp Initialize Fiber with custom configuration
func SetupApp(a *app.App) *fiber.App {
	fiberCfg := fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return common.ProblemDetailsJSON(c, "Internal Server Error", err)
		},
	}
	if srv := a.Config.Server; srv != nil && srv.ProxyHeader != "" {
		// c.IP() reads the header only when the peer is a trusted proxy.
		fiberCfg.ProxyHeader = srv.ProxyHeader
		fiberCfg.EnableTrustedProxyCheck = true
		fiberCfg.TrustedProxies = srv.TrustedProxies
		fiberCfg.EnableIPValidation = true
	}
	fiberApp := fiber.New(fiberCfg)

	fiberApp.Use(recover.New())
	fiberApp.Use(requestid.New())

	limiterCfg := limiter.Config{
		Max:        100,
		Expiration: time.Minute,
		Storage:    a.Deps.RateLimitStorage,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return common.ProblemDetailsJSON(
				c,
				"Too Many Requests",
				errors.New("rate limit exceeded"),
				fiber.StatusTooManyRequests,
			)
		},
	}
	if rl := a.Config.RateLimit; rl != nil {
		limiterCfg.Max = rl.MaxRequests
		limiterCfg.Expiration = rl.Window
	}
	fiberApp.Use(limiter.New(limiterCfg))
	fiberApp.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))

	fiberApp.Get("/healthz", Health(a.Deps.Ping))

	transactionweb.Routes(fiberApp, a.Ledger, a.QueryService, a.Config)
	accountweb.Routes(fiberApp, a.AccountService, a.Config)
	return fiberApp
}

// Health returns a handler reporting whether the store answers.
func Health(ping func(ctx context.Context) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if ping != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
			defer cancel()
			if err := ping(ctx); err != nil {
				return common.ProblemDetailsJSON(c, "Service Unavailable",
					fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err))
			}
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}
