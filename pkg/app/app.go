// Package app wires the services behind the HTTP layer.
package app

import (
	"context"
	"log/slog"

	"github.com/amirasaad/mobank/pkg/config"
	"github.com/amirasaad/mobank/pkg/repository"
	accountsvc "github.com/amirasaad/mobank/pkg/service/account"
	"github.com/amirasaad/mobank/pkg/service/ledger"
	"github.com/amirasaad/mobank/pkg/service/query"
	"github.com/gofiber/fiber/v2"
)

// Deps contains the infrastructure the services are built on.
type Deps struct {
	Uow repository.UnitOfWork
	// RateLimitStorage shares limiter counters across instances. Nil keeps
	// them in process memory.
	RateLimitStorage fiber.Storage
	// Ping reports store liveness for /healthz.
	Ping   func(ctx context.Context) error
	Logger *slog.Logger
}

type App struct {
	Deps           *Deps
	Config         *config.App
	Ledger         *ledger.Engine
	QueryService   *query.Service
	AccountService *accountsvc.Service
}

func New(deps *Deps, cfg *config.App) *App {
	ledgerCfg := config.Ledger{}
	if cfg.Ledger != nil {
		ledgerCfg = *cfg.Ledger
	}
	return &App{
		Deps:           deps,
		Config:         cfg,
		Ledger:         ledger.New(deps.Uow, ledgerCfg, deps.Logger.With("service", "ledger")),
		QueryService:   query.New(deps.Uow, ledgerCfg, deps.Logger.With("service", "query")),
		AccountService: accountsvc.New(deps.Uow, deps.Logger.With("service", "account")),
	}
}
