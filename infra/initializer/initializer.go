// Package initializer builds the process-wide dependencies from config.
package initializer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/amirasaad/mobank/infra"
	"github.com/amirasaad/mobank/infra/cache"
	infrarepo "github.com/amirasaad/mobank/infra/repository"
	"github.com/amirasaad/mobank/pkg/app"
	"github.com/amirasaad/mobank/pkg/config"
	"gorm.io/gorm"
)

// InitializeDependencies initializes all the application dependencies. The
// returned close function releases the database and Redis handles.
func InitializeDependencies(cfg *config.App) (
	deps *app.Deps,
	closeFn func() error,
	err error,
) {
	logger := setupLogger(cfg.Log, os.Stdout)
	deps = &app.Deps{Logger: logger}

	db, err := infra.NewDBConnection(cfg.DB, cfg.Env)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		return nil, nil, err
	}
	closers := []func() error{func() error { return infra.Close(db) }}
	closeFn = func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i]())
		}
		return errors.Join(errs...)
	}

	if cfg.DB.AutoMigrate {
		if err := infra.Migrate(db, logger); err != nil {
			_ = closeFn()
			return nil, nil, fmt.Errorf("failed to apply migrations: %w", err)
		}
	}

	deps.Uow = infrarepo.NewUoW(db)
	deps.Ping = func(ctx context.Context) error { return infra.Ping(ctx, db) }

	storage, err := rateLimitStorage(cfg.Redis, logger)
	if err != nil {
		_ = closeFn()
		return nil, nil, err
	}
	if storage != nil {
		deps.RateLimitStorage = storage
		closers = append(closers, storage.Close)
	}

	logDatabase(db, logger)
	return deps, closeFn, nil
}

// rateLimitStorage connects the shared limiter store. A nil storage means
// the limiter keeps counters in memory.
func rateLimitStorage(cfg *config.Redis, logger *slog.Logger) (*cache.RedisStorage, error) {
	if cfg == nil || cfg.URL == "" {
		logger.Info("Rate limiter using in-memory storage")
		return nil, nil
	}
	storage, err := cache.NewRedisStorage(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect rate limit storage: %w", err)
	}
	logger.Info("Rate limiter using Redis storage", "prefix", cfg.KeyPrefix)
	return storage, nil
}

func logDatabase(db *gorm.DB, logger *slog.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	stats := sqlDB.Stats()
	logger.Info("Database ready",
		"dialect", db.Dialector.Name(),
		"maxOpenConnections", stats.MaxOpenConnections,
	)
}
