// Package testutils holds shared fixtures for package tests: throwaway
// databases, seeded accounts, signed tokens and HTTP helpers.
package testutils

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/amirasaad/mobank/internal/migrations"
	infrarepo "github.com/amirasaad/mobank/infra/repository"
	"github.com/amirasaad/mobank/pkg/currency"
	"github.com/amirasaad/mobank/pkg/domain/account"
	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestJWTSecret signs tokens minted by SignToken.
const TestJWTSecret = "test-secret"

// NewSQLiteDB opens a file-backed SQLite database in t.TempDir with the
// schema auto-migrated. A single connection serialises every transaction.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	return openSQLite(t, "?_pragma=foreign_keys(1)", 1)
}

// NewConcurrentSQLiteDB is NewSQLiteDB with conns pooled connections in WAL
// mode, waiting on busy_timeout for the write lock, so units of work from
// different goroutines run on separate connections.
func NewConcurrentSQLiteDB(t *testing.T, conns int) *gorm.DB {
	t.Helper()
	return openSQLite(t,
		"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)",
		conns,
	)
}

func openSQLite(t *testing.T, params string, conns int) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.db")
	db, err := gorm.Open(sqlite.Open(path+params), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(conns)
	sqlDB.SetMaxIdleConns(conns)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(infrarepo.Models()...))
	return db
}

// NewPostgresDB starts a disposable Postgres container and applies the
// embedded migrations. The test is skipped when no container runtime is
// reachable.
func NewPostgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	pg, err := tcpostgres.Run(
		ctx,
		"postgres:15-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(context.Background()) })

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(20)

	_, err = migrations.Up(sqlDB)
	require.NoError(t, err)
	return db
}

// SeedAccount stores an active account for userID with the given balance.
func SeedAccount(
	t *testing.T,
	db *gorm.DB,
	userID uuid.UUID,
	code currency.Code,
	balance int64,
) *account.Account {
	t.Helper()
	acc, err := account.New().
		WithUserID(userID).
		WithNumber(RandomNumber()).
		WithCurrency(code).
		WithBalance(balance).
		Build()
	require.NoError(t, err)
	require.NoError(t, infrarepo.NewAccountRepository(db).Create(context.Background(), acc))
	return acc
}

// Balance reads the stored balance of an account.
func Balance(t *testing.T, db *gorm.DB, id uuid.UUID) int64 {
	t.Helper()
	acc, err := infrarepo.NewAccountRepository(db).Get(context.Background(), id)
	require.NoError(t, err)
	return acc.Balance.Amount()
}

// RandomNumber returns a 10-digit account number derived from a fresh uuid.
func RandomNumber() string {
	id := uuid.New()
	digits := make([]byte, account.NumberLength)
	for i := range digits {
		digits[i] = '0' + id[i]%10
	}
	return string(digits)
}

// SignToken mints an HS256 bearer token carrying userID, signed with
// TestJWTSecret.
func SignToken(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID.String(),
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(TestJWTSecret))
	require.NoError(t, err)
	return signed
}

// MakeRequest is a helper for making HTTP requests in tests.
func MakeRequest(
	t *testing.T,
	app *fiber.App,
	method, path, body, token string,
	headers ...string,
) *http.Response {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}
