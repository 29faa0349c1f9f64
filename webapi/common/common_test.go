package common_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/amirasaad/mobank/pkg/domain"
	"github.com/amirasaad/mobank/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorToStatusCode(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{domain.ErrAccountNotFound, fiber.StatusNotFound},
		{domain.ErrTransactionNotFound, fiber.StatusNotFound},
		{domain.ErrForbidden, fiber.StatusForbidden},
		{domain.ErrInsufficientFunds, fiber.StatusUnprocessableEntity},
		{domain.ErrInvalidRequest, fiber.StatusBadRequest},
		{domain.ErrDuplicateReference, fiber.StatusInternalServerError},
		{domain.ErrStorageUnavailable, fiber.StatusServiceUnavailable},
		{domain.ErrOutcomeUnknown, fiber.StatusGatewayTimeout},
		{fmt.Errorf("%w: balance 1.00", domain.ErrInsufficientFunds), fiber.StatusUnprocessableEntity},
		{fiber.ErrUnauthorized, fiber.StatusUnauthorized},
		{errors.New("boom"), fiber.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, common.ErrorToStatusCode(tc.err), tc.err.Error())
	}
}

func problem(t *testing.T, app *fiber.App, method, path, body string) (int, string, common.ProblemDetails) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint: errcheck
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var pd common.ProblemDetails
	require.NoError(t, json.Unmarshal(raw, &pd))
	return resp.StatusCode, resp.Header.Get("Content-Type"), pd
}

func TestProblemDetailsJSON(t *testing.T) {
	app := fiber.New()
	app.Get("/funds", func(c *fiber.Ctx) error {
		return common.ProblemDetailsJSON(c, "Transaction rejected",
			fmt.Errorf("%w: balance 1.00, requested 2.00", domain.ErrInsufficientFunds))
	})
	app.Get("/internal", func(c *fiber.Ctx) error {
		return common.ProblemDetailsJSON(c, "Internal Server Error", errors.New("pq: secret table"))
	})
	app.Get("/override", func(c *fiber.Ctx) error {
		return common.ProblemDetailsJSON(c, "Invalid account ID", domain.ErrInvalidRequest,
			"account id must be a UUID", fiber.StatusBadRequest)
	})

	status, ctype, pd := problem(t, app, fiber.MethodGet, "/funds", "")
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Equal(t, common.MIMEProblemJSON, ctype)
	assert.Equal(t, "INSUFFICIENT_FUNDS", pd.Code)
	assert.Equal(t, "/funds", pd.Instance)
	assert.Contains(t, pd.Detail, "requested 2.00")

	status, _, pd = problem(t, app, fiber.MethodGet, "/internal", "")
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "INTERNAL", pd.Code)
	assert.NotContains(t, pd.Detail, "secret")

	status, _, pd = problem(t, app, fiber.MethodGet, "/override", "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "account id must be a UUID", pd.Detail)
}

type payload struct {
	Amount json.Number `json:"amount" validate:"required"`
	Note   string      `json:"note" validate:"max=5"`
}

func TestBindAndValidate(t *testing.T) {
	app := fiber.New()
	app.Post("/", func(c *fiber.Ctx) error {
		in, err := common.BindAndValidate[payload](c)
		if in == nil {
			return err
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "ok", fiber.Map{"amount": in.Amount.String()})
	})

	for _, body := range []string{`{"amount": 25.50}`, `{"amount": "25.50"}`} {
		req := httptest.NewRequest(fiber.MethodPost, "/", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		var out struct {
			Data struct {
				Amount string `json:"amount"`
			} `json:"data"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		_ = resp.Body.Close()
		assert.Equal(t, fiber.StatusOK, resp.StatusCode, body)
		assert.Equal(t, "25.50", out.Data.Amount, body)
	}

	status, _, pd := problem(t, app, fiber.MethodPost, "/", `{"amount": "1", "note": "too long"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "INVALID_REQUEST", pd.Code)
	assert.Contains(t, pd.Detail, "Note failed max=5")

	status, _, pd = problem(t, app, fiber.MethodPost, "/", `{"amount": `)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Invalid request body", pd.Title)
}
