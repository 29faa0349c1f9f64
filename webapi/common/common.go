// Package common holds the response envelope, RFC 9457 problem details and
// request binding shared by every handler.
package common

import (
	"errors"
	"fmt"
	"strings"

	"github.com/amirasaad/mobank/pkg/domain"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Response defines the standard API response structure for success cases.
type Response struct {
	Status  int    `json:"status"`         // HTTP status code
	Message string `json:"message"`        // Human-readable explanation
	Data    any    `json:"data,omitempty"` // Response data
}

// ProblemDetails follows RFC 9457 Problem Details for HTTP APIs, extended
// with the stable machine code of the failure.
type ProblemDetails struct {
	Type     string `json:"type,omitempty"`     // A URI reference that identifies the problem type
	Title    string `json:"title"`              // Short, human-readable summary
	Status   int    `json:"status"`             // HTTP status code
	Code     string `json:"code,omitempty"`     // Stable machine-readable error code
	Detail   string `json:"detail,omitempty"`   // Human-readable explanation
	Instance string `json:"instance,omitempty"` // URI reference that identifies the specific occurrence
	Errors   any    `json:"errors,omitempty"`   // Optional: additional error details
}

// MIMEProblemJSON is the media type of problem responses.
const MIMEProblemJSON = "application/problem+json"

var validate = validator.New(validator.WithRequiredStructEnabled())

// ErrorToStatusCode maps domain errors to HTTP status codes.
func ErrorToStatusCode(err error) int {
	var fe *fiber.Error
	switch {
	case err == nil:
		return fiber.StatusOK
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrTransactionNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, domain.ErrInsufficientFunds):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidRequest):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrStorageUnavailable):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, domain.ErrOutcomeUnknown):
		return fiber.StatusGatewayTimeout
	default:
		return fiber.StatusInternalServerError
	}
}

// ProblemDetailsJSON writes err as application/problem+json. Optional
// args override the defaults: a string replaces the detail, an int the
// status derived from err. Internal failures never expose their message.
func ProblemDetailsJSON(c *fiber.Ctx, title string, err error, args ...any) error {
	status := ErrorToStatusCode(err)
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	for _, arg := range args {
		switch v := arg.(type) {
		case string:
			detail = v
		case int:
			status = v
		}
	}

	pd := ProblemDetails{
		Type:     "about:blank",
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: c.OriginalURL(),
	}
	if err != nil {
		var fe *fiber.Error
		if !errors.As(err, &fe) {
			pd.Code = string(domain.CodeOf(err))
		}
	}
	if pd.Code == string(domain.CodeInternal) || pd.Code == string(domain.CodeDuplicateReference) {
		pd.Detail = "an unexpected error occurred"
	}

	if err := c.Status(status).JSON(pd); err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, MIMEProblemJSON)
	return nil
}

// SuccessResponseJSON writes the standard success envelope.
func SuccessResponseJSON(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Response{
		Status:  status,
		Message: message,
		Data:    data,
	})
}

// BindAndValidate parses the request body into T and validates it. On
// failure the problem response is already written and the returned error
// is what the handler should return.
func BindAndValidate[T any](c *fiber.Ctx) (*T, error) {
	var input T
	if err := c.BodyParser(&input); err != nil {
		return nil, ProblemDetailsJSON(c, "Invalid request body",
			fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err))
	}
	if err := validate.Struct(input); err != nil {
		return nil, ProblemDetailsJSON(c, "Validation failed",
			fmt.Errorf("%w: %s", domain.ErrInvalidRequest, describe(err)))
	}
	return &input, nil
}

// ValidateQuery parses the query string into T and validates it.
func ValidateQuery[T any](c *fiber.Ctx) (*T, error) {
	var input T
	if err := c.QueryParser(&input); err != nil {
		return nil, ProblemDetailsJSON(c, "Invalid query",
			fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err))
	}
	if err := validate.Struct(input); err != nil {
		return nil, ProblemDetailsJSON(c, "Validation failed",
			fmt.Errorf("%w: %s", domain.ErrInvalidRequest, describe(err)))
	}
	return &input, nil
}

// ParamUUID parses a route parameter. When ok is false the problem
// response is already written.
func ParamUUID(c *fiber.Ctx, name string) (id uuid.UUID, ok bool, err error) {
	id, perr := uuid.Parse(c.Params(name))
	if perr != nil {
		return uuid.Nil, false, ProblemDetailsJSON(c, "Invalid "+name, domain.ErrInvalidRequest,
			name+" must be a valid UUID")
	}
	return id, true, nil
}

// OptionalUUID parses a value already checked by the uuid validator. The
// empty string yields nil.
func OptionalUUID(s string) *uuid.UUID {
	if s == "" {
		return nil
	}
	id := uuid.MustParse(s)
	return &id
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}
