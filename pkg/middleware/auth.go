// Package middleware holds fiber middleware shared by the HTTP routes.
package middleware

import (
	"errors"
	"fmt"

	"github.com/amirasaad/mobank/pkg/config"
	"github.com/amirasaad/mobank/webapi/common"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	userContextKey = "user"
	userIDClaim    = "user_id"
)

// ErrMissingUser is returned when no verified token is attached to the request.
var ErrMissingUser = errors.New("missing user context")

// JwtProtected verifies the HS256 bearer token issued by the identity
// provider and stores it in the request locals.
func JwtProtected(cfg *config.Jwt) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:   jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: []byte(cfg.Secret)},
		ContextKey:   userContextKey,
		ErrorHandler: jwtError,
		SuccessHandler: func(c *fiber.Ctx) error {
			if _, err := UserID(c); err != nil {
				return jwtError(c, err)
			}
			return c.Next()
		},
	})
}

// UserID returns the authenticated caller taken from the user_id claim.
func UserID(c *fiber.Ctx) (uuid.UUID, error) {
	token, ok := c.Locals(userContextKey).(*jwt.Token)
	if !ok {
		return uuid.Nil, ErrMissingUser
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, fmt.Errorf("unexpected claims type %T", token.Claims)
	}
	raw, ok := claims[userIDClaim].(string)
	if !ok {
		return uuid.Nil, fmt.Errorf("token has no %s claim", userIDClaim)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s claim: %w", userIDClaim, err)
	}
	return id, nil
}

// CurrentUser is UserID for handlers: when ok is false the 401 problem
// response is already written.
func CurrentUser(c *fiber.Ctx) (id uuid.UUID, ok bool, err error) {
	id, uerr := UserID(c)
	if uerr != nil {
		log.Errorf("Failed to read user from token: %v", uerr)
		return uuid.Nil, false, common.ProblemDetailsJSON(c, "Unauthorized", fiber.ErrUnauthorized, uerr.Error())
	}
	return id, true, nil
}

func jwtError(c *fiber.Ctx, err error) error {
	if errors.Is(err, jwtware.ErrJWTMissingOrMalformed) {
		return common.ProblemDetailsJSON(c, "Bad Request", fiber.ErrBadRequest,
			"Missing or malformed JWT", fiber.StatusBadRequest)
	}
	return common.ProblemDetailsJSON(c, "Unauthorized", fiber.ErrUnauthorized,
		"Invalid or expired JWT", fiber.StatusUnauthorized)
}
