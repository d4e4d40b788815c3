package middleware

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/auth"
	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/dto"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// JWTProtected rejects requests without a valid bearer token for an existing user.
// A missing token is 401; an invalid token or unknown user is 403.
func JWTProtected(authority *auth.Authority) fiber.Handler {
	return newJWT(authority, true)
}

// JWTOptional attaches the caller's identity when a valid token is present and
// otherwise lets the request through anonymously.
func JWTOptional(authority *auth.Authority) fiber.Handler {
	return newJWT(authority, false)
}

func newJWT(authority *auth.Authority, required bool) fiber.Handler {
	return jwtware.New(jwtware.Config{
		KeyFunc:     authority.Keyfunc,
		Claims:      &auth.Claims{},
		ContextKey:  "user",
		TokenLookup: "header:" + fiber.HeaderAuthorization,
		AuthScheme:  "Bearer",
		SuccessHandler: func(c *fiber.Ctx) error {
			token, _ := c.Locals("user").(*jwt.Token)
			claims, ok := token.Claims.(*auth.Claims)
			if !ok {
				return reject(c, required, auth.ErrInvalidToken)
			}

			identity, err := authority.Resolve(c.UserContext(), claims)
			if err != nil {
				if !errors.Is(err, auth.ErrSubjectNotFound) && !errors.Is(err, auth.ErrInvalidToken) {
					slog.Error("token subject lookup failed", "error", err, "action", "auth")
					if required {
						return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
							Error: "Internal server error", Message: "An unexpected error occurred",
						})
					}
				}
				return reject(c, required, err)
			}

			auth.SetIdentity(c, identity)
			return c.Next()
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if errors.Is(err, jwtware.ErrJWTMissingOrMalformed) {
				return reject(c, required, auth.ErrMissingToken)
			}
			return reject(c, required, auth.ErrInvalidToken)
		},
	})
}

func reject(c *fiber.Ctx, required bool, err error) error {
	if !required {
		return c.Next()
	}

	switch {
	case errors.Is(err, auth.ErrMissingToken):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: "Access token required", Message: "Please provide a valid authentication token",
		})
	case errors.Is(err, auth.ErrSubjectNotFound):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: "User not found", Message: "User associated with this token no longer exists",
		})
	default:
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: "Invalid token", Message: "Token is invalid or expired",
		})
	}
}
