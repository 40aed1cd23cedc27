package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/pehchaan/pehchaan_be/internal/utils"
)

// JWTFromHeader reads a bearer token from the Authorization header.
func JWTFromHeader(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		auth := c.Get("Authorization")
		if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
			return fiber.ErrUnauthorized
		}
		tokenStr := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))

		token, err := utils.ParseJWT(secret, tokenStr)
		if err != nil || !token.Valid {
			return fiber.ErrUnauthorized
		}

		c.Locals("user", token)
		return c.Next()
	}
}
