package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"suidoc/internal/auth"
)

// AddressLocalKey holds the authenticated wallet address in Fiber's context locals.
const AddressLocalKey = "wallet_address"

// TokenVerifier validates a session token.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// Auth requires a Bearer session token and stores its wallet address under AddressLocalKey.
func Auth(v TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		h := c.Get(fiber.HeaderAuthorization)
		token, ok := strings.CutPrefix(h, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}
		claims, err := v.Verify(strings.TrimSpace(token))
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
		}
		c.Locals(AddressLocalKey, claims.Address)
		return c.Next()
	}
}

// Address returns the wallet address set by Auth.
func Address(c *fiber.Ctx) string {
	a, _ := c.Locals(AddressLocalKey).(string)
	return a
}
