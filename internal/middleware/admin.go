package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// AdminAuth admits requests carrying "Authorization: Bearer <token>". Audit
// data includes per-request rejection reasons, so it is never served to
// anonymous callers. An empty token rejects everything.
func AdminAuth(token string) fiber.Handler {
	want := []byte(token)
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return fiber.NewError(http.StatusUnauthorized, "missing bearer token")
		}
		got := []byte(strings.TrimSpace(authz[len("Bearer "):]))
		if len(want) == 0 || subtle.ConstantTimeCompare(got, want) != 1 {
			return fiber.NewError(http.StatusUnauthorized, "invalid token")
		}
		return c.Next()
	}
}
