package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/qrseal/qrseal/internal/middleware"
	"github.com/qrseal/qrseal/internal/qr"
)

// RegisterQRRoutes wires sealing and verification endpoints. Idempotency is
// mounted on sealing routes only; rate limiting on verification routes only.
func RegisterQRRoutes(r fiber.Router, h *qr.Handler, idempotency, rateLimiter fiber.Handler) {
	r.Post("/encrypt", idempotency, h.Encrypt)
	r.Post("/encrypt/qr", idempotency, h.EncryptQR)
	r.Post("/sign", idempotency, h.Sign)

	r.Post("/decrypt", rateLimiter, h.Decrypt)
	r.Post("/verify", rateLimiter, h.Verify)
}

// RegisterAdminRoutes exposes the audit trail behind a bearer token. Nothing
// is mounted when token is empty.
func RegisterAdminRoutes(app *fiber.App, h *qr.Handler, token string) {
	if token == "" {
		return
	}
	admin := app.Group("/admin/v1", middleware.AdminAuth(token))
	admin.Get("/events", h.Events)
}
