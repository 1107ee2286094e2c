package qr

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/qrseal/qrseal/internal/audit"
	"github.com/qrseal/qrseal/internal/seal"
)

// Public message for every verification failure; the detail stays in the logs.
const invalidPayloadMessage = "invalid payload"

// Handler exposes sealing endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a QR HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Encrypt seals {name, phone} and returns the payload JSON.
func (h *Handler) Encrypt(c *fiber.Ctx) error {
	var req SealRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}
	p, err := h.service.Seal(c.UserContext(), seal.Fields{Name: req.Name, Phone: req.Phone})
	if err != nil {
		return toHTTPError(err)
	}
	return c.Status(http.StatusOK).JSON(p)
}

// EncryptQR seals {name, phone} and returns the payload rendered as a PNG.
func (h *Handler) EncryptQR(c *fiber.Ctx) error {
	var req SealRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}
	p, err := h.service.Seal(c.UserContext(), seal.Fields{Name: req.Name, Phone: req.Phone})
	if err != nil {
		return toHTTPError(err)
	}
	png, err := h.service.Render(c.UserContext(), p.String(), req.Size)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "render failed")
	}
	c.Set("X-QR-Fingerprint", p.Fingerprint())
	c.Type("png")
	return c.Status(http.StatusOK).Send(png)
}

// Decrypt verifies a payload and returns its fields.
func (h *Handler) Decrypt(c *fiber.Ctx) error {
	fields, err := h.service.Open(c.UserContext(), c.Body())
	if err != nil {
		return toHTTPError(err)
	}
	return c.Status(http.StatusOK).JSON(FieldsResponse{Name: fields.Name, Phone: fields.Phone})
}

// Sign produces the plain-signed form.
func (h *Handler) Sign(c *fiber.Ctx) error {
	var req SealRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}
	p, err := h.service.Sign(c.UserContext(), seal.Fields{Name: req.Name, Phone: req.Phone})
	if err != nil {
		return toHTTPError(err)
	}
	return c.Status(http.StatusOK).JSON(p)
}

// Verify checks a plain-signed payload.
func (h *Handler) Verify(c *fiber.Ctx) error {
	fields, err := h.service.OpenSigned(c.UserContext(), c.Body())
	if err != nil {
		return toHTTPError(err)
	}
	return c.Status(http.StatusOK).JSON(FieldsResponse{Name: fields.Name, Phone: fields.Phone})
}

// Events lists recent audit events.
func (h *Handler) Events(c *fiber.Ctx) error {
	events, err := h.service.Events(c.UserContext(), c.QueryInt("limit", audit.DefaultRecentLimit))
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "events unavailable")
	}
	return c.JSON(EventsResponse{Events: events, Count: len(events)})
}

func toHTTPError(err error) error {
	var verr *seal.ValidationError
	switch {
	case errors.As(err, &verr):
		return fiber.NewError(http.StatusBadRequest, verr.Error())
	case errors.Is(err, seal.ErrIntegrityMismatch):
		return fiber.NewError(http.StatusUnauthorized, invalidPayloadMessage)
	case errors.Is(err, seal.ErrMalformedPayload), errors.Is(err, seal.ErrDecryptionFailed):
		return fiber.NewError(http.StatusBadRequest, invalidPayloadMessage)
	case errors.Is(err, seal.ErrCryptoUnavailable):
		return fiber.NewError(http.StatusInternalServerError, "encryption unavailable")
	default:
		return fiber.NewError(http.StatusInternalServerError, "internal error")
	}
}
