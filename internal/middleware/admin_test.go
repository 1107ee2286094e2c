package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestAdminAuth(t *testing.T) {
	newApp := func(token string) *fiber.App {
		app := fiber.New(fiber.Config{ErrorHandler: JSONErrorHandler})
		app.Get("/events", AdminAuth(token), func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusOK)
		})
		return app
	}

	cases := []struct {
		name   string
		token  string
		header string
		want   int
	}{
		{"missing header", "s3cret", "", fiber.StatusUnauthorized},
		{"not bearer", "s3cret", "s3cret", fiber.StatusUnauthorized},
		{"wrong token", "s3cret", "Bearer nope", fiber.StatusUnauthorized},
		{"prefix of token", "s3cret", "Bearer s3c", fiber.StatusUnauthorized},
		{"empty configured token", "", "Bearer ", fiber.StatusUnauthorized},
		{"valid", "s3cret", "Bearer s3cret", fiber.StatusOK},
		{"case-insensitive scheme", "s3cret", "bearer s3cret", fiber.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, "/events", nil)
			if tc.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tc.header)
			}
			resp, err := newApp(tc.token).Test(req)
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			if resp.StatusCode != tc.want {
				t.Fatalf("expected %d got %d", tc.want, resp.StatusCode)
			}
		})
	}
}
