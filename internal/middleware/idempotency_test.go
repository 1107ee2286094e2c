package middleware

import (
	"io"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/qrseal/qrseal/internal/logging"
)

func setupTestApp(t *testing.T) (*fiber.App, *int64, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}

	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	app := fiber.New()
	logger := logging.Discard()

	var calls int64
	app.Use(Idempotency(cache, time.Minute, logger))
	app.Post("/encrypt", func(c *fiber.Ctx) error {
		n := atomic.AddInt64(&calls, 1)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"call": n})
	})
	app.Post("/fail", func(c *fiber.Ctx) error {
		atomic.AddInt64(&calls, 1)
		return fiber.NewError(fiber.StatusBadRequest, "name is required")
	})

	cleanup := func() {
		cache.Close()
		mr.Close()
	}
	return app, &calls, cleanup
}

func post(t *testing.T, app *fiber.App, path, key string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, path, strings.NewReader("{}"))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if key != "" {
		req.Header.Set(idempotencyKeyHeader, key)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, string(body)
}

func TestIdempotencyHeaderIsOptional(t *testing.T) {
	app, calls, cleanup := setupTestApp(t)
	defer cleanup()

	post(t, app, "/encrypt", "")
	post(t, app, "/encrypt", "")
	if *calls != 2 {
		t.Fatalf("expected 2 handler calls without a key, got %d", *calls)
	}
}

func TestIdempotencyReturnsCachedResponse(t *testing.T) {
	app, calls, cleanup := setupTestApp(t)
	defer cleanup()

	status, first := post(t, app, "/encrypt", "abc123")
	if status != fiber.StatusOK {
		t.Fatalf("expected status %d got %d", fiber.StatusOK, status)
	}

	// Second request should return the cached response without invoking handler again.
	status, second := post(t, app, "/encrypt", "abc123")
	if status != fiber.StatusOK {
		t.Fatalf("expected cached status %d got %d", fiber.StatusOK, status)
	}
	if first != second {
		t.Fatalf("expected cached payload %s got %s", first, second)
	}
	if *calls != 1 {
		t.Fatalf("expected a single handler call, got %d", *calls)
	}
}

func TestIdempotencyDoesNotCacheFailures(t *testing.T) {
	app, calls, cleanup := setupTestApp(t)
	defer cleanup()

	for i := 0; i < 2; i++ {
		status, _ := post(t, app, "/fail", "retry-me")
		if status != fiber.StatusBadRequest {
			t.Fatalf("expected 400 got %d", status)
		}
	}
	if *calls != 2 {
		t.Fatalf("failed attempts must not be replayed, got %d calls", *calls)
	}
}

func TestIdempotencyKeysAreScopedByPath(t *testing.T) {
	app, calls, cleanup := setupTestApp(t)
	defer cleanup()

	post(t, app, "/encrypt", "shared")
	post(t, app, "/fail", "shared")
	if *calls != 2 {
		t.Fatalf("expected both routes to run, got %d calls", *calls)
	}
}
