package routes

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/qrseal/qrseal/internal/audit"
	"github.com/qrseal/qrseal/internal/config"
	"github.com/qrseal/qrseal/internal/middleware"
	"github.com/qrseal/qrseal/internal/qr"
	"github.com/qrseal/qrseal/internal/seal"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
	// Key is derived from Cfg when nil.
	Key *seal.Key
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though config also checks.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.Env)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.Env)
		}
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}

	key := d.Key
	if key == nil {
		var err error
		key, err = seal.NewKey(d.Cfg.Secret, d.Cfg.KDF)
		if err != nil {
			return fmt.Errorf("derive key: %w", err)
		}
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.RequestLog(d.Logger))

	// Health
	RegisterHealthRoutes(app, d)

	// Services and handlers
	var eventRepo audit.Repository
	if d.DB != nil {
		pg := audit.NewPostgresRepository(d.DB)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := pg.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate audit schema: %w", err)
		}
		eventRepo = pg
	} else {
		eventRepo = audit.NewMemoryRepository()
	}
	recorder := audit.NewRecorder(eventRepo, d.Logger)
	qrSvc := qr.NewService(seal.NewSealer(key), seal.NewVerifier(key), recorder, d.Logger)
	qrHandler := qr.NewHandler(qrSvc)

	// API routes
	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	idem := middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger)
	rateLimiter := middleware.VerifyRateLimit(d.Cache, d.Cfg.VerifyRateLimit, d.Logger)
	RegisterQRRoutes(api, qrHandler, idem, rateLimiter)
	RegisterAdminRoutes(app, qrHandler, d.Cfg.AdminToken)

	return nil
}
