package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const (
	rateLimitPrefix = "qrseal:rl:verify:"
	rateLimitWindow = time.Minute
)

// VerifyRateLimit caps verification attempts per client IP per minute. It
// slows down anyone probing the verifier with forged payloads. Without Redis,
// or when Redis errors, it fails open.
func VerifyRateLimit(cache *redis.Client, maxPerMin int, logger *slog.Logger) fiber.Handler {
	if maxPerMin <= 0 {
		maxPerMin = 30
	}
	return func(c *fiber.Ctx) error {
		if cache == nil {
			return c.Next()
		}
		ctx, cancel := context.WithTimeout(c.UserContext(), cacheOpTimeout)
		defer cancel()

		key := rateLimitPrefix + c.IP()
		cnt, err := cache.Incr(ctx, key).Result()
		if err != nil {
			logger.Warn("rate limit lookup failed", slog.Any("error", err))
			return c.Next()
		}
		if cnt == 1 {
			if err := cache.Expire(ctx, key, rateLimitWindow).Err(); err != nil {
				// A counter without a TTL would lock this client out for good.
				logger.Warn("rate limit expiry failed", slog.Any("error", err))
				cache.Del(context.WithoutCancel(ctx), key) // best effort
				return c.Next()
			}
		}

		remaining := int64(maxPerMin) - cnt
		if remaining < 0 {
			remaining = 0
		}
		c.Set("X-RateLimit-Limit", strconv.Itoa(maxPerMin))
		c.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		if cnt > int64(maxPerMin) {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(rateLimitWindow.Seconds())))
			return fiber.NewError(http.StatusTooManyRequests, "too many verification attempts, try again later")
		}
		return c.Next()
	}
}
