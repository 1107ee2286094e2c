package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/qrseal/qrseal/internal/seal"
)

const (
	defaultAppName         = "qrseal"
	defaultAppEnv          = "development"
	defaultPort            = "8080"
	defaultLogLevel        = "info"
	defaultShutdownDelay   = 10 * time.Second
	defaultIdempotencyTTL  = 24 * time.Hour
	defaultVerifyRateLimit = 30
	secretEnvVar           = "QR_SHARED_SECRET"
	secretHexEnvVar        = "QR_SHARED_SECRET_HEX"
	saltEnvVar             = "QR_KDF_SALT"
	iterationsEnvVar       = "QR_KDF_ITERATIONS"
	rateLimitEnvVar        = "VERIFY_RATE_LIMIT"
	idemTTLSecondsEnvVar   = "IDEMPOTENCY_TTL_SECONDS"
	idemTTLDurEnvVar       = "IDEMPOTENCY_TTL"
	shutdownSecondsEnvVar  = "SHUTDOWN_TIMEOUT_SECONDS"
	shutdownDurationEnvVar = "SHUTDOWN_TIMEOUT"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName         string
	Env             string
	Port            string
	LogLevel        string
	DatabaseURL     string
	RedisURL        string
	AdminToken      string
	Secret          []byte
	KDF             seal.KDFParams
	VerifyRateLimit int
	ShutdownPeriod  time.Duration
	IdempotencyTTL  time.Duration
}

// Load reads configuration values from the environment and populates a Config instance.
func Load() (Config, error) {
	cfg := Config{
		AppName:         getEnv("APP_NAME", defaultAppName),
		Env:             getEnv("APP_ENV", defaultAppEnv),
		Port:            getEnv("PORT", defaultPort),
		LogLevel:        strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisURL:        os.Getenv("REDIS_URL"),
		AdminToken:      os.Getenv("ADMIN_TOKEN"),
		KDF:             seal.KDFParams{Salt: []byte(getEnv(saltEnvVar, seal.DefaultSalt)), Iterations: seal.MinIterations},
		VerifyRateLimit: defaultVerifyRateLimit,
		ShutdownPeriod:  defaultShutdownDelay,
		IdempotencyTTL:  defaultIdempotencyTTL,
	}

	secret, err := loadSecret()
	if err != nil {
		return Config{}, err
	}
	cfg.Secret = secret

	if v := os.Getenv(iterationsEnvVar); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", iterationsEnvVar, err)
		}
		if n < seal.MinIterations {
			return Config{}, fmt.Errorf("invalid %s: must be at least %d", iterationsEnvVar, seal.MinIterations)
		}
		cfg.KDF.Iterations = n
	}

	if v := os.Getenv(rateLimitEnvVar); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", rateLimitEnvVar, err)
		}
		cfg.VerifyRateLimit = n
	}

	if cfg.ShutdownPeriod, err = durationEnv(shutdownSecondsEnvVar, shutdownDurationEnvVar, defaultShutdownDelay); err != nil {
		return Config{}, err
	}
	if cfg.IdempotencyTTL, err = durationEnv(idemTTLSecondsEnvVar, idemTTLDurEnvVar, defaultIdempotencyTTL); err != nil {
		return Config{}, err
	}

	if !cfg.IsDev() {
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL must be set when APP_ENV=%s", cfg.Env)
		}
		if cfg.RedisURL == "" {
			return Config{}, fmt.Errorf("REDIS_URL must be set when APP_ENV=%s", cfg.Env)
		}
	}

	return cfg, nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

// IsDev reports whether missing Postgres/Redis should be tolerated.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.Env) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

func loadSecret() ([]byte, error) {
	raw := os.Getenv(secretEnvVar)
	rawHex := os.Getenv(secretHexEnvVar)
	switch {
	case raw != "" && rawHex != "":
		return nil, fmt.Errorf("set only one of %s and %s", secretEnvVar, secretHexEnvVar)
	case raw != "":
		return []byte(raw), nil
	case rawHex != "":
		b, err := hex.DecodeString(strings.TrimSpace(rawHex))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", secretHexEnvVar, err)
		}
		if len(b) == 0 {
			return nil, fmt.Errorf("invalid %s: empty", secretHexEnvVar)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("%s or %s must be set", secretEnvVar, secretHexEnvVar)
	}
}

func durationEnv(secondsKey, durationKey string, fallback time.Duration) (time.Duration, error) {
	if v := os.Getenv(secondsKey); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", secondsKey, err)
		}
		return time.Duration(seconds) * time.Second, nil
	}
	if v := os.Getenv(durationKey); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", durationKey, err)
		}
		return d, nil
	}
	return fallback, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
