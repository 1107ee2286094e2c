package config

import (
	"strings"
	"testing"
	"time"

	"github.com/qrseal/qrseal/internal/seal"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"APP_NAME", "APP_ENV", "PORT", "LOG_LEVEL", "DATABASE_URL", "REDIS_URL", "ADMIN_TOKEN",
		secretEnvVar, secretHexEnvVar, saltEnvVar, iterationsEnvVar, rateLimitEnvVar,
		idemTTLSecondsEnvVar, idemTTLDurEnvVar, shutdownSecondsEnvVar, shutdownDurationEnvVar,
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv(secretEnvVar, "s3cret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(cfg.Secret) != "s3cret" {
		t.Fatalf("unexpected secret %q", cfg.Secret)
	}
	if string(cfg.KDF.Salt) != seal.DefaultSalt || cfg.KDF.Iterations != seal.MinIterations {
		t.Fatalf("unexpected kdf %+v", cfg.KDF)
	}
	if cfg.Address() != ":8080" || !cfg.IsDev() {
		t.Fatalf("unexpected address/env %q %q", cfg.Address(), cfg.Env)
	}
	if cfg.IdempotencyTTL != 24*time.Hour || cfg.ShutdownPeriod != 10*time.Second {
		t.Fatalf("unexpected durations %v %v", cfg.IdempotencyTTL, cfg.ShutdownPeriod)
	}
}

func TestLoadRequiresSecret(t *testing.T) {
	clearEnv(t)
	if _, err := Load(); err == nil {
		t.Fatal("expected missing secret error")
	}
}

func TestLoadHexSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv(secretHexEnvVar, "00ff10")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Secret) != 3 || cfg.Secret[1] != 0xff {
		t.Fatalf("unexpected secret %x", cfg.Secret)
	}

	t.Setenv(secretEnvVar, "also-set")
	if _, err := Load(); err == nil {
		t.Fatal("expected conflict when both secrets are set")
	}
}

func TestLoadRejectsWeakIterations(t *testing.T) {
	clearEnv(t)
	t.Setenv(secretEnvVar, "s3cret")
	t.Setenv(iterationsEnvVar, "1000")
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), iterationsEnvVar) {
		t.Fatalf("expected iterations error, got %v", err)
	}
}

func TestLoadProductionNeedsBackends(t *testing.T) {
	clearEnv(t)
	t.Setenv(secretEnvVar, "s3cret")
	t.Setenv("APP_ENV", "production")
	if _, err := Load(); err == nil {
		t.Fatal("expected DATABASE_URL error")
	}
	t.Setenv("DATABASE_URL", "postgres://localhost/qrseal")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	if _, err := Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
}

func TestLoadDurations(t *testing.T) {
	clearEnv(t)
	t.Setenv(secretEnvVar, "s3cret")
	t.Setenv(idemTTLSecondsEnvVar, "60")
	t.Setenv(shutdownDurationEnvVar, "3s")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.IdempotencyTTL != time.Minute || cfg.ShutdownPeriod != 3*time.Second {
		t.Fatalf("unexpected durations %v %v", cfg.IdempotencyTTL, cfg.ShutdownPeriod)
	}

	t.Setenv(idemTTLSecondsEnvVar, "soon")
	if _, err := Load(); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadAdminToken(t *testing.T) {
	clearEnv(t)
	t.Setenv(secretEnvVar, "s3cret")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AdminToken != "" {
		t.Fatalf("expected no admin token by default, got %q", cfg.AdminToken)
	}

	t.Setenv("ADMIN_TOKEN", "ops-token")
	if cfg, err = Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AdminToken != "ops-token" {
		t.Fatalf("unexpected admin token %q", cfg.AdminToken)
	}
}
