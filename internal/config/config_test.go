package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const testSecret = "todotracker_test_jwt_secret_key_1234567890"

func TestLoadDefaultsWithSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("CONFIG_FILE", "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Auth.TokenTTL != 7*24*time.Hour {
		t.Fatalf("expected 7 day TTL, got %s", cfg.Auth.TokenTTL)
	}
	if cfg.Auth.MinPasswordLength != 6 {
		t.Fatalf("expected min password length 6, got %d", cfg.Auth.MinPasswordLength)
	}
	if len(cfg.Server.AllowedOrigins) != 4 {
		t.Fatalf("expected default CORS origins, got %v", cfg.Server.AllowedOrigins)
	}
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("CONFIG_FILE", "")

	if _, err := Load(""); err == nil {
		t.Fatalf("expected error without JWT_SECRET")
	}
}

func TestLoadRejectsShortSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "short")
	t.Setenv("CONFIG_FILE", "")

	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for short JWT_SECRET")
	}
}

func TestLoadYAMLThenEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  addr: ":9090"
database:
  driver: sqlite3
  dsn: "file:todo.db?_foreign_keys=on"
auth:
  jwt_secret: "` + testSecret + `"
  token_ttl: 48h
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	t.Setenv("JWT_SECRET", "")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://todo.example.com, https://app.example.com")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":9090" {
		t.Fatalf("expected addr from file, got %q", cfg.Server.Addr)
	}
	if cfg.Database.Driver != "sqlite3" {
		t.Fatalf("expected sqlite3 driver, got %q", cfg.Database.Driver)
	}
	if cfg.Auth.TokenTTL != 48*time.Hour {
		t.Fatalf("expected 48h TTL, got %s", cfg.Auth.TokenTTL)
	}
	if cfg.Log.Level != "warn" {
		t.Fatalf("expected env to override log level, got %q", cfg.Log.Level)
	}
	if len(cfg.Server.AllowedOrigins) != 2 || cfg.Server.AllowedOrigins[1] != "https://app.example.com" {
		t.Fatalf("unexpected origins %v", cfg.Server.AllowedOrigins)
	}
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	cfg := Default()
	cfg.Auth.JWTSecret = testSecret
	cfg.Database.Driver = "mysql"

	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected unsupported driver error")
	}
}
