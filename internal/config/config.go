package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	minJWTSecretBytes = 32

	DefaultTokenTTL          = 7 * 24 * time.Hour
	DefaultMinPasswordLength = 6
)

var defaultAllowedOrigins = []string{
	"http://localhost:5173",
	"http://localhost:3000",
	"http://127.0.0.1:5173",
	"http://127.0.0.1:3000",
}

// Config is the full runtime configuration of the API and the admin CLI.
type Config struct {
	Server     Server     `yaml:"server"`
	Database   Database   `yaml:"database"`
	Auth       Auth       `yaml:"auth"`
	Log        Log        `yaml:"log"`
	Monitoring Monitoring `yaml:"monitoring"`
}

type Server struct {
	Addr            string        `yaml:"addr"`
	Mode            string        `yaml:"mode"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type Database struct {
	Driver                 string `yaml:"driver"`
	DSN                    string `yaml:"dsn"`
	Host                   string `yaml:"host"`
	Port                   string `yaml:"port"`
	User                   string `yaml:"user"`
	Password               string `yaml:"password"`
	Name                   string `yaml:"name"`
	SSLMode                string `yaml:"sslmode"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxIdleMinutes     int    `yaml:"conn_max_idle_minutes"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

type Auth struct {
	JWTSecret         string        `yaml:"jwt_secret"`
	TokenTTL          time.Duration `yaml:"token_ttl"`
	MinPasswordLength int           `yaml:"min_password_length"`
	BcryptCost        int           `yaml:"bcrypt_cost"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type Monitoring struct {
	APIKey string `yaml:"api_key"`
}

// Default returns a configuration usable for local development once a JWT secret is supplied.
func Default() *Config {
	return &Config{
		Server: Server{
			Addr:            ":5000",
			Mode:            "release",
			AllowedOrigins:  append([]string(nil), defaultAllowedOrigins...),
			ShutdownTimeout: 10 * time.Second,
		},
		Database: Database{
			Driver:                 "postgres",
			Host:                   "localhost",
			Port:                   "5432",
			User:                   "postgres",
			Password:               "password",
			Name:                   "todotracker",
			SSLMode:                "disable",
			MaxOpenConns:           25,
			MaxIdleConns:           25,
			ConnMaxIdleMinutes:     5,
			ConnMaxLifetimeMinutes: 30,
		},
		Auth: Auth{
			TokenTTL:          DefaultTokenTTL,
			MinPasswordLength: DefaultMinPasswordLength,
			BcryptCost:        10,
		},
		Log: Log{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads .env, the optional YAML file at path (or CONFIG_FILE), and
// environment overrides, in that order of increasing precedence.
func Load(path string) (*Config, error) {
	// .env is optional; real environment variables always win over it.
	_ = godotenv.Load()

	cfg := Default()

	if path == "" {
		path = strings.TrimSpace(os.Getenv("CONFIG_FILE"))
	}
	if path != "" {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadYAML(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Server.Addr = getEnvOrDefault("SERVER_ADDR", c.Server.Addr)
	c.Server.Mode = getEnvOrDefault("GIN_MODE", c.Server.Mode)
	if origins := getEnvOrDefault("CORS_ALLOWED_ORIGINS", ""); origins != "" {
		c.Server.AllowedOrigins = splitList(origins)
	}
	c.Server.ShutdownTimeout = getDurationEnvOrDefault("SERVER_SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)

	c.Database.Driver = getEnvOrDefault("DB_DRIVER", c.Database.Driver)
	c.Database.DSN = getEnvOrDefault("DB_DSN", c.Database.DSN)
	c.Database.Host = getEnvOrDefault("DB_HOST", c.Database.Host)
	c.Database.Port = getEnvOrDefault("DB_PORT", c.Database.Port)
	c.Database.User = getEnvOrDefault("DB_USER", c.Database.User)
	c.Database.Password = getEnvOrDefault("DB_PASSWORD", c.Database.Password)
	c.Database.Name = getEnvOrDefault("DB_NAME", c.Database.Name)
	c.Database.SSLMode = getEnvOrDefault("DB_SSLMODE", c.Database.SSLMode)
	c.Database.MaxOpenConns = getIntEnvOrDefault("DB_MAX_OPEN_CONNS", c.Database.MaxOpenConns)
	c.Database.MaxIdleConns = getIntEnvOrDefault("DB_MAX_IDLE_CONNS", c.Database.MaxIdleConns)
	c.Database.ConnMaxIdleMinutes = getIntEnvOrDefault("DB_CONN_MAX_IDLE_MINUTES", c.Database.ConnMaxIdleMinutes)
	c.Database.ConnMaxLifetimeMinutes = getIntEnvOrDefault("DB_CONN_MAX_LIFETIME_MINUTES", c.Database.ConnMaxLifetimeMinutes)

	c.Auth.JWTSecret = getEnvOrDefault("JWT_SECRET", c.Auth.JWTSecret)
	c.Auth.TokenTTL = getDurationEnvOrDefault("JWT_TTL", c.Auth.TokenTTL)
	c.Auth.MinPasswordLength = getIntEnvOrDefault("MIN_PASSWORD_LENGTH", c.Auth.MinPasswordLength)
	c.Auth.BcryptCost = getIntEnvOrDefault("BCRYPT_COST", c.Auth.BcryptCost)

	c.Log.Level = getEnvOrDefault("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnvOrDefault("LOG_FORMAT", c.Log.Format)

	c.Monitoring.APIKey = getEnvOrDefault("MONITORING_API_KEY", c.Monitoring.APIKey)
}

// Validate reports the first configuration problem that would prevent startup.
func (c *Config) Validate() error {
	secret := strings.TrimSpace(c.Auth.JWTSecret)
	if secret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if len(secret) < minJWTSecretBytes {
		return fmt.Errorf("JWT_SECRET must be at least %d characters", minJWTSecretBytes)
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("token TTL must be positive")
	}
	if c.Auth.MinPasswordLength <= 0 {
		return errors.New("minimum password length must be positive")
	}

	switch c.Database.Driver {
	case "postgres", "sqlite3":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.Driver == "sqlite3" && c.Database.DSN == "" {
		return errors.New("DB_DSN is required for the sqlite3 driver")
	}

	return nil
}

// getEnvOrDefault returns the value of an environment variable or a default value
func getEnvOrDefault(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value != "" {
		return value
	}
	return defaultValue
}

func getIntEnvOrDefault(key string, defaultValue int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return defaultValue
	}

	return value
}

func getDurationEnvOrDefault(key string, defaultValue time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(raw)
	if err != nil || value <= 0 {
		return defaultValue
	}

	return value
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
