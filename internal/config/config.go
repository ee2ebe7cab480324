package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/cmlabs-hris/hris-attendance-freeze/internal/domain/payroll"
	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Freeze   FreezeConfig
	Tracing  TracingConfig
}

// AppConfig holds application configuration
type AppConfig struct {
	Port     int    `env:"APP_PORT" envDefault:"8080"`
	Env      string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

type DatabaseConfig struct {
	Driver         string `env:"DB_DRIVER" envDefault:"postgres"`
	Host           string `env:"DB_HOST" envDefault:"localhost"`
	Port           int    `env:"DB_PORT" envDefault:"5432"`
	User           string `env:"DB_USER" envDefault:"postgres"`
	Password       string `env:"DB_PASSWORD"`
	Name           string `env:"DB_NAME" envDefault:"cmlabs-hris"`
	SSLMode        string `env:"DB_SSL_MODE" envDefault:"disable"`
	MaxConns       int32  `env:"DB_MAX_CONNS" envDefault:"25"`
	MinConns       int32  `env:"DB_MIN_CONNS" envDefault:"5"`
	SQLitePath     string `env:"SQLITE_PATH" envDefault:"attendance-freeze.db"`
	MigrateOnStart bool   `env:"MIGRATE_ON_START" envDefault:"true"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret         string        `env:"JWT_SECRET_KEY"`
	AccessTokenTTL time.Duration `env:"JWT_ACCESS_TOKEN_TTL" envDefault:"15m"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
}

// TracingConfig enables OTLP trace export when Endpoint is set.
type TracingConfig struct {
	Endpoint    string `env:"OTEL_ENDPOINT"`
	ServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"hris-attendance-freeze"`
}

// FreezeConfig holds the reconciliation policy and the auto-freeze schedule.
type FreezeConfig struct {
	LeaveOverlapPolicy     string        `env:"FREEZE_LEAVE_OVERLAP_POLICY" envDefault:"first"`
	AttendanceStatusPolicy string        `env:"FREEZE_ATTENDANCE_STATUS_POLICY" envDefault:"any"`
	ClassifyWorkers        int           `env:"FREEZE_CLASSIFY_WORKERS" envDefault:"4"`
	AutoEnabled            bool          `env:"FREEZE_AUTO_ENABLED" envDefault:"false"`
	AutoDay                int           `env:"FREEZE_AUTO_DAY" envDefault:"5"`
	AutoInterval           time.Duration `env:"FREEZE_AUTO_INTERVAL" envDefault:"1h"`
}

// Policy converts the configured names into a payroll.Policy.
func (f FreezeConfig) Policy() payroll.Policy {
	return payroll.Policy{
		LeaveOverlap:     payroll.LeaveOverlapPolicy(strings.ToLower(strings.TrimSpace(f.LeaveOverlapPolicy))),
		AttendanceStatus: payroll.AttendanceStatusPolicy(strings.ToLower(strings.TrimSpace(f.AttendanceStatusPolicy))),
	}
}

// Load reads an optional .env file, then the process environment.
// Variables already set in the environment win over the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	config := &Config{}
	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.App.Port <= 0 || c.App.Port > 65535 {
		return fmt.Errorf("APP_PORT must be between 1 and 65535")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.JWT.AccessTokenTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TOKEN_TTL must be positive")
	}

	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
		if c.Database.MaxConns <= 0 || c.Database.MinConns < 0 || c.Database.MinConns > c.Database.MaxConns {
			return fmt.Errorf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS")
		}
	case DriverSQLite:
		if strings.TrimSpace(c.Database.SQLitePath) == "" {
			return fmt.Errorf("SQLITE_PATH is required")
		}
	default:
		return fmt.Errorf("DB_DRIVER must be %q or %q", DriverPostgres, DriverSQLite)
	}

	if err := c.Freeze.Policy().Validate(); err != nil {
		return err
	}
	if c.Freeze.ClassifyWorkers < 1 {
		return fmt.Errorf("FREEZE_CLASSIFY_WORKERS must be at least 1")
	}
	if c.Freeze.AutoDay < 1 || c.Freeze.AutoDay > 28 {
		return fmt.Errorf("FREEZE_AUTO_DAY must be between 1 and 28")
	}
	if c.Freeze.AutoEnabled && c.Freeze.AutoInterval < time.Minute {
		return fmt.Errorf("FREEZE_AUTO_INTERVAL must be at least 1m")
	}

	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port),
		Path:     c.Database.Name,
		RawQuery: url.Values{"sslmode": []string{c.Database.SSLMode}}.Encode(),
	}
	return u.String()
}

// SlogLevel maps LOG_LEVEL to a slog.Level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.App.Env, "production")
}
