// Package config loads application configuration from a YAML file and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment variables read by Load.
// Nested keys are separated by a double underscore: STATUSPAGE_DATABASE__URL.
const EnvPrefix = "STATUSPAGE_"

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Log       LogConfig       `koanf:"log"`
	JWT       JWTConfig       `koanf:"jwt"`
	Cookie    CookieConfig    `koanf:"cookie"`
	CORS      CORSConfig      `koanf:"cors"`
	Admin     AdminConfig     `koanf:"admin"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
}

// ServerConfig configures the HTTP listeners.
type ServerConfig struct {
	Host              string        `koanf:"host"`
	Port              string        `koanf:"port"`
	MetricsPort       string        `koanf:"metrics_port"`
	ReadTimeout       time.Duration `koanf:"read_timeout"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout"`
	WriteTimeout      time.Duration `koanf:"write_timeout"`
	IdleTimeout       time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout"`
}

// DatabaseConfig configures the PostgreSQL pool and schema migrations.
type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnectTimeout  time.Duration `koanf:"connect_timeout"`
	ConnectAttempts int           `koanf:"connect_attempts"`
	AutoMigrate     bool          `koanf:"auto_migrate"`
	MigrationsPath  string        `koanf:"migrations_path"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// JWTConfig configures session tokens.
type JWTConfig struct {
	SecretKey           string        `koanf:"secret_key"`
	AccessTokenDuration time.Duration `koanf:"access_token_duration"`
}

// CookieConfig configures the session cookie.
type CookieConfig struct {
	Secure bool   `koanf:"secure"`
	Domain string `koanf:"domain"`
}

// CORSConfig lists origins allowed to call the API from a browser.
type CORSConfig struct {
	AllowedOrigins []string `koanf:"allowed_origins"`
}

// AdminConfig describes the administrator account created at startup when missing.
// Leaving Email empty disables bootstrapping.
type AdminConfig struct {
	Email    string `koanf:"email"`
	Password string `koanf:"password"`
}

// RateLimitConfig limits login attempts across all clients.
type RateLimitConfig struct {
	LoginRPS   float64 `koanf:"login_rps"`
	LoginBurst int     `koanf:"login_burst"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              "8080",
			MetricsPort:       "9090",
			ReadTimeout:       15 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
			ShutdownTimeout:   30 * time.Second,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 30 * time.Minute,
			ConnectTimeout:  60 * time.Second,
			ConnectAttempts: 5,
			AutoMigrate:     true,
			MigrationsPath:  "migrations",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		JWT: JWTConfig{
			AccessTokenDuration: 12 * time.Hour,
		},
		Cookie: CookieConfig{
			Secure: true,
		},
		RateLimit: RateLimitConfig{
			LoginRPS:   5,
			LoginBurst: 10,
		},
	}
}

// Load reads defaults, then the YAML file at path (skipped when path is empty
// or the file does not exist), then STATUSPAGE_* environment variables.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("load config file %s: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// envKey maps STATUSPAGE_RATE_LIMIT__LOGIN_RPS to rate_limit.login_rps.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Database.URL == "" {
		errs = append(errs, errors.New("database.url is required"))
	}
	if c.Database.MaxOpenConns <= 0 {
		errs = append(errs, errors.New("database.max_open_conns must be positive"))
	}
	if c.Database.MaxIdleConns < 0 || c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		errs = append(errs, errors.New("database.max_idle_conns must be between 0 and max_open_conns"))
	}
	if c.Database.AutoMigrate && c.Database.MigrationsPath == "" {
		errs = append(errs, errors.New("database.migrations_path is required when auto_migrate is enabled"))
	}
	if len(c.JWT.SecretKey) < 16 {
		errs = append(errs, errors.New("jwt.secret_key must be at least 16 bytes"))
	}
	if c.JWT.AccessTokenDuration <= 0 {
		errs = append(errs, errors.New("jwt.access_token_duration must be positive"))
	}
	if c.Admin.Email != "" && c.Admin.Password == "" {
		errs = append(errs, errors.New("admin.password is required when admin.email is set"))
	}
	if c.RateLimit.LoginRPS <= 0 || c.RateLimit.LoginBurst <= 0 {
		errs = append(errs, errors.New("rate_limit.login_rps and rate_limit.login_burst must be positive"))
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is not one of json, text", c.Log.Format))
	}

	return errors.Join(errs...)
}
