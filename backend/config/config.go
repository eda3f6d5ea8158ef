package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const minSecretLength = 16

var (
	ErrMissingSecret = errors.New("jwt secret is not configured")
	ErrWeakSecret    = fmt.Errorf("jwt secret must be at least %d characters", minSecretLength)
)

var sizePattern = regexp.MustCompile(`(?i)^(\d+(?:\.\d+)?)\s*(B|KB|MB|GB|TB)?$`)

// ParseSize converts a human-readable size string (e.g., "1MB", "512KB")
// to bytes. Supports B, KB, MB, GB, TB suffixes (case-insensitive).
// Plain numbers are taken as bytes.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty size string")
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}

	matches := sizePattern.FindStringSubmatch(s)
	if matches == nil {
		return 0, fmt.Errorf("invalid size format: %s (use e.g., '1MB', '512KB')", s)
	}

	value, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number in size: %s", s)
	}

	unit := strings.ToUpper(matches[2])
	if unit == "" {
		unit = "B"
	}

	multipliers := map[string]float64{
		"B":  1,
		"KB": 1024,
		"MB": 1024 * 1024,
		"GB": 1024 * 1024 * 1024,
		"TB": 1024 * 1024 * 1024 * 1024,
	}

	return int64(value * multipliers[unit]), nil
}

type Config struct {
	Listen        string          `yaml:"listen"`
	Database      DatabaseConfig  `yaml:"database"`
	JWT           JWTConfig       `yaml:"jwt"`
	CORS          CORSConfig      `yaml:"cors"`
	HTTP          HTTPConfig      `yaml:"http"`
	AuthRateLimit RateLimitConfig `yaml:"auth_rate_limit"`
	Logs          LogsConfig      `yaml:"logs"`
	TLS           TLSConfig       `yaml:"tls"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite or postgres
	URL    string `yaml:"url"`
}

type JWTConfig struct {
	Secret string `yaml:"secret"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type HTTPConfig struct {
	MaxBodySize     int64         `yaml:"-"`
	MaxBodySizeRaw  string        `yaml:"max_body_size"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type RateLimitConfig struct {
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`

	// TrustProxy keys clients by the first X-Forwarded-For hop. Only enable
	// it behind a reverse proxy that overwrites the header.
	TrustProxy bool `yaml:"trust_proxy"`
}

type LogsConfig struct {
	Level     string        `yaml:"level"`
	Persist   bool          `yaml:"persist"`
	Retention time.Duration `yaml:"retention"`
}

type TLSConfig struct {
	Enabled bool   `yaml:"enabled"`
	Cert    string `yaml:"cert"`
	Key     string `yaml:"key"`
}

var C Config

// Path of the optional YAML file; tests point it elsewhere.
var Path = "config.yaml"

func defaults() Config {
	return Config{
		Listen: ":8080",
		Database: DatabaseConfig{
			Driver: "sqlite",
			URL:    "cards.db",
		},
		HTTP: HTTPConfig{
			MaxBodySize:     1024 * 1024, // 1MB
			ShutdownTimeout: 10 * time.Second,
		},
		AuthRateLimit: RateLimitConfig{
			Requests: 10,
			Window:   time.Minute,
		},
		Logs: LogsConfig{
			Level:     "info",
			Retention: 48 * time.Hour,
		},
	}
}

func Load() error {
	C = defaults()

	if data, err := os.ReadFile(Path); err == nil {
		if err := yaml.Unmarshal(data, &C); err != nil {
			return fmt.Errorf("parse %s: %w", Path, err)
		}
	}

	if C.HTTP.MaxBodySizeRaw != "" {
		size, err := ParseSize(C.HTTP.MaxBodySizeRaw)
		if err != nil {
			return err
		}
		C.HTTP.MaxBodySize = size
	}

	// .env never overrides variables already present in the environment
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return fmt.Errorf("load .env: %w", err)
		}
	}

	// Environment overrides
	if v := os.Getenv("LISTEN"); v != "" {
		C.Listen = v
	}
	if v := os.Getenv("DATABASE_DRIVER"); v != "" {
		C.Database.Driver = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		C.Database.URL = v
	}
	if v := os.Getenv("JWT_SECRET_KEY"); v != "" {
		C.JWT.Secret = v
	}
	if v := os.Getenv("CORS_ORIGIN"); v != "" {
		C.CORS.AllowedOrigins = nil
		for _, p := range strings.Split(v, ",") {
			if o := strings.TrimRight(strings.TrimSpace(p), "/"); o != "" {
				C.CORS.AllowedOrigins = append(C.CORS.AllowedOrigins, o)
			}
		}
	}
	if v := os.Getenv("MAX_BODY_SIZE"); v != "" {
		size, err := ParseSize(v)
		if err != nil {
			return fmt.Errorf("MAX_BODY_SIZE: %w", err)
		}
		C.HTTP.MaxBodySize = size
	}
	if err := envDuration("SHUTDOWN_TIMEOUT", &C.HTTP.ShutdownTimeout); err != nil {
		return err
	}
	if v := os.Getenv("AUTH_RATE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("AUTH_RATE_LIMIT: %w", err)
		}
		C.AuthRateLimit.Requests = n
	}
	if err := envDuration("AUTH_RATE_WINDOW", &C.AuthRateLimit.Window); err != nil {
		return err
	}
	if err := envBool("TRUST_PROXY", &C.AuthRateLimit.TrustProxy); err != nil {
		return err
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		C.Logs.Level = v
	}
	if err := envBool("LOGS_PERSIST", &C.Logs.Persist); err != nil {
		return err
	}
	if err := envDuration("LOGS_RETENTION", &C.Logs.Retention); err != nil {
		return err
	}
	if err := envBool("TLS_ENABLED", &C.TLS.Enabled); err != nil {
		return err
	}
	if v := os.Getenv("TLS_CERT"); v != "" {
		C.TLS.Cert = v
	}
	if v := os.Getenv("TLS_KEY"); v != "" {
		C.TLS.Key = v
	}

	return nil
}

func envDuration(key string, dst *time.Duration) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

func envBool(key string, dst *bool) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}

// Validate checks the settings needed to serve HTTP. The maintenance
// commands only need the database section.
func (c Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	if c.JWT.Secret == "" {
		return ErrMissingSecret
	}
	if len(c.JWT.Secret) < minSecretLength {
		return ErrWeakSecret
	}
	if c.AuthRateLimit.Requests <= 0 {
		return fmt.Errorf("auth_rate_limit.requests must be positive, got %d", c.AuthRateLimit.Requests)
	}
	if c.AuthRateLimit.Window <= 0 {
		return fmt.Errorf("auth_rate_limit.window must be positive, got %s", c.AuthRateLimit.Window)
	}
	if c.HTTP.MaxBodySize <= 0 {
		return fmt.Errorf("http.max_body_size must be positive")
	}
	if c.Logs.Persist && c.Logs.Retention <= 0 {
		return fmt.Errorf("logs.retention must be positive when logs.persist is on")
	}
	if c.TLS.Enabled && (c.TLS.Cert == "" || c.TLS.Key == "") {
		return fmt.Errorf("tls enabled but cert or key missing")
	}
	return nil
}

// LogLevel maps the configured level name onto slog.
func (c Config) LogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Logs.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}
