package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config aggregates application configuration values.
type Config struct {
	HTTP      HTTPConfig
	Mongo     MongoConfig
	Graph     GraphConfig
	Logging   LoggingConfig
	Auth      AuthConfig
	Ledger    LedgerConfig
	Risk      RiskConfig
	Telemetry TelemetryConfig

	ReadOnly    bool `env:"READ_ONLY" envDefault:"false"`
	SeedOnStart bool `env:"SEED_ON_START" envDefault:"true"`
}

// HTTPConfig governs HTTP server behaviour.
type HTTPConfig struct {
	Host            string        `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port            int           `env:"PORT" envDefault:"5000"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"15s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	AllowedOrigins  []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://localhost:3000"`
}

// MongoConfig describes the document store. An empty URI selects the
// in-memory backend.
type MongoConfig struct {
	URI              string        `env:"MONGODB_URI"`
	Database         string        `env:"MONGODB_DATABASE" envDefault:"wasatah"`
	ConnectTimeout   time.Duration `env:"MONGODB_CONNECT_TIMEOUT" envDefault:"5s"`
	FallbackToMemory bool          `env:"STORAGE_FALLBACK_MEMORY" envDefault:"true"`
}

// GraphConfig describes connectivity to the optional identity graph.
type GraphConfig struct {
	URI            string `env:"GRAPH_URI"`
	Database       string `env:"GRAPH_DATABASE"`
	Username       string `env:"GRAPH_USERNAME"`
	Password       string `env:"GRAPH_PASSWORD"`
	MaxConnections int    `env:"GRAPH_MAX_CONNECTIONS" envDefault:"10"`
}

// LoggingConfig controls structured logging settings.
type LoggingConfig struct {
	Level         string `env:"LOG_LEVEL" envDefault:"info"`
	Format        string `env:"LOG_FORMAT" envDefault:"text"` // text|json
	IncludeCaller bool   `env:"LOG_INCLUDE_CALLER" envDefault:"false"`
}

// AuthConfig controls demo login.
type AuthConfig struct {
	JWTSecret  string        `env:"AUTH_JWT_SECRET"`
	TokenTTL   time.Duration `env:"AUTH_TOKEN_TTL" envDefault:"24h"`
	BcryptCost int           `env:"AUTH_BCRYPT_COST" envDefault:"10"`
}

// LedgerConfig controls simulated block numbering.
type LedgerConfig struct {
	GenesisBlock   int64 `env:"LEDGER_GENESIS_BLOCK" envDefault:"1000000"`
	EventsPerBlock int64 `env:"LEDGER_EVENTS_PER_BLOCK" envDefault:"10"`
}

// RiskConfig tunes the creation velocity rule.
type RiskConfig struct {
	VelocityWindow      time.Duration `env:"RISK_VELOCITY_WINDOW" envDefault:"1h"`
	VelocityMaxAccounts int           `env:"RISK_VELOCITY_MAX_ACCOUNTS" envDefault:"3"`
}

// TelemetryConfig controls OpenTelemetry tracing. Tracing stays off without an
// endpoint.
type TelemetryConfig struct {
	Enabled     bool   `env:"OTEL_ENABLED" envDefault:"true"`
	Endpoint    string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"wasatah-api"`
}

// Load reads configuration from environment variables, applying defaults, and
// validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values the environment parser cannot.
func (c Config) Validate() error {
	var errs []error
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d is out of range", c.HTTP.Port))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.Logging.Format))
	}
	switch strings.ToLower(strings.TrimSpace(c.Logging.Level)) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL %q is not a known level", c.Logging.Level))
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("AUTH_BCRYPT_COST must be between 4 and 31, got %d", c.Auth.BcryptCost))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("AUTH_TOKEN_TTL must be positive"))
	}
	if c.Ledger.EventsPerBlock <= 0 {
		errs = append(errs, errors.New("LEDGER_EVENTS_PER_BLOCK must be positive"))
	}
	if c.Ledger.GenesisBlock < 0 {
		errs = append(errs, errors.New("LEDGER_GENESIS_BLOCK must not be negative"))
	}
	if c.Risk.VelocityMaxAccounts <= 0 {
		errs = append(errs, errors.New("RISK_VELOCITY_MAX_ACCOUNTS must be positive"))
	}
	if c.Risk.VelocityWindow <= 0 {
		errs = append(errs, errors.New("RISK_VELOCITY_WINDOW must be positive"))
	}
	return errors.Join(errs...)
}

// Addr returns the host:port the HTTP server listens on.
func (h HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

// Origins returns the trimmed, non-empty allowed CORS origins.
func (h HTTPConfig) Origins() []string {
	origins := make([]string, 0, len(h.AllowedOrigins))
	for _, origin := range h.AllowedOrigins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
