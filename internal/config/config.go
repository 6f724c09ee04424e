// Package config loads and validates server configuration, grounded on
// the teacher's root config.go almost line-for-line in structure: same
// caarlos0/env + godotenv loading order, same Validate/Print/LogConfig
// trio, fields renamed for the RPC banking domain.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Config holds all server configuration. Tags: env is the environment
// variable name, envDefault the value applied when unset.
type Config struct {
	// Server basics
	Addr         string `env:"BANKRPCD_ADDR" envDefault:":8080"`
	AdminAddr    string `env:"BANKRPCD_ADMIN_ADDR" envDefault:":8081"`
	NatsURL      string `env:"BANKRPCD_NATS_URL" envDefault:""`
	KafkaBrokers string `env:"BANKRPCD_KAFKA_BROKERS" envDefault:""`
	AuditTopic   string `env:"BANKRPCD_AUDIT_TOPIC" envDefault:"bank.audit"`

	// Resource limits (from container)
	MemoryLimit int64 `env:"BANKRPCD_MEMORY_LIMIT" envDefault:"268435456"` // 256MB

	// Invocation semantics and loss simulator, spec.md §4.5/§6
	DefaultMode          string `env:"BANKRPCD_MODE" envDefault:"at_least_once"`
	DefaultLossThreshold int    `env:"BANKRPCD_LOSS_THRESHOLD" envDefault:"0"`

	// Rate limiting (independent of the loss simulator — see
	// internal/ratelimit)
	MaxRequestsPerSecond int `env:"BANKRPCD_MAX_REQUESTS_PER_SEC" envDefault:"1000"`
	RateLimitBurst       int `env:"BANKRPCD_RATE_LIMIT_BURST" envDefault:"50"`

	// Fan-out worker pool sizing; zero means auto-detect from MemoryLimit
	// via internal/platform.FanOutPoolSize.
	FanOutWorkers   int `env:"BANKRPCD_FANOUT_WORKERS" envDefault:"0"`
	FanOutQueueSize int `env:"BANKRPCD_FANOUT_QUEUE_SIZE" envDefault:"1024"`

	MetricsInterval time.Duration `env:"BANKRPCD_METRICS_INTERVAL" envDefault:"15s"`

	LogLevel  string `env:"BANKRPCD_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"BANKRPCD_LOG_FORMAT" envDefault:"json"`

	Environment string `env:"BANKRPCD_ENVIRONMENT" envDefault:"development"`
}

// Load reads configuration from a .env file (optional) and environment
// variables, then validates it. Priority: env vars > .env file > defaults.
func Load(logger *zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if logger != nil {
			logger.Info().Msg("no .env file found (using environment variables only)")
		}
	} else if logger != nil {
		logger.Info().Msg("loaded configuration from .env file")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	if logger != nil {
		logger.Info().Msg("configuration loaded and validated")
	}
	return cfg, nil
}

// Validate checks configuration for obviously broken values, mirroring
// the teacher's required/range/logical/enum check groups.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("BANKRPCD_ADDR is required")
	}
	if c.DefaultLossThreshold < 0 || c.DefaultLossThreshold > 100 {
		return fmt.Errorf("BANKRPCD_LOSS_THRESHOLD must be 0-100, got %d", c.DefaultLossThreshold)
	}
	if c.MaxRequestsPerSecond < 1 {
		return fmt.Errorf("BANKRPCD_MAX_REQUESTS_PER_SEC must be > 0, got %d", c.MaxRequestsPerSecond)
	}

	validModes := map[string]bool{"at_least_once": true, "at_most_once": true, "maybe": true}
	if !validModes[c.DefaultMode] {
		return fmt.Errorf("BANKRPCD_MODE must be one of: at_least_once, at_most_once, maybe (got: %s)", c.DefaultMode)
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("BANKRPCD_LOG_LEVEL must be one of: debug, info, warn, error (got: %s)", c.LogLevel)
	}
	validLogFormats := map[string]bool{"json": true, "pretty": true}
	if !validLogFormats[c.LogFormat] {
		return fmt.Errorf("BANKRPCD_LOG_FORMAT must be one of: json, pretty (got: %s)", c.LogFormat)
	}

	return nil
}

// Print logs configuration in a human-readable form to stdout, for local
// development (use LogConfig for production structured logging).
func (c *Config) Print() {
	fmt.Println("=== bankrpcd configuration ===")
	fmt.Printf("Environment:     %s\n", c.Environment)
	fmt.Printf("Addr:            %s\n", c.Addr)
	fmt.Printf("Admin addr:      %s\n", c.AdminAddr)
	fmt.Printf("NATS URL:        %s\n", c.NatsURL)
	fmt.Printf("Kafka brokers:   %s\n", c.KafkaBrokers)
	fmt.Printf("Mode:            %s\n", c.DefaultMode)
	fmt.Printf("Loss threshold:  %d\n", c.DefaultLossThreshold)
	fmt.Printf("Max req/sec:     %d (burst %d)\n", c.MaxRequestsPerSecond, c.RateLimitBurst)
	fmt.Printf("Memory limit:    %d MB\n", c.MemoryLimit/(1024*1024))
	fmt.Println("===============================")
}

// LogConfig logs configuration using structured logging.
func (c *Config) LogConfig(logger zerolog.Logger) {
	logger.Info().
		Str("environment", c.Environment).
		Str("addr", c.Addr).
		Str("admin_addr", c.AdminAddr).
		Str("nats_url", c.NatsURL).
		Str("kafka_brokers", c.KafkaBrokers).
		Str("mode", c.DefaultMode).
		Int("loss_threshold", c.DefaultLossThreshold).
		Int("max_requests_per_sec", c.MaxRequestsPerSecond).
		Int64("memory_limit_mb", c.MemoryLimit/(1024*1024)).
		Dur("metrics_interval", c.MetricsInterval).
		Str("log_level", c.LogLevel).
		Str("log_format", c.LogFormat).
		Msg("bankrpcd configuration loaded")
}
