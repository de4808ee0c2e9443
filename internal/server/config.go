// Package server provides configuration helpers that define runtime defaults,
// validation, and rate-limiting parameters for the chat relay.
package server

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
)

// RateLimitConfig defines the parameters for per-connection line rate limiting.
// A zero Burst disables the limiter.
type RateLimitConfig struct {
	Burst          int
	RefillInterval time.Duration
}

// Config holds the relay configuration. Field tags drive both the
// environment decoding and the validation.
type Config struct {
	Host            string        `env:"CHAT_HOST"`
	Port            int           `env:"CHAT_PORT,default=5000" validate:"gte=0,lte=65535"`
	HTTPAddr        string        `env:"CHAT_HTTP_ADDR,default=:8080"`
	HistorySize     int           `env:"CHAT_HISTORY_SIZE,default=100" validate:"gt=0"`
	SendQueueSize   int           `env:"CHAT_SEND_QUEUE_SIZE,default=256" validate:"gt=0"`
	MaxLineLength   int           `env:"CHAT_MAX_LINE_LENGTH,default=1048576" validate:"gte=64"`
	MaxFilePayload  int           `env:"CHAT_MAX_FILE_PAYLOAD,default=786432" validate:"gt=0,ltfield=MaxLineLength"`
	MaxNameLength   int           `env:"CHAT_MAX_NAME_LENGTH,default=32" validate:"gt=0"`
	WriteTimeout    time.Duration `env:"CHAT_WRITE_TIMEOUT,default=10s" validate:"gt=0"`
	AllowedOrigins  string        `env:"CHAT_ALLOWED_ORIGINS,default=http://localhost:8080"`
	ShutdownTimeout time.Duration `env:"CHAT_SHUTDOWN_TIMEOUT,default=5s" validate:"gt=0"`
	LogLevel        string        `env:"LOG_LEVEL,default=INFO" validate:"oneof=DEBUG INFO WARN ERROR"`
	RateLimitBurst  int           `env:"CHAT_RATE_LIMIT_BURST,default=30" validate:"gte=0"`
	RateLimitRefill time.Duration `env:"CHAT_RATE_LIMIT_REFILL_INTERVAL,default=1s" validate:"gt=0"`
}

func defaultConfig() Config {
	return Config{
		Port:            5000,
		HTTPAddr:        ":8080",
		HistorySize:     100,
		SendQueueSize:   256,
		MaxLineLength:   1 << 20,
		MaxFilePayload:  768 << 10,
		MaxNameLength:   32,
		WriteTimeout:    10 * time.Second,
		AllowedOrigins:  "http://localhost:8080",
		ShutdownTimeout: 5 * time.Second,
		LogLevel:        "INFO",
		RateLimitBurst:  30,
		RateLimitRefill: time.Second,
	}
}

// NewConfig creates a Config instance populated with default values for all settings.
func NewConfig() *Config {
	cfg := defaultConfig()
	return &cfg
}

// NewConfigFromEnv decodes the environment on top of the defaults and
// validates the result.
func NewConfigFromEnv() (*Config, error) {
	cfg := defaultConfig()
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	cfg.LogLevel = strings.ToUpper(strings.TrimSpace(cfg.LogLevel))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = validator.New()

// Validate checks the field constraints declared on Config.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// RateLimit groups the limiter settings handed to each connection.
func (c *Config) RateLimit() RateLimitConfig {
	return RateLimitConfig{Burst: c.RateLimitBurst, RefillInterval: c.RateLimitRefill}
}

// TCPAddr is the listen address of the line protocol.
func (c *Config) TCPAddr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Origins splits the comma separated origin allow-list.
func (c *Config) Origins() []string {
	return parseOrigins(c.AllowedOrigins)
}

func parseOrigins(origins string) []string {
	if strings.TrimSpace(origins) == "" {
		return nil
	}
	parts := strings.Split(origins, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
