package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all configuration for the Atelier runtime
type Config struct {
	// Server configuration
	HTTPPort int    `env:"ATELIER_HTTP_PORT" envDefault:"8080"`
	GRPCPort int    `env:"ATELIER_GRPC_PORT" envDefault:"9090"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Redis configuration (artifact store + event mirror)
	Redis RedisConfig

	// LLM configuration
	LLM LLMConfig

	// Image generation configuration
	ImageGen ImageGenConfig

	// Artifact storage
	Storage StorageConfig

	// Worker pool configuration
	Workers WorkerConfig

	// Intent matching and planning
	Match MatchConfig
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASS"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`

	// Connection pool settings
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	MaxRetries   int           `env:"REDIS_MAX_RETRIES" envDefault:"3"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// LLMConfig holds chat collaborator configuration. The API key is a process
// fallback only: requests may carry their own keys (BYOK).
type LLMConfig struct {
	Provider string `env:"LLM_PROVIDER" envDefault:"gemini"`
	APIKey   string `env:"LLM_API_KEY"`

	RequestTimeout time.Duration `env:"LLM_REQUEST_TIMEOUT" envDefault:"120s"`

	// Default model settings
	MatcherModel       string  `env:"LLM_MATCHER_MODEL" envDefault:"gemini-2.0-flash"`
	PlannerModel       string  `env:"LLM_PLANNER_MODEL" envDefault:"gemini-2.0-flash"`
	AnalysisModel      string  `env:"LLM_ANALYSIS_MODEL" envDefault:"gemini-2.5-pro"`
	DefaultTemperature float64 `env:"LLM_DEFAULT_TEMPERATURE" envDefault:"0.2"`
	DefaultMaxTokens   int     `env:"LLM_DEFAULT_MAX_TOKENS" envDefault:"4096"`
}

// ImageGenConfig holds image generation collaborator configuration
type ImageGenConfig struct {
	APIKey         string        `env:"IMAGEGEN_API_KEY"`
	Model          string        `env:"IMAGEGEN_MODEL" envDefault:"gemini-3-pro-image-preview"`
	RequestTimeout time.Duration `env:"IMAGEGEN_REQUEST_TIMEOUT" envDefault:"120s"`
}

// StorageConfig holds artifact store configuration
type StorageConfig struct {
	PublicBaseURL string        `env:"STORAGE_PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`
	ArtifactTTL   time.Duration `env:"STORAGE_ARTIFACT_TTL" envDefault:"168h"` // 7 days
}

// WorkerConfig holds worker pool configuration
type WorkerConfig struct {
	PoolSize            int           `env:"WORKER_POOL_SIZE" envDefault:"4"`
	QueueSize           int           `env:"WORKER_QUEUE_SIZE" envDefault:"8"`
	EnqueueTimeout      time.Duration `env:"WORKER_ENQUEUE_TIMEOUT" envDefault:"5s"`
	HealthCheckInterval time.Duration `env:"WORKER_HEALTH_CHECK_INTERVAL" envDefault:"30s"`
}

// MatchConfig holds timeouts for the intent matcher and planner
type MatchConfig struct {
	SemanticTimeout time.Duration `env:"MATCH_SEMANTIC_TIMEOUT" envDefault:"10s"`
	PlanTimeout     time.Duration `env:"MATCH_PLAN_TIMEOUT" envDefault:"15s"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.GRPCPort < 1 || c.GRPCPort > 65535 {
		return fmt.Errorf("invalid gRPC port: %d", c.GRPCPort)
	}

	if c.Redis.Addr == "" {
		return fmt.Errorf("redis address is required")
	}

	switch c.LLM.Provider {
	case "gemini", "anthropic":
	default:
		return fmt.Errorf("unsupported LLM provider: %s (must be 'gemini' or 'anthropic')", c.LLM.Provider)
	}

	if c.Workers.PoolSize < 1 {
		return fmt.Errorf("worker pool size must be at least 1")
	}
	if c.Workers.QueueSize < 1 {
		return fmt.Errorf("worker queue size must be at least 1")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// GetGRPCAddr returns the gRPC server address
func (c *Config) GetGRPCAddr() string {
	return fmt.Sprintf(":%d", c.GRPCPort)
}
