package config

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Cache backend selectors.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMulti  = "multi"
	BackendNone   = "none"
)

// Config represents the main configuration structure
type Config struct {
	Cache  CacheConfig  `yaml:"cache"`
	Redis  RedisConfig  `yaml:"redis"`
	Retry  RetryConfig  `yaml:"retry"`
	AI     AIConfig     `yaml:"ai"`
	Server ServerConfig `yaml:"server"`
}

// CacheConfig controls the cache store layer.
type CacheConfig struct {
	Enabled           bool   `yaml:"enabled"`
	Backend           string `yaml:"backend"`
	DefaultTTLSeconds int    `yaml:"default_ttl_seconds"`
	// StaleFactor is the multiple of the fresh TTL that entries are
	// retained for, giving the stale-if-error path a grace window.
	StaleFactor  int            `yaml:"stale_factor"`
	MemorySizeMB int            `yaml:"memory_size_mb"`
	OperationTTL map[string]int `yaml:"operation_ttl_seconds"`
}

// RedisConfig holds the Redis backend connection settings.
type RedisConfig struct {
	URL                   string `yaml:"url"`
	ConnectTimeoutSeconds int    `yaml:"connect_timeout_seconds"`
	ReadTimeoutSeconds    int    `yaml:"read_timeout_seconds"`
	SendTimeoutSeconds    int    `yaml:"send_timeout_seconds"`
	PoolSize              int    `yaml:"pool_size"`
}

// RetryConfig holds the backoff retrier settings.
type RetryConfig struct {
	MaxAttempts int `yaml:"max_attempts"`
	BaseDelayMs int `yaml:"base_delay_ms"`
	MaxDelayMs  int `yaml:"max_delay_ms"`
}

// AIConfig holds the upstream AI provider settings. The API key is read
// from the environment, never from the config file.
type AIConfig struct {
	BaseURL               string `yaml:"base_url"`
	Model                 string `yaml:"model"`
	APIKeyEnv             string `yaml:"api_key_env"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// DefaultConfig returns the configuration used when fields are absent
// from the config file.
func DefaultConfig() *Config {
	return &Config{
		Cache: CacheConfig{
			Enabled:           true,
			Backend:           BackendMemory,
			DefaultTTLSeconds: 86400,
			StaleFactor:       2,
			MemorySizeMB:      64,
		},
		Redis: RedisConfig{
			ConnectTimeoutSeconds: 3,
			ReadTimeoutSeconds:    2,
			SendTimeoutSeconds:    2,
			PoolSize:              10,
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			BaseDelayMs: 1000,
			MaxDelayMs:  60000,
		},
		AI: AIConfig{
			BaseURL:               "https://api.openai.com/v1",
			Model:                 "gpt-4o-mini",
			APIKeyEnv:             "AI_API_KEY",
			RequestTimeoutSeconds: 120,
		},
		Server: ServerConfig{
			ListenAddr: ":8080",
		},
	}
}

// LoadConfig loads configuration from file path, filling unset fields
// with defaults.
func LoadConfig(configPath string, logger *zap.Logger) (*Config, error) {
	logger.Info("Loading configuration", zap.String("path", configPath))

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer func() { _ = file.Close() }()

	config := DefaultConfig()
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode YAML config: %w", err)
	}

	config.applyEnvOverrides()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// applyEnvOverrides applies environment variables that take precedence
// over file values.
func (c *Config) applyEnvOverrides() {
	if url := os.Getenv("REDIS_URL"); url != "" {
		c.Redis.URL = url
	}
	if addr := os.Getenv("LISTEN_ADDR"); addr != "" {
		c.Server.ListenAddr = addr
	}
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case BackendMemory, BackendRedis, BackendMulti, BackendNone:
	default:
		return fmt.Errorf("invalid cache backend %q: must be one of 'memory', 'redis', 'multi', 'none'", c.Cache.Backend)
	}

	if c.Cache.Enabled && (c.Cache.Backend == BackendRedis || c.Cache.Backend == BackendMulti) && c.Redis.URL == "" {
		return fmt.Errorf("cache backend %q requires redis.url or REDIS_URL", c.Cache.Backend)
	}
	if c.Cache.DefaultTTLSeconds <= 0 {
		return fmt.Errorf("cache.default_ttl_seconds must be positive, got %d", c.Cache.DefaultTTLSeconds)
	}
	if c.Cache.StaleFactor < 1 {
		return fmt.Errorf("cache.stale_factor must be at least 1, got %d", c.Cache.StaleFactor)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry.max_attempts must be at least 1, got %d", c.Retry.MaxAttempts)
	}
	if c.AI.BaseURL == "" {
		return fmt.Errorf("ai.base_url must not be empty")
	}
	return nil
}

// DefaultTTL returns the default cache TTL as a duration.
func (c *CacheConfig) DefaultTTL() time.Duration {
	return time.Duration(c.DefaultTTLSeconds) * time.Second
}

// TTLFor returns the TTL for an operation, honoring per-operation
// overrides.
func (c *CacheConfig) TTLFor(operation string) time.Duration {
	if seconds, ok := c.OperationTTL[operation]; ok && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return c.DefaultTTL()
}

// GetConnectTimeout returns the Redis connect timeout
func (c *RedisConfig) GetConnectTimeout() time.Duration {
	return time.Duration(c.ConnectTimeoutSeconds) * time.Second
}

// GetReadTimeout returns the Redis read timeout
func (c *RedisConfig) GetReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutSeconds) * time.Second
}

// GetSendTimeout returns the Redis send timeout
func (c *RedisConfig) GetSendTimeout() time.Duration {
	return time.Duration(c.SendTimeoutSeconds) * time.Second
}

// APIKey resolves the provider API key from the configured environment
// variable.
func (c *AIConfig) APIKey() string {
	return os.Getenv(c.APIKeyEnv)
}

// GetRequestTimeout returns the per-request provider timeout.
func (c *AIConfig) GetRequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// BaseDelay returns the initial backoff delay.
func (c *RetryConfig) BaseDelay() time.Duration {
	return time.Duration(c.BaseDelayMs) * time.Millisecond
}

// MaxDelay returns the backoff delay ceiling.
func (c *RetryConfig) MaxDelay() time.Duration {
	return time.Duration(c.MaxDelayMs) * time.Millisecond
}
