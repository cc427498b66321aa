package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment overrides, e.g. SAVOR_DATABASE_HOST
const EnvPrefix = "SAVOR"

// Config holds all configuration for the ordering platform
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Database DatabaseConfig `yaml:"database"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	Redis    RedisConfig    `yaml:"redis"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds HTTP API settings
type ServerConfig struct {
	Port           int           `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
	RateLimitRPS   int           `yaml:"rate_limit_rps" envconfig:"RATE_LIMIT_RPS"`
	RateLimitBurst int           `yaml:"rate_limit_burst" envconfig:"RATE_LIMIT_BURST"`
}

// StorageConfig selects the record store backend
type StorageConfig struct {
	Driver string `yaml:"driver"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	Database   string `yaml:"database"`
	Migrations string `yaml:"migrations"`
}

// RabbitMQConfig holds RabbitMQ connection configuration. An empty host
// disables event publishing.
type RabbitMQConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Exchange string `yaml:"exchange"`
	Queue    string `yaml:"queue"`
	Prefetch int    `yaml:"prefetch"`
}

// RedisConfig holds the catalog cache settings. An empty addr disables
// the cache.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `yaml:"level"`
}

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Default returns the configuration used when a key is not set anywhere
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           3000,
			RequestTimeout: 30 * time.Second,
			RateLimitRPS:   20,
			RateLimitBurst: 40,
		},
		Storage: StorageConfig{Driver: StoragePostgres},
		Database: DatabaseConfig{
			Host:       "localhost",
			Port:       5432,
			Migrations: "migrations",
		},
		RabbitMQ: RabbitMQConfig{
			Port:     5672,
			Exchange: "order_events",
			Queue:    "order_notifications",
			Prefetch: 1,
		},
		Redis: RedisConfig{TTL: 5 * time.Minute},
		Log:   LogConfig{Level: "info"},
	}
}

// Load reads configuration from a YAML file, then applies a .env file
// (when present) and SAVOR_* environment overrides. A missing YAML file
// is not an error; defaults and environment are used instead.
func Load(filename string) (*Config, error) {
	config := Default()

	data, err := os.ReadFile(filename)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	if err := envconfig.Process(EnvPrefix, config); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks enumerated and numeric settings
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageMemory, StoragePostgres:
	default:
		return fmt.Errorf("unknown storage driver: %s", c.Storage.Driver)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.RateLimitRPS < 0 || c.Server.RateLimitBurst < 0 {
		return fmt.Errorf("rate limit settings must not be negative")
	}
	if c.RabbitMQ.Prefetch < 1 {
		return fmt.Errorf("rabbitmq prefetch must be at least 1")
	}
	return nil
}

// DatabaseURL returns a PostgreSQL connection URL
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.Database.User, c.Database.Password, c.Database.Host, c.Database.Port, c.Database.Database)
}

// RabbitMQURL returns an AMQP connection URL
func (c *Config) RabbitMQURL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/",
		c.RabbitMQ.User, c.RabbitMQ.Password, c.RabbitMQ.Host, c.RabbitMQ.Port)
}

// MessagingEnabled reports whether a RabbitMQ host is configured
func (c *Config) MessagingEnabled() bool {
	return c.RabbitMQ.Host != ""
}

// CacheEnabled reports whether a Redis address is configured
func (c *Config) CacheEnabled() bool {
	return c.Redis.Addr != ""
}
