package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds every runtime setting of the medstore API.
type Config struct {
	AppPort          string
	DatabaseDriver   string
	DatabaseDSN      string
	JWTSecret        string
	JWTExpire        time.Duration
	RabbitMQURL      string
	RabbitMQExchange string
	CartStore        string
	RedisAddr        string
	CartTTL          time.Duration
	AdminEmail       string
	AdminPassword    string
	LogLevel         string
	SeedDemoData     bool
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	CartStoreGORM  = "gorm"
	CartStoreRedis = "redis"
)

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DATABASE_DRIVER", DriverSQLite)
	v.SetDefault("DATABASE_DSN", "medstore.db")
	v.SetDefault("JWT_SECRET", "change-me")
	v.SetDefault("JWT_EXPIRE", "720h") // 30 days
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_EXCHANGE", "medstore.orders")
	v.SetDefault("CART_STORE", CartStoreGORM)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("CART_TTL", "168h")
	v.SetDefault("ADMIN_EMAIL", "")
	v.SetDefault("ADMIN_PASSWORD", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SEED_DEMO_DATA", false)
}

// Load reads configuration from environment variables and, when present,
// a config.yaml file in the working directory.
func Load() (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	v.AutomaticEnv()

	return FromViper(v)
}

// FromViper builds a Config out of an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppPort:          v.GetString("APP_PORT"),
		DatabaseDriver:   strings.ToLower(v.GetString("DATABASE_DRIVER")),
		DatabaseDSN:      v.GetString("DATABASE_DSN"),
		JWTSecret:        v.GetString("JWT_SECRET"),
		JWTExpire:        v.GetDuration("JWT_EXPIRE"),
		RabbitMQURL:      v.GetString("RABBITMQ_URL"),
		RabbitMQExchange: v.GetString("RABBITMQ_EXCHANGE"),
		CartStore:        strings.ToLower(v.GetString("CART_STORE")),
		RedisAddr:        v.GetString("REDIS_ADDR"),
		CartTTL:          v.GetDuration("CART_TTL"),
		AdminEmail:       strings.ToLower(v.GetString("ADMIN_EMAIL")),
		AdminPassword:    v.GetString("ADMIN_PASSWORD"),
		LogLevel:         v.GetString("LOG_LEVEL"),
		SeedDemoData:     v.GetBool("SEED_DEMO_DATA"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the enumerated settings.
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	switch c.CartStore {
	case CartStoreGORM, CartStoreRedis:
	default:
		return fmt.Errorf("unsupported CART_STORE %q", c.CartStore)
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	if c.JWTExpire <= 0 {
		return errors.New("JWT_EXPIRE must be a positive duration")
	}
	return nil
}
