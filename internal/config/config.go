// Package config manages environment variables.
//
// It reads variables (optionally from a `.env` file), loads them into
// structured Go types and validates that required values are present so
// they can be reused across the function's lifetime.
//
// Responsibilities:
//   - Load environment variables (optionally from a `.env` file).
//   - Map env vars into a structured Go config.
//   - Validate required values so a cold start fails fast on bad config.
//   - Provide defaults for the optional blocks (store, aws, observability).
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	// Side-effect import: a `.env` file, if present, is loaded into the
	// process environment before anything below reads it.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
)

// EnvPrefix is the prefix every configuration variable carries.
// Keys are lowercased, the prefix is removed and a double underscore
// marks nesting, so GUITARS_AWS__REGION -> aws.region -> Config.AWS.Region.
const EnvPrefix = "GUITARS_"

// Store drivers understood by StoreConfig.Driver.
const (
	DriverDynamoDB = "dynamodb"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config is the root configuration object.
//
// Observability is a pointer because it is optional. If it is not
// provided, defaults are injected at load time.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Function      FunctionConfig       `koanf:"function" validate:"required"`
	Store         StoreConfig          `koanf:"store" validate:"required"`
	AWS           AWSConfig            `koanf:"aws" validate:"required"`
	Redis         RedisConfig          `koanf:"redis"`
	Database      DatabaseConfig       `koanf:"database"`
	Server        ServerConfig         `koanf:"server"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// FunctionConfig selects which entry point the Lambda binary serves.
//
// The same binary is deployed once per operation, each with its own
// handler name, or once with "dispatch" to serve all of them.
type FunctionConfig struct {
	Handler string `koanf:"handler" validate:"required,oneof=list get create update delete dispatch"`
}

// StoreConfig addresses the key-value table.
type StoreConfig struct {
	Driver       string `koanf:"driver" validate:"required,oneof=dynamodb redis postgres memory"`
	Table        string `koanf:"table" validate:"required"`
	KeyAttribute string `koanf:"key_attribute" validate:"required"`
}

// AWSConfig is the regional/network configuration for the DynamoDB driver.
//
// Endpoint is only set when talking to DynamoDB Local or localstack.
// Static credentials are optional; the default chain (Lambda execution
// role, shared profile) is used otherwise.
type AWSConfig struct {
	Region          string `koanf:"region" validate:"required"`
	Endpoint        string `koanf:"endpoint"`
	AccessKeyID     string `koanf:"access_key_id"`
	SecretAccessKey string `koanf:"secret_access_key"`
	MaxAttempts     int    `koanf:"max_attempts" validate:"min=0"`
}

// RedisConfig contains Redis connection details for the redis driver.
// Address is "host:port".
type RedisConfig struct {
	Address  string `koanf:"address"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

// DatabaseConfig contains PostgreSQL connection parameters for the
// postgres driver.
type DatabaseConfig struct {
	Host            string `koanf:"host"`
	Port            int    `koanf:"port"`
	User            string `koanf:"user"`
	Password        string `koanf:"password"`
	Name            string `koanf:"name"`
	SSLMode         string `koanf:"ssl_mode"`
	MaxOpenConns    int    `koanf:"max_open_conns"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime int    `koanf:"conn_max_idle_time"`
	AutoMigrate     bool   `koanf:"auto_migrate"`
}

// ServerConfig groups settings for the local HTTP runner.
// Timeouts are seconds.
type ServerConfig struct {
	Port               string   `koanf:"port"`
	ReadTimeout        int      `koanf:"read_timeout"`
	WriteTimeout       int      `koanf:"write_timeout"`
	IdleTimeout        int      `koanf:"idle_timeout"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`
}

// defaults address a "Guitars" table keyed by a numeric "id" in
// eu-west-2.
var defaults = map[string]any{
	"function.handler":                                    "dispatch",
	"store.driver":                                        DriverDynamoDB,
	"store.table":                                         "Guitars",
	"store.key_attribute":                                 "id",
	"aws.region":                                          "eu-west-2",
	"redis.address":                                       "localhost:6379",
	"database.host":                                       "localhost",
	"database.port":                                       5432,
	"database.name":                                       "guitars",
	"database.ssl_mode":                                   "disable",
	"database.max_open_conns":                             4,
	"database.conn_max_lifetime":                          300,
	"database.conn_max_idle_time":                         60,
	"server.port":                                         "8080",
	"server.read_timeout":                                 30,
	"server.write_timeout":                                30,
	"server.idle_timeout":                                 60,
	"server.cors_allowed_origins":                         []string{"*"},
	"observability.service_name":                          "guitars",
	"observability.environment":                           "local",
	"observability.logging.level":                         "info",
	"observability.logging.format":                        "json",
	"observability.logging.slow_operation_threshold":      "100ms",
	"observability.new_relic.app_log_forwarding_enabled":  true,
	"observability.new_relic.distributed_tracing_enabled": true,
}

// LoadConfig loads the configuration and exits the process on failure.
// It is what the binaries call at cold start.
func LoadConfig() *Config {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("could not load config")
	}

	return cfg
}

// Load reads defaults, then GUITARS_* variables, unmarshals, applies
// observability defaults and validates.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, fmt.Errorf("could not load defaults: %w", err)
	}

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	mainConfig := &Config{}
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	if err := validator.New().Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if err := mainConfig.validateDriver(); err != nil {
		return nil, err
	}

	if mainConfig.Observability == nil {
		mainConfig.Observability = DefaultObservabilityConfig()
	}

	// Service name and environment always follow the primary block so logs
	// and traces agree on naming.
	mainConfig.Observability.ServiceName = "guitars"
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}

// validateDriver checks the block the selected store driver depends on.
func (c *Config) validateDriver() error {
	switch c.Store.Driver {
	case DriverRedis:
		if c.Redis.Address == "" {
			return fmt.Errorf("redis.address is required for the redis driver")
		}
	case DriverPostgres:
		if c.Database.User == "" || c.Database.Name == "" {
			return fmt.Errorf("database.user and database.name are required for the postgres driver")
		}
	case DriverDynamoDB:
		if (c.AWS.AccessKeyID == "") != (c.AWS.SecretAccessKey == "") {
			return fmt.Errorf("aws.access_key_id and aws.secret_access_key must be set together")
		}
	}
	return nil
}

// IsLocal reports whether the function runs outside AWS.
func (c *Config) IsLocal() bool {
	return c.Primary.Env == "local"
}
