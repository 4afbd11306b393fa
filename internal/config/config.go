package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/restokit/equipcore/internal/domain/models"
	"github.com/restokit/equipcore/internal/domain/ports"
)

// Config holds the application configuration
type Config struct {
	Database  DatabaseConfig
	Cache     CacheConfig
	Logging   LoggingConfig
	Metrics   MetricsConfig
	Scheduler SchedulerConfig
}

// DatabaseConfig holds storage backend configuration
type DatabaseConfig struct {
	Type     string // "memory", "postgres", "mongodb"
	Postgres PostgresConfig
	MongoDB  MongoDBConfig
}

// PostgresConfig holds PostgreSQL configuration
type PostgresConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // seconds
	ConnMaxIdleTime int // seconds
}

// MongoDBConfig holds MongoDB configuration
type MongoDBConfig struct {
	URI             string
	Database        string
	MaxPoolSize     int
	MinPoolSize     int
	MaxConnIdleTime int // seconds
	ServerTimeout   int // seconds
	WriteConcern    string
}

// CacheConfig holds cache configuration
type CacheConfig struct {
	Enabled    bool
	TTLSeconds int
	Redis      RedisConfig
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string // "debug", "info", "warn", "error"
	Format string // "json", "console"
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled bool
	Port    int
	Path    string
}

// SchedulerConfig holds cleaning schedule configuration. IntervalOverrides
// maps frequency names to a day count, replacing the built-in intervals
// (for example shortening "monthly" for stores under stricter health codes).
type SchedulerConfig struct {
	IntervalOverrides map[string]int
}

// ApplySchedulerOverrides installs the configured interval overrides into
// the frequency table. Unknown frequency names and non-positive day counts
// are rejected.
func (c *Config) ApplySchedulerOverrides() error {
	for name, days := range c.Scheduler.IntervalOverrides {
		freq := models.Frequency(name)
		if _, ok := models.FrequencyIntervalDays[freq]; !ok {
			return fmt.Errorf("unknown frequency %q in scheduler overrides", name)
		}
		if days <= 0 {
			return fmt.Errorf("interval override for %q must be positive, got %d", name, days)
		}
		models.FrequencyIntervalDays[freq] = days
	}
	return nil
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/equipcore")
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("EQUIPCORE")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found; using defaults and environment variables
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// DatabasePortsConfig converts the loaded configuration into the shape the
// adapter factory expects.
func (c *Config) DatabasePortsConfig() *ports.DatabaseConfig {
	cfg := &ports.DatabaseConfig{
		Type: ports.DatabaseType(c.Database.Type),
	}

	switch cfg.Type {
	case ports.DatabaseTypePostgreSQL:
		cfg.PostgresConfig = &ports.PostgresConfig{
			Host:            c.Database.Postgres.Host,
			Port:            c.Database.Postgres.Port,
			User:            c.Database.Postgres.User,
			Password:        c.Database.Postgres.Password,
			Database:        c.Database.Postgres.Database,
			SSLMode:         c.Database.Postgres.SSLMode,
			MaxOpenConns:    c.Database.Postgres.MaxOpenConns,
			MaxIdleConns:    c.Database.Postgres.MaxIdleConns,
			ConnMaxLifetime: c.Database.Postgres.ConnMaxLifetime,
			ConnMaxIdleTime: c.Database.Postgres.ConnMaxIdleTime,
		}
	case ports.DatabaseTypeMongoDB:
		cfg.MongoDBConfig = &ports.MongoDBConfig{
			URI:             c.Database.MongoDB.URI,
			Database:        c.Database.MongoDB.Database,
			MaxPoolSize:     c.Database.MongoDB.MaxPoolSize,
			MinPoolSize:     c.Database.MongoDB.MinPoolSize,
			MaxConnIdleTime: c.Database.MongoDB.MaxConnIdleTime,
			ServerTimeout:   c.Database.MongoDB.ServerTimeout,
			WriteConcern:    c.Database.MongoDB.WriteConcern,
		}
	}

	return cfg
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Database defaults
	v.SetDefault("database.type", "memory")
	v.SetDefault("database.postgres.host", "localhost")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.user", "equipcore")
	v.SetDefault("database.postgres.password", "")
	v.SetDefault("database.postgres.database", "equipcore")
	v.SetDefault("database.postgres.sslMode", "disable")
	v.SetDefault("database.postgres.maxOpenConns", 25)
	v.SetDefault("database.postgres.maxIdleConns", 5)
	v.SetDefault("database.postgres.connMaxLifetime", 300)
	v.SetDefault("database.postgres.connMaxIdleTime", 600)
	v.SetDefault("database.mongodb.uri", "mongodb://localhost:27017")
	v.SetDefault("database.mongodb.database", "equipcore")
	v.SetDefault("database.mongodb.maxPoolSize", 100)
	v.SetDefault("database.mongodb.minPoolSize", 10)
	v.SetDefault("database.mongodb.maxConnIdleTime", 600)
	v.SetDefault("database.mongodb.serverTimeout", 30)
	v.SetDefault("database.mongodb.writeConcern", "majority")

	// Cache defaults
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.ttlSeconds", 300)
	v.SetDefault("cache.redis.addr", "localhost:6379")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")
}
