package ports

import "context"

// DatabaseType represents the type of storage backend
type DatabaseType string

const (
	DatabaseTypeMemory     DatabaseType = "memory"
	DatabaseTypePostgreSQL DatabaseType = "postgres"
	DatabaseTypeMongoDB    DatabaseType = "mongodb"
)

// DatabaseAdapter provides a common abstraction over the storage backends.
// Adapters own the connection lifecycle and hand out repositories bound to it.
type DatabaseAdapter interface {
	// Connect establishes a connection to the backend
	Connect(ctx context.Context) error

	// Disconnect closes the connection
	Disconnect(ctx context.Context) error

	// Ping checks if the connection is alive
	Ping(ctx context.Context) error

	// GetType returns the backend type
	GetType() DatabaseType

	// Repository factory methods
	GetEquipmentRepository() EquipmentRepository
	GetRecordRepository() RecordRepository
}

// DatabaseConfig holds storage configuration
type DatabaseConfig struct {
	Type           DatabaseType    `yaml:"type" json:"type" mapstructure:"type"`
	PostgresConfig *PostgresConfig `yaml:"postgres,omitempty" json:"postgres,omitempty" mapstructure:"postgres"`
	MongoDBConfig  *MongoDBConfig  `yaml:"mongodb,omitempty" json:"mongodb,omitempty" mapstructure:"mongodb"`
}

// PostgresConfig holds PostgreSQL-specific configuration
type PostgresConfig struct {
	Host            string `yaml:"host" json:"host" mapstructure:"host"`
	Port            int    `yaml:"port" json:"port" mapstructure:"port"`
	User            string `yaml:"user" json:"user" mapstructure:"user"`
	Password        string `yaml:"password" json:"password" mapstructure:"password"`
	Database        string `yaml:"database" json:"database" mapstructure:"database"`
	SSLMode         string `yaml:"ssl_mode" json:"ssl_mode" mapstructure:"ssl_mode"`
	MaxOpenConns    int    `yaml:"max_open_conns" json:"max_open_conns" mapstructure:"max_open_conns"`
	MaxIdleConns    int    `yaml:"max_idle_conns" json:"max_idle_conns" mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime" json:"conn_max_lifetime" mapstructure:"conn_max_lifetime"` // in seconds
	ConnMaxIdleTime int    `yaml:"conn_max_idle_time" json:"conn_max_idle_time" mapstructure:"conn_max_idle_time"` // in seconds
}

// MongoDBConfig holds MongoDB-specific configuration
type MongoDBConfig struct {
	URI             string `yaml:"uri" json:"uri" mapstructure:"uri"`
	Database        string `yaml:"database" json:"database" mapstructure:"database"`
	MaxPoolSize     int    `yaml:"max_pool_size" json:"max_pool_size" mapstructure:"max_pool_size"`
	MinPoolSize     int    `yaml:"min_pool_size" json:"min_pool_size" mapstructure:"min_pool_size"`
	MaxConnIdleTime int    `yaml:"max_conn_idle_time" json:"max_conn_idle_time" mapstructure:"max_conn_idle_time"` // in seconds
	ServerTimeout   int    `yaml:"server_timeout" json:"server_timeout" mapstructure:"server_timeout"` // in seconds
	WriteConcern    string `yaml:"write_concern" json:"write_concern" mapstructure:"write_concern"` // majority, etc.
}
