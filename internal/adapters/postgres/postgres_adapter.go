package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/restokit/equipcore/internal/domain/ports"
)

// PostgresAdapter implements the DatabaseAdapter interface for PostgreSQL
type PostgresAdapter struct {
	db            *sqlx.DB
	config        *ports.PostgresConfig
	equipmentRepo ports.EquipmentRepository
	recordRepo    ports.RecordRepository
}

// NewPostgresAdapter creates a new PostgreSQL database adapter
func NewPostgresAdapter(config *ports.PostgresConfig) *PostgresAdapter {
	return &PostgresAdapter{
		config: config,
	}
}

// Connect establishes a connection to the PostgreSQL database
func (a *PostgresAdapter) Connect(ctx context.Context) error {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		a.config.Host,
		a.config.Port,
		a.config.User,
		a.config.Password,
		a.config.Database,
		a.config.SSLMode,
	)

	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(a.config.MaxOpenConns)
	db.SetMaxIdleConns(a.config.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(a.config.ConnMaxLifetime) * time.Second)
	db.SetConnMaxIdleTime(time.Duration(a.config.ConnMaxIdleTime) * time.Second)

	a.db = db

	// Apply the schema before handing out repositories
	if err := NewMigrator(db).Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	a.equipmentRepo = NewEquipmentRepository(db)
	a.recordRepo = NewRecordRepository(db)

	return nil
}

// Disconnect closes the database connection
func (a *PostgresAdapter) Disconnect(ctx context.Context) error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// Ping checks if the database connection is alive
func (a *PostgresAdapter) Ping(ctx context.Context) error {
	if a.db == nil {
		return fmt.Errorf("database not connected")
	}
	return a.db.PingContext(ctx)
}

// GetType returns the database type
func (a *PostgresAdapter) GetType() ports.DatabaseType {
	return ports.DatabaseTypePostgreSQL
}

// GetEquipmentRepository returns the equipment repository
func (a *PostgresAdapter) GetEquipmentRepository() ports.EquipmentRepository {
	return a.equipmentRepo
}

// GetRecordRepository returns the maintenance record repository
func (a *PostgresAdapter) GetRecordRepository() ports.RecordRepository {
	return a.recordRepo
}
