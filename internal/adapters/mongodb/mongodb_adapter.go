package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"github.com/restokit/equipcore/internal/domain/ports"
)

// MongoDBAdapter implements the DatabaseAdapter interface for MongoDB
type MongoDBAdapter struct {
	client        *mongo.Client
	db            *mongo.Database
	config        *ports.MongoDBConfig
	equipmentRepo ports.EquipmentRepository
	recordRepo    ports.RecordRepository
}

// NewMongoDBAdapter creates a new MongoDB database adapter
func NewMongoDBAdapter(config *ports.MongoDBConfig) *MongoDBAdapter {
	return &MongoDBAdapter{
		config: config,
	}
}

// Connect establishes a connection to the MongoDB database
func (a *MongoDBAdapter) Connect(ctx context.Context) error {
	clientOpts := options.Client().ApplyURI(a.config.URI)

	// Configure connection pool
	if a.config.MaxPoolSize > 0 {
		clientOpts.SetMaxPoolSize(uint64(a.config.MaxPoolSize))
	}
	if a.config.MinPoolSize > 0 {
		clientOpts.SetMinPoolSize(uint64(a.config.MinPoolSize))
	}
	if a.config.MaxConnIdleTime > 0 {
		clientOpts.SetMaxConnIdleTime(time.Duration(a.config.MaxConnIdleTime) * time.Second)
	}
	if a.config.ServerTimeout > 0 {
		clientOpts.SetServerSelectionTimeout(time.Duration(a.config.ServerTimeout) * time.Second)
	}

	// Set write concern
	if a.config.WriteConcern == "majority" {
		clientOpts.SetWriteConcern(writeconcern.Majority())
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping to verify connection
	if err = client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("failed to ping mongodb: %w", err)
	}

	a.client = client
	a.db = client.Database(a.config.Database)

	// Initialize repositories
	a.recordRepo = NewRecordRepository(a.db)
	a.equipmentRepo = NewEquipmentRepository(a.client, a.db, a.recordRepo)

	// Create indexes
	if err = a.createIndexes(ctx); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

// Disconnect closes the database connection
func (a *MongoDBAdapter) Disconnect(ctx context.Context) error {
	if a.client != nil {
		return a.client.Disconnect(ctx)
	}
	return nil
}

// Ping checks if the database connection is alive
func (a *MongoDBAdapter) Ping(ctx context.Context) error {
	if a.client == nil {
		return fmt.Errorf("database not connected")
	}
	return a.client.Ping(ctx, nil)
}

// GetType returns the database type
func (a *MongoDBAdapter) GetType() ports.DatabaseType {
	return ports.DatabaseTypeMongoDB
}

// GetEquipmentRepository returns the equipment repository
func (a *MongoDBAdapter) GetEquipmentRepository() ports.EquipmentRepository {
	return a.equipmentRepo
}

// GetRecordRepository returns the maintenance record repository
func (a *MongoDBAdapter) GetRecordRepository() ports.RecordRepository {
	return a.recordRepo
}

// createIndexes creates necessary indexes for optimal performance
func (a *MongoDBAdapter) createIndexes(ctx context.Context) error {
	equipmentIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "store_id", Value: 1}},
		},
		{
			Keys: bson.D{
				{Key: "store_id", Value: 1},
				{Key: "status", Value: 1},
			},
		},
		{
			Keys: bson.D{{Key: "next_maintenance", Value: 1}},
		},
	}

	_, err := a.db.Collection("equipment").Indexes().CreateMany(ctx, equipmentIndexes)
	if err != nil {
		return fmt.Errorf("failed to create equipment indexes: %w", err)
	}

	recordIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "equipment_id", Value: 1},
				{Key: "ord", Value: 1},
			},
		},
		{
			Keys: bson.D{{Key: "date", Value: -1}},
		},
	}

	_, err = a.db.Collection("maintenance_records").Indexes().CreateMany(ctx, recordIndexes)
	if err != nil {
		return fmt.Errorf("failed to create record indexes: %w", err)
	}

	return nil
}
