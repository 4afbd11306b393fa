package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/restokit/equipcore/internal/domain/models"
	"github.com/restokit/equipcore/internal/domain/ports"
)

// equipmentRepository implements the EquipmentRepository interface using MongoDB
type equipmentRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
	records    *recordRepository
}

// NewEquipmentRepository creates a new MongoDB equipment repository. The
// record repository is needed for the atomic SaveWithRecords path.
func NewEquipmentRepository(client *mongo.Client, db *mongo.Database, records ports.RecordRepository) ports.EquipmentRepository {
	return &equipmentRepository{
		client:     client,
		collection: db.Collection("equipment"),
		records:    records.(*recordRepository),
	}
}

// GetByID retrieves equipment by id
func (r *equipmentRepository) GetByID(ctx context.Context, id string) (*models.Equipment, error) {
	var equipment models.Equipment
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&equipment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: equipment %q", models.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get equipment: %w", err)
	}
	return &equipment, nil
}

// Create adds a new equipment record
func (r *equipmentRepository) Create(ctx context.Context, equipment *models.Equipment) error {
	equipment.Version = 1
	if _, err := r.collection.InsertOne(ctx, equipment); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: equipment %q already exists", models.ErrConflict, equipment.ID)
		}
		return fmt.Errorf("failed to create equipment: %w", err)
	}
	return nil
}

// Save persists a modified equipment with an optimistic version check
func (r *equipmentRepository) Save(ctx context.Context, equipment *models.Equipment) error {
	return r.save(ctx, equipment)
}

func (r *equipmentRepository) save(ctx context.Context, equipment *models.Equipment) error {
	filter := bson.M{"_id": equipment.ID, "version": equipment.Version}
	update := bson.M{
		"$set": bson.M{
			"store_id":                  equipment.StoreID,
			"name":                      equipment.Name,
			"category":                  equipment.Category,
			"maintenance_interval_days": equipment.MaintenanceIntervalDays,
			"status":                    equipment.Status,
			"last_maintenance":          equipment.LastMaintenance,
			"next_maintenance":          equipment.NextMaintenance,
			"issues":                    equipment.Issues,
			"cleaning_schedules":        equipment.CleaningSchedules,
		},
		"$inc": bson.M{"version": int64(1)},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to save equipment: %w", err)
	}
	if result.MatchedCount == 0 {
		// Distinguish a missing document from a stale version.
		count, cerr := r.collection.CountDocuments(ctx, bson.M{"_id": equipment.ID})
		if cerr == nil && count == 0 {
			return fmt.Errorf("%w: equipment %q", models.ErrNotFound, equipment.ID)
		}
		return fmt.Errorf("%w: equipment %q version %d is stale", models.ErrConflict, equipment.ID, equipment.Version)
	}
	equipment.Version++
	return nil
}

// SaveWithRecords persists the equipment and appends records inside one
// transaction so a status change is never recorded without its event.
func (r *equipmentRepository) SaveWithRecords(ctx context.Context, equipment *models.Equipment, records []*models.MaintenanceRecord) error {
	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if err := r.save(sc, equipment); err != nil {
			return nil, err
		}
		for _, rec := range records {
			if err := r.records.Append(sc, rec); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	return err
}

// Delete removes an equipment record
func (r *equipmentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete equipment: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: equipment %q", models.ErrNotFound, id)
	}
	return nil
}

// List retrieves equipment for a store with pagination
func (r *equipmentRepository) List(ctx context.Context, storeID string, offset, limit int) ([]*models.Equipment, error) {
	return r.find(ctx, bson.M{"store_id": storeID}, offset, limit)
}

// ListByStatus retrieves equipment for a store filtered by status
func (r *equipmentRepository) ListByStatus(ctx context.Context, storeID string, status models.EquipmentStatus, offset, limit int) ([]*models.Equipment, error) {
	return r.find(ctx, bson.M{"store_id": storeID, "status": status}, offset, limit)
}

func findOptions(offset, limit int) *options.FindOptions {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	if offset > 0 {
		opts.SetSkip(int64(offset))
	}
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return opts
}

func (r *equipmentRepository) find(ctx context.Context, filter bson.M, offset, limit int) ([]*models.Equipment, error) {
	opts := findOptions(offset, limit)
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list equipment: %w", err)
	}
	defer cursor.Close(ctx)

	result := make([]*models.Equipment, 0)
	for cursor.Next(ctx) {
		var equipment models.Equipment
		if err := cursor.Decode(&equipment); err != nil {
			return nil, fmt.Errorf("failed to decode equipment: %w", err)
		}
		result = append(result, &equipment)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return result, nil
}
