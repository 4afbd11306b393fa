package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/restokit/equipcore/internal/domain/models"
	"github.com/restokit/equipcore/internal/domain/ports"
)

// recordDoc wraps a maintenance record with a monotonically increasing
// ObjectID so the log can be read back in insertion order, which is not
// the same as chronological order when dates are backfilled.
type recordDoc struct {
	models.MaintenanceRecord `bson:",inline"`
	Ord                      primitive.ObjectID `bson:"ord"`
}

// recordRepository implements the RecordRepository interface using MongoDB
type recordRepository struct {
	collection *mongo.Collection
}

// NewRecordRepository creates a new MongoDB maintenance record repository
func NewRecordRepository(db *mongo.Database) ports.RecordRepository {
	return &recordRepository{
		collection: db.Collection("maintenance_records"),
	}
}

// Append inserts a record at the end of the equipment's event log
func (r *recordRepository) Append(ctx context.Context, record *models.MaintenanceRecord) error {
	doc := recordDoc{
		MaintenanceRecord: *record,
		Ord:               primitive.NewObjectID(),
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: record %q already exists", models.ErrConflict, record.ID)
		}
		return fmt.Errorf("failed to append record: %w", err)
	}
	return nil
}

// ListByEquipment returns all records for an equipment in insertion order
func (r *recordRepository) ListByEquipment(ctx context.Context, equipmentID string) ([]*models.MaintenanceRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "ord", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"equipment_id": equipmentID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer cursor.Close(ctx)

	result := make([]*models.MaintenanceRecord, 0)
	for cursor.Next(ctx) {
		var doc recordDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode record: %w", err)
		}
		record := doc.MaintenanceRecord
		result = append(result, &record)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return result, nil
}

// Delete removes a single record from the equipment's log
func (r *recordRepository) Delete(ctx context.Context, equipmentID, recordID string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": recordID, "equipment_id": equipmentID})
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: record %q", models.ErrNotFound, recordID)
	}
	return nil
}
