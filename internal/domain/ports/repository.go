package ports

import (
	"context"

	"github.com/restokit/equipcore/internal/domain/models"
)

// EquipmentRepository defines the interface for equipment data access.
// This is a port owned by the domain layer.
type EquipmentRepository interface {
	// GetByID retrieves equipment by its id
	GetByID(ctx context.Context, id string) (*models.Equipment, error)

	// Create adds a new equipment record
	Create(ctx context.Context, equipment *models.Equipment) error

	// Save persists a modified equipment. Implementations must check the
	// equipment's Version against the stored one and return
	// models.ErrConflict on mismatch; on success the stored version is
	// incremented.
	Save(ctx context.Context, equipment *models.Equipment) error

	// SaveWithRecords persists the equipment and appends the given
	// maintenance records as a single atomic unit. Either all writes apply
	// or none do.
	SaveWithRecords(ctx context.Context, equipment *models.Equipment, records []*models.MaintenanceRecord) error

	// Delete removes an equipment record by id
	Delete(ctx context.Context, id string) error

	// List retrieves equipment for a store with pagination
	List(ctx context.Context, storeID string, offset, limit int) ([]*models.Equipment, error)

	// ListByStatus retrieves equipment for a store filtered by status
	ListByStatus(ctx context.Context, storeID string, status models.EquipmentStatus, offset, limit int) ([]*models.Equipment, error)
}

// RecordRepository is the append-only event log of maintenance records,
// keyed by equipment id and read back in insertion order.
type RecordRepository interface {
	// Append adds a record to the log
	Append(ctx context.Context, record *models.MaintenanceRecord) error

	// ListByEquipment retrieves all records for an equipment in insertion
	// order (not necessarily chronological if dates were backfilled)
	ListByEquipment(ctx context.Context, equipmentID string) ([]*models.MaintenanceRecord, error)

	// Delete hard-deletes a single record. Used by the explicit operator
	// "delete record" action; the reconstructor tolerates the hole.
	Delete(ctx context.Context, equipmentID, recordID string) error
}

// CacheRepository defines the interface for caching equipment reads (optional)
type CacheRepository interface {
	// Get retrieves equipment data from cache
	Get(ctx context.Context, id string) (*models.Equipment, error)

	// Set stores equipment data in cache
	Set(ctx context.Context, id string, equipment *models.Equipment, ttlSeconds int) error

	// Delete removes equipment data from cache
	Delete(ctx context.Context, id string) error

	// Exists checks if a key exists in cache
	Exists(ctx context.Context, id string) (bool, error)
}
