package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/restokit/equipcore/internal/domain/models"
	"github.com/restokit/equipcore/internal/domain/ports"
)

// InMemoryRecordRepository is an in-memory append-only event log keyed by
// equipment id, read back in insertion order.
type InMemoryRecordRepository struct {
	mu      sync.RWMutex
	byEquip map[string][]*models.MaintenanceRecord
}

// NewInMemoryRecordRepository creates a new in-memory record repository
func NewInMemoryRecordRepository() *InMemoryRecordRepository {
	return &InMemoryRecordRepository{
		byEquip: make(map[string][]*models.MaintenanceRecord),
	}
}

func (r *InMemoryRecordRepository) Append(ctx context.Context, record *models.MaintenanceRecord) error {
	r.append(record)
	return nil
}

// append is also called by the equipment repository's SaveWithRecords; it
// takes this repository's own lock, so the two never deadlock.
func (r *InMemoryRecordRepository) append(record *models.MaintenanceRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *record
	r.byEquip[record.EquipmentID] = append(r.byEquip[record.EquipmentID], &cp)
}

func (r *InMemoryRecordRepository) ListByEquipment(ctx context.Context, equipmentID string) ([]*models.MaintenanceRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.byEquip[equipmentID]
	result := make([]*models.MaintenanceRecord, 0, len(stored))
	for _, rec := range stored {
		cp := *rec
		result = append(result, &cp)
	}
	return result, nil
}

func (r *InMemoryRecordRepository) Delete(ctx context.Context, equipmentID, recordID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := r.byEquip[equipmentID]
	for i, rec := range stored {
		if rec.ID == recordID {
			r.byEquip[equipmentID] = append(stored[:i:i], stored[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: record %q for equipment %q", models.ErrNotFound, recordID, equipmentID)
}

var _ ports.RecordRepository = (*InMemoryRecordRepository)(nil)
