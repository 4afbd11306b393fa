package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/restokit/equipcore/internal/domain/models"
	"github.com/restokit/equipcore/internal/domain/ports"
)

// InMemoryEquipmentRepository is an in-memory implementation used by tests
// and the memory database type. Writes go through the same optimistic
// version check the durable adapters use.
type InMemoryEquipmentRepository struct {
	mu        sync.RWMutex
	equipment map[string]*models.Equipment
	records   *InMemoryRecordRepository // for atomic SaveWithRecords
}

// NewInMemoryEquipmentRepository creates a new in-memory equipment repository
// sharing the given record repository for atomic writes.
func NewInMemoryEquipmentRepository(records *InMemoryRecordRepository) *InMemoryEquipmentRepository {
	return &InMemoryEquipmentRepository{
		equipment: make(map[string]*models.Equipment),
		records:   records,
	}
}

func (r *InMemoryEquipmentRepository) GetByID(ctx context.Context, id string) (*models.Equipment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if e, ok := r.equipment[id]; ok {
		return e.Clone(), nil
	}
	return nil, fmt.Errorf("%w: equipment %q", models.ErrNotFound, id)
}

func (r *InMemoryEquipmentRepository) Create(ctx context.Context, equipment *models.Equipment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.equipment[equipment.ID]; exists {
		return fmt.Errorf("%w: equipment %q already exists", models.ErrConflict, equipment.ID)
	}
	equipment.Version = 1
	r.equipment[equipment.ID] = equipment.Clone()
	return nil
}

func (r *InMemoryEquipmentRepository) Save(ctx context.Context, equipment *models.Equipment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saveLocked(equipment)
}

func (r *InMemoryEquipmentRepository) SaveWithRecords(ctx context.Context, equipment *models.Equipment, records []*models.MaintenanceRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.saveLocked(equipment); err != nil {
		return err
	}
	for _, rec := range records {
		r.records.append(rec)
	}
	return nil
}

// saveLocked applies the optimistic version check and stores the equipment.
// Caller holds the write lock.
func (r *InMemoryEquipmentRepository) saveLocked(equipment *models.Equipment) error {
	stored, exists := r.equipment[equipment.ID]
	if !exists {
		return fmt.Errorf("%w: equipment %q", models.ErrNotFound, equipment.ID)
	}
	if stored.Version != equipment.Version {
		return fmt.Errorf("%w: equipment %q version %d (stored %d)",
			models.ErrConflict, equipment.ID, equipment.Version, stored.Version)
	}
	saved := equipment.Clone()
	saved.Version++
	r.equipment[equipment.ID] = saved
	equipment.Version = saved.Version
	return nil
}

func (r *InMemoryEquipmentRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.equipment[id]; !exists {
		return fmt.Errorf("%w: equipment %q", models.ErrNotFound, id)
	}
	delete(r.equipment, id)
	return nil
}

func (r *InMemoryEquipmentRepository) List(ctx context.Context, storeID string, offset, limit int) ([]*models.Equipment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*models.Equipment, 0)
	count := 0
	for _, e := range r.equipment {
		if e.StoreID != storeID {
			continue
		}
		if count >= offset {
			result = append(result, e.Clone())
			if limit > 0 && len(result) >= limit {
				break
			}
		}
		count++
	}
	return result, nil
}

func (r *InMemoryEquipmentRepository) ListByStatus(ctx context.Context, storeID string, status models.EquipmentStatus, offset, limit int) ([]*models.Equipment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*models.Equipment, 0)
	count := 0
	for _, e := range r.equipment {
		if e.StoreID != storeID || e.Status != status {
			continue
		}
		if count >= offset {
			result = append(result, e.Clone())
			if limit > 0 && len(result) >= limit {
				break
			}
		}
		count++
	}
	return result, nil
}

var _ ports.EquipmentRepository = (*InMemoryEquipmentRepository)(nil)
