package memory

import (
	"context"

	"github.com/restokit/equipcore/internal/domain/ports"
)

// MemoryAdapter implements the DatabaseAdapter interface with the in-memory
// repositories. Used for tests and single-process deployments.
type MemoryAdapter struct {
	equipmentRepo *InMemoryEquipmentRepository
	recordRepo    *InMemoryRecordRepository
}

// NewMemoryAdapter creates a new in-memory database adapter
func NewMemoryAdapter() *MemoryAdapter {
	records := NewInMemoryRecordRepository()
	return &MemoryAdapter{
		equipmentRepo: NewInMemoryEquipmentRepository(records),
		recordRepo:    records,
	}
}

// Connect is a no-op for the in-memory backend
func (a *MemoryAdapter) Connect(ctx context.Context) error {
	return nil
}

// Disconnect is a no-op for the in-memory backend
func (a *MemoryAdapter) Disconnect(ctx context.Context) error {
	return nil
}

// Ping always succeeds for the in-memory backend
func (a *MemoryAdapter) Ping(ctx context.Context) error {
	return nil
}

// GetType returns the database type
func (a *MemoryAdapter) GetType() ports.DatabaseType {
	return ports.DatabaseTypeMemory
}

// GetEquipmentRepository returns the equipment repository
func (a *MemoryAdapter) GetEquipmentRepository() ports.EquipmentRepository {
	return a.equipmentRepo
}

// GetRecordRepository returns the maintenance record repository
func (a *MemoryAdapter) GetRecordRepository() ports.RecordRepository {
	return a.recordRepo
}
