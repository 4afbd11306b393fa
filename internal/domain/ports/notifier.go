package ports

import (
	"context"

	"github.com/restokit/equipcore/internal/domain/models"
)

// Notifier is the outbound hook the aggregate fires after a successful
// mark-broken (e.g. "equipment marked broken, notify directors"). Delivery
// failures are logged and never roll back the domain mutation; the engine
// defines no retry contract.
type Notifier interface {
	EquipmentBroken(ctx context.Context, equipment *models.Equipment, record *models.MaintenanceRecord) error
}

// NopNotifier discards notifications
type NopNotifier struct{}

func (NopNotifier) EquipmentBroken(context.Context, *models.Equipment, *models.MaintenanceRecord) error {
	return nil
}
