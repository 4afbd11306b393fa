package ports

import (
	"context"
	"time"

	"github.com/restokit/equipcore/internal/domain/models"
)

// MaintenanceService defines the core business operations of the maintenance
// engine. This is the primary port for the domain: the only mutation surface
// exposed to the rest of the application.
type MaintenanceService interface {
	// RegisterEquipment creates equipment for a store from a catalog definition
	RegisterEquipment(ctx context.Context, request *RegisterEquipmentRequest) (*models.Equipment, error)

	// MarkBroken reports an issue and moves operational equipment to repair
	MarkBroken(ctx context.Context, request *MarkBrokenRequest) (*models.Equipment, *models.MaintenanceRecord, error)

	// ResolveIssue closes the current issue and returns equipment to operational
	ResolveIssue(ctx context.Context, request *ResolveIssueRequest) (*models.Equipment, *models.MaintenanceRecord, error)

	// AddUpdate appends a tagged progress note while equipment is under repair
	AddUpdate(ctx context.Context, request *AddUpdateRequest) (*models.MaintenanceRecord, error)

	// CompleteMaintenance records routine maintenance without a status change
	CompleteMaintenance(ctx context.Context, request *CompleteMaintenanceRequest) (*models.Equipment, *models.MaintenanceRecord, error)

	// AddCleaningSchedule attaches a new recurring cleaning task
	AddCleaningSchedule(ctx context.Context, equipmentID string, schedule models.CleaningSchedule) (*models.Equipment, error)

	// UpdateCleaningSchedule replaces a cleaning task identified by name
	UpdateCleaningSchedule(ctx context.Context, equipmentID, name string, schedule models.CleaningSchedule) (*models.Equipment, error)

	// DeleteCleaningSchedule removes a cleaning task by name
	DeleteCleaningSchedule(ctx context.Context, equipmentID, name string) (*models.Equipment, error)

	// CompleteCleaningSchedule records a completion, re-validates the
	// checklist gate and advances the next due date
	CompleteCleaningSchedule(ctx context.Context, request *CompleteCleaningRequest) (*models.CleaningSchedule, error)

	// DeleteRecord hard-deletes a single maintenance record
	DeleteRecord(ctx context.Context, equipmentID, recordID string) error

	// GetEquipment retrieves equipment by id
	GetEquipment(ctx context.Context, equipmentID string) (*models.Equipment, error)

	// GetIncidents reconstructs the incident list from the equipment's event
	// log, most recently opened first. Computed fresh on every call.
	GetIncidents(ctx context.Context, equipmentID string) ([]*models.Incident, error)

	// ListEquipment retrieves paginated equipment for a store
	ListEquipment(ctx context.Context, storeID string, offset, limit int) ([]*models.Equipment, error)

	// ListEquipmentByStatus retrieves equipment for a store filtered by status
	ListEquipmentByStatus(ctx context.Context, storeID string, status models.EquipmentStatus, offset, limit int) ([]*models.Equipment, error)
}

// RegisterEquipmentRequest creates equipment from the two-tier catalog
type RegisterEquipmentRequest struct {
	StoreID       string // Required: owning store
	CatalogName   string // Required: name resolved against the catalog
	EquipmentID   string // Optional: id; generated when empty
	PerformedBy   models.UserRef
}

// MarkBrokenRequest reports an equipment issue
type MarkBrokenRequest struct {
	EquipmentID string
	Description string          // Required: free-text issue description
	Severity    models.Severity // Optional: defaults to medium
	PerformedBy models.UserRef
}

// ResolveIssueRequest closes the current issue
type ResolveIssueRequest struct {
	EquipmentID string
	Notes       string   // Required: free-text repair notes
	Cost        *float64 // Optional: appended as a "Cost: $X" line
	RepairedBy  string   // Optional: appended as a "Repaired by: Y" line
	PerformedBy models.UserRef
}

// AddUpdateRequest appends a mid-incident progress note
type AddUpdateRequest struct {
	EquipmentID string
	Notes       string           // Required: progress text
	Tag         models.UpdateTag // Optional: defaults to [UPDATE]
	PerformedBy models.UserRef
}

// CompleteMaintenanceRequest records routine maintenance
type CompleteMaintenanceRequest struct {
	EquipmentID string
	Notes       string
	PerformedBy models.UserRef
}

// CompleteCleaningRequest records a cleaning-task completion
type CompleteCleaningRequest struct {
	EquipmentID    string
	ScheduleName   string
	CompletionDate time.Time // Zero value means "now"
	Notes          string
	CompletedItems []models.CompletedItem
	IsEarly        bool // Resets the recurrence anchor to the completion date
	PerformedBy    models.UserRef
}
