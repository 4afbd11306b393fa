package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/restokit/equipcore/internal/domain/models"
)

// The status machine. Only two transitions are actively driven here:
// operational -> repair (mark broken) and repair -> operational (resolve).
// Routine maintenance and mid-incident updates append records without a
// status change. All functions are pure over (equipment, input, now): they
// return a fresh Equipment copy plus the record to append, or an error.

// MarkBrokenInput carries the fields of an issue report
type MarkBrokenInput struct {
	Description string
	Severity    models.Severity // empty defaults to medium
	PerformedBy models.UserRef
}

// MarkBroken moves operational equipment to repair and opens an issue.
// The formatted issue string "[SEVERITY] description" is appended to the
// equipment's issue list and carried on the record's notes so incident
// reconstruction can recover the severity later.
func MarkBroken(e *models.Equipment, in MarkBrokenInput, now time.Time) (*models.Equipment, *models.MaintenanceRecord, error) {
	if strings.TrimSpace(in.Description) == "" {
		return nil, nil, fmt.Errorf("%w: issue description is required", models.ErrValidation)
	}
	severity := in.Severity
	if severity == "" {
		severity = models.SeverityMedium
	}
	if err := models.ValidateSeverity(severity); err != nil {
		return nil, nil, err
	}
	if e.Status != models.StatusOperational {
		return nil, nil, fmt.Errorf("%w: cannot mark %q equipment broken", models.ErrInvalidTransition, e.Status)
	}

	issue := models.FormatIssue(severity, strings.TrimSpace(in.Description))

	updated := e.Clone()
	updated.Status = models.StatusRepair
	updated.Issues = append(updated.Issues, issue)

	prev := models.StatusOperational
	next := models.StatusRepair
	record := &models.MaintenanceRecord{
		ID:             uuid.NewString(),
		EquipmentID:    e.ID,
		Date:           now,
		Type:           models.RecordTypeNote,
		PreviousStatus: &prev,
		NewStatus:      &next,
		Notes:          issue,
		PerformedBy:    in.PerformedBy,
	}
	return updated, record, nil
}

// ResolveIssueInput carries the fields of an issue resolution
type ResolveIssueInput struct {
	Notes       string
	Cost        *float64
	RepairedBy  string
	PerformedBy models.UserRef
}

// ResolveIssue returns repair equipment to operational, clears its issues and
// advances the maintenance dates. Optional cost and repaired-by fields are
// appended to the notes as structured lines.
func ResolveIssue(e *models.Equipment, in ResolveIssueInput, now time.Time) (*models.Equipment, *models.MaintenanceRecord, error) {
	if strings.TrimSpace(in.Notes) == "" {
		return nil, nil, fmt.Errorf("%w: repair notes are required", models.ErrValidation)
	}
	if e.Status != models.StatusRepair {
		return nil, nil, fmt.Errorf("%w: cannot resolve %q equipment", models.ErrInvalidTransition, e.Status)
	}

	updated := e.Clone()
	updated.Status = models.StatusOperational
	updated.Issues = nil
	advanceMaintenanceDates(updated, now)

	prev := models.StatusRepair
	next := models.StatusOperational
	record := &models.MaintenanceRecord{
		ID:             uuid.NewString(),
		EquipmentID:    e.ID,
		Date:           now,
		Type:           models.RecordTypeRepair,
		PreviousStatus: &prev,
		NewStatus:      &next,
		Notes:          models.FormatResolutionNotes(strings.TrimSpace(in.Notes), in.Cost, in.RepairedBy),
		PerformedBy:    in.PerformedBy,
	}
	return updated, record, nil
}

// CompleteMaintenanceInput carries the fields of a routine maintenance entry
type CompleteMaintenanceInput struct {
	Notes       string
	PerformedBy models.UserRef
}

// CompleteMaintenance records routine maintenance on operational equipment.
// Status does not change; the record carries no status fields.
func CompleteMaintenance(e *models.Equipment, in CompleteMaintenanceInput, now time.Time) (*models.Equipment, *models.MaintenanceRecord, error) {
	updated := e.Clone()
	advanceMaintenanceDates(updated, now)

	record := &models.MaintenanceRecord{
		ID:          uuid.NewString(),
		EquipmentID: e.ID,
		Date:        now,
		Type:        models.RecordTypeMaintenance,
		Notes:       strings.TrimSpace(in.Notes),
		PerformedBy: in.PerformedBy,
	}
	return updated, record, nil
}

// AddUpdateInput carries the fields of a mid-incident progress note
type AddUpdateInput struct {
	Notes       string
	Tag         models.UpdateTag // empty defaults to [UPDATE]
	PerformedBy models.UserRef
}

// AddUpdate appends a bracket-tagged progress note while the equipment is
// under repair. No status change and no equipment mutation.
func AddUpdate(e *models.Equipment, in AddUpdateInput, now time.Time) (*models.MaintenanceRecord, error) {
	if strings.TrimSpace(in.Notes) == "" {
		return nil, fmt.Errorf("%w: update notes are required", models.ErrValidation)
	}
	if e.Status != models.StatusRepair {
		return nil, fmt.Errorf("%w: cannot add update to %q equipment", models.ErrInvalidTransition, e.Status)
	}

	tag := models.NormalizeUpdateTag(in.Tag)
	record := &models.MaintenanceRecord{
		ID:                         uuid.NewString(),
		EquipmentID:                e.ID,
		Date:                       now,
		Type:                       models.RecordTypeNote,
		Notes:                      string(tag) + " " + strings.TrimSpace(in.Notes),
		PerformedBy:                in.PerformedBy,
		AssociatedWithCurrentIssue: true,
	}
	return record, nil
}

// advanceMaintenanceDates sets lastMaintenance to now and nextMaintenance to
// now plus the equipment's maintenance interval.
func advanceMaintenanceDates(e *models.Equipment, now time.Time) {
	last := now
	next := now.AddDate(0, 0, e.MaintenanceIntervalDays)
	e.LastMaintenance = &last
	e.NextMaintenance = &next
}
