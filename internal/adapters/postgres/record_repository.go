package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/restokit/equipcore/internal/domain/models"
	"github.com/restokit/equipcore/internal/domain/ports"
)

// recordRow is the flat database shape of a maintenance record
type recordRow struct {
	ID                         string         `db:"id"`
	EquipmentID                string         `db:"equipment_id"`
	Date                       time.Time      `db:"date"`
	Type                       string         `db:"type"`
	PreviousStatus             *string        `db:"previous_status"`
	NewStatus                  *string        `db:"new_status"`
	Notes                      string         `db:"notes"`
	PerformedBy                types.JSONText `db:"performed_by"`
	AssociatedWithCurrentIssue bool           `db:"associated_with_current_issue"`
}

func toRecordRow(rec *models.MaintenanceRecord) (*recordRow, error) {
	performedBy, err := json.Marshal(rec.PerformedBy)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal performed_by: %w", err)
	}
	row := &recordRow{
		ID:                         rec.ID,
		EquipmentID:                rec.EquipmentID,
		Date:                       rec.Date,
		Type:                       string(rec.Type),
		Notes:                      rec.Notes,
		PerformedBy:                types.JSONText(performedBy),
		AssociatedWithCurrentIssue: rec.AssociatedWithCurrentIssue,
	}
	if rec.PreviousStatus != nil {
		s := string(*rec.PreviousStatus)
		row.PreviousStatus = &s
	}
	if rec.NewStatus != nil {
		s := string(*rec.NewStatus)
		row.NewStatus = &s
	}
	return row, nil
}

func (row *recordRow) toModel() (*models.MaintenanceRecord, error) {
	rec := &models.MaintenanceRecord{
		ID:                         row.ID,
		EquipmentID:                row.EquipmentID,
		Date:                       row.Date,
		Type:                       models.RecordType(row.Type),
		Notes:                      row.Notes,
		AssociatedWithCurrentIssue: row.AssociatedWithCurrentIssue,
	}
	if row.PreviousStatus != nil {
		s := models.EquipmentStatus(*row.PreviousStatus)
		rec.PreviousStatus = &s
	}
	if row.NewStatus != nil {
		s := models.EquipmentStatus(*row.NewStatus)
		rec.NewStatus = &s
	}
	if len(row.PerformedBy) > 0 {
		if err := json.Unmarshal(row.PerformedBy, &rec.PerformedBy); err != nil {
			return nil, fmt.Errorf("failed to unmarshal performed_by: %w", err)
		}
	}
	return rec, nil
}

// recordRepository implements the RecordRepository interface using PostgreSQL
type recordRepository struct {
	db *sqlx.DB
}

// NewRecordRepository creates a new PostgreSQL maintenance record repository
func NewRecordRepository(db *sqlx.DB) ports.RecordRepository {
	return &recordRepository{db: db}
}

// Append inserts a record at the end of the equipment's event log
func (r *recordRepository) Append(ctx context.Context, record *models.MaintenanceRecord) error {
	return appendRecord(ctx, r.db, record)
}

func appendRecord(ctx context.Context, ext sqlx.ExtContext, record *models.MaintenanceRecord) error {
	row, err := toRecordRow(record)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO maintenance_records (
			id, equipment_id, date, type, previous_status, new_status,
			notes, performed_by, associated_with_current_issue
		) VALUES (
			:id, :equipment_id, :date, :type, :previous_status, :new_status,
			:notes, :performed_by, :associated_with_current_issue
		)
	`

	if _, err := sqlx.NamedExecContext(ctx, ext, query, row); err != nil {
		return fmt.Errorf("failed to append record: %w", err)
	}
	return nil
}

// ListByEquipment returns all records for an equipment in insertion order
func (r *recordRepository) ListByEquipment(ctx context.Context, equipmentID string) ([]*models.MaintenanceRecord, error) {
	query := `
		SELECT id, equipment_id, date, type, previous_status, new_status,
		       notes, performed_by, associated_with_current_issue
		FROM maintenance_records
		WHERE equipment_id = $1
		ORDER BY seq
	`

	var rows []recordRow
	if err := r.db.SelectContext(ctx, &rows, query, equipmentID); err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	result := make([]*models.MaintenanceRecord, 0, len(rows))
	for i := range rows {
		rec, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	return result, nil
}

// Delete removes a single record from the equipment's log
func (r *recordRepository) Delete(ctx context.Context, equipmentID, recordID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM maintenance_records WHERE id = $1 AND equipment_id = $2`,
		recordID, equipmentID)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: record %q", models.ErrNotFound, recordID)
	}
	return nil
}
