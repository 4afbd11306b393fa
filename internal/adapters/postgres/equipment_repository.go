package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/restokit/equipcore/internal/domain/models"
	"github.com/restokit/equipcore/internal/domain/ports"
)

// equipmentRow is the flat database shape of an equipment. Issues and
// cleaning schedules travel as JSONB columns.
type equipmentRow struct {
	ID                      string         `db:"id"`
	StoreID                 string         `db:"store_id"`
	Name                    string         `db:"name"`
	Category                string         `db:"category"`
	MaintenanceIntervalDays int            `db:"maintenance_interval_days"`
	Status                  string         `db:"status"`
	LastMaintenance         *time.Time     `db:"last_maintenance"`
	NextMaintenance         *time.Time     `db:"next_maintenance"`
	Issues                  types.JSONText `db:"issues"`
	CleaningSchedules       types.JSONText `db:"cleaning_schedules"`
	Version                 int64          `db:"version"`
}

func toEquipmentRow(e *models.Equipment) (*equipmentRow, error) {
	issues, err := json.Marshal(e.Issues)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal issues: %w", err)
	}
	schedules, err := json.Marshal(e.CleaningSchedules)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal cleaning schedules: %w", err)
	}
	return &equipmentRow{
		ID:                      e.ID,
		StoreID:                 e.StoreID,
		Name:                    e.Name,
		Category:                e.Category,
		MaintenanceIntervalDays: e.MaintenanceIntervalDays,
		Status:                  string(e.Status),
		LastMaintenance:         e.LastMaintenance,
		NextMaintenance:         e.NextMaintenance,
		Issues:                  types.JSONText(issues),
		CleaningSchedules:       types.JSONText(schedules),
		Version:                 e.Version,
	}, nil
}

func (row *equipmentRow) toModel() (*models.Equipment, error) {
	e := &models.Equipment{
		ID:                      row.ID,
		StoreID:                 row.StoreID,
		Name:                    row.Name,
		Category:                row.Category,
		MaintenanceIntervalDays: row.MaintenanceIntervalDays,
		Status:                  models.EquipmentStatus(row.Status),
		LastMaintenance:         row.LastMaintenance,
		NextMaintenance:         row.NextMaintenance,
		Version:                 row.Version,
	}
	if len(row.Issues) > 0 {
		if err := json.Unmarshal(row.Issues, &e.Issues); err != nil {
			return nil, fmt.Errorf("failed to unmarshal issues: %w", err)
		}
	}
	if len(row.CleaningSchedules) > 0 {
		if err := json.Unmarshal(row.CleaningSchedules, &e.CleaningSchedules); err != nil {
			return nil, fmt.Errorf("failed to unmarshal cleaning schedules: %w", err)
		}
	}
	return e, nil
}

const equipmentColumns = `id, store_id, name, category, maintenance_interval_days, status,
       last_maintenance, next_maintenance, issues, cleaning_schedules, version`

// equipmentRepository implements the EquipmentRepository interface using PostgreSQL
type equipmentRepository struct {
	db *sqlx.DB
}

// NewEquipmentRepository creates a new PostgreSQL equipment repository
func NewEquipmentRepository(db *sqlx.DB) ports.EquipmentRepository {
	return &equipmentRepository{db: db}
}

// GetByID retrieves equipment by id
func (r *equipmentRepository) GetByID(ctx context.Context, id string) (*models.Equipment, error) {
	query := `SELECT ` + equipmentColumns + ` FROM equipment WHERE id = $1`

	var row equipmentRow
	err := r.db.GetContext(ctx, &row, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: equipment %q", models.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get equipment: %w", err)
	}
	return row.toModel()
}

// Create adds a new equipment record
func (r *equipmentRepository) Create(ctx context.Context, equipment *models.Equipment) error {
	equipment.Version = 1
	row, err := toEquipmentRow(equipment)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO equipment (
			id, store_id, name, category, maintenance_interval_days, status,
			last_maintenance, next_maintenance, issues, cleaning_schedules, version
		) VALUES (
			:id, :store_id, :name, :category, :maintenance_interval_days, :status,
			:last_maintenance, :next_maintenance, :issues, :cleaning_schedules, :version
		)
	`

	if _, err := sqlx.NamedExecContext(ctx, r.db, query, row); err != nil {
		return fmt.Errorf("failed to create equipment: %w", err)
	}
	return nil
}

// Save persists a modified equipment with an optimistic version check
func (r *equipmentRepository) Save(ctx context.Context, equipment *models.Equipment) error {
	return save(ctx, r.db, equipment)
}

func save(ctx context.Context, ext sqlx.ExtContext, equipment *models.Equipment) error {
	row, err := toEquipmentRow(equipment)
	if err != nil {
		return err
	}

	query := `
		UPDATE equipment
		SET store_id = :store_id,
		    name = :name,
		    category = :category,
		    maintenance_interval_days = :maintenance_interval_days,
		    status = :status,
		    last_maintenance = :last_maintenance,
		    next_maintenance = :next_maintenance,
		    issues = :issues,
		    cleaning_schedules = :cleaning_schedules,
		    version = version + 1
		WHERE id = :id AND version = :version
	`

	result, err := sqlx.NamedExecContext(ctx, ext, query, row)
	if err != nil {
		return fmt.Errorf("failed to save equipment: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		// Distinguish a missing row from a stale version.
		var exists bool
		if err := sqlx.GetContext(ctx, ext, &exists, `SELECT EXISTS (SELECT 1 FROM equipment WHERE id = $1)`, equipment.ID); err == nil && !exists {
			return fmt.Errorf("%w: equipment %q", models.ErrNotFound, equipment.ID)
		}
		return fmt.Errorf("%w: equipment %q version %d is stale", models.ErrConflict, equipment.ID, equipment.Version)
	}

	equipment.Version++
	return nil
}

// SaveWithRecords persists the equipment and appends records in one
// transaction so a status change is never recorded without its event.
func (r *equipmentRepository) SaveWithRecords(ctx context.Context, equipment *models.Equipment, records []*models.MaintenanceRecord) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := save(ctx, tx, equipment); err != nil {
		return err
	}
	for _, rec := range records {
		if err := appendRecord(ctx, tx, rec); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Delete removes an equipment record and, via the schema, its event log
func (r *equipmentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM equipment WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete equipment: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: equipment %q", models.ErrNotFound, id)
	}
	return nil
}

// List retrieves equipment for a store with pagination
func (r *equipmentRepository) List(ctx context.Context, storeID string, offset, limit int) ([]*models.Equipment, error) {
	query := `
		SELECT ` + equipmentColumns + `
		FROM equipment
		WHERE store_id = $1
		ORDER BY name
		OFFSET $2 LIMIT $3
	`
	return r.list(ctx, query, storeID, offset, limit)
}

// ListByStatus retrieves equipment for a store filtered by status
func (r *equipmentRepository) ListByStatus(ctx context.Context, storeID string, status models.EquipmentStatus, offset, limit int) ([]*models.Equipment, error) {
	query := `
		SELECT ` + equipmentColumns + `
		FROM equipment
		WHERE store_id = $1 AND status = $4
		ORDER BY name
		OFFSET $2 LIMIT $3
	`
	return r.list(ctx, query, storeID, offset, limit, string(status))
}

func (r *equipmentRepository) list(ctx context.Context, query, storeID string, offset, limit int, extra ...interface{}) ([]*models.Equipment, error) {
	if limit <= 0 {
		limit = 100
	}
	args := append([]interface{}{storeID, offset, limit}, extra...)

	var rows []equipmentRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list equipment: %w", err)
	}

	result := make([]*models.Equipment, 0, len(rows))
	for i := range rows {
		e, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, nil
}
