package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restokit/equipcore/internal/domain/models"
)

func setupTestDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(mockDB, "sqlmock")
	return sqlxDB, mock
}

func equipmentRows(id, storeID string, status models.EquipmentStatus, version int64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "store_id", "name", "category", "maintenance_interval_days", "status",
		"last_maintenance", "next_maintenance", "issues", "cleaning_schedules", "version",
	}).AddRow(
		id, storeID, "Walk-in Cooler", "refrigeration", 90, string(status),
		nil, nil, []byte(`["[HIGH] Compressor rattling"]`), []byte(`[]`), version,
	)
}

func TestGetByID_Success(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()

	repo := NewEquipmentRepository(db)
	ctx := context.Background()

	mock.ExpectQuery("SELECT (.+) FROM equipment WHERE id = (.+)").
		WithArgs("eq-1").
		WillReturnRows(equipmentRows("eq-1", "s1", models.StatusRepair, 3))

	result, err := repo.GetByID(ctx, "eq-1")

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "eq-1", result.ID)
	assert.Equal(t, models.StatusRepair, result.Status)
	assert.Equal(t, int64(3), result.Version)
	assert.Equal(t, []string{"[HIGH] Compressor rattling"}, result.Issues)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_NotFound(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()

	repo := NewEquipmentRepository(db)
	ctx := context.Background()

	mock.ExpectQuery("SELECT (.+) FROM equipment WHERE id = (.+)").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	result, err := repo.GetByID(ctx, "missing")

	assert.Nil(t, result)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSave_VersionConflict(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()

	repo := NewEquipmentRepository(db)
	ctx := context.Background()

	// The version-guarded UPDATE matches nothing, but the row exists.
	mock.ExpectExec("UPDATE equipment").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("eq-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	equipment := &models.Equipment{ID: "eq-1", StoreID: "s1", Status: models.StatusRepair, Version: 2}
	err := repo.Save(ctx, equipment)

	assert.ErrorIs(t, err, models.ErrConflict)
	assert.Equal(t, int64(2), equipment.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSave_IncrementsVersion(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()

	repo := NewEquipmentRepository(db)
	ctx := context.Background()

	mock.ExpectExec("UPDATE equipment").
		WillReturnResult(sqlmock.NewResult(0, 1))

	equipment := &models.Equipment{ID: "eq-1", StoreID: "s1", Status: models.StatusOperational, Version: 2}
	err := repo.Save(ctx, equipment)

	require.NoError(t, err)
	assert.Equal(t, int64(3), equipment.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveWithRecords_RollsBackOnConflict(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()

	repo := NewEquipmentRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE equipment").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("eq-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	equipment := &models.Equipment{ID: "eq-1", StoreID: "s1", Status: models.StatusRepair, Version: 1}
	rec := &models.MaintenanceRecord{ID: "r1", EquipmentID: "eq-1", Date: time.Now(), Type: models.RecordTypeNote}

	err := repo.SaveWithRecords(ctx, equipment, []*models.MaintenanceRecord{rec})

	assert.ErrorIs(t, err, models.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveWithRecords_CommitsEquipmentAndLog(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()

	repo := NewEquipmentRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE equipment").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO maintenance_records").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	equipment := &models.Equipment{ID: "eq-1", StoreID: "s1", Status: models.StatusRepair, Version: 1}
	rec := &models.MaintenanceRecord{ID: "r1", EquipmentID: "eq-1", Date: time.Now(), Type: models.RecordTypeNote}

	err := repo.SaveWithRecords(ctx, equipment, []*models.MaintenanceRecord{rec})

	require.NoError(t, err)
	assert.Equal(t, int64(2), equipment.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordList_InsertionOrder(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()

	repo := NewRecordRepository(db)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "equipment_id", "date", "type", "previous_status", "new_status",
		"notes", "performed_by", "associated_with_current_issue",
	}).
		AddRow("r2", "eq-1", base.Add(time.Hour), "note", "operational", "repair", "[HIGH] Broken", []byte(`{"id":"u1"}`), false).
		AddRow("r1", "eq-1", base, "note", nil, nil, "backfilled note", []byte(`{}`), false)

	mock.ExpectQuery("SELECT (.+) FROM maintenance_records WHERE equipment_id = (.+) ORDER BY seq").
		WithArgs("eq-1").
		WillReturnRows(rows)

	records, err := repo.ListByEquipment(ctx, "eq-1")

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "r2", records[0].ID)
	assert.Equal(t, "r1", records[1].ID)
	require.NotNil(t, records[0].PreviousStatus)
	assert.Equal(t, models.StatusOperational, *records[0].PreviousStatus)
	assert.Nil(t, records[1].PreviousStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteRecord_NotFound(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()

	repo := NewRecordRepository(db)
	ctx := context.Background()

	mock.ExpectExec("DELETE FROM maintenance_records").
		WithArgs("missing", "eq-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(ctx, "eq-1", "missing")

	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
