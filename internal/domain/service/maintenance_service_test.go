package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restokit/equipcore/internal/adapters/memory"
	"github.com/restokit/equipcore/internal/domain/models"
	"github.com/restokit/equipcore/internal/domain/ports"
)

type capturingNotifier struct {
	mu     sync.Mutex
	broken []string
	fail   bool
}

func (n *capturingNotifier) EquipmentBroken(_ context.Context, e *models.Equipment, _ *models.MaintenanceRecord) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.broken = append(n.broken, e.ID)
	if n.fail {
		return errors.New("smtp down")
	}
	return nil
}

type serviceFixture struct {
	svc      *maintenanceService
	records  *memory.InMemoryRecordRepository
	notifier *capturingNotifier
	clock    *time.Time
}

func newFixture(t *testing.T) *serviceFixture {
	t.Helper()
	records := memory.NewInMemoryRecordRepository()
	equip := memory.NewInMemoryEquipmentRepository(records)
	notifier := &capturingNotifier{}

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	f := &serviceFixture{records: records, notifier: notifier, clock: &now}

	svc := NewMaintenanceService(equip, records, nil, notifier, models.NewCatalog(nil)).(*maintenanceService)
	svc.now = func() time.Time { return *f.clock }
	f.svc = svc
	return f
}

func (f *serviceFixture) advance(d time.Duration) {
	*f.clock = f.clock.Add(d)
}

func (f *serviceFixture) register(t *testing.T, name string) *models.Equipment {
	t.Helper()
	e, err := f.svc.RegisterEquipment(context.Background(), &ports.RegisterEquipmentRequest{
		StoreID:     "store-1",
		CatalogName: name,
	})
	require.NoError(t, err)
	return e
}

func TestFullIncidentLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := f.register(t, "Fryer")

	equipment, _, err := f.svc.MarkBroken(ctx, &ports.MarkBrokenRequest{
		EquipmentID: e.ID,
		Description: "Not working",
		Severity:    models.SeverityHigh,
		PerformedBy: models.UserRef{ID: "u1", DisplayName: "Dana"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusRepair, equipment.Status)
	require.Len(t, equipment.Issues, 1)
	assert.Equal(t, "[HIGH] Not working", equipment.Issues[0])

	f.advance(time.Hour)
	_, err = f.svc.AddUpdate(ctx, &ports.AddUpdateRequest{
		EquipmentID: e.ID,
		Notes:       "ordering part",
		Tag:         models.TagInProgress,
	})
	require.NoError(t, err)

	f.advance(time.Hour)
	cost := 50.0
	equipment, _, err = f.svc.ResolveIssue(ctx, &ports.ResolveIssueRequest{
		EquipmentID: e.ID,
		Notes:       "Replaced motor",
		Cost:        &cost,
		RepairedBy:  "Jim",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusOperational, equipment.Status)
	assert.Empty(t, equipment.Issues)

	incidents, err := f.svc.GetIncidents(ctx, e.ID)
	require.NoError(t, err)
	require.Len(t, incidents, 1)

	in := incidents[0]
	assert.True(t, in.Resolved)
	assert.Len(t, in.UpdateEvents, 1)
	assert.Equal(t, "[IN PROGRESS] ordering part", in.UpdateEvents[0].Notes)
	assert.Equal(t, models.SeverityHigh, in.Severity)
	require.NotNil(t, in.Cost)
	assert.Equal(t, 50.0, *in.Cost)
	assert.Equal(t, "Jim", in.RepairedBy)
	assert.Equal(t, "Replaced motor", in.ResolutionNotes)
}

func TestMarkBrokenNotifies(t *testing.T) {
	f := newFixture(t)
	e := f.register(t, "Grill")

	_, _, err := f.svc.MarkBroken(context.Background(), &ports.MarkBrokenRequest{
		EquipmentID: e.ID,
		Description: "flame out",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{e.ID}, f.notifier.broken)
}

func TestMarkBrokenNotifierFailureDoesNotRollBack(t *testing.T) {
	f := newFixture(t)
	f.notifier.fail = true
	e := f.register(t, "Grill")

	equipment, _, err := f.svc.MarkBroken(context.Background(), &ports.MarkBrokenRequest{
		EquipmentID: e.ID,
		Description: "flame out",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusRepair, equipment.Status)

	stored, err := f.svc.GetEquipment(context.Background(), e.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRepair, stored.Status)
}

func TestResolveWithoutOpenIssue(t *testing.T) {
	f := newFixture(t)
	e := f.register(t, "Oven")

	_, _, err := f.svc.ResolveIssue(context.Background(), &ports.ResolveIssueRequest{
		EquipmentID: e.ID,
		Notes:       "nothing was wrong",
	})
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestMarkBrokenUnknownEquipment(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.svc.MarkBroken(context.Background(), &ports.MarkBrokenRequest{
		EquipmentID: "missing",
		Description: "broken",
	})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestRegisterEquipmentFromCatalog(t *testing.T) {
	f := newFixture(t)

	e := f.register(t, "Ice Machine")
	assert.Equal(t, "refrigeration", e.Category)
	assert.Equal(t, 30, e.MaintenanceIntervalDays)
	assert.Equal(t, models.StatusOperational, e.Status)

	_, err := f.svc.RegisterEquipment(context.Background(), &ports.RegisterEquipmentRequest{
		StoreID:     "store-1",
		CatalogName: "Flux Capacitor",
	})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCleaningScheduleLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := f.register(t, "Fryer")

	due := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	schedule := models.CleaningSchedule{
		Name:      "Weekly boil-out",
		Frequency: models.FrequencyWeekly,
		NextDue:   due,
		Checklist: []models.ChecklistItem{
			{Name: "Drain oil", IsRequired: true},
			{Name: "Wipe exterior", IsRequired: false},
		},
	}

	equipment, err := f.svc.AddCleaningSchedule(ctx, e.ID, schedule)
	require.NoError(t, err)
	require.Len(t, equipment.CleaningSchedules, 1)

	// Duplicate name is rejected.
	_, err = f.svc.AddCleaningSchedule(ctx, e.ID, schedule)
	assert.ErrorIs(t, err, models.ErrValidation)

	// Gate: required item missing.
	_, err = f.svc.CompleteCleaningSchedule(ctx, &ports.CompleteCleaningRequest{
		EquipmentID:    e.ID,
		ScheduleName:   "Weekly boil-out",
		CompletionDate: due,
		CompletedItems: []models.CompletedItem{{Name: "Wipe exterior", IsCompleted: true}},
	})
	assert.ErrorIs(t, err, models.ErrValidation)

	// On-time completion advances from the met due date.
	updated, err := f.svc.CompleteCleaningSchedule(ctx, &ports.CompleteCleaningRequest{
		EquipmentID:    e.ID,
		ScheduleName:   "Weekly boil-out",
		CompletionDate: due,
		CompletedItems: []models.CompletedItem{{Name: "Drain oil", IsCompleted: true}},
	})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), updated.NextDue)
	require.Len(t, updated.CompletionHistory, 1)
	assert.False(t, updated.CompletionHistory[0].IsEarlyCompletion)

	// Early completion resets the anchor to the completion date.
	early := time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC)
	updated, err = f.svc.CompleteCleaningSchedule(ctx, &ports.CompleteCleaningRequest{
		EquipmentID:    e.ID,
		ScheduleName:   "Weekly boil-out",
		CompletionDate: early,
		IsEarly:        true,
		CompletedItems: []models.CompletedItem{{Name: "Drain oil", IsCompleted: true}},
	})
	require.NoError(t, err)
	assert.Equal(t, early.AddDate(0, 0, 7), updated.NextDue)
	require.Len(t, updated.CompletionHistory, 2)
	assert.True(t, updated.CompletionHistory[1].IsEarlyCompletion)
}

func TestUpdateCleaningSchedulePreservesHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := f.register(t, "Fryer")

	_, err := f.svc.AddCleaningSchedule(ctx, e.ID, models.CleaningSchedule{
		Name:      "Boil-out",
		Frequency: models.FrequencyWeekly,
		NextDue:   time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	_, err = f.svc.CompleteCleaningSchedule(ctx, &ports.CompleteCleaningRequest{
		EquipmentID:  e.ID,
		ScheduleName: "Boil-out",
	})
	require.NoError(t, err)

	equipment, err := f.svc.UpdateCleaningSchedule(ctx, e.ID, "Boil-out", models.CleaningSchedule{
		Name:        "Boil-out",
		Frequency:   models.FrequencyBiweekly,
		Description: "every other week now",
	})
	require.NoError(t, err)

	updated, ok := equipment.ScheduleByName("Boil-out")
	require.True(t, ok)
	assert.Equal(t, models.FrequencyBiweekly, updated.Frequency)
	assert.Len(t, updated.CompletionHistory, 1)
	assert.False(t, updated.NextDue.IsZero())
}

func TestDeleteCleaningSchedule(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := f.register(t, "Fryer")

	_, err := f.svc.AddCleaningSchedule(ctx, e.ID, models.CleaningSchedule{
		Name:      "Boil-out",
		Frequency: models.FrequencyWeekly,
	})
	require.NoError(t, err)

	equipment, err := f.svc.DeleteCleaningSchedule(ctx, e.ID, "Boil-out")
	require.NoError(t, err)
	assert.Empty(t, equipment.CleaningSchedules)

	_, err = f.svc.DeleteCleaningSchedule(ctx, e.ID, "Boil-out")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDeleteRecordLeavesReconstructableLog(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := f.register(t, "Fryer")

	_, _, err := f.svc.MarkBroken(ctx, &ports.MarkBrokenRequest{EquipmentID: e.ID, Description: "broken"})
	require.NoError(t, err)

	f.advance(time.Hour)
	update, err := f.svc.AddUpdate(ctx, &ports.AddUpdateRequest{EquipmentID: e.ID, Notes: "waiting on vendor"})
	require.NoError(t, err)

	f.advance(time.Hour)
	_, _, err = f.svc.ResolveIssue(ctx, &ports.ResolveIssueRequest{EquipmentID: e.ID, Notes: "fixed"})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteRecord(ctx, e.ID, update.ID))

	incidents, err := f.svc.GetIncidents(ctx, e.ID)
	require.NoError(t, err)
	require.Len(t, incidents, 1)
	assert.True(t, incidents[0].Resolved)
	assert.Empty(t, incidents[0].UpdateEvents)
}

func TestCompleteMaintenanceAdvancesDates(t *testing.T) {
	f := newFixture(t)
	e := f.register(t, "Fryer") // 30-day interval

	equipment, record, err := f.svc.CompleteMaintenance(context.Background(), &ports.CompleteMaintenanceRequest{
		EquipmentID: e.ID,
		Notes:       "quarterly service",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusOperational, equipment.Status)
	assert.False(t, record.IsStatusChange())
	require.NotNil(t, equipment.NextMaintenance)
	assert.Equal(t, f.clock.AddDate(0, 0, 30), *equipment.NextMaintenance)
}
