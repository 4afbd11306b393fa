package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/restokit/equipcore/internal/domain/models"
)

var machineNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func operationalEquipment() *models.Equipment {
	return &models.Equipment{
		ID:                      "eq-1",
		StoreID:                 "store-1",
		Name:                    "Fryer",
		MaintenanceIntervalDays: 30,
		Status:                  models.StatusOperational,
	}
}

func TestMarkBroken(t *testing.T) {
	e := operationalEquipment()

	updated, record, err := MarkBroken(e, MarkBrokenInput{
		Description: "Not heating",
		Severity:    models.SeverityHigh,
	}, machineNow)
	if err != nil {
		t.Fatalf("MarkBroken() error = %v", err)
	}

	if updated.Status != models.StatusRepair {
		t.Errorf("status = %v, want repair", updated.Status)
	}
	if len(updated.Issues) != 1 || updated.Issues[0] != "[HIGH] Not heating" {
		t.Errorf("issues = %v", updated.Issues)
	}
	if e.Status != models.StatusOperational {
		t.Error("input equipment was mutated")
	}
	if record.PreviousStatus == nil || *record.PreviousStatus != models.StatusOperational {
		t.Errorf("record previousStatus = %v", record.PreviousStatus)
	}
	if record.NewStatus == nil || *record.NewStatus != models.StatusRepair {
		t.Errorf("record newStatus = %v", record.NewStatus)
	}
	if record.Notes != "[HIGH] Not heating" {
		t.Errorf("record notes = %q", record.Notes)
	}
	if record.ID == "" {
		t.Error("record id not assigned")
	}
}

func TestMarkBrokenDefaultsToMedium(t *testing.T) {
	_, record, err := MarkBroken(operationalEquipment(), MarkBrokenInput{Description: "Odd noise"}, machineNow)
	if err != nil {
		t.Fatalf("MarkBroken() error = %v", err)
	}
	if record.Notes != "[MEDIUM] Odd noise" {
		t.Errorf("record notes = %q, want medium tag", record.Notes)
	}
}

func TestMarkBrokenValidation(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(e *models.Equipment)
		input    MarkBrokenInput
		wantKind models.ErrorKind
	}{
		{
			name:     "Empty description",
			mutate:   func(e *models.Equipment) {},
			input:    MarkBrokenInput{Description: "   "},
			wantKind: models.KindValidation,
		},
		{
			name:     "Unknown severity",
			mutate:   func(e *models.Equipment) {},
			input:    MarkBrokenInput{Description: "broken", Severity: "urgent"},
			wantKind: models.KindValidation,
		},
		{
			name:     "Already under repair",
			mutate:   func(e *models.Equipment) { e.Status = models.StatusRepair },
			input:    MarkBrokenInput{Description: "broken"},
			wantKind: models.KindInvalidTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := operationalEquipment()
			tt.mutate(e)
			_, _, err := MarkBroken(e, tt.input, machineNow)
			if err == nil {
				t.Fatal("MarkBroken() expected error")
			}
			if models.KindOf(err) != tt.wantKind {
				t.Errorf("kind = %v, want %v", models.KindOf(err), tt.wantKind)
			}
		})
	}
}

func TestResolveIssue(t *testing.T) {
	e := operationalEquipment()
	e.Status = models.StatusRepair
	e.Issues = []string{"[HIGH] Not heating"}

	cost := 50.0
	updated, record, err := ResolveIssue(e, ResolveIssueInput{
		Notes:      "Replaced motor",
		Cost:       &cost,
		RepairedBy: "Jim",
	}, machineNow)
	if err != nil {
		t.Fatalf("ResolveIssue() error = %v", err)
	}

	if updated.Status != models.StatusOperational {
		t.Errorf("status = %v, want operational", updated.Status)
	}
	if len(updated.Issues) != 0 {
		t.Errorf("issues = %v, want empty", updated.Issues)
	}
	if updated.LastMaintenance == nil || !updated.LastMaintenance.Equal(machineNow) {
		t.Errorf("lastMaintenance = %v", updated.LastMaintenance)
	}
	wantNext := machineNow.AddDate(0, 0, 30)
	if updated.NextMaintenance == nil || !updated.NextMaintenance.Equal(wantNext) {
		t.Errorf("nextMaintenance = %v, want %v", updated.NextMaintenance, wantNext)
	}
	if record.Type != models.RecordTypeRepair {
		t.Errorf("record type = %v, want repair", record.Type)
	}
	if !strings.Contains(record.Notes, "Cost: $50") || !strings.Contains(record.Notes, "Repaired by: Jim") {
		t.Errorf("record notes = %q", record.Notes)
	}
}

func TestResolveIssueValidation(t *testing.T) {
	t.Run("Missing notes", func(t *testing.T) {
		e := operationalEquipment()
		e.Status = models.StatusRepair
		_, _, err := ResolveIssue(e, ResolveIssueInput{Notes: ""}, machineNow)
		if !errors.Is(err, models.ErrValidation) {
			t.Errorf("error = %v, want validation", err)
		}
	})

	t.Run("Not under repair", func(t *testing.T) {
		_, _, err := ResolveIssue(operationalEquipment(), ResolveIssueInput{Notes: "fixed"}, machineNow)
		if !errors.Is(err, models.ErrInvalidTransition) {
			t.Errorf("error = %v, want invalid transition", err)
		}
	})
}

func TestCompleteMaintenance(t *testing.T) {
	e := operationalEquipment()

	updated, record, err := CompleteMaintenance(e, CompleteMaintenanceInput{Notes: "Filter swap"}, machineNow)
	if err != nil {
		t.Fatalf("CompleteMaintenance() error = %v", err)
	}

	if updated.Status != models.StatusOperational {
		t.Errorf("status changed to %v", updated.Status)
	}
	if record.IsStatusChange() {
		t.Error("maintenance record must carry no status fields")
	}
	if record.Type != models.RecordTypeMaintenance {
		t.Errorf("record type = %v", record.Type)
	}
	wantNext := machineNow.AddDate(0, 0, 30)
	if updated.NextMaintenance == nil || !updated.NextMaintenance.Equal(wantNext) {
		t.Errorf("nextMaintenance = %v, want %v", updated.NextMaintenance, wantNext)
	}
}

func TestAddUpdate(t *testing.T) {
	e := operationalEquipment()
	e.Status = models.StatusRepair

	record, err := AddUpdate(e, AddUpdateInput{Notes: "ordering part", Tag: models.TagInProgress}, machineNow)
	if err != nil {
		t.Fatalf("AddUpdate() error = %v", err)
	}
	if record.Notes != "[IN PROGRESS] ordering part" {
		t.Errorf("record notes = %q", record.Notes)
	}
	if !record.AssociatedWithCurrentIssue {
		t.Error("update record must be associated with the current issue")
	}
	if record.IsStatusChange() {
		t.Error("update record must carry no status fields")
	}
}

func TestAddUpdateDefaultsTag(t *testing.T) {
	e := operationalEquipment()
	e.Status = models.StatusRepair

	record, err := AddUpdate(e, AddUpdateInput{Notes: "checking"}, machineNow)
	if err != nil {
		t.Fatalf("AddUpdate() error = %v", err)
	}
	if record.Notes != "[UPDATE] checking" {
		t.Errorf("record notes = %q, want [UPDATE] prefix", record.Notes)
	}
}

func TestAddUpdateRequiresRepairStatus(t *testing.T) {
	_, err := AddUpdate(operationalEquipment(), AddUpdateInput{Notes: "hello"}, machineNow)
	if !errors.Is(err, models.ErrInvalidTransition) {
		t.Errorf("error = %v, want invalid transition", err)
	}
}
