package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// EquipmentStatus represents the operational status of a piece of equipment
type EquipmentStatus string

const (
	StatusOperational EquipmentStatus = "operational"
	StatusMaintenance EquipmentStatus = "maintenance" // reachable only via direct writes
	StatusRepair      EquipmentStatus = "repair"
	StatusOffline     EquipmentStatus = "offline" // reachable only via direct writes
)

// Severity represents the priority of a reported issue
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Equipment represents a piece of restaurant equipment
type Equipment struct {
	ID                      string             `json:"id" bson:"_id" db:"id"`
	StoreID                 string             `json:"store_id" bson:"store_id" db:"store_id"`
	Name                    string             `json:"name" bson:"name" db:"name"`
	Category                string             `json:"category" bson:"category" db:"category"`
	MaintenanceIntervalDays int                `json:"maintenance_interval_days" bson:"maintenance_interval_days" db:"maintenance_interval_days"`
	Status                  EquipmentStatus    `json:"status" bson:"status" db:"status"`
	LastMaintenance         *time.Time         `json:"last_maintenance,omitempty" bson:"last_maintenance,omitempty" db:"last_maintenance"`
	NextMaintenance         *time.Time         `json:"next_maintenance,omitempty" bson:"next_maintenance,omitempty" db:"next_maintenance"`
	Issues                  []string           `json:"issues" bson:"issues"`
	CleaningSchedules       []CleaningSchedule `json:"cleaning_schedules" bson:"cleaning_schedules"`
	Version                 int64              `json:"version" bson:"version" db:"version"`
}

// Clone returns a deep copy. Transition functions operate on copies so a
// failed save never leaves a caller holding half-mutated state.
func (e *Equipment) Clone() *Equipment {
	c := *e
	if e.LastMaintenance != nil {
		t := *e.LastMaintenance
		c.LastMaintenance = &t
	}
	if e.NextMaintenance != nil {
		t := *e.NextMaintenance
		c.NextMaintenance = &t
	}
	c.Issues = append([]string(nil), e.Issues...)
	c.CleaningSchedules = make([]CleaningSchedule, len(e.CleaningSchedules))
	for i := range e.CleaningSchedules {
		c.CleaningSchedules[i] = e.CleaningSchedules[i].Clone()
	}
	return &c
}

// ScheduleByName finds a cleaning schedule by its natural key. The returned
// pointer aliases the equipment's slice so edits through it are visible.
func (e *Equipment) ScheduleByName(name string) (*CleaningSchedule, bool) {
	for i := range e.CleaningSchedules {
		if e.CleaningSchedules[i].Name == name {
			return &e.CleaningSchedules[i], true
		}
	}
	return nil, false
}

var severityTagRegex = regexp.MustCompile(`^\[(LOW|MEDIUM|HIGH)\]\s*`)

// FormatIssue renders an issue as a severity-tagged string, e.g.
// "[HIGH] Compressor not starting".
func FormatIssue(severity Severity, description string) string {
	return fmt.Sprintf("[%s] %s", strings.ToUpper(string(severity)), description)
}

// ParseSeverity extracts the severity tag from an issue string and returns
// the severity together with the untagged description. Untagged strings
// default to medium.
func ParseSeverity(issue string) (Severity, string) {
	m := severityTagRegex.FindStringSubmatch(issue)
	if m == nil {
		return SeverityMedium, issue
	}
	return Severity(strings.ToLower(m[1])), issue[len(m[0]):]
}

// ValidateStatus checks if the status is one of the known variants
func ValidateStatus(status EquipmentStatus) error {
	switch status {
	case StatusOperational, StatusMaintenance, StatusRepair, StatusOffline:
		return nil
	default:
		return fmt.Errorf("%w: unknown equipment status %q", ErrValidation, status)
	}
}

// ValidateSeverity checks if the severity is one of the known variants
func ValidateSeverity(severity Severity) error {
	switch severity {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return nil
	default:
		return fmt.Errorf("%w: unknown severity %q", ErrValidation, severity)
	}
}
