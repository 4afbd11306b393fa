package models

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// RecordType represents the type of a maintenance record
type RecordType string

const (
	RecordTypeMaintenance RecordType = "maintenance"
	RecordTypeRepair      RecordType = "repair"
	RecordTypeNote        RecordType = "note"
)

// UpdateTag is the bracketed prefix carried by mid-incident progress notes
type UpdateTag string

const (
	TagPartsOrdered    UpdateTag = "[PARTS ORDERED]"
	TagRepairScheduled UpdateTag = "[REPAIR SCHEDULED]"
	TagInProgress      UpdateTag = "[IN PROGRESS]"
	TagWaitingApproval UpdateTag = "[WAITING APPROVAL]"
	TagUpdate          UpdateTag = "[UPDATE]"
)

// NormalizeUpdateTag maps an arbitrary tag to a known one, defaulting to
// [UPDATE] for anything unrecognized (including empty).
func NormalizeUpdateTag(tag UpdateTag) UpdateTag {
	switch tag {
	case TagPartsOrdered, TagRepairScheduled, TagInProgress, TagWaitingApproval, TagUpdate:
		return tag
	default:
		return TagUpdate
	}
}

// UserRef identifies who performed an action. Supplied by the authentication
// subsystem and treated as opaque here.
type UserRef struct {
	ID          string `json:"id" bson:"id"`
	DisplayName string `json:"display_name" bson:"display_name"`
}

// MaintenanceRecord is a single immutable event in an equipment's history.
// Records are appended in insertion order and never mutated; the Date is set
// at creation and may be backfilled, so insertion order is not guaranteed to
// be chronological.
type MaintenanceRecord struct {
	ID                         string           `json:"id" bson:"_id" db:"id"`
	EquipmentID                string           `json:"equipment_id" bson:"equipment_id" db:"equipment_id"`
	Date                       time.Time        `json:"date" bson:"date" db:"date"`
	Type                       RecordType       `json:"type" bson:"type" db:"type"`
	PreviousStatus             *EquipmentStatus `json:"previous_status,omitempty" bson:"previous_status,omitempty" db:"previous_status"`
	NewStatus                  *EquipmentStatus `json:"new_status,omitempty" bson:"new_status,omitempty" db:"new_status"`
	Notes                      string           `json:"notes" bson:"notes" db:"notes"`
	PerformedBy                UserRef          `json:"performed_by" bson:"performed_by"`
	AssociatedWithCurrentIssue bool             `json:"associated_with_current_issue" bson:"associated_with_current_issue" db:"associated_with_current_issue"`
}

// IsStatusChange reports whether the record carries a status transition
func (r *MaintenanceRecord) IsStatusChange() bool {
	return r.PreviousStatus != nil && r.NewStatus != nil
}

var (
	costLineRegex       = regexp.MustCompile(`(?m)^Cost:\s*\$([0-9]+(?:\.[0-9]+)?)\s*$`)
	repairedByLineRegex = regexp.MustCompile(`(?m)^Repaired by:\s*(.+?)\s*$`)
)

// ParseResolutionNotes extracts the structured "Cost: $X" and "Repaired by: Y"
// lines from a resolution record's notes and returns the note body with those
// lines stripped. Missing fields yield a nil cost and an empty repairedBy.
func ParseResolutionNotes(notes string) (body string, cost *float64, repairedBy string) {
	if m := costLineRegex.FindStringSubmatch(notes); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			cost = &v
		}
	}
	if m := repairedByLineRegex.FindStringSubmatch(notes); m != nil {
		repairedBy = m[1]
	}

	var kept []string
	for _, line := range strings.Split(notes, "\n") {
		if costLineRegex.MatchString(line) || repairedByLineRegex.MatchString(line) {
			continue
		}
		kept = append(kept, line)
	}
	body = strings.TrimRight(strings.Join(kept, "\n"), "\n")
	return body, cost, repairedBy
}

// FormatResolutionNotes appends the optional cost and repaired-by fields to
// free-text repair notes as structured lines.
func FormatResolutionNotes(notes string, cost *float64, repairedBy string) string {
	out := strings.TrimRight(notes, "\n")
	if cost != nil {
		out += "\nCost: $" + strconv.FormatFloat(*cost, 'f', -1, 64)
	}
	if repairedBy != "" {
		out += "\nRepaired by: " + repairedBy
	}
	return out
}
