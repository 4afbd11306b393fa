package models

import "time"

// Incident is a derived grouping of one issue-open event, zero or more update
// events, and at most one resolution event. Incidents are reconstructed fresh
// from the event log on every read and are never persisted.
type Incident struct {
	// Key is the id of the record that opened the incident, or its date
	// formatted as RFC3339Nano when the record carries no id.
	Key          string               `json:"key"`
	OpenEvent    *MaintenanceRecord   `json:"open_event,omitempty"`
	UpdateEvents []*MaintenanceRecord `json:"update_events"`
	CloseEvent   *MaintenanceRecord   `json:"close_event,omitempty"`

	// Timeline merges open, updates (sorted by date) and close into one
	// chronological display sequence.
	Timeline []*MaintenanceRecord `json:"timeline"`

	Resolved bool     `json:"resolved"`
	Severity Severity `json:"severity"`

	// Parsed out of the resolution notes; ResolutionNotes is the note body
	// with the Cost/Repaired-by lines stripped.
	Cost            *float64 `json:"cost,omitempty"`
	RepairedBy      string   `json:"repaired_by,omitempty"`
	ResolutionNotes string   `json:"resolution_notes,omitempty"`
}

// OpenedAt returns the incident's opening time
func (in *Incident) OpenedAt() time.Time {
	if in.OpenEvent == nil {
		return time.Time{}
	}
	return in.OpenEvent.Date
}
