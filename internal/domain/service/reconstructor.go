package service

import (
	"sort"
	"time"

	"github.com/restokit/equipcore/internal/domain/models"
)

// ReconstructIncidents turns a flat event log into discrete incidents.
//
// Records carry no incident foreign key: grouping is inferred from status
// transitions and insertion order. The input must be in insertion order
// (not necessarily chronological); the output is ordered most recently
// opened first.
//
// The single pass applies three rules per record:
//
//  1. operational -> repair opens a brand-new incident, even when another
//     incident is still unresolved (overlapping issues each get their own).
//  2. anything -> operational closes the open incident whose open event is
//     the latest (ties broken by creation order, latest wins). With no open
//     incident the resolution becomes a single-record incident of its own.
//  3. every other record attaches to the most recently created incident,
//     open or already resolved. With no incident at all it starts one.
//
// Transitions into the maintenance and offline states are undriven by this
// engine and pass through under rule 3: they neither open nor close.
func ReconstructIncidents(records []*models.MaintenanceRecord) []*models.Incident {
	byKey := make(map[string]*models.Incident)
	var keys []string // creation order

	newIncident := func(open *models.MaintenanceRecord) *models.Incident {
		key := open.ID
		if key == "" {
			key = open.Date.Format(time.RFC3339Nano)
		}
		in := &models.Incident{Key: key, OpenEvent: open}
		byKey[key] = in
		keys = append(keys, key)
		return in
	}

	for _, r := range records {
		switch {
		case opensIncident(r):
			newIncident(r)

		case closesIncident(r):
			target := latestOpenIncident(byKey, keys)
			if target == nil {
				// Orphan resolution: no prior issue to close. Synthesize a
				// single-record incident so history still shows the repair.
				target = newIncident(r)
			}
			target.CloseEvent = r

		default:
			if len(keys) == 0 {
				newIncident(r)
				continue
			}
			last := byKey[keys[len(keys)-1]]
			last.UpdateEvents = append(last.UpdateEvents, r)
		}
	}

	out := make([]*models.Incident, 0, len(keys))
	for _, key := range keys {
		in := byKey[key]
		finalize(in)
		out = append(out, in)
	}

	// Most recently opened first; stable so equal dates keep creation order.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OpenedAt().After(out[j].OpenedAt())
	})
	return out
}

// opensIncident reports whether the record is an issue-open event. Moves into
// maintenance or offline are pass-through and do not open.
func opensIncident(r *models.MaintenanceRecord) bool {
	if !r.IsStatusChange() {
		return false
	}
	return *r.PreviousStatus == models.StatusOperational && *r.NewStatus == models.StatusRepair
}

// closesIncident reports whether the record is a resolution event
func closesIncident(r *models.MaintenanceRecord) bool {
	if !r.IsStatusChange() {
		return false
	}
	return *r.PreviousStatus != models.StatusOperational && *r.NewStatus == models.StatusOperational
}

// latestOpenIncident selects, among incidents without a close event, the one
// whose open event is most recent; ties go to the latest created.
func latestOpenIncident(byKey map[string]*models.Incident, keys []string) *models.Incident {
	var best *models.Incident
	for _, key := range keys {
		in := byKey[key]
		if in.CloseEvent != nil {
			continue
		}
		// >= keeps the later-created incident on equal open dates.
		if best == nil || !in.OpenedAt().Before(best.OpenedAt()) {
			best = in
		}
	}
	return best
}

// finalize computes the derived fields of an incident: sorted updates, the
// merged display timeline, severity, and the parsed resolution fields.
func finalize(in *models.Incident) {
	sort.SliceStable(in.UpdateEvents, func(i, j int) bool {
		return in.UpdateEvents[i].Date.Before(in.UpdateEvents[j].Date)
	})

	timeline := make([]*models.MaintenanceRecord, 0, len(in.UpdateEvents)+2)
	if in.OpenEvent != nil {
		timeline = append(timeline, in.OpenEvent)
	}
	timeline = append(timeline, in.UpdateEvents...)
	if in.CloseEvent != nil && in.CloseEvent != in.OpenEvent {
		timeline = append(timeline, in.CloseEvent)
	}
	in.Timeline = timeline

	in.Resolved = in.CloseEvent != nil

	in.Severity = models.SeverityMedium
	if in.OpenEvent != nil {
		in.Severity, _ = models.ParseSeverity(in.OpenEvent.Notes)
	}

	if in.CloseEvent != nil {
		in.ResolutionNotes, in.Cost, in.RepairedBy = models.ParseResolutionNotes(in.CloseEvent.Notes)
	}
}
