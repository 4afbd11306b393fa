package service

import "github.com/restokit/equipcore/internal/domain/models"

// CanComplete reports whether a cleaning task may be closed: every required
// checklist item must appear in the submitted completions with a true flag.
// An empty or absent checklist never blocks. Evaluated client-side before
// submission and re-validated here at the point of mutation; the engine
// never trusts a caller's "complete" signal.
func CanComplete(schedule *models.CleaningSchedule, completed []models.CompletedItem) bool {
	return len(MissingRequiredItems(schedule, completed)) == 0
}

// MissingRequiredItems returns the names of required checklist items that
// lack a true completion entry, for use in validation messages.
func MissingRequiredItems(schedule *models.CleaningSchedule, completed []models.CompletedItem) []string {
	var missing []string
	for _, item := range schedule.Checklist {
		if !item.IsRequired {
			continue
		}
		done := false
		for _, c := range completed {
			if c.Name == item.Name && c.IsCompleted {
				done = true
				break
			}
		}
		if !done {
			missing = append(missing, item.Name)
		}
	}
	return missing
}
