package service

import (
	"github.com/restokit/equipcore/internal/domain/models"
	"time"
)

// ComputeNextDue computes the next due date of a recurring cleaning task.
//
// An early completion resets the recurrence anchor to the actual completion
// moment, pulling the whole future cadence forward. An on-time completion
// anchors on the due date that was just met, so variable completion times
// never drift the schedule. No catch-up is applied when the previous due
// date is far in the past: exactly one interval is added.
func ComputeNextDue(schedule *models.CleaningSchedule, completionDate time.Time, isEarly bool) (time.Time, error) {
	interval, err := models.FrequencyInterval(schedule.Frequency)
	if err != nil {
		return time.Time{}, err
	}
	if isEarly {
		return completionDate.Add(interval), nil
	}
	return schedule.NextDue.Add(interval), nil
}
