package service

import (
	"errors"
	"testing"
	"time"

	"github.com/restokit/equipcore/internal/domain/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestComputeNextDue(t *testing.T) {
	tests := []struct {
		name       string
		frequency  models.Frequency
		nextDue    time.Time
		completion time.Time
		isEarly    bool
		want       time.Time
	}{
		{
			name:       "On-time weekly anchors on the met due date",
			frequency:  models.FrequencyWeekly,
			nextDue:    day(2024, 1, 8),
			completion: day(2024, 1, 8),
			want:       day(2024, 1, 15),
		},
		{
			name:       "Early weekly resets the anchor to the completion date",
			frequency:  models.FrequencyWeekly,
			nextDue:    day(2024, 1, 8),
			completion: day(2024, 1, 5),
			isEarly:    true,
			want:       day(2024, 1, 12),
		},
		{
			name:       "Late on-time completion adds one interval, no catch-up",
			frequency:  models.FrequencyWeekly,
			nextDue:    day(2024, 1, 8),
			completion: day(2024, 3, 1), // many cycles overdue
			want:       day(2024, 1, 15),
		},
		{
			name:       "Daily",
			frequency:  models.FrequencyDaily,
			nextDue:    day(2024, 1, 8),
			completion: day(2024, 1, 8),
			want:       day(2024, 1, 9),
		},
		{
			name:       "Monthly is a fixed 30 days",
			frequency:  models.FrequencyMonthly,
			nextDue:    day(2024, 1, 31),
			completion: day(2024, 1, 31),
			want:       day(2024, 3, 1), // calendar drift is accepted behavior
		},
		{
			name:       "Quarterly early",
			frequency:  models.FrequencyQuarterly,
			nextDue:    day(2024, 4, 1),
			completion: day(2024, 3, 15),
			isEarly:    true,
			want:       day(2024, 6, 13),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schedule := &models.CleaningSchedule{
				Name:      "test",
				Frequency: tt.frequency,
				NextDue:   tt.nextDue,
			}
			got, err := ComputeNextDue(schedule, tt.completion, tt.isEarly)
			if err != nil {
				t.Fatalf("ComputeNextDue() error = %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ComputeNextDue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestComputeNextDueUnknownFrequency(t *testing.T) {
	schedule := &models.CleaningSchedule{Name: "test", Frequency: "sometimes"}
	_, err := ComputeNextDue(schedule, day(2024, 1, 8), false)
	if !errors.Is(err, models.ErrValidation) {
		t.Errorf("error = %v, want validation", err)
	}
}
