package models

import (
	"fmt"
	"time"
)

// Frequency represents how often a cleaning task recurs
type Frequency string

const (
	FrequencyDaily     Frequency = "daily"
	FrequencyWeekly    Frequency = "weekly"
	FrequencyBiweekly  Frequency = "biweekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyBimonthly Frequency = "bimonthly"
	FrequencyQuarterly Frequency = "quarterly"
)

// FrequencyIntervalDays maps each frequency to a fixed day count. The mapping
// is calendar-naive: "monthly" is always 30 days, which drifts against real
// month boundaries. Exposed as a variable so deployments can override it.
var FrequencyIntervalDays = map[Frequency]int{
	FrequencyDaily:     1,
	FrequencyWeekly:    7,
	FrequencyBiweekly:  14,
	FrequencyMonthly:   30,
	FrequencyBimonthly: 60,
	FrequencyQuarterly: 90,
}

// FrequencyInterval returns the recurrence interval as a duration
func FrequencyInterval(f Frequency) (time.Duration, error) {
	days, ok := FrequencyIntervalDays[f]
	if !ok {
		return 0, fmt.Errorf("%w: unknown frequency %q", ErrValidation, f)
	}
	return time.Duration(days) * 24 * time.Hour, nil
}

// ValidateFrequency checks if the frequency is one of the known variants
func ValidateFrequency(f Frequency) error {
	_, err := FrequencyInterval(f)
	return err
}

// ChecklistItem is a single step of a cleaning schedule's checklist
type ChecklistItem struct {
	Name       string `json:"name" bson:"name"`
	IsRequired bool   `json:"is_required" bson:"is_required"`
}

// CompletedItem records whether a checklist item was ticked in a submission
type CompletedItem struct {
	Name        string `json:"name" bson:"name"`
	IsCompleted bool   `json:"is_completed" bson:"is_completed"`
}

// CleaningCompletion is one audit entry in a schedule's completion history
type CleaningCompletion struct {
	ID                string          `json:"id" bson:"id"`
	Date              time.Time       `json:"date" bson:"date"`
	PerformedBy       UserRef         `json:"performed_by" bson:"performed_by"`
	Notes             string          `json:"notes" bson:"notes"`
	CompletedItems    []CompletedItem `json:"completed_items" bson:"completed_items"`
	IsEarlyCompletion bool            `json:"is_early_completion" bson:"is_early_completion"`
}

// CleaningSchedule is a recurring cleaning task owned by one piece of
// equipment. Name is the natural key, unique per equipment.
type CleaningSchedule struct {
	Name              string               `json:"name" bson:"name"`
	Frequency         Frequency            `json:"frequency" bson:"frequency"`
	Description       string               `json:"description" bson:"description"`
	Checklist         []ChecklistItem      `json:"checklist" bson:"checklist"`
	NextDue           time.Time            `json:"next_due" bson:"next_due"`
	CompletionHistory []CleaningCompletion `json:"completion_history" bson:"completion_history"`
}

// Clone returns a deep copy of the schedule
func (s CleaningSchedule) Clone() CleaningSchedule {
	c := s
	c.Checklist = append([]ChecklistItem(nil), s.Checklist...)
	c.CompletionHistory = make([]CleaningCompletion, len(s.CompletionHistory))
	for i, h := range s.CompletionHistory {
		h.CompletedItems = append([]CompletedItem(nil), h.CompletedItems...)
		c.CompletionHistory[i] = h
	}
	return c
}

// Validate checks the schedule's fields before it is attached to equipment
func (s *CleaningSchedule) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: schedule name is required", ErrValidation)
	}
	if err := ValidateFrequency(s.Frequency); err != nil {
		return err
	}
	for _, item := range s.Checklist {
		if item.Name == "" {
			return fmt.Errorf("%w: checklist item name is required", ErrValidation)
		}
	}
	return nil
}
