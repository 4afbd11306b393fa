package models

import (
	"testing"
)

func TestParseResolutionNotes(t *testing.T) {
	tests := []struct {
		name           string
		notes          string
		wantBody       string
		wantCost       *float64
		wantRepairedBy string
	}{
		{
			name:           "Full resolution",
			notes:          "Replaced motor\nCost: $50\nRepaired by: Jim",
			wantBody:       "Replaced motor",
			wantCost:       f64(50),
			wantRepairedBy: "Jim",
		},
		{
			name:     "Notes only",
			notes:    "Tightened belt",
			wantBody: "Tightened belt",
		},
		{
			name:     "Decimal cost",
			notes:    "New seal\nCost: $12.50",
			wantBody: "New seal",
			wantCost: f64(12.5),
		},
		{
			name:           "Repaired by with spaces",
			notes:          "Recalibrated\nRepaired by: ACME Service Co",
			wantBody:       "Recalibrated",
			wantRepairedBy: "ACME Service Co",
		},
		{
			name:     "Cost mentioned mid-sentence is not parsed",
			notes:    "Parts will Cost: $100 next week",
			wantBody: "Parts will Cost: $100 next week",
		},
		{
			name:           "Fields before body lines",
			notes:          "Cost: $7\nRepaired by: Ana\nSwapped fuse\nTested OK",
			wantBody:       "Swapped fuse\nTested OK",
			wantCost:       f64(7),
			wantRepairedBy: "Ana",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, cost, repairedBy := ParseResolutionNotes(tt.notes)
			if body != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
			if (cost == nil) != (tt.wantCost == nil) {
				t.Fatalf("cost = %v, want %v", cost, tt.wantCost)
			}
			if cost != nil && *cost != *tt.wantCost {
				t.Errorf("cost = %v, want %v", *cost, *tt.wantCost)
			}
			if repairedBy != tt.wantRepairedBy {
				t.Errorf("repairedBy = %q, want %q", repairedBy, tt.wantRepairedBy)
			}
		})
	}
}

func TestFormatResolutionNotesRoundTrip(t *testing.T) {
	formatted := FormatResolutionNotes("Replaced motor", f64(50), "Jim")
	body, cost, repairedBy := ParseResolutionNotes(formatted)
	if body != "Replaced motor" {
		t.Errorf("body = %q", body)
	}
	if cost == nil || *cost != 50 {
		t.Errorf("cost = %v, want 50", cost)
	}
	if repairedBy != "Jim" {
		t.Errorf("repairedBy = %q, want Jim", repairedBy)
	}
}

func TestNormalizeUpdateTag(t *testing.T) {
	tests := []struct {
		name string
		tag  UpdateTag
		want UpdateTag
	}{
		{name: "Known tag passes through", tag: TagPartsOrdered, want: TagPartsOrdered},
		{name: "Empty defaults", tag: "", want: TagUpdate},
		{name: "Unknown defaults", tag: "[SHRUG]", want: TagUpdate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeUpdateTag(tt.tag); got != tt.want {
				t.Errorf("NormalizeUpdateTag() = %v, want %v", got, tt.want)
			}
		})
	}
}

func f64(v float64) *float64 { return &v }
