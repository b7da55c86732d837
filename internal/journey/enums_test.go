package journey_test

import (
	"encoding/json"
	"errors"
	"testing"

	"journeyd/internal/journey"
)

func TestGoalStatus_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  journey.GoalStatus
	}{
		{name: "plain string", input: `"completed"`, want: journey.GoalCompleted},
		{name: "wrapped value", input: `{"value":"in-progress"}`, want: journey.GoalInProgress},
		{name: "unknown member defaults", input: `"bogus"`, want: journey.GoalActive},
		{name: "non-string value defaults", input: `{"value":7}`, want: journey.GoalActive},
		{name: "number defaults", input: `3`, want: journey.GoalActive},
		{name: "null defaults", input: `null`, want: journey.GoalActive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s journey.GoalStatus
			if err := json.Unmarshal([]byte(tt.input), &s); err != nil {
				t.Fatalf("Unmarshal(%s) error = %v", tt.input, err)
			}
			if s != tt.want {
				t.Errorf("Unmarshal(%s) = %q, want %q", tt.input, s, tt.want)
			}
		})
	}
}

func TestMilestoneStatus_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  journey.MilestoneStatus
	}{
		{name: "plain string", input: `"overdue"`, want: journey.MilestoneOverdue},
		{name: "wrapped value", input: `{"value":"completed"}`, want: journey.MilestoneCompleted},
		{name: "unknown member defaults", input: `"someday"`, want: journey.MilestonePending},
		{name: "empty object defaults", input: `{}`, want: journey.MilestonePending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s journey.MilestoneStatus
			if err := json.Unmarshal([]byte(tt.input), &s); err != nil {
				t.Fatalf("Unmarshal(%s) error = %v", tt.input, err)
			}
			if s != tt.want {
				t.Errorf("Unmarshal(%s) = %q, want %q", tt.input, s, tt.want)
			}
		})
	}
}

func TestPriority_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  journey.Priority
	}{
		{name: "plain string", input: `"high"`, want: journey.PriorityHigh},
		{name: "wrapped value", input: `{"value":"low"}`, want: journey.PriorityLow},
		{name: "unknown member defaults", input: `"urgent"`, want: journey.PriorityMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p journey.Priority
			if err := json.Unmarshal([]byte(tt.input), &p); err != nil {
				t.Fatalf("Unmarshal(%s) error = %v", tt.input, err)
			}
			if p != tt.want {
				t.Errorf("Unmarshal(%s) = %q, want %q", tt.input, p, tt.want)
			}
		})
	}
}

func TestReportType_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  journey.ReportType
	}{
		{name: "plain string", input: `"summary"`, want: journey.ReportSummary},
		{name: "wrapped value", input: `{"value":"performance"}`, want: journey.ReportPerformance},
		{name: "unknown member defaults", input: `"weekly"`, want: journey.ReportProgress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rt journey.ReportType
			if err := json.Unmarshal([]byte(tt.input), &rt); err != nil {
				t.Fatalf("Unmarshal(%s) error = %v", tt.input, err)
			}
			if rt != tt.want {
				t.Errorf("Unmarshal(%s) = %q, want %q", tt.input, rt, tt.want)
			}
		})
	}
}

func TestParseID(t *testing.T) {
	t.Run("canonicalizes to lowercase", func(t *testing.T) {
		got, err := journey.ParseID("A0EEBC99-9C0B-4EF8-BB6D-6BB9BD380A11")
		if err != nil {
			t.Fatalf("ParseID() error = %v", err)
		}
		if got != "a0eebc99-9c0b-4ef8-bb6d-6bb9bd380a11" {
			t.Errorf("ParseID() = %q", got)
		}
	})

	t.Run("rejects malformed id", func(t *testing.T) {
		_, err := journey.ParseID("not-a-uuid")
		if err == nil {
			t.Fatal("ParseID() expected error")
		}
		var identityErr *journey.IdentityError
		if !errors.As(err, &identityErr) {
			t.Errorf("ParseID() error = %T, want *IdentityError", err)
		}
	})
}
