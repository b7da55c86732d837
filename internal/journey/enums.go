package journey

import "encoding/json"

// Goal and milestone status/priority fields arrive in more than one shape:
// legacy clients send plain strings, newer partially-typed ones send
// {"value": "..."} wrappers. Each enum decodes through decodeVariant and
// always resolves to a member of its closed set — an unrecognized shape or
// unknown member falls back to the enum's declared default. A malformed
// status must never fail a save.

type GoalStatus string

const (
	GoalNotStarted GoalStatus = "not-started"
	GoalInProgress GoalStatus = "in-progress"
	GoalCompleted  GoalStatus = "completed"
	GoalCancelled  GoalStatus = "cancelled"
	GoalDeleted    GoalStatus = "deleted"
	GoalArchived   GoalStatus = "archived"
	GoalActive     GoalStatus = "active"
)

var goalStatuses = members(
	GoalNotStarted, GoalInProgress, GoalCompleted, GoalCancelled,
	GoalDeleted, GoalArchived, GoalActive,
)

func (s *GoalStatus) UnmarshalJSON(b []byte) error {
	*s = NormalizeGoalStatus(decodeVariant(b))
	return nil
}

// NormalizeGoalStatus maps any string onto the closed goal status set,
// defaulting to "active".
func NormalizeGoalStatus(raw string) GoalStatus {
	if _, ok := goalStatuses[raw]; ok {
		return GoalStatus(raw)
	}
	return GoalActive
}

type MilestoneStatus string

const (
	MilestonePending    MilestoneStatus = "pending"
	MilestoneInProgress MilestoneStatus = "in-progress"
	MilestoneCompleted  MilestoneStatus = "completed"
	MilestoneOverdue    MilestoneStatus = "overdue"
	MilestoneCancelled  MilestoneStatus = "cancelled"
	MilestoneDeleted    MilestoneStatus = "deleted"
	MilestoneArchived   MilestoneStatus = "archived"
	MilestoneActive     MilestoneStatus = "active"
)

var milestoneStatuses = members(
	MilestonePending, MilestoneInProgress, MilestoneCompleted, MilestoneOverdue,
	MilestoneCancelled, MilestoneDeleted, MilestoneArchived, MilestoneActive,
)

func (s *MilestoneStatus) UnmarshalJSON(b []byte) error {
	*s = NormalizeMilestoneStatus(decodeVariant(b))
	return nil
}

// NormalizeMilestoneStatus maps any string onto the closed milestone status
// set, defaulting to "pending".
func NormalizeMilestoneStatus(raw string) MilestoneStatus {
	if _, ok := milestoneStatuses[raw]; ok {
		return MilestoneStatus(raw)
	}
	return MilestonePending
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var priorities = members(PriorityLow, PriorityMedium, PriorityHigh)

func (p *Priority) UnmarshalJSON(b []byte) error {
	*p = NormalizePriority(decodeVariant(b))
	return nil
}

// NormalizePriority maps any string onto the closed priority set, defaulting
// to "medium".
func NormalizePriority(raw string) Priority {
	if _, ok := priorities[raw]; ok {
		return Priority(raw)
	}
	return PriorityMedium
}

type ReportType string

const (
	ReportProgress    ReportType = "progress"
	ReportPerformance ReportType = "performance"
	ReportSummary     ReportType = "summary"
)

var reportTypes = members(ReportProgress, ReportPerformance, ReportSummary)

func (t *ReportType) UnmarshalJSON(b []byte) error {
	*t = NormalizeReportType(decodeVariant(b))
	return nil
}

// NormalizeReportType maps any string onto the closed report type set,
// defaulting to "progress".
func NormalizeReportType(raw string) ReportType {
	if _, ok := reportTypes[raw]; ok {
		return ReportType(raw)
	}
	return ReportProgress
}

// decodeVariant extracts the enum string from either accepted wire shape:
// a plain JSON string, or an object carrying the string under a "value" key.
// Any other shape (or a non-string "value") yields "", which the Normalize
// functions turn into the field's default.
func decodeVariant(b []byte) string {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		return s
	}
	var wrapped struct {
		Value any `json:"value"`
	}
	if err := json.Unmarshal(b, &wrapped); err == nil {
		if s, ok := wrapped.Value.(string); ok {
			return s
		}
	}
	return ""
}

func members[T ~string](vals ...T) map[string]struct{} {
	m := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		m[string(v)] = struct{}{}
	}
	return m
}
