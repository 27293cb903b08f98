package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data, e.g. a [DecisionResult]
}

// Operation phase enumeration
type Phase int

const (
	FetchPending Phase = iota
	ReviewHolidays
	WriteReport
	Done
)

func (p Phase) String() string {
	switch p {
	case FetchPending:
		return "fetch_pending"
	case ReviewHolidays:
		return "review_holidays"
	case WriteReport:
		return "write_report"
	case Done:
		return "done"
	default:
		return ""
	}
}

func fetchPendingUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPending,
		Step:    0,
		Total:   1,
		Message: "Fetching pending holiday requests...",
	}
}

func foundPendingUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPending,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d pending requests", count),
	}
}

func reviewStartedUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ReviewHolidays,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Reviewing %d holiday requests...", total),
	}
}

func decisionUpdate(step, total int, res DecisionResult) ProgressUpdate {
	msg := fmt.Sprintf("[%d/%d] ✓ #%d %s", step, total, res.HolidayID, res.Status)
	if !res.Success {
		msg = fmt.Sprintf("[%d/%d] ✗ #%d %s: %v", step, total, res.HolidayID, res.Status, res.Error)
	}
	return ProgressUpdate{
		Phase:   ReviewHolidays,
		Step:    step,
		Total:   total,
		Message: msg,
		Data:    res,
	}
}

func reportUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteReport,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Report written to %s", path),
	}
}

func doneUpdate(result *ReviewResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Done,
		Step:    result.Total,
		Total:   result.Total,
		Message: fmt.Sprintf("Done: %d applied, %d failed, %d skipped", result.Succeeded, result.Failed, result.Skipped),
		Data:    result,
	}
}
