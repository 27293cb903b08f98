package models

import "time"

// ReviewEntry records one holiday status change attempted from this client.
type ReviewEntry struct {
	ID        string `json:"id"`
	HolidayID int64  `json:"holidayId"`
	Status    Status `json:"status"`
	// Error is the failure message, empty when the server accepted the change.
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Succeeded reports whether the change was applied.
func (r ReviewEntry) Succeeded() bool { return r.Error == "" }
