package events

import "time"

const (
	LeaveProcessedTopic = "school.leave.processed.v1"
	EventLeaveProcessed = "leave.processed"
)

type LeaveProcessedEvent struct {
	EventType     string    `json:"event_type"`
	LeaveID       string    `json:"leave_id"`
	SchoolID      string    `json:"school_id"`
	ApplicantID   string    `json:"applicant_id"`
	ApplicantType string    `json:"applicant_type"`
	Status        string    `json:"status"`
	StartDate     string    `json:"start_date"`
	EndDate       string    `json:"end_date"`
	ProcessedBy   string    `json:"processed_by"`
	OccurredAt    time.Time `json:"occurred_at"`
}
