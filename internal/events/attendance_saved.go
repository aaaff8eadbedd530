package events

import "time"

const AttendanceSavedTopic = "school.attendance.saved.v1"

type AttendanceSavedEvent struct {
	EventType  string    `json:"event_type"`
	SchoolID   string    `json:"school_id"`
	ClassID    string    `json:"class_id"`
	SectionID  *string   `json:"section_id,omitempty"`
	Date       string    `json:"date"`
	Period     int       `json:"period"`
	MarkedBy   string    `json:"marked_by"`
	Total      int       `json:"total"`
	Present    int       `json:"present"`
	Absent     int       `json:"absent"`
	Late       int       `json:"late"`
	OccurredAt time.Time `json:"occurred_at"`
}
