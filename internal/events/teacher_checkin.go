package events

import "time"

const TeacherCheckInTopic = "school.teacher.checkin.v1"

const (
	EventTeacherCheckedIn  = "teacher.checked_in"
	EventTeacherCheckedOut = "teacher.checked_out"
)

type TeacherCheckInEvent struct {
	EventType      string    `json:"event_type"`
	SchoolID       string    `json:"school_id"`
	TeacherID      string    `json:"teacher_id"`
	Date           string    `json:"date"`
	Status         string    `json:"status"`
	DistanceMeters *float64  `json:"distance_meters,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}
