package attendance

import (
	"time"

	"github.com/google/uuid"
)

// StudentAttendance is one persisted record. Period 0 means the whole day.
type StudentAttendance struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	SchoolID       uuid.UUID `gorm:"column:school_id;type:uuid;not null;index:idx_student_attendance_scope;uniqueIndex:uq_student_attendance_slot"`
	ClassID        string    `gorm:"column:class_id;type:varchar(50);not null;index:idx_student_attendance_scope"`
	SectionID      *string   `gorm:"column:section_id;type:varchar(50);index:idx_student_attendance_scope"`
	AttendanceDate time.Time `gorm:"column:attendance_date;type:date;not null;index:idx_student_attendance_scope;uniqueIndex:uq_student_attendance_slot"`
	Period         int       `gorm:"column:period;not null;default:0;index:idx_student_attendance_scope;uniqueIndex:uq_student_attendance_slot"`
	StudentID      uuid.UUID `gorm:"column:student_id;type:uuid;not null;index;uniqueIndex:uq_student_attendance_slot"`
	Status         string    `gorm:"column:status;type:varchar(20);not null"`
	Remarks        *string   `gorm:"column:remarks;type:text"`
	MarkedBy       uuid.UUID `gorm:"column:marked_by;type:uuid;not null"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (StudentAttendance) TableName() string {
	return "student_attendances"
}
