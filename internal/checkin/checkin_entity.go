package checkin

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPresent = "present"
	StatusLate    = "late"
)

// TeacherAttendance is one teacher's check-in record for one school day.
type TeacherAttendance struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	SchoolID       uuid.UUID  `gorm:"column:school_id;type:uuid;not null;uniqueIndex:uq_teacher_attendance_day"`
	TeacherID      uuid.UUID  `gorm:"column:teacher_id;type:uuid;not null;uniqueIndex:uq_teacher_attendance_day"`
	AttendanceDate time.Time  `gorm:"column:attendance_date;type:date;not null;uniqueIndex:uq_teacher_attendance_day"`
	CheckInTime    time.Time  `gorm:"column:check_in_time;type:timestamptz;not null"`
	CheckOutTime   *time.Time `gorm:"column:check_out_time;type:timestamptz"`
	Latitude       *float64   `gorm:"column:latitude"`
	Longitude      *float64   `gorm:"column:longitude"`
	DistanceMeters *float64   `gorm:"column:distance_meters"`
	Status         string     `gorm:"column:status;type:varchar(20);not null;default:present"`
	Notes          *string    `gorm:"column:notes;type:text"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at"`
}

func (TeacherAttendance) TableName() string {
	return "teacher_attendances"
}
