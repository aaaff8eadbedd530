package leave

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LeaveRequest rows are never hard deleted. A cancelled request keeps its row with
// cancelled_at and deleted_at set and drops out of every default query.
type LeaveRequest struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SchoolID      uuid.UUID `gorm:"type:uuid;not null;index:idx_leave_requests_school_status"`
	ApplicantID   uuid.UUID `gorm:"type:uuid;not null;index:idx_leave_requests_applicant_dates"`
	ApplicantType string    `gorm:"type:varchar(10);not null"`

	LeaveType    string    `gorm:"type:varchar(20);not null"`
	StartDate    time.Time `gorm:"type:date;not null;index:idx_leave_requests_applicant_dates"`
	EndDate      time.Time `gorm:"type:date;not null;index:idx_leave_requests_applicant_dates"`
	NumberOfDays int       `gorm:"type:int;not null;default:1"`
	Reason       string    `gorm:"type:text;not null"`

	Status          string     `gorm:"type:varchar(20);not null;default:'pending';index:idx_leave_requests_school_status"`
	ApprovalRemarks *string    `gorm:"type:text"`
	ProcessedBy     *uuid.UUID `gorm:"type:uuid"`
	ProcessedAt     *time.Time
	CancelledAt     *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index:idx_leave_requests_deleted_at"`
}

func (LeaveRequest) TableName() string {
	return "leave_requests"
}
