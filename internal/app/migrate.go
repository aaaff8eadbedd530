package app

import (
	"go-school/internal/attendance"
	"go-school/internal/checkin"
	"go-school/internal/leave"
	"go-school/internal/rbac"
	"go-school/internal/school"
	"go-school/internal/student"

	"gorm.io/gorm"
)

// outbox_events is written with raw SQL by the outbox repository, so it has no gorm model.
const outboxDDL = `
CREATE TABLE IF NOT EXISTS outbox_events (
	id             uuid PRIMARY KEY,
	request_id     text,
	aggregate_type varchar(50)  NOT NULL,
	aggregate_id   uuid         NOT NULL,
	event_type     varchar(100) NOT NULL,
	topic          varchar(200) NOT NULL,
	payload        jsonb        NOT NULL,
	status         varchar(20)  NOT NULL DEFAULT 'pending',
	retry_count    int          NOT NULL DEFAULT 0,
	error_message  text,
	next_retry_at  timestamptz,
	processed_at   timestamptz,
	created_at     timestamptz  NOT NULL DEFAULT NOW(),
	updated_at     timestamptz  NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_outbox_events_pending ON outbox_events (status, next_retry_at, created_at);
`

func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&school.School{},
		&student.Student{},
		&attendance.StudentAttendance{},
		&checkin.TeacherAttendance{},
		&leave.LeaveRequest{},
		&rbac.SchoolRolePermission{},
	); err != nil {
		return err
	}
	return db.Exec(outboxDDL).Error
}
