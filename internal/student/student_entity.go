package student

import (
	"time"

	"go-school/internal/roster"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Student struct {
	ID         uuid.UUID      `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	SchoolID   uuid.UUID      `gorm:"column:school_id;type:uuid;not null;index:idx_students_class"`
	ClassID    string         `gorm:"column:class_id;type:varchar(50);not null;index:idx_students_class"`
	SectionID  *string        `gorm:"column:section_id;type:varchar(50);index:idx_students_class"`
	Name       string         `gorm:"column:name;type:varchar(150);not null"`
	RollNumber string         `gorm:"column:roll_number;type:varchar(20);not null"`
	CreatedAt  time.Time      `gorm:"column:created_at"`
	UpdatedAt  time.Time      `gorm:"column:updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (Student) TableName() string {
	return "students"
}

// ToRoster projects the row onto the roster view used for reconciliation.
func (s Student) ToRoster() roster.Student {
	return roster.Student{
		ID:         s.ID.String(),
		Name:       s.Name,
		RollNumber: s.RollNumber,
		ClassID:    s.ClassID,
		SectionID:  s.SectionID,
	}
}
