package school

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type School struct {
	ID             uuid.UUID      `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	Name           string         `gorm:"column:name;type:varchar(150);not null"`
	AttendanceMode string         `gorm:"column:attendance_mode;type:varchar(20);not null;default:simple"`
	Latitude       *float64       `gorm:"column:latitude"`
	Longitude      *float64       `gorm:"column:longitude"`
	RadiusMeters   *float64       `gorm:"column:radius_meters"`
	Address        *string        `gorm:"column:address;type:text"`
	Timezone       string         `gorm:"column:timezone;type:varchar(64);not null;default:UTC"`
	LateAfter      string         `gorm:"column:late_after;type:varchar(5);not null;default:'09:15'"`
	CreatedAt      time.Time      `gorm:"column:created_at"`
	UpdatedAt      time.Time      `gorm:"column:updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (School) TableName() string {
	return "schools"
}
