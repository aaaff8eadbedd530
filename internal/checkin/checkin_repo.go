package checkin

import (
	"context"
	"database/sql"
	"time"

	"go-school/internal/shared/dbtx"
	"go-school/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=checkin_repo.go -destination=mock/checkin_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	FindByTeacherAndDate(ctx context.Context, schoolID, teacherID string, date time.Time) (*TeacherAttendance, error)
	Create(ctx context.Context, row *TeacherAttendance) error
	RecordCheckOut(ctx context.Context, row *TeacherAttendance) (bool, error)
	FindBetween(ctx context.Context, schoolID, teacherID string, from, to time.Time) ([]TeacherAttendance, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) conn(ctx context.Context) *gorm.DB {
	return dbtx.Bind(r.db, r.tx).WithContext(ctx)
}

func (r *repository) FindByTeacherAndDate(ctx context.Context, schoolID, teacherID string, date time.Time) (*TeacherAttendance, error) {
	var row TeacherAttendance
	err := r.conn(ctx).
		Scopes(tenant.Scope(schoolID)).
		Where("teacher_id = ? AND attendance_date = ?", teacherID, date.Format(dateLayout)).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) Create(ctx context.Context, row *TeacherAttendance) error {
	return r.conn(ctx).Create(row).Error
}

// RecordCheckOut stamps row.CheckOutTime only while the stored row has none. It reports false
// when another request checked out first.
func (r *repository) RecordCheckOut(ctx context.Context, row *TeacherAttendance) (bool, error) {
	res := r.conn(ctx).
		Model(&TeacherAttendance{}).
		Where("id = ? AND check_out_time IS NULL", row.ID).
		Update("check_out_time", row.CheckOutTime)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// FindBetween lists rows in [from, to] newest first. An empty teacherID lists the whole school.
func (r *repository) FindBetween(ctx context.Context, schoolID, teacherID string, from, to time.Time) ([]TeacherAttendance, error) {
	q := r.conn(ctx).
		Scopes(tenant.Scope(schoolID)).
		Where("attendance_date BETWEEN ? AND ?", from.Format(dateLayout), to.Format(dateLayout))
	if teacherID != "" {
		q = q.Where("teacher_id = ?", teacherID)
	}
	var rows []TeacherAttendance
	err := q.Order("attendance_date DESC, check_in_time DESC").Find(&rows).Error
	return rows, err
}
