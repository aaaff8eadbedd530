package attendance

import (
	"context"
	"database/sql"
	"time"

	"go-school/internal/shared/dbtx"
	"go-school/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=attendance_repo.go -destination=mock/attendance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	FindByScope(ctx context.Context, scope Scope) ([]StudentAttendance, error)
	DeleteByScope(ctx context.Context, scope Scope) error
	CreateBatch(ctx context.Context, rows []StudentAttendance) error
	FindByStudentBetween(ctx context.Context, schoolID, studentID string, from, to time.Time) ([]StudentAttendance, error)
	WholeDayDates(ctx context.Context, schoolID, studentID string, from, to time.Time) ([]time.Time, error)
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

func scoped(db *gorm.DB, scope Scope) *gorm.DB {
	q := db.Scopes(tenant.Scope(scope.SchoolID)).
		Where("class_id = ?", scope.ClassID).
		Where("attendance_date = ?", scope.Date.Format(dateLayout)).
		Where("period = ?", scope.Period)
	if scope.SectionID != nil && *scope.SectionID != "" {
		return q.Where("section_id = ?", *scope.SectionID)
	}
	return q.Where("section_id IS NULL")
}

func (r *repository) FindByScope(ctx context.Context, scope Scope) ([]StudentAttendance, error) {
	var rows []StudentAttendance
	err := scoped(r.conn(ctx), scope).Find(&rows).Error
	return rows, err
}

func (r *repository) DeleteByScope(ctx context.Context, scope Scope) error {
	return scoped(r.conn(ctx), scope).Delete(&StudentAttendance{}).Error
}

func (r *repository) CreateBatch(ctx context.Context, rows []StudentAttendance) error {
	if len(rows) == 0 {
		return nil
	}
	return r.conn(ctx).CreateInBatches(rows, 200).Error
}

func (r *repository) FindByStudentBetween(ctx context.Context, schoolID, studentID string, from, to time.Time) ([]StudentAttendance, error) {
	var rows []StudentAttendance
	err := r.conn(ctx).
		Scopes(tenant.Scope(schoolID)).
		Where("student_id = ?", studentID).
		Where("attendance_date BETWEEN ? AND ?", from.Format(dateLayout), to.Format(dateLayout)).
		Order("attendance_date DESC, period ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) WholeDayDates(ctx context.Context, schoolID, studentID string, from, to time.Time) ([]time.Time, error) {
	var dates []time.Time
	err := r.conn(ctx).
		Model(&StudentAttendance{}).
		Scopes(tenant.Scope(schoolID)).
		Where("student_id = ?", studentID).
		Where("period = 0").
		Where("attendance_date BETWEEN ? AND ?", from.Format(dateLayout), to.Format(dateLayout)).
		Pluck("attendance_date", &dates).Error
	return dates, err
}
