package leave

import (
	"context"
	"database/sql"
	"time"

	"go-school/internal/shared/dbtx"
	"go-school/internal/tenant"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListFilter narrows a school's leave requests. Empty fields do not filter.
type ListFilter struct {
	ApplicantID   string
	ApplicantType string
}

//go:generate mockgen -source=leave_repo.go -destination=mock/leave_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, l *LeaveRequest) error
	FindByID(ctx context.Context, schoolID, id string) (*LeaveRequest, error)
	List(ctx context.Context, schoolID string, f ListFilter) ([]LeaveRequest, error)
	Decide(ctx context.Context, l *LeaveRequest) (bool, error)
	Cancel(ctx context.Context, l *LeaveRequest, at time.Time) (bool, error)
	HasOverlappingPeriod(ctx context.Context, schoolID, applicantID string, startDate, endDate time.Time) (bool, error)
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

func (r *repository) Create(ctx context.Context, l *LeaveRequest) error {
	return r.conn(ctx).Create(l).Error
}

// FindByID also returns cancelled requests so that transitions out of them can be refused.
func (r *repository) FindByID(ctx context.Context, schoolID, id string) (*LeaveRequest, error) {
	var l LeaveRequest
	err := r.conn(ctx).
		Unscoped().
		Scopes(tenant.Scope(schoolID)).
		First(&l, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *repository) List(ctx context.Context, schoolID string, f ListFilter) ([]LeaveRequest, error) {
	q := r.conn(ctx).Scopes(tenant.Scope(schoolID))
	if f.ApplicantID != "" {
		q = q.Where("applicant_id = ?", f.ApplicantID)
	}
	if f.ApplicantType != "" {
		q = q.Where("applicant_type = ?", f.ApplicantType)
	}
	var leaves []LeaveRequest
	err := q.Order("start_date DESC, created_at DESC").Find(&leaves).Error
	return leaves, err
}

// pending matches the stored row only while it is still open for a transition.
func (r *repository) pending(ctx context.Context, id uuid.UUID) *gorm.DB {
	return r.conn(ctx).
		Model(&LeaveRequest{}).
		Where("id = ? AND status = ? AND cancelled_at IS NULL", id, string(StatePending))
}

// Decide writes the approval or rejection carried by l. It reports false when the stored
// request is no longer pending.
func (r *repository) Decide(ctx context.Context, l *LeaveRequest) (bool, error) {
	res := r.pending(ctx, l.ID).Updates(map[string]any{
		"status":           l.Status,
		"approval_remarks": l.ApprovalRemarks,
		"processed_by":     l.ProcessedBy,
		"processed_at":     l.ProcessedAt,
	})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Cancel soft deletes a pending request in one statement. It reports false when the stored
// request is no longer pending.
func (r *repository) Cancel(ctx context.Context, l *LeaveRequest, at time.Time) (bool, error) {
	res := r.pending(ctx, l.ID).Updates(map[string]any{
		"cancelled_at": at,
		"deleted_at":   at,
	})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected != 1 {
		return false, nil
	}
	l.CancelledAt = &at
	l.DeletedAt = gorm.DeletedAt{Time: at, Valid: true}
	return true, nil
}

func (r *repository) HasOverlappingPeriod(ctx context.Context, schoolID, applicantID string, startDate, endDate time.Time) (bool, error) {
	var count int64
	err := r.conn(ctx).
		Model(&LeaveRequest{}).
		Scopes(tenant.Scope(schoolID)).
		Where("applicant_id = ?", applicantID).
		Where("status IN ?", []string{string(StatePending), string(StateApproved)}).
		Where("NOT (end_date < ? OR start_date > ?)", startDate.Format(dateLayout), endDate.Format(dateLayout)).
		Count(&count).Error
	return count > 0, err
}
