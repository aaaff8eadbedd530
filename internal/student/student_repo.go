package student

import (
	"context"

	"go-school/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=student_repo.go -destination=mock/student_repo_mock.go -package=mock
type Repository interface {
	ListByClass(ctx context.Context, schoolID, classID string, sectionID *string) ([]Student, error)
	FindByID(ctx context.Context, schoolID, id string) (*Student, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListByClass(ctx context.Context, schoolID, classID string, sectionID *string) ([]Student, error) {
	q := r.db.WithContext(ctx).
		Scopes(tenant.Scope(schoolID)).
		Where("class_id = ?", classID)
	if sectionID != nil && *sectionID != "" {
		q = q.Where("section_id = ?", *sectionID)
	}

	var rows []Student
	// numeric roll numbers sort naturally, others fall back to text order
	err := q.Order("LENGTH(roll_number) ASC, roll_number ASC").Find(&rows).Error
	return rows, err
}

func (r *repository) FindByID(ctx context.Context, schoolID, id string) (*Student, error) {
	var s Student
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(schoolID)).
		First(&s, "id = ?", id).Error
	return &s, err
}
