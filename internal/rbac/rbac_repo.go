package rbac

import (
	"context"

	"gorm.io/gorm"
)

//go:generate mockgen -source=rbac_repo.go -destination=mock/rbac_repo_mock.go -package=mock
type Repository interface {
	GetSchoolGrants(ctx context.Context, schoolID string) ([]Grant, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// SchoolRolePermission is an extra grant a school gives one of the fixed roles.
type SchoolRolePermission struct {
	ID       string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	SchoolID string `gorm:"type:uuid;not null;uniqueIndex:uq_school_role_permission"`
	Role     string `gorm:"type:varchar(20);not null;uniqueIndex:uq_school_role_permission"`
	Resource string `gorm:"type:varchar(50);not null;uniqueIndex:uq_school_role_permission"`
	Action   string `gorm:"type:varchar(20);not null;uniqueIndex:uq_school_role_permission"`
}

func (SchoolRolePermission) TableName() string {
	return "school_role_permissions"
}

func (r *repository) GetSchoolGrants(ctx context.Context, schoolID string) ([]Grant, error) {
	var rows []SchoolRolePermission
	err := r.db.WithContext(ctx).
		Where("school_id = ?", schoolID).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]Grant, len(rows))
	for i, row := range rows {
		out[i] = Grant{Role: row.Role, SchoolID: row.SchoolID, Resource: row.Resource, Action: row.Action}
	}
	return out, nil
}
