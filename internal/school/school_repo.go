package school

import (
	"context"
	"database/sql"

	"go-school/internal/shared/dbtx"

	"gorm.io/gorm"
)

//go:generate mockgen -source=school_repo.go -destination=mock/school_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	FindByID(ctx context.Context, id string) (*School, error)
	Update(ctx context.Context, s *School) error
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

func (r *repository) FindByID(ctx context.Context, id string) (*School, error) {
	var s School
	err := r.conn(ctx).First(&s, "id = ?", id).Error
	return &s, err
}

func (r *repository) Update(ctx context.Context, s *School) error {
	return r.conn(ctx).Save(s).Error
}
