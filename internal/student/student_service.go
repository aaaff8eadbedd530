package student

import (
	"context"
	"errors"
	"strings"

	studenterrors "go-school/internal/student/errors"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=student_service.go -destination=mock/student_service_mock.go -package=mock
type Service interface {
	ListByClass(ctx context.Context, schoolID string, q ListStudentsQuery) ([]StudentResponse, error)
	GetByID(ctx context.Context, schoolID, id string) (StudentResponse, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("student.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("student.service")
	}
	return &service{repo: repo, logger: l}
}

func (s *service) ListByClass(ctx context.Context, schoolID string, q ListStudentsQuery) ([]StudentResponse, error) {
	if strings.TrimSpace(q.ClassID) == "" {
		return nil, studenterrors.ErrClassRequired
	}
	rows, err := s.repo.ListByClass(ctx, schoolID, q.ClassID, q.SectionID)
	if err != nil {
		s.logger.Error("list students failed",
			zap.String("school_id", schoolID),
			zap.String("class_id", q.ClassID),
			zap.Error(err),
		)
		return nil, err
	}
	res := make([]StudentResponse, len(rows))
	for i, r := range rows {
		res[i] = mapToResponse(r)
	}
	return res, nil
}

func (s *service) GetByID(ctx context.Context, schoolID, id string) (StudentResponse, error) {
	row, err := s.repo.FindByID(ctx, schoolID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return StudentResponse{}, studenterrors.ErrStudentNotFound
		}
		return StudentResponse{}, err
	}
	return mapToResponse(*row), nil
}

func mapToResponse(s Student) StudentResponse {
	return StudentResponse{
		ID:         s.ID.String(),
		Name:       s.Name,
		RollNumber: s.RollNumber,
		ClassID:    s.ClassID,
		SectionID:  s.SectionID,
	}
}
