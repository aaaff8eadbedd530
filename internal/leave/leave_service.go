package leave

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"go-school/internal/events"
	leaveerrors "go-school/internal/leave/errors"
	"go-school/internal/messaging/kafka"
	"go-school/internal/metrics"
	"go-school/internal/shared/apperror"
	"go-school/internal/shared/contextutil"
	"go-school/internal/shared/session"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	Apply(ctx context.Context, sess session.Session, req ApplyLeaveRequest) (LeaveResponse, error)
	Process(ctx context.Context, sess session.Session, id string, req ProcessLeaveRequest) (LeaveResponse, error)
	Cancel(ctx context.Context, sess session.Session, id string) error
	List(ctx context.Context, sess session.Session, q ListLeavesQuery) (LeaveListResponse, error)
	GetByID(ctx context.Context, sess session.Session, id string) (LeaveResponse, error)
}

type service struct {
	db      *sql.DB
	repo    Repository
	outbox  kafka.OutboxRepository
	metrics *metrics.Metrics
	now     func() time.Time
	logger  *zap.Logger
}

func NewService(db *sql.DB, repo Repository, outboxRepo kafka.OutboxRepository, m *metrics.Metrics, logger ...*zap.Logger) Service {
	return NewServiceWithClock(db, repo, outboxRepo, m, time.Now, logger...)
}

func NewServiceWithClock(db *sql.DB, repo Repository, outboxRepo kafka.OutboxRepository, m *metrics.Metrics, now func() time.Time, logger ...*zap.Logger) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &service{
		db:      db,
		repo:    repo,
		outbox:  outboxRepo,
		metrics: m,
		now:     now,
		logger:  l,
	}
}

func applicantOf(sess session.Session) (string, string, error) {
	switch {
	case sess.Role == session.RoleTeacher && sess.TeacherID != "":
		return sess.TeacherID, ApplicantTeacher, nil
	case sess.Role == session.RoleStudent && sess.StudentID != "":
		return sess.StudentID, ApplicantStudent, nil
	default:
		return "", "", leaveerrors.ErrApplicantRequired
	}
}

func (s *service) Apply(ctx context.Context, sess session.Session, req ApplyLeaveRequest) (LeaveResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	applicantID, applicantType, err := applicantOf(sess)
	if err != nil {
		return LeaveResponse{}, err
	}
	app, err := ValidateApplication(req)
	if err != nil {
		return LeaveResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("apply leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	overlap, err := qtx.HasOverlappingPeriod(ctx, sess.SchoolID, applicantID, app.StartDate, app.EndDate)
	if err != nil {
		log.Error("check overlapping leave failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if overlap {
		return LeaveResponse{}, leaveerrors.ErrLeaveOverlap
	}

	l := &LeaveRequest{
		ID:            uuid.New(),
		SchoolID:      uuid.MustParse(sess.SchoolID),
		ApplicantID:   uuid.MustParse(applicantID),
		ApplicantType: applicantType,
		LeaveType:     app.LeaveType,
		StartDate:     app.StartDate,
		EndDate:       app.EndDate,
		NumberOfDays:  app.NumberOfDays,
		Reason:        app.Reason,
		Status:        string(StatePending),
	}
	if err := qtx.Create(ctx, l); err != nil {
		log.Error("persist leave failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		log.Error("apply leave commit failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	log.Info("leave applied",
		zap.String("leave_id", l.ID.String()),
		zap.String("applicant_type", applicantType),
		zap.Int("days", l.NumberOfDays),
	)
	return toLeaveResponse(l), nil
}

func (s *service) Process(ctx context.Context, sess session.Session, id string, req ProcessLeaveRequest) (LeaveResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	if !sess.IsAdmin() {
		return LeaveResponse{}, apperror.ErrForbidden
	}
	ev := Event(strings.ToLower(strings.TrimSpace(req.Action)))
	if ev != EventApprove && ev != EventReject {
		return LeaveResponse{}, leaveerrors.ErrInvalidAction
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("process leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := s.find(ctx, qtx, sess.SchoolID, id)
	if err != nil {
		return LeaveResponse{}, err
	}

	next, err := Transition(StateOf(l), ev)
	if err != nil {
		return LeaveResponse{}, err
	}

	now := s.now().UTC()
	l.Status = string(next)
	l.ProcessedAt = &now
	if processor, err := uuid.Parse(sess.UserID); err == nil {
		l.ProcessedBy = &processor
	}
	if req.Remarks != nil {
		remarks := strings.TrimSpace(*req.Remarks)
		if remarks != "" {
			l.ApprovalRemarks = &remarks
		}
	}

	decided, err := qtx.Decide(ctx, l)
	if err != nil {
		log.Error("persist leave decision failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if !decided {
		log.Warn("leave decision lost to a concurrent transition", zap.String("leave_id", id))
		return LeaveResponse{}, leaveerrors.ErrInvalidTransition
	}

	if err := s.enqueue(ctx, tx, l, sess.UserID); err != nil {
		log.Error("enqueue leave.processed failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		log.Error("process leave commit failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	s.metrics.LeaveTransition(string(next))
	log.Info("leave processed",
		zap.String("leave_id", l.ID.String()),
		zap.String("status", l.Status),
	)
	return toLeaveResponse(l), nil
}

// Cancel withdraws a pending request. Anyone but the applicant gets ErrInvalidTransition.
func (s *service) Cancel(ctx context.Context, sess session.Session, id string) error {
	log := contextutil.GetLogger(ctx, s.logger)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("cancel leave begin tx failed", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := s.find(ctx, qtx, sess.SchoolID, id)
	if err != nil {
		return err
	}
	if l.ApplicantID.String() != sess.ProfileID() {
		return leaveerrors.ErrInvalidTransition
	}
	if _, err := Transition(StateOf(l), EventCancel); err != nil {
		return err
	}

	cancelled, err := qtx.Cancel(ctx, l, s.now().UTC())
	if err != nil {
		log.Error("cancel leave failed", zap.Error(err))
		return err
	}
	if !cancelled {
		log.Warn("leave cancel lost to a concurrent transition", zap.String("leave_id", id))
		return leaveerrors.ErrInvalidTransition
	}

	if err := tx.Commit(); err != nil {
		log.Error("cancel leave commit failed", zap.Error(err))
		return err
	}

	s.metrics.LeaveTransition(string(StateCancelled))
	log.Info("leave cancelled", zap.String("leave_id", id))
	return nil
}

func (s *service) List(ctx context.Context, sess session.Session, q ListLeavesQuery) (LeaveListResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	status := strings.ToLower(strings.TrimSpace(q.Status))
	switch State(status) {
	case "", StatePending, StateApproved, StateRejected:
	default:
		return LeaveListResponse{}, leaveerrors.ErrInvalidStatusFilter
	}

	filter := ListFilter{ApplicantType: strings.ToLower(strings.TrimSpace(q.ApplicantType))}
	switch filter.ApplicantType {
	case "", ApplicantStudent, ApplicantTeacher:
	default:
		return LeaveListResponse{}, leaveerrors.ErrInvalidApplicantType
	}

	if !sess.IsAdmin() || q.Mine {
		applicantID, applicantType, err := applicantOf(sess)
		if err != nil {
			return LeaveListResponse{}, err
		}
		filter.ApplicantID = applicantID
		filter.ApplicantType = applicantType
	}

	rows, err := s.repo.List(ctx, sess.SchoolID, filter)
	if err != nil {
		log.Error("list leaves failed", zap.Error(err))
		return LeaveListResponse{}, err
	}

	out := LeaveListResponse{Leaves: make([]LeaveResponse, 0, len(rows))}
	for i := range rows {
		out.Summary.add(State(rows[i].Status))
		if status != "" && rows[i].Status != status {
			continue
		}
		out.Leaves = append(out.Leaves, toLeaveResponse(&rows[i]))
	}
	return out, nil
}

func (s *service) GetByID(ctx context.Context, sess session.Session, id string) (LeaveResponse, error) {
	l, err := s.find(ctx, s.repo, sess.SchoolID, id)
	if err != nil {
		return LeaveResponse{}, err
	}
	if StateOf(l) == StateCancelled {
		return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
	}
	if !sess.IsAdmin() && l.ApplicantID.String() != sess.ProfileID() {
		return LeaveResponse{}, apperror.ErrForbidden
	}
	return toLeaveResponse(l), nil
}

func (s *service) find(ctx context.Context, repo Repository, schoolID, id string) (*LeaveRequest, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, leaveerrors.ErrLeaveNotFound
	}
	l, err := repo.FindByID(ctx, schoolID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, leaveerrors.ErrLeaveNotFound
		}
		contextutil.GetLogger(ctx, s.logger).Error("load leave failed", zap.String("leave_id", id), zap.Error(err))
		return nil, err
	}
	return l, nil
}

func (s *service) enqueue(ctx context.Context, tx *sql.Tx, l *LeaveRequest, processedBy string) error {
	if s.outbox == nil {
		return nil
	}
	ev, err := kafka.NewOutboxEvent(
		contextutil.GetRequestID(ctx),
		"leave_request",
		l.ID.String(),
		events.EventLeaveProcessed,
		events.LeaveProcessedTopic,
		events.LeaveProcessedEvent{
			EventType:     events.EventLeaveProcessed,
			LeaveID:       l.ID.String(),
			SchoolID:      l.SchoolID.String(),
			ApplicantID:   l.ApplicantID.String(),
			ApplicantType: l.ApplicantType,
			Status:        l.Status,
			StartDate:     l.StartDate.Format(dateLayout),
			EndDate:       l.EndDate.Format(dateLayout),
			ProcessedBy:   processedBy,
			OccurredAt:    s.now().UTC(),
		},
	)
	if err != nil {
		return err
	}
	return s.outbox.WithTx(tx).Create(ctx, ev)
}

func (sum *LeaveSummary) add(st State) {
	sum.Total++
	switch st {
	case StatePending:
		sum.Pending++
	case StateApproved:
		sum.Approved++
	case StateRejected:
		sum.Rejected++
	}
}

func toLeaveResponse(l *LeaveRequest) LeaveResponse {
	resp := LeaveResponse{
		ID:              l.ID.String(),
		SchoolID:        l.SchoolID.String(),
		ApplicantID:     l.ApplicantID.String(),
		ApplicantType:   l.ApplicantType,
		LeaveType:       l.LeaveType,
		StartDate:       l.StartDate.Format(dateLayout),
		EndDate:         l.EndDate.Format(dateLayout),
		NumberOfDays:    l.NumberOfDays,
		Reason:          l.Reason,
		Status:          string(StateOf(l)),
		ApprovalRemarks: l.ApprovalRemarks,
	}
	if l.ProcessedBy != nil {
		by := l.ProcessedBy.String()
		resp.ProcessedBy = &by
	}
	if l.ProcessedAt != nil {
		at := l.ProcessedAt.Format(time.RFC3339)
		resp.ProcessedAt = &at
	}
	return resp
}
