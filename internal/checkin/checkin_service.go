package checkin

import (
	"context"
	"database/sql"
	"errors"
	"time"

	checkinerrors "go-school/internal/checkin/errors"
	"go-school/internal/events"
	"go-school/internal/geo"
	"go-school/internal/messaging/kafka"
	"go-school/internal/metrics"
	"go-school/internal/school"
	"go-school/internal/shared/apperror"
	"go-school/internal/shared/contextutil"
	"go-school/internal/shared/session"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	dateLayout         = "2006-01-02"
	defaultHistoryDays = 30
)

// ConfigSource resolves a school's attendance configuration.
type ConfigSource interface {
	GetConfig(ctx context.Context, schoolID string) (school.Config, error)
}

//go:generate mockgen -source=checkin_service.go -destination=mock/checkin_service_mock.go -package=mock
type Service interface {
	CheckIn(ctx context.Context, sess session.Session, req CheckInRequest) (CheckInStateResponse, error)
	CheckOut(ctx context.Context, sess session.Session) (CheckInStateResponse, error)
	Status(ctx context.Context, sess session.Session) (CheckInStateResponse, error)
	History(ctx context.Context, sess session.Session, q HistoryQuery) ([]CheckInStateResponse, error)
}

type service struct {
	db      *sql.DB
	repo    Repository
	schools ConfigSource
	outbox  kafka.OutboxRepository
	metrics *metrics.Metrics
	now     func() time.Time
	logger  *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	schools ConfigSource,
	outboxRepo kafka.OutboxRepository,
	m *metrics.Metrics,
	logger ...*zap.Logger,
) Service {
	return NewServiceWithClock(db, repo, schools, outboxRepo, m, time.Now, logger...)
}

// NewServiceWithClock is NewService with the server clock replaced.
func NewServiceWithClock(
	db *sql.DB,
	repo Repository,
	schools ConfigSource,
	outboxRepo kafka.OutboxRepository,
	m *metrics.Metrics,
	now func() time.Time,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("checkin.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("checkin.service")
	}
	return &service{
		db:      db,
		repo:    repo,
		schools: schools,
		outbox:  outboxRepo,
		metrics: m,
		now:     now,
		logger:  l,
	}
}

// checkInConfig loads the school and rejects callers or schools outside the check-in flow.
func (s *service) checkInConfig(ctx context.Context, sess session.Session) (school.Config, error) {
	if sess.Role != session.RoleTeacher || sess.TeacherID == "" {
		return school.Config{}, checkinerrors.ErrTeacherRequired
	}
	cfg, err := s.schools.GetConfig(ctx, sess.SchoolID)
	if err != nil {
		return school.Config{}, err
	}
	if school.Dispatch(cfg.Mode).Flow != school.FlowCheckIn {
		return cfg, checkinerrors.ErrModeMismatch
	}
	return cfg, nil
}

// schoolDay returns the current instant and the calendar day it falls on in the school's timezone.
func (s *service) schoolDay(cfg school.Config) (time.Time, time.Time) {
	now := s.now().In(cfg.TimeLocation())
	return now, time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// gate applies the geofence. Schools without a location accept any position or none.
func (s *service) gate(cfg school.Config, req CheckInRequest) (*float64, error) {
	if cfg.Location == nil {
		return nil, nil
	}
	if req.Latitude == nil || req.Longitude == nil {
		return nil, checkinerrors.ErrLocationUnavailable
	}
	pos := geo.Point{Latitude: *req.Latitude, Longitude: *req.Longitude}
	if err := pos.Validate(); err != nil {
		return nil, checkinerrors.ErrInvalidCoordinates
	}

	res := geo.Evaluate(pos, *cfg.Location)
	s.metrics.GeofenceDistance(res.DistanceMeters)
	if !res.Inside {
		return nil, checkinerrors.OutOfRange(res.DistanceMeters, cfg.Location.RadiusMeters)
	}
	d := res.DistanceMeters
	return &d, nil
}

func (s *service) CheckIn(ctx context.Context, sess session.Session, req CheckInRequest) (resp CheckInStateResponse, err error) {
	log := contextutil.GetLogger(ctx, s.logger)
	defer func() { s.metrics.CheckIn("check_in", resultLabel(err)) }()

	cfg, err := s.checkInConfig(ctx, sess)
	if err != nil {
		return CheckInStateResponse{}, err
	}

	distance, err := s.gate(cfg, req)
	if err != nil {
		log.Warn("check-in rejected by geofence",
			zap.String("school_id", sess.SchoolID),
			zap.String("teacher_id", sess.TeacherID),
			zap.Error(err),
		)
		return CheckInStateResponse{}, err
	}

	now, day := s.schoolDay(cfg)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("check-in begin tx failed", zap.Error(err))
		return CheckInStateResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	existing, err := qtx.FindByTeacherAndDate(ctx, sess.SchoolID, sess.TeacherID, day)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Error("load today's check-in failed", zap.Error(err))
		return CheckInStateResponse{}, err
	}
	if err == nil {
		if stateErr := CanCheckIn(StateOf(existing)); stateErr != nil {
			return CheckInStateResponse{}, stateErr
		}
	}

	status := StatusPresent
	if cutoff, ok := cfg.LateCutoff(now); ok && now.After(cutoff) {
		status = StatusLate
	}

	row := &TeacherAttendance{
		ID:             uuid.New(),
		SchoolID:       uuid.MustParse(sess.SchoolID),
		TeacherID:      uuid.MustParse(sess.TeacherID),
		AttendanceDate: day,
		CheckInTime:    now.UTC(),
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
		DistanceMeters: distance,
		Status:         status,
		Notes:          req.Notes,
	}

	if err := qtx.Create(ctx, row); err != nil {
		mapped := mapRepositoryError(err)
		if !errors.Is(mapped, checkinerrors.ErrAlreadyCheckedIn) {
			log.Error("persist check-in failed", zap.Error(err))
		}
		return CheckInStateResponse{}, mapped
	}

	if err := s.enqueue(ctx, tx, events.EventTeacherCheckedIn, row); err != nil {
		log.Error("enqueue teacher.checked_in failed", zap.Error(err))
		return CheckInStateResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		log.Error("check-in commit failed", zap.Error(err))
		return CheckInStateResponse{}, mapRepositoryError(err)
	}

	log.Info("teacher checked in",
		zap.String("school_id", sess.SchoolID),
		zap.String("teacher_id", sess.TeacherID),
		zap.String("status", status),
	)
	return toResponse(sess.TeacherID, day, row), nil
}

func (s *service) CheckOut(ctx context.Context, sess session.Session) (resp CheckInStateResponse, err error) {
	log := contextutil.GetLogger(ctx, s.logger)
	defer func() { s.metrics.CheckIn("check_out", resultLabel(err)) }()

	cfg, err := s.checkInConfig(ctx, sess)
	if err != nil {
		return CheckInStateResponse{}, err
	}
	now, day := s.schoolDay(cfg)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("check-out begin tx failed", zap.Error(err))
		return CheckInStateResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	row, err := qtx.FindByTeacherAndDate(ctx, sess.SchoolID, sess.TeacherID, day)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Error("load today's check-in failed", zap.Error(err))
		return CheckInStateResponse{}, err
	}
	if err != nil {
		row = nil
	}
	if err := CanCheckOut(StateOf(row)); err != nil {
		return CheckInStateResponse{}, err
	}

	out := now.UTC()
	row.CheckOutTime = &out
	recorded, err := qtx.RecordCheckOut(ctx, row)
	if err != nil {
		log.Error("persist check-out failed", zap.Error(err))
		return CheckInStateResponse{}, err
	}
	if !recorded {
		log.Warn("check-out lost to a concurrent request", zap.String("teacher_id", sess.TeacherID))
		return CheckInStateResponse{}, checkinerrors.ErrAlreadyCheckedOut
	}

	if err := s.enqueue(ctx, tx, events.EventTeacherCheckedOut, row); err != nil {
		log.Error("enqueue teacher.checked_out failed", zap.Error(err))
		return CheckInStateResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		log.Error("check-out commit failed", zap.Error(err))
		return CheckInStateResponse{}, err
	}

	log.Info("teacher checked out",
		zap.String("school_id", sess.SchoolID),
		zap.String("teacher_id", sess.TeacherID),
	)
	return toResponse(sess.TeacherID, day, row), nil
}

func (s *service) Status(ctx context.Context, sess session.Session) (CheckInStateResponse, error) {
	cfg, err := s.checkInConfig(ctx, sess)
	if err != nil {
		return CheckInStateResponse{}, err
	}
	_, day := s.schoolDay(cfg)

	row, err := s.repo.FindByTeacherAndDate(ctx, sess.SchoolID, sess.TeacherID, day)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return toResponse(sess.TeacherID, day, nil), nil
		}
		s.logger.Error("load today's check-in failed", zap.String("teacher_id", sess.TeacherID), zap.Error(err))
		return CheckInStateResponse{}, err
	}
	return toResponse(sess.TeacherID, day, row), nil
}

// History lists check-ins between from and to, the last 30 days by default. Teachers only see their own.
func (s *service) History(ctx context.Context, sess session.Session, q HistoryQuery) ([]CheckInStateResponse, error) {
	teacherID := q.TeacherID
	switch {
	case sess.IsAdmin():
	case sess.Role == session.RoleTeacher:
		if teacherID != "" && teacherID != sess.TeacherID {
			return nil, apperror.ErrForbidden
		}
		teacherID = sess.TeacherID
	default:
		return nil, apperror.ErrForbidden
	}

	cfg, err := s.schools.GetConfig(ctx, sess.SchoolID)
	if err != nil {
		return nil, err
	}
	_, today := s.schoolDay(cfg)

	from, to := today.AddDate(0, 0, -(defaultHistoryDays - 1)), today
	if q.From != "" {
		if from, err = time.Parse(dateLayout, q.From); err != nil {
			return nil, checkinerrors.ErrInvalidDateRange
		}
	}
	if q.To != "" {
		if to, err = time.Parse(dateLayout, q.To); err != nil {
			return nil, checkinerrors.ErrInvalidDateRange
		}
	}
	if to.Before(from) {
		return nil, checkinerrors.ErrInvalidDateRange
	}

	rows, err := s.repo.FindBetween(ctx, sess.SchoolID, teacherID, from, to)
	if err != nil {
		s.logger.Error("load check-in history failed", zap.String("school_id", sess.SchoolID), zap.Error(err))
		return nil, err
	}

	res := make([]CheckInStateResponse, len(rows))
	for i := range rows {
		res[i] = toResponse(rows[i].TeacherID.String(), rows[i].AttendanceDate, &rows[i])
	}
	return res, nil
}

func (s *service) enqueue(ctx context.Context, tx *sql.Tx, eventType string, row *TeacherAttendance) error {
	if s.outbox == nil {
		return nil
	}
	ev, err := kafka.NewOutboxEvent(
		contextutil.GetRequestID(ctx),
		"teacher_attendance",
		row.ID.String(),
		eventType,
		events.TeacherCheckInTopic,
		events.TeacherCheckInEvent{
			EventType:      eventType,
			SchoolID:       row.SchoolID.String(),
			TeacherID:      row.TeacherID.String(),
			Date:           row.AttendanceDate.Format(dateLayout),
			Status:         row.Status,
			DistanceMeters: row.DistanceMeters,
			OccurredAt:     s.now().UTC(),
		},
	)
	if err != nil {
		return err
	}
	return s.outbox.WithTx(tx).Create(ctx, ev)
}

func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	return apperror.ToHTTP(err).Code
}

func toResponse(teacherID string, day time.Time, row *TeacherAttendance) CheckInStateResponse {
	resp := CheckInStateResponse{
		TeacherID: teacherID,
		Date:      day.Format(dateLayout),
		State:     StateOf(row),
	}
	if row == nil {
		return resp
	}
	in := row.CheckInTime.Format(time.RFC3339)
	resp.CheckInTime = &in
	if row.CheckOutTime != nil {
		out := row.CheckOutTime.Format(time.RFC3339)
		resp.CheckOutTime = &out
	}
	resp.Status = row.Status
	resp.DistanceMeters = row.DistanceMeters
	return resp
}
