package attendance

import (
	"context"
	"database/sql"
	"errors"
	"time"

	attendanceerrors "go-school/internal/attendance/errors"
	"go-school/internal/events"
	"go-school/internal/messaging/kafka"
	"go-school/internal/metrics"
	"go-school/internal/roster"
	"go-school/internal/school"
	"go-school/internal/shared/apperror"
	"go-school/internal/shared/contextutil"
	"go-school/internal/shared/session"
	"go-school/internal/student"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const monthLayout = "2006-01"

// ConfigSource resolves a school's attendance configuration.
type ConfigSource interface {
	GetConfig(ctx context.Context, schoolID string) (school.Config, error)
}

// RosterSource lists the students enrolled in a class.
type RosterSource interface {
	ListByClass(ctx context.Context, schoolID, classID string, sectionID *string) ([]student.Student, error)
	FindByID(ctx context.Context, schoolID, id string) (*student.Student, error)
}

//go:generate mockgen -source=attendance_service.go -destination=mock/attendance_service_mock.go -package=mock
type Service interface {
	GetSheet(ctx context.Context, sess session.Session, q ScopeQuery) (SheetResponse, error)
	Save(ctx context.Context, sess session.Session, req SaveAttendanceRequest) (SheetResponse, error)
	History(ctx context.Context, sess session.Session, q HistoryQuery) (HistoryResponse, error)
	ApplyApprovedLeave(ctx context.Context, schoolID, studentID string, start, end time.Time) (int, error)
}

type service struct {
	db       *sql.DB
	repo     Repository
	students RosterSource
	schools  ConfigSource
	outbox   kafka.OutboxRepository
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	students RosterSource,
	schools ConfigSource,
	outboxRepo kafka.OutboxRepository,
	m *metrics.Metrics,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("attendance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.service")
	}
	return &service{
		db:       db,
		repo:     repo,
		students: students,
		schools:  schools,
		outbox:   outboxRepo,
		metrics:  m,
		logger:   l,
	}
}

// resolveScope reads the school mode and checks the query is a roster scope of that mode.
func (s *service) resolveScope(ctx context.Context, sess session.Session, q ScopeQuery) (Scope, school.Config, error) {
	cfg, err := s.schools.GetConfig(ctx, sess.SchoolID)
	if err != nil {
		return Scope{}, school.Config{}, err
	}

	route := school.Dispatch(cfg.Mode)
	if route.Flow != school.FlowRoster {
		return Scope{}, cfg, attendanceerrors.ErrModeMismatch
	}
	if route.PeriodKeyed && q.Period < 1 {
		return Scope{}, cfg, attendanceerrors.ErrPeriodRequired
	}
	if !route.PeriodKeyed && q.Period != 0 {
		return Scope{}, cfg, attendanceerrors.ErrPeriodNotAllowed
	}

	date, err := time.Parse(dateLayout, q.Date)
	if err != nil {
		return Scope{}, cfg, attendanceerrors.ErrInvalidDate
	}

	var section *string
	if q.SectionID != nil && *q.SectionID != "" {
		section = q.SectionID
	}

	return Scope{
		SchoolID:  sess.SchoolID,
		ClassID:   q.ClassID,
		SectionID: section,
		Date:      date,
		Period:    q.Period,
	}, cfg, nil
}

func (s *service) loadRoster(ctx context.Context, scope Scope) ([]roster.Student, error) {
	rows, err := s.students.ListByClass(ctx, scope.SchoolID, scope.ClassID, scope.SectionID)
	if err != nil {
		return nil, err
	}
	out := make([]roster.Student, len(rows))
	for i, r := range rows {
		out[i] = r.ToRoster()
	}
	return out, nil
}

func (s *service) GetSheet(ctx context.Context, sess session.Session, q ScopeQuery) (SheetResponse, error) {
	scope, cfg, err := s.resolveScope(ctx, sess, q)
	if err != nil {
		return SheetResponse{}, err
	}

	students, err := s.loadRoster(ctx, scope)
	if err != nil {
		s.logger.Error("load roster failed", zap.String("scope", scope.Key()), zap.Error(err))
		return SheetResponse{}, err
	}
	rows, err := s.repo.FindByScope(ctx, scope)
	if err != nil {
		s.logger.Error("load attendance snapshot failed", zap.String("scope", scope.Key()), zap.Error(err))
		return SheetResponse{}, err
	}

	sheet := roster.NewSheet()
	if err := sheet.Load(sheet.Begin(scope.Key()), students, toRecordList(rows)); err != nil {
		return SheetResponse{}, err
	}
	return sheetResponse(scope, cfg, sheet), nil
}

func (s *service) Save(ctx context.Context, sess session.Session, req SaveAttendanceRequest) (SheetResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("save attendance requested",
		zap.String("school_id", sess.SchoolID),
		zap.String("class_id", req.ClassID),
		zap.String("date", req.Date),
		zap.Int("period", req.Period),
		zap.Int("records", len(req.Records)),
	)

	scope, cfg, err := s.resolveScope(ctx, sess, req.ScopeQuery)
	if err != nil {
		return SheetResponse{}, err
	}
	if scope.Date.After(today(cfg)) {
		return SheetResponse{}, attendanceerrors.ErrFutureDate
	}
	markedBy, err := uuid.Parse(sess.UserID)
	if err != nil {
		return SheetResponse{}, apperror.ErrUnauthorized
	}

	students, err := s.loadRoster(ctx, scope)
	if err != nil {
		log.Error("load roster failed", zap.String("scope", scope.Key()), zap.Error(err))
		return SheetResponse{}, err
	}

	sheet := roster.NewSheet()
	if err := sheet.Load(sheet.Begin(scope.Key()), students, nil); err != nil {
		return SheetResponse{}, err
	}
	if err := applyRecords(sheet, req.Records); err != nil {
		log.Warn("save attendance rejected", zap.String("scope", scope.Key()), zap.Error(err))
		s.metrics.AttendanceSaved(string(cfg.Mode), "rejected")
		return SheetResponse{}, err
	}

	records := sheet.List()
	rows := make([]StudentAttendance, 0, len(records))
	for _, r := range records {
		rows = append(rows, StudentAttendance{
			ID:             uuid.New(),
			SchoolID:       uuid.MustParse(scope.SchoolID),
			ClassID:        scope.ClassID,
			SectionID:      scope.SectionID,
			AttendanceDate: scope.Date,
			Period:         scope.Period,
			StudentID:      uuid.MustParse(r.StudentID),
			Status:         string(r.Status),
			Remarks:        r.Remarks,
			MarkedBy:       markedBy,
		})
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("save attendance begin tx failed", zap.Error(err))
		return SheetResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if err := qtx.DeleteByScope(ctx, scope); err != nil {
		log.Error("clear attendance scope failed", zap.String("scope", scope.Key()), zap.Error(err))
		return SheetResponse{}, err
	}
	if err := qtx.CreateBatch(ctx, rows); err != nil {
		log.Error("persist attendance failed", zap.String("scope", scope.Key()), zap.Error(err))
		return SheetResponse{}, err
	}

	if s.outbox != nil {
		sum := sheet.Summarize()
		ev, err := kafka.NewOutboxEvent(
			contextutil.GetRequestID(ctx),
			"attendance_scope",
			scope.Key(),
			"attendance.saved",
			events.AttendanceSavedTopic,
			events.AttendanceSavedEvent{
				EventType:  "attendance.saved",
				SchoolID:   scope.SchoolID,
				ClassID:    scope.ClassID,
				SectionID:  scope.SectionID,
				Date:       scope.Date.Format(dateLayout),
				Period:     scope.Period,
				MarkedBy:   sess.UserID,
				Total:      sum.Total,
				Present:    sum.Present,
				Absent:     sum.Absent,
				Late:       sum.Late,
				OccurredAt: time.Now().UTC(),
			},
		)
		if err != nil {
			return SheetResponse{}, err
		}
		if err := s.outbox.WithTx(tx).Create(ctx, ev); err != nil {
			log.Error("enqueue attendance.saved failed", zap.String("scope", scope.Key()), zap.Error(err))
			return SheetResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("save attendance commit failed", zap.Error(err))
		s.metrics.AttendanceSaved(string(cfg.Mode), "error")
		return SheetResponse{}, err
	}

	s.metrics.AttendanceSaved(string(cfg.Mode), "ok")
	log.Info("save attendance success",
		zap.String("scope", scope.Key()),
		zap.Int("records", len(rows)),
	)
	return sheetResponse(scope, cfg, sheet), nil
}

// applyRecords validates every input against the roster. Any bad record rejects the whole save.
func applyRecords(sheet *roster.Sheet, inputs []RecordInput) error {
	seen := make(map[string]struct{}, len(inputs))
	for _, in := range inputs {
		if _, dup := seen[in.StudentID]; dup {
			return attendanceerrors.ErrDuplicateStudent.WithDetails(map[string]string{"student_id": in.StudentID})
		}
		seen[in.StudentID] = struct{}{}

		status, err := roster.ParseStatus(in.Status)
		if err != nil {
			return attendanceerrors.ErrInvalidStatus.WithDetails(map[string]string{"student_id": in.StudentID, "status": in.Status})
		}
		if err := sheet.SetStatus(in.StudentID, status); err != nil {
			if errors.Is(err, roster.ErrUnknownStudent) {
				return attendanceerrors.ErrUnknownStudent.WithDetails(map[string]string{"student_id": in.StudentID})
			}
			return err
		}
		if in.Remarks != nil && *in.Remarks != "" {
			if err := sheet.SetRemarks(in.StudentID, in.Remarks); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *service) History(ctx context.Context, sess session.Session, q HistoryQuery) (HistoryResponse, error) {
	studentID := q.StudentID
	if sess.Role == session.RoleStudent {
		if studentID != "" && studentID != sess.StudentID {
			return HistoryResponse{}, apperror.ErrForbidden
		}
		studentID = sess.StudentID
	}
	if studentID == "" {
		return HistoryResponse{}, attendanceerrors.ErrStudentRequired
	}

	month := q.Month
	var start time.Time
	if month == "" {
		cfg, err := s.schools.GetConfig(ctx, sess.SchoolID)
		if err != nil {
			return HistoryResponse{}, err
		}
		t := today(cfg)
		start = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
		month = start.Format(monthLayout)
	} else {
		parsed, err := time.Parse(monthLayout, month)
		if err != nil {
			return HistoryResponse{}, attendanceerrors.ErrInvalidMonth
		}
		start = parsed
	}
	end := start.AddDate(0, 1, -1)

	rows, err := s.repo.FindByStudentBetween(ctx, sess.SchoolID, studentID, start, end)
	if err != nil {
		s.logger.Error("load attendance history failed",
			zap.String("student_id", studentID),
			zap.String("month", month),
			zap.Error(err),
		)
		return HistoryResponse{}, err
	}

	entries := make([]HistoryEntry, len(rows))
	for i, r := range rows {
		entries[i] = HistoryEntry{
			Date:    r.AttendanceDate.Format(dateLayout),
			Period:  r.Period,
			Status:  roster.Status(r.Status),
			Remarks: r.Remarks,
		}
	}
	sum := roster.SummarizeList(toRecordList(rows))

	return HistoryResponse{
		StudentID:  studentID,
		Month:      month,
		Records:    entries,
		Summary:    sum,
		Percentage: sum.Percentage(),
	}, nil
}

// ApplyApprovedLeave marks the student on leave for every day in [start, end] that has no
// whole-day record yet. Days already marked by a teacher are left untouched. Only simple-mode
// schools keep whole-day rows, so other modes are left for the teacher to mark per period.
func (s *service) ApplyApprovedLeave(ctx context.Context, schoolID, studentID string, start, end time.Time) (int, error) {
	cfg, err := s.schools.GetConfig(ctx, schoolID)
	if err != nil {
		return 0, err
	}
	if cfg.Mode != school.ModeSimple {
		s.logger.Info("approved leave not applied outside simple mode",
			zap.String("school_id", schoolID),
			zap.String("student_id", studentID),
			zap.String("mode", string(cfg.Mode)),
		)
		return 0, nil
	}

	st, err := s.students.FindByID(ctx, schoolID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, attendanceerrors.ErrUnknownStudent
		}
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	existing, err := qtx.WholeDayDates(ctx, schoolID, studentID, start, end)
	if err != nil {
		return 0, err
	}
	marked := make(map[string]struct{}, len(existing))
	for _, d := range existing {
		marked[d.Format(dateLayout)] = struct{}{}
	}

	remarks := "approved leave"
	var rows []StudentAttendance
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if _, ok := marked[d.Format(dateLayout)]; ok {
			continue
		}
		rows = append(rows, StudentAttendance{
			ID:             uuid.New(),
			SchoolID:       st.SchoolID,
			ClassID:        st.ClassID,
			SectionID:      st.SectionID,
			AttendanceDate: d,
			StudentID:      st.ID,
			Status:         string(roster.StatusLeave),
			Remarks:        &remarks,
			MarkedBy:       st.ID,
		})
	}

	if err := qtx.CreateBatch(ctx, rows); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}

	s.logger.Info("approved leave applied to attendance",
		zap.String("school_id", schoolID),
		zap.String("student_id", studentID),
		zap.Int("days_marked", len(rows)),
	)
	return len(rows), nil
}

func today(cfg school.Config) time.Time {
	now := time.Now().In(cfg.TimeLocation())
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func toRecordList(rows []StudentAttendance) []roster.Record {
	out := make([]roster.Record, len(rows))
	for i, r := range rows {
		out[i] = roster.Record{
			StudentID: r.StudentID.String(),
			Status:    roster.Status(r.Status),
			Remarks:   r.Remarks,
		}
	}
	return out
}

func sheetResponse(scope Scope, cfg school.Config, sheet *roster.Sheet) SheetResponse {
	sum := sheet.Summarize()
	return SheetResponse{
		ClassID:    scope.ClassID,
		SectionID:  scope.SectionID,
		Date:       scope.Date.Format(dateLayout),
		Period:     scope.Period,
		Route:      school.Dispatch(cfg.Mode),
		Students:   sheet.Students(),
		Records:    sheet.List(),
		Summary:    sum,
		Percentage: sum.Percentage(),
	}
}
