package checkin_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"go-school/internal/checkin"
	checkinerrors "go-school/internal/checkin/errors"
	checkinMock "go-school/internal/checkin/mock"
	"go-school/internal/events"
	"go-school/internal/geo"
	"go-school/internal/messaging/kafka"
	kafkaMock "go-school/internal/messaging/kafka/mock"
	"go-school/internal/school"
	"go-school/internal/shared/apperror"
	"go-school/internal/shared/session"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

type fakeSchools struct {
	cfg school.Config
}

func (f *fakeSchools) GetConfig(ctx context.Context, schoolID string) (school.Config, error) {
	return f.cfg, nil
}

var campus = geo.Fence{Center: geo.Point{Latitude: -6.2, Longitude: 106.8166}, RadiusMeters: 100}

func checkInConfig(fence *geo.Fence) school.Config {
	return school.Config{
		Mode:      school.ModeCheckInOut,
		Route:     school.Dispatch(school.ModeCheckInOut),
		Location:  fence,
		Timezone:  "Asia/Jakarta",
		LateAfter: "09:15",
	}
}

type serviceDeps struct {
	db      *sql.DB
	sqlMock sqlmock.Sqlmock
	repo    *checkinMock.MockRepository
	outbox  *kafkaMock.MockOutboxRepository
	schools *fakeSchools
	sess    session.Session
}

func setupServiceTest(t *testing.T, cfg school.Config) *serviceDeps {
	ctrl := gomock.NewController(t)
	db, sqlMock, _ := sqlmock.New()
	t.Cleanup(func() { db.Close() })

	return &serviceDeps{
		db:      db,
		sqlMock: sqlMock,
		repo:    checkinMock.NewMockRepository(ctrl),
		outbox:  kafkaMock.NewMockOutboxRepository(ctrl),
		schools: &fakeSchools{cfg: cfg},
		sess: session.Session{
			SchoolID:  uuid.NewString(),
			UserID:    uuid.NewString(),
			Role:      session.RoleTeacher,
			TeacherID: uuid.NewString(),
		},
	}
}

func (d *serviceDeps) service(now time.Time) checkin.Service {
	return checkin.NewServiceWithClock(d.db, d.repo, d.schools, d.outbox, nil, func() time.Time { return now })
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func (d *serviceDeps) expectOutbox(t *testing.T, eventType string) {
	d.outbox.EXPECT().WithTx(gomock.Any()).Return(d.outbox)
	d.outbox.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, e kafka.OutboxEvent) error {
			assert.Equal(t, events.TeacherCheckInTopic, e.Topic)
			assert.Equal(t, eventType, e.EventType)
			return nil
		})
}

func ptr[T any](v T) *T { return &v }

func TestCheckInService_CheckIn(t *testing.T) {
	ctx := context.Background()
	// 08:30 in Jakarta
	morning := time.Date(2024, 3, 11, 1, 30, 0, 0, time.UTC)

	t.Run("inside the fence", func(t *testing.T) {
		deps := setupServiceTest(t, checkInConfig(&campus))
		expectTx(t, deps.sqlMock, true)

		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().
			FindByTeacherAndDate(gomock.Any(), deps.sess.SchoolID, deps.sess.TeacherID, gomock.Any()).
			Return(nil, gorm.ErrRecordNotFound)
		deps.repo.EXPECT().
			Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, row *checkin.TeacherAttendance) error {
				assert.Equal(t, "2024-03-11", row.AttendanceDate.Format("2006-01-02"))
				assert.Equal(t, morning, row.CheckInTime)
				assert.Equal(t, checkin.StatusPresent, row.Status)
				require.NotNil(t, row.DistanceMeters)
				assert.InDelta(t, 0, *row.DistanceMeters, 0.001)
				return nil
			})
		deps.expectOutbox(t, events.EventTeacherCheckedIn)

		resp, err := deps.service(morning).CheckIn(ctx, deps.sess, checkin.CheckInRequest{
			Latitude:  ptr(-6.2),
			Longitude: ptr(106.8166),
		})

		require.NoError(t, err)
		assert.Equal(t, checkin.StateCheckedIn, resp.State)
		assert.Equal(t, "2024-03-11", resp.Date)
		assert.Equal(t, "2024-03-11T01:30:00Z", *resp.CheckInTime)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("outside the fence reports distance and radius", func(t *testing.T) {
		deps := setupServiceTest(t, checkInConfig(&campus))

		_, err := deps.service(morning).CheckIn(ctx, deps.sess, checkin.CheckInRequest{
			Latitude:  ptr(-6.2),
			Longitude: ptr(106.8266),
		})

		require.ErrorIs(t, err, checkinerrors.ErrOutOfRange)
		httpErr := apperror.ToHTTP(err)
		assert.Equal(t, 422, httpErr.Status)
		details, ok := httpErr.Details.(checkinerrors.OutOfRangeDetails)
		require.True(t, ok)
		assert.InDelta(t, 1105, details.DistanceMeters, 10)
		assert.Equal(t, 100.0, details.AllowedRadius)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("fence without a position", func(t *testing.T) {
		deps := setupServiceTest(t, checkInConfig(&campus))

		_, err := deps.service(morning).CheckIn(ctx, deps.sess, checkin.CheckInRequest{})

		assert.ErrorIs(t, err, checkinerrors.ErrLocationUnavailable)
	})

	t.Run("no fence accepts no position", func(t *testing.T) {
		deps := setupServiceTest(t, checkInConfig(nil))
		expectTx(t, deps.sqlMock, true)

		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByTeacherAndDate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, gorm.ErrRecordNotFound)
		deps.repo.EXPECT().
			Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, row *checkin.TeacherAttendance) error {
				assert.Nil(t, row.DistanceMeters)
				assert.Nil(t, row.Latitude)
				return nil
			})
		deps.expectOutbox(t, events.EventTeacherCheckedIn)

		resp, err := deps.service(morning).CheckIn(ctx, deps.sess, checkin.CheckInRequest{})

		require.NoError(t, err)
		assert.Equal(t, checkin.StateCheckedIn, resp.State)
	})

	t.Run("after late_after is late", func(t *testing.T) {
		deps := setupServiceTest(t, checkInConfig(nil))
		expectTx(t, deps.sqlMock, true)

		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByTeacherAndDate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, gorm.ErrRecordNotFound)
		deps.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		deps.expectOutbox(t, events.EventTeacherCheckedIn)

		// 10:00 in Jakarta
		resp, err := deps.service(time.Date(2024, 3, 11, 3, 0, 0, 0, time.UTC)).CheckIn(ctx, deps.sess, checkin.CheckInRequest{})

		require.NoError(t, err)
		assert.Equal(t, checkin.StatusLate, resp.Status)
	})

	t.Run("day follows the school timezone", func(t *testing.T) {
		deps := setupServiceTest(t, checkInConfig(nil))
		expectTx(t, deps.sqlMock, true)

		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().
			FindByTeacherAndDate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, schoolID, teacherID string, date time.Time) (*checkin.TeacherAttendance, error) {
				assert.Equal(t, "2024-03-11", date.Format("2006-01-02"))
				return nil, gorm.ErrRecordNotFound
			})
		deps.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		deps.expectOutbox(t, events.EventTeacherCheckedIn)

		// 03:00 on the 11th in Jakarta, still the 10th in UTC
		resp, err := deps.service(time.Date(2024, 3, 10, 20, 0, 0, 0, time.UTC)).CheckIn(ctx, deps.sess, checkin.CheckInRequest{})

		require.NoError(t, err)
		assert.Equal(t, "2024-03-11", resp.Date)
	})

	t.Run("already checked in", func(t *testing.T) {
		deps := setupServiceTest(t, checkInConfig(nil))
		expectTx(t, deps.sqlMock, false)

		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().
			FindByTeacherAndDate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(&checkin.TeacherAttendance{CheckInTime: morning}, nil)

		_, err := deps.service(morning).CheckIn(ctx, deps.sess, checkin.CheckInRequest{})

		assert.ErrorIs(t, err, checkinerrors.ErrAlreadyCheckedIn)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("completed day cannot check in again", func(t *testing.T) {
		deps := setupServiceTest(t, checkInConfig(nil))
		expectTx(t, deps.sqlMock, false)

		out := morning.Add(8 * time.Hour)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().
			FindByTeacherAndDate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(&checkin.TeacherAttendance{CheckInTime: morning, CheckOutTime: &out}, nil)

		_, err := deps.service(morning).CheckIn(ctx, deps.sess, checkin.CheckInRequest{})

		assert.ErrorIs(t, err, checkinerrors.ErrAlreadyCheckedIn)
	})

	t.Run("concurrent insert loses on unique index", func(t *testing.T) {
		deps := setupServiceTest(t, checkInConfig(nil))
		expectTx(t, deps.sqlMock, false)

		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByTeacherAndDate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, gorm.ErrRecordNotFound)
		deps.repo.EXPECT().
			Create(gomock.Any(), gomock.Any()).
			Return(&pgconn.PgError{Code: "23505", ConstraintName: "uq_teacher_attendance_day"})

		_, err := deps.service(morning).CheckIn(ctx, deps.sess, checkin.CheckInRequest{})

		assert.ErrorIs(t, err, checkinerrors.ErrAlreadyCheckedIn)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("roster schools have no check-in", func(t *testing.T) {
		cfg := checkInConfig(nil)
		cfg.Mode = school.ModeSimple
		deps := setupServiceTest(t, cfg)

		_, err := deps.service(morning).CheckIn(ctx, deps.sess, checkin.CheckInRequest{})

		assert.ErrorIs(t, err, checkinerrors.ErrModeMismatch)
	})

	t.Run("students cannot check in", func(t *testing.T) {
		deps := setupServiceTest(t, checkInConfig(nil))
		sess := session.Session{SchoolID: deps.sess.SchoolID, Role: session.RoleStudent, StudentID: uuid.NewString()}

		_, err := deps.service(morning).CheckIn(ctx, sess, checkin.CheckInRequest{})

		assert.ErrorIs(t, err, checkinerrors.ErrTeacherRequired)
	})
}

func TestCheckInService_CheckOut(t *testing.T) {
	ctx := context.Background()
	morning := time.Date(2024, 3, 11, 1, 30, 0, 0, time.UTC)
	evening := time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		deps := setupServiceTest(t, checkInConfig(&campus))
		expectTx(t, deps.sqlMock, true)

		row := &checkin.TeacherAttendance{
			ID:          uuid.New(),
			SchoolID:    uuid.MustParse(deps.sess.SchoolID),
			TeacherID:   uuid.MustParse(deps.sess.TeacherID),
			CheckInTime: morning,
			Status:      checkin.StatusPresent,
		}
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByTeacherAndDate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(row, nil)
		deps.repo.EXPECT().
			RecordCheckOut(gomock.Any(), row).
			DoAndReturn(func(ctx context.Context, r *checkin.TeacherAttendance) (bool, error) {
				require.NotNil(t, r.CheckOutTime)
				assert.Equal(t, evening, *r.CheckOutTime)
				return true, nil
			})
		deps.expectOutbox(t, events.EventTeacherCheckedOut)

		resp, err := deps.service(evening).CheckOut(ctx, deps.sess)

		require.NoError(t, err)
		assert.Equal(t, checkin.StateCompleted, resp.State)
		assert.Equal(t, "2024-03-11T09:00:00Z", *resp.CheckOutTime)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("not checked in", func(t *testing.T) {
		deps := setupServiceTest(t, checkInConfig(nil))
		expectTx(t, deps.sqlMock, false)

		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByTeacherAndDate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, gorm.ErrRecordNotFound)

		_, err := deps.service(evening).CheckOut(ctx, deps.sess)

		assert.ErrorIs(t, err, checkinerrors.ErrNotYetCheckedIn)
	})

	t.Run("already checked out", func(t *testing.T) {
		deps := setupServiceTest(t, checkInConfig(nil))
		expectTx(t, deps.sqlMock, false)

		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().
			FindByTeacherAndDate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(&checkin.TeacherAttendance{CheckInTime: morning, CheckOutTime: &evening}, nil)

		_, err := deps.service(evening).CheckOut(ctx, deps.sess)

		assert.ErrorIs(t, err, checkinerrors.ErrAlreadyCheckedOut)
	})

	t.Run("concurrent check-out already recorded", func(t *testing.T) {
		deps := setupServiceTest(t, checkInConfig(nil))
		expectTx(t, deps.sqlMock, false)

		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().
			FindByTeacherAndDate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(&checkin.TeacherAttendance{ID: uuid.New(), CheckInTime: morning}, nil)
		deps.repo.EXPECT().RecordCheckOut(gomock.Any(), gomock.Any()).Return(false, nil)

		_, err := deps.service(evening).CheckOut(ctx, deps.sess)

		assert.ErrorIs(t, err, checkinerrors.ErrAlreadyCheckedOut)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("repository failure", func(t *testing.T) {
		deps := setupServiceTest(t, checkInConfig(nil))
		expectTx(t, deps.sqlMock, false)

		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByTeacherAndDate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))

		_, err := deps.service(evening).CheckOut(ctx, deps.sess)

		assert.EqualError(t, err, "db down")
	})
}

func TestCheckInService_Status(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 11, 1, 30, 0, 0, time.UTC)

	t.Run("fresh day", func(t *testing.T) {
		deps := setupServiceTest(t, checkInConfig(nil))
		deps.repo.EXPECT().FindByTeacherAndDate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, gorm.ErrRecordNotFound)

		resp, err := deps.service(now).Status(ctx, deps.sess)

		require.NoError(t, err)
		assert.Equal(t, checkin.StateNotCheckedIn, resp.State)
		assert.Nil(t, resp.CheckInTime)
	})

	t.Run("checked in", func(t *testing.T) {
		deps := setupServiceTest(t, checkInConfig(nil))
		deps.repo.EXPECT().
			FindByTeacherAndDate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(&checkin.TeacherAttendance{CheckInTime: now, Status: checkin.StatusPresent}, nil)

		resp, err := deps.service(now).Status(ctx, deps.sess)

		require.NoError(t, err)
		assert.Equal(t, checkin.StateCheckedIn, resp.State)
		assert.Equal(t, checkin.StatusPresent, resp.Status)
	})
}

func TestCheckInService_History(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 31, 1, 30, 0, 0, time.UTC)

	t.Run("teacher defaults to own last 30 days", func(t *testing.T) {
		deps := setupServiceTest(t, checkInConfig(nil))
		deps.repo.EXPECT().
			FindBetween(gomock.Any(), deps.sess.SchoolID, deps.sess.TeacherID, gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, schoolID, teacherID string, from, to time.Time) ([]checkin.TeacherAttendance, error) {
				assert.Equal(t, "2024-03-02", from.Format("2006-01-02"))
				assert.Equal(t, "2024-03-31", to.Format("2006-01-02"))
				return []checkin.TeacherAttendance{
					{TeacherID: uuid.MustParse(deps.sess.TeacherID), AttendanceDate: time.Date(2024, 3, 30, 0, 0, 0, 0, time.UTC), CheckInTime: now},
				}, nil
			})

		got, err := deps.service(now).History(ctx, deps.sess, checkin.HistoryQuery{})

		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "2024-03-30", got[0].Date)
	})

	t.Run("teacher cannot read another teacher", func(t *testing.T) {
		deps := setupServiceTest(t, checkInConfig(nil))

		_, err := deps.service(now).History(ctx, deps.sess, checkin.HistoryQuery{TeacherID: uuid.NewString()})

		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})

	t.Run("admin reads whole school in range", func(t *testing.T) {
		deps := setupServiceTest(t, checkInConfig(nil))
		admin := session.Session{SchoolID: deps.sess.SchoolID, Role: session.RoleSchoolAdmin}
		deps.repo.EXPECT().FindBetween(gomock.Any(), admin.SchoolID, "", gomock.Any(), gomock.Any()).Return(nil, nil)

		got, err := deps.service(now).History(ctx, admin, checkin.HistoryQuery{From: "2024-03-01", To: "2024-03-15"})

		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("inverted range", func(t *testing.T) {
		deps := setupServiceTest(t, checkInConfig(nil))
		admin := session.Session{SchoolID: deps.sess.SchoolID, Role: session.RoleSchoolAdmin}

		_, err := deps.service(now).History(ctx, admin, checkin.HistoryQuery{From: "2024-03-15", To: "2024-03-01"})

		assert.ErrorIs(t, err, checkinerrors.ErrInvalidDateRange)
	})
}
