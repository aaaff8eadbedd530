package checkin_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-school/internal/checkin"
	checkinerrors "go-school/internal/checkin/errors"
	"go-school/internal/shared/apperror"
	"go-school/internal/shared/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	checkInFn  func(ctx context.Context, sess session.Session, req checkin.CheckInRequest) (checkin.CheckInStateResponse, error)
	checkOutFn func(ctx context.Context, sess session.Session) (checkin.CheckInStateResponse, error)
	statusFn   func(ctx context.Context, sess session.Session) (checkin.CheckInStateResponse, error)
	historyFn  func(ctx context.Context, sess session.Session, q checkin.HistoryQuery) ([]checkin.CheckInStateResponse, error)
}

func (f *fakeService) CheckIn(ctx context.Context, sess session.Session, req checkin.CheckInRequest) (checkin.CheckInStateResponse, error) {
	return f.checkInFn(ctx, sess, req)
}
func (f *fakeService) CheckOut(ctx context.Context, sess session.Session) (checkin.CheckInStateResponse, error) {
	return f.checkOutFn(ctx, sess)
}
func (f *fakeService) Status(ctx context.Context, sess session.Session) (checkin.CheckInStateResponse, error) {
	return f.statusFn(ctx, sess)
}
func (f *fakeService) History(ctx context.Context, sess session.Session, q checkin.HistoryQuery) ([]checkin.CheckInStateResponse, error) {
	return f.historyFn(ctx, sess, q)
}

type envelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string                 `json:"code"`
		Details map[string]interface{} `json:"details"`
	} `json:"error"`
}

func newContext(method, target, body string, sess session.Session) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	session.Set(c, sess)
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	c.Request = r
	return c, w
}

func teacherSession() session.Session {
	return session.Session{SchoolID: uuid.NewString(), UserID: uuid.NewString(), Role: session.RoleTeacher, TeacherID: uuid.NewString()}
}

func TestHandler_CheckIn(t *testing.T) {
	sess := teacherSession()

	t.Run("with position", func(t *testing.T) {
		h := checkin.NewHandler(&fakeService{checkInFn: func(ctx context.Context, s session.Session, req checkin.CheckInRequest) (checkin.CheckInStateResponse, error) {
			assert.Equal(t, sess.TeacherID, s.TeacherID)
			require.NotNil(t, req.Latitude)
			assert.Equal(t, -6.2, *req.Latitude)
			return checkin.CheckInStateResponse{TeacherID: s.TeacherID, State: checkin.StateCheckedIn}, nil
		}})

		c, w := newContext(http.MethodPost, "/checkin/in", `{"latitude":-6.2,"longitude":106.8166}`, sess)
		h.CheckIn(c)

		require.Equal(t, http.StatusCreated, w.Code)
		var body envelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		var data checkin.CheckInStateResponse
		require.NoError(t, json.Unmarshal(body.Data, &data))
		assert.Equal(t, checkin.StateCheckedIn, data.State)
	})

	t.Run("empty body", func(t *testing.T) {
		h := checkin.NewHandler(&fakeService{checkInFn: func(ctx context.Context, s session.Session, req checkin.CheckInRequest) (checkin.CheckInStateResponse, error) {
			assert.Nil(t, req.Latitude)
			return checkin.CheckInStateResponse{State: checkin.StateCheckedIn}, nil
		}})

		c, w := newContext(http.MethodPost, "/checkin/in", "", sess)
		h.CheckIn(c)

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("out of range", func(t *testing.T) {
		h := checkin.NewHandler(&fakeService{checkInFn: func(ctx context.Context, s session.Session, req checkin.CheckInRequest) (checkin.CheckInStateResponse, error) {
			return checkin.CheckInStateResponse{}, checkinerrors.OutOfRange(240.5, 100)
		}})

		c, w := newContext(http.MethodPost, "/checkin/in", `{"latitude":-6.2,"longitude":106.82}`, sess)
		h.CheckIn(c)

		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		var body envelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, apperror.CodeOutOfRange, body.Error.Code)
		assert.Equal(t, 240.5, body.Error.Details["distance_meters"])
		assert.Equal(t, 100.0, body.Error.Details["allowed_radius"])
	})

	t.Run("malformed body", func(t *testing.T) {
		h := checkin.NewHandler(&fakeService{})

		c, w := newContext(http.MethodPost, "/checkin/in", `{"latitude":"north"}`, sess)
		h.CheckIn(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandler_CheckOut(t *testing.T) {
	sess := teacherSession()
	h := checkin.NewHandler(&fakeService{checkOutFn: func(ctx context.Context, s session.Session) (checkin.CheckInStateResponse, error) {
		return checkin.CheckInStateResponse{}, checkinerrors.ErrNotYetCheckedIn
	}})

	c, w := newContext(http.MethodPost, "/checkin/out", "", sess)
	h.CheckOut(c)

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), apperror.CodeNotYetCheckedIn)
}

func TestHandler_Status(t *testing.T) {
	sess := teacherSession()
	h := checkin.NewHandler(&fakeService{statusFn: func(ctx context.Context, s session.Session) (checkin.CheckInStateResponse, error) {
		return checkin.CheckInStateResponse{TeacherID: s.TeacherID, Date: "2024-03-11", State: checkin.StateNotCheckedIn}, nil
	}})

	c, w := newContext(http.MethodGet, "/checkin/status", "", sess)
	h.Status(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"state":"not_checked_in"`)
}

func TestHandler_History(t *testing.T) {
	sess := session.Session{SchoolID: uuid.NewString(), Role: session.RoleSchoolAdmin}
	h := checkin.NewHandler(&fakeService{historyFn: func(ctx context.Context, s session.Session, q checkin.HistoryQuery) ([]checkin.CheckInStateResponse, error) {
		assert.Equal(t, "2024-03-01", q.From)
		return []checkin.CheckInStateResponse{{Date: "2024-03-02", State: checkin.StateCompleted}}, nil
	}})

	c, w := newContext(http.MethodGet, "/checkin/history?from=2024-03-01", "", sess)
	h.History(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)
}
