package middleware_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-school/internal/auth"
	"go-school/internal/domain"
	"go-school/internal/metrics"
	"go-school/internal/middleware"
	"go-school/internal/shared/session"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const jwtSecret = "middleware-secret"

type envelope struct {
	Ok    bool `json:"ok"`
	Error *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.NotNil(t, env.Error)
	return env.Error.Code
}

func init() {
	gin.SetMode(gin.TestMode)
}

func TestAuthMiddleware(t *testing.T) {
	sess := session.Session{SchoolID: uuid.NewString(), UserID: "u-1", Role: session.RoleStudent, StudentID: uuid.NewString()}

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.ContextLogger(zap.NewNop()), middleware.AuthMiddleware(jwtSecret))
	r.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, session.FromGin(c))
	})

	t.Run("bearer token", func(t *testing.T) {
		token, err := auth.IssueToken(jwtSecret, sess, time.Hour, time.Now())
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var got session.Session
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, sess, got)
		assert.NotEmpty(t, w.Header().Get(middleware.HeaderRequestID))
	})

	t.Run("cookie token", func(t *testing.T) {
		token, err := auth.IssueToken(jwtSecret, sess, time.Hour, time.Now())
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "UNAUTHORIZED", errorCode(t, w))
	})

	t.Run("non uuid ids are rejected", func(t *testing.T) {
		bad := sess
		bad.StudentID = "st-1"
		token, err := auth.IssueToken(jwtSecret, bad, time.Hour, time.Now())
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "INVALID_TOKEN", errorCode(t, w))
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := auth.IssueToken(jwtSecret, sess, time.Minute, time.Now().Add(-time.Hour))
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "TOKEN_EXPIRED", errorCode(t, w))
	})

	t.Run("request id is echoed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set(middleware.HeaderRequestID, "rid-42")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, "rid-42", w.Header().Get(middleware.HeaderRequestID))
	})
}

type fakeRBAC struct {
	got     domain.EnforceRequest
	allowed bool
	err     error
}

func (f *fakeRBAC) Enforce(req domain.EnforceRequest) (bool, error) {
	f.got = req
	return f.allowed, f.err
}

func withSession(sess session.Session) gin.HandlerFunc {
	return func(c *gin.Context) { session.Set(c, sess) }
}

func TestRBACAuthorize(t *testing.T) {
	teacher := session.Session{SchoolID: "sch-1", UserID: "u-1", Role: session.RoleTeacher, TeacherID: "t-1"}
	ok := func(c *gin.Context) { c.Status(http.StatusNoContent) }

	t.Run("allowed", func(t *testing.T) {
		rbac := &fakeRBAC{allowed: true}
		r := gin.New()
		r.POST("/checkin/in", withSession(teacher), middleware.RBACAuthorize(rbac, "checkin", "create"), ok)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/checkin/in", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, domain.EnforceRequest{Role: "teacher", SchoolID: "sch-1", Resource: "checkin", Action: "create"}, rbac.got)
	})

	t.Run("denied", func(t *testing.T) {
		r := gin.New()
		r.POST("/leaves/:id/process", withSession(teacher), middleware.RBACAuthorize(&fakeRBAC{}, "leave", "approve"), ok)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/leaves/1/process", nil))
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "FORBIDDEN", errorCode(t, w))
	})

	t.Run("no session", func(t *testing.T) {
		r := gin.New()
		r.GET("/x", middleware.RBACAuthorize(&fakeRBAC{allowed: true}, "leave", "read"), ok)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("enforcer error", func(t *testing.T) {
		r := gin.New()
		r.GET("/x", withSession(teacher), middleware.RBACAuthorize(&fakeRBAC{err: errors.New("boom")}, "leave", "read"), ok)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestRateLimitByUser(t *testing.T) {
	r := gin.New()
	r.GET("/x",
		withSession(session.Session{SchoolID: "sch-1", UserID: "u-1", Role: session.RoleTeacher}),
		middleware.RateLimitByUser(1, 1),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "TOO_MANY_REQUESTS", errorCode(t, w))
}

func TestHTTPMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	r := gin.New()
	r.Use(middleware.HTTPMetrics(m))
	r.GET("/leaves/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, id := range []string{"a", "b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/leaves/"+id, nil))
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	// one series for the template, one for unmatched
	n, err := testutil.GatherAndCount(reg, "school_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestIdempotency(t *testing.T) {
	user := session.Session{SchoolID: "sch-1", UserID: "u-1", Role: session.RoleTeacher, TeacherID: "t-1"}
	cacheKey := middleware.IdempotencyCacheKey("/checkin/in", "u-1", "key-1")
	body := `{"ok":true,"data":{"state":"checked_in"}}`

	newRouter := func(t *testing.T, calls *int) (*gin.Engine, redismock.ClientMock) {
		db, mock := redismock.NewClientMock()
		t.Cleanup(func() { db.Close() })
		r := gin.New()
		r.POST("/checkin/in", withSession(user), middleware.Idempotency(db), func(c *gin.Context) {
			*calls++
			c.Data(http.StatusCreated, "application/json; charset=utf-8", []byte(body))
		})
		return r, mock
	}
	post := func(r *gin.Engine, key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/checkin/in", nil)
		if key != "" {
			req.Header.Set(middleware.HeaderIdempotencyKey, key)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	t.Run("first request is stored", func(t *testing.T) {
		calls := 0
		r, mock := newRouter(t, &calls)

		stored, err := json.Marshal(struct {
			Status int    `json:"status"`
			Body   string `json:"body"`
		}{http.StatusCreated, body})
		require.NoError(t, err)

		mock.ExpectGet(cacheKey).RedisNil()
		mock.ExpectSetNX(cacheKey+":lock", "locked", 30*time.Second).SetVal(true)
		mock.ExpectSet(cacheKey, string(stored), 24*time.Hour).SetVal("OK")
		mock.ExpectDel(cacheKey + ":lock").SetVal(1)

		w := post(r, "key-1")
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, 1, calls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("replay", func(t *testing.T) {
		calls := 0
		r, mock := newRouter(t, &calls)

		mock.ExpectGet(cacheKey).SetVal(`{"status":201,"body":"{\"ok\":true}"}`)

		w := post(r, "key-1")
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, `{"ok":true}`, w.Body.String())
		assert.Equal(t, "true", w.Header().Get(middleware.HeaderReplayed))
		assert.Equal(t, 0, calls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("in flight", func(t *testing.T) {
		calls := 0
		r, mock := newRouter(t, &calls)

		mock.ExpectGet(cacheKey).RedisNil()
		mock.ExpectSetNX(cacheKey+":lock", "locked", 30*time.Second).SetVal(false)

		w := post(r, "key-1")
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "PROCESSING", errorCode(t, w))
		assert.Equal(t, 0, calls)
	})

	t.Run("no key passes through", func(t *testing.T) {
		calls := 0
		r, mock := newRouter(t, &calls)

		w := post(r, "")
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, 1, calls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
