package rbac

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-school/internal/shared/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_Permissions(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := newTestService(t, &fakeRepo{})
	h := NewHandler(svc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/rbac/permissions", nil).WithContext(context.Background())
	session.Set(c, session.Session{SchoolID: "school-1", UserID: "u1", Role: session.RoleTeacher, TeacherID: "t1"})

	h.Permissions(c)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Ok   bool                 `json:"ok"`
		Data []PermissionResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Ok)
	assert.Contains(t, body.Data, PermissionResponse{Resource: "checkin", Action: "create"})
}
