package rbac

import (
	"net/http"

	"go-school/internal/shared/apperror"
	"go-school/internal/shared/response"
	"go-school/internal/shared/session"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Permissions returns the caller's own grants so clients can hide actions they cannot take.
func (h *Handler) Permissions(c *gin.Context) {
	sess := session.FromGin(c)
	perms, err := h.service.Permissions(c.Request.Context(), string(sess.Role), sess.SchoolID)
	if err != nil {
		httpErr := apperror.ToHTTP(err)
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
		return
	}
	response.Success(c, http.StatusOK, perms, nil)
}
