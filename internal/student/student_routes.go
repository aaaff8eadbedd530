package student

import (
	"go-school/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, authn gin.HandlerFunc, rbacService middleware.RBACService) {
	students := r.Group("/students")
	students.Use(authn)
	{
		students.GET("", middleware.RBACAuthorize(rbacService, "student", "read"), h.List)
		students.GET("/:id", middleware.RBACAuthorize(rbacService, "student", "read"), h.GetByID)
	}
}
