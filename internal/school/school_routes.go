package school

import (
	"go-school/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, authn gin.HandlerFunc, rbacService middleware.RBACService) {
	schools := r.Group("/schools")
	schools.Use(authn)
	{
		schools.GET("/:id", middleware.RBACAuthorize(rbacService, "school", "read"), h.Get)
		schools.PUT("/:id/location", middleware.RBACAuthorize(rbacService, "school", "update"), h.UpdateLocation)
		schools.DELETE("/:id/location", middleware.RBACAuthorize(rbacService, "school", "update"), h.ClearLocation)
		schools.PUT("/:id/attendance-settings", middleware.RBACAuthorize(rbacService, "school", "update"), h.UpdateAttendanceSettings)
	}

	locations := r.Group("/locations")
	locations.Use(authn)
	{
		locations.GET("/search", middleware.RBACAuthorize(rbacService, "school", "update"), h.SearchAddress)
	}
}
