package attendance

import (
	"go-school/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, authn gin.HandlerFunc, rbacService middleware.RBACService, rdb *redis.Client) {
	attendances := r.Group("/attendance")
	attendances.Use(authn)
	{
		attendances.GET("/sheet", middleware.RBACAuthorize(rbacService, "attendance", "read"), h.GetSheet)
		attendances.POST("",
			middleware.RBACAuthorize(rbacService, "attendance", "create"),
			middleware.Idempotency(rdb),
			h.Save,
		)
		attendances.GET("/history", middleware.RBACAuthorize(rbacService, "attendance_history", "read"), h.History)
	}
}
