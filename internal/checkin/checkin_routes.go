package checkin

import (
	"go-school/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, authn gin.HandlerFunc, rbacService middleware.RBACService, rdb *redis.Client) {
	checkins := r.Group("/checkin")
	checkins.Use(authn)
	{
		checkins.GET("/status", middleware.RBACAuthorize(rbacService, "checkin", "read"), h.Status)
		checkins.POST("/in",
			middleware.RBACAuthorize(rbacService, "checkin", "create"),
			middleware.Idempotency(rdb),
			h.CheckIn,
		)
		checkins.POST("/out",
			middleware.RBACAuthorize(rbacService, "checkin", "update"),
			middleware.Idempotency(rdb),
			h.CheckOut,
		)
		checkins.GET("/history", middleware.RBACAuthorize(rbacService, "checkin_history", "read"), h.History)
	}
}
