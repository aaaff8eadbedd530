package rbac

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, authn gin.HandlerFunc) {
	group := r.Group("/rbac")
	group.Use(authn)
	{
		group.GET("/permissions", handler.Permissions)
	}
}
