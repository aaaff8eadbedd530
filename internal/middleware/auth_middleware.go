package middleware

import (
	"strings"

	"go-school/internal/auth"
	autherrors "go-school/internal/auth/errors"
	"go-school/internal/shared/contextutil"
	"go-school/internal/shared/response"
	"go-school/internal/shared/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthMiddleware verifies the bearer token (or access_token cookie) and installs the session.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !found {
			tokenString = ""
		}

		if tokenString == "" {
			if cookie, err := c.Cookie("access_token"); err == nil {
				tokenString = cookie
			}
		}

		if tokenString == "" {
			abortWithError(c, autherrors.ErrTokenNotFound)
			return
		}

		sess, err := auth.ParseToken(secret, tokenString)
		if err != nil {
			abortWithError(c, err)
			return
		}

		session.Set(c, sess)

		ctx := contextutil.WithUserID(c.Request.Context(), sess.UserID)
		log := contextutil.GetLogger(ctx, nil).With(
			zap.String("user_id", sess.UserID),
			zap.String("school_id", sess.SchoolID),
		)
		ctx = contextutil.WithLogger(ctx, log)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func abortWithError(c *gin.Context, err error) {
	response.FromError(c, err)
	c.Abort()
}
