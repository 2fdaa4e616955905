package middleware

import (
	"net/http"

	"github.com/anoixa/image-hoster/api/common"
	"github.com/gin-gonic/gin"
)

// RequireIdentity 要求请求已通过 SessionAuth 认证
func RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetIdentity(c); !ok {
			common.RespondErrorAbort(c, http.StatusUnauthorized, "Access denied. Not authenticated.")
			return
		}
		c.Next()
	}
}
