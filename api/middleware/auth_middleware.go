package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/anoixa/image-hoster/api/common"
	"github.com/anoixa/image-hoster/internal/auth"
	"github.com/gin-gonic/gin"
)

const (
	ContextIdentityKey = "identity"
	ContextUserIDKey   = "user_id"
	ContextUsernameKey = "username"

	SessionCookieName = "session_token"
)

// Authenticator 按会话令牌解析当前身份，*auth.Service 满足该接口
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.Identity, error)
}

// SessionAuth 解析请求携带的会话令牌并写入上下文
// 没有令牌时按匿名请求继续，令牌无效时返回 401
func SessionAuth(authenticator Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := extractToken(c)
		if err != nil {
			common.RespondErrorAbort(c, http.StatusBadRequest, err.Error())
			return
		}
		if token == "" {
			c.Next()
			return
		}

		identity, err := authenticator.Authenticate(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, auth.ErrUnauthenticated) {
				common.RespondErrorAbort(c, http.StatusUnauthorized, "invalid or expired session")
				return
			}
			common.RespondErrorAbort(c, http.StatusInternalServerError, "failed to load session")
			return
		}

		c.Set(ContextIdentityKey, *identity)
		c.Set(ContextUserIDKey, identity.UserID)
		c.Set(ContextUsernameKey, identity.Username)
		c.Next()
	}
}

// GetIdentity 返回当前请求的身份
func GetIdentity(c *gin.Context) (auth.Identity, bool) {
	v, exists := c.Get(ContextIdentityKey)
	if !exists {
		return auth.Identity{}, false
	}
	identity, ok := v.(auth.Identity)
	return identity, ok
}

// ExtractToken 读取 Bearer 令牌，其次读取会话 Cookie
func ExtractToken(c *gin.Context) string {
	token, _ := extractToken(c)
	return token
}

func extractToken(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			return "", errors.New("Authorization field format error")
		}
		return strings.TrimSpace(parts[1]), nil
	}

	if cookie, err := c.Cookie(SessionCookieName); err == nil {
		return cookie, nil
	}
	return "", nil
}
