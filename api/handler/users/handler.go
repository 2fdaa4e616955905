package users

import (
	"github.com/anoixa/image-hoster/internal/auth"
)

// Handler 用户注册、登录与登出处理器
type Handler struct {
	authService *auth.Service
	secure      bool
}

// NewHandler 创建用户处理器，secure 控制会话 Cookie 的 Secure 标记
func NewHandler(authService *auth.Service, secure bool) *Handler {
	return &Handler{authService: authService, secure: secure}
}
