package utils

import (
	"context"
	"errors"
	"io"
	"strings"
	"syscall"
)

// IsContextCanceled 判断错误是否由上下文取消引起，驱动有时只在消息里带出原因
func IsContextCanceled(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return true
	}
	return strings.Contains(err.Error(), "context canceled")
}

// IsClientDisconnect 客户端在请求处理中途断开：取消请求、上传未传完或连接被重置
func IsClientDisconnect(err error) bool {
	if IsContextCanceled(err) {
		return true
	}
	return errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, syscall.ECONNRESET)
}
