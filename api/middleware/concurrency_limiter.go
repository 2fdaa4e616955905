package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/anoixa/image-hoster/api/common"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"
)

// ConcurrencyLimiter 限制同时处理的请求数
type ConcurrencyLimiter struct {
	sem *semaphore.Weighted
}

// NewConcurrencyLimiter 创建并发限制器，maxConcurrency 为同时放行的请求数
func NewConcurrencyLimiter(maxConcurrency int64) *ConcurrencyLimiter {
	return &ConcurrencyLimiter{
		sem: semaphore.NewWeighted(maxConcurrency),
	}
}

// Middleware 没有空位时立即返回 503
func (cl *ConcurrencyLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cl.sem.TryAcquire(1) {
			rejectBusy(c, "Server is busy, please try again later")
			return
		}
		defer cl.sem.Release(1)

		c.Next()
	}
}

// MiddlewareWithBlock 最多等待 timeout，期间客户端断开也会放弃等待
// 用于上传这类需要整块解码请求体的路由
func (cl *ConcurrencyLimiter) MiddlewareWithBlock(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		if err := cl.sem.Acquire(ctx, 1); err != nil {
			rejectBusy(c, "Too many uploads in progress, please try again later")
			return
		}
		defer cl.sem.Release(1)

		c.Next()
	}
}

func rejectBusy(c *gin.Context, message string) {
	c.Header("Retry-After", "1")
	common.RespondErrorAbort(c, http.StatusServiceUnavailable, message)
}
