package core

import (
	"net/http"
	"time"

	"github.com/anoixa/image-hoster/config"
	"github.com/anoixa/image-hoster/database"
	"github.com/gin-gonic/gin"
)

// HealthHandler 健康检查处理器
type HealthHandler struct {
	provider  database.Provider
	startTime time.Time
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(provider database.Provider) *HealthHandler {
	return &HealthHandler{provider: provider, startTime: time.Now()}
}

// Handle GET /health
func (h *HealthHandler) Handle(c *gin.Context) {
	checks := gin.H{
		"database": checkDatabaseHealth(h.provider),
	}

	httpStatus := http.StatusOK
	status := "ok"
	for _, result := range checks {
		if result != "ok" {
			httpStatus = http.StatusServiceUnavailable
			status = "degraded"
			break
		}
	}

	c.JSON(httpStatus, gin.H{
		"status":  status,
		"uptime":  time.Since(h.startTime).Round(time.Second).String(),
		"version": config.Version,
		"checks":  checks,
	})
}

func checkDatabaseHealth(provider database.Provider) string {
	if provider == nil {
		return "not initialized"
	}
	if err := provider.Ping(); err != nil {
		return "unavailable: " + err.Error()
	}
	return "ok"
}
