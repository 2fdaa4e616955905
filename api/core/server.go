package core

import (
	"net/http"
	"time"

	"github.com/anoixa/image-hoster/api/middleware"
	"github.com/anoixa/image-hoster/config"
	"github.com/anoixa/image-hoster/database"
	"github.com/anoixa/image-hoster/internal/auth"
	"github.com/anoixa/image-hoster/internal/gallery"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// ServerDependencies 服务器依赖项
type ServerDependencies struct {
	Provider       database.Provider
	AuthService    *auth.Service
	GalleryService *gallery.Service
}

// 启动gin
func setupRouter(cfg *config.Config, deps *ServerDependencies) (*gin.Engine, func()) {
	router := gin.New()

	// 仅在开发版本时启用 gin 日志
	if config.IsDevelopment() {
		router.Use(gin.Logger())
	}
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.BaseURL()},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	_ = router.SetTrustedProxies(nil)

	// 限制上传文件大小
	router.MaxMultipartMemory = cfg.UploadLimitBytes()

	// 并发限制（100并发，避免内存过载）
	concurrencyLimiter := middleware.NewConcurrencyLimiter(100)
	router.Use(concurrencyLimiter.Middleware())

	// 请求ID追踪
	router.Use(middleware.RequestID())

	// 基础监控指标
	router.Use(middleware.Metrics())

	// 速率限制
	authRateLimiter := middleware.NewIPRateLimiter(cfg.RateLimitAuthRPS, cfg.RateLimitAuthBurst, cfg.RateLimitExpireTime)
	apiRateLimiter := middleware.NewIPRateLimiter(cfg.RateLimitApiRPS, cfg.RateLimitApiBurst, cfg.RateLimitExpireTime)
	cleanup := func() {
		authRateLimiter.StopCleanup()
		apiRateLimiter.StopCleanup()
	}

	RegisterRoutes(router, &RouterDependencies{
		Provider:        deps.Provider,
		AuthService:     deps.AuthService,
		GalleryService:  deps.GalleryService,
		AuthRateLimiter: authRateLimiter,
		APIRateLimiter:  apiRateLimiter,
		Config:          cfg,
	})

	return router, cleanup
}

// StartServer 创建 http.Server
func StartServer(cfg *config.Config, deps *ServerDependencies) (*http.Server, func()) {
	router, clean := setupRouter(cfg, deps)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}

	return srv, clean
}
