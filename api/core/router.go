package core

import (
	"net/http"
	"strings"
	"time"

	"github.com/anoixa/image-hoster/api/common"
	handlerImages "github.com/anoixa/image-hoster/api/handler/images"
	handlerUsers "github.com/anoixa/image-hoster/api/handler/users"
	"github.com/anoixa/image-hoster/api/middleware"
	"github.com/anoixa/image-hoster/config"
	"github.com/anoixa/image-hoster/database"
	"github.com/anoixa/image-hoster/internal/auth"
	"github.com/anoixa/image-hoster/internal/gallery"
	"github.com/gin-gonic/gin"
)

// RouterDependencies 路由注册依赖
type RouterDependencies struct {
	Provider        database.Provider
	AuthService     *auth.Service
	GalleryService  *gallery.Service
	AuthRateLimiter *middleware.IPRateLimiter
	APIRateLimiter  *middleware.IPRateLimiter
	Config          *config.Config
}

// 同时解码上传内容的请求数
const maxConcurrentUploads = 8

// RegisterRoutes 注册所有路由
func RegisterRoutes(router *gin.Engine, deps *RouterDependencies) {
	registerBasicRoutes(router, deps)
	registerAPIRoutes(router, deps)
}

// registerBasicRoutes 注册基础路由
func registerBasicRoutes(router *gin.Engine, deps *RouterDependencies) {
	healthHandler := NewHealthHandler(deps.Provider)
	router.GET("/health", healthHandler.Handle)

	router.GET("/version", func(context *gin.Context) {
		common.RespondSuccess(context, gin.H{
			"version": config.Version,
			"commit":  config.CommitHash,
		})
	})

	router.GET("/metrics", func(context *gin.Context) {
		context.JSON(http.StatusOK, middleware.GetMetrics())
	})
}

// registerAPIRoutes 注册 API 路由
func registerAPIRoutes(router *gin.Engine, deps *RouterDependencies) {
	cfg := deps.Config
	secureCookie := strings.HasPrefix(cfg.BaseURL(), "https://")

	userHandler := handlerUsers.NewHandler(deps.AuthService, secureCookie)
	imageHandler := handlerImages.NewHandler(deps.GalleryService, cfg.UploadLimitBytes())
	uploadLimiter := middleware.NewConcurrencyLimiter(maxConcurrentUploads).MiddlewareWithBlock(10 * time.Second)

	apiGroup := router.Group("/api")
	apiGroup.Use(func(context *gin.Context) { // 所有API禁止缓存
		context.Header("Cache-Control", "no-store")
		context.Next()
	})
	{
		usersGroup := apiGroup.Group("/users")
		usersGroup.Use(deps.AuthRateLimiter.Middleware())
		{
			usersGroup.POST("/register", userHandler.Register) // POST /api/users/register
			usersGroup.POST("/login", userHandler.Login)       // POST /api/users/login
			usersGroup.POST("/logout", userHandler.Logout)     // POST /api/users/logout
		}

		v := apiGroup.Group("")
		v.Use(deps.APIRateLimiter.Middleware())
		v.Use(middleware.SessionAuth(deps.AuthService))
		{
			v.GET("/images", imageHandler.ListImages)                 // GET /api/images
			v.GET("/images/:id", imageHandler.GetImage)               // GET /api/images/{id}
			v.GET("/images/:id/file", imageHandler.GetImageFile)      // GET /api/images/{id}/file
			v.GET("/tags/:name/images", imageHandler.ListImagesByTag) // GET /api/tags/{name}/images

			owner := v.Group("")
			owner.Use(middleware.RequireIdentity())
			{
				owner.POST("/images", uploadLimiter, imageHandler.UploadImage)    // POST /api/images
				owner.GET("/images/:id/edit", imageHandler.EditImage)             // GET /api/images/{id}/edit
				owner.PUT("/images/:id", uploadLimiter, imageHandler.UpdateImage) // PUT /api/images/{id}
				owner.DELETE("/images/:id", imageHandler.DeleteImage)             // DELETE /api/images/{id}
			}
		}
	}
}
