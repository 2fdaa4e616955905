package cmd

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anoixa/image-hoster/api/core"
	"github.com/anoixa/image-hoster/config"
	"github.com/anoixa/image-hoster/internal/app"
	"github.com/anoixa/image-hoster/internal/auth"
	"github.com/anoixa/image-hoster/utils"
	"github.com/spf13/cobra"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start API server",
	Run: func(cmd *cobra.Command, args []string) {
		RunServer()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func RunServer() {
	config.InitConfig()
	cfg := config.Get()

	if err := os.MkdirAll("./data", os.ModePerm); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	container := app.NewContainer(cfg)

	if err := container.InitDatabase(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	InitDatabase(container)

	if err := container.InitServices(); err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	// 启动过期会话清理任务
	stopPurge := make(chan struct{})
	if store, ok := container.GetSessionStore().(*auth.DatabaseSessionStore); ok {
		utils.SafeGo("session-purge", func() { startSessionPurge(store, stopPurge) })
	}

	// 启动gin
	server, cleanup := core.StartServer(cfg, &core.ServerDependencies{
		Provider:       container.GetDatabaseProvider(),
		AuthService:    container.GetAuthService(),
		GalleryService: container.GetGalleryService(),
	})
	go func() {
		log.Printf("Server started on %s", cfg.Addr())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// 处理退出signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	close(stopPurge)
	if cleanup != nil {
		cleanup()
		log.Println("Cleanup tasks finished.")
	}

	// 关闭 DI 容器
	if err := container.Close(); err != nil {
		log.Printf("Error closing container: %v", err)
	}

	log.Println("Server exited successfully")
}

// InitDatabase 建表
func InitDatabase(container *app.Container) {
	factory := container.GetDatabaseFactory()
	log.Printf("Initializing database, database type: %s", factory.GetProvider().Name())

	// 自动DDL
	if err := factory.AutoMigrate(); err != nil {
		log.Fatalf("Failed to auto migrate database: %v", err)
	}

	log.Println("Database initialized successfully")
}

// startSessionPurge 定期删除数据库中的过期会话
func startSessionPurge(store *auth.DatabaseSessionStore, stop <-chan struct{}) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	purge := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		n, err := store.Purge(ctx)
		if err != nil {
			log.Printf("[Auth] Failed to purge expired sessions: %v", err)
			return
		}
		if n > 0 {
			log.Printf("[Auth] Purged %d expired sessions", n)
		}
	}

	purge()
	for {
		select {
		case <-ticker.C:
			purge()
		case <-stop:
			return
		}
	}
}
