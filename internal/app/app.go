package app

import (
	"fmt"
	"log"

	"github.com/anoixa/image-hoster/config"
	"github.com/anoixa/image-hoster/database"
	"github.com/anoixa/image-hoster/database/repo/accounts"
	"github.com/anoixa/image-hoster/database/repo/images"
	"github.com/anoixa/image-hoster/database/repo/sessions"
	"github.com/anoixa/image-hoster/database/repo/tags"
	"github.com/anoixa/image-hoster/internal/auth"
	"github.com/anoixa/image-hoster/internal/gallery"
	"github.com/go-redis/redis/v8"
)

// Container 依赖注入容器 - 管理所有服务的生命周期
type Container struct {
	config          *config.Config
	databaseFactory *database.Factory
	redisClient     *redis.Client

	AccountsRepo *accounts.Repository
	ImagesRepo   *images.Repository
	TagsRepo     *tags.Repository
	SessionsRepo *sessions.Repository

	sessionStore   auth.SessionStore
	authService    *auth.Service
	galleryService *gallery.Service
}

// NewContainer 创建新的依赖注入容器
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config: cfg,
	}
}

// NewContainerWithFactory 使用已有的数据库工厂创建容器
func NewContainerWithFactory(cfg *config.Config, factory *database.Factory) *Container {
	return &Container{
		config:          cfg,
		databaseFactory: factory,
	}
}

// Init 初始化数据库与全部服务
func (c *Container) Init() error {
	if err := c.InitDatabase(); err != nil {
		return err
	}
	if err := c.InitServices(); err != nil {
		return err
	}
	return nil
}

// InitDatabase 初始化数据库工厂与仓库
func (c *Container) InitDatabase() error {
	log.Println("Initializing DI container...")

	if c.databaseFactory == nil {
		factory, err := database.NewFactory(c.config)
		if err != nil {
			return fmt.Errorf("failed to initialize database factory: %w", err)
		}
		c.databaseFactory = factory
	}

	c.initRepositories()
	return nil
}

// InitServices 初始化会话存储、认证与图片服务
func (c *Container) InitServices() error {
	if c.databaseFactory == nil {
		return fmt.Errorf("database not initialized")
	}

	if err := c.initSessionStore(); err != nil {
		return fmt.Errorf("failed to initialize session store: %w", err)
	}

	jwtService, err := auth.NewJWTService(c.config.JWTSecret, c.config.SessionTTL)
	if err != nil {
		return fmt.Errorf("failed to initialize jwt service: %w", err)
	}

	c.authService = auth.NewService(c.AccountsRepo, c.sessionStore, jwtService)
	c.galleryService = gallery.NewService(c.ImagesRepo, c.TagsRepo)

	log.Println("DI container initialized successfully")
	return nil
}

// initRepositories 初始化所有仓库
func (c *Container) initRepositories() {
	provider := c.databaseFactory.GetProvider()
	c.AccountsRepo = accounts.NewRepository(provider)
	c.ImagesRepo = images.NewRepository(provider)
	c.TagsRepo = tags.NewRepository(provider)
	c.SessionsRepo = sessions.NewRepository(provider)
}

// initSessionStore 按配置选择会话存储
func (c *Container) initSessionStore() error {
	switch c.config.SessionStore {
	case "redis":
		client, err := c.getRedisClient()
		if err != nil {
			return err
		}
		c.sessionStore = auth.NewRedisSessionStore(client)
		log.Printf("Session store: redis (%s)", c.config.RedisAddr)
	case "database", "":
		c.sessionStore = auth.NewDatabaseSessionStore(c.SessionsRepo)
		log.Println("Session store: database")
	default:
		return fmt.Errorf("unsupported session store: %s", c.config.SessionStore)
	}
	return nil
}

// getRedisClient 创建 Redis 客户端，关闭容器时一并关闭
func (c *Container) getRedisClient() (*redis.Client, error) {
	client, err := auth.NewRedisClient(auth.RedisConfig{
		Address:  c.config.RedisAddr,
		Password: c.config.RedisPassword,
		DB:       c.config.RedisDB,
	})
	if err != nil {
		return nil, err
	}
	c.redisClient = client
	return client, nil
}

// GetConfig 获取配置
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetDatabaseFactory 获取数据库工厂
func (c *Container) GetDatabaseFactory() *database.Factory {
	return c.databaseFactory
}

// GetDatabaseProvider 获取数据库提供者
func (c *Container) GetDatabaseProvider() database.Provider {
	if c.databaseFactory == nil {
		return nil
	}
	return c.databaseFactory.GetProvider()
}

// GetSessionStore 获取会话存储
func (c *Container) GetSessionStore() auth.SessionStore {
	return c.sessionStore
}

// GetAuthService 获取认证服务
func (c *Container) GetAuthService() *auth.Service {
	return c.authService
}

// GetGalleryService 获取图片服务
func (c *Container) GetGalleryService() *gallery.Service {
	return c.galleryService
}

// Close 关闭所有服务
func (c *Container) Close() error {
	log.Println("Closing DI container...")

	var firstErr error
	if c.redisClient != nil {
		if err := c.redisClient.Close(); err != nil {
			log.Printf("Error closing redis client: %v", err)
			firstErr = err
		}
	}
	if c.databaseFactory != nil {
		if err := c.databaseFactory.Close(); err != nil {
			log.Printf("Error closing database factory: %v", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
