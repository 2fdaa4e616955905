package database

import (
	"fmt"
	"log"

	"github.com/anoixa/image-hoster/config"
	"github.com/anoixa/image-hoster/database/models"
)

// Factory 持有进程内唯一的数据库提供者
type Factory struct {
	provider Provider
}

// NewFactory 按配置打开数据库，连接不可用时直接返回错误
func NewFactory(cfg *config.Config) (*Factory, error) {
	provider, err := NewGormProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database provider: %w", err)
	}
	if err := provider.Ping(); err != nil {
		_ = provider.Close()
		return nil, fmt.Errorf("database %s is unreachable: %w", provider.Name(), err)
	}

	log.Printf("[Database] %s provider ready", provider.Name())
	return &Factory{provider: provider}, nil
}

// NewFactoryWithProvider 包装已打开的提供者，测试使用
func NewFactoryWithProvider(provider Provider) *Factory {
	return &Factory{provider: provider}
}

func (f *Factory) GetProvider() Provider {
	return f.provider
}

func (f *Factory) Close() error {
	if f.provider == nil {
		return nil
	}
	return f.provider.Close()
}

// AutoMigrate 建表或补齐缺失的列与索引，不会删除已有数据
func (f *Factory) AutoMigrate() error {
	if f.provider == nil {
		return fmt.Errorf("database provider not initialized")
	}

	all := models.All()
	if err := f.provider.AutoMigrate(all...); err != nil {
		return fmt.Errorf("failed to auto migrate database: %w", err)
	}
	log.Printf("[Database] Schema up to date (%d models)", len(all))
	return nil
}
