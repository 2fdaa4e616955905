package database

import (
	"context"

	"gorm.io/gorm"
)

// TxFunc 在事务内执行的工作单元，返回错误即回滚
type TxFunc func(tx *gorm.DB) error

// Provider 仓库依赖的数据库抽象，SQLite 与 PostgreSQL 共用 GormProvider 实现
type Provider interface {
	DB() *gorm.DB
	WithContext(ctx context.Context) *gorm.DB

	// TransactionWithContext 提交或整体回滚，fn 内的写入对其他连接不可见直到提交
	TransactionWithContext(ctx context.Context, fn TxFunc) error

	AutoMigrate(models ...interface{}) error
	Ping() error
	Close() error

	// Name 驱动名：sqlite 或 postgres
	Name() string
}
