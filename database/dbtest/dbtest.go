// Package dbtest 为仓库与服务测试提供内存 SQLite 数据库
package dbtest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/anoixa/image-hoster/database"
	"github.com/anoixa/image-hoster/database/models"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

// NewProvider 创建一个已完成迁移的独立内存数据库
// 连接数限制为 1，并发测试中的写入因此串行执行而不会出现 SQLITE_LOCKED；
// 单连接下预编译语句缓存会在事务内争用连接，因此关闭
func NewProvider(t testing.TB) database.Provider {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	provider, err := database.OpenSQLite(
		fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
		database.WithoutPreparedStatements(),
		database.WithLogger(logger.Default.LogMode(logger.Silent)),
	)
	require.NoError(t, err)

	sqlDB, err := provider.SQLDB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, provider.AutoMigrate(models.All()...))

	t.Cleanup(func() {
		_ = provider.Close()
	})
	return provider
}
