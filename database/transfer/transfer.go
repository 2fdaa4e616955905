// Package transfer 在两个数据库之间复制全部业务数据（例如 SQLite 迁到 PostgreSQL）
package transfer

import (
	"context"
	"fmt"
	"log"

	"github.com/anoixa/image-hoster/database/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Strategy 目标库已存在同主键记录时的处理方式
type Strategy string

const (
	StrategySkip      Strategy = "skip"
	StrategyOverwrite Strategy = "overwrite"
	StrategyError     Strategy = "error"
)

// ParseStrategy 解析命令行传入的冲突策略
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategySkip, StrategyOverwrite, StrategyError:
		return Strategy(s), nil
	}
	return "", fmt.Errorf("invalid on-conflict strategy: %s (must be skip, overwrite, or error)", s)
}

// Options 复制选项
type Options struct {
	BatchSize  int
	OnConflict Strategy
}

// TableStats 单表统计
type TableStats struct {
	Table   string
	Read    int64
	Written int64
	Skipped int64
}

// Stats 复制统计，按复制顺序排列
type Stats struct {
	Tables []*TableStats
}

// Total 已写入的记录总数
func (s *Stats) Total() int64 {
	var total int64
	for _, t := range s.Tables {
		total += t.Written
	}
	return total
}

// tableCopier 复制一张表
type tableCopier struct {
	table string
	order string
	copy  func(ctx context.Context, source, target *gorm.DB, order string, opts Options, stats *TableStats) error
}

// 按外键依赖排序，会话不复制
var copiers = []tableCopier{
	{table: "users", order: "id", copy: copyTable[models.User]},
	{table: "user_profiles", order: "id", copy: copyTable[models.UserProfile]},
	{table: "tags", order: "id", copy: copyTable[models.Tag]},
	{table: "images", order: "id", copy: copyTable[models.Image]},
	{table: "image_tags", order: "image_id, tag_id", copy: copyTable[models.ImageTag]},
	{table: "comments", order: "id", copy: copyTable[models.Comment]},
}

// 复制后需要重置自增序列的表
var serialTables = []string{"users", "user_profiles", "tags", "images", "comments"}

// Copy 在目标库建表后逐表复制数据
func Copy(ctx context.Context, source, target *gorm.DB, opts Options) (*Stats, error) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	if opts.OnConflict == "" {
		opts.OnConflict = StrategySkip
	}

	log.Println("Migrating database schema...")
	if err := target.WithContext(ctx).AutoMigrate(models.All()...); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	stats := &Stats{}
	for _, c := range copiers {
		tableStats := &TableStats{Table: c.table}
		stats.Tables = append(stats.Tables, tableStats)

		log.Printf("Migrating %s...", c.table)
		if err := c.copy(ctx, source, target, c.order, opts, tableStats); err != nil {
			return stats, fmt.Errorf("%s migration failed: %w", c.table, err)
		}
		log.Printf("Migrated %d %s (skipped: %d)", tableStats.Written, c.table, tableStats.Skipped)
	}

	if err := resetSequences(ctx, target); err != nil {
		return stats, err
	}
	return stats, nil
}

// copyTable 按主键顺序分批读取并写入目标库，每批一个事务
func copyTable[T any](ctx context.Context, source, target *gorm.DB, order string, opts Options, stats *TableStats) error {
	for offset := 0; ; offset += opts.BatchSize {
		var batch []T
		if err := source.WithContext(ctx).Order(order).Limit(opts.BatchSize).Offset(offset).Find(&batch).Error; err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}
		stats.Read += int64(len(batch))

		err := target.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			query := tx.Omit(clause.Associations)
			switch opts.OnConflict {
			case StrategySkip:
				query = query.Clauses(clause.OnConflict{DoNothing: true})
			case StrategyOverwrite:
				query = query.Clauses(clause.OnConflict{UpdateAll: true})
			}

			result := query.Create(&batch)
			if result.Error != nil {
				return result.Error
			}

			written := result.RowsAffected
			if opts.OnConflict == StrategyOverwrite || written > int64(len(batch)) {
				written = int64(len(batch))
			}
			stats.Written += written
			stats.Skipped += int64(len(batch)) - written
			return nil
		})
		if err != nil {
			return err
		}
	}
}

// resetSequences 显式写入主键后，PostgreSQL 的序列需要推进到最大值
func resetSequences(ctx context.Context, target *gorm.DB) error {
	if target.Dialector.Name() != "postgres" {
		return nil
	}
	for _, table := range serialTables {
		sql := fmt.Sprintf(
			"SELECT setval(pg_get_serial_sequence('%s', 'id'), COALESCE((SELECT MAX(id) FROM %s), 0) + 1, false)",
			table, table,
		)
		if err := target.WithContext(ctx).Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to reset sequence of %s: %w", table, err)
		}
	}
	return nil
}
