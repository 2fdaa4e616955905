package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anoixa/image-hoster/database"
	"github.com/anoixa/image-hoster/database/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository 会话仓库
type Repository struct {
	db database.Provider
}

// NewRepository 创建新的会话仓库
func NewRepository(db database.Provider) *Repository {
	return &Repository{db: db}
}

// Create 写入会话记录
func (r *Repository) Create(ctx context.Context, session *models.Session) error {
	err := r.db.TransactionWithContext(ctx, func(tx *gorm.DB) error {
		return tx.Omit(clause.Associations).Create(session).Error
	})
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetByID 获取会话，不存在返回 nil, nil
func (r *Repository) GetByID(ctx context.Context, id string) (*models.Session, error) {
	var session models.Session
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

// Delete 删除会话，记录不存在时不报错
func (r *Repository) Delete(ctx context.Context, id string) error {
	return r.db.TransactionWithContext(ctx, func(tx *gorm.DB) error {
		return tx.Where("id = ?", id).Delete(&models.Session{}).Error
	})
}

// DeleteExpired 清理在 now 之前过期的会话，返回删除条数
func (r *Repository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	var affected int64
	err := r.db.TransactionWithContext(ctx, func(tx *gorm.DB) error {
		result := tx.Where("expires_at <= ?", now).Delete(&models.Session{})
		affected = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return affected, nil
}
