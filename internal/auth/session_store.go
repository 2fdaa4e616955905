package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/anoixa/image-hoster/database/models"
	"github.com/anoixa/image-hoster/database/repo/sessions"
)

// SessionStore 服务端会话存储
// Load 在会话不存在或已过期时返回 nil, nil
type SessionStore interface {
	Save(ctx context.Context, session *models.Session) error
	Load(ctx context.Context, id string) (*models.Session, error)
	Remove(ctx context.Context, id string) error
}

// DatabaseSessionStore 基于数据库表的会话存储
type DatabaseSessionStore struct {
	repo *sessions.Repository
	now  func() time.Time
}

// NewDatabaseSessionStore 创建数据库会话存储
func NewDatabaseSessionStore(repo *sessions.Repository) *DatabaseSessionStore {
	return &DatabaseSessionStore{repo: repo, now: time.Now}
}

func (s *DatabaseSessionStore) Save(ctx context.Context, session *models.Session) error {
	return s.repo.Create(ctx, session)
}

func (s *DatabaseSessionStore) Load(ctx context.Context, id string) (*models.Session, error) {
	session, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return nil, nil
	}
	if session.Expired(s.now()) {
		// 过期会话顺带删除，失败不影响本次判断
		_ = s.repo.Delete(ctx, id)
		return nil, nil
	}
	return session, nil
}

func (s *DatabaseSessionStore) Remove(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Purge 清理全部过期会话
func (s *DatabaseSessionStore) Purge(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpired(ctx, s.now())
}
