package images

import (
	"context"

	"github.com/anoixa/image-hoster/database/models"
)

// RepositoryInterface 图片仓库接口
type RepositoryInterface interface {
	// GetByID 获取图片及其所有者、标签与评论，不存在返回 ErrNotFound
	GetByID(ctx context.Context, id uint) (*models.Image, error)
	// ListAll 按插入顺序返回全部图片
	ListAll(ctx context.Context) ([]*models.Image, error)
	// Create 写入图片与标签关联
	Create(ctx context.Context, image *models.Image) error
	// Update 整体替换标题、描述、数据、标签与时间，不修改所有者
	Update(ctx context.Context, image *models.Image) error
	// Delete 删除图片及其关联，标签本身保留
	Delete(ctx context.Context, id uint) error
	// TagsOf 按提交顺序返回图片的标签
	TagsOf(ctx context.Context, imageID uint) ([]*models.Tag, error)
}

// 确保 Repository 实现了 RepositoryInterface
var _ RepositoryInterface = (*Repository)(nil)
