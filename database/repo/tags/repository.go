package tags

import (
	"context"
	"errors"
	"fmt"

	"github.com/anoixa/image-hoster/database"
	"github.com/anoixa/image-hoster/database/models"
	"gorm.io/gorm"
)

// ErrConflict 同名标签已被并发创建
var ErrConflict = errors.New("tag name already exists")

// Repository 标签仓库
type Repository struct {
	db database.Provider
}

// NewRepository 创建新的标签仓库
func NewRepository(db database.Provider) *Repository {
	return &Repository{db: db}
}

// FindByName 按名称精确查找，不存在时返回 nil, nil
func (r *Repository) FindByName(ctx context.Context, name string) (*models.Tag, error) {
	var tag models.Tag
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&tag).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tag, nil
}

// Create 在独立事务中创建标签
// 唯一索引是最终裁决者，冲突时返回 ErrConflict，调用方应重新读取
func (r *Repository) Create(ctx context.Context, name string) (*models.Tag, error) {
	tag := &models.Tag{Name: name}
	err := r.db.TransactionWithContext(ctx, func(tx *gorm.DB) error {
		return tx.Create(tag).Error
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %q", ErrConflict, name)
		}
		return nil, fmt.Errorf("failed to create tag %q: %w", name, err)
	}
	return tag, nil
}

// ListAll 按名称排序返回全部标签
func (r *Repository) ListAll(ctx context.Context) ([]*models.Tag, error) {
	var tags []*models.Tag
	err := r.db.WithContext(ctx).Order("name asc").Find(&tags).Error
	return tags, err
}

// ImagesOf 分页查询引用该标签的图片，不加载图片自身的标签
func (r *Repository) ImagesOf(ctx context.Context, tagID uint, page, pageSize int) ([]*models.Image, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	var images []*models.Image
	var total int64

	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&models.Image{}).
			Joins("JOIN image_tags ON image_tags.image_id = images.id").
			Where("image_tags.tag_id = ?", tagID)
	}

	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := base().Preload("User").Order("images.id asc").Offset(offset).Limit(pageSize).Find(&images).Error
	return images, total, err
}
