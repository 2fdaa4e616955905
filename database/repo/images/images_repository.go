package images

import (
	"context"
	"errors"
	"fmt"

	"github.com/anoixa/image-hoster/database"
	"github.com/anoixa/image-hoster/database/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound 图片不存在
var ErrNotFound = errors.New("image not found")

// Repository 图片仓库
type Repository struct {
	db database.Provider
}

// NewRepository 创建新的图片仓库
func NewRepository(db database.Provider) *Repository {
	return &Repository{db: db}
}

// GetByID 通过ID获取图片
func (r *Repository) GetByID(ctx context.Context, id uint) (*models.Image, error) {
	var image models.Image
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_date asc, id asc")
		}).
		Preload("Comments.User").
		First(&image, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	tags, err := r.TagsOf(ctx, image.ID)
	if err != nil {
		return nil, err
	}
	image.Tags = tags
	return &image, nil
}

// ListAll 获取全部图片，批量加载标签避免 N+1 查询
func (r *Repository) ListAll(ctx context.Context) ([]*models.Image, error) {
	var imageList []*models.Image
	if err := r.db.WithContext(ctx).Preload("User").Order("id asc").Find(&imageList).Error; err != nil {
		return nil, err
	}
	if len(imageList) == 0 {
		return imageList, nil
	}

	ids := make([]uint, len(imageList))
	for i, img := range imageList {
		ids[i] = img.ID
	}

	var rows []struct {
		ImageID uint
		TagID   uint
		Name    string
	}
	err := r.db.WithContext(ctx).Table("image_tags").
		Select("image_tags.image_id, tags.id AS tag_id, tags.name").
		Joins("JOIN tags ON tags.id = image_tags.tag_id").
		Where("image_tags.image_id IN ?", ids).
		Order("image_tags.image_id asc, image_tags.position asc").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	tagMap := make(map[uint][]*models.Tag, len(imageList))
	for _, row := range rows {
		tagMap[row.ImageID] = append(tagMap[row.ImageID], &models.Tag{ID: row.TagID, Name: row.Name})
	}
	for _, img := range imageList {
		img.Tags = tagMap[img.ID]
	}
	return imageList, nil
}

// Create 在事务中写入图片与标签关联
func (r *Repository) Create(ctx context.Context, image *models.Image) error {
	return r.db.TransactionWithContext(ctx, func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(image).Error; err != nil {
			return fmt.Errorf("failed to create image: %w", err)
		}
		return replaceTags(tx, image.ID, image.Tags)
	})
}

// Update 在事务中整体替换图片内容与标签
// user_id 不在更新列中，所有者在创建后保持不变
func (r *Repository) Update(ctx context.Context, image *models.Image) error {
	return r.db.TransactionWithContext(ctx, func(tx *gorm.DB) error {
		result := tx.Model(&models.Image{}).Where("id = ?", image.ID).Updates(map[string]interface{}{
			"title":       image.Title,
			"description": image.Description,
			"image_file":  image.ImageFile,
			"date":        image.Date,
		})
		if result.Error != nil {
			return fmt.Errorf("failed to update image %d: %w", image.ID, result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return replaceTags(tx, image.ID, image.Tags)
	})
}

// Delete 在事务中删除图片、标签关联与评论
func (r *Repository) Delete(ctx context.Context, id uint) error {
	return r.db.TransactionWithContext(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("image_id = ?", id).Delete(&models.ImageTag{}).Error; err != nil {
			return fmt.Errorf("failed to clear tag associations for image %d: %w", id, err)
		}
		if err := tx.Where("image_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("failed to delete comments for image %d: %w", id, err)
		}
		result := tx.Delete(&models.Image{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete image %d: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// TagsOf 按提交顺序返回图片的标签
func (r *Repository) TagsOf(ctx context.Context, imageID uint) ([]*models.Tag, error) {
	var tags []*models.Tag
	err := r.db.WithContext(ctx).
		Joins("JOIN image_tags ON image_tags.tag_id = tags.id").
		Where("image_tags.image_id = ?", imageID).
		Order("image_tags.position asc").
		Find(&tags).Error
	return tags, err
}

// replaceTags 重写图片的标签关联，tags 中的每个元素都必须已持久化
func replaceTags(tx *gorm.DB, imageID uint, tags []*models.Tag) error {
	if err := tx.Where("image_id = ?", imageID).Delete(&models.ImageTag{}).Error; err != nil {
		return fmt.Errorf("failed to clear tag associations for image %d: %w", imageID, err)
	}
	if len(tags) == 0 {
		return nil
	}

	links := make([]models.ImageTag, 0, len(tags))
	seen := make(map[uint]struct{}, len(tags))
	for _, tag := range tags {
		if tag == nil || tag.ID == 0 {
			return fmt.Errorf("tag for image %d has not been persisted", imageID)
		}
		if _, dup := seen[tag.ID]; dup {
			continue
		}
		seen[tag.ID] = struct{}{}
		links = append(links, models.ImageTag{ImageID: imageID, TagID: tag.ID, Position: len(links)})
	}
	if err := tx.Create(&links).Error; err != nil {
		return fmt.Errorf("failed to link tags to image %d: %w", imageID, err)
	}
	return nil
}
