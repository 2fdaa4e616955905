package gallery

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/anoixa/image-hoster/database/models"
	"github.com/anoixa/image-hoster/database/repo/images"
	"github.com/anoixa/image-hoster/database/repo/tags"
	"github.com/anoixa/image-hoster/internal/auth"
	"github.com/anoixa/image-hoster/utils"
)

// TagImages 某个标签下的一页图片
type TagImages struct {
	Tag      *models.Tag     `json:"tag"`
	Images   []*models.Image `json:"images"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}

// Service 图片上传与授权工作流，业务规则只在这里执行
type Service struct {
	imagesRepo images.RepositoryInterface
	tagsRepo   *tags.Repository
	resolver   *TagResolver
	now        func() time.Time
}

// NewService 创建图片工作流服务
func NewService(imagesRepo images.RepositoryInterface, tagsRepo *tags.Repository) *Service {
	return &Service{
		imagesRepo: imagesRepo,
		tagsRepo:   tagsRepo,
		resolver:   NewTagResolver(tagsRepo),
		now:        time.Now,
	}
}

// ResolveTags 解析标签串为标签实体
func (s *Service) ResolveTags(ctx context.Context, raw string) ([]*models.Tag, error) {
	return s.resolver.Resolve(ctx, raw)
}

// Upload 以调用方身份上传图片
func (s *Service) Upload(ctx context.Context, identity auth.Identity, in UploadInput) (*models.Image, error) {
	if identity.UserID == 0 {
		return nil, auth.ErrUnauthenticated
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	tagList, err := s.resolver.Resolve(ctx, in.Tags)
	if err != nil {
		return nil, err
	}

	image := in.toImage(identity.UserID, tagList, s.now())
	if err := s.imagesRepo.Create(ctx, image); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransaction, err)
	}
	image.User = models.User{ID: identity.UserID, Username: identity.Username}

	log.Printf("[Gallery] User %s uploaded image %d with %d tag(s)",
		utils.SanitizeLogUsername(identity.Username), image.ID, len(tagList))
	return image, nil
}

// Detail 返回图片详情视图
func (s *Service) Detail(ctx context.Context, id uint) (*ImageDetail, error) {
	image, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return newDetail(image), nil
}

// File 返回图片解码后的原始字节
func (s *Service) File(ctx context.Context, id uint) ([]byte, error) {
	image, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return DecodePayload(image)
}

// List 返回全部图片
func (s *Service) List(ctx context.Context) ([]*models.Image, error) {
	return s.imagesRepo.ListAll(ctx)
}

// EditForm 返回可编辑的图片状态，非所有者得到 *OwnershipError
func (s *Service) EditForm(ctx context.Context, identity auth.Identity, id uint) (*ImageDetail, error) {
	image, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkOwner(identity, image, "edit"); err != nil {
		return nil, err
	}
	return newDetail(image), nil
}

// Update 由所有者整体替换标题、描述、标签与时间
// 未提供新文件时保留原有数据，所有者保持不变
// 先确认图片存在且调用方是所有者，再校验表单
func (s *Service) Update(ctx context.Context, identity auth.Identity, in UpdateInput) (*models.Image, error) {
	existing, err := s.load(ctx, in.ImageID)
	if err != nil {
		return nil, err
	}
	if err := checkOwner(identity, existing, "edit"); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	tagList, err := s.resolver.Resolve(ctx, in.Tags)
	if err != nil {
		return nil, err
	}

	image := in.toImage(existing, tagList, s.now())
	if err := s.imagesRepo.Update(ctx, image); err != nil {
		if errors.Is(err, images.ErrNotFound) {
			return nil, fmt.Errorf("%w: image %d", ErrNotFound, in.ImageID)
		}
		return nil, fmt.Errorf("%w: %v", ErrTransaction, err)
	}

	log.Printf("[Gallery] User %s updated image %d", utils.SanitizeLogUsername(identity.Username), image.ID)
	return image, nil
}

// Delete 由所有者删除图片，标签保留
func (s *Service) Delete(ctx context.Context, identity auth.Identity, id uint) error {
	image, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := checkOwner(identity, image, "delete"); err != nil {
		return err
	}

	if err := s.imagesRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, images.ErrNotFound) {
			return fmt.Errorf("%w: image %d", ErrNotFound, id)
		}
		return fmt.Errorf("%w: %v", ErrTransaction, err)
	}

	log.Printf("[Gallery] User %s deleted image %d", utils.SanitizeLogUsername(identity.Username), id)
	return nil
}

// ImagesByTag 分页返回引用某标签的图片
func (s *Service) ImagesByTag(ctx context.Context, name string, page, pageSize int) (*TagImages, error) {
	tag, err := s.tagsRepo.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if tag == nil {
		return nil, fmt.Errorf("%w: tag %q", ErrNotFound, name)
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	list, total, err := s.tagsRepo.ImagesOf(ctx, tag.ID, page, pageSize)
	if err != nil {
		return nil, err
	}
	return &TagImages{Tag: tag, Images: list, Total: total, Page: page, PageSize: pageSize}, nil
}

func (s *Service) load(ctx context.Context, id uint) (*models.Image, error) {
	image, err := s.imagesRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, images.ErrNotFound) {
			return nil, fmt.Errorf("%w: image %d", ErrNotFound, id)
		}
		return nil, err
	}
	return image, nil
}

// checkOwner 按用户 ID 比较所有者与调用方
func checkOwner(identity auth.Identity, image *models.Image, action string) error {
	if identity.UserID != 0 && image.UserID == identity.UserID {
		return nil
	}
	return &OwnershipError{Action: action, Detail: newDetail(image)}
}

func newDetail(image *models.Image) *ImageDetail {
	comments := image.Comments
	if comments == nil {
		comments = []models.Comment{}
	}
	return &ImageDetail{
		Image:    image,
		Tags:     TagsToString(image.Tags),
		Comments: comments,
	}
}
