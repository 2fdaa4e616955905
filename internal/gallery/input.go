package gallery

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/anoixa/image-hoster/database/models"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// UploadInput 上传表单
type UploadInput struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description" validate:"max=10000"`
	Tags        string `json:"tags" validate:"max=1024"`
	File        []byte `json:"-" validate:"required,min=1"`
}

// UpdateInput 编辑表单，File 为空时保留原有图片数据
type UpdateInput struct {
	ImageID     uint   `json:"image_id" validate:"required"`
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description" validate:"max=10000"`
	Tags        string `json:"tags" validate:"max=1024"`
	File        []byte `json:"-"`
}

func validateInput(in interface{}) error {
	if err := validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

// EncodePayload 原始字节编码为存储用的 base64 文本
func EncodePayload(raw []byte) string {
	return base64.StdEncoding.EncodeToString(raw)
}

// DecodePayload 还原图片原始字节
func DecodePayload(image *models.Image) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(image.ImageFile)
	if err != nil {
		return nil, fmt.Errorf("%w: image %d: %v", ErrCorruptPayload, image.ID, err)
	}
	return raw, nil
}

func (in UploadInput) toImage(ownerID uint, tags []*models.Tag, now time.Time) *models.Image {
	return &models.Image{
		Title:       in.Title,
		Description: in.Description,
		ImageFile:   EncodePayload(in.File),
		UserID:      ownerID,
		Date:        now,
		Tags:        tags,
	}
}

func (in UpdateInput) toImage(existing *models.Image, tags []*models.Tag, now time.Time) *models.Image {
	payload := existing.ImageFile
	if len(in.File) > 0 {
		payload = EncodePayload(in.File)
	}
	return &models.Image{
		ID:          existing.ID,
		Title:       in.Title,
		Description: in.Description,
		ImageFile:   payload,
		UserID:      existing.UserID,
		User:        existing.User,
		Date:        now,
		Tags:        tags,
	}
}
