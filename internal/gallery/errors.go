package gallery

import (
	"errors"
	"fmt"

	"github.com/anoixa/image-hoster/database/models"
)

var (
	// ErrNotFound 图片或标签不存在
	ErrNotFound = errors.New("not found")
	// ErrConflict 并发创建同名标签，解析时就地恢复，不会返回给最终调用方
	ErrConflict = errors.New("tag creation conflict")
	// ErrTransaction 持久化提交失败，已整体回滚
	ErrTransaction = errors.New("transaction failed")
	// ErrOwnershipViolation 调用方不是图片所有者
	ErrOwnershipViolation = errors.New("ownership violation")
	// ErrInvalidInput 输入字段校验失败
	ErrInvalidInput = errors.New("invalid input")
	// ErrCorruptPayload 存储的图片数据无法解码
	ErrCorruptPayload = errors.New("corrupt image payload")
)

// ImageDetail 图片详情视图：图片本身、展示用标签串与评论
type ImageDetail struct {
	Image    *models.Image    `json:"image"`
	Tags     string           `json:"tags"`
	Comments []models.Comment `json:"comments"`
}

// OwnershipError 非所有者尝试编辑或删除
// Detail 为图片当前状态，调用方据此渲染只读视图
type OwnershipError struct {
	Action string
	Detail *ImageDetail
}

func (e *OwnershipError) Error() string {
	return fmt.Sprintf("Only the owner of the image can %s the image", e.Action)
}

func (e *OwnershipError) Unwrap() error {
	return ErrOwnershipViolation
}
