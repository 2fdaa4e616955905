package images

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/anoixa/image-hoster/api/common"
	"github.com/anoixa/image-hoster/database/models"
	"github.com/anoixa/image-hoster/internal/gallery"
	"github.com/anoixa/image-hoster/utils"
	"github.com/gin-gonic/gin"
)

// Handler 图片处理器
type Handler struct {
	gallery     *gallery.Service
	uploadLimit int64
}

// NewHandler 图片处理器，uploadLimit 为单个文件的最大字节数
func NewHandler(galleryService *gallery.Service, uploadLimit int64) *Handler {
	return &Handler{gallery: galleryService, uploadLimit: uploadLimit}
}

// imageSummary 列表项，不包含图片数据
type imageSummary struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	UserID      uint      `json:"user_id"`
	Username    string    `json:"username"`
	Date        time.Time `json:"date"`
	Tags        string    `json:"tags"`
}

func toSummary(image *models.Image) imageSummary {
	return imageSummary{
		ID:          image.ID,
		Title:       image.Title,
		Description: image.Description,
		UserID:      image.UserID,
		Username:    image.User.Username,
		Date:        image.Date,
		Tags:        gallery.TagsToString(image.Tags),
	}
}

func toSummaries(list []*models.Image) []imageSummary {
	result := make([]imageSummary, 0, len(list))
	for _, image := range list {
		result = append(result, toSummary(image))
	}
	return result
}

// parseImageID 读取路径中的图片 ID
func parseImageID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		common.RespondError(c, http.StatusBadRequest, "Invalid image id")
		return 0, false
	}
	return uint(id), true
}

// respondGalleryError 把工作流错误映射为 HTTP 响应
func respondGalleryError(c *gin.Context, err error) {
	var ownErr *gallery.OwnershipError
	switch {
	case errors.As(err, &ownErr):
		// 拒绝时仍返回图片当前状态，客户端以只读方式展示
		common.RespondErrorData(c, http.StatusForbidden, ownErr.Error(), ownErr.Detail)
	case errors.Is(err, gallery.ErrNotFound):
		common.RespondError(c, http.StatusNotFound, "Image not found")
	case errors.Is(err, gallery.ErrInvalidInput):
		common.RespondError(c, http.StatusBadRequest, err.Error())
	case utils.IsClientDisconnect(err):
		// 客户端已断开，无需响应
		c.Abort()
	default:
		log.Printf("[Gallery] Request %s %s failed: %v", c.Request.Method, c.FullPath(), err)
		common.RespondError(c, http.StatusInternalServerError, "Internal server error")
	}
}
