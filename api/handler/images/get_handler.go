package images

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/anoixa/image-hoster/api/common"
	"github.com/anoixa/image-hoster/api/middleware"
	"github.com/anoixa/image-hoster/internal/gallery"
	"github.com/anoixa/image-hoster/utils/validator"
	"github.com/gin-gonic/gin"
)

// GetImage GET /api/images/:id
func (h *Handler) GetImage(c *gin.Context) {
	id, ok := parseImageID(c)
	if !ok {
		return
	}

	detail, err := h.gallery.Detail(c.Request.Context(), id)
	if err != nil {
		respondGalleryError(c, err)
		return
	}
	common.RespondSuccess(c, detail)
}

// GetImageFile GET /api/images/:id/file 返回解码后的原始字节
func (h *Handler) GetImageFile(c *gin.Context) {
	id, ok := parseImageID(c)
	if !ok {
		return
	}

	raw, err := h.gallery.File(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gallery.ErrCorruptPayload) {
			log.Printf("[Gallery] %v", err)
			common.RespondError(c, http.StatusInternalServerError, "Stored image is corrupt")
			return
		}
		respondGalleryError(c, err)
		return
	}

	_, contentType := validator.IsImageBytes(raw)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Cache-Control", "public, max-age=300")
	c.Header("Content-Length", strconv.Itoa(len(raw)))
	c.Data(http.StatusOK, contentType, raw)
}

// EditImage GET /api/images/:id/edit 返回可编辑状态，仅所有者可用
func (h *Handler) EditImage(c *gin.Context) {
	id, ok := parseImageID(c)
	if !ok {
		return
	}
	identity, _ := middleware.GetIdentity(c)

	detail, err := h.gallery.EditForm(c.Request.Context(), identity, id)
	if err != nil {
		respondGalleryError(c, err)
		return
	}
	common.RespondSuccess(c, detail)
}
