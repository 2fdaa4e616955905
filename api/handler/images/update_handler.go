package images

import (
	"errors"

	"github.com/anoixa/image-hoster/api/common"
	"github.com/anoixa/image-hoster/api/middleware"
	"github.com/anoixa/image-hoster/internal/gallery"
	"github.com/gin-gonic/gin"
)

// UpdateImage PUT /api/images/:id，不带 file 字段时保留原图
func (h *Handler) UpdateImage(c *gin.Context) {
	id, ok := parseImageID(c)
	if !ok {
		return
	}
	identity, _ := middleware.GetIdentity(c)

	raw, err := h.readFile(c)
	if err != nil && !errors.Is(err, errNoFile) {
		return
	}

	image, err := h.gallery.Update(c.Request.Context(), identity, gallery.UpdateInput{
		ImageID:     id,
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Tags:        c.PostForm("tags"),
		File:        raw,
	})
	if err != nil {
		respondGalleryError(c, err)
		return
	}

	common.RespondSuccessMessage(c, "Image updated", toSummary(image))
}
