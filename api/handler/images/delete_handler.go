package images

import (
	"github.com/anoixa/image-hoster/api/common"
	"github.com/anoixa/image-hoster/api/middleware"
	"github.com/gin-gonic/gin"
)

// DeleteImage DELETE /api/images/:id
func (h *Handler) DeleteImage(c *gin.Context) {
	id, ok := parseImageID(c)
	if !ok {
		return
	}
	identity, _ := middleware.GetIdentity(c)

	if err := h.gallery.Delete(c.Request.Context(), identity, id); err != nil {
		respondGalleryError(c, err)
		return
	}

	common.RespondSuccessMessage(c, "Image deleted", gin.H{"id": id})
}
