package images

import (
	"net/http"
	"strconv"

	"github.com/anoixa/image-hoster/api/common"
	"github.com/gin-gonic/gin"
)

// ListImages GET /api/images
func (h *Handler) ListImages(c *gin.Context) {
	list, err := h.gallery.List(c.Request.Context())
	if err != nil {
		respondGalleryError(c, err)
		return
	}
	common.RespondSuccess(c, gin.H{
		"images": toSummaries(list),
		"total":  len(list),
	})
}

// ListImagesByTag GET /api/tags/:name/images
func (h *Handler) ListImagesByTag(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid page")
		return
	}
	pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid page_size")
		return
	}

	result, err := h.gallery.ImagesByTag(c.Request.Context(), c.Param("name"), page, pageSize)
	if err != nil {
		respondGalleryError(c, err)
		return
	}
	common.RespondSuccess(c, gin.H{
		"tag":       result.Tag,
		"images":    toSummaries(result.Images),
		"total":     result.Total,
		"page":      result.Page,
		"page_size": result.PageSize,
	})
}
