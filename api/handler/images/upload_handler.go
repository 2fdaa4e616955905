package images

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/anoixa/image-hoster/api/common"
	"github.com/anoixa/image-hoster/api/middleware"
	"github.com/anoixa/image-hoster/internal/gallery"
	"github.com/anoixa/image-hoster/utils/validator"
	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
)

var errNoFile = errors.New("no file uploaded")

// multipartOverhead 文件之外的表单字段与分隔符的余量
const multipartOverhead = 1 << 20

// UploadImage POST /api/images，multipart 字段：file、title、description、tags
func (h *Handler) UploadImage(c *gin.Context) {
	identity, _ := middleware.GetIdentity(c)

	raw, err := h.readFile(c)
	if err != nil {
		if errors.Is(err, errNoFile) {
			common.RespondError(c, http.StatusBadRequest, "A file is required under the 'file' key")
			return
		}
		return
	}

	image, err := h.gallery.Upload(c.Request.Context(), identity, gallery.UploadInput{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Tags:        c.PostForm("tags"),
		File:        raw,
	})
	if err != nil {
		respondGalleryError(c, err)
		return
	}

	common.RespondCreated(c, "Upload successful", toSummary(image))
}

// readFile 读取 multipart 中的 file 字段
// 返回 errNoFile 时由调用方决定如何处理，其他错误已写入响应
func (h *Handler) readFile(c *gin.Context) ([]byte, error) {
	// 超限的请求体在解析途中即被截断，不会整块读入或落盘
	if h.uploadLimit > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.uploadLimit+multipartOverhead)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, errNoFile
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			common.RespondError(c, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("file exceeds the %s limit", humanize.IBytes(uint64(h.uploadLimit))))
			return nil, err
		}
		common.RespondError(c, http.StatusBadRequest, "Invalid form data")
		return nil, err
	}

	if h.uploadLimit > 0 && fileHeader.Size > h.uploadLimit {
		err := fmt.Errorf("file exceeds the %s limit", humanize.IBytes(uint64(h.uploadLimit)))
		common.RespondError(c, http.StatusRequestEntityTooLarge, err.Error())
		return nil, err
	}

	file, err := fileHeader.Open()
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "Failed to open uploaded file")
		return nil, err
	}
	defer file.Close()

	ok, mimeType, err := validator.IsImage(file)
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "Failed to read uploaded file")
		return nil, err
	}
	if !ok {
		err := fmt.Errorf("unsupported file type %q", mimeType)
		common.RespondError(c, http.StatusUnsupportedMediaType, "Only JPEG, PNG, GIF, WebP and BMP images are allowed")
		return nil, err
	}

	raw, err := io.ReadAll(file)
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "Failed to read uploaded file")
		return nil, err
	}
	return raw, nil
}
