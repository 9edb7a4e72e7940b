package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nekogravitycat/court-reservation/internal/pkg/request"
	"github.com/nekogravitycat/court-reservation/internal/pkg/response"
	"github.com/nekogravitycat/court-reservation/internal/pkg/storage"
	"github.com/nekogravitycat/court-reservation/internal/receipt"
)

// multipartOverhead is the room left for form boundaries and headers on
// top of the image itself.
const multipartOverhead = 1 << 20

type Handler struct {
	service receipt.Service
}

func NewHandler(service receipt.Service) *Handler {
	return &Handler{service: service}
}

// Upload stores the payment screenshot of the booking named by ?ref=.
func (h *Handler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, receipt.MaxSize+multipartOverhead)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			response.Error(c, receipt.ErrTooLarge)
			return
		}
		response.Error(c, receipt.ErrFileRequired)
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, receipt.ErrFileRequired)
		return
	}
	defer src.Close()

	rec, err := h.service.Upload(c.Request.Context(), c.Query("ref"), receipt.UploadInput{
		Filename: fileHeader.Filename,
		Size:     fileHeader.Size,
		Content:  src,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewReceiptResponse(rec))
}

// ServeReceipt streams the original receipt image of a payment.
func (h *Handler) ServeReceipt(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.Error(c, receipt.ErrInvalidPaymentID)
		return
	}

	stream, rec, err := h.service.Download(c.Request.Context(), req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer stream.Close()

	serve(c, stream, rec.ContentType, rec.Filename)
}

// ServeThumbnail streams the JPEG thumbnail of a payment's receipt.
func (h *Handler) ServeThumbnail(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.Error(c, receipt.ErrInvalidPaymentID)
		return
	}

	stream, rec, err := h.service.DownloadThumbnail(c.Request.Context(), req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer stream.Close()

	serve(c, stream, storage.ContentTypeJPEG, rec.ID+"_thumb.jpg")
}

func serve(c *gin.Context, stream io.Reader, contentType, filename string) {
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", "inline; filename=\""+filename+"\"")
	c.Header("X-Content-Type-Options", "nosniff")
	c.Header("Cache-Control", "private, no-store")

	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, stream); err != nil {
		// Headers are already sent.
		zap.L().Warn("receipt stream interrupted", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
}
