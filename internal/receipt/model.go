package receipt

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/court-reservation/internal/pkg/apperror"
)

const (
	// MaxSize is the largest receipt image accepted, in bytes.
	MaxSize = 5 << 20

	thumbnailWidth  = 200
	thumbnailHeight = 200
)

var (
	ErrNotFound         = apperror.New(http.StatusNotFound, "receipt not found")
	ErrNoThumbnail      = apperror.New(http.StatusNotFound, "thumbnail not available for this receipt")
	ErrFileRequired     = apperror.Validation("file", "Receipt image is required")
	ErrUnsupportedType  = apperror.Validation("file", "Receipt must be a JPEG or PNG image")
	ErrTooLarge         = apperror.Validation("file", "Receipt must be 5 MB or smaller")
	ErrPaymentReviewed  = apperror.New(http.StatusConflict, "payment has already been reviewed")
	ErrPaymentMissing   = apperror.New(http.StatusConflict, "booking has no payment to attach a receipt to")
	ErrInvalidPaymentID = apperror.Validation("id", "Invalid payment ID")
)

// Receipt is the payment screenshot a customer uploaded for review.
type Receipt struct {
	ID            string
	PaymentID     string
	Filename      string
	StoragePath   string
	ThumbnailPath *string
	ContentType   string
	Size          int64
	CreatedAt     time.Time
}
