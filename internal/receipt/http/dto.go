package http

import (
	"time"

	"github.com/nekogravitycat/court-reservation/internal/receipt"
)

type ReceiptResponse struct {
	ID           string    `json:"id"`
	PaymentID    string    `json:"payment_id"`
	Filename     string    `json:"filename"`
	ContentType  string    `json:"content_type"`
	Size         int64     `json:"size"`
	HasThumbnail bool      `json:"has_thumbnail"`
	CreatedAt    time.Time `json:"created_at"`
}

func NewReceiptResponse(r *receipt.Receipt) ReceiptResponse {
	return ReceiptResponse{
		ID:           r.ID,
		PaymentID:    r.PaymentID,
		Filename:     r.Filename,
		ContentType:  r.ContentType,
		Size:         r.Size,
		HasThumbnail: r.ThumbnailPath != nil,
		CreatedAt:    r.CreatedAt,
	}
}
