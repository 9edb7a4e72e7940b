package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/court-reservation/internal/auth"
	"github.com/nekogravitycat/court-reservation/internal/payment"
	"github.com/nekogravitycat/court-reservation/internal/pkg/response"
)

type Handler struct {
	service payment.Service
}

func NewHandler(service payment.Service) *Handler {
	return &Handler{service: service}
}

// ListPending returns every payment awaiting review, newest first.
func (h *Handler) ListPending(c *gin.Context) {
	items, err := h.service.ListPending(c.Request.Context(), auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]PendingResponse, len(items))
	for i, p := range items {
		out[i] = NewPendingResponse(p)
	}
	c.JSON(http.StatusOK, response.NewListResponse(out))
}

// Verify approves or rejects one payment.
func (h *Handler) Verify(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: "Invalid request data"})
		return
	}

	reason := ""
	if req.RejectionReason != nil {
		reason = *req.RejectionReason
	}

	d, err := h.service.Verify(c.Request.Context(), payment.VerifyRequest{
		PaymentID:       req.PaymentID,
		Approved:        *req.Approved,
		RejectionReason: reason,
		ActorUserID:     auth.GetUserID(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, VerifyResponse{
		Success:       true,
		PaymentID:     d.PaymentID,
		BookingID:     d.BookingID,
		PaymentStatus: string(d.PaymentStatus),
		BookingStatus: d.BookingStatus,
	})
}
