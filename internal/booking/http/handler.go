package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/court-reservation/internal/booking"
	paymentHttp "github.com/nekogravitycat/court-reservation/internal/payment/http"
	"github.com/nekogravitycat/court-reservation/internal/pkg/request"
	"github.com/nekogravitycat/court-reservation/internal/pkg/response"
)

type Handler struct {
	service booking.Service
}

func NewHandler(service booking.Service) *Handler {
	return &Handler{service: service}
}

// AvailableSlots lists every remaining slot of the day for one court.
func (h *Handler) AvailableSlots(c *gin.Context) {
	var q AvailabilityQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: "invalid query parameters"})
		return
	}

	slots, err := h.service.AvailableSlots(c.Request.Context(), q.CourtID, q.Date)
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]SlotResponse, len(slots))
	for i, s := range slots {
		out[i] = SlotResponse{Time: s.Time, Available: s.Available}
	}
	c.JSON(http.StatusOK, out)
}

// Create books a court. Any total_amount or duration in the body is
// ignored; both are computed from the requested hours.
func (h *Handler) Create(c *gin.Context) {
	var in booking.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: "Invalid request body"})
		return
	}

	created, err := h.service.Create(c.Request.Context(), booking.CreateRequest{
		ClientID: c.ClientIP(),
		Input:    in,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, CreateResponse{
		Booking:            NewBookingResponse(created.Booking),
		Payment:            paymentHttp.NewPaymentResponse(created.Payment),
		EncryptedReference: created.EncryptedReference,
	})
}

// Lookup returns a booking to whoever holds its reference.
func (h *Handler) Lookup(c *gin.Context) {
	var q LookupQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, booking.ErrReferenceRequired)
		return
	}

	var (
		b   *booking.Booking
		err error
	)
	switch {
	case q.Ref != "":
		b, err = h.service.GetByReference(c.Request.Context(), q.Ref)
	case q.BookingNumber != "" || q.Token != "":
		b, err = h.service.GetByLegacyReference(c.Request.Context(), q.BookingNumber, q.Token)
	default:
		err = booking.ErrReferenceRequired
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

// Stats counts bookings per status.
func (h *Handler) Stats(c *gin.Context) {
	st, err := h.service.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, StatsResponse{
		TotalBookings:       st.Total,
		PendingVerification: st.PendingVerification,
		Confirmed:           st.Confirmed,
		Cancelled:           st.Cancelled,
	})
}

// ListRecent returns the newest bookings with their payments.
func (h *Handler) ListRecent(c *gin.Context) {
	var q request.LimitRequest
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: "limit must be between 1 and 100", Field: "limit"})
		return
	}

	bs, err := h.service.ListRecent(c.Request.Context(), q.LimitOrDefault(booking.DefaultRecentLimit))
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]BookingResponse, len(bs))
	for i, b := range bs {
		items[i] = NewBookingResponse(b)
	}
	c.JSON(http.StatusOK, response.NewListResponse(items))
}
