package http

import (
	"time"

	"github.com/nekogravitycat/court-reservation/internal/booking"
	paymentHttp "github.com/nekogravitycat/court-reservation/internal/payment/http"
)

// AvailabilityQuery binds GET /available-slots.
type AvailabilityQuery struct {
	Date    string `form:"date"`
	CourtID string `form:"courtId"`
}

// LookupQuery binds GET /bookings/ref. Ref is the encrypted reference; the
// booking_number and token pair is the older unencrypted form.
type LookupQuery struct {
	Ref           string `form:"ref"`
	BookingNumber string `form:"booking_number"`
	Token         string `form:"token"`
}

type SlotResponse struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

type BookingResponse struct {
	ID            string                       `json:"id"`
	BookingNumber string                       `json:"booking_number"`
	CustomerName  string                       `json:"customer_name"`
	CustomerEmail string                       `json:"customer_email"`
	CustomerPhone string                       `json:"customer_phone"`
	CourtID       string                       `json:"court_id"`
	CourtName     string                       `json:"court_name,omitempty"`
	Date          string                       `json:"date"`
	StartTime     string                       `json:"start_time"`
	EndTime       string                       `json:"end_time"`
	Duration      int                          `json:"duration"`
	Status        string                       `json:"status"`
	TotalAmount   int                          `json:"total_amount"`
	Notes         *string                      `json:"notes"`
	CreatedAt     time.Time                    `json:"created_at"`
	UpdatedAt     time.Time                    `json:"updated_at"`
	Payment       *paymentHttp.PaymentResponse `json:"payment"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	resp := BookingResponse{
		ID:            b.ID,
		BookingNumber: b.BookingNumber,
		CustomerName:  b.CustomerName,
		CustomerEmail: b.CustomerEmail,
		CustomerPhone: b.CustomerPhone,
		CourtID:       b.CourtID,
		CourtName:     b.CourtName,
		Date:          b.Date,
		StartTime:     booking.FormatHour(b.StartHour),
		EndTime:       booking.FormatHour(b.EndHour),
		Duration:      b.Duration,
		Status:        string(b.Status),
		TotalAmount:   b.TotalAmount,
		Notes:         b.Notes,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
	if b.Payment != nil {
		p := paymentHttp.NewPaymentResponse(b.Payment)
		resp.Payment = &p
	}
	return resp
}

type CreateResponse struct {
	Booking            BookingResponse             `json:"booking"`
	Payment            paymentHttp.PaymentResponse `json:"payment"`
	EncryptedReference string                      `json:"encrypted_reference"`
}

type StatsResponse struct {
	TotalBookings       int `json:"total_bookings"`
	PendingVerification int `json:"pending_verification"`
	Confirmed           int `json:"confirmed"`
	Cancelled           int `json:"cancelled"`
}
