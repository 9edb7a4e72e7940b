package http

import (
	"fmt"
	"time"

	"github.com/nekogravitycat/court-reservation/internal/payment"
)

// VerifyRequest is the admin decision body. Approved is a pointer so that a
// missing field is rejected instead of read as a rejection.
type VerifyRequest struct {
	PaymentID       string  `json:"paymentId" binding:"required"`
	Approved        *bool   `json:"approved" binding:"required"`
	RejectionReason *string `json:"rejectionReason"`
}

type VerifyResponse struct {
	Success       bool   `json:"success"`
	PaymentID     string `json:"payment_id"`
	BookingID     string `json:"booking_id"`
	PaymentStatus string `json:"payment_status"`
	BookingStatus string `json:"booking_status"`
}

type PaymentResponse struct {
	ID              string     `json:"id"`
	BookingID       string     `json:"booking_id"`
	PaymentMethod   string     `json:"payment_method"`
	ReferenceCode   string     `json:"reference_code"`
	Amount          int        `json:"amount"`
	Status          string     `json:"status"`
	VerifiedAt      *time.Time `json:"verified_at"`
	VerifiedBy      *string    `json:"verified_by"`
	RejectionReason *string    `json:"rejection_reason"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func NewPaymentResponse(p *payment.Payment) PaymentResponse {
	return PaymentResponse{
		ID:              p.ID,
		BookingID:       p.BookingID,
		PaymentMethod:   string(p.Method),
		ReferenceCode:   p.ReferenceCode,
		Amount:          p.Amount,
		Status:          string(p.Status),
		VerifiedAt:      p.VerifiedAt,
		VerifiedBy:      p.VerifiedBy,
		RejectionReason: p.RejectionReason,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

type PendingBooking struct {
	BookingNumber string `json:"booking_number"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
	CourtName     string `json:"court_name"`
	Date          string `json:"date"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
}

type PendingResponse struct {
	PaymentResponse
	Booking PendingBooking `json:"booking"`
}

func NewPendingResponse(p *payment.Pending) PendingResponse {
	return PendingResponse{
		PaymentResponse: NewPaymentResponse(p.Payment),
		Booking: PendingBooking{
			BookingNumber: p.BookingNumber,
			CustomerName:  p.CustomerName,
			CustomerEmail: p.CustomerEmail,
			CustomerPhone: p.CustomerPhone,
			CourtName:     p.CourtName,
			Date:          p.Date,
			StartTime:     fmt.Sprintf("%02d:00", p.StartHour),
			EndTime:       fmt.Sprintf("%02d:00", p.EndHour),
		},
	}
}
