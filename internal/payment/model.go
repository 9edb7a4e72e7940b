package payment

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/court-reservation/internal/pkg/apperror"
)

var (
	ErrNotFound               = apperror.New(http.StatusNotFound, "payment not found")
	ErrAlreadyDecided         = apperror.New(http.StatusConflict, "payment has already been verified or rejected")
	ErrBookingNotPending      = apperror.New(http.StatusConflict, "booking is no longer awaiting verification")
	ErrRejectionReasonMissing = apperror.Validation("rejectionReason", "Rejection reason is required")
	ErrInvalidPaymentID       = apperror.Validation("paymentId", "Invalid payment ID")
)

type Method string

const (
	MethodGCash Method = "GCASH"
	MethodMaya  Method = "MAYA"
)

// Valid reports whether m is an accepted e-wallet.
func (m Method) Valid() bool {
	return m == MethodGCash || m == MethodMaya
}

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusVerified Status = "VERIFIED"
	StatusRejected Status = "REJECTED"
)

// Payment is the manually entered e-wallet payment attached to a booking.
type Payment struct {
	ID              string
	BookingID       string
	Method          Method
	ReferenceCode   string
	Amount          int
	Status          Status
	VerifiedAt      *time.Time
	VerifiedBy      *string
	RejectionReason *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Decision is the outcome of a verification.
type Decision struct {
	PaymentID     string
	BookingID     string
	PaymentStatus Status
	// BookingStatus is the booking status the decision cascaded into.
	BookingStatus string
}

// Pending is a payment awaiting review together with the booking it pays for.
type Pending struct {
	Payment       *Payment
	BookingNumber string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	CourtName     string
	Date          string
	StartHour     int
	EndHour       int
}
