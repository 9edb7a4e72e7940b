package booking

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/court-reservation/internal/payment"
	"github.com/nekogravitycat/court-reservation/internal/pkg/apperror"
)

var (
	ErrSlotTaken         = apperror.New(http.StatusConflict, "This time slot is already booked. Please choose another time.")
	ErrPastSlot          = apperror.Validation("start_time", "Cannot book a time slot that has already passed")
	ErrInvalidRange      = apperror.Validation("end_time", "End time must be after start time")
	ErrDurationTooLong   = apperror.Validation("end_time", "Maximum booking duration is 8 hours")
	ErrCourtNotFound     = apperror.Validation("court_id", "Court not found")
	ErrInvalidDate       = apperror.Validation("date", "Invalid date format (YYYY-MM-DD)")
	ErrInvalidCourtID    = apperror.Validation("courtId", "Invalid court ID")
	ErrNotFound          = apperror.New(http.StatusNotFound, "Booking not found or invalid verification token")
	ErrReferenceRequired = apperror.New(http.StatusBadRequest, "Booking reference required")
	ErrInvalidReference  = apperror.New(http.StatusBadRequest, "Invalid or corrupted booking reference")
)

type Status string

const (
	StatusPendingVerification Status = "PENDING_VERIFICATION"
	StatusConfirmed           Status = "CONFIRMED"
	StatusCancelled           Status = "CANCELLED"
	StatusCompleted           Status = "COMPLETED"
)

// Active reports whether a booking in this status occupies its slots.
func (s Status) Active() bool {
	return s == StatusPendingVerification || s == StatusConfirmed
}

// Booking is one reservation of a court for a contiguous range of whole hours
// on a single day.
type Booking struct {
	ID            string
	BookingNumber string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	CourtID       string
	CourtName     string
	Date          string // YYYY-MM-DD in the operating zone
	StartHour     int
	EndHour       int // exclusive
	Duration      int // minutes
	Status        Status
	TotalAmount   int
	Notes         *string
	Token         string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Payment *payment.Payment
}

// Interval returns the booked hours as a half-open interval.
func (b *Booking) Interval() Interval {
	return Interval{Start: b.StartHour, End: b.EndHour}
}

// Stats counts bookings per status.
type Stats struct {
	Total               int
	PendingVerification int
	Confirmed           int
	Cancelled           int
}
