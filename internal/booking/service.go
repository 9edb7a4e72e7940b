package booking

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nekogravitycat/court-reservation/internal/court"
	"github.com/nekogravitycat/court-reservation/internal/payment"
	"github.com/nekogravitycat/court-reservation/internal/pkg/apperror"
	"github.com/nekogravitycat/court-reservation/internal/ratelimit"
	"github.com/nekogravitycat/court-reservation/internal/reference"
)

// tokenBytes is the entropy of a verification token.
const tokenBytes = 32

// CreateRequest is a booking request together with the identity it is
// rate limited by.
type CreateRequest struct {
	ClientID string
	Input    CreateInput
}

// Created is a freshly written booking, its pending payment and the
// encrypted reference the customer uses to look it up.
type Created struct {
	Booking            *Booking
	Payment            *payment.Payment
	EncryptedReference string
}

type Config struct {
	HourlyRate int
	// Now is the clock used for every "today" and "current hour" decision.
	// It defaults to time.Now.
	Now func() time.Time
}

type Service interface {
	AvailableSlots(ctx context.Context, courtID, date string) ([]Slot, error)
	Create(ctx context.Context, req CreateRequest) (*Created, error)
	GetByReference(ctx context.Context, encryptedRef string) (*Booking, error)
	GetByLegacyReference(ctx context.Context, bookingNumber, token string) (*Booking, error)
	Stats(ctx context.Context) (*Stats, error)
	ListRecent(ctx context.Context, limit int) ([]*Booking, error)
}

type service struct {
	repo      Repository
	courts    court.Service
	limiter   ratelimit.Limiter
	codec     *reference.Codec
	validator *inputValidator
	rate      int
	now       func() time.Time
	log       *zap.Logger
}

func NewService(
	repo Repository,
	courts court.Service,
	limiter ratelimit.Limiter,
	codec *reference.Codec,
	cfg Config,
	log *zap.Logger,
) Service {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.HourlyRate <= 0 {
		cfg.HourlyRate = DefaultHourlyRate
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &service{
		repo:      repo,
		courts:    courts,
		limiter:   limiter,
		codec:     codec,
		validator: newInputValidator(cfg.Now),
		rate:      cfg.HourlyRate,
		now:       cfg.Now,
		log:       log,
	}
}

func (s *service) AvailableSlots(ctx context.Context, courtID, date string) ([]Slot, error) {
	if _, ok := parseDate(date); !ok {
		return nil, ErrInvalidDate
	}
	if _, err := uuid.Parse(courtID); err != nil {
		return nil, ErrInvalidCourtID
	}
	if _, err := s.courts.GetByID(ctx, courtID); err != nil {
		return nil, apperror.OrInternal(err, "COURT_LOOKUP_FAILED")
	}

	existing, err := s.repo.ActiveIntervals(ctx, courtID, date)
	if err != nil {
		return nil, apperror.Internal(err, "AVAILABILITY_QUERY_FAILED")
	}

	return CalculateAvailability(GenerateSlots(), existing, date, s.now()), nil
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Created, error) {
	// 1. Rate limit
	decision, err := s.limiter.Allow(ctx, "booking:"+req.ClientID)
	if err != nil {
		return nil, apperror.Internal(err, "RATE_LIMIT_FAILED")
	}
	if !decision.Allowed {
		s.log.Warn("booking rate limited", zap.String("client", req.ClientID), zap.Duration("retry_after", decision.RetryAfter))
		return nil, apperror.RateLimited(decision.RetryAfter)
	}

	// 2. Sanitize and validate
	in := Sanitize(req.Input)
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	if _, err := s.courts.GetByID(ctx, in.CourtID); err != nil {
		if errors.Is(err, court.ErrNotFound) {
			return nil, ErrCourtNotFound
		}
		return nil, apperror.OrInternal(err, "COURT_LOOKUP_FAILED")
	}

	// 3. Price and duration are always computed here
	amount, err := CalculateAmount(in.StartTime, in.EndTime, s.rate)
	if err != nil {
		return nil, err
	}
	duration, err := CalculateDuration(in.StartTime, in.EndTime)
	if err != nil {
		return nil, err
	}
	startHour, _ := ParseHour(in.StartTime)
	endHour, _ := ParseHour(in.EndTime)
	candidate := Interval{Start: startHour, End: endHour}

	// 4. Past slot
	now := s.now()
	if in.Date == today(now) && startHour < now.In(OperatingZone).Hour() {
		return nil, ErrPastSlot
	}

	// 5. Conflict pre-check
	existing, err := s.repo.ActiveIntervals(ctx, in.CourtID, in.Date)
	if err != nil {
		return nil, apperror.Internal(err, "CONFLICT_CHECK_FAILED")
	}
	if HasConflict(candidate, existing) {
		return nil, ErrSlotTaken
	}

	token, err := newToken()
	if err != nil {
		return nil, apperror.Internal(err, "TOKEN_GENERATION_FAILED")
	}

	b := &Booking{
		CustomerName:  in.CustomerName,
		CustomerEmail: in.CustomerEmail,
		CustomerPhone: in.CustomerPhone,
		CourtID:       in.CourtID,
		Date:          in.Date,
		StartHour:     startHour,
		EndHour:       endHour,
		Duration:      duration,
		Status:        StatusPendingVerification,
		TotalAmount:   amount,
		Token:         token,
	}
	if in.Notes != "" {
		notes := in.Notes
		b.Notes = &notes
	}
	p := &payment.Payment{
		Method:        payment.Method(in.PaymentMethod),
		ReferenceCode: in.ReferenceCode,
		Amount:        amount,
		Status:        payment.StatusPending,
	}

	// 6. Unit of work
	if err := s.write(ctx, b, p, candidate); err != nil {
		if errors.Is(err, ErrSlotTaken) {
			return nil, ErrSlotTaken
		}
		return nil, apperror.OrInternal(err, "BOOKING_CREATE_FAILED")
	}

	ref, err := s.codec.Encode(b.BookingNumber, b.Token)
	if err != nil {
		return nil, apperror.Internal(err, "REFERENCE_ENCODE_FAILED")
	}

	s.log.Info("booking created",
		zap.String("booking_id", b.ID),
		zap.String("booking_number", b.BookingNumber),
		zap.String("court_id", b.CourtID),
		zap.String("date", b.Date),
		zap.Int("start_hour", b.StartHour),
		zap.Int("end_hour", b.EndHour),
		zap.Int("total_amount", b.TotalAmount),
	)

	b.Payment = p
	return &Created{Booking: b, Payment: p, EncryptedReference: ref}, nil
}

// write persists b and p atomically. The court day stays locked from the
// conflict re-check until commit.
func (s *service) write(ctx context.Context, b *Booking, p *payment.Payment, candidate Interval) (err error) {
	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil {
			s.log.Error("booking rollback failed",
				zap.String("court_id", b.CourtID),
				zap.String("date", b.Date),
				zap.NamedError("cause", err),
				zap.Error(rbErr),
			)
		}
	}()

	if err = tx.LockSlot(ctx, b.CourtID, b.Date); err != nil {
		return err
	}

	existing, err := tx.ActiveIntervals(ctx, b.CourtID, b.Date)
	if err != nil {
		return err
	}
	if HasConflict(candidate, existing) {
		return ErrSlotTaken
	}

	if err = tx.InsertBooking(ctx, b); err != nil {
		return err
	}

	p.BookingID = b.ID
	if err = tx.InsertPayment(ctx, p); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func newToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func (s *service) GetByReference(ctx context.Context, encryptedRef string) (*Booking, error) {
	encryptedRef = strings.TrimSpace(encryptedRef)
	if encryptedRef == "" {
		return nil, ErrReferenceRequired
	}

	ref, ok := s.codec.Decode(encryptedRef)
	if !ok {
		return nil, ErrInvalidReference
	}
	return s.lookup(ctx, ref.BookingNumber, ref.Token)
}

func (s *service) GetByLegacyReference(ctx context.Context, bookingNumber, token string) (*Booking, error) {
	bookingNumber = strings.TrimSpace(bookingNumber)
	token = strings.TrimSpace(token)
	if bookingNumber == "" || token == "" {
		return nil, ErrReferenceRequired
	}
	return s.lookup(ctx, bookingNumber, token)
}

// lookup returns the booking only when token matches. An unknown number and
// a wrong token are indistinguishable to the caller.
func (s *service) lookup(ctx context.Context, bookingNumber, token string) (*Booking, error) {
	b, err := s.repo.GetByNumber(ctx, bookingNumber)
	if err != nil {
		return nil, apperror.OrInternal(err, "BOOKING_LOOKUP_FAILED")
	}
	if subtle.ConstantTimeCompare([]byte(b.Token), []byte(token)) != 1 {
		return nil, ErrNotFound
	}
	return b, nil
}

func (s *service) Stats(ctx context.Context) (*Stats, error) {
	st, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, apperror.Internal(err, "BOOKING_STATS_FAILED")
	}
	return st, nil
}

const (
	DefaultRecentLimit = 10
	MaxRecentLimit     = 100
)

func (s *service) ListRecent(ctx context.Context, limit int) ([]*Booking, error) {
	switch {
	case limit <= 0:
		limit = DefaultRecentLimit
	case limit > MaxRecentLimit:
		limit = MaxRecentLimit
	}
	bs, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		return nil, apperror.Internal(err, "BOOKING_LIST_FAILED")
	}
	return bs, nil
}
