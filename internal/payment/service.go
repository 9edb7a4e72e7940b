package payment

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nekogravitycat/court-reservation/internal/admin"
	"github.com/nekogravitycat/court-reservation/internal/pkg/apperror"
)

// VerifyRequest is one admin decision on a pending payment.
type VerifyRequest struct {
	PaymentID       string
	Approved        bool
	RejectionReason string
	ActorUserID     string
}

type Service interface {
	// Verify approves or rejects a pending payment on behalf of an admin.
	// Approval confirms the booking, rejection cancels it and frees its slots.
	Verify(ctx context.Context, req VerifyRequest) (*Decision, error)
	ListPending(ctx context.Context, actorUserID string) ([]*Pending, error)
	GetByID(ctx context.Context, id string) (*Payment, error)
}

type service struct {
	repo   Repository
	admins admin.Service
	log    *zap.Logger
}

func NewService(repo Repository, admins admin.Service, log *zap.Logger) Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &service{repo: repo, admins: admins, log: log}
}

func (s *service) Verify(ctx context.Context, req VerifyRequest) (*Decision, error) {
	actor, err := s.admins.Authorize(ctx, req.ActorUserID)
	if err != nil {
		return nil, apperror.OrInternal(err, "ADMIN_LOOKUP_FAILED")
	}

	if _, err := uuid.Parse(req.PaymentID); err != nil {
		return nil, ErrInvalidPaymentID
	}

	reason := strings.TrimSpace(req.RejectionReason)
	if !req.Approved && reason == "" {
		return nil, ErrRejectionReasonMissing
	}

	d, err := s.repo.Decide(ctx, DecideParams{
		PaymentID:       req.PaymentID,
		Approved:        req.Approved,
		RejectionReason: reason,
		VerifiedBy:      actor.UserID,
	})
	if err != nil {
		return nil, apperror.OrInternal(err, "PAYMENT_VERIFY_FAILED")
	}

	s.log.Info("payment decided",
		zap.String("payment_id", d.PaymentID),
		zap.String("booking_id", d.BookingID),
		zap.String("payment_status", string(d.PaymentStatus)),
		zap.String("booking_status", d.BookingStatus),
		zap.String("admin_user_id", actor.UserID),
	)
	return d, nil
}

func (s *service) ListPending(ctx context.Context, actorUserID string) ([]*Pending, error) {
	if _, err := s.admins.Authorize(ctx, actorUserID); err != nil {
		return nil, apperror.OrInternal(err, "ADMIN_LOOKUP_FAILED")
	}
	items, err := s.repo.ListPending(ctx)
	if err != nil {
		return nil, apperror.OrInternal(err, "PAYMENT_LIST_FAILED")
	}
	return items, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Payment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.OrInternal(err, "PAYMENT_LOOKUP_FAILED")
	}
	return p, nil
}
