package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Booking statuses a decision cascades into. They mirror the booking
// package's constants; payment cannot import booking.
const (
	bookingPending   = "PENDING_VERIFICATION"
	bookingConfirmed = "CONFIRMED"
	bookingCancelled = "CANCELLED"
)

// DecideParams carries one verification decision to storage.
type DecideParams struct {
	PaymentID       string
	Approved        bool
	RejectionReason string
	VerifiedBy      string // user id of the deciding admin
}

type Repository interface {
	GetByID(ctx context.Context, id string) (*Payment, error)
	ListPending(ctx context.Context) ([]*Pending, error)
	// Decide moves a PENDING payment to VERIFIED or REJECTED and its
	// booking to CONFIRMED or CANCELLED in one transaction.
	Decide(ctx context.Context, p DecideParams) (*Decision, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var paymentColumns = []string{
	"p.id", "p.booking_id", "p.payment_method", "p.reference_code", "p.amount", "p.status",
	"p.verified_at", "p.verified_by", "p.rejection_reason", "p.created_at", "p.updated_at",
}

// PaymentColumns lists the payment columns scanned by ScanTargets, qualified
// with the alias "p".
func PaymentColumns() []string {
	return append([]string(nil), paymentColumns...)
}

// ScanTargets returns the scan destinations matching PaymentColumns.
func ScanTargets(p *Payment) []any {
	return []any{
		&p.ID, &p.BookingID, &p.Method, &p.ReferenceCode, &p.Amount, &p.Status,
		&p.VerifiedAt, &p.VerifiedBy, &p.RejectionReason, &p.CreatedAt, &p.UpdatedAt,
	}
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Payment, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(paymentColumns...).
		From("public.payments p").
		Where(squirrel.Eq{"p.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get payment query failed: %w", err)
	}

	var p Payment
	if err := r.pool.QueryRow(ctx, query, args...).Scan(ScanTargets(&p)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get payment failed: %w", err)
	}
	return &p, nil
}

func (r *pgxRepository) ListPending(ctx context.Context) ([]*Pending, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	cols := append(PaymentColumns(),
		"b.booking_number", "b.customer_name", "b.customer_email", "b.customer_phone",
		"c.name", "to_char(b.date, 'YYYY-MM-DD')",
		"EXTRACT(HOUR FROM b.start_time)::int", "EXTRACT(HOUR FROM b.end_time)::int",
	)
	query, args, err := psql.Select(cols...).
		From("public.payments p").
		Join("public.bookings b ON b.id = p.booking_id").
		Join("public.courts c ON c.id = b.court_id").
		Where(squirrel.Eq{"p.status": StatusPending}).
		OrderBy("p.created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list pending payments query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list pending payments failed: %w", err)
	}
	defer rows.Close()

	var out []*Pending
	for rows.Next() {
		item := &Pending{Payment: &Payment{}}
		dest := append(ScanTargets(item.Payment),
			&item.BookingNumber, &item.CustomerName, &item.CustomerEmail, &item.CustomerPhone,
			&item.CourtName, &item.Date, &item.StartHour, &item.EndHour,
		)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan pending payment failed: %w", err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending payments failed: %w", err)
	}

	return out, nil
}

func (r *pgxRepository) Decide(ctx context.Context, p DecideParams) (*Decision, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin verify tx failed: %w", err)
	}
	defer func() {
		// No-op after a successful commit.
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			zap.L().Error("rollback verify tx failed", zap.String("payment_id", p.PaymentID), zap.Error(rbErr))
		}
	}()

	d := &Decision{PaymentID: p.PaymentID}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	update := psql.Update("public.payments").
		Set("verified_by", p.VerifiedBy).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": p.PaymentID, "status": StatusPending}).
		Suffix("RETURNING booking_id")

	if p.Approved {
		d.PaymentStatus, d.BookingStatus = StatusVerified, bookingConfirmed
		update = update.Set("status", StatusVerified).Set("verified_at", squirrel.Expr("now()"))
	} else {
		d.PaymentStatus, d.BookingStatus = StatusRejected, bookingCancelled
		update = update.Set("status", StatusRejected).Set("rejection_reason", p.RejectionReason)
	}

	query, args, err := update.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update payment query failed: %w", err)
	}

	if err := tx.QueryRow(ctx, query, args...).Scan(&d.BookingID); err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("update payment failed: %w", err)
		}
		// Nothing matched: either the payment does not exist or it was
		// already decided.
		var status Status
		err := tx.QueryRow(ctx, "SELECT status FROM public.payments WHERE id = $1", p.PaymentID).Scan(&status)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("check payment status failed: %w", err)
		}
		return nil, ErrAlreadyDecided
	}

	query, args, err = psql.Update("public.bookings").
		Set("status", d.BookingStatus).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": d.BookingID, "status": bookingPending}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update booking query failed: %w", err)
	}

	ct, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("update booking status failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return nil, ErrBookingNotPending
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit verify tx failed: %w", err)
	}

	return d, nil
}
