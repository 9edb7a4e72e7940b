package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/court-reservation/internal/payment"
)

// Constraints that reject a second active booking for an occupied slot.
const (
	constraintActiveSlot = "bookings_active_slot_uniq"
	constraintNoOverlap  = "bookings_no_overlap"
)

// errDuplicatePayment is returned when a booking has more than one payment.
var errDuplicatePayment = errors.New("booking has more than one payment")

type Repository interface {
	// ActiveIntervals returns the booked hours of every active booking for
	// the court on date.
	ActiveIntervals(ctx context.Context, courtID, date string) ([]Interval, error)
	// GetByNumber returns the booking with its court name, token and payment.
	GetByNumber(ctx context.Context, bookingNumber string) (*Booking, error)
	Stats(ctx context.Context) (*Stats, error)
	ListRecent(ctx context.Context, limit int) ([]*Booking, error)
	// Begin starts the unit of work a booking is created in.
	Begin(ctx context.Context) (Tx, error)
}

// Tx is the unit of work that creates a booking together with its payment.
// Nothing it writes is visible until Commit.
type Tx interface {
	// LockSlot serializes writers for one court and day until the
	// transaction ends.
	LockSlot(ctx context.Context, courtID, date string) error
	ActiveIntervals(ctx context.Context, courtID, date string) ([]Interval, error)
	InsertBooking(ctx context.Context, b *Booking) error
	InsertPayment(ctx context.Context, p *payment.Payment) error
	Commit(ctx context.Context) error
	// Rollback is a no-op after Commit.
	Rollback(ctx context.Context) error
}

// querier is the subset of pgxpool.Pool and pgx.Tx the queries need.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var bookingColumns = []string{
	"b.id", "b.booking_number", "b.customer_name", "b.customer_email", "b.customer_phone",
	"b.court_id", "c.name", "to_char(b.date, 'YYYY-MM-DD')",
	"EXTRACT(HOUR FROM b.start_time)::int", "EXTRACT(HOUR FROM b.end_time)::int",
	"b.duration", "b.status", "b.total_amount", "b.notes", "b.verification_token",
	"b.created_at", "b.updated_at",
}

func bookingTargets(b *Booking) []any {
	return []any{
		&b.ID, &b.BookingNumber, &b.CustomerName, &b.CustomerEmail, &b.CustomerPhone,
		&b.CourtID, &b.CourtName, &b.Date,
		&b.StartHour, &b.EndHour,
		&b.Duration, &b.Status, &b.TotalAmount, &b.Notes, &b.Token,
		&b.CreatedAt, &b.UpdatedAt,
	}
}

func toDate(date string) (time.Time, error) {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid booking date %q: %w", date, err)
	}
	return t, nil
}

func toTime(hour int) pgtype.Time {
	return pgtype.Time{Microseconds: int64(hour) * int64(time.Hour/time.Microsecond), Valid: true}
}

func activeIntervals(ctx context.Context, q querier, courtID, date string) ([]Interval, error) {
	d, err := toDate(date)
	if err != nil {
		return nil, err
	}

	query, args, err := psql.Select("EXTRACT(HOUR FROM start_time)::int", "EXTRACT(HOUR FROM end_time)::int").
		From("public.bookings").
		Where(squirrel.Eq{
			"court_id": courtID,
			"date":     d,
			"status":   []string{string(StatusPendingVerification), string(StatusConfirmed)},
		}).
		OrderBy("start_time").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build active intervals query failed: %w", err)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query active intervals failed: %w", err)
	}
	defer rows.Close()

	var out []Interval
	for rows.Next() {
		var iv Interval
		if err := rows.Scan(&iv.Start, &iv.End); err != nil {
			return nil, fmt.Errorf("scan interval failed: %w", err)
		}
		out = append(out, iv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate intervals failed: %w", err)
	}
	return out, nil
}

func (r *pgxRepository) ActiveIntervals(ctx context.Context, courtID, date string) ([]Interval, error) {
	return activeIntervals(ctx, r.pool, courtID, date)
}

func (r *pgxRepository) GetByNumber(ctx context.Context, bookingNumber string) (*Booking, error) {
	query, args, err := psql.Select(bookingColumns...).
		From("public.bookings b").
		Join("public.courts c ON c.id = b.court_id").
		Where(squirrel.Eq{"b.booking_number": bookingNumber}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	var b Booking
	if err := r.pool.QueryRow(ctx, query, args...).Scan(bookingTargets(&b)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}

	if err := r.attachPayments(ctx, []*Booking{&b}); err != nil {
		return nil, err
	}
	return &b, nil
}

// attachPayments loads the payment of every booking in bs. A booking has at
// most one payment; more than one is reported as an error.
func (r *pgxRepository) attachPayments(ctx context.Context, bs []*Booking) error {
	if len(bs) == 0 {
		return nil
	}

	byID := make(map[string]*Booking, len(bs))
	ids := make([]string, len(bs))
	for i, b := range bs {
		byID[b.ID] = b
		ids[i] = b.ID
	}

	query, args, err := psql.Select(payment.PaymentColumns()...).
		From("public.payments p").
		Where(squirrel.Eq{"p.booking_id": ids}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build booking payments query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query booking payments failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p := &payment.Payment{}
		if err := rows.Scan(payment.ScanTargets(p)...); err != nil {
			return fmt.Errorf("scan booking payment failed: %w", err)
		}
		b := byID[p.BookingID]
		if b == nil {
			continue
		}
		if b.Payment != nil {
			return fmt.Errorf("booking %s: %w", b.BookingNumber, errDuplicatePayment)
		}
		b.Payment = p
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate booking payments failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) Stats(ctx context.Context) (*Stats, error) {
	query, args, err := psql.Select(
		"count(*)",
		"count(*) FILTER (WHERE status = 'PENDING_VERIFICATION')",
		"count(*) FILTER (WHERE status = 'CONFIRMED')",
		"count(*) FILTER (WHERE status = 'CANCELLED')",
	).
		From("public.bookings").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build stats query failed: %w", err)
	}

	var s Stats
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&s.Total, &s.PendingVerification, &s.Confirmed, &s.Cancelled); err != nil {
		return nil, fmt.Errorf("query booking stats failed: %w", err)
	}
	return &s, nil
}

func (r *pgxRepository) ListRecent(ctx context.Context, limit int) ([]*Booking, error) {
	query, args, err := psql.Select(bookingColumns...).
		From("public.bookings b").
		Join("public.courts c ON c.id = b.court_id").
		OrderBy("b.created_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build recent bookings query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list recent bookings failed: %w", err)
	}
	defer rows.Close()

	var out []*Booking
	for rows.Next() {
		b := &Booking{}
		if err := rows.Scan(bookingTargets(b)...); err != nil {
			return nil, fmt.Errorf("scan booking failed: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookings failed: %w", err)
	}

	if err := r.attachPayments(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *pgxRepository) Begin(ctx context.Context) (Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin booking tx failed: %w", err)
	}
	return &pgxTx{tx: tx}, nil
}

type pgxTx struct {
	tx pgx.Tx
}

func (t *pgxTx) LockSlot(ctx context.Context, courtID, date string) error {
	if _, err := t.tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtextextended($1, 0))", courtID+"|"+date); err != nil {
		return fmt.Errorf("lock court day failed: %w", err)
	}
	return nil
}

func (t *pgxTx) ActiveIntervals(ctx context.Context, courtID, date string) ([]Interval, error) {
	return activeIntervals(ctx, t.tx, courtID, date)
}

func (t *pgxTx) InsertBooking(ctx context.Context, b *Booking) error {
	d, err := toDate(b.Date)
	if err != nil {
		return err
	}

	query, args, err := psql.Insert("public.bookings").
		Columns(
			"customer_name", "customer_email", "customer_phone", "court_id", "date",
			"start_time", "end_time", "duration", "status", "total_amount", "notes",
			"verification_token",
		).
		Values(
			b.CustomerName, b.CustomerEmail, b.CustomerPhone, b.CourtID, d,
			toTime(b.StartHour), toTime(b.EndHour), b.Duration, b.Status, b.TotalAmount, b.Notes,
			b.Token,
		).
		Suffix("RETURNING id, booking_number, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert booking query failed: %w", err)
	}

	if err := t.tx.QueryRow(ctx, query, args...).Scan(&b.ID, &b.BookingNumber, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if isSlotViolation(err) {
			return ErrSlotTaken
		}
		return fmt.Errorf("insert booking failed: %w", err)
	}
	return nil
}

// isSlotViolation reports whether err is the database refusing a second
// active booking for an occupied slot.
func isSlotViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case pgerrcode.ExclusionViolation:
		return true
	case pgerrcode.UniqueViolation:
		return pgErr.ConstraintName == constraintActiveSlot || pgErr.ConstraintName == constraintNoOverlap
	}
	return false
}

func (t *pgxTx) InsertPayment(ctx context.Context, p *payment.Payment) error {
	query, args, err := psql.Insert("public.payments").
		Columns("booking_id", "payment_method", "reference_code", "amount", "status").
		Values(p.BookingID, p.Method, p.ReferenceCode, p.Amount, p.Status).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert payment query failed: %w", err)
	}

	if err := t.tx.QueryRow(ctx, query, args...).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return fmt.Errorf("insert payment failed: %w", err)
	}
	return nil
}

func (t *pgxTx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		if isSlotViolation(err) {
			return ErrSlotTaken
		}
		return fmt.Errorf("commit booking tx failed: %w", err)
	}
	return nil
}

func (t *pgxTx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("rollback booking tx failed: %w", err)
	}
	return nil
}
