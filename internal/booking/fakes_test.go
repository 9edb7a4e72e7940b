package booking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/court-reservation/internal/court"
	"github.com/nekogravitycat/court-reservation/internal/payment"
	"github.com/nekogravitycat/court-reservation/internal/ratelimit"
	"github.com/nekogravitycat/court-reservation/internal/reference"
)

const testCourtID = "6f1c1d2e-8a3b-4c5d-9e0f-112233445566"

// testNow is 14:30 on 2026-02-08 in the operating zone.
var testNow = time.Date(2026, 2, 8, 14, 30, 0, 0, OperatingZone)

type fakeCourts struct {
	courts map[string]*court.Court
}

func newFakeCourts() *fakeCourts {
	return &fakeCourts{courts: map[string]*court.Court{
		testCourtID: {ID: testCourtID, Name: "Court A", IsActive: true},
	}}
}

func (f *fakeCourts) Create(context.Context, court.CreateRequest) (*court.Court, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeCourts) GetByID(_ context.Context, id string) (*court.Court, error) {
	c, ok := f.courts[id]
	if !ok {
		return nil, court.ErrNotFound
	}
	return c, nil
}

func (f *fakeCourts) ListActive(context.Context) ([]*court.Court, error) {
	var out []*court.Court
	for _, c := range f.courts {
		out = append(out, c)
	}
	return out, nil
}

// fakeStore is an in-memory Repository. Writes become visible on Commit and
// LockSlot holds a real mutex per court day, so concurrent creations
// serialize the way they do against Postgres.
type fakeStore struct {
	mu       sync.Mutex
	bookings []*Booking
	payments []*payment.Payment
	seq      int

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex

	insertErr  error
	paymentErr error
	rollbacks  int
	commits    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{locks: map[string]*sync.Mutex{}}
}

func (s *fakeStore) ActiveIntervals(_ context.Context, courtID, date string) ([]Interval, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Interval
	for _, b := range s.bookings {
		if b.CourtID == courtID && b.Date == date && b.Status.Active() {
			out = append(out, b.Interval())
		}
	}
	return out, nil
}

func (s *fakeStore) GetByNumber(_ context.Context, number string) (*Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range s.bookings {
		if b.BookingNumber == number {
			return s.withPayment(b), nil
		}
	}
	return nil, ErrNotFound
}

func (s *fakeStore) withPayment(b *Booking) *Booking {
	cp := *b
	for _, p := range s.payments {
		if p.BookingID == b.ID {
			pc := *p
			cp.Payment = &pc
		}
	}
	return &cp
}

func (s *fakeStore) Stats(context.Context) (*Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := &Stats{Total: len(s.bookings)}
	for _, b := range s.bookings {
		switch b.Status {
		case StatusPendingVerification:
			st.PendingVerification++
		case StatusConfirmed:
			st.Confirmed++
		case StatusCancelled:
			st.Cancelled++
		}
	}
	return st, nil
}

func (s *fakeStore) ListRecent(_ context.Context, limit int) ([]*Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Booking, 0, len(s.bookings))
	for _, b := range s.bookings {
		out = append(out, s.withPayment(b))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakeStore) Begin(context.Context) (Tx, error) {
	return &fakeTx{store: s}, nil
}

func (s *fakeStore) lockFor(key string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	m, ok := s.locks[key]
	if !ok {
		m = &sync.Mutex{}
		s.locks[key] = m
	}
	return m
}

func (s *fakeStore) count() (bookings, payments int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bookings), len(s.payments)
}

type fakeTx struct {
	store   *fakeStore
	held    *sync.Mutex
	booking *Booking
	payment *payment.Payment
	done    bool
}

func (t *fakeTx) LockSlot(_ context.Context, courtID, date string) error {
	m := t.store.lockFor(courtID + "|" + date)
	m.Lock()
	t.held = m
	return nil
}

func (t *fakeTx) ActiveIntervals(ctx context.Context, courtID, date string) ([]Interval, error) {
	return t.store.ActiveIntervals(ctx, courtID, date)
}

func (t *fakeTx) InsertBooking(_ context.Context, b *Booking) error {
	if t.store.insertErr != nil {
		return t.store.insertErr
	}
	t.store.mu.Lock()
	t.store.seq++
	seq := t.store.seq
	t.store.mu.Unlock()

	b.ID = uuid.NewString()
	b.BookingNumber = fmt.Sprintf("BK-20260208-%05d", seq)
	b.CreatedAt = testNow.Add(time.Duration(seq) * time.Second)
	b.UpdatedAt = b.CreatedAt
	t.booking = b
	return nil
}

func (t *fakeTx) InsertPayment(_ context.Context, p *payment.Payment) error {
	if t.store.paymentErr != nil {
		return t.store.paymentErr
	}
	p.ID = uuid.NewString()
	p.CreatedAt = testNow
	p.UpdatedAt = testNow
	t.payment = p
	return nil
}

func (t *fakeTx) Commit(context.Context) error {
	t.store.mu.Lock()
	if t.booking != nil {
		cp := *t.booking
		t.store.bookings = append(t.store.bookings, &cp)
	}
	if t.payment != nil {
		cp := *t.payment
		t.store.payments = append(t.store.payments, &cp)
	}
	t.store.commits++
	t.store.mu.Unlock()
	t.finish()
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	if t.done {
		return nil
	}
	t.store.mu.Lock()
	t.store.rollbacks++
	t.store.mu.Unlock()
	t.finish()
	return nil
}

func (t *fakeTx) finish() {
	t.done = true
	if t.held != nil {
		t.held.Unlock()
		t.held = nil
	}
}

type fixture struct {
	svc   Service
	store *fakeStore
	codec *reference.Codec
}

func newFixture(t *testing.T, limiter ratelimit.Limiter) *fixture {
	t.Helper()

	codec, err := reference.NewCodec(strings.Repeat("k", reference.KeySize))
	require.NoError(t, err)

	if limiter == nil {
		limiter = ratelimit.NewMemory(ratelimit.Policy{Limit: 1000, Window: time.Minute})
	}

	store := newFakeStore()
	svc := NewService(store, newFakeCourts(), limiter, codec, Config{
		HourlyRate: DefaultHourlyRate,
		Now:        func() time.Time { return testNow },
	}, nil)

	return &fixture{svc: svc, store: store, codec: codec}
}

// validInput is a booking for tomorrow, 10:00 to 11:00.
func validInput() CreateInput {
	return CreateInput{
		CustomerName:  "Juan Dela Cruz",
		CustomerEmail: "juan@example.com",
		CustomerPhone: "09171234567",
		CourtID:       testCourtID,
		Date:          "2026-02-09",
		StartTime:     "10:00",
		EndTime:       "11:00",
		PaymentMethod: "GCASH",
		ReferenceCode: "ABC123",
	}
}
