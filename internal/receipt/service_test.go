package receipt

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/court-reservation/internal/booking"
	"github.com/nekogravitycat/court-reservation/internal/payment"
	"github.com/nekogravitycat/court-reservation/internal/pkg/storage"
)

const testRef = "valid-ref"

type fakeFinder struct {
	b *booking.Booking
}

func (f *fakeFinder) GetByReference(_ context.Context, ref string) (*booking.Booking, error) {
	if ref != testRef {
		return nil, booking.ErrInvalidReference
	}
	return f.b, nil
}

type fakeRepo struct {
	byPayment map[string]*Receipt
	err       error
}

func (f *fakeRepo) GetByPaymentID(_ context.Context, id string) (*Receipt, error) {
	r, ok := f.byPayment[id]
	if !ok {
		return nil, ErrNotFound
	}
	return r, nil
}

func (f *fakeRepo) Replace(_ context.Context, r *Receipt) (*Receipt, error) {
	if f.err != nil {
		return nil, f.err
	}
	old := f.byPayment[r.PaymentID]
	f.byPayment[r.PaymentID] = r
	return old, nil
}

type fixture struct {
	svc     Service
	repo    *fakeRepo
	finder  *fakeFinder
	dir     string
	payment *payment.Payment
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)

	p := &payment.Payment{ID: uuid.NewString(), Status: payment.StatusPending}
	finder := &fakeFinder{b: &booking.Booking{BookingNumber: "BK-20260208-00001", Payment: p}}
	repo := &fakeRepo{byPayment: map[string]*Receipt{}}

	return &fixture{
		svc:     NewService(finder, repo, store, nil),
		repo:    repo,
		finder:  finder,
		dir:     dir,
		payment: p,
	}
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 640, 480))
	for x := 0; x < 640; x += 4 {
		img.Set(x, x%480, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func upload(f *fixture, data []byte) (*Receipt, error) {
	return f.svc.Upload(context.Background(), testRef, UploadInput{
		Filename: "gcash-screenshot.png",
		Size:     int64(len(data)),
		Content:  bytes.NewReader(data),
	})
}

func exists(t *testing.T, dir, p string) bool {
	t.Helper()
	_, err := os.Stat(filepath.Join(dir, filepath.FromSlash(p)))
	return err == nil
}

func TestUpload(t *testing.T) {
	f := newFixture(t)

	rec, err := upload(f, pngBytes(t))
	require.NoError(t, err)

	assert.Equal(t, f.payment.ID, rec.PaymentID)
	assert.Equal(t, storage.ContentTypePNG, rec.ContentType)
	assert.Equal(t, "gcash-screenshot.png", rec.Filename)
	require.NotNil(t, rec.ThumbnailPath)
	assert.True(t, exists(t, f.dir, rec.StoragePath))
	assert.True(t, exists(t, f.dir, *rec.ThumbnailPath))

	stream, got, err := f.svc.DownloadThumbnail(context.Background(), f.payment.ID)
	require.NoError(t, err)
	defer stream.Close()
	assert.Equal(t, rec.ID, got.ID)

	thumb, _, err := image.Decode(stream)
	require.NoError(t, err)
	assert.LessOrEqual(t, thumb.Bounds().Dx(), thumbnailWidth)
	assert.LessOrEqual(t, thumb.Bounds().Dy(), thumbnailHeight)

	orig, _, err := f.svc.Download(context.Background(), f.payment.ID)
	require.NoError(t, err)
	data, err := io.ReadAll(orig)
	require.NoError(t, orig.Close())
	require.NoError(t, err)
	assert.Equal(t, pngBytes(t), data)
}

func TestUploadReplacesPreviousReceipt(t *testing.T) {
	f := newFixture(t)

	first, err := upload(f, pngBytes(t))
	require.NoError(t, err)
	second, err := upload(f, pngBytes(t))
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.False(t, exists(t, f.dir, first.StoragePath))
	assert.False(t, exists(t, f.dir, *first.ThumbnailPath))
	assert.True(t, exists(t, f.dir, second.StoragePath))
}

func TestUploadRejects(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(f *fixture)
		data    []byte
		wantErr error
	}{
		{"pdf", nil, []byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3"), ErrUnsupportedType},
		{"html", nil, []byte("<html><script>alert(1)</script></html>"), ErrUnsupportedType},
		{"empty", nil, []byte{}, ErrFileRequired},
		{"too large", nil, append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, MaxSize)...), ErrTooLarge},
		{"truncated png", nil, []byte("\x89PNG\r\n\x1a\n\x00\x00"), ErrUnsupportedType},
		{"payment already verified", func(f *fixture) { f.payment.Status = payment.StatusVerified }, nil, ErrPaymentReviewed},
		{"booking without payment", func(f *fixture) { f.finder.b.Payment = nil }, nil, ErrPaymentMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.prepare != nil {
				tt.prepare(f)
			}
			data := tt.data
			if data == nil {
				data = pngBytes(t)
			}

			_, err := upload(f, data)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, f.repo.byPayment)

			entries, _ := os.ReadDir(filepath.Join(f.dir, "receipts"))
			for _, e := range entries {
				files, _ := os.ReadDir(filepath.Join(f.dir, "receipts", e.Name()))
				assert.Empty(t, files, "nothing is left in storage")
			}
		})
	}
}

func TestUploadWrongReference(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Upload(context.Background(), "forged", UploadInput{Content: bytes.NewReader(pngBytes(t))})
	assert.ErrorIs(t, err, booking.ErrInvalidReference)
}

func TestUploadCleansUpWhenDatabaseFails(t *testing.T) {
	f := newFixture(t)
	f.repo.err = errors.New("insert failed")

	_, err := upload(f, pngBytes(t))
	require.Error(t, err)

	entries, err := os.ReadDir(filepath.Join(f.dir, "receipts"))
	require.NoError(t, err)
	for _, e := range entries {
		files, err := os.ReadDir(filepath.Join(f.dir, "receipts", e.Name()))
		require.NoError(t, err)
		assert.Empty(t, files)
	}
}

func TestDownloadErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _, err := f.svc.Download(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, ErrInvalidPaymentID)

	_, _, err = f.svc.Download(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)

	f.repo.byPayment[f.payment.ID] = &Receipt{ID: uuid.NewString(), PaymentID: f.payment.ID, StoragePath: "receipts/zz/missing.png"}
	_, _, err = f.svc.Download(ctx, f.payment.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, err = f.svc.DownloadThumbnail(ctx, f.payment.ID)
	assert.ErrorIs(t, err, ErrNoThumbnail)
}

func TestCleanFilename(t *testing.T) {
	assert.Equal(t, "pay.PNG", cleanFilename(`C:\Users\juan\pay.PNG`, ".png"))
	assert.Equal(t, "passwd.jpg", cleanFilename("../../etc/passwd", ".jpg"))
	assert.Equal(t, "receipt.jpg", cleanFilename("", ".jpg"))
	assert.Equal(t, "evil.png", cleanFilename("ev\"il.png", ".png"))
}
