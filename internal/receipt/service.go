package receipt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nekogravitycat/court-reservation/internal/booking"
	"github.com/nekogravitycat/court-reservation/internal/payment"
	"github.com/nekogravitycat/court-reservation/internal/pkg/apperror"
	"github.com/nekogravitycat/court-reservation/internal/pkg/storage"
)

// BookingFinder resolves an encrypted reference to its booking.
type BookingFinder interface {
	GetByReference(ctx context.Context, encryptedRef string) (*booking.Booking, error)
}

// UploadInput is one uploaded image. Size is what the client declared; the
// real size is measured while reading Content.
type UploadInput struct {
	Filename string
	Size     int64
	Content  io.Reader
}

type Service interface {
	// Upload attaches a receipt to the payment of the booking identified by
	// encryptedRef, replacing any earlier one. The payment must still be
	// PENDING.
	Upload(ctx context.Context, encryptedRef string, in UploadInput) (*Receipt, error)
	Download(ctx context.Context, paymentID string) (io.ReadCloser, *Receipt, error)
	DownloadThumbnail(ctx context.Context, paymentID string) (io.ReadCloser, *Receipt, error)
}

type service struct {
	bookings BookingFinder
	repo     Repository
	storage  storage.Storage
	imgProc  *storage.ImageProcessor
	log      *zap.Logger
}

func NewService(bookings BookingFinder, repo Repository, store storage.Storage, log *zap.Logger) Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &service{
		bookings: bookings,
		repo:     repo,
		storage:  store,
		imgProc:  storage.NewImageProcessor(),
		log:      log,
	}
}

func (s *service) Upload(ctx context.Context, encryptedRef string, in UploadInput) (*Receipt, error) {
	b, err := s.bookings.GetByReference(ctx, encryptedRef)
	if err != nil {
		return nil, err
	}
	if b.Payment == nil {
		return nil, ErrPaymentMissing
	}
	if b.Payment.Status != payment.StatusPending {
		return nil, ErrPaymentReviewed
	}

	if in.Content == nil {
		return nil, ErrFileRequired
	}
	if in.Size > MaxSize {
		return nil, ErrTooLarge
	}
	data, err := io.ReadAll(io.LimitReader(in.Content, MaxSize+1))
	if err != nil {
		return nil, apperror.Internal(err, "RECEIPT_READ_FAILED")
	}
	if len(data) == 0 {
		return nil, ErrFileRequired
	}
	if len(data) > MaxSize {
		return nil, ErrTooLarge
	}

	contentType := s.imgProc.DetectType(data)
	ext := storage.Extension(contentType)
	if ext == "" {
		return nil, ErrUnsupportedType
	}

	id := uuid.NewString()
	// Sharded as receipts/ab/<id>.<ext>
	dir := path.Join("receipts", id[:2])
	storagePath := path.Join(dir, id+ext)

	if err := s.storage.Save(ctx, storagePath, bytes.NewReader(data)); err != nil {
		return nil, apperror.Internal(err, "RECEIPT_STORE_FAILED")
	}

	var thumbnailPath *string
	thumb, err := s.imgProc.GenerateThumbnail(bytes.NewReader(data), thumbnailWidth, thumbnailHeight)
	if err != nil {
		// A receipt that sniffs as an image but does not decode is rejected.
		s.cleanup(storagePath)
		return nil, ErrUnsupportedType
	}
	tPath := path.Join(dir, id+"_thumb.jpg")
	if err := s.storage.Save(ctx, tPath, thumb); err != nil {
		s.log.Warn("receipt thumbnail not stored", zap.String("payment_id", b.Payment.ID), zap.Error(err))
	} else {
		thumbnailPath = &tPath
	}

	rec := &Receipt{
		ID:            id,
		PaymentID:     b.Payment.ID,
		Filename:      cleanFilename(in.Filename, ext),
		StoragePath:   storagePath,
		ThumbnailPath: thumbnailPath,
		ContentType:   contentType,
		Size:          int64(len(data)),
	}

	old, err := s.repo.Replace(ctx, rec)
	if err != nil {
		s.cleanup(storagePath)
		if thumbnailPath != nil {
			s.cleanup(*thumbnailPath)
		}
		return nil, apperror.Internal(err, "RECEIPT_SAVE_FAILED")
	}
	if old != nil {
		s.cleanup(old.StoragePath)
		if old.ThumbnailPath != nil {
			s.cleanup(*old.ThumbnailPath)
		}
	}

	s.log.Info("receipt uploaded",
		zap.String("payment_id", rec.PaymentID),
		zap.String("booking_number", b.BookingNumber),
		zap.String("content_type", rec.ContentType),
		zap.Int64("size", rec.Size),
		zap.Bool("replaced", old != nil),
	)
	return rec, nil
}

// cleanup removes a stored object that is no longer referenced.
func (s *service) cleanup(p string) {
	if err := s.storage.Delete(context.Background(), p); err != nil {
		s.log.Error("orphaned receipt file", zap.String("path", p), zap.Error(err))
	}
}

// cleanFilename keeps the base name of the client's file, without quotes
// or path separators, and makes sure it ends in ext.
func cleanFilename(name, ext string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		if r == '"' || r < 0x20 {
			return -1
		}
		return r
	}, name)
	if name == "" || name == "." || name == "/" {
		name = "receipt"
	}
	if !strings.EqualFold(path.Ext(name), ext) {
		name += ext
	}
	return name
}

func (s *service) get(ctx context.Context, paymentID string) (*Receipt, error) {
	if _, err := uuid.Parse(paymentID); err != nil {
		return nil, ErrInvalidPaymentID
	}
	rec, err := s.repo.GetByPaymentID(ctx, paymentID)
	if err != nil {
		return nil, apperror.OrInternal(err, "RECEIPT_LOOKUP_FAILED")
	}
	return rec, nil
}

func (s *service) Download(ctx context.Context, paymentID string) (io.ReadCloser, *Receipt, error) {
	rec, err := s.get(ctx, paymentID)
	if err != nil {
		return nil, nil, err
	}
	stream, err := s.open(ctx, rec.StoragePath)
	if err != nil {
		return nil, nil, err
	}
	return stream, rec, nil
}

func (s *service) DownloadThumbnail(ctx context.Context, paymentID string) (io.ReadCloser, *Receipt, error) {
	rec, err := s.get(ctx, paymentID)
	if err != nil {
		return nil, nil, err
	}
	if rec.ThumbnailPath == nil {
		return nil, nil, ErrNoThumbnail
	}
	stream, err := s.open(ctx, *rec.ThumbnailPath)
	if err != nil {
		return nil, nil, err
	}
	return stream, rec, nil
}

func (s *service) open(ctx context.Context, p string) (io.ReadCloser, error) {
	stream, err := s.storage.Get(ctx, p)
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			s.log.Error("receipt file missing", zap.String("path", p))
			return nil, ErrNotFound
		}
		return nil, apperror.Internal(fmt.Errorf("open receipt: %w", err), "RECEIPT_OPEN_FAILED")
	}
	return stream, nil
}
