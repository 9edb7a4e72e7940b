package receipt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type Repository interface {
	GetByPaymentID(ctx context.Context, paymentID string) (*Receipt, error)
	// Replace stores r as the receipt of its payment and returns the receipt
	// it replaced, if any.
	Replace(ctx context.Context, r *Receipt) (*Receipt, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var receiptColumns = []string{
	"id", "payment_id", "filename", "storage_path", "thumbnail_path", "content_type", "size", "created_at",
}

func scanReceipt(row pgx.Row) (*Receipt, error) {
	r := &Receipt{}
	if err := row.Scan(
		&r.ID,
		&r.PaymentID,
		&r.Filename,
		&r.StoragePath,
		&r.ThumbnailPath,
		&r.ContentType,
		&r.Size,
		&r.CreatedAt,
	); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *pgxRepository) GetByPaymentID(ctx context.Context, paymentID string) (*Receipt, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(receiptColumns...).
		From("public.payment_receipts").
		Where(squirrel.Eq{"payment_id": paymentID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get receipt query failed: %w", err)
	}

	rec, err := scanReceipt(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get receipt failed: %w", err)
	}
	return rec, nil
}

func (r *pgxRepository) Replace(ctx context.Context, rec *Receipt) (*Receipt, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin receipt tx failed: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			zap.L().Error("rollback receipt tx failed", zap.String("payment_id", rec.PaymentID), zap.Error(rbErr))
		}
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Delete("public.payment_receipts").
		Where(squirrel.Eq{"payment_id": rec.PaymentID}).
		Suffix("RETURNING " + strings.Join(receiptColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build delete receipt query failed: %w", err)
	}

	old, err := scanReceipt(tx.QueryRow(ctx, query, args...))
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("delete previous receipt failed: %w", err)
		}
		old = nil
	}

	query, args, err = psql.Insert("public.payment_receipts").
		Columns("id", "payment_id", "filename", "storage_path", "thumbnail_path", "content_type", "size").
		Values(rec.ID, rec.PaymentID, rec.Filename, rec.StoragePath, rec.ThumbnailPath, rec.ContentType, rec.Size).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert receipt query failed: %w", err)
	}

	if err := tx.QueryRow(ctx, query, args...).Scan(&rec.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert receipt failed: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit receipt tx failed: %w", err)
	}
	return old, nil
}
