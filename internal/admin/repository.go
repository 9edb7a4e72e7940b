package admin

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	GetByUserID(ctx context.Context, userID string) (*AdminUser, error)
	Create(ctx context.Context, a *AdminUser) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) GetByUserID(ctx context.Context, userID string) (*AdminUser, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("id", "user_id", "name", "created_at").
		From("public.admin_users").
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get admin query failed: %w", err)
	}

	var a AdminUser
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&a.ID, &a.UserID, &a.Name, &a.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get admin failed: %w", err)
	}
	return &a, nil
}

func (r *pgxRepository) Create(ctx context.Context, a *AdminUser) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.admin_users").
		Columns("user_id", "name").
		Values(a.UserID, a.Name).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create admin query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&a.ID, &a.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrAlreadyAdmin
		}
		return fmt.Errorf("create admin failed: %w", err)
	}
	return nil
}
