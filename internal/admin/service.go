package admin

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

type Service interface {
	// Authorize resolves an authenticated user id to its AdminUser.
	// Empty ids fail with ErrUnauthorized, non-admins with ErrForbidden.
	Authorize(ctx context.Context, userID string) (*AdminUser, error)
	IsAdmin(ctx context.Context, userID string) (bool, error)
	Grant(ctx context.Context, userID, name string) (*AdminUser, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Authorize(ctx context.Context, userID string) (*AdminUser, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	if _, err := uuid.Parse(userID); err != nil {
		return nil, ErrForbidden
	}

	a, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrForbidden
		}
		return nil, err
	}
	return a, nil
}

func (s *service) IsAdmin(ctx context.Context, userID string) (bool, error) {
	_, err := s.Authorize(ctx, userID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrUnauthorized):
		return false, nil
	default:
		return false, err
	}
}

func (s *service) Grant(ctx context.Context, userID, name string) (*AdminUser, error) {
	a := &AdminUser{UserID: userID, Name: strings.TrimSpace(name)}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}
