package court

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

type CreateRequest struct {
	Name        string
	Description string
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Court, error)
	// GetByID returns an active court. Inactive and unknown courts are
	// both reported as ErrNotFound.
	GetByID(ctx context.Context, id string) (*Court, error)
	ListActive(ctx context.Context) ([]*Court, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Court, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrEmptyName
	}

	c := &Court{Name: name, IsActive: true}
	if d := strings.TrimSpace(req.Description); d != "" {
		c.Description = &d
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Court, error) {
	// Skip the round trip for ids that cannot exist.
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.IsActive {
		return nil, ErrNotFound
	}
	return c, nil
}

func (s *service) ListActive(ctx context.Context) ([]*Court, error) {
	return s.repo.ListActive(ctx)
}
