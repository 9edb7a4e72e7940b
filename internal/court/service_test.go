package court

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	courts map[string]*Court
}

func (r *memoryRepo) Create(_ context.Context, c *Court) error {
	for _, existing := range r.courts {
		if existing.Name == c.Name {
			return ErrNameTaken
		}
	}
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	r.courts[c.ID] = c
	return nil
}

func (r *memoryRepo) GetByID(_ context.Context, id string) (*Court, error) {
	c, ok := r.courts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return c, nil
}

func (r *memoryRepo) ListActive(_ context.Context) ([]*Court, error) {
	var out []*Court
	for _, c := range r.courts {
		if c.IsActive {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func TestCourtService(t *testing.T) {
	repo := &memoryRepo{courts: map[string]*Court{}}
	svc := NewService(repo)
	ctx := context.Background()

	a, err := svc.Create(ctx, CreateRequest{Name: " Court A ", Description: " indoor "})
	require.NoError(t, err)
	assert.Equal(t, "Court A", a.Name)
	require.NotNil(t, a.Description)
	assert.Equal(t, "indoor", *a.Description)
	assert.True(t, a.IsActive)

	b, err := svc.Create(ctx, CreateRequest{Name: "Court B"})
	require.NoError(t, err)
	assert.Nil(t, b.Description)

	_, err = svc.Create(ctx, CreateRequest{Name: "  "})
	assert.ErrorIs(t, err, ErrEmptyName)
	_, err = svc.Create(ctx, CreateRequest{Name: "Court A"})
	assert.ErrorIs(t, err, ErrNameTaken)

	got, err := svc.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	_, err = svc.GetByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)

	repo.courts[b.ID].IsActive = false
	_, err = svc.GetByID(ctx, b.ID)
	assert.ErrorIs(t, err, ErrNotFound, "inactive courts cannot be booked")

	list, err := svc.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Court A", list[0].Name)
}
