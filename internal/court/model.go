package court

import (
	"errors"
	"net/http"
	"time"

	"github.com/nekogravitycat/court-reservation/internal/pkg/apperror"
)

var (
	ErrNotFound  = apperror.New(http.StatusNotFound, "court not found")
	ErrNameTaken = errors.New("court name already used")
	ErrEmptyName = errors.New("name cannot be empty")
)

// Court is a bookable court. Bookings only reference active courts.
type Court struct {
	ID          string
	Name        string
	Description *string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
