package admin

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/court-reservation/internal/pkg/apperror"
)

var (
	ErrUnauthorized = apperror.New(http.StatusUnauthorized, "Unauthorized - Please log in")
	ErrForbidden    = apperror.New(http.StatusForbidden, "Forbidden - Admin access required")
	ErrNotFound     = apperror.New(http.StatusNotFound, "admin user not found")
	ErrAlreadyAdmin = apperror.New(http.StatusConflict, "user is already an admin")
)

// AdminUser grants admin rights to an authenticated user.
type AdminUser struct {
	ID        string
	UserID    string
	Name      string
	CreatedAt time.Time
}
