package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/court-reservation/internal/court"
	"github.com/nekogravitycat/court-reservation/internal/pkg/apperror"
	"github.com/nekogravitycat/court-reservation/internal/pkg/response"
)

type Handler struct {
	service court.Service
}

func NewHandler(service court.Service) *Handler {
	return &Handler{service: service}
}

// List returns every active court, ordered by name.
func (h *Handler) List(c *gin.Context) {
	courts, err := h.service.ListActive(c.Request.Context())
	if err != nil {
		response.Error(c, apperror.Internal(err, "COURT_LIST_FAILED"))
		return
	}

	items := make([]CourtResponse, len(courts))
	for i, ct := range courts {
		items[i] = NewCourtResponse(ct)
	}

	c.JSON(http.StatusOK, response.NewListResponse(items))
}
