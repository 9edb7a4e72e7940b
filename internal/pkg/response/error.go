package response

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nekogravitycat/court-reservation/internal/pkg/apperror"
)

// ErrorResponse defines the JSON structure for error responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// Error sends a JSON error response.
// It checks if the error is an AppError to determine the status code.
// Anything else, and any AppError with a 5xx code, is logged and reported
// to the client as a bare "internal server error".
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		zap.L().Error("unhandled error",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	if appErr.Code >= http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.String("error_code", appErr.ErrorCode),
			zap.Error(appErr.Err),
		)
		c.JSON(appErr.Code, ErrorResponse{Error: "internal server error"})
		return
	}

	if appErr.RetryAfter > 0 {
		secs := int(math.Ceil(appErr.RetryAfter.Seconds()))
		c.Header("Retry-After", strconv.Itoa(secs))
	}

	c.JSON(appErr.Code, ErrorResponse{Error: appErr.Message, Field: appErr.Field})
}
