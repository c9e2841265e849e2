// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"freightquote/internal/maps"
	"freightquote/internal/modules/booking"
	"freightquote/internal/modules/pricing"
)

type errorResponse struct {
	Error string `json:"error"`
}

// isValidID accepts the slugs and UUIDs used for rules, discounts, customers and bookings.
func isValidID(v string) bool {
	if v == "" || len(v) > 64 {
		return false
	}
	for _, c := range v {
		if (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '-' || c == '_' {
			continue
		}
		return false
	}
	return true
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// writeServiceError maps module sentinel errors onto HTTP statuses. Unknown errors
// are logged and reported as 500 without detail.
func writeServiceError(c *gin.Context, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, pricing.ErrInvalidInput), errors.Is(err, booking.ErrBadRequest):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, pricing.ErrAmbiguousDiscountTier), errors.Is(err, maps.ErrNoRoute):
		writeError(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, booking.ErrNotFound),
		errors.Is(err, pricing.ErrRuleNotFound),
		errors.Is(err, pricing.ErrDiscountNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, booking.ErrInvalidState), errors.Is(err, booking.ErrConflict):
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeError(c, http.StatusGatewayTimeout, "request timed out")
	default:
		log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

func nopIfNil(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}
