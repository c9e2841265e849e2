// README: Booking handlers for create/get/list and status transitions.
package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"freightquote/internal/modules/booking"
	"freightquote/internal/types"
)

type BookingHandler struct {
	booking *booking.Service
	log     *zap.Logger
}

func NewBookingHandler(svc *booking.Service, log *zap.Logger) *BookingHandler {
	return &BookingHandler{booking: svc, log: nopIfNil(log)}
}

func (h *BookingHandler) Create(c *gin.Context) {
	var req booking.CreateCommand
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.CustomerID == "" {
		writeError(c, http.StatusBadRequest, "missing customer_id")
		return
	}
	b, err := h.booking.Create(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	writeJSON(c, http.StatusCreated, b)
}

func (h *BookingHandler) Get(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	b, err := h.booking.Get(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	writeJSON(c, http.StatusOK, b)
}

func (h *BookingHandler) Events(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	events, err := h.booking.Events(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"events": events})
}

func (h *BookingHandler) ListByCustomer(c *gin.Context) {
	customerID := c.Param("id")
	if !isValidID(customerID) {
		writeError(c, http.StatusBadRequest, "invalid customer id")
		return
	}
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(c, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	list, err := h.booking.ListByCustomer(c.Request.Context(), customerID, limit)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"bookings": list})
}

func (h *BookingHandler) Confirm(c *gin.Context) {
	h.transition(c, booking.StatusConfirmed, h.booking.Confirm)
}

func (h *BookingHandler) Dispatch(c *gin.Context) {
	h.transition(c, booking.StatusInTransit, h.booking.Dispatch)
}

// Deliver records the handover. The body must carry recipient_name and signature.
func (h *BookingHandler) Deliver(c *gin.Context) {
	var req booking.DeliverCommand
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	h.transition(c, booking.StatusDelivered, func(ctx context.Context, id types.ID) error {
		req.BookingID = id
		return h.booking.Deliver(ctx, req)
	})
}

type cancelReq struct {
	Reason string `json:"reason"`
}

func (h *BookingHandler) Cancel(c *gin.Context) {
	var req cancelReq
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, http.StatusBadRequest, "invalid json")
			return
		}
	}
	h.transition(c, booking.StatusCancelled, func(ctx context.Context, id types.ID) error {
		return h.booking.Cancel(ctx, booking.CancelCommand{BookingID: id, Reason: req.Reason})
	})
}

func (h *BookingHandler) transition(c *gin.Context, to booking.Status, fn func(context.Context, types.ID) error) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	if err := fn(c.Request.Context(), id); err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"booking_id": id, "status": to})
}

func bookingID(c *gin.Context) (types.ID, bool) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid booking id")
		return "", false
	}
	return types.ID(id), true
}
