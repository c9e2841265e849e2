// README: Quote handlers for single quotes, route options and competitor comparison.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"freightquote/internal/modules/pricing"
)

type PricingService interface {
	Quote(ctx context.Context, req pricing.QuoteRequest) (pricing.PriceBreakdown, error)
	RouteOptions(ctx context.Context, req pricing.OptionsRequest) ([]pricing.RouteOption, error)
}

type QuoteHandler struct {
	pricing PricingService
	log     *zap.Logger
}

func NewQuoteHandler(svc PricingService, log *zap.Logger) *QuoteHandler {
	return &QuoteHandler{pricing: svc, log: nopIfNil(log)}
}

func (h *QuoteHandler) Quote(c *gin.Context) {
	var req pricing.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	bd, err := h.pricing.Quote(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	writeJSON(c, http.StatusOK, bd)
}

func (h *QuoteHandler) RouteOptions(c *gin.Context) {
	var req pricing.OptionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	opts, err := h.pricing.RouteOptions(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"options": opts})
}

type compareReq struct {
	pricing.QuoteRequest
	Competitors []pricing.CompetitorQuote `json:"competitors"`
}

func (h *QuoteHandler) Compare(c *gin.Context) {
	var req compareReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if len(req.Competitors) == 0 {
		writeError(c, http.StatusBadRequest, "missing competitors")
		return
	}
	bd, err := h.pricing.Quote(c.Request.Context(), req.QuoteRequest)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{
		"breakdown":   bd,
		"comparisons": pricing.CompareCompetitors(bd.FinalPrice, req.Competitors),
	})
}
