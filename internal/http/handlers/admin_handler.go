// README: Admin handlers for pricing rules and customer discounts (list, toggle, validity summary).
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"freightquote/internal/modules/pricing"
)

type PricingAdmin interface {
	ListRules(ctx context.Context) ([]pricing.PricingRule, error)
	SetRuleActive(ctx context.Context, id string, active bool) error
	ListDiscounts(ctx context.Context) ([]pricing.CustomerDiscount, error)
	DiscountsByCustomer(ctx context.Context, customerID string) ([]pricing.CustomerDiscount, error)
	SetDiscountActive(ctx context.Context, id string, active bool) error
}

type AdminHandler struct {
	store PricingAdmin
	now   func() time.Time
	log   *zap.Logger
}

func NewAdminHandler(store PricingAdmin, log *zap.Logger) *AdminHandler {
	return &AdminHandler{store: store, now: time.Now, log: nopIfNil(log)}
}

// SetClock overrides the clock used for validity reporting.
func (h *AdminHandler) SetClock(now func() time.Time) {
	h.now = now
}

type setActiveReq struct {
	Active *bool `json:"active"`
}

type discountView struct {
	pricing.CustomerDiscount
	Validity pricing.Validity `json:"validity"`
}

func (h *AdminHandler) ListRules(c *gin.Context) {
	rules, err := h.store.ListRules(c.Request.Context())
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	if rules == nil {
		rules = []pricing.PricingRule{}
	}
	writeJSON(c, http.StatusOK, map[string]any{"rules": rules})
}

func (h *AdminHandler) SetRuleActive(c *gin.Context) {
	id, active, ok := h.bindToggle(c)
	if !ok {
		return
	}
	if err := h.store.SetRuleActive(c.Request.Context(), id, active); err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"id": id, "is_active": active})
}

// ListDiscounts returns discounts filtered by ?search= and ?tier=, each with its validity,
// plus a summary over every discount.
func (h *AdminHandler) ListDiscounts(c *gin.Context) {
	all, err := h.store.ListDiscounts(c.Request.Context())
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	now := h.now()
	filtered := pricing.FilterDiscounts(all, c.Query("search"), c.Query("tier"))
	writeJSON(c, http.StatusOK, map[string]any{
		"discounts": h.views(filtered, now),
		"summary":   pricing.SummarizeDiscounts(all, now),
	})
}

func (h *AdminHandler) CustomerDiscounts(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid customer id")
		return
	}
	ds, err := h.store.DiscountsByCustomer(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"discounts": h.views(ds, h.now())})
}

func (h *AdminHandler) SetDiscountActive(c *gin.Context) {
	id, active, ok := h.bindToggle(c)
	if !ok {
		return
	}
	if err := h.store.SetDiscountActive(c.Request.Context(), id, active); err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"id": id, "is_active": active})
}

func (h *AdminHandler) bindToggle(c *gin.Context) (string, bool, bool) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid id")
		return "", false, false
	}
	var req setActiveReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Active == nil {
		writeError(c, http.StatusBadRequest, "missing active flag")
		return "", false, false
	}
	return id, *req.Active, true
}

func (h *AdminHandler) views(ds []pricing.CustomerDiscount, now time.Time) []discountView {
	out := make([]discountView, 0, len(ds))
	for _, d := range ds {
		out = append(out, discountView{CustomerDiscount: d, Validity: pricing.DiscountStatus(d, now)})
	}
	return out
}
