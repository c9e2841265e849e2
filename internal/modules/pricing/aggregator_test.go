package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyRules_Impacts(t *testing.T) {
	rules := []PricingRule{
		newRule("fuel", PricePerKm, "0.35"),
		newRule("toll", PriceFixed, "12.50", func(r *PricingRule) { r.Priority = PriorityHigh }),
		newRule("peak", PricePercentage, "10", func(r *PricingRule) { r.Priority = PriorityLow }),
	}
	res, err := ApplyRules(NewMatcher(nil), rules, baseSim(), dec("500"))
	require.NoError(t, err)
	require.Len(t, res.Adjustments, 3)

	// high, medium, low
	assert.Equal(t, "toll", res.Adjustments[0].RuleID)
	assertDec(t, "12.50", res.Adjustments[0].Impact)
	assert.Equal(t, "fuel", res.Adjustments[1].RuleID)
	assertDec(t, "35", res.Adjustments[1].Impact)
	assert.Equal(t, "peak", res.Adjustments[2].RuleID)
	assertDec(t, "54.75", res.Adjustments[2].Impact)
	assertDec(t, "602.25", res.Subtotal)
}

func TestApplyRules_PercentageOrderMatters(t *testing.T) {
	fixed := newRule("a-fixed", PriceFixed, "100")
	pct := newRule("b-pct", PricePercentage, "10")

	t.Run("fixed first", func(t *testing.T) {
		f, p := fixed, pct
		f.Priority, p.Priority = PriorityHigh, PriorityLow
		res, err := ApplyRules(NewMatcher(nil), []PricingRule{p, f}, baseSim(), dec("0"))
		require.NoError(t, err)
		assertDec(t, "110", res.Subtotal)
	})
	t.Run("percentage first", func(t *testing.T) {
		f, p := fixed, pct
		f.Priority, p.Priority = PriorityLow, PriorityHigh
		res, err := ApplyRules(NewMatcher(nil), []PricingRule{f, p}, baseSim(), dec("0"))
		require.NoError(t, err)
		assertDec(t, "100", res.Subtotal)
	})
}

func TestApplyRules_OrderWithinBand(t *testing.T) {
	rules := []PricingRule{
		newRule("c", PriceFixed, "1", func(r *PricingRule) { r.PriorityOrder = 2 }),
		newRule("b", PriceFixed, "1", func(r *PricingRule) { r.PriorityOrder = 1 }),
		newRule("a", PriceFixed, "1", func(r *PricingRule) { r.PriorityOrder = 2 }),
	}
	res, err := ApplyRules(NewMatcher(nil), rules, baseSim(), dec("10"))
	require.NoError(t, err)

	ids := make([]string, 0, len(res.Adjustments))
	for _, a := range res.Adjustments {
		ids = append(ids, a.RuleID)
	}
	assert.Equal(t, []string{"b", "a", "c"}, ids)
	// input slice is left alone
	assert.Equal(t, "c", rules[0].ID)
}

func TestApplyRules_SkipsInactiveAndUnmatched(t *testing.T) {
	rules := []PricingRule{
		newRule("off", PriceFixed, "50", func(r *PricingRule) { r.IsActive = false }),
		newRule("van-only", PriceFixed, "50", func(r *PricingRule) {
			r.Conditions.VehicleTypes = []VehicleType{VehicleVan}
		}),
	}
	res, err := ApplyRules(NewMatcher(nil), rules, baseSim(), dec("250"))
	require.NoError(t, err)
	assert.Empty(t, res.Adjustments)
	assertDec(t, "250", res.Subtotal)
}

func TestApplyRules_NegativeAdjustments(t *testing.T) {
	rules := []PricingRule{
		newRule("loyal", PricePercentage, "-20"),
		newRule("backhaul", PriceFixed, "-30", func(r *PricingRule) { r.Priority = PriorityLow }),
	}
	res, err := ApplyRules(NewMatcher(nil), rules, baseSim(), dec("200"))
	require.NoError(t, err)
	assertDec(t, "-40", res.Adjustments[0].Impact)
	assertDec(t, "130", res.Subtotal)
}

func TestApplyRules_InvalidRule(t *testing.T) {
	tests := []struct {
		name string
		rule PricingRule
	}{
		{name: "unknown price type", rule: newRule("x", PriceType("per_hour"), "1")},
		{name: "unknown priority", rule: newRule("x", PriceFixed, "1", func(r *PricingRule) { r.Priority = "urgent" })},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ApplyRules(NewMatcher(nil), []PricingRule{tt.rule}, baseSim(), dec("100"))
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}
