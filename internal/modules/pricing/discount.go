// README: Discount resolver picks eligible customer discounts and applies them in order.
package pricing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"freightquote/internal/types"
)

type DiscountResult struct {
	FinalPrice decimal.Decimal
	Lines      []DiscountLine
}

// ResolveDiscounts subtracts every eligible discount from subtotal, in input order.
// The result is floored at zero, including when rules left subtotal negative.
// today is the evaluation date used when sim has no scheduled date.
func ResolveDiscounts(m *Matcher, discounts []CustomerDiscount, sim RouteSimulation, subtotal decimal.Decimal, monthlyVolume int, today time.Time) (DiscountResult, error) {
	sched, err := parseSchedule(sim)
	if err != nil {
		return DiscountResult{}, err
	}
	return resolveDiscounts(m, discounts, sim, sched, subtotal, monthlyVolume, today)
}

func resolveDiscounts(m *Matcher, discounts []CustomerDiscount, sim RouteSimulation, sched schedule, subtotal decimal.Decimal, monthlyVolume int, today time.Time) (DiscountResult, error) {
	at := dateOnly(today)
	if sched.hasDate {
		at = sched.date
	}

	running := subtotal
	lines := make([]DiscountLine, 0, len(discounts))
	for _, d := range discounts {
		if sim.CustomerID == "" || d.CustomerID != sim.CustomerID || !d.IsActive {
			continue
		}
		if !validOn(d, at) || !m.matchDiscount(d.Conditions, sim) {
			continue
		}
		value, ok, err := effectiveValue(d, monthlyVolume)
		if err != nil {
			return DiscountResult{}, err
		}
		if !ok {
			continue
		}

		var impact decimal.Decimal
		switch d.DiscountType {
		case DiscountPercentage:
			impact = running.Mul(value).Div(hundred)
		case DiscountFixed:
			impact = value
		default:
			return DiscountResult{}, fmt.Errorf("%w: discount %s type %q", ErrInvalidInput, d.ID, d.DiscountType)
		}
		// A discount only ever removes what is left of a positive price.
		impact = decimal.Min(types.RoundMoney(impact), decimal.Max(running, decimal.Zero))
		impact = decimal.Max(impact, decimal.Zero)
		running = running.Sub(impact)
		lines = append(lines, DiscountLine{
			DiscountID: d.ID,
			Name:       d.label(),
			Type:       d.DiscountType,
			Value:      value,
			Impact:     impact,
		})
	}
	return DiscountResult{FinalPrice: decimal.Max(running, decimal.Zero), Lines: lines}, nil
}

// validOn checks the inclusive [ValidFrom, ValidUntil] window at date granularity.
func validOn(d CustomerDiscount, at time.Time) bool {
	if d.ValidFrom != nil && at.Before(dateOnly(*d.ValidFrom)) {
		return false
	}
	if d.ValidUntil != nil && at.After(dateOnly(*d.ValidUntil)) {
		return false
	}
	return true
}

// effectiveValue returns the discount value for the customer's monthly volume.
// ok is false when the volume does not qualify.
func effectiveValue(d CustomerDiscount, volume int) (decimal.Decimal, bool, error) {
	if d.MinMonthlyVolume != nil && volume < *d.MinMonthlyVolume {
		return decimal.Zero, false, nil
	}
	if len(d.VolumeTiers) == 0 {
		if d.Value.IsNegative() {
			return decimal.Zero, false, fmt.Errorf("%w: discount %s has negative value", ErrInvalidInput, d.ID)
		}
		return d.Value, true, nil
	}

	for i := 1; i < len(d.VolumeTiers); i++ {
		if d.VolumeTiers[i].MinVolume <= d.VolumeTiers[i-1].MinVolume {
			return decimal.Zero, false, fmt.Errorf("%w: discount %s tier %d (min volume %d) does not exceed tier %d (min volume %d)",
				ErrAmbiguousDiscountTier, d.ID, i, d.VolumeTiers[i].MinVolume, i-1, d.VolumeTiers[i-1].MinVolume)
		}
	}
	for i := len(d.VolumeTiers) - 1; i >= 0; i-- {
		t := d.VolumeTiers[i]
		if t.MinVolume <= volume {
			if t.DiscountValue.IsNegative() {
				return decimal.Zero, false, fmt.Errorf("%w: discount %s tier %d has negative value", ErrInvalidInput, d.ID, i)
			}
			return t.DiscountValue, true, nil
		}
	}
	return decimal.Zero, false, nil
}
