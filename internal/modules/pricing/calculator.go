// README: Price calculator chains rules, discounts and margin into a PriceBreakdown.
package pricing

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// Calculator holds no per-call state and is safe for concurrent use.
type Calculator struct {
	matcher *Matcher
	now     func() time.Time
}

func NewCalculator(lookup DistrictLookup) *Calculator {
	return &Calculator{matcher: NewMatcher(lookup), now: time.Now}
}

// WithClock returns a copy of c that evaluates discount validity against now.
func (c *Calculator) WithClock(now func() time.Time) *Calculator {
	cp := *c
	cp.now = now
	return &cp
}

type CalculateInput struct {
	Simulation    RouteSimulation
	Rules         []PricingRule
	Discounts     []CustomerDiscount
	BasePrice     decimal.Decimal
	Cost          decimal.Decimal
	MonthlyVolume int
}

func (c *Calculator) Calculate(in CalculateInput) (PriceBreakdown, error) {
	sim := in.Simulation
	if err := validateSimulation(sim); err != nil {
		return PriceBreakdown{}, err
	}
	if in.BasePrice.IsNegative() {
		return PriceBreakdown{}, fmt.Errorf("%w: base price %s", ErrInvalidInput, in.BasePrice)
	}
	if in.MonthlyVolume < 0 {
		return PriceBreakdown{}, fmt.Errorf("%w: monthly volume %d", ErrInvalidInput, in.MonthlyVolume)
	}
	sched, err := parseSchedule(sim)
	if err != nil {
		return PriceBreakdown{}, err
	}

	rules, err := applyRules(c.matcher, in.Rules, sim, sched, in.BasePrice)
	if err != nil {
		return PriceBreakdown{}, err
	}
	discounts, err := resolveDiscounts(c.matcher, in.Discounts, sim, sched, rules.Subtotal, in.MonthlyVolume, c.now())
	if err != nil {
		return PriceBreakdown{}, err
	}

	final := discounts.FinalPrice
	margin := final.Sub(in.Cost)
	marginPct := decimal.Zero
	if final.IsPositive() {
		marginPct = margin.DivRound(final, 4)
	}
	return PriceBreakdown{
		BasePrice:        in.BasePrice,
		Adjustments:      rules.Adjustments,
		Subtotal:         rules.Subtotal,
		Discounts:        discounts.Lines,
		FinalPrice:       final,
		Cost:             in.Cost,
		Margin:           margin,
		MarginPercentage: marginPct,
	}, nil
}

func validateSimulation(sim RouteSimulation) error {
	if math.IsNaN(sim.Distance) || math.IsInf(sim.Distance, 0) || sim.Distance < 0 {
		return fmt.Errorf("%w: distance %v", ErrInvalidInput, sim.Distance)
	}
	if math.IsNaN(sim.Duration) || math.IsInf(sim.Duration, 0) || sim.Duration < 0 {
		return fmt.Errorf("%w: duration %v", ErrInvalidInput, sim.Duration)
	}
	if sim.Weight != nil && (math.IsNaN(*sim.Weight) || math.IsInf(*sim.Weight, 0) || *sim.Weight < 0) {
		return fmt.Errorf("%w: weight %v", ErrInvalidInput, *sim.Weight)
	}
	return nil
}
