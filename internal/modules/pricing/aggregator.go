// README: Rule aggregator orders matching rules and applies them to a running price.
package pricing

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"freightquote/internal/types"
)

var hundred = decimal.NewFromInt(100)

var priorityRank = map[Priority]int{
	PriorityHigh:   0,
	PriorityMedium: 1,
	PriorityLow:    2,
}

type RuleResult struct {
	Subtotal    decimal.Decimal
	Adjustments []Adjustment
}

// ApplyRules applies every matching rule to basePrice in priority order.
// Percentage rules compound on the running total, so order changes the result.
func ApplyRules(m *Matcher, rules []PricingRule, sim RouteSimulation, basePrice decimal.Decimal) (RuleResult, error) {
	sched, err := parseSchedule(sim)
	if err != nil {
		return RuleResult{}, err
	}
	return applyRules(m, rules, sim, sched, basePrice)
}

func applyRules(m *Matcher, rules []PricingRule, sim RouteSimulation, sched schedule, basePrice decimal.Decimal) (RuleResult, error) {
	matched := make([]PricingRule, 0, len(rules))
	for _, r := range rules {
		if !r.IsActive {
			continue
		}
		if err := validateRule(r); err != nil {
			return RuleResult{}, err
		}
		ok, err := m.matchRule(r, sim, sched)
		if err != nil {
			return RuleResult{}, err
		}
		if ok {
			matched = append(matched, r)
		}
	}
	sortRules(matched)

	running := basePrice
	adjustments := make([]Adjustment, 0, len(matched))
	for _, r := range matched {
		var impact decimal.Decimal
		switch r.PriceType {
		case PriceFixed:
			impact = r.Value
		case PricePerKm:
			impact = r.Value.Mul(decimal.NewFromFloat(sim.Distance))
		case PricePercentage:
			impact = running.Mul(r.Value).Div(hundred)
		}
		impact = types.RoundMoney(impact)
		running = running.Add(impact)
		adjustments = append(adjustments, Adjustment{
			RuleID:   r.ID,
			RuleName: r.Name,
			Type:     r.PriceType,
			Value:    r.Value,
			Impact:   impact,
		})
	}
	return RuleResult{Subtotal: running, Adjustments: adjustments}, nil
}

// sortRules orders by band (high first), then priorityOrder, then id.
func sortRules(rules []PricingRule) {
	slices.SortStableFunc(rules, func(a, b PricingRule) int {
		return cmp.Or(
			cmp.Compare(priorityRank[a.Priority], priorityRank[b.Priority]),
			cmp.Compare(a.PriorityOrder, b.PriorityOrder),
			cmp.Compare(a.ID, b.ID),
		)
	})
}

func validateRule(r PricingRule) error {
	if _, ok := priorityRank[r.Priority]; !ok {
		return fmt.Errorf("%w: rule %s priority %q", ErrInvalidInput, r.ID, r.Priority)
	}
	switch r.PriceType {
	case PriceFixed, PricePerKm, PricePercentage:
	default:
		return fmt.Errorf("%w: rule %s price type %q", ErrInvalidInput, r.ID, r.PriceType)
	}
	return nil
}
