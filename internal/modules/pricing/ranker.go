// README: Route option ranker tags candidate routes as fastest, cheapest and preferred.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type RankInput struct {
	Simulation    RouteSimulation
	Rules         []PricingRule
	Discounts     []CustomerDiscount
	Candidates    []CandidateRoute
	MonthlyVolume int
}

type pricedCandidate struct {
	route     CandidateRoute
	breakdown PriceBreakdown
	preferred bool
}

// Rank prices every candidate and returns up to three options: fastest, cheapest and,
// when some candidate matched a partner-route rule, preferred. One candidate may win
// several categories. A candidate counts as a partner route when either it or the
// request simulation is flagged. A nil Cost prices as zero.
func (c *Calculator) Rank(in RankInput) ([]RouteOption, error) {
	if len(in.Candidates) == 0 {
		return []RouteOption{}, nil
	}

	partnerRules := make(map[string]bool)
	for _, r := range in.Rules {
		if p := r.Conditions.IsPartnerRoute; p != nil && *p {
			partnerRules[r.ID] = true
		}
	}

	priced := make([]pricedCandidate, 0, len(in.Candidates))
	for _, cand := range in.Candidates {
		if cand.BasePrice == nil {
			return nil, fmt.Errorf("%w: candidate %s has no base price", ErrInvalidInput, cand.ID)
		}
		sim := in.Simulation
		sim.Distance = cand.Distance
		sim.Duration = cand.Duration
		sim.PartnerRoute = in.Simulation.PartnerRoute || cand.PartnerRoute
		if cand.VehicleType != "" {
			sim.VehicleType = cand.VehicleType
		}
		cost := decimal.Zero
		if cand.Cost != nil {
			cost = *cand.Cost
		}
		bd, err := c.Calculate(CalculateInput{
			Simulation:    sim,
			Rules:         in.Rules,
			Discounts:     in.Discounts,
			BasePrice:     *cand.BasePrice,
			Cost:          cost,
			MonthlyVolume: in.MonthlyVolume,
		})
		if err != nil {
			return nil, fmt.Errorf("candidate %s: %w", cand.ID, err)
		}
		pc := pricedCandidate{route: cand, breakdown: bd}
		for _, adj := range bd.Adjustments {
			if partnerRules[adj.RuleID] {
				pc.preferred = true
				break
			}
		}
		priced = append(priced, pc)
	}

	fastest := pick(priced, func(a, b pricedCandidate) bool {
		if a.route.Duration != b.route.Duration {
			return a.route.Duration < b.route.Duration
		}
		return a.breakdown.FinalPrice.LessThan(b.breakdown.FinalPrice)
	})
	cheapest := pick(priced, byPrice)

	options := []RouteOption{
		newOption(OptionFastest, priced[fastest]),
		newOption(OptionCheapest, priced[cheapest]),
	}

	var partners []pricedCandidate
	for _, p := range priced {
		if p.preferred {
			partners = append(partners, p)
		}
	}
	if len(partners) > 0 {
		options = append(options, newOption(OptionPreferred, partners[pick(partners, byPrice)]))
	}
	return options, nil
}

func byPrice(a, b pricedCandidate) bool {
	if !a.breakdown.FinalPrice.Equal(b.breakdown.FinalPrice) {
		return a.breakdown.FinalPrice.LessThan(b.breakdown.FinalPrice)
	}
	return a.route.Duration < b.route.Duration
}

// pick returns the index of the first best candidate; later equal candidates never win.
func pick(cs []pricedCandidate, less func(a, b pricedCandidate) bool) int {
	best := 0
	for i := 1; i < len(cs); i++ {
		if less(cs[i], cs[best]) {
			best = i
		}
	}
	return best
}

func newOption(t OptionType, p pricedCandidate) RouteOption {
	return RouteOption{
		Type:        t,
		CandidateID: p.route.ID,
		Label:       p.route.Label,
		Distance:    p.route.Distance,
		Duration:    p.route.Duration,
		Price:       p.breakdown.FinalPrice,
		Breakdown:   p.breakdown,
	}
}

// CompetitorQuote is a rival carrier's price for the same shipment.
type CompetitorQuote struct {
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Availability string          `json:"availability,omitempty"`
	ETA          string          `json:"eta,omitempty"`
}

type CompetitorComparison struct {
	CompetitorQuote
	// Difference is our price minus theirs; negative means we are cheaper.
	Difference decimal.Decimal `json:"difference"`
}

// CompareCompetitors lines up competitor quotes against our price.
func CompareCompetitors(ours decimal.Decimal, quotes []CompetitorQuote) []CompetitorComparison {
	out := make([]CompetitorComparison, 0, len(quotes))
	for _, q := range quotes {
		out = append(out, CompetitorComparison{CompetitorQuote: q, Difference: ours.Sub(q.Price)})
	}
	return out
}
