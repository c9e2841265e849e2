package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr[T any](v T) *T { return &v }

func assertDec(t *testing.T, want string, got decimal.Decimal, msg ...any) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s %v", want, got, msg)
}

func newRule(id string, pt PriceType, value string, mods ...func(*PricingRule)) PricingRule {
	r := PricingRule{
		ID:        id,
		Name:      id,
		IsActive:  true,
		Priority:  PriorityMedium,
		PriceType: pt,
		Value:     dec(value),
	}
	for _, m := range mods {
		m(&r)
	}
	return r
}

func newDiscount(id, customer string, dt DiscountType, value string, mods ...func(*CustomerDiscount)) CustomerDiscount {
	d := CustomerDiscount{
		ID:           id,
		CustomerID:   customer,
		CustomerName: "Acme Logistics",
		DiscountType: dt,
		Value:        dec(value),
		IsActive:     true,
	}
	for _, m := range mods {
		m(&d)
	}
	return d
}

func baseSim() RouteSimulation {
	return RouteSimulation{
		Origin:      "Manchester",
		Destination: "Leeds",
		Distance:    100,
		Duration:    120,
		VehicleType: VehicleTruck,
		Urgency:     UrgencyStandard,
	}
}

func staticLookup(m map[string]string) DistrictLookup {
	return func(loc string) (string, bool) {
		code, ok := m[loc]
		return code, ok
	}
}
