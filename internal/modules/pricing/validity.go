// README: Discount validity reporting for the admin discount screens.
package pricing

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ExpiringSoonDays is how close to ValidUntil a discount is flagged as expiring.
const ExpiringSoonDays = 30

type ValidityState string

const (
	ValidityInactive     ValidityState = "inactive"
	ValidityExpired      ValidityState = "expired"
	ValidityExpiringSoon ValidityState = "expiring_soon"
	ValidityActive       ValidityState = "active"
)

type Validity struct {
	State    ValidityState `json:"state"`
	DaysLeft *int          `json:"days_left,omitempty"`
}

// DiscountStatus classifies a discount for display. Days left are rounded up.
func DiscountStatus(d CustomerDiscount, now time.Time) Validity {
	if !d.IsActive {
		return Validity{State: ValidityInactive}
	}
	if d.ValidUntil == nil {
		return Validity{State: ValidityActive}
	}
	days := int(math.Ceil(d.ValidUntil.Sub(now).Hours() / 24))
	switch {
	case days < 0:
		return Validity{State: ValidityExpired}
	case days <= ExpiringSoonDays:
		return Validity{State: ValidityExpiringSoon, DaysLeft: &days}
	default:
		return Validity{State: ValidityActive, DaysLeft: &days}
	}
}

type DiscountSummary struct {
	Total             int             `json:"total"`
	Active            int             `json:"active"`
	ExpiringSoon      int             `json:"expiring_soon"`
	AveragePercentage decimal.Decimal `json:"average_percentage"`
}

func SummarizeDiscounts(ds []CustomerDiscount, now time.Time) DiscountSummary {
	s := DiscountSummary{Total: len(ds), AveragePercentage: decimal.Zero}
	sum := decimal.Zero
	pct := 0
	for _, d := range ds {
		if d.IsActive {
			s.Active++
		}
		if d.ValidUntil != nil {
			days := int(math.Ceil(d.ValidUntil.Sub(now).Hours() / 24))
			if days > 0 && days <= ExpiringSoonDays {
				s.ExpiringSoon++
			}
		}
		if d.DiscountType == DiscountPercentage {
			sum = sum.Add(d.Value)
			pct++
		}
	}
	if pct > 0 {
		s.AveragePercentage = sum.DivRound(decimal.NewFromInt(int64(pct)), 1)
	}
	return s
}

// FilterDiscounts keeps discounts whose customer name contains search (case-insensitive)
// and whose contract tier equals tier. Empty search or tier "" / "all" match everything.
func FilterDiscounts(ds []CustomerDiscount, search string, tier string) []CustomerDiscount {
	search = strings.ToLower(strings.TrimSpace(search))
	out := make([]CustomerDiscount, 0, len(ds))
	for _, d := range ds {
		if search != "" && !strings.Contains(strings.ToLower(d.CustomerName), search) {
			continue
		}
		if tier != "" && tier != "all" && string(d.ContractTier) != tier {
			continue
		}
		out = append(out, d)
	}
	return out
}
