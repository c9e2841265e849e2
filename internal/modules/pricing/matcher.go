// README: Rule matcher decides whether a pricing rule or discount applies to a simulation.
package pricing

import (
	"fmt"
	"slices"
	"time"
)

// DistrictLookup maps a free-form location to a district code.
type DistrictLookup func(location string) (code string, ok bool)

type Matcher struct {
	districts DistrictLookup
}

// NewMatcher returns a Matcher. A nil lookup makes every district condition fail.
func NewMatcher(lookup DistrictLookup) *Matcher {
	return &Matcher{districts: lookup}
}

// Matches reports whether an active rule's present conditions all hold for sim.
func (m *Matcher) Matches(rule PricingRule, sim RouteSimulation) (bool, error) {
	sched, err := parseSchedule(sim)
	if err != nil {
		return false, err
	}
	return m.matchRule(rule, sim, sched)
}

func (m *Matcher) matchRule(rule PricingRule, sim RouteSimulation, sched schedule) (bool, error) {
	if !rule.IsActive {
		return false, nil
	}
	c := rule.Conditions

	clock, err := parseWindow(c.TimeStart, c.TimeEnd, 0, 23*60+59, parseClock)
	if err != nil {
		return false, fmt.Errorf("rule %s: %w", rule.ID, err)
	}
	season, err := parseWindow(c.SeasonStart, c.SeasonEnd, 101, 1231, parseMonthDay)
	if err != nil {
		return false, fmt.Errorf("rule %s: %w", rule.ID, err)
	}
	days, err := weekdaySet(c.DaysOfWeek)
	if err != nil {
		return false, fmt.Errorf("rule %s: %w", rule.ID, err)
	}

	checks := []func() bool{
		func() bool { return len(c.VehicleTypes) == 0 || slices.Contains(c.VehicleTypes, sim.VehicleType) },
		func() bool { return len(c.Districts) == 0 || m.matchDistricts(c.Districts, sim) },
		func() bool { return inRange(sim.Distance, c.MinDistance, c.MaxDistance) },
		func() bool { return inRange(sim.Duration, c.MinDuration, c.MaxDuration) },
		func() bool {
			if days == nil {
				return true
			}
			return sched.hasDate && days[sched.date.Weekday()]
		},
		func() bool {
			if !clock.present {
				return true
			}
			return sched.hasTime && inWindow(sched.minute, clock.start, clock.end)
		},
		func() bool {
			if !season.present {
				return true
			}
			return sched.hasDate && inWindow(monthDayOf(sched.date), season.start, season.end)
		},
		func() bool {
			if len(c.LoadTypes) == 0 {
				return true
			}
			return sim.LoadType != "" && slices.Contains(c.LoadTypes, sim.LoadType)
		},
		func() bool {
			if c.MinWeight == nil && c.MaxWeight == nil {
				return true
			}
			return sim.Weight != nil && inRange(*sim.Weight, c.MinWeight, c.MaxWeight)
		},
		func() bool {
			if len(c.UrgencyLevels) == 0 {
				return true
			}
			return sim.Urgency != "" && slices.Contains(c.UrgencyLevels, sim.Urgency)
		},
		func() bool { return c.IsPartnerRoute == nil || *c.IsPartnerRoute == sim.PartnerRoute },
	}
	for _, ok := range checks {
		if !ok() {
			return false, nil
		}
	}
	return true, nil
}

func (m *Matcher) matchDiscount(c DiscountConditions, sim RouteSimulation) bool {
	if len(c.VehicleTypes) > 0 && !slices.Contains(c.VehicleTypes, sim.VehicleType) {
		return false
	}
	if len(c.Districts) > 0 && !m.matchDistricts(c.Districts, sim) {
		return false
	}
	if len(c.ServiceLevels) > 0 && (sim.ServiceLevel == "" || !slices.Contains(c.ServiceLevels, sim.ServiceLevel)) {
		return false
	}
	if len(c.RouteTypes) > 0 && (sim.RouteType == "" || !slices.Contains(c.RouteTypes, sim.RouteType)) {
		return false
	}
	return true
}

// matchDistricts succeeds when either end of the route resolves to a listed district.
func (m *Matcher) matchDistricts(codes []string, sim RouteSimulation) bool {
	if m == nil || m.districts == nil {
		return false
	}
	for _, loc := range []string{sim.Origin, sim.Destination} {
		if loc == "" {
			continue
		}
		if code, ok := m.districts(loc); ok && slices.Contains(codes, code) {
			return true
		}
	}
	return false
}

func inRange(v float64, lo, hi *float64) bool {
	if lo != nil && v < *lo {
		return false
	}
	if hi != nil && v > *hi {
		return false
	}
	return true
}

func weekdaySet(days []DayOfWeek) (map[time.Weekday]bool, error) {
	if len(days) == 0 {
		return nil, nil
	}
	set := make(map[time.Weekday]bool, len(days))
	for _, d := range days {
		wd, ok := d.Weekday()
		if !ok {
			return nil, fmt.Errorf("%w: day of week %q", ErrInvalidInput, d)
		}
		set[wd] = true
	}
	return set, nil
}
