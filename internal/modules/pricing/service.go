// README: Pricing service loads rule/discount snapshots and runs the calculator for quotes and route options.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"freightquote/internal/modules/district"
	"freightquote/internal/types"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type SnapshotStore interface {
	ActiveRules(ctx context.Context) ([]PricingRule, error)
	DiscountsByCustomer(ctx context.Context, customerID string) ([]CustomerDiscount, error)
	MonthlyVolume(ctx context.Context, customerID string) (int, error)
	GetRate(ctx context.Context, vehicleType VehicleType) (Rate, error)
}

type DistrictResolver interface {
	Resolve(ctx context.Context, location string) (district.District, error)
}

type RouteProvider interface {
	Alternatives(ctx context.Context, origin, destination string) ([]CandidateRoute, error)
}

// CostModel estimates what it costs us to run a shipment.
type CostModel interface {
	Cost(sim RouteSimulation) decimal.Decimal
}

// PerKmCost charges a flat operating cost per kilometre.
type PerKmCost struct {
	PerKm decimal.Decimal
}

func (c PerKmCost) Cost(sim RouteSimulation) decimal.Decimal {
	return types.RoundMoney(c.PerKm.Mul(decimal.NewFromFloat(sim.Distance)))
}

type Service struct {
	store     SnapshotStore
	districts DistrictResolver
	routes    RouteProvider
	cost      CostModel
	metrics   *Metrics
	log       *zap.Logger
	now       func() time.Time
}

type Option func(*Service)

func WithRouteProvider(p RouteProvider) Option { return func(s *Service) { s.routes = p } }
func WithCostModel(m CostModel) Option         { return func(s *Service) { s.cost = m } }
func WithMetrics(m *Metrics) Option            { return func(s *Service) { s.metrics = m } }
func WithLogger(l *zap.Logger) Option          { return func(s *Service) { s.log = l } }
func WithNow(now func() time.Time) Option      { return func(s *Service) { s.now = now } }

func NewService(store SnapshotStore, districts DistrictResolver, opts ...Option) *Service {
	s := &Service{
		store:     store,
		districts: districts,
		cost:      PerKmCost{},
		log:       zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type QuoteRequest struct {
	Simulation RouteSimulation  `json:"simulation"`
	BasePrice  *decimal.Decimal `json:"base_price,omitempty"`
	Cost       *decimal.Decimal `json:"cost,omitempty"`
}

type OptionsRequest struct {
	Simulation RouteSimulation  `json:"simulation"`
	Candidates []CandidateRoute `json:"candidates,omitempty"`
}

// snapshot is everything a pricing call reads from storage.
type snapshot struct {
	rules     []PricingRule
	discounts []CustomerDiscount
	volume    int
	origin    *district.District
	lookup    DistrictLookup
}

func (s *Service) load(ctx context.Context, sim RouteSimulation) (snapshot, error) {
	var snap snapshot
	resolved := make([]*district.District, 2)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rules, err := s.store.ActiveRules(gctx)
		if err != nil {
			return fmt.Errorf("load rules: %w", err)
		}
		snap.rules = rules
		return nil
	})
	if sim.CustomerID != "" {
		g.Go(func() error {
			ds, err := s.store.DiscountsByCustomer(gctx, sim.CustomerID)
			if err != nil {
				return fmt.Errorf("load discounts: %w", err)
			}
			snap.discounts = ds
			return nil
		})
		g.Go(func() error {
			v, err := s.store.MonthlyVolume(gctx, sim.CustomerID)
			if err != nil {
				return fmt.Errorf("load monthly volume: %w", err)
			}
			snap.volume = v
			return nil
		})
	}
	for i, loc := range []string{sim.Origin, sim.Destination} {
		if loc == "" || s.districts == nil {
			continue
		}
		g.Go(func() error {
			d, err := s.districts.Resolve(gctx, loc)
			if errors.Is(err, district.ErrNotFound) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("resolve district %q: %w", loc, err)
			}
			resolved[i] = &d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return snapshot{}, err
	}

	snap.origin = resolved[0]
	codes := map[string]string{}
	for i, loc := range []string{sim.Origin, sim.Destination} {
		if resolved[i] != nil {
			codes[loc] = resolved[i].Code
		}
	}
	snap.lookup = func(location string) (string, bool) {
		code, ok := codes[location]
		return code, ok
	}
	return snap, nil
}

// Quote prices a single shipment. A missing base price is derived from the vehicle
// rate table and the origin district multiplier.
func (s *Service) Quote(ctx context.Context, req QuoteRequest) (PriceBreakdown, error) {
	start := time.Now()
	bd, err := s.quote(ctx, req)
	s.observe("quote", start, err)
	return bd, err
}

func (s *Service) quote(ctx context.Context, req QuoteRequest) (PriceBreakdown, error) {
	sim := req.Simulation
	if err := validateSimulation(sim); err != nil {
		return PriceBreakdown{}, err
	}
	snap, err := s.load(ctx, sim)
	if err != nil {
		return PriceBreakdown{}, err
	}

	base := decimal.Zero
	if req.BasePrice != nil {
		base = *req.BasePrice
	} else if base, err = s.basePrice(ctx, sim.VehicleType, sim.Distance, snap.origin); err != nil {
		return PriceBreakdown{}, err
	}
	cost := s.cost.Cost(sim)
	if req.Cost != nil {
		cost = *req.Cost
	}

	return s.calculator(snap).Calculate(CalculateInput{
		Simulation:    sim,
		Rules:         snap.rules,
		Discounts:     snap.discounts,
		BasePrice:     base,
		Cost:          cost,
		MonthlyVolume: snap.volume,
	})
}

// RouteOptions ranks the supplied candidates, or the map provider's alternatives when
// the request carries none.
func (s *Service) RouteOptions(ctx context.Context, req OptionsRequest) ([]RouteOption, error) {
	start := time.Now()
	opts, err := s.routeOptions(ctx, req)
	s.observe("route_options", start, err)
	return opts, err
}

func (s *Service) routeOptions(ctx context.Context, req OptionsRequest) ([]RouteOption, error) {
	sim := req.Simulation
	candidates := req.Candidates
	if len(candidates) == 0 && s.routes != nil {
		alts, err := s.routes.Alternatives(ctx, sim.Origin, sim.Destination)
		if err != nil {
			return nil, fmt.Errorf("route alternatives: %w", err)
		}
		candidates = alts
	}
	if len(candidates) == 0 {
		return []RouteOption{}, nil
	}

	snap, err := s.load(ctx, sim)
	if err != nil {
		return nil, err
	}

	filled := make([]CandidateRoute, len(candidates))
	for i, c := range candidates {
		vt := sim.VehicleType
		if c.VehicleType != "" {
			vt = c.VehicleType
		}
		if c.BasePrice == nil {
			base, err := s.basePrice(ctx, vt, c.Distance, snap.origin)
			if err != nil {
				return nil, fmt.Errorf("candidate %s: %w", c.ID, err)
			}
			c.BasePrice = &base
		}
		if c.Cost == nil {
			cs := sim
			cs.Distance, cs.Duration, cs.VehicleType = c.Distance, c.Duration, vt
			cost := s.cost.Cost(cs)
			c.Cost = &cost
		}
		filled[i] = c
	}

	return s.calculator(snap).Rank(RankInput{
		Simulation:    sim,
		Rules:         snap.rules,
		Discounts:     snap.discounts,
		Candidates:    filled,
		MonthlyVolume: snap.volume,
	})
}

func (s *Service) basePrice(ctx context.Context, vt VehicleType, distance float64, origin *district.District) (decimal.Decimal, error) {
	rate, err := s.store.GetRate(ctx, vt)
	if errors.Is(err, ErrRateNotFound) {
		return decimal.Zero, fmt.Errorf("%w: no rate for vehicle type %q", ErrInvalidInput, vt)
	}
	if err != nil {
		return decimal.Zero, err
	}
	base := rate.BaseFare.Add(rate.PerKm.Mul(decimal.NewFromFloat(distance)))
	if origin != nil && origin.BaseMultiplier.IsPositive() {
		base = base.Mul(origin.BaseMultiplier)
	}
	return types.RoundMoney(base), nil
}

func (s *Service) calculator(snap snapshot) *Calculator {
	return NewCalculator(snap.lookup).WithClock(s.now)
}

func (s *Service) observe(op string, start time.Time, err error) {
	outcome := outcomeOf(err)
	if s.metrics != nil {
		s.metrics.Observe(op, outcome, time.Since(start))
	}
	if outcome == OutcomeError {
		s.log.Error("pricing failed", zap.String("op", op), zap.Error(err))
	}
}
