// README: Pricing data model: rules, customer discounts, route simulations and breakdowns.
package pricing

import (
	"time"

	"github.com/shopspring/decimal"
)

type VehicleType string

const (
	VehicleVan          VehicleType = "van"
	VehicleTruck        VehicleType = "truck"
	VehicleTrailer      VehicleType = "trailer"
	VehicleRefrigerated VehicleType = "refrigerated"
	VehicleFlatbed      VehicleType = "flatbed"
	VehicleTanker       VehicleType = "tanker"
)

type PriceType string

const (
	PriceFixed      PriceType = "fixed"
	PricePerKm      PriceType = "per_km"
	PricePercentage PriceType = "percentage"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

type Urgency string

const (
	UrgencyStandard Urgency = "standard"
	UrgencyExpress  Urgency = "express"
	UrgencyUrgent   Urgency = "urgent"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

type ServiceLevel string

const (
	ServiceStandard   ServiceLevel = "standard"
	ServicePremium    ServiceLevel = "premium"
	ServiceEnterprise ServiceLevel = "enterprise"
)

// ContractTier classifies customers for reporting and filtering. It never feeds the price.
type ContractTier string

const (
	TierBronze   ContractTier = "bronze"
	TierSilver   ContractTier = "silver"
	TierGold     ContractTier = "gold"
	TierPlatinum ContractTier = "platinum"
)

type OptionType string

const (
	OptionFastest   OptionType = "fastest"
	OptionCheapest  OptionType = "cheapest"
	OptionPreferred OptionType = "preferred"
)

// RuleConditions holds the optional constraints of a pricing rule.
// A nil pointer, empty slice or empty string means the condition is absent.
type RuleConditions struct {
	VehicleTypes   []VehicleType `json:"vehicle_types,omitempty"`
	Districts      []string      `json:"districts,omitempty"`
	MinDistance    *float64      `json:"min_distance,omitempty"`
	MaxDistance    *float64      `json:"max_distance,omitempty"`
	MinDuration    *float64      `json:"min_duration,omitempty"`
	MaxDuration    *float64      `json:"max_duration,omitempty"`
	DaysOfWeek     []DayOfWeek   `json:"days_of_week,omitempty"`
	TimeStart      string        `json:"time_start,omitempty"`   // HH:MM
	TimeEnd        string        `json:"time_end,omitempty"`     // HH:MM
	SeasonStart    string        `json:"season_start,omitempty"` // MM-DD
	SeasonEnd      string        `json:"season_end,omitempty"`   // MM-DD
	LoadTypes      []string      `json:"load_types,omitempty"`
	MinWeight      *float64      `json:"min_weight,omitempty"`
	MaxWeight      *float64      `json:"max_weight,omitempty"`
	UrgencyLevels  []Urgency     `json:"urgency_levels,omitempty"`
	IsPartnerRoute *bool         `json:"is_partner_route,omitempty"`
}

type PricingRule struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	IsActive      bool            `json:"is_active"`
	Priority      Priority        `json:"priority"`
	PriorityOrder int             `json:"priority_order"`
	Conditions    RuleConditions  `json:"conditions"`
	PriceType     PriceType       `json:"price_type"`
	Value         decimal.Decimal `json:"value"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	CreatedBy     string          `json:"created_by,omitempty"`
}

type DiscountConditions struct {
	VehicleTypes  []VehicleType  `json:"vehicle_types,omitempty"`
	Districts     []string       `json:"districts,omitempty"`
	ServiceLevels []ServiceLevel `json:"service_levels,omitempty"`
	RouteTypes    []string       `json:"route_types,omitempty"`
}

type VolumeTier struct {
	MinVolume     int             `json:"min_volume"`
	DiscountValue decimal.Decimal `json:"discount_value"`
}

type CustomerDiscount struct {
	ID               string             `json:"id"`
	CustomerID       string             `json:"customer_id"`
	CustomerName     string             `json:"customer_name"`
	Name             string             `json:"name,omitempty"`
	DiscountType     DiscountType       `json:"discount_type"`
	Value            decimal.Decimal    `json:"value"`
	Conditions       DiscountConditions `json:"conditions"`
	ValidFrom        *time.Time         `json:"valid_from,omitempty"`
	ValidUntil       *time.Time         `json:"valid_until,omitempty"`
	MinMonthlyVolume *int               `json:"min_monthly_volume,omitempty"`
	VolumeTiers      []VolumeTier       `json:"volume_tiers,omitempty"`
	ContractTier     ContractTier       `json:"contract_tier,omitempty"`
	IsActive         bool               `json:"is_active"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// label is the text shown on a discount line.
func (d CustomerDiscount) label() string {
	if d.Name != "" {
		return d.Name
	}
	if d.CustomerName != "" {
		return d.CustomerName + " discount"
	}
	return d.ID
}

// RouteSimulation is a hypothetical shipment. It is passed by value and never mutated.
type RouteSimulation struct {
	Origin        string       `json:"origin"`
	Destination   string       `json:"destination"`
	Distance      float64      `json:"distance"` // km
	Duration      float64      `json:"duration"` // minutes
	VehicleType   VehicleType  `json:"vehicle_type"`
	Weight        *float64     `json:"weight,omitempty"` // kg
	LoadType      string       `json:"load_type,omitempty"`
	Urgency       Urgency      `json:"urgency"`
	CustomerID    string       `json:"customer_id,omitempty"`
	ServiceLevel  ServiceLevel `json:"service_level,omitempty"`
	RouteType     string       `json:"route_type,omitempty"`
	PartnerRoute  bool         `json:"partner_route,omitempty"`
	ScheduledDate string       `json:"scheduled_date,omitempty"` // YYYY-MM-DD
	ScheduledTime string       `json:"scheduled_time,omitempty"` // HH:MM
}

type Adjustment struct {
	RuleID   string          `json:"rule_id"`
	RuleName string          `json:"rule_name"`
	Type     PriceType       `json:"type"`
	Value    decimal.Decimal `json:"value"`
	Impact   decimal.Decimal `json:"impact"`
}

type DiscountLine struct {
	DiscountID string          `json:"discount_id"`
	Name       string          `json:"name"`
	Type       DiscountType    `json:"type"`
	Value      decimal.Decimal `json:"value"`
	Impact     decimal.Decimal `json:"impact"`
}

type PriceBreakdown struct {
	BasePrice        decimal.Decimal `json:"base_price"`
	Adjustments      []Adjustment    `json:"adjustments"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	Discounts        []DiscountLine  `json:"discounts"`
	FinalPrice       decimal.Decimal `json:"final_price"`
	Cost             decimal.Decimal `json:"cost"`
	Margin           decimal.Decimal `json:"margin"`
	MarginPercentage decimal.Decimal `json:"margin_percentage"`
}

// CandidateRoute is one way of running a shipment. A nil BasePrice is filled in by the
// Service from the vehicle rate table; the Calculator rejects it. A nil Cost is filled in
// from the cost model, while an explicit zero is kept.
type CandidateRoute struct {
	ID           string           `json:"id"`
	Label        string           `json:"label,omitempty"`
	Distance     float64          `json:"distance"`
	Duration     float64          `json:"duration"`
	BasePrice    *decimal.Decimal `json:"base_price,omitempty"`
	Cost         *decimal.Decimal `json:"cost,omitempty"`
	VehicleType  VehicleType      `json:"vehicle_type,omitempty"`
	PartnerRoute bool             `json:"partner_route,omitempty"`
}

type RouteOption struct {
	Type        OptionType      `json:"type"`
	CandidateID string          `json:"candidate_id"`
	Label       string          `json:"label,omitempty"`
	Distance    float64         `json:"distance"`
	Duration    float64         `json:"duration"`
	Price       decimal.Decimal `json:"price"`
	Breakdown   PriceBreakdown  `json:"breakdown"`
}

// Rate is the per-vehicle tariff used to derive a base price when the caller has none.
type Rate struct {
	VehicleType VehicleType
	BaseFare    decimal.Decimal
	PerKm       decimal.Decimal
	Currency    string
}
