package pricing

import "errors"

var (
	// ErrInvalidInput covers negative quantities, unknown enum values and malformed
	// time strings. Nothing is computed when it is returned.
	ErrInvalidInput = errors.New("invalid pricing input")
	// ErrAmbiguousDiscountTier is returned when volume tiers are not strictly increasing.
	ErrAmbiguousDiscountTier = errors.New("ambiguous discount tier")
)

var (
	ErrRuleNotFound     = errors.New("pricing rule not found")
	ErrDiscountNotFound = errors.New("customer discount not found")
	ErrRateNotFound     = errors.New("vehicle rate not found")
)
