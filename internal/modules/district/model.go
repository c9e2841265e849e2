// README: District definitions used for district-scoped rules and base price multipliers.
package district

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("district not found")

type District struct {
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	Region         string          `json:"region"`
	BaseMultiplier decimal.Decimal `json:"base_multiplier"`
}

// NormalizeLocation folds case and whitespace so "  Leeds  LS1 " and "leeds ls1" share a key.
func NormalizeLocation(location string) string {
	return strings.Join(strings.Fields(strings.ToLower(location)), " ")
}
