// README: Common value objects (IDs, money) used across modules.
package types

import "github.com/shopspring/decimal"

type ID string

type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// RoundMoney rounds an amount to minor units (2 decimal places).
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
