package models

import "github.com/shopspring/decimal"

// Weights travel as JSON numbers, not quoted strings.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// FractionDigits returns the number of digits after the decimal point as
// written, so 12.50 has two.
func FractionDigits(d decimal.Decimal) int32 {
	if exp := d.Exponent(); exp < 0 {
		return -exp
	}
	return 0
}
