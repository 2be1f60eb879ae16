package models

import "github.com/shopspring/decimal"

// Prices and totals go over the wire as JSON numbers.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}
