// Package money converts booking prices between major and minor currency units.
package money

import "github.com/shopspring/decimal"

// PriceMode tells the stats aggregator how to read a stored service price.
type PriceMode int

const (
	// PriceModeMinor treats every stored price as minor units (pence, cents).
	PriceModeMinor PriceMode = iota
	// PriceModeLegacy infers the unit: values >= 100 or == 0 are minor units,
	// anything else is major units and gets multiplied by 100. Only for data
	// migrated from stores that mixed both representations.
	PriceModeLegacy
)

const legacyMinorThreshold = 100

// ToMinor returns price in minor units according to mode.
func ToMinor(price int64, mode PriceMode) int64 {
	if mode == PriceModeLegacy && price != 0 && price < legacyMinorThreshold {
		return price * 100
	}
	return price
}

// FormatMinor renders minor units as a fixed two-decimal major amount, e.g. 2550 -> "25.50".
func FormatMinor(minor int64) string {
	return decimal.New(minor, -2).StringFixed(2)
}
