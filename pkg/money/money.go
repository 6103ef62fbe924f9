package money

import "github.com/shopspring/decimal"

// Round2 rounds a monetary value to 2 decimal places, half away from zero.
// Negative amounts (discounts, refunds) round on magnitude and keep their sign.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// FromString parses a decimal amount from a request payload. Empty or
// malformed input degrades to zero instead of failing the business flow.
func FromString(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// NonNegative floors an amount at zero. Rule inputs are never allowed to
// contribute negative amounts.
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Clamp constrains d to [min, max]. A nil max means unbounded above.
func Clamp(d, min decimal.Decimal, max *decimal.Decimal) decimal.Decimal {
	if d.LessThan(min) {
		d = min
	}
	if max != nil && d.GreaterThan(*max) {
		d = *max
	}
	return d
}
