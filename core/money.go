package core

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY HELPERS - decimal math for rent and salary figures
// =============================================================================

// Round2 rounds a monetary figure to two decimal places, half away from zero.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// MaxZero clamps a monetary figure at zero. Dues never go negative:
// overpayment shows as zero owed, not as credit.
func MaxZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// MustParseDecimal parses a stored decimal string, returning zero on failure.
// Used when loading amounts persisted as TEXT.
func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
