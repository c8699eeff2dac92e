// Package money holds the integer-cents arithmetic used by the checkout
// pipeline. Prices never leave minor currency units, so there is no floating
// point anywhere in a total.
package money

// Subtotal sums unit price times quantity across cart lines.
func Subtotal(unitAmounts []int64, quantities []int) int64 {
	var total int64
	for i := range unitAmounts {
		total += unitAmounts[i] * int64(quantities[i])
	}
	return total
}

// ApplyPercent returns the subtotal reduced by pct percent, rounded half-up.
// The result is clamped at zero.
func ApplyPercent(subtotal, pct int64) int64 {
	if pct <= 0 {
		return subtotal
	}
	if pct >= 100 {
		return 0
	}
	total := (subtotal*(100-pct) + 50) / 100
	if total < 0 {
		return 0
	}
	return total
}

// ApplyFixed subtracts a fixed discount in cents, clamped at zero.
func ApplyFixed(subtotal, amount int64) int64 {
	total := subtotal - amount
	if total < 0 {
		return 0
	}
	return total
}
