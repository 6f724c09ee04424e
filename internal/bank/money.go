package bank

import "math"

// unitsPerMajor fixes the minor-unit scale used by internal/domain's
// int64 balances: one major unit (e.g. one USD) equals this many minor
// units. 1,000,000 preserves the six-decimal precision the original's
// `std::to_string(float)` textual responses exposed (e.g. "100.000000"),
// without the float32 representation error spec.md §9 calls out.
const unitsPerMajor = 1_000_000

// ToMinor converts a wire-boundary float64 amount to internal int64 minor
// units.
func ToMinor(amount float64) int64 {
	return int64(math.Round(amount * unitsPerMajor))
}

// ToMajor converts internal int64 minor units back to a wire-boundary
// float64 amount.
func ToMajor(minor int64) float64 {
	return float64(minor) / unitsPerMajor
}
