// Package currency implements the fixed five-currency set and exchange
// table carried over verbatim from
// original_source/server-c/src/core/currency.h.
package currency

import "fmt"

// Currency is a closed enumeration of the five currencies the ledger
// understands. The integer values and ordering match the C++ original's
// `enum class currency`; on the wire a currency travels as its
// three-letter code (see String), not as this integer.
type Currency int32

const (
	USD Currency = iota
	RMB
	SGD
	JPY
	BPD
	count
)

// All lists every currency in enum order, for iteration (account dumps,
// FX-table validation tests).
var All = []Currency{USD, RMB, SGD, JPY, BPD}

// String renders the three-letter code used both at the wire boundary
// (currency round-trips as a 3-char string in the original) and in log
// lines.
func (c Currency) String() string {
	switch c {
	case USD:
		return "USD"
	case RMB:
		return "RMB"
	case SGD:
		return "SGD"
	case JPY:
		return "JPY"
	case BPD:
		return "BPD"
	default:
		return "???"
	}
}

// Valid reports whether c is one of the five known currencies.
func (c Currency) Valid() bool {
	return c >= USD && c < count
}

// FromCode parses a three-letter code back into a Currency, mirroring the
// original's round-trip through a 3-char wire string.
func FromCode(code string) (Currency, error) {
	for _, c := range All {
		if c.String() == code {
			return c, nil
		}
	}
	return 0, fmt.Errorf("currency: unknown code %q", code)
}

// exchangeTable[from][to] is the divisor used by Convert; copied verbatim
// from currency.h's `exchange_table` literal.
var exchangeTable = [5][5]float64{
	/* USD */ {1.0, 7.23, 1.34, 150.50, 0.79},
	/* RMB */ {0.1383, 1.0, 0.1853, 20.810, 0.1093},
	/* SGD */ {0.7463, 5.3960, 1.0, 112.31, 0.5896},
	/* JPY */ {0.0066, 0.0480, 0.0089, 1.0, 0.0052},
	/* BPD */ {1.2658, 9.1491, 1.6960, 192.30, 1.0},
}

// Convert converts amount from one currency to another using the static
// exchange table, exactly as `currency::convert` does:
// amount / exchange_table[from][to].
func Convert(amount float64, from, to Currency) (float64, error) {
	if !from.Valid() {
		return 0, fmt.Errorf("currency: invalid source currency %d", from)
	}
	if !to.Valid() {
		return 0, fmt.Errorf("currency: invalid destination currency %d", to)
	}
	return amount / exchangeTable[from][to], nil
}
