package generic

import "github.com/shopspring/decimal"

// =============================================================================
// NIGHTLY ALLOCATION - Exact-sum split of a stay total
// =============================================================================

// Allocate splits total across n nights so that the shares add up to
// total.Round2() exactly.
//
// Every night receives the base share floor(total*100/n)/100. Truncation
// leaves a residual of less than n cents; the whole residual goes to the
// last night. Only the last element can differ from the base share.
//
//	Allocate(100, 3) => [33.33, 33.33, 33.34]
//
// n <= 0 yields an empty slice. A negative total is allocated as zero.
func Allocate(total Amount, n int) []Amount {
	if n <= 0 {
		return []Amount{}
	}
	if total.IsNegative() {
		total = Zero()
	}

	// Quotient truncated to an integer number of cents, computed exactly.
	cents, _ := total.Value.Shift(2).QuoRem(decimal.NewFromInt(int64(n)), 0)
	base := Amount{Value: cents.Shift(-2)}

	shares := make([]Amount, n)
	for i := range shares {
		shares[i] = base
	}

	residual := total.Round2().Sub(base.MulInt(n).Round2())
	shares[n-1] = base.Add(residual)
	return shares
}
