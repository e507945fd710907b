/*
allocate_test.go - Nightly allocation invariants

PURPOSE:
  These tests pin down the properties every caller of Allocate relies on.
  Each test has GIVEN/WHEN/THEN comments and assertion messages that say
  which property broke.

ORGANIZATION:
  1. Exact sum - shares add up to the rounded total, to the cent
  2. Shape - equal base shares, residual on the last night only
  3. Edge cases - zero nights, zero and negative totals
*/
package generic_test

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/deal-engine/generic"
)

func amt(s string) generic.Amount {
	return generic.MustParseAmount(s)
}

func asStrings(shares []generic.Amount) []string {
	out := make([]string, len(shares))
	for i, s := range shares {
		out[i] = s.String()
	}
	return out
}

// =============================================================================
// 1. EXACT SUM
// =============================================================================

func TestAllocate_SumsToTotal(t *testing.T) {
	totals := []string{"0.01", "0.99", "100.00", "101.20", "520.00", "744.80", "2900.00", "1234.57", "99999.99"}
	for _, total := range totals {
		for n := 1; n <= 31; n++ {
			t.Run(fmt.Sprintf("%s/%d", total, n), func(t *testing.T) {
				// GIVEN: A two-decimal total
				// WHEN: Split over n nights
				shares := generic.Allocate(amt(total), n)

				// THEN: n shares summing to the total exactly
				require.Len(t, shares, n)
				assert.True(t, generic.Sum(shares).Equal(amt(total)),
					"sum %s != total %s", generic.Sum(shares), total)

				// AND: Every night but the last gets the floored base share
				base := amt(total).Value.Shift(2).Div(decimal.NewFromInt(int64(n))).Floor().Shift(-2)
				assert.True(t, shares[0].Value.Equal(base), "base %s, want %s", shares[0], base)
				for i := 0; i < n-1; i++ {
					assert.True(t, shares[i].Equal(shares[0]), "share %d = %s, base %s", i, shares[i], shares[0])
				}
			})
		}
	}
}

func TestAllocate_UnroundedTotalSumsToRoundedTotal(t *testing.T) {
	// GIVEN: A total with more than two decimals
	total := amt("100.005")

	// WHEN: Split over three nights
	shares := generic.Allocate(total, 3)

	// THEN: The shares add up to the total rounded half away from zero
	assert.Equal(t, "100.01", generic.Sum(shares).String())
}

// =============================================================================
// 2. SHAPE
// =============================================================================

func TestAllocate_ResidualOnLastNight(t *testing.T) {
	tests := []struct {
		total string
		n     int
		want  []string
	}{
		{"100.00", 3, []string{"33.33", "33.33", "33.34"}},
		{"520.00", 4, []string{"130.00", "130.00", "130.00", "130.00"}},
		{"101.20", 3, []string{"33.73", "33.73", "33.74"}},
		{"0.05", 3, []string{"0.01", "0.01", "0.03"}},
		{"10.00", 1, []string{"10.00"}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%d", tt.total, tt.n), func(t *testing.T) {
			assert.Equal(t, tt.want, asStrings(generic.Allocate(amt(tt.total), tt.n)))
		})
	}
}

func TestAllocate_NoNegativeShares(t *testing.T) {
	// GIVEN: Totals smaller than one cent per night
	for _, total := range []string{"0.00", "0.01", "0.02"} {
		shares := generic.Allocate(amt(total), 7)

		// THEN: Every share is zero or more; the residual absorbs the cents
		for i, s := range shares {
			if s.IsNegative() {
				t.Errorf("total %s: share %d is negative: %s", total, i, s)
			}
		}
	}
}

// =============================================================================
// 3. EDGE CASES
// =============================================================================

func TestAllocate_NoNights(t *testing.T) {
	for _, n := range []int{0, -1} {
		shares := generic.Allocate(amt("100.00"), n)
		assert.NotNil(t, shares)
		assert.Empty(t, shares, "n=%d", n)
	}
}

func TestAllocate_NegativeTotalReadsAsZero(t *testing.T) {
	shares := generic.Allocate(amt("-30.00"), 3)
	assert.Equal(t, []string{"0.00", "0.00", "0.00"}, asStrings(shares))
}
