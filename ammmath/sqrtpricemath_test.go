// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ammmath

import (
	"testing"

	"github.com/holiman/uint256"
)

func TestGetAmount0DeltaSymmetric(t *testing.T) {
	lo := Q96
	hi := new(uint256.Int).Add(Q96, Q96)
	liquidity := uint256.NewInt(1_000_000)

	ascending, err := GetAmount0Delta(lo, hi, liquidity, false)
	if err != nil {
		t.Fatalf("GetAmount0Delta(lo,hi) error: %v", err)
	}
	descending, err := GetAmount0Delta(hi, lo, liquidity, false)
	if err != nil {
		t.Fatalf("GetAmount0Delta(hi,lo) error: %v", err)
	}
	if !ascending.Eq(descending) {
		t.Fatalf("GetAmount0Delta not order-independent: %s != %s", ascending, descending)
	}
}

func TestGetAmount0DeltaRoundingUpGtRoundingDown(t *testing.T) {
	lo := Q96
	hi := new(uint256.Int).Add(Q96, uint256.NewInt(12345))
	liquidity := uint256.NewInt(7)

	down, err := GetAmount0Delta(lo, hi, liquidity, false)
	if err != nil {
		t.Fatalf("GetAmount0Delta rounding down error: %v", err)
	}
	up, err := GetAmount0Delta(lo, hi, liquidity, true)
	if err != nil {
		t.Fatalf("GetAmount0Delta rounding up error: %v", err)
	}
	if up.Lt(down) {
		t.Fatalf("rounding up amount0 %s less than rounding down %s", up, down)
	}
}

func TestGetAmount1DeltaSymmetric(t *testing.T) {
	lo := Q96
	hi := new(uint256.Int).Add(Q96, Q96)
	liquidity := uint256.NewInt(1_000_000)

	ascending, err := GetAmount1Delta(lo, hi, liquidity, false)
	if err != nil {
		t.Fatalf("GetAmount1Delta(lo,hi) error: %v", err)
	}
	descending, err := GetAmount1Delta(hi, lo, liquidity, false)
	if err != nil {
		t.Fatalf("GetAmount1Delta(hi,lo) error: %v", err)
	}
	if !ascending.Eq(descending) {
		t.Fatalf("GetAmount1Delta not order-independent: %s != %s", ascending, descending)
	}
}

// Adding amount0 to the pool (zeroForOne=true) must move price down; a
// round trip through GetNextSqrtPriceFromInput/GetAmount0Delta should
// reproduce (within rounding) the amount fed in.
func TestGetNextSqrtPriceFromAmount0RoundTrip(t *testing.T) {
	sqrtP := Q96
	liquidity := uint256.NewInt(5_000_000_000)
	amount := uint256.NewInt(1_000_000)

	next, err := GetNextSqrtPriceFromAmount0RoundingUp(sqrtP, liquidity, amount, true)
	if err != nil {
		t.Fatalf("GetNextSqrtPriceFromAmount0RoundingUp error: %v", err)
	}
	if next.Cmp(sqrtP) >= 0 {
		t.Fatalf("adding amount0 should decrease sqrt price: next=%s, start=%s", next, sqrtP)
	}

	back, err := GetAmount0Delta(next, sqrtP, liquidity, true)
	if err != nil {
		t.Fatalf("GetAmount0Delta error: %v", err)
	}
	if back.Lt(amount) {
		t.Fatalf("round-trip amount0 %s less than input %s", back, amount)
	}
}

func TestGetNextSqrtPriceFromAmount1Increases(t *testing.T) {
	sqrtP := Q96
	liquidity := uint256.NewInt(5_000_000_000)
	amount := uint256.NewInt(1_000_000)

	next, err := GetNextSqrtPriceFromAmount1RoundingDown(sqrtP, liquidity, amount, true)
	if err != nil {
		t.Fatalf("GetNextSqrtPriceFromAmount1RoundingDown error: %v", err)
	}
	if next.Cmp(sqrtP) <= 0 {
		t.Fatalf("adding amount1 should increase sqrt price: next=%s, start=%s", next, sqrtP)
	}
}

func TestToU160Overflow(t *testing.T) {
	tooLarge := new(uint256.Int).Lsh(uint256.NewInt(1), 160)
	if _, err := ToU160(tooLarge); err != ErrConvertU160Overflow {
		t.Fatalf("ToU160(2**160) = %v, want ErrConvertU160Overflow", err)
	}
}
