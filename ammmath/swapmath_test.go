// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ammmath

import (
	"math/big"
	"testing"

	"github.com/holiman/uint256"
)

func TestComputeSwapStepExactInPartial(t *testing.T) {
	current := Q96
	target := new(uint256.Int).Rsh(Q96, 1)
	liquidity := uint256.NewInt(1_000_000_000_000)
	amountRemaining := big.NewInt(1000)

	next, amountIn, amountOut, fee, err := ComputeSwapStep(current, target, liquidity, amountRemaining, 3000)
	if err != nil {
		t.Fatalf("ComputeSwapStep error: %v", err)
	}
	if next.Cmp(current) > 0 || next.Cmp(target) < 0 {
		t.Fatalf("next sqrt price %s not between target %s and current %s", next, target, current)
	}
	if amountIn.IsZero() {
		t.Fatalf("expected nonzero amountIn")
	}
	if amountOut.IsZero() {
		t.Fatalf("expected nonzero amountOut")
	}
	spent := new(uint256.Int).Add(amountIn, fee)
	absRemaining, _ := uint256.FromBig(amountRemaining)
	if spent.Gt(absRemaining) {
		t.Fatalf("amountIn+fee %s exceeds amountRemaining %s", spent, absRemaining)
	}
}

func TestComputeSwapStepExactInReachesTarget(t *testing.T) {
	current := Q96
	target := new(uint256.Int).Sub(Q96, uint256.NewInt(100))
	liquidity := uint256.NewInt(1_000)
	amountRemaining := big.NewInt(1_000_000_000)

	next, _, _, _, err := ComputeSwapStep(current, target, liquidity, amountRemaining, 3000)
	if err != nil {
		t.Fatalf("ComputeSwapStep error: %v", err)
	}
	if !next.Eq(target) {
		t.Fatalf("expected swap to fully cross to target %s, got %s", target, next)
	}
}

func TestComputeSwapStepExactOut(t *testing.T) {
	current := Q96
	target := new(uint256.Int).Sub(Q96, uint256.NewInt(1000))
	liquidity := uint256.NewInt(1_000_000_000_000)
	amountRemaining := big.NewInt(-500)

	next, amountIn, amountOut, fee, err := ComputeSwapStep(current, target, liquidity, amountRemaining, 3000)
	if err != nil {
		t.Fatalf("ComputeSwapStep exact-out error: %v", err)
	}
	if amountOut.Gt(uint256.NewInt(500)) {
		t.Fatalf("amountOut %s exceeds requested 500", amountOut)
	}
	if next.Cmp(current) > 0 || next.Cmp(target) < 0 {
		t.Fatalf("next sqrt price %s out of [%s,%s]", next, target, current)
	}
	if amountIn.IsZero() {
		t.Fatalf("expected nonzero amountIn on exact-out step")
	}
	if fee.IsZero() {
		t.Fatalf("expected nonzero fee")
	}
}

func TestComputeSwapStepZeroFeeNoCharge(t *testing.T) {
	current := Q96
	target := new(uint256.Int).Sub(Q96, uint256.NewInt(100))
	liquidity := uint256.NewInt(1_000_000_000_000)
	amountRemaining := big.NewInt(1000)

	_, _, _, fee, err := ComputeSwapStep(current, target, liquidity, amountRemaining, 0)
	if err != nil {
		t.Fatalf("ComputeSwapStep error: %v", err)
	}
	if !fee.IsZero() {
		t.Fatalf("expected zero fee at feePips=0, got %s", fee)
	}
}
