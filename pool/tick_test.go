// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import (
	"math/big"
	"testing"

	"github.com/holiman/uint256"
)

func TestTickSpacingToMaxLiquidityPerTick(t *testing.T) {
	got := TickSpacingToMaxLiquidityPerTick(testTickSpacing)
	if got.IsZero() {
		t.Fatalf("TickSpacingToMaxLiquidityPerTick(%d) = 0", testTickSpacing)
	}
	wide := TickSpacingToMaxLiquidityPerTick(1)
	if wide.Cmp(got) >= 0 {
		t.Fatalf("finer tick spacing should admit less liquidity per tick: spacing=1 got %s, spacing=%d got %s", wide, testTickSpacing, got)
	}
}

func TestUpdateTickFlipsOnFirstLiquidity(t *testing.T) {
	p, _ := newTestPool()
	flipped, err := p.UpdateTick(60, 0, big.NewInt(100), new(uint256.Int), new(uint256.Int), new(uint256.Int), 0, 1, false, p.MaxLiquidityPerTick)
	if err != nil {
		t.Fatalf("UpdateTick: %v", err)
	}
	if !flipped {
		t.Fatalf("expected flip on first nonzero liquidity at a tick")
	}
	info := p.getTick(60)
	if info.LiquidityGross.Cmp(uint256.NewInt(100)) != 0 {
		t.Fatalf("liquidityGross = %s, want 100", info.LiquidityGross)
	}
	if info.LiquidityNet.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("liquidityNet (lower) = %s, want 100", info.LiquidityNet)
	}
}

func TestUpdateTickUpperNegatesNet(t *testing.T) {
	p, _ := newTestPool()
	if _, err := p.UpdateTick(60, 0, big.NewInt(100), new(uint256.Int), new(uint256.Int), new(uint256.Int), 0, 1, true, p.MaxLiquidityPerTick); err != nil {
		t.Fatalf("UpdateTick: %v", err)
	}
	info := p.getTick(60)
	if info.LiquidityNet.Cmp(big.NewInt(-100)) != 0 {
		t.Fatalf("liquidityNet (upper) = %s, want -100", info.LiquidityNet)
	}
}

func TestUpdateTickRejectsOverflow(t *testing.T) {
	p, _ := newTestPool()
	tiny := uint256.NewInt(50)
	if _, err := p.UpdateTick(60, 0, big.NewInt(100), new(uint256.Int), new(uint256.Int), new(uint256.Int), 0, 1, false, tiny); err != ErrLiquidityOverflow {
		t.Fatalf("UpdateTick(over max) = %v, want ErrLiquidityOverflow", err)
	}
}

func TestClearTickResetsEntry(t *testing.T) {
	p, _ := newTestPool()
	if _, err := p.UpdateTick(60, 0, big.NewInt(100), new(uint256.Int), new(uint256.Int), new(uint256.Int), 0, 1, false, p.MaxLiquidityPerTick); err != nil {
		t.Fatalf("UpdateTick: %v", err)
	}
	p.ClearTick(60)
	info := p.getTick(60)
	if !info.LiquidityGross.IsZero() || info.Initialized {
		t.Fatalf("ClearTick did not reset tick 60: %+v", info)
	}
}

func TestGetFeeGrowthInsideCurrentTickInRange(t *testing.T) {
	p, _ := newTestPool()
	p.FeeGrowthGlobal0X128 = uint256.NewInt(1000)
	p.FeeGrowthGlobal1X128 = uint256.NewInt(2000)

	inside0, inside1 := p.GetFeeGrowthInside(-60, 60, 0)
	if inside0.Cmp(uint256.NewInt(1000)) != 0 {
		t.Fatalf("inside0 = %s, want 1000 (no outside growth recorded yet)", inside0)
	}
	if inside1.Cmp(uint256.NewInt(2000)) != 0 {
		t.Fatalf("inside1 = %s, want 2000", inside1)
	}
}

func TestCrossTickFlipsOutsideGrowth(t *testing.T) {
	p, _ := newTestPool()
	info := p.getTick(60)
	info.FeeGrowthOutside0X128 = uint256.NewInt(300)
	info.FeeGrowthOutside1X128 = uint256.NewInt(400)

	liquidityNet := p.CrossTick(60, uint256.NewInt(1000), uint256.NewInt(2000), new(uint256.Int), 10, 5)
	if liquidityNet.Sign() != 0 {
		t.Fatalf("liquidityNet = %s, want 0 (no liquidity ever added at tick 60)", liquidityNet)
	}
	if info.FeeGrowthOutside0X128.Cmp(uint256.NewInt(700)) != 0 {
		t.Fatalf("feeGrowthOutside0 after cross = %s, want 700", info.FeeGrowthOutside0X128)
	}
	if info.FeeGrowthOutside1X128.Cmp(uint256.NewInt(1600)) != 0 {
		t.Fatalf("feeGrowthOutside1 after cross = %s, want 1600", info.FeeGrowthOutside1X128)
	}
}
