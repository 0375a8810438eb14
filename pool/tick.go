// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import (
	"math/big"

	"github.com/holiman/uint256"
	"github.com/luxfi/precompile/clmm/ammmath"
)

// GetFeeGrowthInside computes the fee growth accrued per unit of liquidity
// inside [lower, upper) given the current tick and the global growth
// accumulators, by subtracting the growth "outside" each boundary tick.
func (p *Pool) GetFeeGrowthInside(lower, upper, tickCurrent int32) (inside0, inside1 *uint256.Int) {
	lowerInfo := p.getTick(lower)
	upperInfo := p.getTick(upper)

	var below0, below1 *uint256.Int
	if tickCurrent >= lower {
		below0, below1 = lowerInfo.FeeGrowthOutside0X128, lowerInfo.FeeGrowthOutside1X128
	} else {
		below0 = new(uint256.Int).Sub(p.FeeGrowthGlobal0X128, lowerInfo.FeeGrowthOutside0X128)
		below1 = new(uint256.Int).Sub(p.FeeGrowthGlobal1X128, lowerInfo.FeeGrowthOutside1X128)
	}

	var above0, above1 *uint256.Int
	if tickCurrent < upper {
		above0, above1 = upperInfo.FeeGrowthOutside0X128, upperInfo.FeeGrowthOutside1X128
	} else {
		above0 = new(uint256.Int).Sub(p.FeeGrowthGlobal0X128, upperInfo.FeeGrowthOutside0X128)
		above1 = new(uint256.Int).Sub(p.FeeGrowthGlobal1X128, upperInfo.FeeGrowthOutside1X128)
	}

	inside0 = new(uint256.Int).Sub(new(uint256.Int).Sub(p.FeeGrowthGlobal0X128, below0), above0)
	inside1 = new(uint256.Int).Sub(new(uint256.Int).Sub(p.FeeGrowthGlobal1X128, below1), above1)
	return inside0, inside1
}

// UpdateTick updates the liquidity tracked by a tick on mint/burn, returning
// whether the tick flipped from uninitialized to initialized or vice versa.
func (p *Pool) UpdateTick(
	tick, tickCurrent int32,
	liquidityDelta *big.Int,
	feeGrowthGlobal0X128, feeGrowthGlobal1X128 *uint256.Int,
	secondsPerLiquidityCumulativeX128 *uint256.Int,
	tickCumulative int64,
	time uint64,
	upper bool,
	maxLiquidity *uint256.Int,
) (bool, error) {
	info := p.getTick(tick)
	grossBefore := info.LiquidityGross
	grossAfter, err := ammmath.AddDelta(grossBefore, liquidityDelta)
	if err != nil {
		return false, err
	}
	if grossAfter.Gt(maxLiquidity) {
		return false, ErrLiquidityOverflow
	}

	flipped := grossAfter.IsZero() != grossBefore.IsZero()

	if grossBefore.IsZero() {
		if tick <= tickCurrent {
			info.FeeGrowthOutside0X128 = feeGrowthGlobal0X128
			info.FeeGrowthOutside1X128 = feeGrowthGlobal1X128
			info.SecondsPerLiquidityOutsideX128 = secondsPerLiquidityCumulativeX128
			info.TickCumulativeOutside = tickCumulative
			info.SecondsOutside = uint32(time)
		}
		info.Initialized = true
	}

	info.LiquidityGross = grossAfter
	if upper {
		info.LiquidityNet = new(big.Int).Sub(info.LiquidityNet, liquidityDelta)
	} else {
		info.LiquidityNet = new(big.Int).Add(info.LiquidityNet, liquidityDelta)
	}
	return flipped, nil
}

// ClearTick resets a tick to its default (zero) entry once its
// liquidity_gross has returned to zero.
func (p *Pool) ClearTick(tick int32) {
	p.Ticks[tick] = defaultTickInfo()
}

// CrossTick is invoked when the swap loop's price reaches an initialized
// tick boundary: it flips the "outside" accumulators (outside <- global -
// outside) and returns the stored liquidity_net for the caller to apply.
func (p *Pool) CrossTick(
	tick int32,
	feeGrowthGlobal0X128, feeGrowthGlobal1X128 *uint256.Int,
	secondsPerLiquidityCumulativeX128 *uint256.Int,
	tickCumulative int64,
	time uint64,
) *big.Int {
	info := p.getTick(tick)
	info.FeeGrowthOutside0X128 = new(uint256.Int).Sub(feeGrowthGlobal0X128, info.FeeGrowthOutside0X128)
	info.FeeGrowthOutside1X128 = new(uint256.Int).Sub(feeGrowthGlobal1X128, info.FeeGrowthOutside1X128)
	info.SecondsPerLiquidityOutsideX128 = ammmath.OverflowSubU160(secondsPerLiquidityCumulativeX128, info.SecondsPerLiquidityOutsideX128)
	info.TickCumulativeOutside = tickCumulative - info.TickCumulativeOutside
	info.SecondsOutside = uint32(time) - info.SecondsOutside
	return info.LiquidityNet
}
