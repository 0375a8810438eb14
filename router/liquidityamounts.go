// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package router

import (
	"github.com/holiman/uint256"

	"github.com/luxfi/precompile/clmm/ammmath"
)

// sortRatios returns (lower, upper) regardless of call order, matching every
// function in original_source/router/router/src/periphery/liquidity_amounts.rs.
func sortRatios(a, b *uint256.Int) (*uint256.Int, *uint256.Int) {
	if a.Cmp(b) > 0 {
		return b, a
	}
	return a, b
}

// GetLiquidityForAmount0 returns the liquidity a given amount of token0
// would provide between sqrtRatioAX96 and sqrtRatioBX96.
func GetLiquidityForAmount0(sqrtRatioAX96, sqrtRatioBX96, amount0 *uint256.Int) (*uint256.Int, error) {
	lower, upper := sortRatios(sqrtRatioAX96, sqrtRatioBX96)
	intermediate, err := ammmath.MulDiv(lower, upper, ammmath.Q96)
	if err != nil {
		return nil, err
	}
	return ammmath.MulDiv(amount0, intermediate, new(uint256.Int).Sub(upper, lower))
}

// GetLiquidityForAmount1 returns the liquidity a given amount of token1
// would provide between sqrtRatioAX96 and sqrtRatioBX96.
func GetLiquidityForAmount1(sqrtRatioAX96, sqrtRatioBX96, amount1 *uint256.Int) (*uint256.Int, error) {
	lower, upper := sortRatios(sqrtRatioAX96, sqrtRatioBX96)
	return ammmath.MulDiv(amount1, ammmath.Q96, new(uint256.Int).Sub(upper, lower))
}

// GetLiquidityForAmounts returns the maximum liquidity that can be minted
// given amount0, amount1 at the current price sqrtRatioX96 over a range,
// picking whichever of the two token-derived amounts is the binding
// constraint.
func GetLiquidityForAmounts(sqrtRatioX96, sqrtRatioAX96, sqrtRatioBX96, amount0, amount1 *uint256.Int) (*uint256.Int, error) {
	lower, upper := sortRatios(sqrtRatioAX96, sqrtRatioBX96)

	switch {
	case sqrtRatioX96.Cmp(lower) <= 0:
		return GetLiquidityForAmount0(lower, upper, amount0)
	case sqrtRatioX96.Cmp(upper) < 0:
		liquidity0, err := GetLiquidityForAmount0(sqrtRatioX96, upper, amount0)
		if err != nil {
			return nil, err
		}
		liquidity1, err := GetLiquidityForAmount1(lower, sqrtRatioX96, amount1)
		if err != nil {
			return nil, err
		}
		if liquidity0.Cmp(liquidity1) < 0 {
			return liquidity0, nil
		}
		return liquidity1, nil
	default:
		return GetLiquidityForAmount1(lower, upper, amount1)
	}
}

// GetAmount0ForLiquidity returns the amount of token0 owed for a given
// amount of liquidity between sqrtRatioAX96 and sqrtRatioBX96.
func GetAmount0ForLiquidity(sqrtRatioAX96, sqrtRatioBX96, liquidity *uint256.Int) (*uint256.Int, error) {
	lower, upper := sortRatios(sqrtRatioAX96, sqrtRatioBX96)
	numerator, err := ammmath.MulDiv(new(uint256.Int).Lsh(liquidity, 96), new(uint256.Int).Sub(upper, lower), upper)
	if err != nil {
		return nil, err
	}
	return new(uint256.Int).Div(numerator, lower), nil
}

// GetAmount1ForLiquidity returns the amount of token1 owed for a given
// amount of liquidity between sqrtRatioAX96 and sqrtRatioBX96.
func GetAmount1ForLiquidity(sqrtRatioAX96, sqrtRatioBX96, liquidity *uint256.Int) (*uint256.Int, error) {
	lower, upper := sortRatios(sqrtRatioAX96, sqrtRatioBX96)
	return ammmath.MulDiv(liquidity, new(uint256.Int).Sub(upper, lower), ammmath.Q96)
}

// GetAmountsForLiquidity returns the (amount0, amount1) owed for a given
// amount of liquidity at the current price sqrtRatioX96 over a range.
func GetAmountsForLiquidity(sqrtRatioX96, sqrtRatioAX96, sqrtRatioBX96, liquidity *uint256.Int) (*uint256.Int, *uint256.Int, error) {
	lower, upper := sortRatios(sqrtRatioAX96, sqrtRatioBX96)

	switch {
	case sqrtRatioX96.Cmp(lower) <= 0:
		amount0, err := GetAmount0ForLiquidity(lower, upper, liquidity)
		if err != nil {
			return nil, nil, err
		}
		return amount0, new(uint256.Int), nil
	case sqrtRatioX96.Cmp(upper) < 0:
		amount0, err := GetAmount0ForLiquidity(sqrtRatioX96, upper, liquidity)
		if err != nil {
			return nil, nil, err
		}
		amount1, err := GetAmount1ForLiquidity(lower, sqrtRatioX96, liquidity)
		if err != nil {
			return nil, nil, err
		}
		return amount0, amount1, nil
	default:
		amount1, err := GetAmount1ForLiquidity(lower, upper, liquidity)
		if err != nil {
			return nil, nil, err
		}
		return new(uint256.Int), amount1, nil
	}
}
