// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ammmath

import (
	"math/big"

	"github.com/holiman/uint256"
)

const feeUnit = 1_000_000

// ComputeSwapStep computes the result of swapping within a single tick
// range, either in its entirety (limited by amountRemaining) or up to the
// point where the price reaches sqrtRatioTargetX96.
//
// Returns the next sqrt price, the input/output amounts consumed/produced,
// and the fee charged on the input amount.
func ComputeSwapStep(
	sqrtRatioCurrentX96, sqrtRatioTargetX96 *uint256.Int,
	liquidity *uint256.Int,
	amountRemaining *big.Int,
	feePips uint64,
) (sqrtRatioNextX96, amountIn, amountOut, feeAmount *uint256.Int, err error) {
	zeroForOne := sqrtRatioCurrentX96.Cmp(sqrtRatioTargetX96) >= 0
	exactIn := amountRemaining.Sign() >= 0

	amountIn = new(uint256.Int)
	amountOut = new(uint256.Int)

	if exactIn {
		absRemaining, overflow := uint256.FromBig(amountRemaining)
		if overflow {
			return nil, nil, nil, nil, ErrMulDivOverflow
		}
		amountRemainingLessFee, mdErr := MulDiv(absRemaining, uint256.NewInt(feeUnit-feePips), uint256.NewInt(feeUnit))
		if mdErr != nil {
			return nil, nil, nil, nil, mdErr
		}

		if zeroForOne {
			amountIn, err = GetAmount0Delta(sqrtRatioTargetX96, sqrtRatioCurrentX96, liquidity, true)
		} else {
			amountIn, err = GetAmount1Delta(sqrtRatioCurrentX96, sqrtRatioTargetX96, liquidity, true)
		}
		if err != nil {
			return nil, nil, nil, nil, err
		}

		if amountRemainingLessFee.Cmp(amountIn) >= 0 {
			sqrtRatioNextX96 = sqrtRatioTargetX96
		} else {
			sqrtRatioNextX96, err = GetNextSqrtPriceFromInput(sqrtRatioCurrentX96, liquidity, amountRemainingLessFee, zeroForOne)
			if err != nil {
				return nil, nil, nil, nil, err
			}
		}
	} else {
		if zeroForOne {
			amountOut, err = GetAmount1Delta(sqrtRatioTargetX96, sqrtRatioCurrentX96, liquidity, false)
		} else {
			amountOut, err = GetAmount0Delta(sqrtRatioCurrentX96, sqrtRatioTargetX96, liquidity, false)
		}
		if err != nil {
			return nil, nil, nil, nil, err
		}

		negRemaining, overflow := uint256.FromBig(new(big.Int).Neg(amountRemaining))
		if overflow {
			return nil, nil, nil, nil, ErrMulDivOverflow
		}
		if negRemaining.Cmp(amountOut) >= 0 {
			sqrtRatioNextX96 = sqrtRatioTargetX96
		} else {
			sqrtRatioNextX96, err = GetNextSqrtPriceFromOutput(sqrtRatioCurrentX96, liquidity, negRemaining, zeroForOne)
			if err != nil {
				return nil, nil, nil, nil, err
			}
		}
	}

	max := sqrtRatioTargetX96.Eq(sqrtRatioNextX96)

	if zeroForOne {
		if !(max && exactIn) {
			amountIn, err = GetAmount0Delta(sqrtRatioNextX96, sqrtRatioCurrentX96, liquidity, true)
			if err != nil {
				return nil, nil, nil, nil, err
			}
		}
		if !(max && !exactIn) {
			amountOut, err = GetAmount1Delta(sqrtRatioNextX96, sqrtRatioCurrentX96, liquidity, false)
			if err != nil {
				return nil, nil, nil, nil, err
			}
		}
	} else {
		if !(max && exactIn) {
			amountIn, err = GetAmount1Delta(sqrtRatioCurrentX96, sqrtRatioNextX96, liquidity, true)
			if err != nil {
				return nil, nil, nil, nil, err
			}
		}
		if !(max && !exactIn) {
			amountOut, err = GetAmount0Delta(sqrtRatioCurrentX96, sqrtRatioNextX96, liquidity, false)
			if err != nil {
				return nil, nil, nil, nil, err
			}
		}
	}

	if !exactIn {
		negRemaining, overflow := uint256.FromBig(new(big.Int).Neg(amountRemaining))
		if overflow {
			return nil, nil, nil, nil, ErrMulDivOverflow
		}
		if amountOut.Cmp(negRemaining) >= 0 {
			amountOut = negRemaining
		}
	}

	if exactIn && !sqrtRatioNextX96.Eq(sqrtRatioTargetX96) {
		absRemaining, overflow := uint256.FromBig(amountRemaining)
		if overflow {
			return nil, nil, nil, nil, ErrMulDivOverflow
		}
		feeAmount = new(uint256.Int).Sub(absRemaining, amountIn)
	} else {
		feeAmount, err = MulDivRoundingUp(amountIn, uint256.NewInt(feePips), uint256.NewInt(feeUnit-feePips))
		if err != nil {
			return nil, nil, nil, nil, err
		}
	}

	return sqrtRatioNextX96, amountIn, amountOut, feeAmount, nil
}
