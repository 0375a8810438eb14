// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ammmath

import (
	"errors"
	"math/big"

	"github.com/holiman/uint256"
)

var ErrConvertU160Overflow = errors.New("ammmath: value does not fit in u160")

var maxUint160 = new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), 160), uint256.NewInt(1))

// ToU160 requires y <= 2**160 - 1, matching the reference safe_cast::to_u160.
func ToU160(y *uint256.Int) (*uint256.Int, error) {
	if y.Gt(maxUint160) {
		return nil, ErrConvertU160Overflow
	}
	return y, nil
}

// GetNextSqrtPriceFromAmount0RoundingUp computes the next sqrt price given a
// delta of token0, rounding up (so the invariant price' <= price is
// preserved when removing token0 from the pool's virtual reserve).
func GetNextSqrtPriceFromAmount0RoundingUp(sqrtPX96 *uint256.Int, liquidity *uint256.Int, amount *uint256.Int, add bool) (*uint256.Int, error) {
	if amount.IsZero() {
		return sqrtPX96, nil
	}
	numerator1 := new(uint256.Int).Lsh(liquidity, 96)

	if add {
		product, overflow := new(uint256.Int).MulOverflow(amount, sqrtPX96)
		if !overflow {
			denominator := new(uint256.Int).Add(numerator1, product)
			if denominator.Cmp(numerator1) >= 0 {
				result, err := MulDivRoundingUp(numerator1, sqrtPX96, denominator)
				if err != nil {
					return nil, err
				}
				return ToU160(result)
			}
		}
		denom := new(uint256.Int).Add(new(uint256.Int).Div(numerator1, sqrtPX96), amount)
		result := UnsafeDivRoundingUp(numerator1, denom)
		return ToU160(result)
	}

	product, overflow := new(uint256.Int).MulOverflow(amount, sqrtPX96)
	if overflow || numerator1.Cmp(product) <= 0 {
		return nil, errors.New("ammmath: sqrt ratio internal error")
	}
	denominator := new(uint256.Int).Sub(numerator1, product)
	result, err := MulDivRoundingUp(numerator1, sqrtPX96, denominator)
	if err != nil {
		return nil, err
	}
	return ToU160(result)
}

// GetNextSqrtPriceFromAmount1RoundingDown computes the next sqrt price given
// a delta of token1, rounding down.
func GetNextSqrtPriceFromAmount1RoundingDown(sqrtPX96 *uint256.Int, liquidity *uint256.Int, amount *uint256.Int, add bool) (*uint256.Int, error) {
	if add {
		var quotient *uint256.Int
		if amount.Cmp(maxUint160) <= 0 {
			quotient = new(uint256.Int).Div(new(uint256.Int).Lsh(amount, 96), liquidity)
		} else {
			var err error
			quotient, err = MulDiv(amount, Q96, liquidity)
			if err != nil {
				return nil, err
			}
		}
		return ToU160(new(uint256.Int).Add(sqrtPX96, quotient))
	}

	var quotient *uint256.Int
	if amount.Cmp(maxUint160) <= 0 {
		quotient = UnsafeDivRoundingUp(new(uint256.Int).Lsh(amount, 96), liquidity)
	} else {
		var err error
		quotient, err = MulDivRoundingUp(amount, Q96, liquidity)
		if err != nil {
			return nil, err
		}
	}
	if sqrtPX96.Cmp(quotient) <= 0 {
		return nil, errors.New("ammmath: sqrt ratio internal error")
	}
	return ToU160(new(uint256.Int).Sub(sqrtPX96, quotient))
}

// GetNextSqrtPriceFromInput routes to the amount0/amount1 variant depending
// on swap direction for an exact-input step.
func GetNextSqrtPriceFromInput(sqrtPX96, liquidity, amountIn *uint256.Int, zeroForOne bool) (*uint256.Int, error) {
	if sqrtPX96.IsZero() || liquidity.IsZero() {
		return nil, errors.New("ammmath: sqrt ratio internal error")
	}
	if zeroForOne {
		return GetNextSqrtPriceFromAmount0RoundingUp(sqrtPX96, liquidity, amountIn, true)
	}
	return GetNextSqrtPriceFromAmount1RoundingDown(sqrtPX96, liquidity, amountIn, true)
}

// GetNextSqrtPriceFromOutput routes to the amount0/amount1 variant for an
// exact-output step.
func GetNextSqrtPriceFromOutput(sqrtPX96, liquidity, amountOut *uint256.Int, zeroForOne bool) (*uint256.Int, error) {
	if sqrtPX96.IsZero() || liquidity.IsZero() {
		return nil, errors.New("ammmath: sqrt ratio internal error")
	}
	if zeroForOne {
		return GetNextSqrtPriceFromAmount1RoundingDown(sqrtPX96, liquidity, amountOut, false)
	}
	return GetNextSqrtPriceFromAmount0RoundingUp(sqrtPX96, liquidity, amountOut, false)
}

// GetAmount0Delta returns the amount of token0 required to move liquidity L
// from sqrtRatio0 to sqrtRatio1 (order-independent).
func GetAmount0Delta(sqrtRatio0, sqrtRatio1, liquidity *uint256.Int, roundUp bool) (*uint256.Int, error) {
	a, b := sqrtRatio0, sqrtRatio1
	if a.Cmp(b) > 0 {
		a, b = b, a
	}
	if a.IsZero() {
		return nil, errors.New("ammmath: sqrt ratio internal error")
	}
	numerator1 := new(uint256.Int).Lsh(liquidity, 96)
	numerator2 := new(uint256.Int).Sub(b, a)

	if roundUp {
		inner, err := MulDivRoundingUp(numerator1, numerator2, b)
		if err != nil {
			return nil, err
		}
		return UnsafeDivRoundingUp(inner, a), nil
	}
	inner, err := MulDiv(numerator1, numerator2, b)
	if err != nil {
		return nil, err
	}
	return new(uint256.Int).Div(inner, a), nil
}

// GetAmount1Delta returns the amount of token1 required to move liquidity L
// from sqrtRatio0 to sqrtRatio1 (order-independent).
func GetAmount1Delta(sqrtRatio0, sqrtRatio1, liquidity *uint256.Int, roundUp bool) (*uint256.Int, error) {
	a, b := sqrtRatio0, sqrtRatio1
	if a.Cmp(b) > 0 {
		a, b = b, a
	}
	diff := new(uint256.Int).Sub(b, a)
	if roundUp {
		return MulDivRoundingUp(liquidity, diff, Q96)
	}
	return MulDiv(liquidity, diff, Q96)
}

// GetAmount0DeltaSigned returns the signed token0 delta for a signed
// liquidity change, negating for liquidity removal.
func GetAmount0DeltaSigned(sqrtRatio0, sqrtRatio1 *uint256.Int, liquidity *big.Int) (*big.Int, error) {
	if liquidity.Sign() < 0 {
		abs, _ := uint256.FromBig(new(big.Int).Neg(liquidity))
		delta, err := GetAmount0Delta(sqrtRatio0, sqrtRatio1, abs, false)
		if err != nil {
			return nil, err
		}
		return new(big.Int).Neg(delta.ToBig()), nil
	}
	abs, overflow := uint256.FromBig(liquidity)
	if overflow {
		return nil, ErrConvertU160Overflow
	}
	delta, err := GetAmount0Delta(sqrtRatio0, sqrtRatio1, abs, true)
	if err != nil {
		return nil, err
	}
	return delta.ToBig(), nil
}

// GetAmount1DeltaSigned returns the signed token1 delta for a signed
// liquidity change, negating for liquidity removal.
func GetAmount1DeltaSigned(sqrtRatio0, sqrtRatio1 *uint256.Int, liquidity *big.Int) (*big.Int, error) {
	if liquidity.Sign() < 0 {
		abs, _ := uint256.FromBig(new(big.Int).Neg(liquidity))
		delta, err := GetAmount1Delta(sqrtRatio0, sqrtRatio1, abs, false)
		if err != nil {
			return nil, err
		}
		return new(big.Int).Neg(delta.ToBig()), nil
	}
	abs, overflow := uint256.FromBig(liquidity)
	if overflow {
		return nil, ErrConvertU160Overflow
	}
	delta, err := GetAmount1Delta(sqrtRatio0, sqrtRatio1, abs, true)
	if err != nil {
		return nil, err
	}
	return delta.ToBig(), nil
}
