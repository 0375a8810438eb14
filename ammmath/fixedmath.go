// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ammmath implements the fixed-point integer math that every pool
// invariant depends on: full-precision 256-bit multiply-divide, bit
// scanning, tick/price conversion, the swap-step engine, and checked
// liquidity addition. Every constant here is carried over bit-exact from
// the reference derivation; do not "simplify" them.
package ammmath

import (
	"errors"
	"math/big"

	"github.com/holiman/uint256"
)

var (
	ErrMulDivOverflow = errors.New("ammmath: mul_div overflow")
	ErrZeroArgument   = errors.New("ammmath: zero argument")
)

// Q96 is 2**96, the denominator of a Q64.96 fixed-point price.
var Q96 = new(uint256.Int).Lsh(uint256.NewInt(1), 96)

// Q128 is 2**128, the denominator of a Q128.128 fixed-point fee growth.
var Q128 = new(uint256.Int).Lsh(uint256.NewInt(1), 128)

var maxUint256Big = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// MulDiv computes floor(a*b/denominator) using a full 512-bit intermediate
// product, failing if denominator is zero or the quotient does not fit in
// 256 bits. The reference implementation (original_source/math/src/
// fullmath.rs) builds the 512-bit product from two 256-bit halves via the
// Chinese Remainder Theorem because Rust has no wider native integer; Go's
// math/big already represents the product exactly, so the intermediate
// widening is a plain big.Int multiply instead of the CRT trick — the
// numeric result, and every rounding behavior, is identical.
func MulDiv(a, b, denominator *uint256.Int) (*uint256.Int, error) {
	if denominator.IsZero() {
		return nil, ErrMulDivOverflow
	}
	product := new(big.Int).Mul(a.ToBig(), b.ToBig())
	quotient := new(big.Int).Div(product, denominator.ToBig())
	if quotient.Cmp(maxUint256Big) > 0 {
		return nil, ErrMulDivOverflow
	}
	result, overflow := uint256.FromBig(quotient)
	if overflow {
		return nil, ErrMulDivOverflow
	}
	return result, nil
}

// MulMod computes (a*b) mod denominator exactly.
func MulMod(a, b, denominator *uint256.Int) *uint256.Int {
	product := new(big.Int).Mul(a.ToBig(), b.ToBig())
	remainder := new(big.Int).Mod(product, denominator.ToBig())
	result, _ := uint256.FromBig(remainder)
	return result
}

// MulDivRoundingUp computes ceil(a*b/denominator), failing on overflow of
// either the floor division or the final +1 rounding step.
func MulDivRoundingUp(a, b, denominator *uint256.Int) (*uint256.Int, error) {
	result, err := MulDiv(a, b, denominator)
	if err != nil {
		return nil, err
	}
	if !MulMod(a, b, denominator).IsZero() {
		if result.Eq(MaxUint256) {
			return nil, ErrMulDivOverflow
		}
		result = new(uint256.Int).AddUint64(result, 1)
	}
	return result, nil
}

// MaxUint256 is the maximum representable uint256 value.
var MaxUint256 = new(uint256.Int).Not(uint256.NewInt(0))

// UnsafeDivRoundingUp computes ceil(x/y), assuming y > 0.
func UnsafeDivRoundingUp(x, y *uint256.Int) *uint256.Int {
	quotient := new(uint256.Int).Div(x, y)
	remainder := new(uint256.Int).Mod(x, y)
	if !remainder.IsZero() {
		quotient = new(uint256.Int).AddUint64(quotient, 1)
	}
	return quotient
}

// OverflowSubU160 returns (a-b) mod 2**160, used for differencing
// seconds-per-liquidity accumulators that are only ever 160 bits wide.
func OverflowSubU160(a, b *uint256.Int) *uint256.Int {
	if a.Lt(b) {
		twoTo160 := new(uint256.Int).Lsh(uint256.NewInt(1), 160)
		result := new(uint256.Int).Add(a, twoTo160)
		return result.Sub(result, b)
	}
	return new(uint256.Int).Sub(a, b)
}
