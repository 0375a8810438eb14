// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ammmath

import (
	"errors"
	"math/big"

	"github.com/holiman/uint256"
)

var (
	ErrLiquiditySub = errors.New("ammmath: liquidity sub underflow")
	ErrLiquidityAdd = errors.New("ammmath: liquidity add overflow")
)

var maxUint128 = new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), 128), uint256.NewInt(1))

// AddDelta adds a signed liquidity delta y to an unsigned liquidity x,
// failing on underflow (removing more than is present) or overflow (x+y
// exceeding a u128). No third-party 128-bit-checked-add exists in the pack;
// uint256.Int has no narrower-width overflow check either, so the compare
// against maxUint128 is done directly — this is the one place in the engine
// that stays on plain arithmetic rather than a library call.
func AddDelta(x *uint256.Int, y *big.Int) (*uint256.Int, error) {
	if y.Sign() < 0 {
		abs, _ := uint256.FromBig(new(big.Int).Neg(y))
		if x.Lt(abs) {
			return nil, ErrLiquiditySub
		}
		return new(uint256.Int).Sub(x, abs), nil
	}
	abs, overflow := uint256.FromBig(y)
	if overflow {
		return nil, ErrLiquidityAdd
	}
	sum, carry := new(uint256.Int).AddOverflow(x, abs)
	if carry || sum.Gt(maxUint128) {
		return nil, ErrLiquidityAdd
	}
	return sum, nil
}
