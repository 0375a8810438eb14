// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import (
	"math/big"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"github.com/zeebo/blake3"

	"github.com/luxfi/precompile/clmm/ammmath"
)

// PositionKey derives the storage key for a (owner, tickLower, tickUpper)
// position by hashing the owner address and the two tick boundaries with
// blake3, matching the teacher's storage-key hashing convention
// (dex/module.go) in place of original_source's raw tuple key, since Go maps
// need a single comparable key type.
func PositionKey(owner common.Address, tickLower, tickUpper int32) [32]byte {
	h := blake3.New()
	h.Write(owner.Bytes())
	var buf [8]byte
	buf[0] = byte(tickLower >> 24)
	buf[1] = byte(tickLower >> 16)
	buf[2] = byte(tickLower >> 8)
	buf[3] = byte(tickLower)
	buf[4] = byte(tickUpper >> 24)
	buf[5] = byte(tickUpper >> 16)
	buf[6] = byte(tickUpper >> 8)
	buf[7] = byte(tickUpper)
	h.Write(buf[:])
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// GetPosition looks up (creating if absent) the position for the given key.
func (p *Pool) GetPosition(owner common.Address, tickLower, tickUpper int32) *PositionInfo {
	key := PositionKey(owner, tickLower, tickUpper)
	info, ok := p.Positions[key]
	if !ok {
		info = defaultPositionInfo()
		p.Positions[key] = info
	}
	return info
}

// UpdatePosition applies a liquidity delta to a position and settles owed
// fees into tokensOwed0/1 using the fee growth accrued since the position's
// last touch, mirroring original_source/factory/src/position.rs::update.
func (p *Pool) UpdatePosition(owner common.Address, tickLower, tickUpper int32, liquidityDelta *big.Int, feeGrowthInside0X128, feeGrowthInside1X128 *uint256.Int) (*PositionInfo, error) {
	info := p.GetPosition(owner, tickLower, tickUpper)

	var liquidityNext *uint256.Int
	if liquidityDelta.Sign() == 0 {
		if info.Liquidity.IsZero() {
			return nil, ErrPositionUninitialized
		}
		liquidityNext = info.Liquidity
	} else {
		next, err := ammmath.AddDelta(info.Liquidity, liquidityDelta)
		if err != nil {
			return nil, err
		}
		liquidityNext = next
	}

	feeGrowthDelta0 := new(uint256.Int).Sub(feeGrowthInside0X128, info.FeeGrowthInside0LastX128)
	feeGrowthDelta1 := new(uint256.Int).Sub(feeGrowthInside1X128, info.FeeGrowthInside1LastX128)

	tokensOwed0, err := ammmath.MulDiv(feeGrowthDelta0, info.Liquidity, ammmath.Q128)
	if err != nil {
		return nil, err
	}
	tokensOwed1, err := ammmath.MulDiv(feeGrowthDelta1, info.Liquidity, ammmath.Q128)
	if err != nil {
		return nil, err
	}

	if liquidityDelta.Sign() != 0 {
		info.Liquidity = liquidityNext
	}
	info.FeeGrowthInside0LastX128 = feeGrowthInside0X128
	info.FeeGrowthInside1LastX128 = feeGrowthInside1X128
	if !tokensOwed0.IsZero() || !tokensOwed1.IsZero() {
		info.TokensOwed0 = new(uint256.Int).Add(info.TokensOwed0, tokensOwed0)
		info.TokensOwed1 = new(uint256.Int).Add(info.TokensOwed1, tokensOwed1)
	}

	return info, nil
}
