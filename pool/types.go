// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package pool implements the concentrated-liquidity pool state machine:
// tick-indexed liquidity, the tick bitmap, the TWAP oracle ring buffer,
// per-position fee accounting, and the mint/burn/collect/swap/flash
// operations. This is the core of the system; everything else (Factory,
// PositionManagerRouter) is a thin caller on top of it.
package pool

import (
	"math/big"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/precompile/clmm/ammmath"
)

// Slot0 is the hot, atomically-read bundle of price/tick/oracle-index state.
type Slot0 struct {
	SqrtPriceX96               *uint256.Int
	Tick                       int32
	ObservationIndex           uint16
	ObservationCardinality     uint16
	ObservationCardinalityNext uint16
	FeeProtocol                uint8
}

// TickInfo is the per-tick aggregate used to cross ticks during a swap and
// to compute fee-growth-inside for positions straddling it.
type TickInfo struct {
	LiquidityGross                *uint256.Int
	LiquidityNet                  *big.Int
	FeeGrowthOutside0X128         *uint256.Int
	FeeGrowthOutside1X128         *uint256.Int
	TickCumulativeOutside         int64
	SecondsPerLiquidityOutsideX128 *uint256.Int
	SecondsOutside                 uint32
	Initialized                    bool
}

func defaultTickInfo() *TickInfo {
	return &TickInfo{
		LiquidityGross:                 new(uint256.Int),
		LiquidityNet:                   new(big.Int),
		FeeGrowthOutside0X128:          new(uint256.Int),
		FeeGrowthOutside1X128:          new(uint256.Int),
		SecondsPerLiquidityOutsideX128: new(uint256.Int),
	}
}

// PositionInfo is the per-(owner,lower,upper) liquidity and fee record.
type PositionInfo struct {
	Liquidity              *uint256.Int
	FeeGrowthInside0LastX128 *uint256.Int
	FeeGrowthInside1LastX128 *uint256.Int
	TokensOwed0            *uint256.Int
	TokensOwed1            *uint256.Int
}

func defaultPositionInfo() *PositionInfo {
	return &PositionInfo{
		Liquidity:                new(uint256.Int),
		FeeGrowthInside0LastX128: new(uint256.Int),
		FeeGrowthInside1LastX128: new(uint256.Int),
		TokensOwed0:              new(uint256.Int),
		TokensOwed1:              new(uint256.Int),
	}
}

// Observation is one sample in the TWAP oracle ring buffer.
type Observation struct {
	BlockTimestamp                 uint64
	TickCumulative                 int64
	SecondsPerLiquidityCumulativeX128 *uint256.Int
	Initialized                     bool
}

// Immutables are the pool's construction-time parameters, fixed forever.
type Immutables struct {
	Factory          common.Address
	Token0           common.Address
	Token1           common.Address
	Fee              uint32
	TickSpacing      int32
	MaxLiquidityPerTick *uint256.Int
}

// Pool is the per-pair state machine. One Pool value corresponds to one
// deployed pool contract instance in the reference architecture; here it is
// an in-memory aggregate the way the teacher's PoolManager holds its pools
// (dex/pool_manager.go's `pools map[[32]byte]*Pool`), with the precompile
// wiring layer (package clmm at the module root) responsible for bridging
// it to the host StateDB.
type Pool struct {
	Immutables

	Slot0          Slot0
	Slot0Unlocked  bool
	locked         bool

	FeeGrowthGlobal0X128 *uint256.Int
	FeeGrowthGlobal1X128 *uint256.Int
	ProtocolFees0        *uint256.Int
	ProtocolFees1        *uint256.Int
	Liquidity            *uint256.Int

	Ticks      map[int32]*TickInfo
	TickBitmap map[int16]*uint256.Int
	Positions  map[[32]byte]*PositionInfo
	Observations []Observation

	Callbacks Callbacks
	Token     TokenContract
}

// NewPool constructs an uninitialized pool (init_pool): it sets the
// immutables and zeroes all state, leaving Slot0Unlocked false until
// InitPrice is called.
func NewPool(factory, token0, token1 common.Address, fee uint32, tickSpacing int32, callbacks Callbacks, token TokenContract) *Pool {
	maxLiq := TickSpacingToMaxLiquidityPerTick(tickSpacing)
	return &Pool{
		Immutables: Immutables{
			Factory:             factory,
			Token0:              token0,
			Token1:              token1,
			Fee:                 fee,
			TickSpacing:         tickSpacing,
			MaxLiquidityPerTick: maxLiq,
		},
		Slot0: Slot0{
			SqrtPriceX96: new(uint256.Int),
		},
		FeeGrowthGlobal0X128: new(uint256.Int),
		FeeGrowthGlobal1X128: new(uint256.Int),
		ProtocolFees0:        new(uint256.Int),
		ProtocolFees1:        new(uint256.Int),
		Liquidity:            new(uint256.Int),
		Ticks:                make(map[int32]*TickInfo),
		TickBitmap:           make(map[int16]*uint256.Int),
		Positions:            make(map[[32]byte]*PositionInfo),
		Callbacks:            callbacks,
		Token:                token,
	}
}

func (p *Pool) getTick(t int32) *TickInfo {
	info, ok := p.Ticks[t]
	if !ok {
		info = defaultTickInfo()
		p.Ticks[t] = info
	}
	return info
}

func (p *Pool) getBitmapWord(w int16) *uint256.Int {
	word, ok := p.TickBitmap[w]
	if !ok {
		word = new(uint256.Int)
		p.TickBitmap[w] = word
	}
	return word
}

// TickSpacingToMaxLiquidityPerTick computes u128::MAX / num_usable_ticks for
// a given tick spacing, bounding liquidity_gross at every tick.
func TickSpacingToMaxLiquidityPerTick(tickSpacing int32) *uint256.Int {
	minTick := (ammmath.MinTick / tickSpacing) * tickSpacing
	maxTick := (ammmath.MaxTick / tickSpacing) * tickSpacing
	numTicks := uint64((maxTick-minTick)/tickSpacing) + 1

	maxUint128 := new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), 128), uint256.NewInt(1))
	return new(uint256.Int).Div(maxUint128, uint256.NewInt(numTicks))
}
