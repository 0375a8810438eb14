// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import (
	"math/big"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"

	"github.com/luxfi/precompile/clmm/ammmath"
)

// lock acquires the reentrancy guard, an explicit boolean on the pool in the
// style of the teacher's boolean-lock pattern (dex/pool_manager.go), so a
// callback invoked mid-operation observes the pool as locked. Every operation
// releases it with a deferred unlock, so the pool is unlocked again when the
// operation returns, on an error return as well as on success.
func (p *Pool) lock() error {
	if !p.Slot0Unlocked {
		return ErrPoolNotInitialized
	}
	if p.locked {
		return ErrPoolLocked
	}
	p.locked = true
	return nil
}

func (p *Pool) unlock() {
	p.locked = false
}

func checkTicks(tickLower, tickUpper int32) error {
	if tickLower >= tickUpper {
		return ErrTickOrder
	}
	if tickLower < ammmath.MinTick {
		return ErrTickOutOfRange
	}
	if tickUpper > ammmath.MaxTick {
		return ErrTickOutOfRange
	}
	return nil
}

// InitPrice sets the pool's initial price and starting tick, seeding the
// oracle with its first observation. May only be called once.
func (p *Pool) InitPrice(sqrtPriceX96 *uint256.Int, now uint64) error {
	if p.Slot0Unlocked {
		return ErrAlreadyInitialized
	}
	tick, err := ammmath.GetTickAtSqrtRatio(sqrtPriceX96)
	if err != nil {
		return err
	}
	cardinality, cardinalityNext := p.InitializeOracle(now)
	p.Slot0 = Slot0{
		SqrtPriceX96:               sqrtPriceX96,
		Tick:                       tick,
		ObservationIndex:           0,
		ObservationCardinality:     cardinality,
		ObservationCardinalityNext: cardinalityNext,
		FeeProtocol:                0,
	}
	p.Slot0Unlocked = true
	return nil
}

// modifyPosition applies a liquidity delta to a position, updating the
// lower/upper ticks and the pool's in-range liquidity if the current price
// sits inside [tickLower, tickUpper), and returns the signed token deltas
// required to effect the change.
func (p *Pool) modifyPosition(owner common.Address, tickLower, tickUpper int32, liquidityDelta *big.Int, now uint64) (*PositionInfo, *big.Int, *big.Int, error) {
	if err := checkTicks(tickLower, tickUpper); err != nil {
		return nil, nil, nil, err
	}

	slot0 := p.Slot0
	var flippedLower, flippedUpper bool
	var err error

	if liquidityDelta.Sign() != 0 {
		flippedLower, err = p.UpdateTick(tickLower, slot0.Tick, liquidityDelta,
			p.FeeGrowthGlobal0X128, p.FeeGrowthGlobal1X128, new(uint256.Int), 0, now, false, p.MaxLiquidityPerTick)
		if err != nil {
			return nil, nil, nil, err
		}
		flippedUpper, err = p.UpdateTick(tickUpper, slot0.Tick, liquidityDelta,
			p.FeeGrowthGlobal0X128, p.FeeGrowthGlobal1X128, new(uint256.Int), 0, now, true, p.MaxLiquidityPerTick)
		if err != nil {
			return nil, nil, nil, err
		}
		if flippedLower {
			if err := p.FlipTick(tickLower, p.TickSpacing); err != nil {
				return nil, nil, nil, err
			}
		}
		if flippedUpper {
			if err := p.FlipTick(tickUpper, p.TickSpacing); err != nil {
				return nil, nil, nil, err
			}
		}
	}

	feeGrowthInside0, feeGrowthInside1 := p.GetFeeGrowthInside(tickLower, tickUpper, slot0.Tick)
	position, err := p.UpdatePosition(owner, tickLower, tickUpper, liquidityDelta, feeGrowthInside0, feeGrowthInside1)
	if err != nil {
		return nil, nil, nil, err
	}

	amount0 := new(big.Int)
	amount1 := new(big.Int)

	if liquidityDelta.Sign() != 0 {
		switch {
		case slot0.Tick < tickLower:
			sqrtLower, err := ammmath.GetSqrtRatioAtTick(tickLower)
			if err != nil {
				return nil, nil, nil, err
			}
			sqrtUpper, err := ammmath.GetSqrtRatioAtTick(tickUpper)
			if err != nil {
				return nil, nil, nil, err
			}
			amount0, err = ammmath.GetAmount0DeltaSigned(sqrtLower, sqrtUpper, liquidityDelta)
			if err != nil {
				return nil, nil, nil, err
			}
		case slot0.Tick < tickUpper:
			sqrtLower, err := ammmath.GetSqrtRatioAtTick(tickLower)
			if err != nil {
				return nil, nil, nil, err
			}
			sqrtUpper, err := ammmath.GetSqrtRatioAtTick(tickUpper)
			if err != nil {
				return nil, nil, nil, err
			}
			amount0, err = ammmath.GetAmount0DeltaSigned(slot0.SqrtPriceX96, sqrtUpper, liquidityDelta)
			if err != nil {
				return nil, nil, nil, err
			}
			amount1, err = ammmath.GetAmount1DeltaSigned(sqrtLower, slot0.SqrtPriceX96, liquidityDelta)
			if err != nil {
				return nil, nil, nil, err
			}
			p.Liquidity, err = ammmath.AddDelta(p.Liquidity, liquidityDelta)
			if err != nil {
				return nil, nil, nil, err
			}
		default:
			sqrtLower, err := ammmath.GetSqrtRatioAtTick(tickLower)
			if err != nil {
				return nil, nil, nil, err
			}
			sqrtUpper, err := ammmath.GetSqrtRatioAtTick(tickUpper)
			if err != nil {
				return nil, nil, nil, err
			}
			amount1, err = ammmath.GetAmount1DeltaSigned(sqrtLower, sqrtUpper, liquidityDelta)
			if err != nil {
				return nil, nil, nil, err
			}
		}
	}

	if flippedLower && liquidityDelta.Sign() < 0 {
		if p.getTick(tickLower).LiquidityGross.IsZero() {
			p.ClearTick(tickLower)
		}
	}
	if flippedUpper && liquidityDelta.Sign() < 0 {
		if p.getTick(tickUpper).LiquidityGross.IsZero() {
			p.ClearTick(tickUpper)
		}
	}

	return position, amount0, amount1, nil
}

// Mint adds liquidity for owner over [tickLower, tickUpper), invoking
// MintCallback to collect payment and verifying, via the token collaborator,
// that the pool's balances actually increased by the required amounts.
func (p *Pool) Mint(owner common.Address, tickLower, tickUpper int32, amount *uint256.Int, data []byte, now uint64) (*big.Int, *big.Int, error) {
	if err := p.lock(); err != nil {
		return nil, nil, err
	}
	defer p.unlock()

	if amount.IsZero() {
		return nil, nil, ErrInvalidLiquidity
	}

	liquidityDelta := new(big.Int).Set(amount.ToBig())
	_, amount0, amount1, err := p.modifyPosition(owner, tickLower, tickUpper, liquidityDelta, now)
	if err != nil {
		return nil, nil, err
	}

	balance0Before := p.Token.BalanceOf(p.Token0, selfAddress(p))
	balance1Before := p.Token.BalanceOf(p.Token1, selfAddress(p))

	if err := p.Callbacks.MintCallback(amount0, amount1, data); err != nil {
		return nil, nil, err
	}

	if amount0.Sign() > 0 {
		balance0After := p.Token.BalanceOf(p.Token0, selfAddress(p))
		if new(big.Int).Sub(balance0After, balance0Before).Cmp(amount0) < 0 {
			return nil, nil, ErrMintPaymentShort0
		}
	}
	if amount1.Sign() > 0 {
		balance1After := p.Token.BalanceOf(p.Token1, selfAddress(p))
		if new(big.Int).Sub(balance1After, balance1Before).Cmp(amount1) < 0 {
			return nil, nil, ErrMintPaymentShort1
		}
	}

	return amount0, amount1, nil
}

// selfAddress is the pool's own address as seen by the token collaborator.
// The factory address doubles as the pool identity key in this in-memory
// model; the precompile wiring layer substitutes the real contract address.
func selfAddress(p *Pool) common.Address {
	return p.Factory
}

// Burn removes liquidity from owner's position over [tickLower, tickUpper),
// crediting the freed token amounts to tokensOwed for a later Collect.
func (p *Pool) Burn(owner common.Address, tickLower, tickUpper int32, amount *uint256.Int, now uint64) (*big.Int, *big.Int, error) {
	if err := p.lock(); err != nil {
		return nil, nil, err
	}
	defer p.unlock()

	liquidityDelta := new(big.Int).Neg(amount.ToBig())
	position, amount0, amount1, err := p.modifyPosition(owner, tickLower, tickUpper, liquidityDelta, now)
	if err != nil {
		return nil, nil, err
	}

	amount0Abs := new(big.Int).Abs(amount0)
	amount1Abs := new(big.Int).Abs(amount1)
	if amount0Abs.Sign() > 0 || amount1Abs.Sign() > 0 {
		owed0, _ := uint256.FromBig(amount0Abs)
		owed1, _ := uint256.FromBig(amount1Abs)
		position.TokensOwed0 = new(uint256.Int).Add(position.TokensOwed0, owed0)
		position.TokensOwed1 = new(uint256.Int).Add(position.TokensOwed1, owed1)
	}

	return amount0Abs, amount1Abs, nil
}

// Collect withdraws up to (amount0Requested, amount1Requested) of accrued
// tokensOwed from owner's position to recipient.
func (p *Pool) Collect(owner, recipient common.Address, tickLower, tickUpper int32, amount0Requested, amount1Requested *uint256.Int) (*uint256.Int, *uint256.Int, error) {
	if err := p.lock(); err != nil {
		return nil, nil, err
	}
	defer p.unlock()

	position := p.GetPosition(owner, tickLower, tickUpper)

	amount0 := amount0Requested
	if position.TokensOwed0.Lt(amount0) {
		amount0 = position.TokensOwed0
	}
	amount1 := amount1Requested
	if position.TokensOwed1.Lt(amount1) {
		amount1 = position.TokensOwed1
	}

	if amount0.Sign() > 0 {
		position.TokensOwed0 = new(uint256.Int).Sub(position.TokensOwed0, amount0)
		if err := p.Token.Transfer(p.Token0, recipient, amount0.ToBig()); err != nil {
			return nil, nil, err
		}
	}
	if amount1.Sign() > 0 {
		position.TokensOwed1 = new(uint256.Int).Sub(position.TokensOwed1, amount1)
		if err := p.Token.Transfer(p.Token1, recipient, amount1.ToBig()); err != nil {
			return nil, nil, err
		}
	}

	return amount0, amount1, nil
}

// swapStepState is the loop-carried accumulator for Swap's tick-walking
// iteration, grounded on original_source/factory/src/logics.rs's swap
// implementation (the SwapState/StepComputations pair).
type swapStepState struct {
	amountSpecifiedRemaining *big.Int
	amountCalculated         *big.Int
	sqrtPriceX96             *uint256.Int
	tick                     int32
	feeGrowthGlobalX128      *uint256.Int
	protocolFee              *uint256.Int
	liquidity                *uint256.Int
}

// Swap executes a swap against the pool, walking across initialized ticks
// one bitmap word at a time until amountSpecified is exhausted or the price
// reaches sqrtPriceLimitX96, then invokes SwapCallback to collect payment.
func (p *Pool) Swap(recipient common.Address, zeroForOne bool, amountSpecified *big.Int, sqrtPriceLimitX96 *uint256.Int, data []byte, now uint64) (*big.Int, *big.Int, error) {
	if err := p.lock(); err != nil {
		return nil, nil, err
	}
	defer p.unlock()

	if amountSpecified.Sign() == 0 {
		return nil, nil, ErrSwapZeroAmount
	}

	slot0Start := p.Slot0
	if zeroForOne {
		if sqrtPriceLimitX96.Cmp(slot0Start.SqrtPriceX96) >= 0 || sqrtPriceLimitX96.Cmp(ammmath.MinSqrtRatio) <= 0 {
			return nil, nil, ErrSwapLimitBad
		}
	} else {
		if sqrtPriceLimitX96.Cmp(slot0Start.SqrtPriceX96) <= 0 || sqrtPriceLimitX96.Cmp(ammmath.MaxSqrtRatio) >= 0 {
			return nil, nil, ErrSwapLimitBad
		}
	}

	exactInput := amountSpecified.Sign() > 0

	feeGrowthGlobalX128 := p.FeeGrowthGlobal0X128
	if !zeroForOne {
		feeGrowthGlobalX128 = p.FeeGrowthGlobal1X128
	}

	state := &swapStepState{
		amountSpecifiedRemaining: new(big.Int).Set(amountSpecified),
		amountCalculated:         new(big.Int),
		sqrtPriceX96:             slot0Start.SqrtPriceX96,
		tick:                     slot0Start.Tick,
		feeGrowthGlobalX128:      feeGrowthGlobalX128,
		protocolFee:              new(uint256.Int),
		liquidity:                p.Liquidity,
	}

	cache := slot0Start

	for state.amountSpecifiedRemaining.Sign() != 0 && !state.sqrtPriceX96.Eq(sqrtPriceLimitX96) {
		tickNext, initialized := p.NextInitializedTickWithinOneWord(state.tick, p.TickSpacing, zeroForOne)
		if tickNext < ammmath.MinTick {
			tickNext = ammmath.MinTick
		}
		if tickNext > ammmath.MaxTick {
			tickNext = ammmath.MaxTick
		}

		sqrtPriceNextX96, err := ammmath.GetSqrtRatioAtTick(tickNext)
		if err != nil {
			return nil, nil, err
		}

		target := sqrtPriceNextX96
		if zeroForOne {
			if sqrtPriceNextX96.Cmp(sqrtPriceLimitX96) < 0 {
				target = sqrtPriceLimitX96
			}
		} else {
			if sqrtPriceNextX96.Cmp(sqrtPriceLimitX96) > 0 {
				target = sqrtPriceLimitX96
			}
		}

		sqrtPriceNext, amountIn, amountOut, feeAmount, err := ammmath.ComputeSwapStep(state.sqrtPriceX96, target, state.liquidity, state.amountSpecifiedRemaining, uint64(p.Fee))
		if err != nil {
			return nil, nil, err
		}
		state.sqrtPriceX96 = sqrtPriceNext

		if exactInput {
			consumed := new(big.Int).Add(amountIn.ToBig(), feeAmount.ToBig())
			state.amountSpecifiedRemaining = new(big.Int).Sub(state.amountSpecifiedRemaining, consumed)
			state.amountCalculated = new(big.Int).Sub(state.amountCalculated, amountOut.ToBig())
		} else {
			state.amountSpecifiedRemaining = new(big.Int).Add(state.amountSpecifiedRemaining, amountOut.ToBig())
			state.amountCalculated = new(big.Int).Add(state.amountCalculated, new(big.Int).Add(amountIn.ToBig(), feeAmount.ToBig()))
		}

		if p.Slot0.FeeProtocol > 0 {
			var protocolNibble uint8
			if zeroForOne {
				protocolNibble = p.Slot0.FeeProtocol % 16
			} else {
				protocolNibble = p.Slot0.FeeProtocol / 16
			}
			if protocolNibble > 0 {
				delta := new(uint256.Int).Div(feeAmount, uint256.NewInt(uint64(protocolNibble)))
				feeAmount = new(uint256.Int).Sub(feeAmount, delta)
				state.protocolFee = new(uint256.Int).Add(state.protocolFee, delta)
			}
		}

		if !state.liquidity.IsZero() {
			feeGrowthDelta, err := ammmath.MulDiv(feeAmount, ammmath.Q128, state.liquidity)
			if err != nil {
				return nil, nil, err
			}
			state.feeGrowthGlobalX128 = new(uint256.Int).Add(state.feeGrowthGlobalX128, feeGrowthDelta)
		}

		if state.sqrtPriceX96.Eq(sqrtPriceNextX96) {
			if initialized {
				tickCumulative, secondsPerLiquidityCumulativeX128, oerr := p.ObserveSingle(now, 0, cache.Tick, cache.ObservationIndex, p.Liquidity, cache.ObservationCardinality)
				if oerr != nil {
					return nil, nil, oerr
				}
				var feeGrowthGlobal0, feeGrowthGlobal1 *uint256.Int
				if zeroForOne {
					feeGrowthGlobal0, feeGrowthGlobal1 = state.feeGrowthGlobalX128, p.FeeGrowthGlobal1X128
				} else {
					feeGrowthGlobal0, feeGrowthGlobal1 = p.FeeGrowthGlobal0X128, state.feeGrowthGlobalX128
				}
				liquidityNet := p.CrossTick(tickNext, feeGrowthGlobal0, feeGrowthGlobal1, secondsPerLiquidityCumulativeX128, tickCumulative, now)
				if zeroForOne {
					liquidityNet = new(big.Int).Neg(liquidityNet)
				}
				state.liquidity, err = ammmath.AddDelta(state.liquidity, liquidityNet)
				if err != nil {
					return nil, nil, err
				}
			}
			if zeroForOne {
				state.tick = tickNext - 1
			} else {
				state.tick = tickNext
			}
		} else if !state.sqrtPriceX96.Eq(cache.SqrtPriceX96) {
			tick, err := ammmath.GetTickAtSqrtRatio(state.sqrtPriceX96)
			if err != nil {
				return nil, nil, err
			}
			state.tick = tick
		}
	}

	if state.tick != slot0Start.Tick {
		observationIndex, observationCardinality := p.WriteObservation(slot0Start.ObservationIndex, now, slot0Start.Tick, p.Liquidity, slot0Start.ObservationCardinality, slot0Start.ObservationCardinalityNext)
		p.Slot0.SqrtPriceX96 = state.sqrtPriceX96
		p.Slot0.Tick = state.tick
		p.Slot0.ObservationIndex = observationIndex
		p.Slot0.ObservationCardinality = observationCardinality
	} else {
		p.Slot0.SqrtPriceX96 = state.sqrtPriceX96
	}

	if !p.Liquidity.Eq(state.liquidity) {
		p.Liquidity = state.liquidity
	}

	if zeroForOne {
		p.FeeGrowthGlobal0X128 = state.feeGrowthGlobalX128
		if state.protocolFee.Sign() > 0 {
			p.ProtocolFees0 = new(uint256.Int).Add(p.ProtocolFees0, state.protocolFee)
		}
	} else {
		p.FeeGrowthGlobal1X128 = state.feeGrowthGlobalX128
		if state.protocolFee.Sign() > 0 {
			p.ProtocolFees1 = new(uint256.Int).Add(p.ProtocolFees1, state.protocolFee)
		}
	}

	var amount0, amount1 *big.Int
	if zeroForOne == exactInput {
		amount0 = new(big.Int).Sub(amountSpecified, state.amountSpecifiedRemaining)
		amount1 = state.amountCalculated
	} else {
		amount0 = state.amountCalculated
		amount1 = new(big.Int).Sub(amountSpecified, state.amountSpecifiedRemaining)
	}

	balanceBefore := p.Token.BalanceOf(p.Token1, selfAddress(p))
	token := p.Token1
	amountOwed := amount1
	if zeroForOne {
		balanceBefore = p.Token.BalanceOf(p.Token0, selfAddress(p))
		token = p.Token0
		amountOwed = amount0
	}

	outToken, outAmount := p.Token0, amount0
	if zeroForOne {
		outToken, outAmount = p.Token1, amount1
	}
	if outAmount.Sign() < 0 {
		if err := p.Token.Transfer(outToken, recipient, new(big.Int).Neg(outAmount)); err != nil {
			return nil, nil, err
		}
	}

	if err := p.Callbacks.SwapCallback(amount0, amount1, data); err != nil {
		return nil, nil, err
	}

	if amountOwed.Sign() > 0 {
		balanceAfter := p.Token.BalanceOf(token, selfAddress(p))
		if new(big.Int).Sub(balanceAfter, balanceBefore).Cmp(amountOwed) < 0 {
			return nil, nil, ErrSwapPaymentShort
		}
	}

	return amount0, amount1, nil
}

// Flash lends amount0/amount1 of the pool's reserves and collects them back
// plus the pool's swap fee, verifying repayment via the token collaborator.
func (p *Pool) Flash(recipient common.Address, amount0, amount1 *uint256.Int, data []byte) error {
	if err := p.lock(); err != nil {
		return err
	}
	defer p.unlock()

	if p.Liquidity.IsZero() {
		return ErrFlashNoLiquidity
	}

	fee0, err := ammmath.MulDivRoundingUp(amount0, uint256.NewInt(uint64(p.Fee)), uint256.NewInt(1_000_000))
	if err != nil {
		return err
	}
	fee1, err := ammmath.MulDivRoundingUp(amount1, uint256.NewInt(uint64(p.Fee)), uint256.NewInt(1_000_000))
	if err != nil {
		return err
	}

	if amount0.Sign() > 0 {
		if err := p.Token.Transfer(p.Token0, recipient, amount0.ToBig()); err != nil {
			return err
		}
	}
	if amount1.Sign() > 0 {
		if err := p.Token.Transfer(p.Token1, recipient, amount1.ToBig()); err != nil {
			return err
		}
	}

	// Balances are read after the loan leaves the pool, so the required gain
	// of amount+fee below means the borrower returns the principal plus fee.
	balance0Before := p.Token.BalanceOf(p.Token0, selfAddress(p))
	balance1Before := p.Token.BalanceOf(p.Token1, selfAddress(p))

	if err := p.Callbacks.FlashCallback(fee0.ToBig(), fee1.ToBig(), data); err != nil {
		return err
	}

	balance0After := p.Token.BalanceOf(p.Token0, selfAddress(p))
	balance1After := p.Token.BalanceOf(p.Token1, selfAddress(p))

	owed0 := new(big.Int).Add(amount0.ToBig(), fee0.ToBig())
	owed1 := new(big.Int).Add(amount1.ToBig(), fee1.ToBig())

	if new(big.Int).Sub(balance0After, balance0Before).Cmp(owed0) < 0 {
		return ErrFlashPaymentShort0
	}
	if new(big.Int).Sub(balance1After, balance1Before).Cmp(owed1) < 0 {
		return ErrFlashPaymentShort1
	}

	paid0, _ := uint256.FromBig(new(big.Int).Sub(balance0After, balance0Before))
	paid1, _ := uint256.FromBig(new(big.Int).Sub(balance1After, balance1Before))

	if p.Slot0.FeeProtocol%16 > 0 {
		protocolDelta := new(uint256.Int).Div(new(uint256.Int).Sub(paid0, amount0), uint256.NewInt(uint64(p.Slot0.FeeProtocol%16)))
		p.ProtocolFees0 = new(uint256.Int).Add(p.ProtocolFees0, protocolDelta)
		paid0 = new(uint256.Int).Sub(paid0, protocolDelta)
	}
	if p.Slot0.FeeProtocol/16 > 0 {
		protocolDelta := new(uint256.Int).Div(new(uint256.Int).Sub(paid1, amount1), uint256.NewInt(uint64(p.Slot0.FeeProtocol/16)))
		p.ProtocolFees1 = new(uint256.Int).Add(p.ProtocolFees1, protocolDelta)
		paid1 = new(uint256.Int).Sub(paid1, protocolDelta)
	}

	paidDiff0 := new(uint256.Int).Sub(paid0, amount0)
	paidDiff1 := new(uint256.Int).Sub(paid1, amount1)
	feeGrowth0, err := ammmath.MulDiv(paidDiff0, ammmath.Q128, p.Liquidity)
	if err != nil {
		return err
	}
	feeGrowth1, err := ammmath.MulDiv(paidDiff1, ammmath.Q128, p.Liquidity)
	if err != nil {
		return err
	}
	if paid0.Cmp(amount0) > 0 {
		p.FeeGrowthGlobal0X128 = new(uint256.Int).Add(p.FeeGrowthGlobal0X128, feeGrowth0)
	}
	if paid1.Cmp(amount1) > 0 {
		p.FeeGrowthGlobal1X128 = new(uint256.Int).Add(p.FeeGrowthGlobal1X128, feeGrowth1)
	}

	return nil
}

// validFeeProtocol requires a nibble of 0 or in [4,10], per spec.md's
// protocol fee bound (at most 1/4 of the swap fee may be diverted).
func validFeeProtocol(v uint8) bool {
	return v == 0 || (v >= 4 && v <= 10)
}

// SetFeeProtocol updates the protocol fee nibbles packed into Slot0.FeeProtocol
// (token0's nibble in the low bits, token1's in the high bits). This method
// does not check the caller; the precompile's runSetFeeProtocol admits only
// the factory owner.
func (p *Pool) SetFeeProtocol(feeProtocol0, feeProtocol1 uint8) error {
	if !validFeeProtocol(feeProtocol0) || !validFeeProtocol(feeProtocol1) {
		return ErrFeeProtocolInvalid
	}
	p.Slot0.FeeProtocol = feeProtocol0 + feeProtocol1*16
	return nil
}

// CollectProtocol withdraws accrued protocol fees to recipient. This method
// does not check the caller; the precompile's runCollectProtocol admits only
// the factory owner. One wei of
// each token is deliberately left behind to keep the storage slot warm, per
// spec.md's explicit retention rule.
func (p *Pool) CollectProtocol(recipient common.Address, amount0Requested, amount1Requested *uint256.Int) (*uint256.Int, *uint256.Int, error) {
	if err := p.lock(); err != nil {
		return nil, nil, err
	}
	defer p.unlock()

	amount0 := amount0Requested
	if amount0.Cmp(p.ProtocolFees0) > 0 {
		amount0 = p.ProtocolFees0
	}
	amount1 := amount1Requested
	if amount1.Cmp(p.ProtocolFees1) > 0 {
		amount1 = p.ProtocolFees1
	}

	if amount0.Cmp(p.ProtocolFees0) == 0 && amount0.Sign() > 0 {
		amount0 = new(uint256.Int).Sub(amount0, uint256.NewInt(1))
	}
	if amount1.Cmp(p.ProtocolFees1) == 0 && amount1.Sign() > 0 {
		amount1 = new(uint256.Int).Sub(amount1, uint256.NewInt(1))
	}

	p.ProtocolFees0 = new(uint256.Int).Sub(p.ProtocolFees0, amount0)
	p.ProtocolFees1 = new(uint256.Int).Sub(p.ProtocolFees1, amount1)

	if amount0.Sign() > 0 {
		if err := p.Token.Transfer(p.Token0, recipient, amount0.ToBig()); err != nil {
			return nil, nil, err
		}
	}
	if amount1.Sign() > 0 {
		if err := p.Token.Transfer(p.Token1, recipient, amount1.ToBig()); err != nil {
			return nil, nil, err
		}
	}

	return amount0, amount1, nil
}

// IncreaseObservationCardinalityNext pre-funds additional oracle slots so a
// future swap can grow the active ring buffer without paying the full cost
// mid-swap.
func (p *Pool) IncreaseObservationCardinalityNext(observationCardinalityNext uint16) error {
	old := p.Slot0.ObservationCardinalityNext
	grown, err := p.GrowOracle(old, observationCardinalityNext)
	if err != nil {
		return err
	}
	if grown > old {
		p.Slot0.ObservationCardinalityNext = grown
	}
	return nil
}

// ObserveNow returns the TWAP accumulators for each offset in secondsAgos.
func (p *Pool) ObserveNow(now uint64, secondsAgos []uint32) ([]int64, []*uint256.Int, error) {
	return p.Observe(now, secondsAgos, p.Slot0.Tick, p.Slot0.ObservationIndex, p.Liquidity, p.Slot0.ObservationCardinality)
}

// SnapshotCumulativesInside returns the cumulative tick, seconds-per-liquidity,
// and elapsed-seconds accumulators for the range [tickLower, tickUpper) as of
// now, for external TWAP-inside computation (e.g. a liquidity mining contract).
func (p *Pool) SnapshotCumulativesInside(tickLower, tickUpper int32, now uint64) (int64, *uint256.Int, uint32, error) {
	if err := checkTicks(tickLower, tickUpper); err != nil {
		return 0, nil, 0, err
	}

	lower := p.getTick(tickLower)
	upper := p.getTick(tickUpper)
	if !lower.Initialized {
		return 0, nil, 0, ErrTickLowerUninit
	}
	if !upper.Initialized {
		return 0, nil, 0, ErrTickUpperUninit
	}

	slot0 := p.Slot0

	var tickCumulativeLower, tickCumulativeUpper int64
	var splLower, splUpper *uint256.Int
	var secondsLower, secondsUpper uint32

	if slot0.Tick >= tickLower {
		tickCumulativeLower = lower.TickCumulativeOutside
		splLower = lower.SecondsPerLiquidityOutsideX128
		secondsLower = lower.SecondsOutside
	} else {
		tc, spl, err := p.ObserveSingle(now, 0, slot0.Tick, slot0.ObservationIndex, p.Liquidity, slot0.ObservationCardinality)
		if err != nil {
			return 0, nil, 0, err
		}
		tickCumulativeLower = tc - lower.TickCumulativeOutside
		splLower = ammmath.OverflowSubU160(spl, lower.SecondsPerLiquidityOutsideX128)
		secondsLower = uint32(now) - lower.SecondsOutside
	}

	if slot0.Tick < tickUpper {
		tc, spl, err := p.ObserveSingle(now, 0, slot0.Tick, slot0.ObservationIndex, p.Liquidity, slot0.ObservationCardinality)
		if err != nil {
			return 0, nil, 0, err
		}
		tickCumulativeUpper = tc - upper.TickCumulativeOutside
		splUpper = ammmath.OverflowSubU160(spl, upper.SecondsPerLiquidityOutsideX128)
		secondsUpper = uint32(now) - upper.SecondsOutside
	} else {
		tickCumulativeUpper = upper.TickCumulativeOutside
		splUpper = upper.SecondsPerLiquidityOutsideX128
		secondsUpper = upper.SecondsOutside
	}

	tickCumulativeInside := tickCumulativeUpper - tickCumulativeLower
	splInside := ammmath.OverflowSubU160(splUpper, splLower)
	secondsInside := secondsUpper - secondsLower

	return tickCumulativeInside, splInside, secondsInside, nil
}
