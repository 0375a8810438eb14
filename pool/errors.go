// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import "fmt"

// Error wraps a sentinel error with the stable u16 discriminator code that
// crosses the host boundary, mirroring original_source/common/src/error.rs's
// #[repr(u16)] Error enum (codes starting at 15000) and the teacher's
// package-level Err... variable idiom (dex/types.go).
type Error struct {
	code uint16
	err  error
}

func (e *Error) Error() string { return e.err.Error() }
func (e *Error) Unwrap() error { return e.err }
func (e *Error) Code() uint16  { return e.code }

func newError(code uint16, msg string) *Error {
	return &Error{code: code, err: fmt.Errorf("pool: %s", msg)}
}

// Arithmetic errors.
var (
	ErrLiquiditySub        = newError(15000, "liquidity subtraction underflow")
	ErrLiquidityAdd        = newError(15001, "liquidity addition overflow")
	ErrTickOutOfRange      = newError(15002, "tick out of range")
	ErrSqrtRatioOutOfRange = newError(15003, "sqrt ratio out of range")
	ErrMulDivOverflow      = newError(15004, "mul_div overflow")
	ErrConvertU160Overflow = newError(15005, "value does not fit in u160")
)

// State precondition errors.
var (
	ErrAlreadyInitialized   = newError(15010, "pool already initialized")
	ErrPoolNotInitialized   = newError(15011, "pool not initialized")
	ErrPoolLocked           = newError(15012, "pool reentrancy lock held")
	ErrTickLowerUninit      = newError(15013, "lower tick not initialized")
	ErrTickUpperUninit      = newError(15014, "upper tick not initialized")
	ErrTickOrder            = newError(15015, "tick_lower must be less than tick_upper")
	ErrTickNotAligned       = newError(15016, "tick not aligned to tick spacing")
	ErrPositionUninitialized = newError(15017, "position has no liquidity")
	ErrLiquidityOverflow    = newError(15018, "liquidity_gross exceeds max_liquidity_per_tick")
)

// Authorization errors.
var (
	ErrOnlyFactoryOwner     = newError(15020, "caller is not the factory owner")
	ErrCallbackUnauthorized = newError(15021, "callback invoked by unexpected caller")
	ErrNotApprovedForToken  = newError(15022, "caller is not approved for this position token")
)

// Parameter validity errors.
var (
	ErrSwapZeroAmount     = newError(15030, "amount_specified must be nonzero")
	ErrSwapLimitBad       = newError(15031, "sqrt_price_limit_x96 out of bounds for direction")
	ErrFeeProtocolInvalid = newError(15032, "protocol fee nibble must be 0 or in [4,10]")
	ErrFactoryFeeTooLarge = newError(15033, "fee must be less than 1_000_000")
	ErrTickSpacingInvalid = newError(15034, "tick_spacing must be in (0,16384)")
	ErrFeeTierExists      = newError(15035, "fee tier already registered")
	ErrFeeTierMissing     = newError(15036, "fee tier not registered")
	ErrPoolExists         = newError(15037, "pool already registered")
	ErrSameToken          = newError(15038, "token0 and token1 must differ")
	ErrZeroTokenAddress   = newError(15039, "token address must not be zero")
)

// Payment verification errors.
var (
	ErrMintPaymentShort0 = newError(15040, "mint callback underpaid token0")
	ErrMintPaymentShort1 = newError(15041, "mint callback underpaid token1")
	ErrSwapPaymentShort  = newError(15042, "swap callback underpaid")
	ErrFlashPaymentShort0 = newError(15043, "flash callback underpaid fee0")
	ErrFlashPaymentShort1 = newError(15044, "flash callback underpaid fee1")
	ErrFlashNoLiquidity  = newError(15045, "pool has no liquidity for flash loan")
)

// Router/business errors.
var (
	ErrDeadlineExpired          = newError(15050, "transaction deadline expired")
	ErrSlippageAmount0          = newError(15051, "amount0 exceeds slippage bound")
	ErrSlippageAmount1          = newError(15052, "amount1 exceeds slippage bound")
	ErrSlippageAmountOut        = newError(15053, "amount_out below minimum")
	ErrSlippageAmountIn         = newError(15054, "amount_in above maximum")
	ErrInvalidAmountOut         = newError(15055, "swap did not deliver the exact requested output")
	ErrPositionNotCleared       = newError(15056, "position still has liquidity or owed tokens")
	ErrInvalidTokenOrder        = newError(15057, "token0 must be less than token1")
	ErrInsufficientWrappedBalance = newError(15058, "insufficient wrapped native balance")
	ErrInvalidLiquidity         = newError(15059, "invalid liquidity amount")
)

// Oracle errors.
var (
	ErrOracleNotInitialized = newError(15060, "oracle cardinality is zero")
	ErrOracleTooOld         = newError(15061, "observation older than the oldest recorded sample")
)
