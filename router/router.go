// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package router

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"

	"github.com/luxfi/precompile/clmm/ammmath"
	"github.com/luxfi/precompile/clmm/factory"
	"github.com/luxfi/precompile/clmm/pool"
)

// Error wraps a sentinel error with a stable u16 discriminator, matching the
// pool and factory packages' Error/newError idiom.
type Error struct {
	code uint16
	err  error
}

func (e *Error) Error() string { return e.err.Error() }
func (e *Error) Unwrap() error { return e.err }
func (e *Error) Code() uint16  { return e.code }

func newError(code uint16, msg string) *Error {
	return &Error{code: code, err: fmt.Errorf("router: %s", msg)}
}

var (
	ErrDeadlineExpired           = newError(15050, "transaction deadline expired")
	ErrSlippageAmount0           = newError(15051, "amount0 exceeds slippage bound")
	ErrSlippageAmount1           = newError(15052, "amount1 exceeds slippage bound")
	ErrSlippageAmountOut         = newError(15053, "amount_out below minimum")
	ErrSlippageAmountIn          = newError(15054, "amount_in above maximum")
	ErrInvalidAmountOut          = newError(15055, "swap did not deliver the exact requested output")
	ErrPositionNotCleared        = newError(15056, "position still has liquidity or owed tokens")
	ErrInvalidTokenOrder         = newError(15057, "token0 must be less than token1")
	ErrInsufficientWrappedBalance = newError(15058, "insufficient wrapped native balance")
	ErrInvalidLiquidity          = newError(15059, "invalid liquidity amount")
	ErrCallbackUnauthorized      = newError(15021, "callback invoked by unexpected caller")
	ErrNotApprovedForToken       = newError(15022, "caller is not approved for this position token")
)

// defaultAmountInCached is the sentinel the staging slot is reset to between
// exact-output calls, matching the reference's DEFAULT_AMOUNT_IN_CACHED
// (the maximum u256, distinguishable from any real amount).
var defaultAmountInCached = new(uint256.Int).Not(uint256.NewInt(0))

// Position is the NFT-wrapped record backing one minted token id: the
// underlying (pool, tickLower, tickUpper) plus the owner-cached liquidity
// and owed-token snapshot last synced from the pool itself.
type Position struct {
	Owner       common.Address
	Token0      common.Address
	Token1      common.Address
	Fee         uint32
	TickLower   int32
	TickUpper   int32
	Liquidity   *uint256.Int
	FeeGrowthInside0LastX128 *uint256.Int
	FeeGrowthInside1LastX128 *uint256.Int
	TokensOwed0 *uint256.Int
	TokensOwed1 *uint256.Int
}

// MintParams are the user-facing arguments to Mint.
type MintParams struct {
	Token0, Token1         common.Address
	Fee                    uint32
	TickLower, TickUpper   int32
	Amount0Desired, Amount1Desired *uint256.Int
	Amount0Min, Amount1Min *uint256.Int
	Recipient              common.Address
	Deadline               uint64
}

// ExactInputSingleParams are the arguments to ExactInputSingle.
type ExactInputSingleParams struct {
	TokenIn, TokenOut  common.Address
	Fee                uint32
	Recipient          common.Address
	Deadline           uint64
	AmountIn           *uint256.Int
	AmountOutMinimum   *uint256.Int
	SqrtPriceLimitX96  *uint256.Int
}

// ExactOutputSingleParams are the arguments to ExactOutputSingle.
type ExactOutputSingleParams struct {
	TokenIn, TokenOut  common.Address
	Fee                uint32
	Recipient          common.Address
	Deadline           uint64
	AmountOut          *uint256.Int
	AmountInMaximum    *uint256.Int
	SqrtPriceLimitX96  *uint256.Int
}

// ExactInputParams are the arguments to the multi-hop ExactInput.
type ExactInputParams struct {
	Path             []byte
	Recipient        common.Address
	Deadline         uint64
	AmountIn         *uint256.Int
	AmountOutMinimum *uint256.Int
}

// ExactOutputParams are the arguments to the multi-hop ExactOutput.
type ExactOutputParams struct {
	Path            []byte
	Recipient       common.Address
	Deadline        uint64
	AmountOut       *uint256.Int
	AmountInMaximum *uint256.Int
}

// PaymentSource actually moves tokenIn from payer to the pool that invoked
// the swap callback, completing the settlement that pullPayment defers to
// it. The wiring layer supplies the implementation (a ledger backed by host
// state); package router stays agnostic of how balances are held, matching
// original_source/common/src/erc20_helpers.rs's transfer_from being a call
// out to whatever token contract the caller names.
type PaymentSource interface {
	Pay(token, payer, to common.Address, amount *big.Int) error
}

// PositionManagerRouter wraps pool positions as non-fungible tokens and
// provides the multi-hop exact-in/exact-out swap entry points, grounded on
// original_source/router/router/src/periphery/swap_router.rs and
// original_source/factory/src/position.rs (the NFT side is this spec's
// supplemented feature; the reference keeps positions pool-side only).
type PositionManagerRouter struct {
	SelfAddress common.Address
	Factory     *factory.PoolFactory
	Payments    PaymentSource

	positions map[uint64]*Position
	approvals map[uint64]common.Address
	nextID    uint64

	amountInCached *uint256.Int
}

// NewPositionManagerRouter constructs a router bound to a factory.
func NewPositionManagerRouter(selfAddress common.Address, fac *factory.PoolFactory) *PositionManagerRouter {
	return &PositionManagerRouter{
		SelfAddress:    selfAddress,
		Factory:        fac,
		positions:      make(map[uint64]*Position),
		approvals:      make(map[uint64]common.Address),
		amountInCached: new(uint256.Int).Set(defaultAmountInCached),
	}
}

func checkDeadline(deadline, now uint64) error {
	if now > deadline {
		return ErrDeadlineExpired
	}
	return nil
}

func (r *PositionManagerRouter) poolFor(token0, token1 common.Address, fee uint32) (*pool.Pool, error) {
	p := r.Factory.GetPoolAddress(token0, token1, fee)
	if p == nil {
		return nil, factory.ErrFeeTierMissing
	}
	return p, nil
}

// Mint creates a new position NFT, depositing liquidity computed from the
// desired token amounts at the pool's current price.
func (r *PositionManagerRouter) Mint(caller common.Address, params MintParams, now uint64) (uint64, *uint256.Int, *big.Int, *big.Int, error) {
	if err := checkDeadline(params.Deadline, now); err != nil {
		return 0, nil, nil, nil, err
	}

	p, err := r.poolFor(params.Token0, params.Token1, params.Fee)
	if err != nil {
		return 0, nil, nil, nil, err
	}

	sqrtRatioLower, err := ammmath.GetSqrtRatioAtTick(params.TickLower)
	if err != nil {
		return 0, nil, nil, nil, err
	}
	sqrtRatioUpper, err := ammmath.GetSqrtRatioAtTick(params.TickUpper)
	if err != nil {
		return 0, nil, nil, nil, err
	}

	liquidity, err := GetLiquidityForAmounts(p.Slot0.SqrtPriceX96, sqrtRatioLower, sqrtRatioUpper, params.Amount0Desired, params.Amount1Desired)
	if err != nil {
		return 0, nil, nil, nil, err
	}
	if liquidity.IsZero() {
		return 0, nil, nil, nil, ErrInvalidLiquidity
	}

	data := mintCallbackData{payer: caller}
	amount0, amount1, err := p.Mint(r.SelfAddress, params.TickLower, params.TickUpper, liquidity, data.encode(), now)
	if err != nil {
		return 0, nil, nil, nil, err
	}
	if amount0.Cmp(params.Amount0Min.ToBig()) < 0 {
		return 0, nil, nil, nil, ErrSlippageAmount0
	}
	if amount1.Cmp(params.Amount1Min.ToBig()) < 0 {
		return 0, nil, nil, nil, ErrSlippageAmount1
	}

	recipient := params.Recipient
	if recipient == (common.Address{}) {
		recipient = caller
	}

	r.nextID++
	id := r.nextID
	feeGrowthInside0, feeGrowthInside1 := p.GetFeeGrowthInside(params.TickLower, params.TickUpper, p.Slot0.Tick)
	r.positions[id] = &Position{
		Owner:                    recipient,
		Token0:                   params.Token0,
		Token1:                   params.Token1,
		Fee:                      params.Fee,
		TickLower:                params.TickLower,
		TickUpper:                params.TickUpper,
		Liquidity:                liquidity,
		FeeGrowthInside0LastX128: feeGrowthInside0,
		FeeGrowthInside1LastX128: feeGrowthInside1,
		TokensOwed0:              new(uint256.Int),
		TokensOwed1:              new(uint256.Int),
	}

	return id, liquidity, amount0, amount1, nil
}

// mintCallbackData is the router's own payload for MintCallback, distinct
// from SwapCallbackData: it only needs to remember who pays.
type mintCallbackData struct {
	payer common.Address
}

func (d mintCallbackData) encode() []byte { return d.payer.Bytes() }

func decodeMintCallbackPayer(data []byte) common.Address {
	return common.BytesToAddress(data)
}

// requireApproved checks caller is the position's owner or an approved
// operator for tokenID.
func (r *PositionManagerRouter) requireApproved(caller common.Address, tokenID uint64) (*Position, error) {
	pos, ok := r.positions[tokenID]
	if !ok {
		return nil, ErrNotApprovedForToken
	}
	if pos.Owner != caller && r.approvals[tokenID] != caller {
		return nil, ErrNotApprovedForToken
	}
	return pos, nil
}

// Approve designates operator as allowed to manage tokenID on the owner's
// behalf, ERC-721-style.
func (r *PositionManagerRouter) Approve(caller common.Address, tokenID uint64, operator common.Address) error {
	pos, ok := r.positions[tokenID]
	if !ok {
		return ErrNotApprovedForToken
	}
	if pos.Owner != caller {
		return ErrNotApprovedForToken
	}
	r.approvals[tokenID] = operator
	return nil
}

// IncreaseLiquidity adds to an existing position's liquidity.
func (r *PositionManagerRouter) IncreaseLiquidity(caller common.Address, tokenID uint64, amount0Desired, amount1Desired, amount0Min, amount1Min *uint256.Int, deadline, now uint64) (*uint256.Int, *big.Int, *big.Int, error) {
	if err := checkDeadline(deadline, now); err != nil {
		return nil, nil, nil, err
	}
	pos, err := r.requireApproved(caller, tokenID)
	if err != nil {
		return nil, nil, nil, err
	}

	p, err := r.poolFor(pos.Token0, pos.Token1, pos.Fee)
	if err != nil {
		return nil, nil, nil, err
	}

	sqrtRatioLower, err := ammmath.GetSqrtRatioAtTick(pos.TickLower)
	if err != nil {
		return nil, nil, nil, err
	}
	sqrtRatioUpper, err := ammmath.GetSqrtRatioAtTick(pos.TickUpper)
	if err != nil {
		return nil, nil, nil, err
	}
	liquidityDelta, err := GetLiquidityForAmounts(p.Slot0.SqrtPriceX96, sqrtRatioLower, sqrtRatioUpper, amount0Desired, amount1Desired)
	if err != nil {
		return nil, nil, nil, err
	}

	data := mintCallbackData{payer: caller}
	amount0, amount1, err := p.Mint(r.SelfAddress, pos.TickLower, pos.TickUpper, liquidityDelta, data.encode(), now)
	if err != nil {
		return nil, nil, nil, err
	}
	if amount0.Cmp(amount0Min.ToBig()) < 0 {
		return nil, nil, nil, ErrSlippageAmount0
	}
	if amount1.Cmp(amount1Min.ToBig()) < 0 {
		return nil, nil, nil, ErrSlippageAmount1
	}

	feeGrowthInside0, feeGrowthInside1 := p.GetFeeGrowthInside(pos.TickLower, pos.TickUpper, p.Slot0.Tick)
	pos.Liquidity = new(uint256.Int).Add(pos.Liquidity, liquidityDelta)
	pos.FeeGrowthInside0LastX128 = feeGrowthInside0
	pos.FeeGrowthInside1LastX128 = feeGrowthInside1

	return liquidityDelta, amount0, amount1, nil
}

// DecreaseLiquidity burns liquidity from a position, crediting the freed
// tokens to the position's owed balances for a later Collect.
func (r *PositionManagerRouter) DecreaseLiquidity(caller common.Address, tokenID uint64, liquidity *uint256.Int, amount0Min, amount1Min *uint256.Int, deadline, now uint64) (*big.Int, *big.Int, error) {
	if err := checkDeadline(deadline, now); err != nil {
		return nil, nil, err
	}
	pos, err := r.requireApproved(caller, tokenID)
	if err != nil {
		return nil, nil, err
	}
	if liquidity.Sign() <= 0 || liquidity.Cmp(pos.Liquidity) > 0 {
		return nil, nil, ErrInvalidLiquidity
	}

	p, err := r.poolFor(pos.Token0, pos.Token1, pos.Fee)
	if err != nil {
		return nil, nil, err
	}

	amount0, amount1, err := p.Burn(r.SelfAddress, pos.TickLower, pos.TickUpper, liquidity, now)
	if err != nil {
		return nil, nil, err
	}
	if amount0.Cmp(amount0Min.ToBig()) < 0 {
		return nil, nil, ErrSlippageAmount0
	}
	if amount1.Cmp(amount1Min.ToBig()) < 0 {
		return nil, nil, ErrSlippageAmount1
	}

	feeGrowthInside0, feeGrowthInside1 := p.GetFeeGrowthInside(pos.TickLower, pos.TickUpper, p.Slot0.Tick)
	pos.Liquidity = new(uint256.Int).Sub(pos.Liquidity, liquidity)
	pos.FeeGrowthInside0LastX128 = feeGrowthInside0
	pos.FeeGrowthInside1LastX128 = feeGrowthInside1

	owed0, _ := uint256.FromBig(amount0)
	owed1, _ := uint256.FromBig(amount1)
	pos.TokensOwed0 = new(uint256.Int).Add(pos.TokensOwed0, owed0)
	pos.TokensOwed1 = new(uint256.Int).Add(pos.TokensOwed1, owed1)

	return amount0, amount1, nil
}

// Collect withdraws owed tokens from a position to recipient.
func (r *PositionManagerRouter) Collect(caller common.Address, tokenID uint64, recipient common.Address, amount0Max, amount1Max *uint256.Int, now uint64) (*uint256.Int, *uint256.Int, error) {
	pos, err := r.requireApproved(caller, tokenID)
	if err != nil {
		return nil, nil, err
	}

	p, err := r.poolFor(pos.Token0, pos.Token1, pos.Fee)
	if err != nil {
		return nil, nil, err
	}

	if recipient == (common.Address{}) {
		recipient = r.SelfAddress
	}

	if !pos.Liquidity.IsZero() {
		if _, _, err := p.Burn(r.SelfAddress, pos.TickLower, pos.TickUpper, new(uint256.Int), now); err != nil {
			return nil, nil, err
		}
	}

	amount0, amount1, err := p.Collect(r.SelfAddress, recipient, pos.TickLower, pos.TickUpper, amount0Max, amount1Max)
	if err != nil {
		return nil, nil, err
	}

	pos.TokensOwed0 = new(uint256.Int).Sub(pos.TokensOwed0, amount0)
	pos.TokensOwed1 = new(uint256.Int).Sub(pos.TokensOwed1, amount1)

	return amount0, amount1, nil
}

// Burn destroys a fully-cleared position NFT (zero liquidity, zero owed).
func (r *PositionManagerRouter) Burn(caller common.Address, tokenID uint64) error {
	pos, err := r.requireApproved(caller, tokenID)
	if err != nil {
		return err
	}
	if !pos.Liquidity.IsZero() || !pos.TokensOwed0.IsZero() || !pos.TokensOwed1.IsZero() {
		return ErrPositionNotCleared
	}
	delete(r.positions, tokenID)
	delete(r.approvals, tokenID)
	return nil
}

// SwapCallback verifies the caller is the pool implied by the embedded path
// and pulls payment from the recorded payer, continuing the multi-hop
// exact-output recursion backward when more hops remain.
func (r *PositionManagerRouter) SwapCallback(caller common.Address, amount0Delta, amount1Delta *big.Int, data []byte, now uint64) error {
	if amount0Delta.Sign() <= 0 && amount1Delta.Sign() <= 0 {
		return ErrInvalidAmountOut
	}

	cb, err := decodeSwapCallbackData(data)
	if err != nil {
		return err
	}

	tokenIn, tokenOut, fee, err := DecodeFirstPool(cb.Path)
	if err != nil {
		return err
	}
	if err := r.verifyCallback(caller, tokenIn, tokenOut, fee); err != nil {
		return err
	}

	var exactInput bool
	var amountToPay *big.Int
	if amount0Delta.Sign() > 0 {
		exactInput = IsTokenSorted(tokenIn, tokenOut)
		amountToPay = amount0Delta
	} else {
		exactInput = IsTokenSorted(tokenOut, tokenIn)
		amountToPay = amount1Delta
	}

	if exactInput {
		return r.pullPayment(tokenIn, cb.Payer, caller, amountToPay)
	}

	if HasMultiplePools(cb.Path) {
		remaining := SkipToken(cb.Path)
		return r.exactOutputInternalStep(caller, amountToPay, remaining, cb.Payer, now)
	}

	amountInCached, _ := uint256.FromBig(amountToPay)
	r.amountInCached = amountInCached
	return r.pullPayment(tokenOut, cb.Payer, caller, amountToPay)
}

func (r *PositionManagerRouter) pullPayment(token, payer, to common.Address, amount *big.Int) error {
	if r.Payments == nil {
		return nil
	}
	return r.Payments.Pay(token, payer, to, amount)
}

func (r *PositionManagerRouter) verifyCallback(caller, tokenIn, tokenOut common.Address, fee uint32) error {
	p, err := r.poolFor(tokenIn, tokenOut, fee)
	if err != nil {
		return err
	}
	if caller != p.Factory {
		return ErrCallbackUnauthorized
	}
	return nil
}

type swapCallbackData struct {
	Path  []byte
	Payer common.Address
}

func decodeSwapCallbackData(data []byte) (swapCallbackData, error) {
	if len(data) < common.AddressLength {
		return swapCallbackData{}, ErrCallbackUnauthorized
	}
	payer := common.BytesToAddress(data[len(data)-common.AddressLength:])
	path := data[:len(data)-common.AddressLength]
	return swapCallbackData{Path: path, Payer: payer}, nil
}

func (d swapCallbackData) encode() []byte {
	return append(append([]byte{}, d.Path...), d.Payer.Bytes()...)
}

// exactInputInternal performs a single hop of an exact-input swap.
func (r *PositionManagerRouter) exactInputInternal(caller common.Address, amountIn *uint256.Int, recipient common.Address, sqrtPriceLimitX96 *uint256.Int, cb swapCallbackData, now uint64) (*uint256.Int, error) {
	if recipient == (common.Address{}) {
		recipient = r.SelfAddress
	}

	tokenIn, tokenOut, fee, err := DecodeFirstPool(cb.Path)
	if err != nil {
		return nil, err
	}
	zeroForOne := IsTokenSorted(tokenIn, tokenOut)

	p, err := r.poolFor(tokenIn, tokenOut, fee)
	if err != nil {
		return nil, err
	}

	limit := sqrtPriceLimitX96
	if limit.IsZero() {
		if zeroForOne {
			limit = new(uint256.Int).AddUint64(ammmath.MinSqrtRatio, 1)
		} else {
			limit = new(uint256.Int).Sub(ammmath.MaxSqrtRatio, uint256.NewInt(1))
		}
	}

	amount0, amount1, err := p.Swap(recipient, zeroForOne, amountIn.ToBig(), limit, cb.encode(), now)
	if err != nil {
		return nil, err
	}

	var out *big.Int
	if zeroForOne {
		out = new(big.Int).Neg(amount1)
	} else {
		out = new(big.Int).Neg(amount0)
	}
	result, overflow := uint256.FromBig(out)
	if overflow {
		return nil, ErrInvalidAmountOut
	}
	return result, nil
}

// ExactInputSingle swaps exactly AmountIn of TokenIn for at least
// AmountOutMinimum of TokenOut through a single pool.
func (r *PositionManagerRouter) ExactInputSingle(caller common.Address, params ExactInputSingleParams, now uint64) (*uint256.Int, error) {
	if err := checkDeadline(params.Deadline, now); err != nil {
		return nil, err
	}
	path, err := EncodePath([]common.Address{params.TokenIn, params.TokenOut}, []uint32{params.Fee})
	if err != nil {
		return nil, err
	}
	amountOut, err := r.exactInputInternal(caller, params.AmountIn, params.Recipient, params.SqrtPriceLimitX96, swapCallbackData{Path: path, Payer: caller}, now)
	if err != nil {
		return nil, err
	}
	if amountOut.Cmp(params.AmountOutMinimum) < 0 {
		return nil, ErrSlippageAmountOut
	}
	return amountOut, nil
}

// ExactInput swaps exactly AmountIn along a multi-hop Path, looping hop by
// hop: intermediate recipients are the router itself (custody), and the
// payer for each subsequent hop becomes the router.
func (r *PositionManagerRouter) ExactInput(caller common.Address, params ExactInputParams, now uint64) (*uint256.Int, error) {
	if err := checkDeadline(params.Deadline, now); err != nil {
		return nil, err
	}

	payer := caller
	path := params.Path
	amountIn := params.AmountIn
	var amountOut *uint256.Int

	for {
		more := HasMultiplePools(path)
		recipient := params.Recipient
		if more {
			recipient = r.SelfAddress
		}

		out, err := r.exactInputInternal(caller, amountIn, recipient, new(uint256.Int), swapCallbackData{Path: GetFirstPool(path), Payer: payer}, now)
		if err != nil {
			return nil, err
		}
		amountIn = out

		if !more {
			amountOut = out
			break
		}
		payer = r.SelfAddress
		path = SkipToken(path)
	}

	if amountOut.Cmp(params.AmountOutMinimum) < 0 {
		return nil, ErrSlippageAmountOut
	}
	return amountOut, nil
}

// exactOutputInternal performs a single hop of an exact-output swap.
func (r *PositionManagerRouter) exactOutputInternal(caller common.Address, amountOut *uint256.Int, recipient common.Address, sqrtPriceLimitX96 *uint256.Int, cb swapCallbackData, now uint64) (*uint256.Int, error) {
	if recipient == (common.Address{}) {
		recipient = r.SelfAddress
	}

	tokenOut, tokenIn, fee, err := DecodeFirstPool(cb.Path)
	if err != nil {
		return nil, err
	}
	zeroForOne := IsTokenSorted(tokenIn, tokenOut)

	p, err := r.poolFor(tokenIn, tokenOut, fee)
	if err != nil {
		return nil, err
	}

	limitIsZero := sqrtPriceLimitX96.IsZero()
	limit := sqrtPriceLimitX96
	if limitIsZero {
		if zeroForOne {
			limit = new(uint256.Int).AddUint64(ammmath.MinSqrtRatio, 1)
		} else {
			limit = new(uint256.Int).Sub(ammmath.MaxSqrtRatio, uint256.NewInt(1))
		}
	}

	negAmountOut := new(big.Int).Neg(amountOut.ToBig())
	amount0, amount1, err := p.Swap(recipient, zeroForOne, negAmountOut, limit, cb.encode(), now)
	if err != nil {
		return nil, err
	}

	var amountIn, amountOutReceived *big.Int
	if zeroForOne {
		amountIn, amountOutReceived = amount0, new(big.Int).Neg(amount1)
	} else {
		amountIn, amountOutReceived = amount1, new(big.Int).Neg(amount0)
	}

	if limitIsZero && amountOutReceived.Cmp(amountOut.ToBig()) != 0 {
		return nil, ErrInvalidAmountOut
	}

	result, overflow := uint256.FromBig(amountIn)
	if overflow {
		return nil, ErrInvalidAmountOut
	}
	return result, nil
}

// exactOutputInternalStep is invoked from inside SwapCallback when a
// multi-hop exact-output swap has more hops remaining: it executes the
// previous leg's swap so payment flows backward from the last hop to the
// first, completing the recursion the reference implementation leaves as a
// comment ("call exact output internal").
func (r *PositionManagerRouter) exactOutputInternalStep(caller common.Address, amountOut *uint256.Int, path []byte, payer common.Address, now uint64) error {
	_, err := r.exactOutputInternal(caller, amountOut, caller, new(uint256.Int), swapCallbackData{Path: path, Payer: payer}, now)
	return err
}

// ExactOutputSingle swaps at most AmountInMaximum of TokenIn for exactly
// AmountOut of TokenOut through a single pool.
func (r *PositionManagerRouter) ExactOutputSingle(caller common.Address, params ExactOutputSingleParams, now uint64) (*uint256.Int, error) {
	if err := checkDeadline(params.Deadline, now); err != nil {
		return nil, err
	}
	path, err := EncodePath([]common.Address{params.TokenOut, params.TokenIn}, []uint32{params.Fee})
	if err != nil {
		return nil, err
	}
	amountIn, err := r.exactOutputInternal(caller, params.AmountOut, params.Recipient, params.SqrtPriceLimitX96, swapCallbackData{Path: path, Payer: caller}, now)
	if err != nil {
		return nil, err
	}
	if amountIn.Cmp(params.AmountInMaximum) > 0 {
		return nil, ErrSlippageAmountIn
	}
	r.amountInCached = new(uint256.Int).Set(defaultAmountInCached)
	return amountIn, nil
}

// ExactOutput swaps at most AmountInMaximum along a multi-hop Path for
// exactly AmountOut of the final token, driving the recursion started in
// SwapCallback and reading back the cached first-leg input amount.
func (r *PositionManagerRouter) ExactOutput(caller common.Address, params ExactOutputParams, now uint64) (*uint256.Int, error) {
	if err := checkDeadline(params.Deadline, now); err != nil {
		return nil, err
	}

	reversed, err := ReversePath(params.Path)
	if err != nil {
		return nil, err
	}

	if _, err := r.exactOutputInternal(caller, params.AmountOut, params.Recipient, new(uint256.Int), swapCallbackData{Path: reversed, Payer: caller}, now); err != nil {
		return nil, err
	}

	amountIn := r.amountInCached
	if amountIn.Cmp(params.AmountInMaximum) > 0 {
		return nil, ErrSlippageAmountIn
	}
	r.amountInCached = new(uint256.Int).Set(defaultAmountInCached)
	return amountIn, nil
}
