// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package clmm

import (
	"math/big"

	"github.com/luxfi/geth/common"

	"github.com/luxfi/precompile/clmm/pool"
	"github.com/luxfi/precompile/clmm/router"
)

// blockContext carries the current call's timestamp to the callback
// adapters below. pool.Callbacks has no "now" parameter (the reference
// traits it mirrors don't either), so the wiring layer threads it through a
// value the dispatcher refreshes before every Run, the same way
// dex/module.go's handlers read the host's block time once per call.
type blockContext struct {
	Now uint64
}

// poolCallbackAdapter implements pool.Callbacks for one pool, settling
// mint/swap/flash payments against the shared token ledger and, for swaps,
// deferring to the position manager router so a single callback
// implementation serves both direct pool swaps and router-driven multi-hop
// ones (mirrors how a single uniswapV3SwapCallback handles both in the
// reference periphery).
type poolCallbackAdapter struct {
	ledger     *tokenLedger
	poolSelf   common.Address
	token0     common.Address
	token1     common.Address
	router     *router.PositionManagerRouter
	blockCtx   *blockContext
}

func newPoolCallbackAdapter(ledger *tokenLedger, poolSelf, token0, token1 common.Address, r *router.PositionManagerRouter, blockCtx *blockContext) *poolCallbackAdapter {
	return &poolCallbackAdapter{
		ledger:   ledger,
		poolSelf: poolSelf,
		token0:   token0,
		token1:   token1,
		router:   r,
		blockCtx: blockCtx,
	}
}

// MintCallback pulls amount0/amount1 from the payer encoded in data (set by
// whichever caller initiated the mint: router.Mint or a direct mint
// dispatch) into the pool's own ledger balance.
func (a *poolCallbackAdapter) MintCallback(amount0, amount1 *big.Int, data []byte) error {
	payer := common.BytesToAddress(data)
	if amount0.Sign() > 0 {
		if err := a.ledger.MoveFrom(a.token0, payer, a.poolSelf, amount0); err != nil {
			return err
		}
	}
	if amount1.Sign() > 0 {
		if err := a.ledger.MoveFrom(a.token1, payer, a.poolSelf, amount1); err != nil {
			return err
		}
	}
	return nil
}

// SwapCallback forwards to the router, which verifies the caller, settles
// payment through the PaymentSource this package wires to the same ledger,
// and continues the backward exact-output recursion across hops.
func (a *poolCallbackAdapter) SwapCallback(amount0Delta, amount1Delta *big.Int, data []byte) error {
	return a.router.SwapCallback(a.poolSelf, amount0Delta, amount1Delta, data, a.blockCtx.Now)
}

// FlashCallback collects the borrow fee from the payer encoded in data, on
// top of the principal the pool already transferred out before invoking
// this callback.
func (a *poolCallbackAdapter) FlashCallback(fee0, fee1 *big.Int, data []byte) error {
	payer := common.BytesToAddress(data)
	if fee0.Sign() > 0 {
		if err := a.ledger.MoveFrom(a.token0, payer, a.poolSelf, fee0); err != nil {
			return err
		}
	}
	if fee1.Sign() > 0 {
		if err := a.ledger.MoveFrom(a.token1, payer, a.poolSelf, fee1); err != nil {
			return err
		}
	}
	return nil
}

var _ pool.Callbacks = (*poolCallbackAdapter)(nil)

// routerPaymentSource implements router.PaymentSource against the shared
// token ledger, completing the settlement router.pullPayment defers to its
// PaymentSource collaborator.
type routerPaymentSource struct {
	ledger *tokenLedger
}

func (s *routerPaymentSource) Pay(token, payer, to common.Address, amount *big.Int) error {
	return s.ledger.MoveFrom(token, payer, to, amount)
}

var _ router.PaymentSource = (*routerPaymentSource)(nil)
