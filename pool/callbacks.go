// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import (
	"math/big"

	"github.com/luxfi/geth/common"
)

// TokenContract is the host-provided collaborator for moving token0/token1
// balances. The pool never holds balances itself; it only verifies that a
// callback-driven payment actually landed, matching original_source's
// token-transfer-by-external-call design (original_source/common/src/intf.rs)
// and the teacher's StateDB-backed balance reads (dex/pool_manager.go).
type TokenContract interface {
	BalanceOf(token, owner common.Address) *big.Int
	Transfer(token, to common.Address, amount *big.Int) error
}

// Callbacks invokes the caller-supplied callback functions required by
// mint/swap/flash so the pool can request payment after updating its own
// accounting, mirroring original_source/factory/src/callbacks.rs's
// MintCallback/SwapCallback/FlashCallback traits.
type Callbacks interface {
	// MintCallback asks the caller to pay amount0/amount1 of token0/token1,
	// forwarding opaque caller data.
	MintCallback(amount0, amount1 *big.Int, data []byte) error

	// SwapCallback asks the caller to pay whichever of amount0Delta/
	// amount1Delta is positive (the pool's receivable), forwarding data.
	SwapCallback(amount0Delta, amount1Delta *big.Int, data []byte) error

	// FlashCallback asks the caller to repay the borrowed amounts plus fees.
	FlashCallback(fee0, fee1 *big.Int, data []byte) error
}
