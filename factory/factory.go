// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package factory implements the pool registry: the fee-tier -> tick-spacing
// table, the (token0, token1, fee) -> pool lookup, and the owner role that
// gates enable_fee_amount and the pools' protocol-fee controls, mirroring
// original_source/factory/src/factory/fac.rs.
package factory

import (
	"fmt"

	"github.com/luxfi/geth/common"
	"github.com/zeebo/blake3"

	"github.com/luxfi/precompile/clmm/pool"
)

// Error wraps a sentinel error with a stable u16 discriminator, matching the
// pool package's Error/newError idiom (pool/errors.go).
type Error struct {
	code uint16
	err  error
}

func (e *Error) Error() string { return e.err.Error() }
func (e *Error) Unwrap() error { return e.err }
func (e *Error) Code() uint16  { return e.code }

func newError(code uint16, msg string) *Error {
	return &Error{code: code, err: fmt.Errorf("factory: %s", msg)}
}

var (
	ErrOnlyOwner          = newError(15020, "caller is not the factory owner")
	ErrFactoryFeeTooLarge = newError(15033, "fee must be less than 1_000_000")
	ErrTickSpacingInvalid = newError(15034, "tick_spacing must be in (0,16384)")
	ErrFeeTierExists      = newError(15035, "fee tier already registered")
	ErrFeeTierMissing     = newError(15036, "fee tier not registered")
	ErrPoolExists         = newError(15037, "pool already registered")
	ErrSameToken          = newError(15038, "token0 and token1 must differ")
	ErrZeroTokenAddress   = newError(15039, "token address must not be zero")
)

// PoolKey derives the registry key for a (token0, token1, fee) tuple by
// hashing the two (already order-normalized) addresses and the fee with
// blake3, following the teacher's blake3 storage-key convention.
func PoolKey(token0, token1 common.Address, fee uint32) [32]byte {
	h := blake3.New()
	h.Write(token0.Bytes())
	h.Write(token1.Bytes())
	var feeBuf [4]byte
	feeBuf[0] = byte(fee >> 24)
	feeBuf[1] = byte(fee >> 16)
	feeBuf[2] = byte(fee >> 8)
	feeBuf[3] = byte(fee)
	h.Write(feeBuf[:])
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// PoolFactory is the registry of deployed pools and enabled fee tiers. One
// PoolFactory corresponds to the single Factory contract instance; it holds
// pools in memory the same way pool.Pool holds its own ticks and positions,
// leaving the precompile wiring layer to bridge to the host StateDB.
type PoolFactory struct {
	Owner common.Address

	feeAmountTickSpacing map[uint32]int32
	pools                map[[32]byte]*pool.Pool
}

// NewPoolFactory constructs a factory with the three default fee tiers
// seeded (0.05%/10, 0.3%/60, 1%/200), matching fac.rs::initialize.
func NewPoolFactory(owner common.Address) *PoolFactory {
	f := &PoolFactory{
		Owner:                owner,
		feeAmountTickSpacing: make(map[uint32]int32),
		pools:                make(map[[32]byte]*pool.Pool),
	}
	f.feeAmountTickSpacing[500] = 10
	f.feeAmountTickSpacing[3000] = 60
	f.feeAmountTickSpacing[10000] = 200
	return f
}

// TickSpacingForFee returns the tick spacing registered for fee, or
// (0, false) if that fee tier has not been enabled.
func (f *PoolFactory) TickSpacingForFee(fee uint32) (int32, bool) {
	ts, ok := f.feeAmountTickSpacing[fee]
	return ts, ok
}

// EnableFeeAmount registers a new fee tier, owner-gated.
func (f *PoolFactory) EnableFeeAmount(caller common.Address, fee uint32, tickSpacing int32) error {
	if caller != f.Owner {
		return ErrOnlyOwner
	}
	if fee >= 1_000_000 {
		return ErrFactoryFeeTooLarge
	}
	if tickSpacing <= 0 || tickSpacing >= 16384 {
		return ErrTickSpacingInvalid
	}
	if _, exists := f.feeAmountTickSpacing[fee]; exists {
		return ErrFeeTierExists
	}
	f.feeAmountTickSpacing[fee] = tickSpacing
	return nil
}

// GetPoolAddress returns the pool registered for (token0, token1, fee), or
// nil if none has been created (tokens are normalized to ascending order
// first, matching the key computed by CreatePool).
func (f *PoolFactory) GetPoolAddress(token0, token1 common.Address, fee uint32) *pool.Pool {
	if token1.Cmp(token0) < 0 {
		token0, token1 = token1, token0
	}
	return f.pools[PoolKey(token0, token1, fee)]
}

// CreatePool deploys and registers a new pool for (token0, token1, fee),
// normalizing token order so that token0 < token1. callbacks/token wire the
// new pool to its host-provided payment collaborators (see pool.Callbacks,
// pool.TokenContract).
func (f *PoolFactory) CreatePool(factoryAddr, token0, token1 common.Address, fee uint32, callbacks pool.Callbacks, token pool.TokenContract) (*pool.Pool, error) {
	if token0 == token1 {
		return nil, ErrSameToken
	}
	if token1.Cmp(token0) < 0 {
		token0, token1 = token1, token0
	}
	if token0 == (common.Address{}) {
		return nil, ErrZeroTokenAddress
	}

	tickSpacing, ok := f.TickSpacingForFee(fee)
	if !ok {
		return nil, ErrFeeTierMissing
	}

	key := PoolKey(token0, token1, fee)
	if _, exists := f.pools[key]; exists {
		return nil, ErrPoolExists
	}

	p := pool.NewPool(factoryAddr, token0, token1, fee, tickSpacing, callbacks, token)
	f.pools[key] = p
	return p, nil
}

// SetOwner transfers the owner role, callable only by the current owner.
func (f *PoolFactory) SetOwner(caller, newOwner common.Address) error {
	if caller != f.Owner {
		return ErrOnlyOwner
	}
	f.Owner = newOwner
	return nil
}
