// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package clmm

import (
	"github.com/luxfi/geth/common"

	"github.com/luxfi/precompile/clmm/factory"
	"github.com/luxfi/precompile/clmm/pool"
	"github.com/luxfi/precompile/clmm/router"
)

// Manager is the precompile-wide singleton binding the in-memory
// factory/pool/router state to the host StateDB, the way dex/module.go's
// DEXPrecompile holds one *PoolManager per chain. One Manager is created per
// precompile instance and reused across calls; only the token ledger's
// reads/writes actually touch the host state passed into each Run.
type Manager struct {
	SelfAddress common.Address

	Factory *factory.PoolFactory
	Router  *router.PositionManagerRouter

	ledger   *tokenLedger
	blockCtx *blockContext
}

// NewManager constructs a Manager bound to selfAddress (this precompile
// contract's own address) and owner (the factory's initial owner).
func NewManager(selfAddress, owner common.Address) *Manager {
	fac := factory.NewPoolFactory(owner)
	r := router.NewPositionManagerRouter(selfAddress, fac)
	ledger := newTokenLedger(selfAddress, nil)
	r.Payments = &routerPaymentSource{ledger: ledger}
	return &Manager{
		SelfAddress: selfAddress,
		Factory:     fac,
		Router:      r,
		ledger:      ledger,
		blockCtx:    &blockContext{},
	}
}

// bindDB attaches this call's StateDB and timestamp, returning the ledger
// this call's token movements settle against. Every Run dispatch rebinds
// this before touching Factory/Router/Pool state, since the host supplies a
// fresh StateDB per call but Manager itself, its Factory, Router and the
// pools they hold are long-lived across calls.
func (m *Manager) bindDB(db StateDB, now uint64) *tokenLedger {
	m.blockCtx.Now = now
	m.ledger.rebind(db)
	return m.ledger
}

// poolAddress derives a deterministic pseudo-address for the pool keyed by
// (token0, token1, fee), used as Pool.Immutables.Factory (selfAddress(p) in
// package pool) so each pool's ledgered balance is kept separate from every
// other pool's and from the factory/router themselves.
func poolAddress(token0, token1 common.Address, fee uint32) common.Address {
	key := factory.PoolKey(token0, token1, fee)
	return common.BytesToAddress(key[:])
}

// CreatePool deploys a new pool for (token0, token1, fee) and wires its
// Callbacks/TokenContract collaborators to this call's ledger and the
// shared router, so subsequent mint/swap/flash calls on it settle real
// token movement.
func (m *Manager) CreatePool(db StateDB, now uint64, token0, token1 common.Address, fee uint32) (*pool.Pool, error) {
	ledger := m.bindDB(db, now)

	if token1.Cmp(token0) < 0 {
		token0, token1 = token1, token0
	}
	addr := poolAddress(token0, token1, fee)

	adapter := newPoolCallbackAdapter(ledger, addr, token0, token1, m.Router, m.blockCtx)
	view := &poolTokenView{ledger: ledger, poolAddr: addr}
	return m.Factory.CreatePool(addr, token0, token1, fee, adapter, view)
}

// Pool looks up the pool for (token0, token1, fee), rebinding its ledger to
// this call's StateDB/timestamp so the upcoming operation settles correctly.
func (m *Manager) Pool(db StateDB, now uint64, token0, token1 common.Address, fee uint32) (*pool.Pool, error) {
	m.bindDB(db, now)
	p := m.Factory.GetPoolAddress(token0, token1, fee)
	if p == nil {
		return nil, factory.ErrFeeTierMissing
	}
	return p, nil
}
