// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package clmm

import (
	"math/big"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"github.com/zeebo/blake3"

	"github.com/luxfi/precompile/clmm/pool"
)

// StateDB is the subset of host state access this precompile needs,
// mirrored from the teacher's dex/pool_manager.go StateDB interface.
type StateDB interface {
	GetState(addr common.Address, key common.Hash) common.Hash
	SetState(addr common.Address, key common.Hash, value common.Hash)
	GetBalance(addr common.Address) *uint256.Int
	Exist(addr common.Address) bool
	CreateAccount(addr common.Address)
}

// tokenLedger adapts pool.TokenContract to the host StateDB, tracking each
// (token, owner) balance in a storage slot keyed by blake3(token‖owner)
// under this contract's own address. This stands in for the external
// fungible-token contract spec.md names (balance_of/transfer): the teacher's
// own transferERC20 (dex/pool_manager.go) is explicitly a stub that "tracks
// balances in state" rather than making a nested call, and this wiring layer
// follows that same precedent rather than inventing a nested-call API that
// contract.AccessibleState does not expose anywhere in the retrieved pack.
type tokenLedger struct {
	self common.Address
	db   StateDB
}

func newTokenLedger(self common.Address, db StateDB) *tokenLedger {
	return &tokenLedger{self: self, db: db}
}

// rebind points the ledger at a new call's StateDB. The ledger itself is
// created once per Manager and shared by every pool's callback adapter, so
// each dispatch only needs to refresh which StateDB it reads/writes.
func (t *tokenLedger) rebind(db StateDB) {
	t.db = db
}

func balanceKey(token, owner common.Address) common.Hash {
	h := blake3.New()
	h.Write(token.Bytes())
	h.Write(owner.Bytes())
	var out common.Hash
	copy(out[:], h.Sum(nil))
	return out
}

// BalanceOf returns the ledgered balance of token held by owner.
func (t *tokenLedger) BalanceOf(token, owner common.Address) *big.Int {
	raw := t.db.GetState(t.self, balanceKey(token, owner))
	return new(big.Int).SetBytes(raw[:])
}

// MoveFrom moves amount of token from an arbitrary payer to an arbitrary
// recipient. Pool/router callback adapters use this to settle a
// mint/swap/flash payment pulled from the caller-named payer into the pool
// that requested it, which pool.TokenContract's Transfer (self-only) cannot
// express.
func (t *tokenLedger) MoveFrom(token, payer, to common.Address, amount *big.Int) error {
	return t.move(token, payer, to, amount)
}

func (t *tokenLedger) move(token, from, to common.Address, amount *big.Int) error {
	if amount.Sign() <= 0 {
		return nil
	}
	fromBal := t.BalanceOf(token, from)
	toBal := t.BalanceOf(token, to)
	fromBal.Sub(fromBal, amount)
	toBal.Add(toBal, amount)
	t.db.SetState(t.self, balanceKey(token, from), common.BigToHash(fromBal))
	t.db.SetState(t.self, balanceKey(token, to), common.BigToHash(toBal))
	return nil
}

// Credit deposits amount of token into owner's ledgered balance, used to
// fund a test or precompile caller's starting balance out of band (no
// corresponding debit, unlike MoveFrom).
func (t *tokenLedger) Credit(token, owner common.Address, amount *big.Int) {
	if amount.Sign() <= 0 {
		return
	}
	bal := t.BalanceOf(token, owner)
	bal.Add(bal, amount)
	t.db.SetState(t.self, balanceKey(token, owner), common.BigToHash(bal))
}

// poolTokenView implements pool.TokenContract for one specific pool: reads
// are ledger-wide, but Transfer always debits that pool's own ledgered
// balance, since one tokenLedger backs every pool the Manager knows about.
type poolTokenView struct {
	ledger   *tokenLedger
	poolAddr common.Address
}

func (v *poolTokenView) BalanceOf(token, owner common.Address) *big.Int {
	return v.ledger.BalanceOf(token, owner)
}

func (v *poolTokenView) Transfer(token, to common.Address, amount *big.Int) error {
	return v.ledger.MoveFrom(token, v.poolAddr, to, amount)
}

var _ pool.TokenContract = (*poolTokenView)(nil)
