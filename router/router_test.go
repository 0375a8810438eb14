// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package router

import (
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"

	"github.com/luxfi/precompile/clmm/factory"
	"github.com/luxfi/precompile/clmm/pool"
)

// testLedger is a bare (token, owner) balance map shared by every pool in a
// test harness, standing in for the wiring layer's host-StateDB-backed
// tokenLedger (callbacks.go/statedb.go at the module root), following the
// mock-collaborator style package pool's own tests use.
type testLedger struct {
	balances map[common.Address]map[common.Address]*big.Int
}

func newTestLedger() *testLedger {
	return &testLedger{balances: make(map[common.Address]map[common.Address]*big.Int)}
}

func (l *testLedger) BalanceOf(token, owner common.Address) *big.Int {
	byOwner, ok := l.balances[token]
	if !ok {
		return new(big.Int)
	}
	bal, ok := byOwner[owner]
	if !ok {
		return new(big.Int)
	}
	return new(big.Int).Set(bal)
}

func (l *testLedger) credit(token, owner common.Address, amount *big.Int) {
	byOwner, ok := l.balances[token]
	if !ok {
		byOwner = make(map[common.Address]*big.Int)
		l.balances[token] = byOwner
	}
	cur, ok := byOwner[owner]
	if !ok {
		cur = new(big.Int)
	}
	byOwner[owner] = new(big.Int).Add(cur, amount)
}

func (l *testLedger) moveFrom(token, from, to common.Address, amount *big.Int) error {
	if amount.Sign() <= 0 {
		return nil
	}
	l.credit(token, from, new(big.Int).Neg(amount))
	l.credit(token, to, amount)
	return nil
}

// testPoolView implements pool.TokenContract for one pool's own ledgered
// balance, matching the root module's poolTokenView (statedb.go).
type testPoolView struct {
	ledger   *testLedger
	poolAddr common.Address
}

func (v *testPoolView) BalanceOf(token, owner common.Address) *big.Int {
	return v.ledger.BalanceOf(token, owner)
}

func (v *testPoolView) Transfer(token, to common.Address, amount *big.Int) error {
	return v.ledger.moveFrom(token, v.poolAddr, to, amount)
}

// testPoolCallbacks implements pool.Callbacks for one pool, forwarding swaps
// to the router the way the root module's poolCallbackAdapter does
// (callbacks.go), so a router-driven swap settles through SwapCallback.
type testPoolCallbacks struct {
	ledger   *testLedger
	poolAddr common.Address
	token0   common.Address
	token1   common.Address
	router   *PositionManagerRouter
	now      uint64
}

func (c *testPoolCallbacks) MintCallback(amount0, amount1 *big.Int, data []byte) error {
	payer := decodeMintCallbackPayer(data)
	if amount0.Sign() > 0 {
		if err := c.ledger.moveFrom(c.token0, payer, c.poolAddr, amount0); err != nil {
			return err
		}
	}
	if amount1.Sign() > 0 {
		if err := c.ledger.moveFrom(c.token1, payer, c.poolAddr, amount1); err != nil {
			return err
		}
	}
	return nil
}

func (c *testPoolCallbacks) SwapCallback(amount0Delta, amount1Delta *big.Int, data []byte) error {
	return c.router.SwapCallback(c.poolAddr, amount0Delta, amount1Delta, data, c.now)
}

func (c *testPoolCallbacks) FlashCallback(fee0, fee1 *big.Int, data []byte) error { return nil }

// testPaymentSource implements PaymentSource against the shared ledger,
// matching the root module's routerPaymentSource (callbacks.go).
type testPaymentSource struct {
	ledger *testLedger
}

func (s *testPaymentSource) Pay(token, payer, to common.Address, amount *big.Int) error {
	return s.ledger.moveFrom(token, payer, to, amount)
}

var (
	routerTokenA = common.HexToAddress("0x1000000000000000000000000000000000000a")
	routerTokenB = common.HexToAddress("0x1000000000000000000000000000000000000b")
	routerTokenC = common.HexToAddress("0x1000000000000000000000000000000000000c")
	routerOwner  = common.HexToAddress("0x0000000000000000000000000000000000000a")
	routerLP     = common.HexToAddress("0x0000000000000000000000000000000000000b")
	routerSwapper = common.HexToAddress("0x0000000000000000000000000000000000000c")
	routerSelf   = common.HexToAddress("0x0000000000000000000000000000000000000d")
	routerPoolAB = common.HexToAddress("0x00000000000000000000000000000000000a0b")
	routerPoolBC = common.HexToAddress("0x00000000000000000000000000000000000b0c")
)

const (
	routerFee         = 3000
	routerTickSpacing = 60
	routerMinTick     = -887220
	routerMaxTick     = 887220
)

func routerEncodeSqrt(a, b int64) *uint256.Int {
	num := new(big.Int).Lsh(big.NewInt(a), 192)
	num.Div(num, big.NewInt(b))
	root := new(big.Int).Sqrt(num)
	v, _ := uint256.FromBig(root)
	return v
}

// newTestHarness wires a factory with two adjacent pools (A-B, B-C), each
// seeded with 1e18 liquidity at a 1:1 price, and a router bound to the same
// ledger-backed callbacks every pool settles through.
func newTestHarness(t *testing.T, now uint64) (*PositionManagerRouter, *testLedger) {
	t.Helper()
	ledger := newTestLedger()
	fac := factory.NewPoolFactory(routerOwner)
	r := NewPositionManagerRouter(routerSelf, fac)
	r.Payments = &testPaymentSource{ledger: ledger}

	liquidity, _ := new(big.Int).SetString("1000000000000000000", 10)
	liquidityU256, _ := uint256.FromBig(liquidity)

	cbAB := &testPoolCallbacks{ledger: ledger, poolAddr: routerPoolAB, token0: routerTokenA, token1: routerTokenB, router: r, now: now}
	viewAB := &testPoolView{ledger: ledger, poolAddr: routerPoolAB}
	poolAB, err := fac.CreatePool(routerPoolAB, routerTokenA, routerTokenB, routerFee, cbAB, viewAB)
	if err != nil {
		t.Fatalf("CreatePool(A,B): %v", err)
	}
	if err := poolAB.InitPrice(routerEncodeSqrt(1, 1), now); err != nil {
		t.Fatalf("InitPrice(A,B): %v", err)
	}
	ledger.credit(routerTokenA, routerLP, liquidity)
	ledger.credit(routerTokenB, routerLP, liquidity)
	if _, _, err := poolAB.Mint(routerSelf, routerMinTick, routerMaxTick, liquidityU256, mintCallbackData{payer: routerLP}.encode(), now); err != nil {
		t.Fatalf("Mint(A,B): %v", err)
	}

	cbBC := &testPoolCallbacks{ledger: ledger, poolAddr: routerPoolBC, token0: routerTokenB, token1: routerTokenC, router: r, now: now}
	viewBC := &testPoolView{ledger: ledger, poolAddr: routerPoolBC}
	poolBC, err := fac.CreatePool(routerPoolBC, routerTokenB, routerTokenC, routerFee, cbBC, viewBC)
	if err != nil {
		t.Fatalf("CreatePool(B,C): %v", err)
	}
	if err := poolBC.InitPrice(routerEncodeSqrt(1, 1), now); err != nil {
		t.Fatalf("InitPrice(B,C): %v", err)
	}
	ledger.credit(routerTokenB, routerLP, liquidity)
	ledger.credit(routerTokenC, routerLP, liquidity)
	if _, _, err := poolBC.Mint(routerSelf, routerMinTick, routerMaxTick, liquidityU256, mintCallbackData{payer: routerLP}.encode(), now); err != nil {
		t.Fatalf("Mint(B,C): %v", err)
	}

	return r, ledger
}

func TestExactInputSingleSwapsTokenAForTokenB(t *testing.T) {
	r, ledger := newTestHarness(t, 1)
	amountIn, _ := new(big.Int).SetString("100000000000000000", 10)
	ledger.credit(routerTokenA, routerSwapper, amountIn)
	amountInU256, _ := uint256.FromBig(amountIn)

	amountOut, err := r.ExactInputSingle(routerSwapper, ExactInputSingleParams{
		TokenIn:           routerTokenA,
		TokenOut:          routerTokenB,
		Fee:               routerFee,
		Recipient:         routerSwapper,
		Deadline:          100,
		AmountIn:          amountInU256,
		AmountOutMinimum:  new(uint256.Int),
		SqrtPriceLimitX96: new(uint256.Int),
	}, 1)
	if err != nil {
		t.Fatalf("ExactInputSingle: %v", err)
	}
	if amountOut.IsZero() {
		t.Fatalf("expected nonzero amountOut")
	}
	if got := ledger.BalanceOf(routerTokenB, routerSwapper); got.Cmp(amountOut.ToBig()) != 0 {
		t.Fatalf("swapper tokenB balance = %s, want %s (the reported amountOut)", got, amountOut)
	}
	if got := ledger.BalanceOf(routerTokenA, routerSwapper); got.Sign() != 0 {
		t.Fatalf("swapper tokenA balance = %s, want 0 (entire amountIn spent)", got)
	}
}

func TestExactInputSingleRejectsSlippage(t *testing.T) {
	r, ledger := newTestHarness(t, 1)
	amountIn, _ := new(big.Int).SetString("100000000000000000", 10)
	ledger.credit(routerTokenA, routerSwapper, amountIn)
	amountInU256, _ := uint256.FromBig(amountIn)
	unreachableMin, _ := new(big.Int).SetString("999999999999999999999999", 10)
	unreachableMinU256, _ := uint256.FromBig(unreachableMin)

	if _, err := r.ExactInputSingle(routerSwapper, ExactInputSingleParams{
		TokenIn:           routerTokenA,
		TokenOut:          routerTokenB,
		Fee:               routerFee,
		Recipient:         routerSwapper,
		Deadline:          100,
		AmountIn:          amountInU256,
		AmountOutMinimum:  unreachableMinU256,
		SqrtPriceLimitX96: new(uint256.Int),
	}, 1); err != ErrSlippageAmountOut {
		t.Fatalf("ExactInputSingle(impossible min) = %v, want ErrSlippageAmountOut", err)
	}
}

func TestExactInputSingleRejectsExpiredDeadline(t *testing.T) {
	r, _ := newTestHarness(t, 1)
	if _, err := r.ExactInputSingle(routerSwapper, ExactInputSingleParams{
		TokenIn:           routerTokenA,
		TokenOut:          routerTokenB,
		Fee:               routerFee,
		Deadline:          5,
		AmountIn:          uint256.NewInt(1),
		AmountOutMinimum:  new(uint256.Int),
		SqrtPriceLimitX96: new(uint256.Int),
	}, 10); err != ErrDeadlineExpired {
		t.Fatalf("ExactInputSingle(expired) = %v, want ErrDeadlineExpired", err)
	}
}

func TestExactOutputSingleSwapsForExactTokenOut(t *testing.T) {
	r, ledger := newTestHarness(t, 1)
	ample, _ := new(big.Int).SetString("1000000000000000000", 10)
	ledger.credit(routerTokenA, routerSwapper, ample)
	ampleU256, _ := uint256.FromBig(ample)

	amountOutWanted := uint256.NewInt(50_000)
	amountIn, err := r.ExactOutputSingle(routerSwapper, ExactOutputSingleParams{
		TokenIn:           routerTokenA,
		TokenOut:          routerTokenB,
		Fee:               routerFee,
		Recipient:         routerSwapper,
		Deadline:          100,
		AmountOut:         amountOutWanted,
		AmountInMaximum:   ampleU256,
		SqrtPriceLimitX96: new(uint256.Int),
	}, 1)
	if err != nil {
		t.Fatalf("ExactOutputSingle: %v", err)
	}
	if amountIn.IsZero() {
		t.Fatalf("expected nonzero amountIn")
	}
	if got := ledger.BalanceOf(routerTokenB, routerSwapper); got.Cmp(amountOutWanted.ToBig()) != 0 {
		t.Fatalf("swapper tokenB balance = %s, want exactly requested %s", got, amountOutWanted)
	}
}

func TestExactInputMultiHopRoutesThroughBothPools(t *testing.T) {
	r, ledger := newTestHarness(t, 1)
	amountIn, _ := new(big.Int).SetString("100000000000000000", 10)
	ledger.credit(routerTokenA, routerSwapper, amountIn)
	amountInU256, _ := uint256.FromBig(amountIn)

	path, err := EncodePath([]common.Address{routerTokenA, routerTokenB, routerTokenC}, []uint32{routerFee, routerFee})
	if err != nil {
		t.Fatalf("EncodePath: %v", err)
	}

	amountOut, err := r.ExactInput(routerSwapper, ExactInputParams{
		Path:             path,
		Recipient:        routerSwapper,
		Deadline:         100,
		AmountIn:         amountInU256,
		AmountOutMinimum: new(uint256.Int),
	}, 1)
	if err != nil {
		t.Fatalf("ExactInput: %v", err)
	}
	if amountOut.IsZero() {
		t.Fatalf("expected nonzero multi-hop amountOut")
	}
	if got := ledger.BalanceOf(routerTokenC, routerSwapper); got.Cmp(amountOut.ToBig()) != 0 {
		t.Fatalf("swapper tokenC balance = %s, want %s", got, amountOut)
	}
	if got := ledger.BalanceOf(routerTokenB, routerSelf); got.Sign() != 0 {
		t.Fatalf("router's intermediate tokenB custody = %s, want 0 (fully forwarded into the second hop)", got)
	}
}

func TestExactOutputMultiHopDeliversExactFinalAmount(t *testing.T) {
	r, ledger := newTestHarness(t, 1)
	ample, _ := new(big.Int).SetString("1000000000000000000", 10)
	ledger.credit(routerTokenA, routerSwapper, ample)
	ampleU256, _ := uint256.FromBig(ample)

	path, err := EncodePath([]common.Address{routerTokenA, routerTokenB, routerTokenC}, []uint32{routerFee, routerFee})
	if err != nil {
		t.Fatalf("EncodePath: %v", err)
	}

	amountOutWanted := uint256.NewInt(50_000)
	amountIn, err := r.ExactOutput(routerSwapper, ExactOutputParams{
		Path:            path,
		Recipient:       routerSwapper,
		Deadline:        100,
		AmountOut:       amountOutWanted,
		AmountInMaximum: ampleU256,
	}, 1)
	if err != nil {
		t.Fatalf("ExactOutput: %v", err)
	}
	if amountIn.IsZero() {
		t.Fatalf("expected nonzero amountIn")
	}
	if got := ledger.BalanceOf(routerTokenC, routerSwapper); got.Cmp(amountOutWanted.ToBig()) != 0 {
		t.Fatalf("swapper tokenC balance = %s, want exactly requested %s", got, amountOutWanted)
	}
}

var _ pool.Callbacks = (*testPoolCallbacks)(nil)
var _ pool.TokenContract = (*testPoolView)(nil)
var _ PaymentSource = (*testPaymentSource)(nil)
