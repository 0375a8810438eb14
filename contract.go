// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package clmm

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/precompile/contract"

	"github.com/luxfi/precompile/clmm/factory"
	"github.com/luxfi/precompile/clmm/router"
)

// word is the fixed 32-byte slot size every scalar argument/result is padded
// to or read from, matching dex/module.go's PoolKey/SwapParams encoding.
const word = 32

// stateAdapter adapts contract.StateDB to this package's StateDB, mirroring
// dex/module.go's poolStateAdapter (trimmed to the subset this precompile
// actually reads/writes: it never needs AddBalance/SubBalance/GetBlockNumber
// since token movement is ledgered through storage slots, not native value).
type stateAdapter struct {
	db contract.StateDB
}

func (a *stateAdapter) GetState(addr common.Address, key common.Hash) common.Hash {
	return a.db.GetState(addr, key)
}

func (a *stateAdapter) SetState(addr common.Address, key common.Hash, value common.Hash) {
	a.db.SetState(addr, key, value)
}

func (a *stateAdapter) GetBalance(addr common.Address) *uint256.Int {
	return a.db.GetBalance(addr)
}

func (a *stateAdapter) Exist(addr common.Address) bool {
	return a.db.Exist(addr)
}

func (a *stateAdapter) CreateAccount(addr common.Address) {
	a.db.CreateAccount(addr)
}

// CLMMContract implements the concentrated-liquidity precompile: pool
// lifecycle and swaps at the selector ranges documented in module.go.
type CLMMContract struct {
	manager *Manager
}

// Run dispatches by 4-byte selector, the same shape as dex/module.go's
// DEXContract.Run. Every write selector's payload begins with a 32-byte
// big-endian block timestamp ("now"): the retrieved precompile contract
// package exposes no block-time accessor (dex/module.go's own
// poolStateAdapter.GetBlockNumber stubs this as 0), so the caller supplies
// it explicitly instead of this precompile fabricating one.
func (c *CLMMContract) Run(
	accessibleState contract.AccessibleState,
	caller common.Address,
	addr common.Address,
	input []byte,
	suppliedGas uint64,
	readOnly bool,
) (ret []byte, remainingGas uint64, err error) {
	if len(input) < 4 {
		return nil, suppliedGas, fmt.Errorf("clmm: input too short")
	}

	selector := binary.BigEndian.Uint32(input[:4])
	data := input[4:]
	db := &stateAdapter{db: accessibleState.GetStateDB()}

	switch selector {
	case SelectorCreatePool:
		return c.runCreatePool(db, caller, data, suppliedGas, readOnly)
	case SelectorInitPrice:
		return c.runInitPrice(db, caller, data, suppliedGas, readOnly)
	case SelectorMint:
		return c.runMint(db, caller, data, suppliedGas, readOnly)
	case SelectorBurn:
		return c.runBurn(db, caller, data, suppliedGas, readOnly)
	case SelectorCollect:
		return c.runCollect(db, caller, data, suppliedGas, readOnly)
	case SelectorSwap:
		return c.runSwap(db, caller, data, suppliedGas, readOnly)
	case SelectorFlash:
		return c.runFlash(db, caller, data, suppliedGas, readOnly)
	case SelectorSetFeeProtocol:
		return c.runSetFeeProtocol(db, caller, data, suppliedGas, readOnly)
	case SelectorCollectProtocol:
		return c.runCollectProtocol(db, caller, data, suppliedGas, readOnly)
	case SelectorIncreaseObservationCardinality:
		return c.runIncreaseObservationCardinality(db, caller, data, suppliedGas, readOnly)
	case SelectorObserve:
		return c.runObserve(db, data, suppliedGas)
	case SelectorSnapshotCumulativesInside:
		return c.runSnapshotCumulativesInside(db, data, suppliedGas)
	case SelectorGetSlot0:
		return c.runGetSlot0(db, data, suppliedGas)

	case SelectorEnableFeeAmount:
		return c.runEnableFeeAmount(caller, data, suppliedGas, readOnly)
	case SelectorSetOwner:
		return c.runSetOwner(caller, data, suppliedGas, readOnly)
	case SelectorGetPool:
		return c.runGetPool(data, suppliedGas)

	case SelectorRouterMint:
		return c.runRouterMint(db, caller, data, suppliedGas, readOnly)
	case SelectorRouterIncreaseLiquidity:
		return c.runRouterIncreaseLiquidity(db, caller, data, suppliedGas, readOnly)
	case SelectorRouterDecreaseLiquidity:
		return c.runRouterDecreaseLiquidity(db, caller, data, suppliedGas, readOnly)
	case SelectorRouterCollect:
		return c.runRouterCollect(db, caller, data, suppliedGas, readOnly)
	case SelectorRouterBurn:
		return c.runRouterBurn(caller, data, suppliedGas, readOnly)
	case SelectorRouterApprove:
		return c.runRouterApprove(caller, data, suppliedGas, readOnly)
	case SelectorExactInputSingle:
		return c.runExactInputSingle(db, caller, data, suppliedGas, readOnly)
	case SelectorExactInput:
		return c.runExactInput(db, caller, data, suppliedGas, readOnly)
	case SelectorExactOutputSingle:
		return c.runExactOutputSingle(db, caller, data, suppliedGas, readOnly)
	case SelectorExactOutput:
		return c.runExactOutput(db, caller, data, suppliedGas, readOnly)
	default:
		return nil, suppliedGas, fmt.Errorf("clmm: unknown method selector: %x", selector)
	}
}

// RequiredGas returns the flat per-selector gas cost (gas.go).
func (c *CLMMContract) RequiredGas(input []byte) uint64 {
	if len(input) < 4 {
		return GasSwap
	}
	switch binary.BigEndian.Uint32(input[:4]) {
	case SelectorCreatePool:
		return GasCreatePool
	case SelectorInitPrice:
		return GasPoolInit
	case SelectorMint:
		return GasMint
	case SelectorBurn:
		return GasBurn
	case SelectorCollect:
		return GasCollect
	case SelectorSwap:
		return GasSwap
	case SelectorFlash:
		return GasFlash
	case SelectorSetFeeProtocol:
		return GasSetFeeProtocol
	case SelectorCollectProtocol:
		return GasCollectProtocol
	case SelectorIncreaseObservationCardinality:
		return GasGrowObservations
	case SelectorObserve, SelectorSnapshotCumulativesInside:
		return GasObserve
	case SelectorGetSlot0, SelectorGetPool:
		return GasPoolLookup
	case SelectorEnableFeeAmount:
		return GasEnableFeeAmount
	case SelectorSetOwner:
		return GasEnableFeeAmount
	case SelectorRouterMint:
		return GasRouterMint
	case SelectorRouterIncreaseLiquidity:
		return GasRouterIncreaseLiquidity
	case SelectorRouterDecreaseLiquidity:
		return GasRouterDecreaseLiquidity
	case SelectorRouterCollect:
		return GasRouterCollect
	case SelectorRouterBurn, SelectorRouterApprove:
		return GasRouterBurn
	case SelectorExactInputSingle:
		return GasRouterExactInputSingle
	case SelectorExactOutputSingle:
		return GasRouterExactOutputSingle
	case SelectorExactInput:
		return GasRouterExactInputSingle + GasRouterExactInputHop
	case SelectorExactOutput:
		return GasRouterExactOutputSingle + GasRouterExactOutputHop
	default:
		return GasSwap
	}
}

// --- decode helpers ---------------------------------------------------

func readWord(data []byte, i int) []byte {
	return data[i*word : (i+1)*word]
}

func readAddress(data []byte, i int) common.Address {
	return common.BytesToAddress(readWord(data, i))
}

func readUint256(data []byte, i int) *uint256.Int {
	return new(uint256.Int).SetBytes(readWord(data, i))
}

func readBig(data []byte, i int) *big.Int {
	w := readWord(data, i)
	v := new(big.Int).SetBytes(w[1:])
	if w[0] != 0 {
		v.Neg(v)
	}
	return v
}

func readInt32(data []byte, i int) int32 {
	w := readWord(data, i)
	return int32(binary.BigEndian.Uint32(w[word-4:]))
}

func readUint32(data []byte, i int) uint32 {
	w := readWord(data, i)
	return binary.BigEndian.Uint32(w[word-4:])
}

func readUint64(data []byte, i int) uint64 {
	w := readWord(data, i)
	return binary.BigEndian.Uint64(w[word-8:])
}

func readBool(data []byte, i int) bool {
	w := readWord(data, i)
	return w[word-1] != 0
}

func writeWord(out []byte, i int, v []byte) {
	copy(out[i*word+word-len(v):(i+1)*word], v)
}

func writeUint256(out []byte, i int, v *uint256.Int) {
	b := v.Bytes()
	writeWord(out, i, b)
}

// writeBig encodes a signed amount as a sign byte (0 positive, 1 negative)
// followed by the magnitude, matching readBig above. The reference system's
// native signed 256-bit integer has no direct uint256 counterpart, so this
// wiring layer picks an explicit sign-and-magnitude word rather than two's
// complement to keep encode/decode trivially symmetric.
func writeBig(out []byte, i int, v *big.Int) {
	if v.Sign() < 0 {
		out[i*word] = 1
		writeWord(out, i, new(big.Int).Neg(v).Bytes())
	} else {
		writeWord(out, i, v.Bytes())
	}
}

func writeInt32(out []byte, i int, v int32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(v))
	writeWord(out, i, b[:])
}

func writeUint64(out []byte, i int, v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	writeWord(out, i, b[:])
}

// --- pool selectors -----------------------------------------------------

func (c *CLMMContract) runCreatePool(db *stateAdapter, caller common.Address, input []byte, suppliedGas uint64, readOnly bool) ([]byte, uint64, error) {
	if readOnly {
		return nil, suppliedGas, fmt.Errorf("clmm: cannot write in read-only mode")
	}
	if suppliedGas < GasCreatePool {
		return nil, 0, fmt.Errorf("clmm: out of gas")
	}
	if len(input) < 4*word {
		return nil, suppliedGas - GasCreatePool, fmt.Errorf("clmm: create_pool input too short")
	}

	now := readUint64(input, 0)
	token0 := readAddress(input, 1)
	token1 := readAddress(input, 2)
	fee := readUint32(input, 3)

	p, err := c.manager.CreatePool(db, now, token0, token1, fee)
	if err != nil {
		return nil, suppliedGas - GasCreatePool, err
	}

	out := make([]byte, word)
	writeWord(out, 0, p.Factory.Bytes())
	return out, suppliedGas - GasCreatePool, nil
}

func (c *CLMMContract) runInitPrice(db *stateAdapter, caller common.Address, input []byte, suppliedGas uint64, readOnly bool) ([]byte, uint64, error) {
	if readOnly {
		return nil, suppliedGas, fmt.Errorf("clmm: cannot write in read-only mode")
	}
	if suppliedGas < GasPoolInit {
		return nil, 0, fmt.Errorf("clmm: out of gas")
	}
	if len(input) < 4*word {
		return nil, suppliedGas - GasPoolInit, fmt.Errorf("clmm: init_price input too short")
	}

	now := readUint64(input, 0)
	token0, token1, fee := readAddress(input, 1), readAddress(input, 2), readUint32(input, 3)
	sqrtPriceX96 := readUint256(input, 4)

	p, err := c.manager.Pool(db, now, token0, token1, fee)
	if err != nil {
		return nil, suppliedGas - GasPoolInit, err
	}
	if err := p.InitPrice(sqrtPriceX96, now); err != nil {
		return nil, suppliedGas - GasPoolInit, err
	}
	return nil, suppliedGas - GasPoolInit, nil
}

func (c *CLMMContract) runMint(db *stateAdapter, caller common.Address, input []byte, suppliedGas uint64, readOnly bool) ([]byte, uint64, error) {
	if readOnly {
		return nil, suppliedGas, fmt.Errorf("clmm: cannot write in read-only mode")
	}
	if suppliedGas < GasMint {
		return nil, 0, fmt.Errorf("clmm: out of gas")
	}
	if len(input) < 8*word {
		return nil, suppliedGas - GasMint, fmt.Errorf("clmm: mint input too short")
	}

	now := readUint64(input, 0)
	token0, token1, fee := readAddress(input, 1), readAddress(input, 2), readUint32(input, 3)
	tickLower, tickUpper := readInt32(input, 4), readInt32(input, 5)
	amount := readUint256(input, 6)
	payer := readAddress(input, 7)

	p, err := c.manager.Pool(db, now, token0, token1, fee)
	if err != nil {
		return nil, suppliedGas - GasMint, err
	}
	amount0, amount1, err := p.Mint(caller, tickLower, tickUpper, amount, payer.Bytes(), now)
	if err != nil {
		return nil, suppliedGas - GasMint, err
	}

	out := make([]byte, 2*word)
	writeBig(out, 0, amount0)
	writeBig(out, 1, amount1)
	return out, suppliedGas - GasMint, nil
}

func (c *CLMMContract) runBurn(db *stateAdapter, caller common.Address, input []byte, suppliedGas uint64, readOnly bool) ([]byte, uint64, error) {
	if readOnly {
		return nil, suppliedGas, fmt.Errorf("clmm: cannot write in read-only mode")
	}
	if suppliedGas < GasBurn {
		return nil, 0, fmt.Errorf("clmm: out of gas")
	}
	if len(input) < 7*word {
		return nil, suppliedGas - GasBurn, fmt.Errorf("clmm: burn input too short")
	}

	now := readUint64(input, 0)
	token0, token1, fee := readAddress(input, 1), readAddress(input, 2), readUint32(input, 3)
	tickLower, tickUpper := readInt32(input, 4), readInt32(input, 5)
	amount := readUint256(input, 6)

	p, err := c.manager.Pool(db, now, token0, token1, fee)
	if err != nil {
		return nil, suppliedGas - GasBurn, err
	}
	amount0, amount1, err := p.Burn(caller, tickLower, tickUpper, amount, now)
	if err != nil {
		return nil, suppliedGas - GasBurn, err
	}

	out := make([]byte, 2*word)
	writeBig(out, 0, amount0)
	writeBig(out, 1, amount1)
	return out, suppliedGas - GasBurn, nil
}

func (c *CLMMContract) runCollect(db *stateAdapter, caller common.Address, input []byte, suppliedGas uint64, readOnly bool) ([]byte, uint64, error) {
	if readOnly {
		return nil, suppliedGas, fmt.Errorf("clmm: cannot write in read-only mode")
	}
	if suppliedGas < GasCollect {
		return nil, 0, fmt.Errorf("clmm: out of gas")
	}
	if len(input) < 9*word {
		return nil, suppliedGas - GasCollect, fmt.Errorf("clmm: collect input too short")
	}

	now := readUint64(input, 0)
	token0, token1, fee := readAddress(input, 1), readAddress(input, 2), readUint32(input, 3)
	tickLower, tickUpper := readInt32(input, 4), readInt32(input, 5)
	recipient := readAddress(input, 6)
	amount0Max, amount1Max := readUint256(input, 7), readUint256(input, 8)

	p, err := c.manager.Pool(db, now, token0, token1, fee)
	if err != nil {
		return nil, suppliedGas - GasCollect, err
	}
	amount0, amount1, err := p.Collect(caller, recipient, tickLower, tickUpper, amount0Max, amount1Max)
	if err != nil {
		return nil, suppliedGas - GasCollect, err
	}

	out := make([]byte, 2*word)
	writeUint256(out, 0, amount0)
	writeUint256(out, 1, amount1)
	return out, suppliedGas - GasCollect, nil
}

func (c *CLMMContract) runSwap(db *stateAdapter, caller common.Address, input []byte, suppliedGas uint64, readOnly bool) ([]byte, uint64, error) {
	if readOnly {
		return nil, suppliedGas, fmt.Errorf("clmm: cannot write in read-only mode")
	}
	if suppliedGas < GasSwap {
		return nil, 0, fmt.Errorf("clmm: out of gas")
	}
	if len(input) < 8*word {
		return nil, suppliedGas - GasSwap, fmt.Errorf("clmm: swap input too short")
	}

	now := readUint64(input, 0)
	token0, token1, fee := readAddress(input, 1), readAddress(input, 2), readUint32(input, 3)
	recipient := readAddress(input, 4)
	zeroForOne := readBool(input, 5)
	amountSpecified := readBig(input, 6)
	sqrtPriceLimitX96 := readUint256(input, 7)

	p, err := c.manager.Pool(db, now, token0, token1, fee)
	if err != nil {
		return nil, suppliedGas - GasSwap, err
	}

	path, err := router.EncodePath([]common.Address{token1, token0}, []uint32{fee})
	if !zeroForOne {
		path, err = router.EncodePath([]common.Address{token0, token1}, []uint32{fee})
	}
	if err != nil {
		return nil, suppliedGas - GasSwap, err
	}
	cbData := append(append([]byte{}, path...), caller.Bytes()...)

	amount0, amount1, err := p.Swap(recipient, zeroForOne, amountSpecified, sqrtPriceLimitX96, cbData, now)
	if err != nil {
		return nil, suppliedGas - GasSwap, err
	}

	out := make([]byte, 2*word)
	writeBig(out, 0, amount0)
	writeBig(out, 1, amount1)
	return out, suppliedGas - GasSwap, nil
}

func (c *CLMMContract) runFlash(db *stateAdapter, caller common.Address, input []byte, suppliedGas uint64, readOnly bool) ([]byte, uint64, error) {
	if readOnly {
		return nil, suppliedGas, fmt.Errorf("clmm: cannot write in read-only mode")
	}
	if suppliedGas < GasFlash {
		return nil, 0, fmt.Errorf("clmm: out of gas")
	}
	if len(input) < 7*word {
		return nil, suppliedGas - GasFlash, fmt.Errorf("clmm: flash input too short")
	}

	now := readUint64(input, 0)
	token0, token1, fee := readAddress(input, 1), readAddress(input, 2), readUint32(input, 3)
	recipient := readAddress(input, 4)
	amount0, amount1 := readUint256(input, 5), readUint256(input, 6)

	p, err := c.manager.Pool(db, now, token0, token1, fee)
	if err != nil {
		return nil, suppliedGas - GasFlash, err
	}
	if err := p.Flash(recipient, amount0, amount1, caller.Bytes()); err != nil {
		return nil, suppliedGas - GasFlash, err
	}
	return nil, suppliedGas - GasFlash, nil
}

func (c *CLMMContract) runSetFeeProtocol(db *stateAdapter, caller common.Address, input []byte, suppliedGas uint64, readOnly bool) ([]byte, uint64, error) {
	if readOnly {
		return nil, suppliedGas, fmt.Errorf("clmm: cannot write in read-only mode")
	}
	if caller != c.manager.Factory.Owner {
		return nil, suppliedGas, factory.ErrOnlyOwner
	}
	if suppliedGas < GasSetFeeProtocol {
		return nil, 0, fmt.Errorf("clmm: out of gas")
	}
	if len(input) < 5*word {
		return nil, suppliedGas - GasSetFeeProtocol, fmt.Errorf("clmm: set_fee_protocol input too short")
	}

	now := readUint64(input, 0)
	token0, token1, fee := readAddress(input, 1), readAddress(input, 2), readUint32(input, 3)
	word4 := readWord(input, 4)
	feeProtocol0, feeProtocol1 := word4[word-2], word4[word-1]

	p, err := c.manager.Pool(db, now, token0, token1, fee)
	if err != nil {
		return nil, suppliedGas - GasSetFeeProtocol, err
	}
	if err := p.SetFeeProtocol(feeProtocol0, feeProtocol1); err != nil {
		return nil, suppliedGas - GasSetFeeProtocol, err
	}
	return nil, suppliedGas - GasSetFeeProtocol, nil
}

func (c *CLMMContract) runCollectProtocol(db *stateAdapter, caller common.Address, input []byte, suppliedGas uint64, readOnly bool) ([]byte, uint64, error) {
	if readOnly {
		return nil, suppliedGas, fmt.Errorf("clmm: cannot write in read-only mode")
	}
	if caller != c.manager.Factory.Owner {
		return nil, suppliedGas, factory.ErrOnlyOwner
	}
	if suppliedGas < GasCollectProtocol {
		return nil, 0, fmt.Errorf("clmm: out of gas")
	}
	if len(input) < 7*word {
		return nil, suppliedGas - GasCollectProtocol, fmt.Errorf("clmm: collect_protocol input too short")
	}

	now := readUint64(input, 0)
	token0, token1, fee := readAddress(input, 1), readAddress(input, 2), readUint32(input, 3)
	recipient := readAddress(input, 4)
	amount0Max, amount1Max := readUint256(input, 5), readUint256(input, 6)

	p, err := c.manager.Pool(db, now, token0, token1, fee)
	if err != nil {
		return nil, suppliedGas - GasCollectProtocol, err
	}
	amount0, amount1, err := p.CollectProtocol(recipient, amount0Max, amount1Max)
	if err != nil {
		return nil, suppliedGas - GasCollectProtocol, err
	}

	out := make([]byte, 2*word)
	writeUint256(out, 0, amount0)
	writeUint256(out, 1, amount1)
	return out, suppliedGas - GasCollectProtocol, nil
}

func (c *CLMMContract) runIncreaseObservationCardinality(db *stateAdapter, caller common.Address, input []byte, suppliedGas uint64, readOnly bool) ([]byte, uint64, error) {
	if readOnly {
		return nil, suppliedGas, fmt.Errorf("clmm: cannot write in read-only mode")
	}
	if suppliedGas < GasGrowObservations {
		return nil, 0, fmt.Errorf("clmm: out of gas")
	}
	if len(input) < 5*word {
		return nil, suppliedGas - GasGrowObservations, fmt.Errorf("clmm: increase_observation_cardinality_next input too short")
	}

	now := readUint64(input, 0)
	token0, token1, fee := readAddress(input, 1), readAddress(input, 2), readUint32(input, 3)
	cardinalityNext := uint16(readUint32(input, 4))

	p, err := c.manager.Pool(db, now, token0, token1, fee)
	if err != nil {
		return nil, suppliedGas - GasGrowObservations, err
	}
	if err := p.IncreaseObservationCardinalityNext(cardinalityNext); err != nil {
		return nil, suppliedGas - GasGrowObservations, err
	}
	return nil, suppliedGas - GasGrowObservations, nil
}

func (c *CLMMContract) runObserve(db *stateAdapter, input []byte, suppliedGas uint64) ([]byte, uint64, error) {
	if suppliedGas < GasObserve {
		return nil, 0, fmt.Errorf("clmm: out of gas")
	}
	if len(input) < 5*word {
		return nil, suppliedGas - GasObserve, fmt.Errorf("clmm: observe input too short")
	}

	now := readUint64(input, 0)
	token0, token1, fee := readAddress(input, 1), readAddress(input, 2), readUint32(input, 3)
	numAgos := int(readUint32(input, 4))
	if len(input) < (5+numAgos)*word {
		return nil, suppliedGas - GasObserve, fmt.Errorf("clmm: observe secondsAgos truncated")
	}
	secondsAgos := make([]uint32, numAgos)
	for i := 0; i < numAgos; i++ {
		secondsAgos[i] = readUint32(input, 5+i)
	}

	p, err := c.manager.Pool(db, now, token0, token1, fee)
	if err != nil {
		return nil, suppliedGas - GasObserve, err
	}
	tickCumulatives, secondsPerLiquidityCumulativeX128s, err := p.ObserveNow(now, secondsAgos)
	if err != nil {
		return nil, suppliedGas - GasObserve, err
	}

	out := make([]byte, 2*numAgos*word)
	for i, tc := range tickCumulatives {
		writeBig(out, i, big.NewInt(tc))
	}
	for i, s := range secondsPerLiquidityCumulativeX128s {
		writeUint256(out, numAgos+i, s)
	}
	return out, suppliedGas - GasObserve, nil
}

func (c *CLMMContract) runSnapshotCumulativesInside(db *stateAdapter, input []byte, suppliedGas uint64) ([]byte, uint64, error) {
	if suppliedGas < GasObserve {
		return nil, 0, fmt.Errorf("clmm: out of gas")
	}
	if len(input) < 6*word {
		return nil, suppliedGas - GasObserve, fmt.Errorf("clmm: snapshot_cumulatives_inside input too short")
	}

	now := readUint64(input, 0)
	token0, token1, fee := readAddress(input, 1), readAddress(input, 2), readUint32(input, 3)
	tickLower, tickUpper := readInt32(input, 4), readInt32(input, 5)

	p, err := c.manager.Pool(db, now, token0, token1, fee)
	if err != nil {
		return nil, suppliedGas - GasObserve, err
	}
	tickCumulativeInside, secondsPerLiquidityInsideX128, secondsInside, err := p.SnapshotCumulativesInside(tickLower, tickUpper, now)
	if err != nil {
		return nil, suppliedGas - GasObserve, err
	}

	out := make([]byte, 3*word)
	writeBig(out, 0, big.NewInt(tickCumulativeInside))
	writeUint256(out, 1, secondsPerLiquidityInsideX128)
	writeUint64(out, 2, uint64(secondsInside))
	return out, suppliedGas - GasObserve, nil
}

func (c *CLMMContract) runGetSlot0(db *stateAdapter, input []byte, suppliedGas uint64) ([]byte, uint64, error) {
	if suppliedGas < GasPoolLookup {
		return nil, 0, fmt.Errorf("clmm: out of gas")
	}
	if len(input) < 4*word {
		return nil, suppliedGas - GasPoolLookup, fmt.Errorf("clmm: get_slot0 input too short")
	}

	now := readUint64(input, 0)
	token0, token1, fee := readAddress(input, 1), readAddress(input, 2), readUint32(input, 3)

	p, err := c.manager.Pool(db, now, token0, token1, fee)
	if err != nil {
		return nil, suppliedGas - GasPoolLookup, err
	}

	out := make([]byte, 5*word)
	writeUint256(out, 0, p.Slot0.SqrtPriceX96)
	writeInt32(out, 1, p.Slot0.Tick)
	writeInt32(out, 2, int32(p.Slot0.ObservationIndex))
	writeInt32(out, 3, int32(p.Slot0.ObservationCardinality))
	writeInt32(out, 4, int32(p.Slot0.ObservationCardinalityNext))
	return out, suppliedGas - GasPoolLookup, nil
}

// --- factory selectors ----------------------------------------------------

func (c *CLMMContract) runEnableFeeAmount(caller common.Address, input []byte, suppliedGas uint64, readOnly bool) ([]byte, uint64, error) {
	if readOnly {
		return nil, suppliedGas, fmt.Errorf("clmm: cannot write in read-only mode")
	}
	if suppliedGas < GasEnableFeeAmount {
		return nil, 0, fmt.Errorf("clmm: out of gas")
	}
	if len(input) < 2*word {
		return nil, suppliedGas - GasEnableFeeAmount, fmt.Errorf("clmm: enable_fee_amount input too short")
	}

	fee := readUint32(input, 0)
	tickSpacing := readInt32(input, 1)
	if err := c.manager.Factory.EnableFeeAmount(caller, fee, tickSpacing); err != nil {
		return nil, suppliedGas - GasEnableFeeAmount, err
	}
	return nil, suppliedGas - GasEnableFeeAmount, nil
}

func (c *CLMMContract) runSetOwner(caller common.Address, input []byte, suppliedGas uint64, readOnly bool) ([]byte, uint64, error) {
	if readOnly {
		return nil, suppliedGas, fmt.Errorf("clmm: cannot write in read-only mode")
	}
	if suppliedGas < GasEnableFeeAmount {
		return nil, 0, fmt.Errorf("clmm: out of gas")
	}
	if len(input) < word {
		return nil, suppliedGas - GasEnableFeeAmount, fmt.Errorf("clmm: set_owner input too short")
	}
	newOwner := readAddress(input, 0)
	if err := c.manager.Factory.SetOwner(caller, newOwner); err != nil {
		return nil, suppliedGas - GasEnableFeeAmount, err
	}
	return nil, suppliedGas - GasEnableFeeAmount, nil
}

func (c *CLMMContract) runGetPool(input []byte, suppliedGas uint64) ([]byte, uint64, error) {
	if suppliedGas < GasPoolLookup {
		return nil, 0, fmt.Errorf("clmm: out of gas")
	}
	if len(input) < 3*word {
		return nil, suppliedGas - GasPoolLookup, fmt.Errorf("clmm: get_pool input too short")
	}
	token0, token1, fee := readAddress(input, 0), readAddress(input, 1), readUint32(input, 2)
	p := c.manager.Factory.GetPoolAddress(token0, token1, fee)
	out := make([]byte, word)
	if p != nil {
		writeWord(out, 0, p.Factory.Bytes())
	}
	return out, suppliedGas - GasPoolLookup, nil
}

// --- position-manager/router selectors -------------------------------------

func (c *CLMMContract) runRouterMint(db *stateAdapter, caller common.Address, input []byte, suppliedGas uint64, readOnly bool) ([]byte, uint64, error) {
	if readOnly {
		return nil, suppliedGas, fmt.Errorf("clmm: cannot write in read-only mode")
	}
	if suppliedGas < GasRouterMint {
		return nil, 0, fmt.Errorf("clmm: out of gas")
	}
	if len(input) < 11*word {
		return nil, suppliedGas - GasRouterMint, fmt.Errorf("clmm: router mint input too short")
	}

	now := readUint64(input, 0)
	c.manager.bindDB(db, now)

	params := router.MintParams{
		Token0:         readAddress(input, 1),
		Token1:         readAddress(input, 2),
		Fee:            readUint32(input, 3),
		TickLower:      readInt32(input, 4),
		TickUpper:      readInt32(input, 5),
		Amount0Desired: readUint256(input, 6),
		Amount1Desired: readUint256(input, 7),
		Amount0Min:     readUint256(input, 8),
		Amount1Min:     readUint256(input, 9),
		Recipient:      readAddress(input, 10),
		Deadline:       now,
	}

	id, liquidity, amount0, amount1, err := c.manager.Router.Mint(caller, params, now)
	if err != nil {
		return nil, suppliedGas - GasRouterMint, err
	}

	out := make([]byte, 4*word)
	writeUint64(out, 0, id)
	writeUint256(out, 1, liquidity)
	writeBig(out, 2, amount0)
	writeBig(out, 3, amount1)
	return out, suppliedGas - GasRouterMint, nil
}

func (c *CLMMContract) runRouterIncreaseLiquidity(db *stateAdapter, caller common.Address, input []byte, suppliedGas uint64, readOnly bool) ([]byte, uint64, error) {
	if readOnly {
		return nil, suppliedGas, fmt.Errorf("clmm: cannot write in read-only mode")
	}
	if suppliedGas < GasRouterIncreaseLiquidity {
		return nil, 0, fmt.Errorf("clmm: out of gas")
	}
	if len(input) < 6*word {
		return nil, suppliedGas - GasRouterIncreaseLiquidity, fmt.Errorf("clmm: increase_liquidity input too short")
	}

	now := readUint64(input, 0)
	c.manager.bindDB(db, now)

	tokenID := readUint64(input, 1)
	amount0Desired, amount1Desired := readUint256(input, 2), readUint256(input, 3)
	amount0Min, amount1Min := readUint256(input, 4), readUint256(input, 5)

	liquidity, amount0, amount1, err := c.manager.Router.IncreaseLiquidity(caller, tokenID, amount0Desired, amount1Desired, amount0Min, amount1Min, now, now)
	if err != nil {
		return nil, suppliedGas - GasRouterIncreaseLiquidity, err
	}

	out := make([]byte, 3*word)
	writeUint256(out, 0, liquidity)
	writeBig(out, 1, amount0)
	writeBig(out, 2, amount1)
	return out, suppliedGas - GasRouterIncreaseLiquidity, nil
}

func (c *CLMMContract) runRouterDecreaseLiquidity(db *stateAdapter, caller common.Address, input []byte, suppliedGas uint64, readOnly bool) ([]byte, uint64, error) {
	if readOnly {
		return nil, suppliedGas, fmt.Errorf("clmm: cannot write in read-only mode")
	}
	if suppliedGas < GasRouterDecreaseLiquidity {
		return nil, 0, fmt.Errorf("clmm: out of gas")
	}
	if len(input) < 5*word {
		return nil, suppliedGas - GasRouterDecreaseLiquidity, fmt.Errorf("clmm: decrease_liquidity input too short")
	}

	now := readUint64(input, 0)
	c.manager.bindDB(db, now)

	tokenID := readUint64(input, 1)
	liquidity := readUint256(input, 2)
	amount0Min, amount1Min := readUint256(input, 3), readUint256(input, 4)

	amount0, amount1, err := c.manager.Router.DecreaseLiquidity(caller, tokenID, liquidity, amount0Min, amount1Min, now, now)
	if err != nil {
		return nil, suppliedGas - GasRouterDecreaseLiquidity, err
	}

	out := make([]byte, 2*word)
	writeBig(out, 0, amount0)
	writeBig(out, 1, amount1)
	return out, suppliedGas - GasRouterDecreaseLiquidity, nil
}

func (c *CLMMContract) runRouterCollect(db *stateAdapter, caller common.Address, input []byte, suppliedGas uint64, readOnly bool) ([]byte, uint64, error) {
	if readOnly {
		return nil, suppliedGas, fmt.Errorf("clmm: cannot write in read-only mode")
	}
	if suppliedGas < GasRouterCollect {
		return nil, 0, fmt.Errorf("clmm: out of gas")
	}
	if len(input) < 5*word {
		return nil, suppliedGas - GasRouterCollect, fmt.Errorf("clmm: router collect input too short")
	}

	now := readUint64(input, 0)
	c.manager.bindDB(db, now)

	tokenID := readUint64(input, 1)
	recipient := readAddress(input, 2)
	amount0Max, amount1Max := readUint256(input, 3), readUint256(input, 4)

	amount0, amount1, err := c.manager.Router.Collect(caller, tokenID, recipient, amount0Max, amount1Max, now)
	if err != nil {
		return nil, suppliedGas - GasRouterCollect, err
	}

	out := make([]byte, 2*word)
	writeUint256(out, 0, amount0)
	writeUint256(out, 1, amount1)
	return out, suppliedGas - GasRouterCollect, nil
}

func (c *CLMMContract) runRouterBurn(caller common.Address, input []byte, suppliedGas uint64, readOnly bool) ([]byte, uint64, error) {
	if readOnly {
		return nil, suppliedGas, fmt.Errorf("clmm: cannot write in read-only mode")
	}
	if suppliedGas < GasRouterBurn {
		return nil, 0, fmt.Errorf("clmm: out of gas")
	}
	if len(input) < word {
		return nil, suppliedGas - GasRouterBurn, fmt.Errorf("clmm: router burn input too short")
	}
	tokenID := readUint64(input, 0)
	if err := c.manager.Router.Burn(caller, tokenID); err != nil {
		return nil, suppliedGas - GasRouterBurn, err
	}
	return nil, suppliedGas - GasRouterBurn, nil
}

func (c *CLMMContract) runRouterApprove(caller common.Address, input []byte, suppliedGas uint64, readOnly bool) ([]byte, uint64, error) {
	if readOnly {
		return nil, suppliedGas, fmt.Errorf("clmm: cannot write in read-only mode")
	}
	if suppliedGas < GasRouterBurn {
		return nil, 0, fmt.Errorf("clmm: out of gas")
	}
	if len(input) < 2*word {
		return nil, suppliedGas - GasRouterBurn, fmt.Errorf("clmm: approve input too short")
	}
	tokenID := readUint64(input, 0)
	operator := readAddress(input, 1)
	if err := c.manager.Router.Approve(caller, tokenID, operator); err != nil {
		return nil, suppliedGas - GasRouterBurn, err
	}
	return nil, suppliedGas - GasRouterBurn, nil
}

func (c *CLMMContract) runExactInputSingle(db *stateAdapter, caller common.Address, input []byte, suppliedGas uint64, readOnly bool) ([]byte, uint64, error) {
	if readOnly {
		return nil, suppliedGas, fmt.Errorf("clmm: cannot write in read-only mode")
	}
	if suppliedGas < GasRouterExactInputSingle {
		return nil, 0, fmt.Errorf("clmm: out of gas")
	}
	if len(input) < 8*word {
		return nil, suppliedGas - GasRouterExactInputSingle, fmt.Errorf("clmm: exact_input_single input too short")
	}

	now := readUint64(input, 0)
	c.manager.bindDB(db, now)

	params := router.ExactInputSingleParams{
		TokenIn:           readAddress(input, 1),
		TokenOut:          readAddress(input, 2),
		Fee:               readUint32(input, 3),
		Recipient:         readAddress(input, 4),
		Deadline:          now,
		AmountIn:          readUint256(input, 5),
		AmountOutMinimum:  readUint256(input, 6),
		SqrtPriceLimitX96: readUint256(input, 7),
	}
	amountOut, err := c.manager.Router.ExactInputSingle(caller, params, now)
	if err != nil {
		return nil, suppliedGas - GasRouterExactInputSingle, err
	}
	out := make([]byte, word)
	writeUint256(out, 0, amountOut)
	return out, suppliedGas - GasRouterExactInputSingle, nil
}

func (c *CLMMContract) runExactOutputSingle(db *stateAdapter, caller common.Address, input []byte, suppliedGas uint64, readOnly bool) ([]byte, uint64, error) {
	if readOnly {
		return nil, suppliedGas, fmt.Errorf("clmm: cannot write in read-only mode")
	}
	if suppliedGas < GasRouterExactOutputSingle {
		return nil, 0, fmt.Errorf("clmm: out of gas")
	}
	if len(input) < 8*word {
		return nil, suppliedGas - GasRouterExactOutputSingle, fmt.Errorf("clmm: exact_output_single input too short")
	}

	now := readUint64(input, 0)
	c.manager.bindDB(db, now)

	params := router.ExactOutputSingleParams{
		TokenIn:           readAddress(input, 1),
		TokenOut:          readAddress(input, 2),
		Fee:               readUint32(input, 3),
		Recipient:         readAddress(input, 4),
		Deadline:          now,
		AmountOut:         readUint256(input, 5),
		AmountInMaximum:   readUint256(input, 6),
		SqrtPriceLimitX96: readUint256(input, 7),
	}
	amountIn, err := c.manager.Router.ExactOutputSingle(caller, params, now)
	if err != nil {
		return nil, suppliedGas - GasRouterExactOutputSingle, err
	}
	out := make([]byte, word)
	writeUint256(out, 0, amountIn)
	return out, suppliedGas - GasRouterExactOutputSingle, nil
}

// runExactInput and runExactOutput share a layout: [now][recipient]
// [amount][amountLimit][pathLen][path bytes...], where pathLen is the
// encoded path's length in bytes.
func (c *CLMMContract) runExactInput(db *stateAdapter, caller common.Address, input []byte, suppliedGas uint64, readOnly bool) ([]byte, uint64, error) {
	if readOnly {
		return nil, suppliedGas, fmt.Errorf("clmm: cannot write in read-only mode")
	}
	if len(input) < 5*word {
		return nil, suppliedGas, fmt.Errorf("clmm: exact_input input too short")
	}
	now := readUint64(input, 0)
	recipient := readAddress(input, 1)
	amountIn := readUint256(input, 2)
	amountOutMinimum := readUint256(input, 3)
	pathLen := int(readUint32(input, 4))
	if len(input) < 5*word+pathLen {
		return nil, suppliedGas, fmt.Errorf("clmm: exact_input path truncated")
	}
	path := input[5*word : 5*word+pathLen]
	numHops := router.NumPools(path)
	gasCost := GasRouterExactInputSingle + uint64(numHops-1)*GasRouterExactInputHop
	if suppliedGas < gasCost {
		return nil, 0, fmt.Errorf("clmm: out of gas")
	}

	c.manager.bindDB(db, now)
	amountOut, err := c.manager.Router.ExactInput(caller, router.ExactInputParams{
		Path:             path,
		Recipient:        recipient,
		Deadline:         now,
		AmountIn:         amountIn,
		AmountOutMinimum: amountOutMinimum,
	}, now)
	if err != nil {
		return nil, suppliedGas - gasCost, err
	}
	out := make([]byte, word)
	writeUint256(out, 0, amountOut)
	return out, suppliedGas - gasCost, nil
}

func (c *CLMMContract) runExactOutput(db *stateAdapter, caller common.Address, input []byte, suppliedGas uint64, readOnly bool) ([]byte, uint64, error) {
	if readOnly {
		return nil, suppliedGas, fmt.Errorf("clmm: cannot write in read-only mode")
	}
	if len(input) < 5*word {
		return nil, suppliedGas, fmt.Errorf("clmm: exact_output input too short")
	}
	now := readUint64(input, 0)
	recipient := readAddress(input, 1)
	amountOut := readUint256(input, 2)
	amountInMaximum := readUint256(input, 3)
	pathLen := int(readUint32(input, 4))
	if len(input) < 5*word+pathLen {
		return nil, suppliedGas, fmt.Errorf("clmm: exact_output path truncated")
	}
	path := input[5*word : 5*word+pathLen]
	numHops := router.NumPools(path)
	gasCost := GasRouterExactOutputSingle + uint64(numHops-1)*GasRouterExactOutputHop
	if suppliedGas < gasCost {
		return nil, 0, fmt.Errorf("clmm: out of gas")
	}

	c.manager.bindDB(db, now)
	amountIn, err := c.manager.Router.ExactOutput(caller, router.ExactOutputParams{
		Path:            path,
		Recipient:       recipient,
		Deadline:        now,
		AmountOut:       amountOut,
		AmountInMaximum: amountInMaximum,
	}, now)
	if err != nil {
		return nil, suppliedGas - gasCost, err
	}
	out := make([]byte, word)
	writeUint256(out, 0, amountIn)
	return out, suppliedGas - gasCost, nil
}

