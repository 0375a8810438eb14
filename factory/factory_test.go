// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package factory

import (
	"math/big"
	"testing"

	"github.com/luxfi/geth/common"

	"github.com/luxfi/precompile/clmm/pool"
)

type stubCallbacks struct{}

func (stubCallbacks) MintCallback(amount0, amount1 *big.Int, data []byte) error { return nil }
func (stubCallbacks) SwapCallback(amount0Delta, amount1Delta *big.Int, data []byte) error {
	return nil
}
func (stubCallbacks) FlashCallback(fee0, fee1 *big.Int, data []byte) error { return nil }

type stubToken struct{}

func (stubToken) BalanceOf(token, owner common.Address) *big.Int { return new(big.Int) }
func (stubToken) Transfer(token, to common.Address, amount *big.Int) error { return nil }

var (
	testOwner    = common.HexToAddress("0x00000000000000000000000000000000000001")
	testOther    = common.HexToAddress("0x00000000000000000000000000000000000002")
	testFactoryAddr = common.HexToAddress("0x000000000000000000000000000000000000f0")
	testTokenA   = common.HexToAddress("0x1000000000000000000000000000000000000a")
	testTokenB   = common.HexToAddress("0x1000000000000000000000000000000000000b")
)

func TestNewPoolFactorySeedsDefaultFeeTiers(t *testing.T) {
	f := NewPoolFactory(testOwner)
	for fee, wantSpacing := range map[uint32]int32{500: 10, 3000: 60, 10000: 200} {
		spacing, ok := f.TickSpacingForFee(fee)
		if !ok {
			t.Fatalf("fee tier %d not seeded", fee)
		}
		if spacing != wantSpacing {
			t.Fatalf("tick spacing for fee %d = %d, want %d", fee, spacing, wantSpacing)
		}
	}
	if f.Owner != testOwner {
		t.Fatalf("Owner = %s, want %s", f.Owner, testOwner)
	}
}

func TestEnableFeeAmountGatedByOwner(t *testing.T) {
	f := NewPoolFactory(testOwner)
	if err := f.EnableFeeAmount(testOther, 100, 1); err != ErrOnlyOwner {
		t.Fatalf("EnableFeeAmount by non-owner = %v, want ErrOnlyOwner", err)
	}
}

func TestEnableFeeAmountRejectsFeeTooLarge(t *testing.T) {
	f := NewPoolFactory(testOwner)
	if err := f.EnableFeeAmount(testOwner, 1_000_000, 1); err != ErrFactoryFeeTooLarge {
		t.Fatalf("EnableFeeAmount(fee=1_000_000) = %v, want ErrFactoryFeeTooLarge", err)
	}
}

func TestEnableFeeAmountRejectsBadTickSpacing(t *testing.T) {
	f := NewPoolFactory(testOwner)
	if err := f.EnableFeeAmount(testOwner, 100, 0); err != ErrTickSpacingInvalid {
		t.Fatalf("EnableFeeAmount(tickSpacing=0) = %v, want ErrTickSpacingInvalid", err)
	}
	if err := f.EnableFeeAmount(testOwner, 100, 16384); err != ErrTickSpacingInvalid {
		t.Fatalf("EnableFeeAmount(tickSpacing=16384) = %v, want ErrTickSpacingInvalid", err)
	}
}

func TestEnableFeeAmountRejectsDuplicate(t *testing.T) {
	f := NewPoolFactory(testOwner)
	if err := f.EnableFeeAmount(testOwner, 3000, 60); err != ErrFeeTierExists {
		t.Fatalf("EnableFeeAmount(existing fee 3000) = %v, want ErrFeeTierExists", err)
	}
}

func TestEnableFeeAmountRegistersNewTier(t *testing.T) {
	f := NewPoolFactory(testOwner)
	if err := f.EnableFeeAmount(testOwner, 100, 1); err != nil {
		t.Fatalf("EnableFeeAmount: %v", err)
	}
	spacing, ok := f.TickSpacingForFee(100)
	if !ok || spacing != 1 {
		t.Fatalf("TickSpacingForFee(100) = (%d,%v), want (1,true)", spacing, ok)
	}
}

func TestCreatePoolNormalizesTokenOrder(t *testing.T) {
	f := NewPoolFactory(testOwner)
	p, err := f.CreatePool(testFactoryAddr, testTokenB, testTokenA, 3000, stubCallbacks{}, stubToken{})
	if err != nil {
		t.Fatalf("CreatePool: %v", err)
	}
	if p.Token0 != testTokenA || p.Token1 != testTokenB {
		t.Fatalf("CreatePool did not normalize token order: token0=%s token1=%s", p.Token0, p.Token1)
	}
}

func TestCreatePoolRejectsSameToken(t *testing.T) {
	f := NewPoolFactory(testOwner)
	if _, err := f.CreatePool(testFactoryAddr, testTokenA, testTokenA, 3000, stubCallbacks{}, stubToken{}); err != ErrSameToken {
		t.Fatalf("CreatePool(token0==token1) = %v, want ErrSameToken", err)
	}
}

func TestCreatePoolRejectsZeroAddress(t *testing.T) {
	f := NewPoolFactory(testOwner)
	if _, err := f.CreatePool(testFactoryAddr, common.Address{}, testTokenA, 3000, stubCallbacks{}, stubToken{}); err != ErrZeroTokenAddress {
		t.Fatalf("CreatePool(token0=zero) = %v, want ErrZeroTokenAddress", err)
	}
}

func TestCreatePoolRejectsMissingFeeTier(t *testing.T) {
	f := NewPoolFactory(testOwner)
	if _, err := f.CreatePool(testFactoryAddr, testTokenA, testTokenB, 777, stubCallbacks{}, stubToken{}); err != ErrFeeTierMissing {
		t.Fatalf("CreatePool(unregistered fee) = %v, want ErrFeeTierMissing", err)
	}
}

func TestCreatePoolRejectsDuplicate(t *testing.T) {
	f := NewPoolFactory(testOwner)
	if _, err := f.CreatePool(testFactoryAddr, testTokenA, testTokenB, 3000, stubCallbacks{}, stubToken{}); err != nil {
		t.Fatalf("first CreatePool: %v", err)
	}
	if _, err := f.CreatePool(testFactoryAddr, testTokenB, testTokenA, 3000, stubCallbacks{}, stubToken{}); err != ErrPoolExists {
		t.Fatalf("duplicate CreatePool = %v, want ErrPoolExists", err)
	}
}

func TestGetPoolAddressLookup(t *testing.T) {
	f := NewPoolFactory(testOwner)
	created, err := f.CreatePool(testFactoryAddr, testTokenA, testTokenB, 3000, stubCallbacks{}, stubToken{})
	if err != nil {
		t.Fatalf("CreatePool: %v", err)
	}
	got := f.GetPoolAddress(testTokenB, testTokenA, 3000)
	if got != created {
		t.Fatalf("GetPoolAddress (reversed order) did not return the created pool")
	}
	if f.GetPoolAddress(testTokenA, testTokenB, 500) != nil {
		t.Fatalf("GetPoolAddress for an unregistered tier should return nil")
	}
}

func TestSetOwnerGatedAndTransfers(t *testing.T) {
	f := NewPoolFactory(testOwner)
	if err := f.SetOwner(testOther, testOther); err != ErrOnlyOwner {
		t.Fatalf("SetOwner by non-owner = %v, want ErrOnlyOwner", err)
	}
	if err := f.SetOwner(testOwner, testOther); err != nil {
		t.Fatalf("SetOwner: %v", err)
	}
	if f.Owner != testOther {
		t.Fatalf("Owner after transfer = %s, want %s", f.Owner, testOther)
	}
}

var _ pool.Callbacks = stubCallbacks{}
var _ pool.TokenContract = stubToken{}
