// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package clmm

import (
	"testing"

	"github.com/luxfi/precompile/clmm/factory"
)

func TestManagerCreatePoolNormalizesAndRegisters(t *testing.T) {
	m := NewManager(ContractPoolManagerAddress, testUserA)
	db := newMockStateDB()

	p, err := m.CreatePool(db, 1, testTokenY, testTokenX, 3000)
	if err != nil {
		t.Fatalf("CreatePool: %v", err)
	}
	if p.Token0 != testTokenX || p.Token1 != testTokenY {
		t.Fatalf("CreatePool did not normalize token order: token0=%s token1=%s", p.Token0, p.Token1)
	}
}

func TestManagerCreatePoolRejectsUnregisteredFeeTier(t *testing.T) {
	m := NewManager(ContractPoolManagerAddress, testUserA)
	db := newMockStateDB()
	if _, err := m.CreatePool(db, 1, testTokenX, testTokenY, 777); err != factory.ErrFeeTierMissing {
		t.Fatalf("CreatePool(unregistered fee) = %v, want ErrFeeTierMissing", err)
	}
}

func TestManagerPoolLookupRoundTrips(t *testing.T) {
	m := NewManager(ContractPoolManagerAddress, testUserA)
	db := newMockStateDB()

	created, err := m.CreatePool(db, 1, testTokenX, testTokenY, 3000)
	if err != nil {
		t.Fatalf("CreatePool: %v", err)
	}

	got, err := m.Pool(db, 2, testTokenY, testTokenX, 3000)
	if err != nil {
		t.Fatalf("Pool lookup: %v", err)
	}
	if got != created {
		t.Fatalf("Pool lookup did not return the pool CreatePool registered")
	}
}

func TestManagerPoolLookupMissingReturnsErr(t *testing.T) {
	m := NewManager(ContractPoolManagerAddress, testUserA)
	db := newMockStateDB()
	if _, err := m.Pool(db, 1, testTokenX, testTokenY, 3000); err != factory.ErrFeeTierMissing {
		t.Fatalf("Pool lookup before CreatePool = %v, want ErrFeeTierMissing", err)
	}
}
