// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import (
	"testing"

	"github.com/holiman/uint256"
)

func TestInitializeOracleSeedsFirstSlot(t *testing.T) {
	p, _ := newTestPool()
	cardinality, cardinalityNext := p.InitializeOracle(100)
	if cardinality != 1 || cardinalityNext != 1 {
		t.Fatalf("InitializeOracle cardinalities = (%d,%d), want (1,1)", cardinality, cardinalityNext)
	}
	if len(p.Observations) != 1 {
		t.Fatalf("len(Observations) = %d, want 1", len(p.Observations))
	}
	if !p.Observations[0].Initialized || p.Observations[0].BlockTimestamp != 100 {
		t.Fatalf("first observation = %+v, want initialized at t=100", p.Observations[0])
	}
}

func TestWriteObservationSameTimestampNoop(t *testing.T) {
	p, _ := newTestPool()
	p.InitializeOracle(100)
	index, cardinality := p.WriteObservation(0, 100, 5, uint256.NewInt(1), 1, 1)
	if index != 0 || cardinality != 1 {
		t.Fatalf("WriteObservation at same timestamp = (%d,%d), want (0,1)", index, cardinality)
	}
}

func TestWriteObservationGrowsOnCardinalityNext(t *testing.T) {
	p, _ := newTestPool()
	p.InitializeOracle(100)
	// Index 0 is the last slot of a cardinality-1 buffer, and cardinalityNext
	// (2) exceeds cardinality (1), so the write must grow the active window.
	index, cardinality := p.WriteObservation(0, 105, 5, uint256.NewInt(1), 1, 2)
	if cardinality != 2 {
		t.Fatalf("cardinality after grow-write = %d, want 2", cardinality)
	}
	if index != 1 {
		t.Fatalf("index after grow-write = %d, want 1", index)
	}
	if len(p.Observations) < 2 {
		t.Fatalf("Observations not grown to hold new index: len=%d", len(p.Observations))
	}
}

func TestGrowOracleRequiresInitialized(t *testing.T) {
	p, _ := newTestPool()
	if _, err := p.GrowOracle(0, 5); err != ErrOracleNotInitialized {
		t.Fatalf("GrowOracle before init = %v, want ErrOracleNotInitialized", err)
	}
}

func TestGrowOracleNonIncreasingIsNoop(t *testing.T) {
	p, _ := newTestPool()
	p.InitializeOracle(100)
	got, err := p.GrowOracle(1, 1)
	if err != nil {
		t.Fatalf("GrowOracle(1,1): %v", err)
	}
	if got != 1 {
		t.Fatalf("GrowOracle(1,1) = %d, want 1 (no shrink, no-op on equal)", got)
	}
}

func TestGrowOracleExpandsSlots(t *testing.T) {
	p, _ := newTestPool()
	p.InitializeOracle(100)
	got, err := p.GrowOracle(1, 4)
	if err != nil {
		t.Fatalf("GrowOracle(1,4): %v", err)
	}
	if got != 4 {
		t.Fatalf("GrowOracle(1,4) = %d, want 4", got)
	}
	if len(p.Observations) < 4 {
		t.Fatalf("Observations not grown: len=%d, want >=4", len(p.Observations))
	}
	for i := 1; i < 4; i++ {
		if p.Observations[i].BlockTimestamp != 1 {
			t.Fatalf("grown slot %d BlockTimestamp = %d, want sentinel 1", i, p.Observations[i].BlockTimestamp)
		}
	}
}

func TestOracleLteWrapsAroundUint32(t *testing.T) {
	// now's raw (unwrapped) value has passed 2**32 once already: a stored
	// timestamp near uint32 max predates the wrap and must order before a
	// small, post-wrap timestamp even though its raw integer value is larger.
	now := (uint64(1) << 32) + 5
	preWrap := ^uint32(0) - 5 // 4294967290
	postWrap := uint32(3)
	if !oracleLte(now, preWrap, postWrap) {
		t.Fatalf("oracleLte(%d, %d, %d) = false, want true (pre-wrap timestamp precedes post-wrap one)", now, preWrap, postWrap)
	}
	if oracleLte(now, postWrap, preWrap) {
		t.Fatalf("oracleLte(%d, %d, %d) = true, want false", now, postWrap, preWrap)
	}
}

func TestObserveSingleZeroSecondsAgoReturnsNow(t *testing.T) {
	p, _ := newTestPool()
	p.InitializeOracle(100)
	tc, spl, err := p.ObserveSingle(100, 0, 5, 0, uint256.NewInt(1_000), 1)
	if err != nil {
		t.Fatalf("ObserveSingle: %v", err)
	}
	if tc != 0 {
		t.Fatalf("tickCumulative at t=init = %d, want 0", tc)
	}
	if spl == nil || !spl.IsZero() {
		t.Fatalf("secondsPerLiquidityCumulative at t=init = %v, want 0", spl)
	}
}

func TestObserveRequiresNonZeroCardinality(t *testing.T) {
	p, _ := newTestPool()
	if _, _, err := p.Observe(100, []uint32{0}, 0, 0, uint256.NewInt(1), 0); err != ErrOracleNotInitialized {
		t.Fatalf("Observe with cardinality 0 = %v, want ErrOracleNotInitialized", err)
	}
}
