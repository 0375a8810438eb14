// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import (
	"testing"

	"github.com/holiman/uint256"
)

func bitSet(word *uint256.Int, bit uint8) bool {
	mask := new(uint256.Int).Lsh(uint256.NewInt(1), uint(bit))
	return !new(uint256.Int).And(word, mask).IsZero()
}

func TestFlipTickTogglesBit(t *testing.T) {
	p, _ := newTestPool()
	tick := int32(60)

	if err := p.FlipTick(tick, testTickSpacing); err != nil {
		t.Fatalf("FlipTick: %v", err)
	}
	wordPos, bitPos := bitmapPosition(tick / testTickSpacing)
	word := p.getBitmapWord(wordPos)
	if !bitSet(word, bitPos) {
		t.Fatalf("bit %d in word %d not set after FlipTick", bitPos, wordPos)
	}

	if err := p.FlipTick(tick, testTickSpacing); err != nil {
		t.Fatalf("FlipTick (untoggle): %v", err)
	}
	word = p.getBitmapWord(wordPos)
	if bitSet(word, bitPos) {
		t.Fatalf("bit %d in word %d still set after second FlipTick", bitPos, wordPos)
	}
}

func TestFlipTickRejectsUnaligned(t *testing.T) {
	p, _ := newTestPool()
	if err := p.FlipTick(61, testTickSpacing); err != ErrTickNotAligned {
		t.Fatalf("FlipTick(unaligned) = %v, want ErrTickNotAligned", err)
	}
}

func TestNextInitializedTickWithinOneWordLte(t *testing.T) {
	p, _ := newTestPool()
	for _, tick := range []int32{-180, 60, 300} {
		if err := p.FlipTick(tick, testTickSpacing); err != nil {
			t.Fatalf("FlipTick(%d): %v", tick, err)
		}
	}

	next, initialized := p.NextInitializedTickWithinOneWord(500, testTickSpacing, true)
	if !initialized {
		t.Fatalf("expected an initialized tick at or below 500")
	}
	if next != 300 {
		t.Fatalf("NextInitializedTickWithinOneWord(500, lte) = %d, want 300", next)
	}
}

func TestNextInitializedTickWithinOneWordGt(t *testing.T) {
	p, _ := newTestPool()
	for _, tick := range []int32{-180, 60, 300} {
		if err := p.FlipTick(tick, testTickSpacing); err != nil {
			t.Fatalf("FlipTick(%d): %v", tick, err)
		}
	}

	next, initialized := p.NextInitializedTickWithinOneWord(0, testTickSpacing, false)
	if !initialized {
		t.Fatalf("expected an initialized tick strictly above 0")
	}
	if next != 60 {
		t.Fatalf("NextInitializedTickWithinOneWord(0, gt) = %d, want 60", next)
	}
}

func TestNextInitializedTickWithinOneWordEmptyWord(t *testing.T) {
	p, _ := newTestPool()
	// No ticks flipped: lte search must report not-initialized and land on
	// the word's own lower boundary.
	_, initialized := p.NextInitializedTickWithinOneWord(500, testTickSpacing, true)
	if initialized {
		t.Fatalf("expected no initialized tick in an empty bitmap word")
	}
}
