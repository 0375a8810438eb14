// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import (
	"github.com/holiman/uint256"
	"github.com/luxfi/precompile/clmm/ammmath"
)

// bitmapPosition splits a compressed tick into (word, bit).
func bitmapPosition(tick int32) (int16, uint8) {
	return int16(tick >> 8), uint8(((tick % 256) + 256) % 256)
}

// FlipTick toggles the initialized bit for tick in the bitmap. tick must be
// aligned to tickSpacing.
func (p *Pool) FlipTick(tick, tickSpacing int32) error {
	if tick%tickSpacing != 0 {
		return ErrTickNotAligned
	}
	wordPos, bitPos := bitmapPosition(tick / tickSpacing)
	mask := new(uint256.Int).Lsh(uint256.NewInt(1), uint(bitPos))
	word := p.getBitmapWord(wordPos)
	p.TickBitmap[wordPos] = new(uint256.Int).Xor(word, mask)
	return nil
}

// NextInitializedTickWithinOneWord finds the next tick, within the same
// bitmap word as tick, that may be initialized: searching at-or-below tick
// if lte, or strictly above otherwise. The returned bool reports whether a
// bit was actually set in that word — if not, the caller must advance past
// the returned boundary tick and search again.
func (p *Pool) NextInitializedTickWithinOneWord(tick, tickSpacing int32, lte bool) (int32, bool) {
	compressed := tick / tickSpacing
	if tick < 0 && tick%tickSpacing != 0 {
		compressed--
	}

	if lte {
		wordPos, bitPos := bitmapPosition(compressed)
		mask := new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), uint(bitPos)+1), uint256.NewInt(1))
		masked := new(uint256.Int).And(p.getBitmapWord(wordPos), mask)
		initialized := !masked.IsZero()
		if initialized {
			msb, _ := ammmath.MostSignificantBit(masked)
			next := (compressed - int32(bitPos-msb)) * tickSpacing
			return next, true
		}
		next := (compressed - int32(bitPos)) * tickSpacing
		return next, false
	}

	wordPos, bitPos := bitmapPosition(compressed + 1)
	mask := new(uint256.Int).Not(new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), uint(bitPos)), uint256.NewInt(1)))
	masked := new(uint256.Int).And(p.getBitmapWord(wordPos), mask)
	initialized := !masked.IsZero()
	if initialized {
		lsb, _ := ammmath.LeastSignificantBit(masked)
		next := (compressed + 1 + int32(lsb-bitPos)) * tickSpacing
		return next, true
	}
	next := (compressed + 1 + int32(255-bitPos)) * tickSpacing
	return next, false
}
