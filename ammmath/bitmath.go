// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ammmath

import "github.com/holiman/uint256"

// MostSignificantBit returns the index (0-255) of the highest set bit of x.
// x must be nonzero.
func MostSignificantBit(x *uint256.Int) (uint8, error) {
	if x.IsZero() {
		return 0, ErrZeroArgument
	}
	r := uint16(0)
	v := new(uint256.Int).Set(x)

	shift := func(width uint16, threshold *uint256.Int) {
		if v.Cmp(threshold) >= 0 {
			v.Rsh(v, uint(width))
			r += width
		}
	}

	shift(128, new(uint256.Int).Lsh(uint256.NewInt(1), 128))
	shift(64, new(uint256.Int).Lsh(uint256.NewInt(1), 64))
	shift(32, new(uint256.Int).Lsh(uint256.NewInt(1), 32))
	shift(16, new(uint256.Int).Lsh(uint256.NewInt(1), 16))
	shift(8, new(uint256.Int).Lsh(uint256.NewInt(1), 8))
	shift(4, new(uint256.Int).Lsh(uint256.NewInt(1), 4))
	shift(2, new(uint256.Int).Lsh(uint256.NewInt(1), 2))
	shift(1, new(uint256.Int).Lsh(uint256.NewInt(1), 1))

	return uint8(r), nil
}

// LeastSignificantBit returns the index (0-255) of the lowest set bit of x.
// x must be nonzero.
func LeastSignificantBit(x *uint256.Int) (uint8, error) {
	if x.IsZero() {
		return 0, ErrZeroArgument
	}
	r := uint16(255)
	v := new(uint256.Int).Set(x)

	shiftLow := func(width uint16, mask *uint256.Int) {
		lo := new(uint256.Int).And(v, mask)
		if !lo.IsZero() {
			r -= width
		} else {
			v.Rsh(v, uint(width))
		}
	}

	mask128 := new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), 128), uint256.NewInt(1))
	mask64 := new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), 64), uint256.NewInt(1))
	mask32 := new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), 32), uint256.NewInt(1))
	mask16 := new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), 16), uint256.NewInt(1))
	mask8 := new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), 8), uint256.NewInt(1))
	mask4 := new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), 4), uint256.NewInt(1))
	mask2 := new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), 2), uint256.NewInt(1))
	mask1 := uint256.NewInt(1)

	shiftLow(128, mask128)
	shiftLow(64, mask64)
	shiftLow(32, mask32)
	shiftLow(16, mask16)
	shiftLow(8, mask8)
	shiftLow(4, mask4)
	shiftLow(2, mask2)
	shiftLow(1, mask1)

	return uint8(r), nil
}
