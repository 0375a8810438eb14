// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ammmath

import (
	"errors"
	"math/big"

	"github.com/holiman/uint256"
)

var (
	ErrTickOutOfRange     = errors.New("ammmath: tick out of range")
	ErrSqrtRatioOutOfRange = errors.New("ammmath: sqrt ratio out of range")
)

const (
	MinTick int32 = -887272
	MaxTick int32 = -MinTick
)

// MinSqrtRatio and MaxSqrtRatio bound the valid sqrt-price range. These
// values, and the magic constants in GetSqrtRatioAtTick/GetTickAtSqrtRatio
// below, must never be "cleaned up" — they are preserved bit-exactly from
// the reference derivation (original_source/math/src/tickmath.rs); drift
// here breaks every downstream invariant.
var (
	MinSqrtRatio = uint256.NewInt(4295128739)
	MaxSqrtRatio = mustFromDecimal("1461446703485210103287273052203988822378723970342")
)

func mustFromDecimal(s string) *uint256.Int {
	v, err := uint256.FromDecimal(s)
	if err != nil {
		panic(err)
	}
	return v
}

// sqrtRatioFactors holds the bit1..bit19 Q128 multipliers applied when the
// corresponding bit of |tick| is set; the bit0 multiplier is the loop's seed
// value, assigned directly from absTick&1 below.
var sqrtRatioFactors = [19]*big.Int{
	newBigFromString("340248342086729790484326174814286782778"),
	newBigFromString("340214320654664324051920982716015181260"),
	newBigFromString("340146287995602323631171512101879684304"),
	newBigFromString("340010263488231146823593991679159461444"),
	newBigFromString("339738377640345403697157401104375502016"),
	newBigFromString("339195258003219555707034227454543997025"),
	newBigFromString("338111622100601834656805679988414885971"),
	newBigFromString("335954724994790223023589805789778977700"),
	newBigFromString("331682121138379247127172139078559817300"),
	newBigFromString("323299236684853023288211250268160618739"),
	newBigFromString("307163716377032989948697243942600083929"),
	newBigFromString("277268403626896220162999269216087595045"),
	newBigFromString("225923453940442621947126027127485391333"),
	newBigFromString("149997214084966997727330242082538205943"),
	newBigFromString("66119101136024775622716233608466517926"),
	newBigFromString("12847376061809297530290974190478138313"),
	newBigFromString("485053260817066172746253684029974020"),
	newBigFromString("691415978906521570653435304214168"),
	newBigFromString("1404880482679654955896180642"),
}

func newBigFromString(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("ammmath: bad constant " + s)
	}
	return v
}

var bigMaxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
var bigOne = big.NewInt(1)

// GetSqrtRatioAtTick returns sqrt(1.0001^tick) * 2**96, the Q64.96 price at
// a tick. tick must be in [MinTick, MaxTick].
func GetSqrtRatioAtTick(tick int32) (*uint256.Int, error) {
	absTick := tick
	if absTick < 0 {
		absTick = -absTick
	}
	if absTick > MaxTick {
		return nil, ErrTickOutOfRange
	}

	var ratio *big.Int
	if absTick&1 != 0 {
		ratio = newBigFromString("340265354078544963557816517032075149313")
	} else {
		ratio = new(big.Int).Lsh(bigOne, 128)
	}

	for i, factor := range sqrtRatioFactors {
		bit := uint(i + 1)
		if absTick&(1<<bit) != 0 {
			ratio.Mul(ratio, factor)
			ratio.Rsh(ratio, 128)
		}
	}

	if tick > 0 {
		ratio = new(big.Int).Div(bigMaxUint256, ratio)
	}

	shifted := new(big.Int).Rsh(ratio, 32)
	remainder := new(big.Int).And(ratio, big.NewInt((1<<32)-1))
	if remainder.Sign() != 0 {
		shifted.Add(shifted, bigOne)
	}

	result, overflow := uint256.FromBig(shifted)
	if overflow {
		return nil, ErrSqrtRatioOutOfRange
	}
	return result, nil
}

// GetTickAtSqrtRatio returns the greatest tick t such that
// GetSqrtRatioAtTick(t) <= sqrtPriceX96. sqrtPriceX96 must be in
// [MinSqrtRatio, MaxSqrtRatio).
func GetTickAtSqrtRatio(sqrtPriceX96 *uint256.Int) (int32, error) {
	if sqrtPriceX96.Lt(MinSqrtRatio) || sqrtPriceX96.Cmp(MaxSqrtRatio) >= 0 {
		return 0, ErrSqrtRatioOutOfRange
	}

	ratio := new(big.Int).Lsh(sqrtPriceX96.ToBig(), 32)
	r := new(big.Int).Set(ratio)
	msb := 0

	thresholds := []struct {
		bit   int
		limit *big.Int
	}{
		{7, new(big.Int).Sub(new(big.Int).Lsh(bigOne, 128), bigOne)},
		{6, new(big.Int).Sub(new(big.Int).Lsh(bigOne, 64), bigOne)},
		{5, new(big.Int).Sub(new(big.Int).Lsh(bigOne, 32), bigOne)},
		{4, big.NewInt(0xFFFF)},
		{3, big.NewInt(0xFF)},
		{2, big.NewInt(15)},
		{1, big.NewInt(3)},
	}
	for _, th := range thresholds {
		if r.Cmp(th.limit) > 0 {
			f := 1 << uint(th.bit)
			msb |= f
			r.Rsh(r, uint(f))
		}
	}
	if r.Cmp(big.NewInt(1)) > 0 {
		msb |= 1
	}

	if msb >= 128 {
		r = new(big.Int).Rsh(ratio, uint(msb-127))
	} else {
		r = new(big.Int).Lsh(ratio, uint(127-msb))
	}

	log2 := new(big.Int).Lsh(big.NewInt(int64(msb)-128), 64)

	for shift := 63; shift >= 50; shift-- {
		r.Mul(r, r)
		r.Rsh(r, 127)
		f := new(big.Int).Rsh(r, 128)
		log2.Or(log2, new(big.Int).Lsh(f, uint(shift)))
		if shift > 50 {
			r.Rsh(r, uint(f.Uint64()))
		}
	}

	logSqrt10001 := new(big.Int).Mul(log2, newBigFromString("255738958999603826347141"))

	tickLow := new(big.Int).Sub(logSqrt10001, newBigFromString("3402992956809132418596140100660247210"))
	tickLow.Rsh(tickLow, 128)

	tickHigh := new(big.Int).Add(logSqrt10001, newBigFromString("291339464771989622907027621153398088495"))
	tickHigh.Rsh(tickHigh, 128)

	tl := int32(tickLow.Int64())
	th := int32(tickHigh.Int64())

	if tl == th {
		return tl, nil
	}
	atHigh, err := GetSqrtRatioAtTick(th)
	if err != nil {
		return 0, err
	}
	if atHigh.Cmp(sqrtPriceX96) <= 0 {
		return th, nil
	}
	return tl, nil
}
