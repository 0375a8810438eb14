// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import (
	"github.com/holiman/uint256"
)

// transformObservation derives a new observation from the last one recorded,
// accumulating tick and seconds-per-liquidity over the elapsed time.
func transformObservation(last Observation, blockTime uint64, tick int32, liquidity *uint256.Int) Observation {
	delta := blockTime - last.BlockTimestamp
	l := liquidity
	if l.IsZero() {
		l = uint256.NewInt(1)
	}
	deltaShifted := new(uint256.Int).Lsh(uint256.NewInt(delta), 128)
	spl := new(uint256.Int).Add(last.SecondsPerLiquidityCumulativeX128, new(uint256.Int).Div(deltaShifted, l))
	return Observation{
		BlockTimestamp:                    blockTime,
		TickCumulative:                    last.TickCumulative + int64(tick)*int64(delta),
		SecondsPerLiquidityCumulativeX128: spl,
		Initialized:                       true,
	}
}

// InitializeOracle writes the first observation and returns the initial
// (cardinality, cardinality_next) = (1, 1).
func (p *Pool) InitializeOracle(now uint64) (uint16, uint16) {
	p.Observations = make([]Observation, 1)
	p.Observations[0] = Observation{
		BlockTimestamp:                    now,
		TickCumulative:                    0,
		SecondsPerLiquidityCumulativeX128: new(uint256.Int),
		Initialized:                       true,
	}
	return 1, 1
}

// WriteObservation appends a new observation to the ring buffer, growing the
// buffer's active cardinality if the caller has pre-funded more slots and
// the index has reached the end of the active window. No-op if called twice
// within the same timestamp.
func (p *Pool) WriteObservation(index uint16, blockTime uint64, tick int32, liquidity *uint256.Int, cardinality, cardinalityNext uint16) (uint16, uint16) {
	last := p.Observations[index]
	if last.BlockTimestamp == blockTime {
		return index, cardinality
	}

	cardinalityUpdated := cardinality
	if cardinalityNext > cardinality && index == cardinality-1 {
		cardinalityUpdated = cardinalityNext
	}

	indexUpdated := (index + 1) % cardinalityUpdated
	p.ensureObservationSlots(int(indexUpdated) + 1)
	p.Observations[indexUpdated] = transformObservation(last, blockTime, tick, liquidity)
	return indexUpdated, cardinalityUpdated
}

func (p *Pool) ensureObservationSlots(n int) {
	for len(p.Observations) < n {
		p.Observations = append(p.Observations, Observation{})
	}
}

// GrowOracle grows the ring buffer's pre-funded cardinality, seeding new
// slots' BlockTimestamp to 1 — a value that is neither zero nor a real past
// timestamp, marking the slot as "seen but pre-history" for the binary
// search to skip.
func (p *Pool) GrowOracle(current, next uint16) (uint16, error) {
	if current == 0 {
		return 0, ErrOracleNotInitialized
	}
	if next <= current {
		return current, nil
	}
	p.ensureObservationSlots(int(next))
	for i := current; i < next; i++ {
		p.Observations[i].BlockTimestamp = 1
	}
	return next, nil
}

// oracleLte orders two uint32 timestamps modulo 2**32, treating a value
// greater than `time` as belonging to the wrap before `time`.
func oracleLte(time uint64, a, b uint32) bool {
	t32 := uint32(time)
	if a <= t32 && b <= t32 {
		return a <= b
	}
	aAdjusted := uint64(a)
	if a <= t32 {
		aAdjusted = uint64(1)<<32 + uint64(a)
	}
	bAdjusted := uint64(b)
	if b <= t32 {
		bAdjusted = uint64(1)<<32 + uint64(b)
	}
	return aAdjusted <= bAdjusted
}

func (p *Pool) binarySearch(time uint64, target uint32, index, cardinality uint16) (Observation, Observation) {
	l := uint32(index+1) % uint32(cardinality)
	r := l + uint32(cardinality) - 1
	var i uint32
	var beforeOrAt, atOrAfter Observation
	for {
		i = (l + r) / 2
		beforeOrAt = p.Observations[i%uint32(cardinality)]
		if !beforeOrAt.Initialized {
			l = i + 1
			continue
		}
		atOrAfter = p.Observations[(i+1)%uint32(cardinality)]
		targetAtOrAfter := oracleLte(time, uint32(beforeOrAt.BlockTimestamp), target)
		if targetAtOrAfter && oracleLte(time, target, uint32(atOrAfter.BlockTimestamp)) {
			break
		}
		if !targetAtOrAfter {
			r = i - 1
		} else {
			l = i + 1
		}
	}
	return beforeOrAt, atOrAfter
}

func (p *Pool) getSurroundingObservations(time uint64, target uint32, tick int32, index uint16, liquidity *uint256.Int, cardinality uint16) (Observation, Observation, error) {
	beforeOrAt := p.Observations[index]
	if oracleLte(time, uint32(beforeOrAt.BlockTimestamp), target) {
		if beforeOrAt.BlockTimestamp == uint64(target) {
			return beforeOrAt, Observation{}, nil
		}
		return beforeOrAt, transformObservation(beforeOrAt, uint64(target), tick, liquidity), nil
	}

	beforeOrAt = p.Observations[(index+1)%cardinality]
	if !beforeOrAt.Initialized {
		beforeOrAt = p.Observations[0]
	}

	if !oracleLte(time, uint32(beforeOrAt.BlockTimestamp), target) {
		return Observation{}, Observation{}, ErrOracleTooOld
	}
	before, after := p.binarySearch(time, target, index, cardinality)
	return before, after, nil
}

// ObserveSingle returns the tick-cumulative and seconds-per-liquidity-
// cumulative as of `secondsAgo` before `now`.
func (p *Pool) ObserveSingle(now uint64, secondsAgo uint64, tick int32, index uint16, liquidity *uint256.Int, cardinality uint16) (int64, *uint256.Int, error) {
	if secondsAgo == 0 {
		last := p.Observations[index]
		if last.BlockTimestamp != now {
			last = transformObservation(last, now, tick, liquidity)
		}
		return last.TickCumulative, last.SecondsPerLiquidityCumulativeX128, nil
	}

	target := now - secondsAgo
	beforeOrAt, atOrAfter, err := p.getSurroundingObservations(now, uint32(target), tick, index, liquidity, cardinality)
	if err != nil {
		return 0, nil, err
	}

	if target == beforeOrAt.BlockTimestamp {
		return beforeOrAt.TickCumulative, beforeOrAt.SecondsPerLiquidityCumulativeX128, nil
	}
	if target == atOrAfter.BlockTimestamp {
		return atOrAfter.TickCumulative, atOrAfter.SecondsPerLiquidityCumulativeX128, nil
	}

	observationTimeDelta := atOrAfter.BlockTimestamp - beforeOrAt.BlockTimestamp
	targetDelta := target - beforeOrAt.BlockTimestamp
	tickCumulative := beforeOrAt.TickCumulative + (atOrAfter.TickCumulative-beforeOrAt.TickCumulative)/int64(observationTimeDelta)*int64(targetDelta)

	splDiff := new(uint256.Int).Sub(atOrAfter.SecondsPerLiquidityCumulativeX128, beforeOrAt.SecondsPerLiquidityCumulativeX128)
	splDiff.Mul(splDiff, uint256.NewInt(targetDelta))
	splDiff.Div(splDiff, uint256.NewInt(observationTimeDelta))
	spl := new(uint256.Int).Add(beforeOrAt.SecondsPerLiquidityCumulativeX128, splDiff)

	return tickCumulative, spl, nil
}

// Observe maps ObserveSingle over a list of seconds-ago offsets.
func (p *Pool) Observe(now uint64, secondsAgos []uint32, tick int32, index uint16, liquidity *uint256.Int, cardinality uint16) ([]int64, []*uint256.Int, error) {
	if cardinality == 0 {
		return nil, nil, ErrOracleNotInitialized
	}
	tickCumulatives := make([]int64, len(secondsAgos))
	spls := make([]*uint256.Int, len(secondsAgos))
	for i, sa := range secondsAgos {
		tc, spl, err := p.ObserveSingle(now, uint64(sa), tick, index, liquidity, cardinality)
		if err != nil {
			return nil, nil, err
		}
		tickCumulatives[i] = tc
		spls[i] = spl
	}
	return tickCumulatives, spls, nil
}
