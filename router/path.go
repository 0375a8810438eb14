// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package router implements the PositionManagerRouter: NFT-wrapped positions
// built on top of package pool, multi-hop path encode/decode, and the
// liquidity/amount conversion helpers used to quote mints from desired token
// amounts. Grounded on original_source/common/src/path.rs and
// original_source/router/router/src/periphery.
package router

import (
	"encoding/binary"
	"errors"

	"github.com/luxfi/geth/common"
)

// Path layout constants, matching original_source/common/src/path.rs exactly:
// a path is a sequence of (token, fee) pairs terminated by a final token,
// i.e. token0 | fee01 | token1 | fee12 | token2 | ...
const (
	AddrSize                = 32
	FeeSize                 = 4
	NextOffset              = AddrSize + FeeSize
	PopOffset               = NextOffset + AddrSize
	MultiplePoolsMinLength  = PopOffset + NextOffset
)

var ErrPathTooShort = errors.New("router: path shorter than one encoded pool")

// HasMultiplePools reports whether path encodes more than one hop.
func HasMultiplePools(path []byte) bool {
	return len(path) >= MultiplePoolsMinLength
}

// NumPools returns the number of hops encoded in path.
func NumPools(path []byte) int {
	return (len(path) - AddrSize) / NextOffset
}

// DecodeFirstPool extracts (tokenIn, tokenOut, fee) from the head of path.
func DecodeFirstPool(path []byte) (common.Address, common.Address, uint32, error) {
	if len(path) < PopOffset {
		return common.Address{}, common.Address{}, 0, ErrPathTooShort
	}
	tokenIn := common.BytesToAddress(path[0:AddrSize])
	fee := binary.LittleEndian.Uint32(path[AddrSize:NextOffset])
	tokenOut := common.BytesToAddress(path[NextOffset : NextOffset+AddrSize])
	return tokenIn, tokenOut, fee, nil
}

// GetFirstPool returns the byte slice encoding just the first hop.
func GetFirstPool(path []byte) []byte {
	if len(path) < PopOffset {
		return path
	}
	return path[0:PopOffset]
}

// SkipToken drops the leading (token, fee) pair, leaving the next hop's
// token at the head of the returned slice.
func SkipToken(path []byte) []byte {
	if len(path) < NextOffset {
		return nil
	}
	return path[NextOffset:]
}

// EncodePath builds a path from an alternating [token0, fee0, token1, fee1,
// ..., tokenN] sequence. Go-side addition: original_source only ever decodes
// paths built off-chain; the router still needs a way to construct one for
// tests and for internal reconstruction of the remaining hops.
func EncodePath(tokens []common.Address, fees []uint32) ([]byte, error) {
	if len(tokens) != len(fees)+1 {
		return nil, errors.New("router: len(tokens) must equal len(fees)+1")
	}
	buf := make([]byte, 0, len(tokens)*AddrSize+len(fees)*FeeSize)
	for i, fee := range fees {
		buf = append(buf, tokenWord(tokens[i])...)
		var feeBuf [4]byte
		binary.LittleEndian.PutUint32(feeBuf[:], fee)
		buf = append(buf, feeBuf[:]...)
	}
	buf = append(buf, tokenWord(tokens[len(tokens)-1])...)
	return buf, nil
}

// tokenWord left-pads a 20-byte address out to AddrSize, matching the
// 32-byte address words original_source/common/src/path.rs encodes (Casper
// addresses are natively 32 bytes; this Go port keeps the wire width so
// DecodeFirstPool's fixed AddrSize/FeeSize offsets stay correct).
func tokenWord(addr common.Address) []byte {
	var word [AddrSize]byte
	copy(word[AddrSize-common.AddressLength:], addr.Bytes())
	return word[:]
}

// ReversePath reverses the hop order of path, used when the exact-output
// multi-hop walk needs to traverse the caller's path back-to-front.
func ReversePath(path []byte) ([]byte, error) {
	n := NumPools(path)
	tokens := make([]common.Address, 0, n+1)
	fees := make([]uint32, 0, n)
	rest := path
	for i := 0; i < n; i++ {
		tokenIn, _, fee, err := DecodeFirstPool(rest)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tokenIn)
		fees = append(fees, fee)
		rest = SkipToken(rest)
	}
	tokens = append(tokens, common.BytesToAddress(rest[:AddrSize]))

	revTokens := make([]common.Address, len(tokens))
	revFees := make([]uint32, len(fees))
	for i, t := range tokens {
		revTokens[len(tokens)-1-i] = t
	}
	for i, f := range fees {
		revFees[len(fees)-1-i] = f
	}
	return EncodePath(revTokens, revFees)
}

// IsTokenSorted reports whether tokenIn is token0 of the (tokenIn, tokenOut)
// pair, i.e. the swap through this hop is zero_for_one.
func IsTokenSorted(tokenIn, tokenOut common.Address) bool {
	return tokenIn.Cmp(tokenOut) < 0
}
