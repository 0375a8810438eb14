// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package router

import (
	"bytes"
	"testing"

	"github.com/luxfi/geth/common"
)

var (
	pathTokenA = common.HexToAddress("0x1000000000000000000000000000000000000a")
	pathTokenB = common.HexToAddress("0x1000000000000000000000000000000000000b")
	pathTokenC = common.HexToAddress("0x1000000000000000000000000000000000000c")
)

func TestEncodeDecodeSingleHopRoundTrip(t *testing.T) {
	encoded, err := EncodePath([]common.Address{pathTokenA, pathTokenB}, []uint32{3000})
	if err != nil {
		t.Fatalf("EncodePath: %v", err)
	}
	if HasMultiplePools(encoded) {
		t.Fatalf("a single-hop path should not report HasMultiplePools")
	}
	tokenIn, tokenOut, fee, err := DecodeFirstPool(encoded)
	if err != nil {
		t.Fatalf("DecodeFirstPool: %v", err)
	}
	if tokenIn != pathTokenA || tokenOut != pathTokenB || fee != 3000 {
		t.Fatalf("DecodeFirstPool = (%s,%s,%d), want (%s,%s,3000)", tokenIn, tokenOut, fee, pathTokenA, pathTokenB)
	}
}

func TestEncodeDecodeMultiHopRoundTrip(t *testing.T) {
	tokens := []common.Address{pathTokenA, pathTokenB, pathTokenC}
	fees := []uint32{500, 3000}
	encoded, err := EncodePath(tokens, fees)
	if err != nil {
		t.Fatalf("EncodePath: %v", err)
	}
	if !HasMultiplePools(encoded) {
		t.Fatalf("a two-hop path should report HasMultiplePools")
	}
	if n := NumPools(encoded); n != 2 {
		t.Fatalf("NumPools = %d, want 2", n)
	}

	tokenIn, tokenOut, fee, err := DecodeFirstPool(encoded)
	if err != nil {
		t.Fatalf("DecodeFirstPool: %v", err)
	}
	if tokenIn != pathTokenA || tokenOut != pathTokenB || fee != 500 {
		t.Fatalf("first hop = (%s,%s,%d), want (%s,%s,500)", tokenIn, tokenOut, fee, pathTokenA, pathTokenB)
	}

	rest := SkipToken(encoded)
	tokenIn2, tokenOut2, fee2, err := DecodeFirstPool(rest)
	if err != nil {
		t.Fatalf("DecodeFirstPool (second hop): %v", err)
	}
	if tokenIn2 != pathTokenB || tokenOut2 != pathTokenC || fee2 != 3000 {
		t.Fatalf("second hop = (%s,%s,%d), want (%s,%s,3000)", tokenIn2, tokenOut2, fee2, pathTokenB, pathTokenC)
	}
}

func TestGetFirstPoolTruncatesToOneHop(t *testing.T) {
	tokens := []common.Address{pathTokenA, pathTokenB, pathTokenC}
	fees := []uint32{500, 3000}
	encoded, err := EncodePath(tokens, fees)
	if err != nil {
		t.Fatalf("EncodePath: %v", err)
	}
	first := GetFirstPool(encoded)
	if len(first) != PopOffset {
		t.Fatalf("len(GetFirstPool) = %d, want %d", len(first), PopOffset)
	}
	tokenIn, tokenOut, fee, err := DecodeFirstPool(first)
	if err != nil {
		t.Fatalf("DecodeFirstPool(first): %v", err)
	}
	if tokenIn != pathTokenA || tokenOut != pathTokenB || fee != 500 {
		t.Fatalf("GetFirstPool hop = (%s,%s,%d), want (%s,%s,500)", tokenIn, tokenOut, fee, pathTokenA, pathTokenB)
	}
}

func TestReversePathRoundTrips(t *testing.T) {
	tokens := []common.Address{pathTokenA, pathTokenB, pathTokenC}
	fees := []uint32{500, 3000}
	encoded, err := EncodePath(tokens, fees)
	if err != nil {
		t.Fatalf("EncodePath: %v", err)
	}

	reversed, err := ReversePath(encoded)
	if err != nil {
		t.Fatalf("ReversePath: %v", err)
	}

	tokenIn, tokenOut, fee, err := DecodeFirstPool(reversed)
	if err != nil {
		t.Fatalf("DecodeFirstPool(reversed): %v", err)
	}
	if tokenIn != pathTokenC || tokenOut != pathTokenB || fee != 3000 {
		t.Fatalf("reversed first hop = (%s,%s,%d), want (%s,%s,3000)", tokenIn, tokenOut, fee, pathTokenC, pathTokenB)
	}

	roundTrip, err := ReversePath(reversed)
	if err != nil {
		t.Fatalf("ReversePath (back): %v", err)
	}
	if !bytes.Equal(roundTrip, encoded) {
		t.Fatalf("double ReversePath did not recover the original encoding")
	}
}

func TestDecodeFirstPoolTooShort(t *testing.T) {
	if _, _, _, err := DecodeFirstPool(make([]byte, PopOffset-1)); err != ErrPathTooShort {
		t.Fatalf("DecodeFirstPool(short) = %v, want ErrPathTooShort", err)
	}
}

func TestIsTokenSortedOrdersByAddress(t *testing.T) {
	lo, hi := pathTokenA, pathTokenB
	if lo.Cmp(hi) >= 0 {
		t.Fatalf("test fixture assumption broken: pathTokenA must sort below pathTokenB")
	}
	if !IsTokenSorted(lo, hi) {
		t.Fatalf("IsTokenSorted(lo,hi) = false, want true")
	}
	if IsTokenSorted(hi, lo) {
		t.Fatalf("IsTokenSorted(hi,lo) = true, want false")
	}
}
