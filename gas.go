// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package clmm

// Gas costs per precompile operation, following the teacher's flat
// per-selector pricing (dex/types.go's gas constant block) rather than a
// dynamic cost model: the swap-step loop and tick-crossing work is bounded by
// EVM call gas already supplied by the caller, so a single constant per
// selector is charged up front and the operation aborts if it is
// insufficient, exactly as runSwap/runModifyLiquidity do in dex/module.go.
const (
	GasPoolInit         uint64 = 60_000 // init_pool + init_pool_price
	GasMint             uint64 = 120_000 // mint (tick update + position update + callback)
	GasBurn             uint64 = 90_000  // burn
	GasCollect          uint64 = 40_000  // collect
	GasSwap             uint64 = 80_000  // swap (per tick crossed is not separately metered)
	GasFlash            uint64 = 30_000  // flash
	GasSetFeeProtocol   uint64 = 20_000  // set_fee_protocol
	GasCollectProtocol  uint64 = 40_000  // collect_protocol
	GasGrowObservations uint64 = 25_000  // increase_observation_cardinality_next
	GasObserve          uint64 = 5_000   // observe / snapshot_cumulatives_inside (read-only)
	GasPoolLookup       uint64 = 500     // get_pool / get_slot0 (read-only)

	GasCreatePool       uint64 = 200_000 // factory create_pool (deploys a new Pool)
	GasEnableFeeAmount  uint64 = 30_000  // factory enable_fee_amount

	GasRouterMint              uint64 = 150_000 // position-manager mint (wraps pool Mint)
	GasRouterIncreaseLiquidity uint64 = 130_000
	GasRouterDecreaseLiquidity uint64 = 100_000
	GasRouterCollect           uint64 = 50_000
	GasRouterBurn              uint64 = 20_000
	GasRouterExactInputSingle  uint64 = 90_000
	GasRouterExactOutputSingle uint64 = 90_000
	GasRouterExactInputHop     uint64 = 70_000 // additional gas per hop beyond the first
	GasRouterExactOutputHop    uint64 = 70_000
)
