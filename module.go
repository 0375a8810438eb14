// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package clmm wires the concentrated-liquidity pool/factory/router state
// machines (packages pool, factory, router) into a stateful precompile,
// bridging their in-memory model to the host StateDB and registering them
// with the module registry, following dex/module.go's
// configurator/Config/selector-dispatch pattern.
package clmm

import (
	"fmt"

	"github.com/luxfi/geth/common"
	"github.com/luxfi/precompile/contract"
	"github.com/luxfi/precompile/modules"
	"github.com/luxfi/precompile/precompileconfig"
)

var _ contract.Configurator = (*configurator)(nil)
var _ contract.StatefulPrecompiledContract = (*CLMMContract)(nil)

// ConfigKey is the key used in json config files to specify this precompile config.
const ConfigKey = "clmmConfig"

// Contract addresses. The DEX address range (0x0400-0x04FF) already hosts
// the teacher's own Uniswap-v4-style pool manager at 0x0400; this
// concentrated-liquidity implementation is a distinct contract family and
// takes the next sub-range rather than colliding with it.
var (
	ContractPoolManagerAddress = common.HexToAddress("0x0420000000000000000000000000000000000000")
	ContractFactoryAddress     = common.HexToAddress("0x0421000000000000000000000000000000000000")
	ContractPositionManagerAddress = common.HexToAddress("0x0422000000000000000000000000000000000000")
)

// CLMMPrecompile is the singleton instance, analogous to dex/module.go's
// DEXPrecompile.
var CLMMPrecompile = &CLMMContract{
	manager: NewManager(ContractPoolManagerAddress, common.Address{}),
}

// Module is the precompile module (pool manager + factory + position
// manager router, all dispatched through one contract address).
var Module = modules.Module{
	ConfigKey:    ConfigKey,
	Address:      ContractPoolManagerAddress,
	Contract:     CLMMPrecompile,
	Configurator: &configurator{},
}

// Method selectors. Pool operations occupy the 0x01xxxxxx range, factory
// operations 0x02xxxxxx, and position-manager/router operations 0x03xxxxxx,
// mirroring the teacher's flat uint32-selector convention (dex/module.go)
// rather than a Solidity-style 4-byte keccak selector, since this precompile
// has no ABI/interface source to hash against.
const (
	SelectorCreatePool                   uint32 = 0x01000000
	SelectorInitPrice                    uint32 = 0x01000001
	SelectorMint                         uint32 = 0x01000002
	SelectorBurn                         uint32 = 0x01000003
	SelectorCollect                      uint32 = 0x01000004
	SelectorSwap                         uint32 = 0x01000005
	SelectorFlash                        uint32 = 0x01000006
	SelectorSetFeeProtocol               uint32 = 0x01000007
	SelectorCollectProtocol              uint32 = 0x01000008
	SelectorIncreaseObservationCardinality uint32 = 0x01000009
	SelectorObserve                      uint32 = 0x0100000a
	SelectorSnapshotCumulativesInside    uint32 = 0x0100000b
	SelectorGetSlot0                     uint32 = 0x0100000c

	SelectorEnableFeeAmount uint32 = 0x02000000
	SelectorSetOwner        uint32 = 0x02000001
	SelectorGetPool         uint32 = 0x02000002

	SelectorRouterMint               uint32 = 0x03000000
	SelectorRouterIncreaseLiquidity  uint32 = 0x03000001
	SelectorRouterDecreaseLiquidity  uint32 = 0x03000002
	SelectorRouterCollect            uint32 = 0x03000003
	SelectorRouterBurn               uint32 = 0x03000004
	SelectorRouterApprove            uint32 = 0x03000005
	SelectorExactInputSingle         uint32 = 0x03000006
	SelectorExactInput               uint32 = 0x03000007
	SelectorExactOutputSingle         uint32 = 0x03000008
	SelectorExactOutput               uint32 = 0x03000009
)

type configurator struct{}

func init() {
	if err := modules.RegisterModule(Module); err != nil {
		panic(err)
	}
}

func (*configurator) MakeConfig() precompileconfig.Config {
	return new(Config)
}

func (*configurator) Configure(
	chainConfig precompileconfig.ChainConfig,
	cfg precompileconfig.Config,
	state contract.StateDB,
	blockContext contract.ConfigurationBlockContext,
) error {
	config, ok := cfg.(*Config)
	if !ok {
		return fmt.Errorf("expected config type %T, got %T: %v", &Config{}, cfg, cfg)
	}

	if config.FactoryOwner != (common.Address{}) {
		CLMMPrecompile.manager.Factory.Owner = config.FactoryOwner
	}
	for fee, tickSpacing := range config.ExtraFeeTiers {
		CLMMPrecompile.manager.Factory.EnableFeeAmount(config.FactoryOwner, fee, tickSpacing)
	}

	return nil
}

// Config implements the precompileconfig.Config interface.
type Config struct {
	Upgrade       precompileconfig.Upgrade `json:"upgrade,omitempty"`
	FactoryOwner  common.Address           `json:"factoryOwner,omitempty"`
	ExtraFeeTiers map[uint32]int32         `json:"extraFeeTiers,omitempty"`
}

func (c *Config) Key() string {
	return ConfigKey
}

func (c *Config) Timestamp() *uint64 {
	return c.Upgrade.Timestamp()
}

func (c *Config) IsDisabled() bool {
	return c.Upgrade.Disable
}

func (c *Config) Equal(cfg precompileconfig.Config) bool {
	other, ok := cfg.(*Config)
	if !ok {
		return false
	}
	if !c.Upgrade.Equal(&other.Upgrade) || c.FactoryOwner != other.FactoryOwner {
		return false
	}
	if len(c.ExtraFeeTiers) != len(other.ExtraFeeTiers) {
		return false
	}
	for fee, ts := range c.ExtraFeeTiers {
		if other.ExtraFeeTiers[fee] != ts {
			return false
		}
	}
	return true
}

func (c *Config) Verify(chainConfig precompileconfig.ChainConfig) error {
	for fee, tickSpacing := range c.ExtraFeeTiers {
		if fee >= 1_000_000 {
			return fmt.Errorf("clmm: configured fee tier %d must be less than 1_000_000", fee)
		}
		if tickSpacing <= 0 || tickSpacing >= 16384 {
			return fmt.Errorf("clmm: configured tick spacing %d for fee %d out of range", tickSpacing, fee)
		}
	}
	return nil
}
