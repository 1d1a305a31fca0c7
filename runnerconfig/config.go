// Package runnerconfig defines the user-facing configuration surface for a test run: which tests to execute, how
// the fuzz driver should explore inputs, and how the backend should be configured (cheatcodes, fork mode,
// sender/gas defaults).
package runnerconfig

import (
	"math/big"
	"runtime"

	"github.com/crytic/forge-core/chain/config"
	"github.com/crytic/medusa-geth/common"
)

// DefaultSender is the caller address used to deploy and invoke test contracts when no sender is configured.
var DefaultSender = common.HexToAddress("0x1804c8AB1F12E6bbf3894d4083f33e07309d1f38")

// Config holds every option that shapes a test run.
type Config struct {
	// Filter restricts execution to contracts and functions whose "Contract.Function" name matches this regular
	// expression. An empty filter runs everything discovered in the compilation artifacts.
	Filter string `json:"filter"`

	// FFI indicates whether the ffi cheatcode is permitted to execute external commands on the host running the
	// test run. Disabled by default, since it grants arbitrary code execution to any test contract.
	FFI bool `json:"ffi"`

	// FuzzRuns is the number of randomized inputs generated per fuzz test function.
	FuzzRuns uint32 `json:"fuzzRuns"`

	// FuzzSeed seeds the fuzz driver's random provider for reproducible runs. A nil (or zero) seed derives one per
	// fuzz test from that function's selector.
	FuzzSeed *int64 `json:"fuzzSeed,omitempty"`

	// ForkURL is the JSON-RPC endpoint to pin the backend's state against, or empty to run against a fresh
	// in-memory genesis.
	ForkURL string `json:"forkUrl,omitempty"`

	// ForkBlock is the block number fork reads are pinned to. Ignored when ForkURL is empty.
	ForkBlock uint64 `json:"forkBlock,omitempty"`

	// Sender is the default caller address used to deploy and invoke test contracts.
	Sender common.Address `json:"sender"`

	// InitialBalance is the ether balance credited to Sender at genesis.
	InitialBalance *big.Int `json:"initialBalance"`

	// GasLimit is the per-call gas limit applied to every test function invocation, including deployment and setUp.
	GasLimit uint64 `json:"gasLimit"`

	// Trace enables call tracing for every test, to be surfaced alongside failures.
	Trace bool `json:"trace"`

	// Workers bounds how many test contracts may be executed concurrently. Functions within a single contract
	// always run sequentially, since setUp() establishes shared state they all build on.
	Workers int `json:"workers"`
}

// DefaultConfig returns a Config with sensible defaults: no fork, no FFI, 256 fuzz runs, one worker per CPU.
func DefaultConfig() *Config {
	return &Config{
		Filter:         "",
		FFI:            false,
		FuzzRuns:       256,
		Sender:         DefaultSender,
		InitialBalance: new(big.Int).Mul(big.NewInt(1_000_000), big.NewInt(1_000_000_000_000_000_000)),
		GasLimit:       1_000_000_000,
		Trace:          false,
		Workers:        runtime.NumCPU(),
	}
}

// ChainConfig derives a chain/config.TestChainConfig reflecting this configuration's cheatcode and fork settings.
func (c *Config) ChainConfig() (*config.TestChainConfig, error) {
	chainConfig, err := config.DefaultTestChainConfig()
	if err != nil {
		return nil, err
	}

	chainConfig.CheatCodeConfig.CheatCodesEnabled = true
	chainConfig.CheatCodeConfig.EnableFFI = c.FFI
	chainConfig.ForkConfig.ForkModeEnabled = c.ForkURL != ""
	chainConfig.ForkConfig.RpcUrl = c.ForkURL
	chainConfig.ForkConfig.RpcBlock = c.ForkBlock

	return chainConfig, nil
}
