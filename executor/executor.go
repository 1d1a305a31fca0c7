// Package executor implements the per-contract test execution lifecycle: deploying a test contract, running its
// setUp() hook, and calling its test functions against an isolated backend, classifying each call's outcome by the
// test/testFail naming convention and the DSTest assertion-flag convention.
package executor

import (
	"context"
	"fmt"
	"math/big"

	"github.com/crytic/forge-core/chain"
	compilationTypes "github.com/crytic/forge-core/compilation/types"
	forgeerrors "github.com/crytic/forge-core/errors"
	"github.com/crytic/forge-core/runnerconfig"
	"github.com/crytic/medusa-geth/accounts/abi"
	"github.com/crytic/medusa-geth/common"
	"github.com/crytic/medusa-geth/core"
	gethTypes "github.com/crytic/medusa-geth/core/types"
)

// Executor owns one backend instance and drives the deploy/setUp/test lifecycle for a single test contract. A new
// Executor is created per contract, so that a contract's setUp() runs against a clean backend and the same backend
// lineage is shared by every test function on that contract, per the one-instance-per-contract scheduling rule.
type Executor struct {
	chain    *chain.TestChain
	sender   common.Address
	gasLimit uint64

	contract *ContractUnderTest
	address  common.Address
	snapshot int
}

// NewExecutor creates a fresh backend instance, crediting cfg.Sender with cfg.InitialBalance as its sole genesis
// allocation, ready to deploy a test contract onto.
func NewExecutor(ctx context.Context, cfg *runnerconfig.Config, compiledContracts map[string]*compilationTypes.CompiledContract) (*Executor, error) {
	chainConfig, err := cfg.ChainConfig()
	if err != nil {
		return nil, forgeerrors.Wrap(forgeerrors.BackendInternal, err, "failed to build chain configuration")
	}

	genesisAlloc := gethTypes.GenesisAlloc{
		cfg.Sender: {Balance: new(big.Int).Set(cfg.InitialBalance)},
	}

	testChain, err := chain.NewTestChain(ctx, genesisAlloc, chainConfig)
	if err != nil {
		return nil, forgeerrors.Wrap(forgeerrors.BackendInternal, err, "failed to create backend")
	}
	testChain.CompiledContracts = compiledContracts

	return &Executor{
		chain:    testChain,
		sender:   cfg.Sender,
		gasLimit: cfg.GasLimit,
	}, nil
}

// Close releases the backend owned by this Executor.
func (e *Executor) Close() {
	e.chain.Close()
}

// Chain exposes the backend this Executor is driving, for callers (e.g. the fuzz driver) that need to read state
// directly, such as for ABI type-driven value generation seeded from existing account addresses.
func (e *Executor) Chain() *chain.TestChain {
	return e.chain
}

// Contract returns the contract this Executor was deployed for, or nil if Deploy hasn't been called yet.
func (e *Executor) Contract() *ContractUnderTest {
	return e.contract
}

// Address returns the deployed address of the contract under test, valid after a successful Deploy.
func (e *Executor) Address() common.Address {
	return e.address
}

// Deploy performs steps 1-5 of the test execution lifecycle: it links any required library addresses into the
// contract's bytecode, deploys it from the configured sender, calls setUp() if the contract declares one, and
// snapshots the resulting state as S0, the restore point every subsequent test function call returns to. A
// DeployFailed or SetUpFailed error aborts the contract's entire test run.
func (e *Executor) Deploy(contract *ContractUnderTest, constructorArgs []any, deployedLibraries map[string]common.Address) error {
	e.contract = contract

	if len(contract.Compiled.LibraryPlaceholders) > 0 {
		contract.Compiled.LinkBytecodes(contract.Name, deployedLibraries)
	}

	deployData, err := contract.Compiled.GetDeploymentMessageData(constructorArgs)
	if err != nil {
		return forgeerrors.Wrap(forgeerrors.DeployFailed, err, "failed to encode constructor arguments for %s", contract.Name)
	}

	execResult, receipt, err := e.call(nil, deployData)
	if err != nil {
		return forgeerrors.Wrap(forgeerrors.DeployFailed, err, "failed to deploy %s", contract.Name)
	}
	if execResult.Failed() {
		return forgeerrors.Newf(forgeerrors.DeployFailed, "constructor for %s reverted: %s", contract.Name, revertReason(&contract.Compiled.Abi, execResult))
	}
	e.address = receipt.ContractAddress

	setUp, hasSetUp := contract.Compiled.Abi.Methods[setUpMethodName]
	if hasSetUp && IsSetUp(setUp) {
		data, err := contract.Compiled.Abi.Pack(setUpMethodName)
		if err != nil {
			return forgeerrors.Wrap(forgeerrors.SetUpFailed, err, "failed to encode setUp() call for %s", contract.Name)
		}
		execResult, _, err := e.call(&e.address, data)
		if err != nil {
			return forgeerrors.Wrap(forgeerrors.SetUpFailed, err, "setUp() failed for %s", contract.Name)
		}
		if execResult.Failed() {
			return forgeerrors.Newf(forgeerrors.SetUpFailed, "setUp() reverted for %s: %s", contract.Name, revertReason(&contract.Compiled.Abi, execResult))
		}
	}

	e.snapshot = e.chain.State().Snapshot()
	return nil
}

// DeployLibrary deploys contract with no constructor arguments and no setUp() call, as Solidity libraries declare
// neither, and returns the address it was deployed to so callers can link it into dependent contracts' bytecode.
func (e *Executor) DeployLibrary(contract *ContractUnderTest, deployedLibraries map[string]common.Address) (common.Address, error) {
	if len(contract.Compiled.LibraryPlaceholders) > 0 {
		contract.Compiled.LinkBytecodes(contract.Name, deployedLibraries)
	}

	deployData, err := contract.Compiled.GetDeploymentMessageData(nil)
	if err != nil {
		return common.Address{}, forgeerrors.Wrap(forgeerrors.DeployFailed, err, "failed to encode library deployment for %s", contract.Name)
	}

	execResult, receipt, err := e.call(nil, deployData)
	if err != nil {
		return common.Address{}, forgeerrors.Wrap(forgeerrors.DeployFailed, err, "failed to deploy library %s", contract.Name)
	}
	if execResult.Failed() {
		return common.Address{}, forgeerrors.Newf(forgeerrors.DeployFailed, "library constructor for %s reverted: %s", contract.Name, revertReason(&contract.Compiled.Abi, execResult))
	}

	return receipt.ContractAddress, nil
}

// RunTest performs steps 6-8 of the test execution lifecycle for one call to method with the given (already
// ABI-typed) arguments: call the test function, classify its outcome, and restore S0 so the backend is ready for
// the next call, whether that's the next test function or the next fuzz iteration of this one.
func (e *Executor) RunTest(method abi.Method, args []any) *TestResult {
	kind := TestKindStandard
	if IsFuzzTest(method) {
		kind = TestKindFuzz
	}

	data, err := e.contract.Compiled.Abi.Pack(method.Name, args...)
	if err != nil {
		return Fail(e.contract.Name, method.Name, method.Sig(), kind, fmt.Sprintf("failed to encode arguments: %v", err), 0, nil, args)
	}

	execResult, receipt, err := e.call(&e.address, data)
	defer func() {
		// RevertToSnapshot removes the reverted-to revision (and everything above it) from the StateDB's
		// revision list, so e.snapshot can't be reverted to a second time. Re-snapshot immediately after
		// restoring S0 so the next RunTest call (the next fuzz iteration or the next test function) has a
		// fresh, still-valid id to revert to.
		e.chain.State().RevertToSnapshot(e.snapshot)
		e.snapshot = e.chain.State().Snapshot()
	}()

	if err != nil {
		return Fail(e.contract.Name, method.Name, method.Sig(), kind, err.Error(), 0, nil, args)
	}

	expectMatched, expectArmed := e.chain.ConsumeExpectedRevertOutcome()
	flagged := assertionFailed(e.chain.State(), e.address)
	result := classifyCall(method, &e.contract.Compiled.Abi, execResult, expectArmed, expectMatched, flagged)

	var logs []*gethTypes.Log
	if receipt != nil {
		logs = receipt.Logs
	}

	if result.pass {
		return Pass(e.contract.Name, method.Name, method.Sig(), kind, execResult.UsedGas, logs)
	}
	return Fail(e.contract.Name, method.Name, method.Sig(), kind, result.reason, execResult.UsedGas, logs, args)
}

// call builds a core.Message targeting to (nil for a contract creation) with data and dispatches it through the
// backend's non-reverting Call primitive, using the configured sender and gas limit.
func (e *Executor) call(to *common.Address, data []byte) (*core.ExecutionResult, *gethTypes.Receipt, error) {
	msg := &core.Message{
		To:                to,
		From:              e.sender,
		Nonce:             e.chain.State().GetNonce(e.sender),
		Value:             big.NewInt(0),
		GasLimit:          e.gasLimit,
		GasPrice:          big.NewInt(1),
		GasFeeCap:         big.NewInt(0),
		GasTipCap:         big.NewInt(0),
		Data:              data,
		SkipAccountChecks: false,
	}
	return e.chain.Call(msg)
}
