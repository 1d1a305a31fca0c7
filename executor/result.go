package executor

import (
	gethTypes "github.com/crytic/medusa-geth/core/types"
)

// TestStatus describes the terminal classification of a single test function invocation.
type TestStatus string

const (
	// TestStatusPass indicates the test's outcome matched its expected classification.
	TestStatusPass TestStatus = "PASS"
	// TestStatusFail indicates the test's outcome did not match its expected classification, or the contract
	// failed to deploy, or its setUp() reverted.
	TestStatusFail TestStatus = "FAIL"
	// TestStatusSkipped indicates the test was excluded by a filter and never dispatched.
	TestStatusSkipped TestStatus = "SKIPPED"
)

// TestKind distinguishes a zero-argument test, called directly once, from a fuzz test, driven through many
// generated argument tuples by the fuzz driver.
type TestKind string

const (
	// TestKindStandard describes a test function with no input parameters, called exactly once.
	TestKindStandard TestKind = "standard"
	// TestKindFuzz describes a test function with one or more input parameters, driven by the fuzz driver.
	TestKindFuzz TestKind = "fuzz"
)

// TestResult is the terminal record produced for one (contract, test function) pair.
type TestResult struct {
	// ContractName is the Solidity contract the test function was declared on.
	ContractName string

	// FunctionName is the test function's name, e.g. "testWithdraw" or "testFailWithdrawZero".
	FunctionName string

	// Signature is the test function's full ABI signature, e.g. "testWithdraw(uint256)".
	Signature string

	// Kind distinguishes a directly-called test from a fuzzed one.
	Kind TestKind

	// Status is the terminal classification of the test.
	Status TestStatus

	// Reason is a human-readable explanation of the result, set whenever Status is not TestStatusPass.
	Reason string

	// GasUsed is the gas consumed by the test function call itself (not deployment or setUp).
	GasUsed uint64

	// Logs holds the event logs emitted by the test function call.
	Logs []*gethTypes.Log

	// Counterexample holds the ABI-decoded argument tuple that produced a failing result, set only for fuzz tests
	// that failed. For a standard test, or a fuzz test that passed, this is nil.
	Counterexample []any
}

// Pass constructs a TestResult with TestStatusPass.
func Pass(contractName, functionName, signature string, kind TestKind, gasUsed uint64, logs []*gethTypes.Log) *TestResult {
	return &TestResult{
		ContractName: contractName,
		FunctionName: functionName,
		Signature:    signature,
		Kind:         kind,
		Status:       TestStatusPass,
		GasUsed:      gasUsed,
		Logs:         logs,
	}
}

// Fail constructs a TestResult with TestStatusFail and the given reason.
func Fail(contractName, functionName, signature string, kind TestKind, reason string, gasUsed uint64, logs []*gethTypes.Log, counterexample []any) *TestResult {
	return &TestResult{
		ContractName:   contractName,
		FunctionName:   functionName,
		Signature:      signature,
		Kind:           kind,
		Status:         TestStatusFail,
		Reason:         reason,
		GasUsed:        gasUsed,
		Logs:           logs,
		Counterexample: counterexample,
	}
}

// Skip constructs a TestResult with TestStatusSkipped and the given reason.
func Skip(contractName, functionName, signature string, kind TestKind, reason string) *TestResult {
	return &TestResult{
		ContractName: contractName,
		FunctionName: functionName,
		Signature:    signature,
		Kind:         kind,
		Status:       TestStatusSkipped,
		Reason:       reason,
	}
}
