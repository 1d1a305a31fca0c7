package executor

import (
	"errors"
	"testing"

	"github.com/crytic/medusa-geth/accounts/abi"
	"github.com/crytic/medusa-geth/core"
	"github.com/stretchr/testify/assert"
)

func TestClassifyCallFailTestExpectsRevert(t *testing.T) {
	method := mustMethod(t, "testFailWithdrawZero", abi.Arguments{})

	reverted := &core.ExecutionResult{Err: errors.New("execution reverted")}
	result := classifyCall(method, nil, reverted, false, false, false)
	assert.True(t, result.pass)

	succeeded := &core.ExecutionResult{}
	result = classifyCall(method, nil, succeeded, false, false, false)
	assert.False(t, result.pass)
	assert.Equal(t, "expected a revert but the call succeeded", result.reason)
}

func TestClassifyCallStandardTestReverted(t *testing.T) {
	method := mustMethod(t, "testWithdraw", abi.Arguments{})
	execResult := &core.ExecutionResult{Err: errors.New("boom")}

	result := classifyCall(method, nil, execResult, false, false, false)
	assert.False(t, result.pass)
	assert.Equal(t, "boom", result.reason)
}

func TestClassifyCallStandardTestNilResultIsTreatedAsReverted(t *testing.T) {
	method := mustMethod(t, "testWithdraw", abi.Arguments{})

	result := classifyCall(method, nil, nil, false, false, false)
	assert.False(t, result.pass)
	assert.Equal(t, "call failed", result.reason)
}

func TestClassifyCallExpectRevertArmedButUnmatched(t *testing.T) {
	method := mustMethod(t, "testWithdraw", abi.Arguments{})
	execResult := &core.ExecutionResult{}

	result := classifyCall(method, nil, execResult, true, false, false)
	assert.False(t, result.pass)
	assert.Equal(t, "expectRevert was armed but not satisfied by the call", result.reason)
}

func TestClassifyCallAssertionFlagged(t *testing.T) {
	method := mustMethod(t, "testWithdraw", abi.Arguments{})
	execResult := &core.ExecutionResult{}

	result := classifyCall(method, nil, execResult, false, false, true)
	assert.False(t, result.pass)
	assert.Equal(t, "assertion failed", result.reason)
}

func TestClassifyCallStandardTestPasses(t *testing.T) {
	method := mustMethod(t, "testWithdraw", abi.Arguments{})
	execResult := &core.ExecutionResult{}

	result := classifyCall(method, nil, execResult, true, true, false)
	assert.True(t, result.pass)

	result = classifyCall(method, nil, execResult, false, false, false)
	assert.True(t, result.pass)
}

// TestClassifyCallExpectRevertMatchedWithPropagatedRevert covers the case that actually occurs when a targeted
// sub-call reverts: the tracer only observes and matches the sub-call's revert, it can't stop that revert from
// propagating up to the top-level call, so execResult.Failed() is still true here.
func TestClassifyCallExpectRevertMatchedWithPropagatedRevert(t *testing.T) {
	method := mustMethod(t, "testWithdraw", abi.Arguments{})
	execResult := &core.ExecutionResult{Err: errors.New("execution reverted")}

	result := classifyCall(method, nil, execResult, true, true, false)
	assert.True(t, result.pass)
}
