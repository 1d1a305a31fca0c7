package executor

import (
	"fmt"

	"github.com/crytic/forge-core/compilation/abiutils"
	"github.com/crytic/forge-core/utils"
	"github.com/crytic/medusa-geth/accounts/abi"
	"github.com/crytic/medusa-geth/core"
)

// outcome is the classification decided for one test function call, before it's turned into a TestResult.
type outcome struct {
	pass   bool
	reason string
}

// classifyCall applies the testFail*/standard naming-convention rule from a test function call's result. reverted
// reports whether the call itself reverted or ran out of gas; expectArmed/expectMatched describe the expectRevert
// cheatcode's outcome for this call (see chain.TestChain.ConsumeExpectedRevertOutcome); assertionFlagged reports
// whether the DSTest failure slot was set.
func classifyCall(method abi.Method, contractAbi *abi.ABI, execResult *core.ExecutionResult, expectArmed bool, expectMatched bool, assertionFlagged bool) outcome {
	reverted := execResult == nil || execResult.Failed()

	if IsFailTest(method) {
		if reverted {
			return outcome{pass: true}
		}
		return outcome{pass: false, reason: "expected a revert but the call succeeded"}
	}

	// A satisfied expectRevert takes priority over the top-level revert check: the tracer can only observe that the
	// targeted sub-call reverted, it can't suppress that revert from propagating up through the calling frames, so
	// the call matching an armed expectation still shows up here as execResult.Failed(). Treat that case as the pass
	// it actually is before reverted has a chance to fail it.
	if expectArmed && expectMatched {
		return outcome{pass: true}
	}

	if reverted {
		return outcome{pass: false, reason: revertReason(contractAbi, execResult)}
	}
	if expectArmed && !expectMatched {
		return outcome{pass: false, reason: "expectRevert was armed but not satisfied by the call"}
	}
	if assertionFlagged {
		return outcome{pass: false, reason: "assertion failed"}
	}
	return outcome{pass: true}
}

// revertReason decodes a human-readable explanation from a failed call's return data, preferring a Solidity panic
// code, then a require()-style Error(string), then a custom error defined on the contract's ABI, and finally
// falling back to the raw VM error.
func revertReason(contractAbi *abi.ABI, execResult *core.ExecutionResult) string {
	if execResult == nil {
		return "call failed"
	}

	if panicCode := abiutils.GetSolidityPanicCode(execResult.Err, execResult.ReturnData, true); panicCode != nil {
		if utils.HasEncounteredAssertionFailure(panicCode) {
			return "assertion failed"
		}
		return abiutils.GetPanicReason(panicCode.Uint64())
	}

	if message := abiutils.GetSolidityRevertErrorString(execResult.Err, execResult.ReturnData); message != nil {
		return fmt.Sprintf("reverted: %s", *message)
	}

	if contractAbi != nil {
		if customError, args := abiutils.GetSolidityCustomRevertError(contractAbi, execResult.Err, execResult.ReturnData); customError != nil {
			return fmt.Sprintf("reverted: %s%v", customError.Name, args)
		}
	}

	if execResult.Err != nil {
		return execResult.Err.Error()
	}
	return "call failed"
}
