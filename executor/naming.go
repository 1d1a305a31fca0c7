package executor

import (
	"sort"
	"strings"

	"github.com/crytic/medusa-geth/accounts/abi"
)

// setUpMethodName is the conventional name of the per-contract setup hook, called once after deployment and before
// any test function runs.
const setUpMethodName = "setUp"

// testPrefix and testFailPrefix are the naming conventions used to discover test functions on a contract and
// classify their expected outcome. Any ABI function whose name starts with testPrefix is a test; its mutability is
// not checked.
const (
	testPrefix     = "test"
	testFailPrefix = "testFail"
)

// IsSetUp reports whether method is the contract's setUp hook.
func IsSetUp(method abi.Method) bool {
	return method.Name == setUpMethodName && len(method.Inputs) == 0
}

// IsTest reports whether method is a test function by the testPrefix/testFailPrefix naming convention.
func IsTest(method abi.Method) bool {
	return strings.HasPrefix(method.Name, testPrefix)
}

// IsFailTest reports whether method is a test function whose expected outcome is a revert, per the testFail*
// naming convention.
func IsFailTest(method abi.Method) bool {
	return strings.HasPrefix(method.Name, testFailPrefix)
}

// IsFuzzTest reports whether method takes one or more input parameters and so must be driven by the fuzz driver
// rather than called directly with no arguments.
func IsFuzzTest(method abi.Method) bool {
	return len(method.Inputs) > 0
}

// TestMethods returns the test functions declared on abi, in lexicographic order by signature, skipping setUp
// and anything that doesn't match the test naming convention.
func TestMethods(contractAbi abi.ABI) []abi.Method {
	methods := make([]abi.Method, 0, len(contractAbi.Methods))
	for _, method := range contractAbi.Methods {
		if IsTest(method) {
			methods = append(methods, method)
		}
	}
	// Sort lexicographically by ABI signature (e.g. "testTransfer(address,uint256)") so execution order is
	// deterministic regardless of map iteration order.
	sort.Slice(methods, func(i, j int) bool {
		return methods[i].Sig() < methods[j].Sig()
	})
	return methods
}
