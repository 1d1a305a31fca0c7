package executor

import (
	"testing"

	"github.com/crytic/medusa-geth/accounts/abi"
	"github.com/stretchr/testify/assert"
)

func mustMethod(t *testing.T, name string, inputs abi.Arguments) abi.Method {
	t.Helper()
	return abi.NewMethod(name, name, abi.Function, "", false, false, inputs, abi.Arguments{})
}

func uintArg(t *testing.T) abi.Arguments {
	t.Helper()
	uintType, err := abi.NewType("uint256", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	return abi.Arguments{{Type: uintType}}
}

func TestIsSetUp(t *testing.T) {
	assert.True(t, IsSetUp(mustMethod(t, "setUp", abi.Arguments{})))
	assert.False(t, IsSetUp(mustMethod(t, "setUp", uintArg(t))))
	assert.False(t, IsSetUp(mustMethod(t, "testSetUp", abi.Arguments{})))
}

func TestIsTestAndIsFailTest(t *testing.T) {
	assert.True(t, IsTest(mustMethod(t, "testWithdraw", abi.Arguments{})))
	assert.True(t, IsTest(mustMethod(t, "testFailWithdrawZero", abi.Arguments{})))
	assert.True(t, IsFailTest(mustMethod(t, "testFailWithdrawZero", abi.Arguments{})))
	assert.False(t, IsFailTest(mustMethod(t, "testWithdraw", abi.Arguments{})))
	assert.False(t, IsTest(mustMethod(t, "setUp", abi.Arguments{})))
	assert.False(t, IsTest(mustMethod(t, "helperFunction", abi.Arguments{})))
}

func TestIsFuzzTest(t *testing.T) {
	assert.False(t, IsFuzzTest(mustMethod(t, "testWithdraw", abi.Arguments{})))
	assert.True(t, IsFuzzTest(mustMethod(t, "testWithdraw", uintArg(t))))
}

func TestTestMethodsOrderingAndFiltering(t *testing.T) {
	contractAbi := abi.ABI{
		Methods: map[string]abi.Method{
			"setUp":        mustMethod(t, "setUp", abi.Arguments{}),
			"helper":       mustMethod(t, "helper", abi.Arguments{}),
			"testZebra":    mustMethod(t, "testZebra", abi.Arguments{}),
			"testApple":    mustMethod(t, "testApple", abi.Arguments{}),
			"testFailable": mustMethod(t, "testFailable", abi.Arguments{}),
		},
	}

	methods := TestMethods(contractAbi)
	names := make([]string, 0, len(methods))
	for _, m := range methods {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"testApple", "testFailable", "testZebra"}, names)
}
