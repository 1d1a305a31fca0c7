package fuzzdriver

import (
	"math/big"
	"testing"

	"github.com/crytic/medusa-geth/accounts/abi"
	"github.com/crytic/medusa-geth/common"
	"github.com/stretchr/testify/assert"
)

func TestShrinkValueUintHalvesTowardZero(t *testing.T) {
	uint256Type := mustType(t, "uint256")
	shrunk, changed := shrinkValue(uint256Type, big.NewInt(100))
	assert.True(t, changed)
	assert.Equal(t, big.NewInt(50), shrunk)

	_, changed = shrinkValue(uint256Type, big.NewInt(0))
	assert.False(t, changed)
}

func TestShrinkValueAddressGoesToZero(t *testing.T) {
	addrType := mustType(t, "address")
	nonZero := common.HexToAddress("0x1111111111111111111111111111111111111111")

	shrunk, changed := shrinkValue(addrType, nonZero)
	assert.True(t, changed)
	assert.Equal(t, common.Address{}, shrunk)

	_, changed = shrinkValue(addrType, common.Address{})
	assert.False(t, changed)
}

func TestShrinkValueBoolGoesToFalse(t *testing.T) {
	boolType := mustType(t, "bool")
	shrunk, changed := shrinkValue(boolType, true)
	assert.True(t, changed)
	assert.Equal(t, false, shrunk)

	_, changed = shrinkValue(boolType, false)
	assert.False(t, changed)
}

func TestShrinkValueBytesAndStringTruncate(t *testing.T) {
	bytesType := mustType(t, "bytes")
	shrunk, changed := shrinkValue(bytesType, []byte{1, 2, 3})
	assert.True(t, changed)
	assert.Equal(t, []byte{1, 2}, shrunk)

	_, changed = shrinkValue(bytesType, []byte{})
	assert.False(t, changed)

	stringType := mustType(t, "string")
	shrunkStr, changed := shrinkValue(stringType, "abc")
	assert.True(t, changed)
	assert.Equal(t, "ab", shrunkStr)
}

func TestShrinkConvergesToSmallestFailingUint(t *testing.T) {
	argTypes := []abi.Type{mustType(t, "uint256")}
	args := []any{big.NewInt(1000)}

	// The candidate tuple fails whenever its value is at least 7, mimicking a test function that reverts above
	// some threshold. Shrinking should converge to the smallest value still >= 7 the halving search can reach.
	isFailing := func(candidate []any) bool {
		v := candidate[0].(*big.Int)
		return v.Cmp(big.NewInt(7)) >= 0
	}

	result := shrink(argTypes, args, isFailing)
	shrunkValue := result[0].(*big.Int)
	assert.True(t, isFailing(result))
	assert.True(t, shrunkValue.Cmp(big.NewInt(1000)) < 0)
}

func TestShrinkStopsWhenNoSmallerValueFails(t *testing.T) {
	argTypes := []abi.Type{mustType(t, "bool")}
	args := []any{true}

	// Never fails once shrunk to false, so shrink should give up and return the original value unchanged.
	isFailing := func(candidate []any) bool {
		return candidate[0].(bool)
	}

	result := shrink(argTypes, args, isFailing)
	assert.Equal(t, true, result[0])
}
