package fuzzdriver

import (
	"math/big"
	"reflect"
	"testing"

	"github.com/crytic/medusa-geth/accounts/abi"
	"github.com/crytic/medusa-geth/common"
	"github.com/stretchr/testify/assert"
)

func mustType(t *testing.T, name string) abi.Type {
	t.Helper()
	typ, err := abi.NewType(name, "", nil)
	if err != nil {
		t.Fatal(err)
	}
	return typ
}

func TestGenerateValueAddress(t *testing.T) {
	generator := newRandomGenerator(1)
	addrType := mustType(t, "address")
	value := generateValue(generator, &addrType)
	_, ok := value.(common.Address)
	assert.True(t, ok)
}

func TestGenerateValueUintNarrowsToDeclaredWidth(t *testing.T) {
	generator := newRandomGenerator(1)

	uint8Type := mustType(t, "uint8")
	_, ok := generateValue(generator, &uint8Type).(uint8)
	assert.True(t, ok)

	uint256Type := mustType(t, "uint256")
	_, ok = generateValue(generator, &uint256Type).(*big.Int)
	assert.True(t, ok)
}

func TestGenerateValueIntProducesNativeInt64(t *testing.T) {
	generator := newRandomGenerator(2)
	int64Type := mustType(t, "int64")
	for i := 0; i < 50; i++ {
		_, ok := generateValue(generator, &int64Type).(int64)
		assert.True(t, ok)
	}
}

func TestGenerateValueBytesStaysWithinBiasedLengths(t *testing.T) {
	generator := newRandomGenerator(3)
	bytesType := mustType(t, "bytes")
	for i := 0; i < 100; i++ {
		value := generateValue(generator, &bytesType).([]byte)
		assert.Contains(t, dynamicLengthBiases, len(value))
	}
}

func TestGenerateValueArrayHasFixedLength(t *testing.T) {
	generator := newRandomGenerator(4)
	arrType := mustType(t, "uint256[3]")
	value := generateValue(generator, &arrType)
	assert.Equal(t, 3, reflect.ValueOf(value).Len())
}

func TestSizeUintAndSizeIntNarrowToMatchingGoType(t *testing.T) {
	assert.IsType(t, uint8(0), sizeUint(big.NewInt(10), 8))
	assert.IsType(t, uint16(0), sizeUint(big.NewInt(10), 16))
	assert.IsType(t, uint32(0), sizeUint(big.NewInt(10), 32))
	assert.IsType(t, uint64(0), sizeUint(big.NewInt(10), 64))
	assert.IsType(t, &big.Int{}, sizeUint(big.NewInt(10), 256))

	assert.IsType(t, int8(0), sizeInt(big.NewInt(-10), 8))
	assert.IsType(t, int16(0), sizeInt(big.NewInt(-10), 16))
	assert.IsType(t, int32(0), sizeInt(big.NewInt(-10), 32))
	assert.IsType(t, int64(0), sizeInt(big.NewInt(-10), 64))
	assert.IsType(t, &big.Int{}, sizeInt(big.NewInt(-10), 256))
}
