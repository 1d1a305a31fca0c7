package runner

import (
	"testing"

	"github.com/crytic/forge-core/executor"
	"github.com/crytic/medusa-geth/accounts/abi"
	"github.com/stretchr/testify/assert"
)

func TestNewTestFilterEmptyMatchesEverything(t *testing.T) {
	filter, err := newTestFilter("")
	assert.NoError(t, err)

	contract := &executor.ContractUnderTest{Name: "Token"}
	method := abi.Method{Name: "testAnything"}
	assert.True(t, filter.Matches(contract, method))
}

func TestNewTestFilterRejectsInvalidRegexp(t *testing.T) {
	_, err := newTestFilter("[")
	assert.Error(t, err)
}

func TestTestFilterMatchesContractDotFunction(t *testing.T) {
	filter, err := newTestFilter(`^Token\.testTransfer$`)
	assert.NoError(t, err)

	token := &executor.ContractUnderTest{Name: "Token"}
	vault := &executor.ContractUnderTest{Name: "Vault"}

	assert.True(t, filter.Matches(token, abi.Method{Name: "testTransfer"}))
	assert.False(t, filter.Matches(token, abi.Method{Name: "testWithdraw"}))
	assert.False(t, filter.Matches(vault, abi.Method{Name: "testTransfer"}))
}
