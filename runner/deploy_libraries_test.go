package runner

import (
	"testing"

	compilationTypes "github.com/crytic/forge-core/compilation/types"
	forgeerrors "github.com/crytic/forge-core/errors"
	"github.com/crytic/forge-core/executor"
	"github.com/crytic/medusa-geth/accounts/abi"
	"github.com/stretchr/testify/assert"
)

func TestDependencyNamesSkipsUnresolvedPlaceholders(t *testing.T) {
	placeholders := map[string]any{
		"resolved":   "SafeMath",
		"unresolved": nil,
		"empty":      "",
	}
	names := dependencyNames(placeholders)
	assert.Equal(t, []any{"SafeMath"}, names)
}

func TestKindOfDistinguishesFuzzFromStandard(t *testing.T) {
	uintType, err := abi.NewType("uint256", "", nil)
	assert.NoError(t, err)

	standard := abi.NewMethod("testFoo", "testFoo", abi.Function, "", false, false, abi.Arguments{}, abi.Arguments{})
	fuzzed := abi.NewMethod("testFoo", "testFoo", abi.Function, "", false, false, abi.Arguments{{Type: uintType}}, abi.Arguments{})

	assert.Equal(t, executor.TestKindStandard, kindOf(standard))
	assert.Equal(t, executor.TestKindFuzz, kindOf(fuzzed))
}

func TestDeployLibrariesSkipsWhenNoPlaceholders(t *testing.T) {
	contract := &executor.ContractUnderTest{
		Name:     "Token",
		Compiled: &compilationTypes.CompiledContract{},
	}

	deployed, err := deployLibraries(nil, contract, nil)
	assert.NoError(t, err)
	assert.Nil(t, deployed)
}

func TestDeployLibrariesErrorsOnUnresolvedLibrary(t *testing.T) {
	contract := &executor.ContractUnderTest{
		Name: "Token",
		Compiled: &compilationTypes.CompiledContract{
			LibraryPlaceholders: map[string]any{"lib1": "SafeMath"},
		},
	}

	_, err := deployLibraries(nil, contract, map[string]*executor.ContractUnderTest{})
	assert.True(t, forgeerrors.Is(err, forgeerrors.DeployFailed))
}
