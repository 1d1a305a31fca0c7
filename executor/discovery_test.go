package executor

import (
	"testing"

	compilationTypes "github.com/crytic/forge-core/compilation/types"
	"github.com/crytic/medusa-geth/accounts/abi"
	"github.com/stretchr/testify/assert"
)

func compiledContract(t *testing.T, kind compilationTypes.ContractKind, methodNames ...string) compilationTypes.CompiledContract {
	t.Helper()
	methods := make(map[string]abi.Method, len(methodNames))
	for _, name := range methodNames {
		methods[name] = mustMethod(t, name, abi.Arguments{})
	}
	contract, err := compilationTypes.NewCompiledContract(abi.ABI{Methods: methods}, "0x00", "0x00", "", "", kind)
	if err != nil {
		t.Fatal(err)
	}
	return contract
}

func TestDiscoverContractsSkipsLibrariesAndUntested(t *testing.T) {
	compilation := compilationTypes.NewCompilation()
	compilation.Sources["Token.sol"] = compilationTypes.CompiledSource{
		Contracts: map[string]compilationTypes.CompiledContract{
			"Token":        compiledContract(t, compilationTypes.ContractKindContract, "testTransfer"),
			"NotATest":     compiledContract(t, compilationTypes.ContractKindContract, "helper"),
			"SafeMath":     compiledContract(t, compilationTypes.ContractKindLibrary, "testLib"),
			"ITokenThings": compiledContract(t, compilationTypes.ContractKindInterface, "testInterface"),
		},
	}

	contracts := DiscoverContracts(compilation)
	assert.Len(t, contracts, 1)
	assert.Equal(t, "Token", contracts[0].Name)
	assert.Equal(t, "Token.sol", contracts[0].SourcePath)
	assert.True(t, contracts[0].HasTests())
}

func TestDiscoverLibrariesReturnsOnlyLibraries(t *testing.T) {
	compilation := compilationTypes.NewCompilation()
	compilation.Sources["Math.sol"] = compilationTypes.CompiledSource{
		Contracts: map[string]compilationTypes.CompiledContract{
			"SafeMath": compiledContract(t, compilationTypes.ContractKindLibrary),
			"Consumer": compiledContract(t, compilationTypes.ContractKindContract, "testUsesMath"),
		},
	}

	libraries := DiscoverLibraries(compilation)
	assert.Len(t, libraries, 1)
	assert.Equal(t, "SafeMath", libraries[0].Name)
}
