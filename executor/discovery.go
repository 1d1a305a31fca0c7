package executor

import (
	compilationTypes "github.com/crytic/forge-core/compilation/types"
)

// ContractUnderTest pairs a compiled contract with the source contract name it was compiled from, as read from a
// Compilation's source-to-contract mapping. The name is not carried on CompiledContract itself, since a single
// compilation can produce many same-named contracts across different source files.
type ContractUnderTest struct {
	// Name is the Solidity contract name, as declared in its source file.
	Name string

	// SourcePath is the path of the source file the contract was declared in.
	SourcePath string

	// Compiled is the contract's compiled artifact: ABI, init/runtime bytecode, and kind.
	Compiled *compilationTypes.CompiledContract
}

// HasTests reports whether the contract declares at least one function matching the test naming convention.
func (c *ContractUnderTest) HasTests() bool {
	return len(TestMethods(c.Compiled.Abi)) > 0
}

// DiscoverContracts walks a Compilation's sources and returns every contract (excluding libraries and interfaces,
// which cannot be deployed standalone) that declares at least one test function.
func DiscoverContracts(compilation *compilationTypes.Compilation) []*ContractUnderTest {
	contracts := make([]*ContractUnderTest, 0)
	for sourcePath, source := range compilation.Sources {
		for name, contract := range source.Contracts {
			if contract.Kind != compilationTypes.ContractKindContract {
				continue
			}
			contract := contract
			candidate := &ContractUnderTest{Name: name, SourcePath: sourcePath, Compiled: &contract}
			if candidate.HasTests() {
				contracts = append(contracts, candidate)
			}
		}
	}
	return contracts
}

// DiscoverLibraries walks a Compilation's sources and returns every contract compiled as a Solidity library,
// keyed by nothing in particular; callers that need to look a library up by name index the result themselves.
func DiscoverLibraries(compilation *compilationTypes.Compilation) []*ContractUnderTest {
	libraries := make([]*ContractUnderTest, 0)
	for sourcePath, source := range compilation.Sources {
		for name, contract := range source.Contracts {
			if contract.Kind != compilationTypes.ContractKindLibrary {
				continue
			}
			contract := contract
			libraries = append(libraries, &ContractUnderTest{Name: name, SourcePath: sourcePath, Compiled: &contract})
		}
	}
	return libraries
}
