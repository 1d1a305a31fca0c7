package platforms

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/crytic/forge-core/compilation/types"
	"github.com/ethereum/go-ethereum/common/compiler"
)

type DappCompilationConfig struct {
	Target         string `json:"target"`
	BuildDirectory string `json:"build_directory,omitempty"`
}

func NewDappCompilationConfig(target string) *DappCompilationConfig {
	return &DappCompilationConfig{
		Target:         target,
		BuildDirectory: "",
	}
}

func (s *DappCompilationConfig) Platform() string {
	return "dapp"
}

func (s *DappCompilationConfig) GetTarget() string {
	return s.Target
}

func (s *DappCompilationConfig) SetTarget(newTarget string) {
	s.Target = newTarget
}

func (s *DappCompilationConfig) Compile() ([]types.Compilation, string, error) {
	// Obtain our solc version string
	v, err := GetSystemSolcVersion()
	if err != nil {
		return nil, "", err
	}

	// Execute dapp to compile our target.
	var cmd *exec.Cmd = exec.Command("dapp", "build")

	cmd.Dir = s.Target
	out, err := cmd.CombinedOutput()
	if err != nil {
		return nil, "", fmt.Errorf("error while executing Dapp:\nOUTPUT:\n%s\nERROR: %s\n", string(out), err.Error())
	}

	// Our compilation succeeded, load the JSON
	var results map[string]any
	err = json.Unmarshal(out, &results)
	if err != nil {
		return nil, "", err
	}

	// Create a compilation unit out of this.
	compilation := types.NewCompilation()

	// Parse our sources from solc output
	if sources, ok := results["sources"]; ok {
		if sourcesMap, ok := sources.(map[string]any); ok {
			for name, source := range sourcesMap {
				// Try to obtain our AST key
				ast, _ := source.(map[string]any)

				// Construct our compiled source object
				compilation.Sources[name] = types.CompiledSource{
					Ast:       ast,
					Contracts: make(map[string]types.CompiledContract),
				}
			}
		}
	}

	// Parse our contracts from solc output
	contracts, err := compiler.ParseCombinedJSON(out, "solc", v.String(), v.String(), "")
	if err != nil {
		return nil, "", err
	}

	for name, contract := range contracts {
		// Split our name which should be of form "filename:contractname"
		nameSplit := strings.Split(name, ":")
		sourcePath := strings.Join(nameSplit[0:len(nameSplit)-1], ":")
		contractName := nameSplit[len(nameSplit)-1]

		// Convert the abi structure to our parsed abi type
		contractAbi, err := types.ParseABIFromInterface(contract.Info.AbiDefinition)
		if err != nil {
			continue
		}

		// Decode our init and runtime bytecode, which may still carry unresolved library placeholders
		compiledContract, err := types.NewCompiledContract(*contractAbi, contract.Code, contract.RuntimeCode, contract.Info.SrcMap.(string), contract.Info.SrcMapRuntime, types.ContractKindContract)
		if err != nil {
			return nil, "", fmt.Errorf("unable to parse bytecode for contract '%s': %v\n", contractName, err)
		}

		if _, ok := compilation.Sources[sourcePath]; !ok {
			compilation.Sources[sourcePath] = types.CompiledSource{Contracts: make(map[string]types.CompiledContract)}
		}

		// Construct our compiled contract
		compilation.Sources[sourcePath].Contracts[contractName] = compiledContract
	}

	return []types.Compilation{*compilation}, "", nil
}
