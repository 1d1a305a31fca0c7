package platforms

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"os/exec"

	"github.com/crytic/forge-core/compilation/types"
)

type BrownieCompilationConfig struct {
	Target         string `json:"target"`
	BuildDirectory string `json:"build_directory,omitempty"`
}

func NewBrownieCompilationConfig(target string) *BrownieCompilationConfig {
	return &BrownieCompilationConfig{
		Target:         target,
		BuildDirectory: "",
	}
}

func (s *BrownieCompilationConfig) Platform() string {
	return "brownie"
}

func (s *BrownieCompilationConfig) GetTarget() string {
	return s.Target
}

func (s *BrownieCompilationConfig) SetTarget(newTarget string) {
	s.Target = newTarget
}

func (s *BrownieCompilationConfig) Compile() ([]types.Compilation, string, error) {
	var cmd *exec.Cmd = exec.Command("brownie", "compile")

	cmd.Dir = s.Target
	out, err := cmd.CombinedOutput()
	if err != nil {
		return nil, "", fmt.Errorf("error while executing Brownie:\nOUTPUT:\n%s\nERROR: %s\n", string(out), err.Error())
	}

	// Create a compilation unit out of this.
	compilation := types.NewCompilation()

	// Find all the compiled Brownie artifacts
	targetDirectory := path.Dir(s.Target)
	buildDirectory := s.BuildDirectory
	if buildDirectory == "" {
		buildDirectory = path.Join(targetDirectory, "build", "contracts")
	}
	matches, err := filepath.Glob(path.Join(buildDirectory, "*.json"))
	if err != nil {
		return nil, "", err
	}

	// Define our Brownie structure to parse
	type BrownieCompiledJson struct {
		ContractName      string `json:"contractName"`
		Abi               any    `json:"abi"`
		Bytecode          string `json:"bytecode"`
		DeployedBytecode  string `json:"deployedBytecode"`
		SourceMap         string `json:"sourceMap"`
		DeployedSourceMap string `json:"deployedSourceMap"`
		Source            string `json:"source"`
		SourcePath        string `json:"sourcePath"`
		Ast               any    `json:"ast"`
	}

	// Loop for each Brownie artifact to parse our compilations.
	for i := 0; i < len(matches); i++ {
		// Read the compiled JSON file data
		b, err := os.ReadFile(matches[i])
		if err != nil {
			return nil, "", err
		}

		// Parse the JSON
		var compiledJson BrownieCompiledJson
		err = json.Unmarshal(b, &compiledJson)
		if err != nil {
			return nil, "", err
		}

		// Convert the abi structure to our parsed abi type
		contractAbi, err := types.ParseABIFromInterface(compiledJson.Abi)
		if err != nil {
			continue
		}

		// If we don't have a source for this file, create it.
		if _, ok := compilation.Sources[compiledJson.SourcePath]; !ok {
			compilation.Sources[compiledJson.SourcePath] = types.CompiledSource{
				Ast:       compiledJson.Ast,
				Contracts: make(map[string]types.CompiledContract),
			}
		}

		// Decode our init and runtime bytecode, which may still carry unresolved library placeholders
		compiledContract, err := types.NewCompiledContract(*contractAbi, compiledJson.Bytecode, compiledJson.DeployedBytecode, compiledJson.SourceMap, compiledJson.DeployedSourceMap, types.ContractKindContract)
		if err != nil {
			return nil, "", fmt.Errorf("unable to parse bytecode for contract '%s': %v\n", compiledJson.ContractName, err)
		}

		// Add our contract to the source
		compilation.Sources[compiledJson.SourcePath].Contracts[compiledJson.ContractName] = compiledContract
	}

	return []types.Compilation{*compilation}, string(out), nil
}
