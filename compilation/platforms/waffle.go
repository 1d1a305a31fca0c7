package platforms

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path"
	"path/filepath"

	"github.com/crytic/forge-core/compilation/types"
)

type WaffleCompilationConfig struct {
	Target         string `json:"target"`
	UseNpx         bool   `json:"use_npx"`
	BuildDirectory string `json:"build_directory,omitempty"`
}

func NewWaffleCompilationConfig(target string) *WaffleCompilationConfig {
	return &WaffleCompilationConfig{
		Target:         target,
		UseNpx:         true,
		BuildDirectory: "",
	}
}

func (s *WaffleCompilationConfig) Platform() string {
	return "waffle"
}

func (s *WaffleCompilationConfig) GetTarget() string {
	return s.Target
}

func (s *WaffleCompilationConfig) SetTarget(newTarget string) {
	s.Target = newTarget
}

func (s *WaffleCompilationConfig) Compile() ([]types.Compilation, string, error) {
	// Determine the base command to use.
	var cmd *exec.Cmd = exec.Command("npm", "run", "build")
	cmd.Dir = s.Target

	out, err := cmd.CombinedOutput()
	if err != nil {
		return nil, "", fmt.Errorf("error while executing Waffle:\nOUTPUT:\n%s\nERROR: %s\n", string(out), err.Error())
	}

	// Create a compilation unit out of this.
	compilation := types.NewCompilation()

	// Find all the compiled Waffle artifacts
	targetDirectory := path.Dir(s.Target)
	buildDirectory := s.BuildDirectory
	if buildDirectory == "" {
		buildDirectory = path.Join(targetDirectory, "build")
	}
	matches, err := filepath.Glob(path.Join(buildDirectory, "*.json"))
	if err != nil {
		return nil, "", err
	}

	// Define our Waffle structure to parse
	type WaffleCompiledJson struct {
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

	// Loop for each Waffle artifact to parse our compilations.
	for i := 0; i < len(matches); i++ {
		// Read the compiled JSON file data
		b, err := os.ReadFile(matches[i])
		if err != nil {
			return nil, "", err
		}

		// Parse the JSON
		var compiledJson WaffleCompiledJson
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
