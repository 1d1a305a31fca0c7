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

type CryticCompileCompilationConfig struct {
	Target         string   `json:"target"`
	SolcVersion    string   `json:"solcVersion"`
	SolcInstall    bool     `json:"solcInstall"`
	BuildDirectory string   `json:"buildDirectory"`
	Args           []string `json:"args,omitempty"`
}

func NewCryticCompileCompilationConfig(target string) *CryticCompileCompilationConfig {
	return &CryticCompileCompilationConfig{
		Target:         target,
		BuildDirectory: "",
		Args:           []string{},
		SolcVersion:    "",
		SolcInstall:    true,
	}
}

func (s *CryticCompileCompilationConfig) Platform() string {
	return "crytic-compile"
}

func (s *CryticCompileCompilationConfig) GetTarget() string {
	return s.Target
}

func (s *CryticCompileCompilationConfig) SetTarget(newTarget string) {
	s.Target = newTarget
}

func (s *CryticCompileCompilationConfig) Compile() ([]types.Compilation, string, error) {
	// If a specific solc version was requested, install it through solc-select before invoking crytic-compile.
	if s.SolcVersion != "" && s.SolcInstall {
		if err := exec.Command("solc-select", "install", s.SolcVersion).Run(); err != nil {
			return nil, "", fmt.Errorf("error while executing solc-select:\n\nERROR: %s\n", err.Error())
		}
		if err := exec.Command("solc-select", "use", s.SolcVersion).Run(); err != nil {
			return nil, "", fmt.Errorf("error while executing solc-select:\n\nERROR: %s\n", err.Error())
		}
	}

	args := append([]string{"--export-format", "solc"}, s.Args...)
	cmd := exec.Command("crytic-compile", args...)
	cmd.Dir = s.Target

	out, err := cmd.CombinedOutput()
	if err != nil {
		return nil, "", fmt.Errorf("error while executing crytic-compile:\nOUTPUT:\n%s\nERROR: %s\n", string(out), err.Error())
	}

	// Create a compilation unit out of this.
	compilation := types.NewCompilation()

	// Find all the compiled crytic-compile artifacts
	targetDirectory := path.Dir(s.Target)
	buildDirectory := s.BuildDirectory
	if buildDirectory == "" {
		buildDirectory = path.Join(targetDirectory, "build", "contracts")
	}
	matches, err := filepath.Glob(path.Join(buildDirectory, "*.json"))
	if err != nil {
		return nil, "", err
	}

	// Define our crytic-compile structure to parse
	type CryticCompileCompiledJson struct {
		ContractName       string `json:"contractName"`
		Abi                any    `json:"abi"`
		Bytecode           string `json:"bytecode"`
		DeployedBytecode   string `json:"deployedBytecode"`
		SourceMap          string `json:"sourceMap"`
		DeployedSourceMap  string `json:"deployedSourceMap"`
		Source             string `json:"source"`
		SourcePath         string `json:"sourcePath"`
		Ast                any    `json:"ast"`
	}

	// Loop for each crytic-compile artifact to parse our compilations.
	for i := 0; i < len(matches); i++ {
		// Read the compiled JSON file data
		b, err := os.ReadFile(matches[i])
		if err != nil {
			return nil, "", err
		}

		// Parse the JSON
		var compiledJson CryticCompileCompiledJson
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
