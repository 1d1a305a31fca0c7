package types

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/crytic/medusa-geth/accounts/abi"
	"github.com/crytic/medusa-geth/common"
	"golang.org/x/exp/slices"
)

// CompiledContract represents a single contract unit from a smart contract compilation.
type CompiledContract struct {
	// Abi describes a contract's application binary interface, a structure used to describe information needed
	// to interact with the contract such as constructor and function definitions with input/output variable
	// information, event declarations, and fallback and receive methods.
	Abi abi.ABI

	// InitBytecode describes the bytecode used to deploy a contract.
	InitBytecode []byte

	// RuntimeBytecode represents the rudimentary bytecode to be expected once the contract has been successfully
	// deployed. This may differ at runtime based on constructor arguments, immutables, linked libraries, etc.
	RuntimeBytecode []byte

	// SrcMapsInit describes the source mappings to associate source file and bytecode segments in InitBytecode.
	SrcMapsInit string

	// SrcMapsRuntime describes the source mappings to associate source file and bytecode segments in RuntimeBytecode.
	SrcMapsRuntime string

	// Kind describes the kind of contract, i.e. contract, library, interface.
	Kind ContractKind

	// LibraryPlaceholders maps each unresolved library placeholder identifier found in this contract's bytecode to
	// the short name of the library that satisfies it (nil until ResolveLibraryPlaceholders fills it in). A
	// contract with no library dependencies has an empty map.
	LibraryPlaceholders map[string]any

	// initPlaceholderOffset and runtimePlaceholderOffset record the byte offset of each placeholder (keyed by the
	// same identifier as LibraryPlaceholders) within InitBytecode and RuntimeBytecode, captured when the bytecode
	// was decoded and its placeholder text replaced with zero bytes so it could be hex-decoded at all. LinkBytecodes
	// uses these to patch in a deployed library's address without re-parsing the bytecode as a string.
	initPlaceholderOffset    map[string]int
	runtimePlaceholderOffset map[string]int
}

// NewCompiledContract decodes initBytecodeHex and runtimeBytecodeHex, which may still contain unresolved library
// placeholders in the "__$<hash>$__" or "__<name>__" form solc emits, into a ready CompiledContract. Each
// placeholder is replaced with 20 zero bytes (a placeholder is always exactly the width of an address) so the
// bytecode decodes as ordinary hex, and its identifier and byte offset are recorded for later linking.
func NewCompiledContract(contractAbi abi.ABI, initBytecodeHex, runtimeBytecodeHex, srcMapsInit, srcMapsRuntime string, kind ContractKind) (CompiledContract, error) {
	initBytecode, initOffsets, err := decodeBytecodeWithPlaceholders(initBytecodeHex)
	if err != nil {
		return CompiledContract{}, fmt.Errorf("unable to parse init bytecode: %v", err)
	}
	runtimeBytecode, runtimeOffsets, err := decodeBytecodeWithPlaceholders(runtimeBytecodeHex)
	if err != nil {
		return CompiledContract{}, fmt.Errorf("unable to parse runtime bytecode: %v", err)
	}

	placeholders := make(map[string]any, len(initOffsets)+len(runtimeOffsets))
	for id := range initOffsets {
		placeholders[id] = nil
	}
	for id := range runtimeOffsets {
		placeholders[id] = nil
	}

	return CompiledContract{
		Abi:                      contractAbi,
		InitBytecode:             initBytecode,
		RuntimeBytecode:          runtimeBytecode,
		SrcMapsInit:              srcMapsInit,
		SrcMapsRuntime:           srcMapsRuntime,
		Kind:                     kind,
		LibraryPlaceholders:      placeholders,
		initPlaceholderOffset:    initOffsets,
		runtimePlaceholderOffset: runtimeOffsets,
	}, nil
}

// IsMatch returns a boolean indicating whether provided contract bytecode is a match to this compiled contract
// definition.
func (c *CompiledContract) IsMatch(initBytecode []byte, runtimeBytecode []byte) bool {
	// Check if we can compare init and runtime bytecode
	canCompareInit := len(initBytecode) > 0 && len(c.InitBytecode) > 0
	canCompareRuntime := len(runtimeBytecode) > 0 && len(c.RuntimeBytecode) > 0
	// First try matching runtime bytecode contract metadata.
	if canCompareRuntime {
		// First we try to match contracts with contract metadata embedded within the smart contract.
		// Note: We use runtime bytecode for this because init byte code can have matching metadata hashes for different
		// contracts.
		deploymentMetadata := ExtractContractMetadata(runtimeBytecode)
		definitionMetadata := ExtractContractMetadata(c.RuntimeBytecode)
		if deploymentMetadata != nil && definitionMetadata != nil {
			deploymentBytecodeHash := deploymentMetadata.ExtractBytecodeHash()
			definitionBytecodeHash := definitionMetadata.ExtractBytecodeHash()
			if deploymentBytecodeHash != nil && definitionBytecodeHash != nil {
				return bytes.Equal(deploymentBytecodeHash, definitionBytecodeHash)
			}
		}
	}

	// Since we could not match with runtime bytecode's metadata hashes, we try to match based on init code. To do this,
	// we anticipate our init bytecode might contain appended arguments, so we'll be slicing it down to size and trying
	// to match as a last ditch effort.
	if canCompareInit {
		// If the init byte code size is larger than what we initialized with, it is not a match.
		if len(c.InitBytecode) > len(initBytecode) {
			return false
		}

		// Cut down the contract init bytecode to the size of the definition's to attempt to strip away constructor
		// arguments before performing a direct compare.
		cutDeployedInitBytecode := initBytecode[:len(c.InitBytecode)]

		// If the byte code matches exactly, we treat this as a match.
		if bytes.Equal(cutDeployedInitBytecode, c.InitBytecode) {
			return true
		}
	}

	// As a final fallback, try to compare the whole runtime byte code (least likely to work, given the deployment
	// process, e.g. smart contract constructor, will change the runtime code in most cases).
	if canCompareRuntime {
		// If the byte code matches exactly, we treat this as a match.
		if bytes.Equal(runtimeBytecode, c.RuntimeBytecode) {
			return true
		}
	}

	// Otherwise return our failed match status.
	return false
}

// ParseABIFromInterface parses a generic object into an abi.ABI and returns it, or an error if one occurs.
func ParseABIFromInterface(i any) (*abi.ABI, error) {
	var (
		result abi.ABI
		err    error
	)

	// If it's a string, just parse it. Otherwise, we assume it's an interface and serialize it into a string.
	if s, ok := i.(string); ok {
		result, err = abi.JSON(strings.NewReader(s))
		if err != nil {
			return nil, err
		}
	} else {
		var b []byte
		b, err = json.Marshal(i)
		if err != nil {
			return nil, err
		}
		result, err = abi.JSON(strings.NewReader(string(b)))
		if err != nil {
			return nil, err
		}
	}
	return &result, nil
}

// GetDeploymentMessageData is a helper method used create contract deployment message data for the given contract.
// This data can be set in transaction/message structs "data" field to indicate the packed init bytecode and constructor
// argument data to use.
func (c *CompiledContract) GetDeploymentMessageData(args []any) ([]byte, error) {
	// ABI encode constructor arguments and append them to the end of the bytecode
	initBytecodeWithArgs := slices.Clone(c.InitBytecode)
	if len(c.Abi.Constructor.Inputs) > 0 {
		data, err := c.Abi.Pack("", args...)
		if err != nil {
			return nil, fmt.Errorf("could not encode constructor arguments due to error: %v", err)
		}
		initBytecodeWithArgs = append(initBytecodeWithArgs, data...)
	}
	return initBytecodeWithArgs, nil
}

// LinkBytecodes patches the deployed address of every library named in deployedLibraries into the byte offsets
// LibraryPlaceholders recorded at decode time, leaving any placeholder whose library isn't present in
// deployedLibraries untouched, and clears LibraryPlaceholders once every resolvable one has been patched.
func (c *CompiledContract) LinkBytecodes(_ string, deployedLibraries map[string]common.Address) {
	if len(c.LibraryPlaceholders) == 0 {
		return
	}

	remaining := make(map[string]any, len(c.LibraryPlaceholders))
	for placeholder, libNameAny := range c.LibraryPlaceholders {
		libName, ok := libNameAny.(string)
		if !ok || libName == "" {
			remaining[placeholder] = libNameAny
			continue
		}

		address, exists := deployedLibraries[libName]
		if !exists {
			remaining[placeholder] = libNameAny
			continue
		}

		if offset, ok := c.initPlaceholderOffset[placeholder]; ok && offset+common.AddressLength <= len(c.InitBytecode) {
			copy(c.InitBytecode[offset:offset+common.AddressLength], address.Bytes())
		}
		if offset, ok := c.runtimePlaceholderOffset[placeholder]; ok && offset+common.AddressLength <= len(c.RuntimeBytecode) {
			copy(c.RuntimeBytecode[offset:offset+common.AddressLength], address.Bytes())
		}
	}
	c.LibraryPlaceholders = remaining
}

// libraryPlaceholderPattern matches the two placeholder forms solc emits in place of a library's address:
// "__$<34-hex-char hash>$__" and the older "__<contract name, underscore-padded>__", both exactly 40 characters,
// the same width as a hex-encoded address.
var libraryPlaceholderPattern = regexp.MustCompile(`__(\$[0-9a-zA-Z]*\$|\w*)__`)

// decodeBytecodeWithPlaceholders hex-decodes a solc-style bytecode string that may still contain unresolved library
// placeholders, replacing each one with 20 zero bytes so the string decodes as ordinary hex, and returns the
// decoded bytes alongside a map of each placeholder identifier to its byte offset in the result.
func decodeBytecodeWithPlaceholders(bytecodeHex string) ([]byte, map[string]int, error) {
	bytecodeHex = strings.TrimPrefix(bytecodeHex, "0x")

	matches := libraryPlaceholderPattern.FindAllStringIndex(bytecodeHex, -1)
	offsets := make(map[string]int, len(matches))

	cleaned := []byte(bytecodeHex)
	for _, match := range matches {
		raw := bytecodeHex[match[0]:match[1]]
		id := strings.ReplaceAll(strings.ReplaceAll(raw, "_", ""), "$", "")
		offsets[id] = match[0] / 2
		for i := match[0]; i < match[1]; i++ {
			cleaned[i] = '0'
		}
	}

	decoded, err := hex.DecodeString(string(cleaned))
	if err != nil {
		return nil, nil, err
	}
	return decoded, offsets, nil
}
