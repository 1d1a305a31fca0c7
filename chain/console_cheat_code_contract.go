package chain

import (
	"fmt"
	"github.com/crytic/forge-core/utils"
	"github.com/crytic/medusa-geth/accounts/abi"
	"github.com/crytic/medusa-geth/common"
	"github.com/crytic/medusa-geth/core/types"
	"strconv"
	"strings"
)

// emitConsoleLog packs inputs according to argTypes and appends the resulting event, under topic eventSig, to the
// chain's state. If inputs[0] is a string containing a printf-style directive, it's treated as a format string for
// the remaining inputs instead: the formatted result is packed alone and logged under stringSig. This single-string
// fallback is why log(int256)/log(bytes)/log(bytesN) (whose first argument can never be a string) can share this
// helper with the string-leading overloads without any type-specific branching.
func emitConsoleLog(tracer *cheatCodeTracer, contractAddress common.Address, argTypes abi.Arguments, eventSig common.Hash, stringSig common.Hash, inputs []any) *cheatCodeRawReturnData {
	log := types.Log{Address: contractAddress}

	if stringInput, isString := inputs[0].(string); isString && strings.Contains(stringInput, "%") {
		formatted := fmt.Sprintf(stringInput, inputs[1:]...)
		data, err := (abi.Arguments{{Type: argTypes[0].Type}}).Pack(formatted)
		if err != nil {
			return cheatCodeRevertData([]byte("log: unable to pack the formatted string"))
		}
		log.Data = data
		log.Topics = []common.Hash{stringSig}
	} else {
		data, err := argTypes.Pack(inputs...)
		if err != nil {
			return cheatCodeRevertData([]byte("log: unable to pack the provided input parameters"))
		}
		log.Data = data
		log.Topics = []common.Hash{eventSig}
	}

	tracer.chain.State().AddLog(&log)
	return nil
}

// getConsoleCheatCodeContract obtains a CheatCodeContract which implements the console.log cheatcodes.
// The Console precompile contract is returned if there are no errors.
func getConsoleCheatCodeContract(tracer *cheatCodeTracer) (*CheatCodeContract, error) {
	// Define our address for this precompile contract, then create a new precompile to add methods to.
	contractAddress := common.HexToAddress("0x000000000000000000636F6e736F6c652e6c6f67")
	contract := newCheatCodeContract(tracer, contractAddress, "Console")

	// Define all the ABI types needed for console.log functions
	typeUint256, err := abi.NewType("uint256", "", nil)
	if err != nil {
		return nil, err
	}
	typeInt256, err := abi.NewType("int256", "", nil)
	if err != nil {
		return nil, err
	}
	typeString, err := abi.NewType("string", "", nil)
	if err != nil {
		return nil, err
	}
	typeBool, err := abi.NewType("bool", "", nil)
	if err != nil {
		return nil, err
	}
	typeAddress, err := abi.NewType("address", "", nil)
	if err != nil {
		return nil, err
	}
	typeBytes, err := abi.NewType("bytes", "", nil)
	if err != nil {
		return nil, err
	}

	// We will store all the fixed byte (e.g. byte1, byte2) in a mapping
	const numFixedByteTypes = 32
	fixedByteTypes := make(map[int]abi.Type, numFixedByteTypes)
	for i := 1; i <= numFixedByteTypes; i++ {
		byteString := "bytes" + strconv.FormatInt(int64(i), 10)
		fixedByteTypes[i], err = abi.NewType(byteString, "", nil)
		if err != nil {
			return nil, err
		}
	}

	// Add the string event first since the formatted-string fallback in emitConsoleLog needs its topic regardless
	// of which overload is being handled.
	stringEventSig, err := contract.addEvent("Log", abi.Arguments{{Type: typeString}})
	if err != nil {
		return nil, err
	}

	// We have a few special log function signatures outside all the permutations of (uint256, string, bool, address).
	// These include log(int256), log(bytes), log(bytesX), and log(string, int256). So, we will manually create these
	// signatures and then programmatically iterate through all the permutations.

	// log(int256): Log an int256
	intArgs := abi.Arguments{{Type: typeInt256}}
	intSig, err := contract.addEvent("Log", intArgs)
	if err != nil {
		return nil, err
	}
	contract.addMethod("log", intArgs, abi.Arguments{},
		func(tracer *cheatCodeTracer, inputs []any) ([]any, *cheatCodeRawReturnData) {
			return []any{}, emitConsoleLog(tracer, contractAddress, intArgs, intSig, stringEventSig, inputs)
		},
	)

	// log(bytes): Log bytes
	bytesArgs := abi.Arguments{{Type: typeBytes}}
	bytesSig, err := contract.addEvent("Log", bytesArgs)
	if err != nil {
		return nil, err
	}
	contract.addMethod("log", bytesArgs, abi.Arguments{},
		func(tracer *cheatCodeTracer, inputs []any) ([]any, *cheatCodeRawReturnData) {
			return []any{}, emitConsoleLog(tracer, contractAddress, bytesArgs, bytesSig, stringEventSig, inputs)
		},
	)

	// Now, we will add log(bytes1), log(bytes2), and so on in a loop
	for i := 1; i <= numFixedByteTypes; i++ {
		// Create local copy of abi argument
		fixedByteArgs := abi.Arguments{{Type: fixedByteTypes[i]}}

		// Create the event
		fixedByteSig, err := contract.addEvent("Log", fixedByteArgs)
		if err != nil {
			return nil, err
		}

		// Add the method
		contract.addMethod("log", fixedByteArgs, abi.Arguments{},
			func(tracer *cheatCodeTracer, inputs []any) ([]any, *cheatCodeRawReturnData) {
				return []any{}, emitConsoleLog(tracer, contractAddress, fixedByteArgs, fixedByteSig, stringEventSig, inputs)
			},
		)
	}

	// log(string, int): Log string with an int where the string could be formatted
	stringIntArgs := abi.Arguments{{Type: typeString}, {Type: typeInt256}}
	stringIntSig, err := contract.addEvent("Log", stringIntArgs)
	if err != nil {
		return nil, err
	}
	contract.addMethod("log", stringIntArgs, abi.Arguments{},
		func(tracer *cheatCodeTracer, inputs []any) ([]any, *cheatCodeRawReturnData) {
			return []any{}, emitConsoleLog(tracer, contractAddress, stringIntArgs, stringIntSig, stringEventSig, inputs)
		},
	)

	// These are the four parameter types that console.log() accepts
	choices := abi.Arguments{{Type: typeUint256}, {Type: typeString}, {Type: typeBool}, {Type: typeAddress}}

	// Create all possible permutations (with repetition) where the number of choices increases from 1...len(choices)
	permutations := make([]abi.Arguments, 0)
	for n := 1; n <= len(choices); n++ {
		nextSetOfPermutations := utils.PermutationsWithRepetition(choices, n)
		for _, permutation := range nextSetOfPermutations {
			permutations = append(permutations, permutation)
		}
	}

	// Iterate across each permutation to add their associated event and function handler
	for i := 0; i < len(permutations); i++ {
		// Add the event
		eventSig, err := contract.addEvent("Log", permutations[i])
		if err != nil {
			return nil, err
		}

		// Make a local copy of the current permutation
		permutation := permutations[i]

		// Create the function handler
		contract.addMethod("log", permutation, abi.Arguments{},
			func(tracer *cheatCodeTracer, inputs []any) ([]any, *cheatCodeRawReturnData) {
				return []any{}, emitConsoleLog(tracer, contractAddress, permutation, eventSig, stringEventSig, inputs)
			},
		)
	}

	// Return our precompile contract information.
	return contract, nil
}
