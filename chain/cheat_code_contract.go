package chain

import (
	"encoding/binary"

	"github.com/crytic/medusa-geth/accounts/abi"
	"github.com/crytic/medusa-geth/common"
	"github.com/crytic/medusa-geth/core/vm"
)

// cheatCodeRawReturnData describes raw return data a cheatcode handler wants to force onto the EVM call, bypassing
// ABI packing of the method's declared outputs. This is how cheatcodes signal a revert with a custom reason, which
// is itself being asserted upon by an armed expectRevert.
type cheatCodeRawReturnData struct {
	// reverted indicates the precompile call should be treated by the EVM as a revert.
	reverted bool
	// returnData is the raw bytes to return from the precompile call.
	returnData []byte
}

// cheatCodeRevertData constructs a cheatCodeRawReturnData representing a revert carrying the given message, encoded
// the way Solidity's Error(string) panic selector would.
func cheatCodeRevertData(message []byte) *cheatCodeRawReturnData {
	stringType, _ := abi.NewType("string", "", nil)
	errorMethod := abi.NewMethod("Error", "Error", abi.Function, "", false, false, []abi.Argument{
		{Name: "", Type: stringType},
	}, abi.Arguments{})

	packed, err := errorMethod.Inputs.Pack(string(message))
	if err != nil {
		return &cheatCodeRawReturnData{reverted: true, returnData: append([]byte{}, errorMethod.ID...)}
	}

	return &cheatCodeRawReturnData{reverted: true, returnData: append(errorMethod.ID, packed...)}
}

// cheatCodeMethodHandler describes a function which handles callback for a given contract method. It takes the
// cheatCodeTracer for execution context, as well as unpacked input values.
// Returns unpacked output values and/or raw override return data, in the event of a cheatcode-triggered revert.
type cheatCodeMethodHandler func(tracer *cheatCodeTracer, args []any) ([]any, *cheatCodeRawReturnData)

// CheatCodeContract defines a struct which represents a pre-compiled contract with various methods that is
// meant to act as a contract, installed at a fixed address in the EVM's state via vm.ConfigExtensions.
type CheatCodeContract struct {
	// name is a human-readable identifier for this cheatcode contract, used only for logging/diagnostics.
	name string

	// address defines the address the cheat code contract should be installed at.
	address common.Address

	// tracer represents the cheat code tracer used to provide execution hooks.
	tracer *cheatCodeTracer

	// methodInfo describes a table of methodId (function selectors) to cheat code methods. Since some cheatcodes are
	// overloaded (e.g. toString), multiple ABI signatures can map to the same selector bucket, so each entry is a
	// slice of method candidates distinguished by their arity/types at unpack time.
	methodInfo map[uint32][]*cheatCodeMethod
}

// cheatCodeMethod defines the method information for a given precompiledContract.
type cheatCodeMethod struct {
	// method is the ABI method definition used to pack and unpack both input and output arguments.
	method abi.Method

	// handler represents the method handler to call with the unpacked input arguments
	handler cheatCodeMethodHandler
}

// newCheatCodeContract returns a new CheatCodeContract which uses the attached cheatCodeTracer for execution
// context.
func newCheatCodeContract(tracer *cheatCodeTracer, address common.Address, name string) *CheatCodeContract {
	return &CheatCodeContract{
		name:       name,
		address:    address,
		tracer:     tracer,
		methodInfo: make(map[uint32][]*cheatCodeMethod),
	}
}

// addMethod adds a new method to the precompiled contract. Overloaded method names collide on selector only when
// the ABI encoder assigns the same 4-byte id, which given Go's map semantics here is resolved by appending all
// candidates and trying each against the actual call data length/unpacking at dispatch time.
func (c *CheatCodeContract) addMethod(name string, inputs abi.Arguments, outputs abi.Arguments, handler cheatCodeMethodHandler) {
	if name == "" {
		panic("could not add method to precompiled cheatcode contract, empty method name provided")
	}
	if handler == nil {
		panic("could not add method to precompiled cheatcode contract, nil method handler provided")
	}

	method := abi.NewMethod(name, name, abi.Function, "external", false, false, inputs, outputs)
	methodId := binary.BigEndian.Uint32(method.ID)
	c.methodInfo[methodId] = append(c.methodInfo[methodId], &cheatCodeMethod{
		method:  method,
		handler: handler,
	})
}

// addEvent declares the event signature that a console.log-style handler will emit, returning its topic0 hash
// so the handler closure can build the log entry without recomputing it per call.
func (c *CheatCodeContract) addEvent(name string, inputs abi.Arguments) (common.Hash, error) {
	event := abi.NewEvent(name, name, false, inputs)
	return event.ID, nil
}

// RequiredGas determines the amount of gas necessary to execute the pre-compile with the given input data.
// Returns the gas cost.
func (c *CheatCodeContract) RequiredGas(input []byte) uint64 {
	return 0
}

// Run executes the given pre-compile with the provided input data.
// Returns the output data from execution, or an error if one occurred.
func (c *CheatCodeContract) Run(input []byte) ([]byte, error) {
	if len(input) < 4 {
		return []byte{}, vm.ErrExecutionReverted
	}

	methodId := binary.BigEndian.Uint32(input[:4])
	candidates, candidatesExist := c.methodInfo[methodId]
	if !candidatesExist {
		return cheatCodeRevertData([]byte("BadCheatCode")).returnData, vm.ErrExecutionReverted
	}

	var lastErr error
	for _, candidate := range candidates {
		inputValues, err := candidate.method.Inputs.Unpack(input[4:])
		if err != nil {
			lastErr = err
			continue
		}

		outputValues, rawReturn := candidate.handler(c.tracer, inputValues)
		if rawReturn != nil {
			if rawReturn.reverted {
				return rawReturn.returnData, vm.ErrExecutionReverted
			}
			return rawReturn.returnData, nil
		}

		packed, err := candidate.method.Outputs.Pack(outputValues...)
		if err != nil {
			return nil, err
		}
		return packed, nil
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return []byte{}, vm.ErrExecutionReverted
}

// getCheatCodeProviders obtains a cheatCodeTracer (used to power cheat code analysis) and associated
// CheatCodeContract objects linked to the tracer (providing on-chain callable methods as an entry point). These
// objects are attached to the TestChain to enable cheat code functionality.
// Returns the tracer and associated pre-compile contracts, or an error, if one occurred.
func getCheatCodeProviders() (*cheatCodeTracer, []*CheatCodeContract, error) {
	tracer := newCheatCodeTracer()

	stdCheatCodeContract, err := getStandardCheatCodeContract(tracer)
	if err != nil {
		return nil, nil, err
	}

	consoleContract, err := getConsoleCheatCodeContract(tracer)
	if err != nil {
		return nil, nil, err
	}

	return tracer, []*CheatCodeContract{stdCheatCodeContract, consoleContract}, nil
}
