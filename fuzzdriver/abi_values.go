package fuzzdriver

import (
	"fmt"
	"math/big"
	"reflect"

	"github.com/crytic/medusa-geth/accounts/abi"
)

// generateValue produces a value of the given ABI type using generator, recursing into arrays, slices, and tuples.
func generateValue(generator *randomGenerator, inputType *abi.Type) any {
	switch inputType.T {
	case abi.AddressTy:
		return generator.GenerateAddress()
	case abi.UintTy:
		return sizeUint(generator.GenerateInteger(false, inputType.Size), inputType.Size)
	case abi.IntTy:
		return sizeInt(generator.GenerateInteger(true, inputType.Size), inputType.Size)
	case abi.BoolTy:
		return generator.GenerateBool()
	case abi.StringTy:
		return generator.GenerateString()
	case abi.BytesTy:
		return generator.GenerateBytes()
	case abi.FixedBytesTy:
		// Fixed-size byte arrays need a genuine Go array, not a slice, so we build it through reflection and copy
		// generated bytes into it.
		array := reflect.Indirect(reflect.New(inputType.GetType()))
		bytes := reflect.ValueOf(generator.GenerateFixedBytes(inputType.Size))
		for i := 0; i < array.Len(); i++ {
			array.Index(i).Set(bytes.Index(i))
		}
		return array.Interface()
	case abi.ArrayTy:
		array := reflect.Indirect(reflect.New(inputType.GetType()))
		for i := 0; i < array.Len(); i++ {
			array.Index(i).Set(reflect.ValueOf(generateValue(generator, inputType.Elem)))
		}
		return array.Interface()
	case abi.SliceTy:
		length := generator.GenerateArrayLength()
		slice := reflect.MakeSlice(inputType.GetType(), length, length)
		for i := 0; i < slice.Len(); i++ {
			slice.Index(i).Set(reflect.ValueOf(generateValue(generator, inputType.Elem)))
		}
		return slice.Interface()
	case abi.TupleTy:
		st := reflect.Indirect(reflect.New(inputType.GetType()))
		for i := 0; i < len(inputType.TupleElems); i++ {
			st.Field(i).Set(reflect.ValueOf(generateValue(generator, inputType.TupleElems[i])))
		}
		return st.Interface()
	}

	panic(fmt.Sprintf("fuzzdriver: unsupported ABI type for value generation: %s", inputType.String()))
}

// sizeUint narrows a big.Int drawn for an unsigned integer type down to its declared bit width's native Go type,
// matching the types go-ethereum's ABI packer expects for each width.
func sizeUint(value *big.Int, bitLength int) any {
	switch bitLength {
	case 8:
		return uint8(value.Uint64())
	case 16:
		return uint16(value.Uint64())
	case 32:
		return uint32(value.Uint64())
	case 64:
		return value.Uint64()
	default:
		return value
	}
}

// sizeInt narrows a big.Int drawn for a signed integer type down to its declared bit width's native Go type.
func sizeInt(value *big.Int, bitLength int) any {
	switch bitLength {
	case 8:
		return int8(value.Int64())
	case 16:
		return int16(value.Int64())
	case 32:
		return int32(value.Int64())
	case 64:
		return value.Int64()
	default:
		return value
	}
}
