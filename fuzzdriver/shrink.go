package fuzzdriver

import (
	"math/big"
	"reflect"

	"github.com/crytic/forge-core/utils"
	"github.com/crytic/medusa-geth/accounts/abi"
	"github.com/crytic/medusa-geth/common"
)

// maxShrinkAttempts bounds how many shrinking rounds (each trying one smaller candidate per parameter) are run per
// failing tuple before giving up and reporting the best (smallest found) counterexample.
const maxShrinkAttempts = 64

// shrink searches for a smaller failing argument tuple than args, given that args is known to fail isFailing.
// Each round proposes, for every parameter in turn, a tuple with that parameter shrunk one step toward its
// "smallest" value (zero, empty, or the zero address) and keeps the proposal whenever it still fails. It stops after
// the first round in which no proposal was kept, or after maxShrinkAttempts rounds.
func shrink(argTypes []abi.Type, args []any, isFailing func([]any) bool) []any {
	current := append([]any{}, args...)

	for attempt := 0; attempt < maxShrinkAttempts; attempt++ {
		improved := false
		for i := range current {
			candidate := append([]any{}, current...)
			shrunk, changed := shrinkValue(argTypes[i], candidate[i])
			if !changed {
				continue
			}
			candidate[i] = shrunk
			if isFailing(candidate) {
				current = candidate
				improved = true
			}
		}
		if !improved {
			break
		}
	}

	return current
}

// shrinkValue proposes a smaller value of the same ABI type than value. The second return value is false once
// value can't be shrunk any further (already at its smallest representable form).
func shrinkValue(argType abi.Type, value any) (any, bool) {
	switch argType.T {
	case abi.UintTy:
		return shrinkUint(value, argType.Size)
	case abi.IntTy:
		return shrinkInt(value, argType.Size)
	case abi.AddressTy:
		addr := value.(common.Address)
		if addr == (common.Address{}) {
			return value, false
		}
		return common.Address{}, true
	case abi.BoolTy:
		if value.(bool) == false {
			return value, false
		}
		return false, true
	case abi.BytesTy:
		b := value.([]byte)
		if len(b) == 0 {
			return value, false
		}
		return b[:len(b)-1], true
	case abi.StringTy:
		s := value.(string)
		if len(s) == 0 {
			return value, false
		}
		return s[:len(s)-1], true
	case abi.ArrayTy, abi.SliceTy:
		return shrinkSequence(argType, value)
	case abi.TupleTy:
		return shrinkTuple(argType, value)
	default:
		return value, false
	}
}

// shrinkUint halves an unsigned integer value toward zero, returning the same sized Go type it was given.
func shrinkUint(value any, bitLength int) (any, bool) {
	current := toBigInt(value)
	if current.Sign() == 0 {
		return value, false
	}
	halved := new(big.Int).Div(current, big.NewInt(2))
	min, max := utils.GetIntegerConstraints(false, bitLength)
	halved = utils.ConstrainIntegerToBounds(halved, min, max)
	return sizeUint(halved, bitLength), true
}

// shrinkInt moves a signed integer value one step toward zero, halving its magnitude.
func shrinkInt(value any, bitLength int) (any, bool) {
	current := toBigInt(value)
	if current.Sign() == 0 {
		return value, false
	}
	halved := new(big.Int).Quo(current, big.NewInt(2))
	min, max := utils.GetIntegerConstraints(true, bitLength)
	halved = utils.ConstrainIntegerToBounds(halved, min, max)
	return sizeInt(halved, bitLength), true
}

// toBigInt normalizes any of the narrowed Go integer types generateValue may have produced back to a *big.Int for
// arithmetic.
func toBigInt(value any) *big.Int {
	switch v := value.(type) {
	case uint8:
		return new(big.Int).SetUint64(uint64(v))
	case uint16:
		return new(big.Int).SetUint64(uint64(v))
	case uint32:
		return new(big.Int).SetUint64(uint64(v))
	case uint64:
		return new(big.Int).SetUint64(v)
	case int8:
		return big.NewInt(int64(v))
	case int16:
		return big.NewInt(int64(v))
	case int32:
		return big.NewInt(int64(v))
	case int64:
		return big.NewInt(v)
	case *big.Int:
		return new(big.Int).Set(v)
	default:
		return big.NewInt(0)
	}
}

// shrinkSequence shrinks every shrinkable element of an array/slice one step, leaving its length unchanged. The length
// of a slice is never shrunk.
func shrinkSequence(argType abi.Type, value any) (any, bool) {
	rv := reflect.ValueOf(value)
	if rv.Len() == 0 {
		return value, false
	}

	out := reflect.MakeSlice(reflect.SliceOf(rv.Type().Elem()), rv.Len(), rv.Len())
	reflect.Copy(out, rv)
	if argType.T == abi.ArrayTy {
		out = reflect.Indirect(reflect.New(rv.Type()))
		reflect.Copy(out, rv)
	}

	shrunkAny := false
	for i := 0; i < out.Len(); i++ {
		elemShrunk, changed := shrinkValue(*argType.Elem, out.Index(i).Interface())
		if changed {
			out.Index(i).Set(reflect.ValueOf(elemShrunk))
			shrunkAny = true
		}
	}
	return out.Interface(), shrunkAny
}

// shrinkTuple shrinks every shrinkable field of a struct value representing an ABI tuple one step.
func shrinkTuple(argType abi.Type, value any) (any, bool) {
	rv := reflect.ValueOf(value)
	out := reflect.Indirect(reflect.New(rv.Type()))
	out.Set(rv)

	shrunkAny := false
	for i := 0; i < len(argType.TupleElems); i++ {
		fieldShrunk, changed := shrinkValue(*argType.TupleElems[i], out.Field(i).Interface())
		if changed {
			out.Field(i).Set(reflect.ValueOf(fieldShrunk))
			shrunkAny = true
		}
	}
	return out.Interface(), shrunkAny
}
