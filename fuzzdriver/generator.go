// Package fuzzdriver generates and shrinks ABI-typed argument tuples for test functions that declare input
// parameters, calling the executor once per tuple and, on the first failing tuple, searching for a smaller
// counterexample before reporting a result.
package fuzzdriver

import (
	"math/big"
	"math/rand"

	"github.com/crytic/forge-core/utils"
	"github.com/crytic/medusa-geth/common"
)

// dynamicLengthBiases biases the lengths of generated dynamic data (strings, bytes and slices) toward the sizes
// most likely to expose bugs: empty, a single element, a small handful, and one boundary-ish size.
var dynamicLengthBiases = []int{0, 0, 1, 2, 4, 32}

// randomGenerator draws ABI argument values from a seeded PRNG. It does not implement valuegeneration.ValueGenerator
// directly (that interface pulls in a value corpus/mutation the core test runner has no use for); it provides the
// same generate-by-type surface the fuzz driver needs, seeded deterministically per call.
type randomGenerator struct {
	rng *rand.Rand
}

func newRandomGenerator(seed int64) *randomGenerator {
	return &randomGenerator{rng: rand.New(rand.NewSource(seed))}
}

func (g *randomGenerator) GenerateAddress() common.Address {
	var addr common.Address
	g.rng.Read(addr[:])
	return addr
}

func (g *randomGenerator) GenerateBool() bool {
	return g.rng.Intn(2) == 1
}

func (g *randomGenerator) GenerateInteger(signed bool, bitLength int) *big.Int {
	min, max := utils.GetIntegerConstraints(signed, bitLength)
	span := new(big.Int).Add(new(big.Int).Sub(max, min), big.NewInt(1))

	value := new(big.Int).Rand(g.rng, span)
	value.Add(value, min)
	return value
}

func (g *randomGenerator) GenerateFixedBytes(length int) []byte {
	b := make([]byte, length)
	g.rng.Read(b)
	return b
}

func (g *randomGenerator) GenerateBytes() []byte {
	return g.GenerateFixedBytes(g.biasedLength())
}

func (g *randomGenerator) GenerateString() string {
	const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789 _-"
	length := g.biasedLength()
	runes := make([]byte, length)
	for i := range runes {
		runes[i] = alphabet[g.rng.Intn(len(alphabet))]
	}
	return string(runes)
}

// GenerateArrayLength picks a dynamic array/slice length using the same size bias as strings and bytes.
func (g *randomGenerator) GenerateArrayLength() int {
	return g.biasedLength()
}

// biasedLength favours small and boundary sizes over uniformly random ones, since those are where off-by-one and
// truncation bugs live.
func (g *randomGenerator) biasedLength() int {
	return dynamicLengthBiases[g.rng.Intn(len(dynamicLengthBiases))]
}
