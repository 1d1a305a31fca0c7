package state

import (
	"github.com/holiman/uint256"
)

// remoteStateObject gives us a way to store state objects without the overhead of using geth's stateObject
type remoteStateObject struct {
	Balance *uint256.Int
	Nonce   uint64
	Code    []byte
}
