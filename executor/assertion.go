package executor

import (
	"math/big"

	chainTypes "github.com/crytic/forge-core/chain/types"
	"github.com/crytic/medusa-geth/common"
	"github.com/crytic/medusa-geth/crypto"
)

// failedSlot is the storage slot DSTest-style assertion helpers (e.g. Forge's DSTest, ds-test) write a nonzero
// flag into when an assertion fails, instead of reverting. It is derived the same way DSTest derives it:
// bytes32(uint256(keccak256("failed")) - 1).
var failedSlot = func() common.Hash {
	hash := crypto.Keccak256Hash([]byte("failed"))
	value := new(big.Int).Sub(hash.Big(), big.NewInt(1))
	return common.BigToHash(value)
}()

// assertionFailed reports whether the test contract at address has the DSTest failure flag set in the given
// state, i.e. a helper library recorded a failed assertion without reverting the call.
func assertionFailed(state chainTypes.ChainStateDB, address common.Address) bool {
	return state.GetState(address, failedSlot) != (common.Hash{})
}
