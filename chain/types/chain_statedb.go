package types

import (
	"github.com/crytic/medusa-geth/common"
	"github.com/crytic/medusa-geth/core/state"
	"github.com/crytic/medusa-geth/core/tracing"
	"github.com/crytic/medusa-geth/core/types"
	"github.com/crytic/medusa-geth/core/vm"
	"github.com/holiman/uint256"
)

var _ ChainStateDB = (*state.StateDB)(nil)
var _ ChainStateDB = (*state.ForkStateDb)(nil)

type ChainStateDB interface {
	vm.StateDB
	// geth's built-in statedb interface is not complete.
	// We need to add the extra methods this package uses.
	IntermediateRoot(bool) common.Hash
	Finalise(bool)
	Logs() []*types.Log
	GetLogs(common.Hash, uint64, common.Hash) []*types.Log
	TxIndex() int
	SetBalance(common.Address, *uint256.Int, tracing.BalanceChangeReason)
	SetTxContext(common.Hash, int)
	Commit(uint64, bool, bool) (common.Hash, error)
}
